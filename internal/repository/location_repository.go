package repository

import (
	"context"
	"database/sql"

	"schedule-service/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type LocationRepository interface {
	Create(ctx context.Context, location *model.Location) (*model.Location, error)
	Update(ctx context.Context, location *model.Location) error
	Deactivate(ctx context.Context, locationID uuid.UUID) error
	FindByID(ctx context.Context, locationID uuid.UUID) (*model.Location, error)
	ListActive(ctx context.Context, orgID uuid.UUID) ([]model.Location, error)
}

type postgresLocationRepository struct {
	db *sqlx.DB
}

func NewPostgresLocationRepository(db *sqlx.DB) LocationRepository {
	return &postgresLocationRepository{db: db}
}

func (r *postgresLocationRepository) Create(ctx context.Context, location *model.Location) (*model.Location, error) {
	query := `
		INSERT INTO locations
			(organization_id, name, address, location_type, latitude, longitude, meeting_point, equipment_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, is_active, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		location.OrganizationID, location.Name, location.Address, location.LocationType,
		location.Latitude, location.Longitude, location.MeetingPoint, location.EquipmentNotes,
	)
	err := row.Scan(&location.ID, &location.IsActive, &location.CreatedAt, &location.UpdatedAt)

	if err != nil {
		return nil, err
	}

	return location, nil
}

func (r *postgresLocationRepository) Update(ctx context.Context, location *model.Location) error {
	query := `
		UPDATE locations
		SET name = $1, address = $2, location_type = $3, latitude = $4, longitude = $5,
			meeting_point = $6, equipment_notes = $7, updated_at = now()
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		location.Name, location.Address, location.LocationType, location.Latitude,
		location.Longitude, location.MeetingPoint, location.EquipmentNotes, location.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *postgresLocationRepository) Deactivate(ctx context.Context, locationID uuid.UUID) error {
	query := `UPDATE locations SET is_active = false, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, locationID)
	return err
}

func (r *postgresLocationRepository) FindByID(ctx context.Context, locationID uuid.UUID) (*model.Location, error) {
	var location model.Location
	err := r.db.GetContext(ctx, &location, `SELECT * FROM locations WHERE id = $1`, locationID)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &location, nil
}

func (r *postgresLocationRepository) ListActive(ctx context.Context, orgID uuid.UUID) ([]model.Location, error) {
	var locations []model.Location
	query := `SELECT * FROM locations WHERE organization_id = $1 AND is_active ORDER BY name`
	err := r.db.SelectContext(ctx, &locations, query, orgID)

	if err != nil {
		return nil, err
	}

	if locations == nil {
		locations = []model.Location{}
	}

	return locations, nil
}
