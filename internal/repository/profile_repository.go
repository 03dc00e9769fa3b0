package repository

import (
	"context"
	"database/sql"

	"schedule-service/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) (uuid.UUID, error)
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	ListTrainers(ctx context.Context, orgID uuid.UUID) ([]model.Profile, error)
	UpdateAvatarURL(ctx context.Context, profileID uuid.UUID, avatarURL string) error
	CreateOrganizationForProfile(ctx context.Context, profileID uuid.UUID, orgName, fullName string) (*model.Organization, error)
}

type postgresProfileRepository struct {
	db *sqlx.DB
}

func NewPostgresProfileRepository(db *sqlx.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) Create(ctx context.Context, profile *model.Profile) (uuid.UUID, error) {
	query := `
		INSERT INTO profiles (organization_id, role, full_name, email, password_hash, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var newID uuid.UUID
	err := r.db.QueryRowxContext(ctx, query,
		profile.OrganizationID, profile.Role, profile.FullName,
		profile.Email, profile.PasswordHash, profile.Phone,
	).Scan(&newID)

	if err != nil {
		return uuid.Nil, err
	}

	return newID, nil
}

func (r *postgresProfileRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT * FROM profiles WHERE email = $1`, email)

	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *postgresProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT * FROM profiles WHERE id = $1`, id)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

func (r *postgresProfileRepository) ListTrainers(ctx context.Context, orgID uuid.UUID) ([]model.Profile, error) {
	var trainers []model.Profile
	query := `
		SELECT * FROM profiles
		WHERE organization_id = $1 AND role IN ('trainer', 'admin')
		ORDER BY full_name
	`
	err := r.db.SelectContext(ctx, &trainers, query, orgID)

	if err != nil {
		return nil, err
	}

	if trainers == nil {
		trainers = []model.Profile{}
	}

	return trainers, nil
}

func (r *postgresProfileRepository) UpdateAvatarURL(ctx context.Context, profileID uuid.UUID, avatarURL string) error {
	query := `UPDATE profiles SET avatar_url = $1, updated_at = now() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, avatarURL, profileID)
	return err
}

// CreateOrganizationForProfile completes onboarding: create the organization
// and attach the profile to it in one transaction.
func (r *postgresProfileRepository) CreateOrganizationForProfile(ctx context.Context, profileID uuid.UUID, orgName, fullName string) (*model.Organization, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var org model.Organization
	row := tx.QueryRowxContext(ctx,
		`INSERT INTO organizations (name) VALUES ($1) RETURNING id, name, created_at, updated_at`, orgName)
	if err := row.StructScan(&org); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE profiles SET organization_id = $1, full_name = $2, updated_at = now() WHERE id = $3`,
		org.ID, fullName, profileID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &org, nil
}
