package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"schedule-service/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SessionPatch carries a partial update. Nil pointer fields are left
// untouched; the Set* flags distinguish "clear the column" from "absent".
type SessionPatch struct {
	StartsAt    *time.Time
	SetLocation bool
	LocationID  *uuid.UUID
	SetNotes    bool
	Notes       *string
	Status      *string
}

type SessionFilter struct {
	From   *time.Time
	To     *time.Time
	Status string
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session, studentIDs []uuid.UUID) (*model.Session, error)
	Update(ctx context.Context, sessionID uuid.UUID, patch SessionPatch) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
	FindByID(ctx context.Context, sessionID uuid.UUID) (*model.SessionDetails, error)
	ReplaceRoster(ctx context.Context, sessionID uuid.UUID, studentIDs []uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, filter SessionFilter) ([]model.SessionDetails, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.SessionDetails, error)
}

type postgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

// Create inserts the session row and its roster rows in one transaction, so
// a failed roster insert never leaves an orphaned session behind.
func (r *postgresSessionRepository) Create(ctx context.Context, session *model.Session, studentIDs []uuid.UUID) (*model.Session, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sessions (organization_id, trainer_id, location_id, starts_at, duration_minutes, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	row := tx.QueryRowxContext(ctx, query,
		session.OrganizationID, session.TrainerID, session.LocationID,
		session.StartsAt, session.DurationMinutes, session.Status, session.Notes,
	)
	if err := row.Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt); err != nil {
		return nil, err
	}

	if err := insertRoster(ctx, tx, session.ID, studentIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return session, nil
}

func (r *postgresSessionRepository) Update(ctx context.Context, sessionID uuid.UUID, patch SessionPatch) error {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	argID := 1

	if patch.StartsAt != nil {
		sets = append(sets, fmt.Sprintf("starts_at = $%d", argID))
		args = append(args, *patch.StartsAt)
		argID++
	}
	if patch.SetLocation {
		sets = append(sets, fmt.Sprintf("location_id = $%d", argID))
		args = append(args, patch.LocationID)
		argID++
	}
	if patch.SetNotes {
		sets = append(sets, fmt.Sprintf("notes = $%d", argID))
		args = append(args, patch.Notes)
		argID++
	}
	if patch.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argID))
		args = append(args, *patch.Status)
		argID++
	}

	query := "UPDATE sessions SET "
	for i, s := range sets {
		if i > 0 {
			query += ", "
		}
		query += s
	}
	query += fmt.Sprintf(" WHERE id = $%d", argID)
	args = append(args, sessionID)

	result, err := r.db.ExecContext(ctx, query, args...)
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

func (r *postgresSessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	return err
}

func (r *postgresSessionRepository) FindByID(ctx context.Context, sessionID uuid.UUID) (*model.SessionDetails, error) {
	var details model.SessionDetails
	query := `
		SELECT s.*, p.full_name AS trainer_name, l.name AS location_name
		FROM sessions s
		JOIN profiles p ON s.trainer_id = p.id
		LEFT JOIN locations l ON s.location_id = l.id
		WHERE s.id = $1
	`
	err := r.db.GetContext(ctx, &details, query, sessionID)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := r.attachRelations(ctx, []*model.SessionDetails{&details}); err != nil {
		return nil, err
	}

	return &details, nil
}

// ReplaceRoster swaps the full participant set: delete everything for the
// session, insert the new membership, all in one transaction.
func (r *postgresSessionRepository) ReplaceRoster(ctx context.Context, sessionID uuid.UUID, studentIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_students WHERE session_id = $1`, sessionID); err != nil {
		return err
	}

	if err := insertRoster(ctx, tx, sessionID, studentIDs); err != nil {
		return err
	}

	return tx.Commit()
}

func insertRoster(ctx context.Context, tx *sqlx.Tx, sessionID uuid.UUID, studentIDs []uuid.UUID) error {
	query := `INSERT INTO session_students (session_id, student_id) VALUES ($1, $2)`
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx, query, sessionID, studentID); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresSessionRepository) List(ctx context.Context, orgID uuid.UUID, filter SessionFilter) ([]model.SessionDetails, error) {
	baseQuery := `
		SELECT s.*, p.full_name AS trainer_name, l.name AS location_name
		FROM sessions s
		JOIN profiles p ON s.trainer_id = p.id
		LEFT JOIN locations l ON s.location_id = l.id
		WHERE s.organization_id = $1
	`

	args := []interface{}{orgID}
	argID := 2
	if filter.From != nil {
		baseQuery += fmt.Sprintf(" AND s.starts_at >= $%d", argID)
		args = append(args, *filter.From)
		argID++
	}
	if filter.To != nil {
		baseQuery += fmt.Sprintf(" AND s.starts_at < $%d", argID)
		args = append(args, *filter.To)
		argID++
	}
	if filter.Status != "" {
		baseQuery += fmt.Sprintf(" AND s.status = $%d", argID)
		args = append(args, filter.Status)
		argID++
	}

	baseQuery += " ORDER BY s.starts_at ASC"

	var sessions []model.SessionDetails
	if err := r.db.SelectContext(ctx, &sessions, baseQuery, args...); err != nil {
		return nil, err
	}

	if sessions == nil {
		sessions = []model.SessionDetails{}
	}

	refs := make([]*model.SessionDetails, len(sessions))
	for i := range sessions {
		refs[i] = &sessions[i]
	}
	if err := r.attachRelations(ctx, refs); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *postgresSessionRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.SessionDetails, error) {
	query := `
		SELECT s.*, p.full_name AS trainer_name, l.name AS location_name
		FROM sessions s
		JOIN session_students ss ON s.id = ss.session_id
		JOIN profiles p ON s.trainer_id = p.id
		LEFT JOIN locations l ON s.location_id = l.id
		WHERE ss.student_id = $1
		ORDER BY s.starts_at DESC
	`

	var sessions []model.SessionDetails
	if err := r.db.SelectContext(ctx, &sessions, query, studentID); err != nil {
		return nil, err
	}

	if sessions == nil {
		sessions = []model.SessionDetails{}
	}

	refs := make([]*model.SessionDetails, len(sessions))
	for i := range sessions {
		refs[i] = &sessions[i]
	}
	if err := r.attachRelations(ctx, refs); err != nil {
		return nil, err
	}

	return sessions, nil
}

// attachRelations loads participants, programme snapshots and full location
// rows for a batch of sessions with IN queries instead of one round trip per
// session.
func (r *postgresSessionRepository) attachRelations(ctx context.Context, sessions []*model.SessionDetails) error {
	if len(sessions) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*model.SessionDetails, len(sessions))
	ids := make([]uuid.UUID, 0, len(sessions))
	for _, s := range sessions {
		s.Participants = []model.SessionParticipant{}
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	query, args, err := sqlx.In(`
		SELECT ss.*, st.full_name AS student_name
		FROM session_students ss
		JOIN students st ON ss.student_id = st.id
		WHERE ss.session_id IN (?)
		ORDER BY ss.created_at ASC
	`, ids)
	if err != nil {
		return err
	}

	var participants []model.SessionParticipant
	if err := r.db.SelectContext(ctx, &participants, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, participant := range participants {
		if s, ok := byID[participant.SessionID]; ok {
			s.Participants = append(s.Participants, participant)
		}
	}

	query, args, err = sqlx.In(`SELECT * FROM session_programmes WHERE session_id IN (?)`, ids)
	if err != nil {
		return err
	}

	var programmes []model.SessionProgramme
	if err := r.db.SelectContext(ctx, &programmes, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for i := range programmes {
		if s, ok := byID[programmes[i].SessionID]; ok {
			s.Programme = &programmes[i]
		}
	}

	locationIDs := make([]uuid.UUID, 0, len(sessions))
	seen := make(map[uuid.UUID]struct{}, len(sessions))
	for _, s := range sessions {
		if s.LocationID == nil {
			continue
		}
		if _, ok := seen[*s.LocationID]; ok {
			continue
		}
		seen[*s.LocationID] = struct{}{}
		locationIDs = append(locationIDs, *s.LocationID)
	}
	if len(locationIDs) == 0 {
		return nil
	}

	query, args, err = sqlx.In(`SELECT * FROM locations WHERE id IN (?)`, locationIDs)
	if err != nil {
		return err
	}

	var locations []model.Location
	if err := r.db.SelectContext(ctx, &locations, r.db.Rebind(query), args...); err != nil {
		return err
	}
	byLocation := make(map[uuid.UUID]*model.Location, len(locations))
	for i := range locations {
		byLocation[locations[i].ID] = &locations[i]
	}
	for _, s := range sessions {
		if s.LocationID != nil {
			s.Location = byLocation[*s.LocationID]
		}
	}

	return nil
}
