package repository

import (
	"context"
	"database/sql"

	"schedule-service/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ProgrammeRepository interface {
	Create(ctx context.Context, template *model.ProgrammeTemplate) (*model.ProgrammeTemplate, error)
	Update(ctx context.Context, template *model.ProgrammeTemplate) error
	Deactivate(ctx context.Context, templateID uuid.UUID) error
	ListActive(ctx context.Context, orgID uuid.UUID) ([]model.ProgrammeTemplate, error)
	FindWithBlocks(ctx context.Context, templateID uuid.UUID) (*model.ProgrammeTemplateWithBlocks, error)

	AddBlock(ctx context.Context, block *model.ProgrammeBlock) (*model.ProgrammeBlock, error)
	UpdateBlock(ctx context.Context, block *model.ProgrammeBlock) error
	DeleteBlock(ctx context.Context, blockID uuid.UUID) error
	ReorderBlocks(ctx context.Context, templateID uuid.UUID, blockIDs []uuid.UUID) error

	UpsertSessionProgramme(ctx context.Context, snapshot *model.SessionProgramme) error
	DeleteSessionProgramme(ctx context.Context, sessionID uuid.UUID) error
	FindSessionProgramme(ctx context.Context, sessionID uuid.UUID) (*model.SessionProgramme, error)
}

type postgresProgrammeRepository struct {
	db *sqlx.DB
}

func NewPostgresProgrammeRepository(db *sqlx.DB) ProgrammeRepository {
	return &postgresProgrammeRepository{db: db}
}

func (r *postgresProgrammeRepository) Create(ctx context.Context, template *model.ProgrammeTemplate) (*model.ProgrammeTemplate, error) {
	query := `
		INSERT INTO programme_templates (organization_id, name, description, target_duration_minutes, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		template.OrganizationID, template.Name, template.Description,
		template.TargetDurationMinutes, template.CreatedBy,
	)
	err := row.Scan(&template.ID, &template.IsActive, &template.CreatedAt, &template.UpdatedAt)

	if err != nil {
		return nil, err
	}

	return template, nil
}

func (r *postgresProgrammeRepository) Update(ctx context.Context, template *model.ProgrammeTemplate) error {
	query := `
		UPDATE programme_templates
		SET name = $1, description = $2, target_duration_minutes = $3, updated_at = now()
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		template.Name, template.Description, template.TargetDurationMinutes, template.ID,
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

// Deactivate is the soft delete: snapshots taken from this template stay
// valid, the template just stops appearing in pickers.
func (r *postgresProgrammeRepository) Deactivate(ctx context.Context, templateID uuid.UUID) error {
	query := `UPDATE programme_templates SET is_active = false, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, templateID)
	return err
}

func (r *postgresProgrammeRepository) ListActive(ctx context.Context, orgID uuid.UUID) ([]model.ProgrammeTemplate, error) {
	var templates []model.ProgrammeTemplate
	query := `SELECT * FROM programme_templates WHERE organization_id = $1 AND is_active ORDER BY name`
	err := r.db.SelectContext(ctx, &templates, query, orgID)

	if err != nil {
		return nil, err
	}

	if templates == nil {
		templates = []model.ProgrammeTemplate{}
	}

	return templates, nil
}

func (r *postgresProgrammeRepository) FindWithBlocks(ctx context.Context, templateID uuid.UUID) (*model.ProgrammeTemplateWithBlocks, error) {
	var template model.ProgrammeTemplate
	err := r.db.GetContext(ctx, &template, `SELECT * FROM programme_templates WHERE id = $1`, templateID)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var blocks []model.ProgrammeBlock
	// Secondary order by id keeps output stable if two blocks ever share an index.
	query := `SELECT * FROM programme_blocks WHERE programme_template_id = $1 ORDER BY order_index ASC, id ASC`
	if err := r.db.SelectContext(ctx, &blocks, query, templateID); err != nil {
		return nil, err
	}

	if blocks == nil {
		blocks = []model.ProgrammeBlock{}
	}

	return &model.ProgrammeTemplateWithBlocks{ProgrammeTemplate: template, Blocks: blocks}, nil
}

func (r *postgresProgrammeRepository) AddBlock(ctx context.Context, block *model.ProgrammeBlock) (*model.ProgrammeBlock, error) {
	// Next order index is one past the current maximum.
	query := `
		INSERT INTO programme_blocks
			(programme_template_id, order_index, name, exercise_type, duration_seconds, sets, reps, rest_seconds, instructions)
		VALUES (
			$1,
			COALESCE((SELECT MAX(order_index) + 1 FROM programme_blocks WHERE programme_template_id = $1), 0),
			$2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id, order_index, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		block.ProgrammeTemplateID, block.Name, block.ExerciseType,
		block.DurationSeconds, block.Sets, block.Reps, block.RestSeconds, block.Instructions,
	)
	err := row.Scan(&block.ID, &block.OrderIndex, &block.CreatedAt, &block.UpdatedAt)

	if err != nil {
		return nil, err
	}

	return block, nil
}

func (r *postgresProgrammeRepository) UpdateBlock(ctx context.Context, block *model.ProgrammeBlock) error {
	query := `
		UPDATE programme_blocks
		SET name = $1, exercise_type = $2, duration_seconds = $3, sets = $4,
			reps = $5, rest_seconds = $6, instructions = $7, updated_at = now()
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		block.Name, block.ExerciseType, block.DurationSeconds, block.Sets,
		block.Reps, block.RestSeconds, block.Instructions, block.ID,
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

// DeleteBlock removes the block immediately and permanently; existing
// snapshots are unaffected since they hold copies.
func (r *postgresProgrammeRepository) DeleteBlock(ctx context.Context, blockID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM programme_blocks WHERE id = $1`, blockID)
	return err
}

func (r *postgresProgrammeRepository) ReorderBlocks(ctx context.Context, templateID uuid.UUID, blockIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE programme_blocks SET order_index = $1, updated_at = now() WHERE id = $2 AND programme_template_id = $3`
	for index, blockID := range blockIDs {
		if _, err := tx.ExecContext(ctx, query, index, blockID, templateID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpsertSessionProgramme fully replaces any snapshot already attached to the
// session; old and new programme content are never merged.
func (r *postgresProgrammeRepository) UpsertSessionProgramme(ctx context.Context, snapshot *model.SessionProgramme) error {
	query := `
		INSERT INTO session_programmes (session_id, programme_template_id, name, blocks)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE
		SET programme_template_id = EXCLUDED.programme_template_id,
			name = EXCLUDED.name,
			blocks = EXCLUDED.blocks,
			updated_at = now()
	`
	_, err := r.db.ExecContext(ctx, query,
		snapshot.SessionID, snapshot.ProgrammeTemplateID, snapshot.Name, snapshot.Blocks,
	)
	return err
}

func (r *postgresProgrammeRepository) DeleteSessionProgramme(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session_programmes WHERE session_id = $1`, sessionID)
	return err
}

func (r *postgresProgrammeRepository) FindSessionProgramme(ctx context.Context, sessionID uuid.UUID) (*model.SessionProgramme, error) {
	var snapshot model.SessionProgramme
	err := r.db.GetContext(ctx, &snapshot, `SELECT * FROM session_programmes WHERE session_id = $1`, sessionID)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &snapshot, nil
}
