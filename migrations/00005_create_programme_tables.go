package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateProgrammeTables, downCreateProgrammeTables)
}

func upCreateProgrammeTables(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE programme_templates (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT,
			target_duration_minutes INT NOT NULL DEFAULT 60,
			created_by UUID REFERENCES profiles(id) ON DELETE SET NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE TABLE programme_blocks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			programme_template_id UUID NOT NULL REFERENCES programme_templates(id) ON DELETE CASCADE,
			order_index INT NOT NULL,
			name TEXT NOT NULL,
			exercise_type TEXT CHECK (exercise_type IN ('warmup', 'strength', 'cardio', 'flexibility', 'cooldown', 'rest', 'other')),
			duration_seconds INT,
			sets INT,
			reps TEXT,
			rest_seconds INT,
			instructions TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE INDEX programme_blocks_template_order_idx ON programme_blocks(programme_template_id, order_index);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateProgrammeTables(ctx context.Context, tx *sql.Tx) error {
	query := `
		DROP TABLE IF EXISTS programme_blocks;
		DROP TABLE IF EXISTS programme_templates;
	`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
