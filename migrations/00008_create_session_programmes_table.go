package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessionProgrammesTable, downCreateSessionProgrammesTable)
}

func upCreateSessionProgrammesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE session_programmes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			programme_template_id UUID REFERENCES programme_templates(id) ON DELETE SET NULL,
			name TEXT NOT NULL,
			blocks JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			UNIQUE(session_id)
		);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateSessionProgrammesTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS session_programmes;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
