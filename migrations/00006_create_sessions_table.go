package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessionsTable, downCreateSessionsTable)
}

func upCreateSessionsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE EXTENSION IF NOT EXISTS btree_gist;

		CREATE TABLE sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			trainer_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			location_id UUID REFERENCES locations(id) ON DELETE SET NULL,
			recurrence_rule_id UUID,
			starts_at TIMESTAMP WITH TIME ZONE NOT NULL,
			duration_minutes INT NOT NULL DEFAULT 60,
			status TEXT NOT NULL DEFAULT 'scheduled' CHECK (status IN ('scheduled', 'completed', 'cancelled')),
			notes TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE INDEX sessions_org_starts_at_idx ON sessions(organization_id, starts_at);

		-- Two scheduled sessions for one trainer may not overlap in time.
		-- The constraint is the single serialization point for concurrent
		-- creates; the application never pre-checks.
		ALTER TABLE sessions ADD CONSTRAINT no_trainer_overlap
			EXCLUDE USING gist (
				trainer_id WITH =,
				tstzrange(starts_at, starts_at + make_interval(mins => duration_minutes)) WITH &&
			)
			WHERE (status = 'scheduled');
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateSessionsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS sessions;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
