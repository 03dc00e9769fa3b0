package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateLocationsTable, downCreateLocationsTable)
}

func upCreateLocationsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE locations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			address TEXT,
			location_type TEXT NOT NULL DEFAULT 'indoor' CHECK (location_type IN ('indoor', 'outdoor')),
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			meeting_point TEXT,
			equipment_notes TEXT,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateLocationsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS locations;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
