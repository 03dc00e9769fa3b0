package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateStudentsTable, downCreateStudentsTable)
}

func upCreateStudentsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE students (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			profile_id UUID REFERENCES profiles(id) ON DELETE SET NULL,
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			full_name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			notes TEXT,
			constraints_injuries TEXT,
			goals TEXT,
			emergency_contact_name TEXT,
			emergency_contact_phone TEXT,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE INDEX students_organization_id_idx ON students(organization_id) WHERE is_active;
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateStudentsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS students;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
