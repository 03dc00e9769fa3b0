package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateOrganizationsAndProfiles, downCreateOrganizationsAndProfiles)
}

func upCreateOrganizationsAndProfiles(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE organizations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE TABLE profiles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID REFERENCES organizations(id) ON DELETE SET NULL,
			role TEXT NOT NULL DEFAULT 'trainer' CHECK (role IN ('trainer', 'student', 'admin')),
			full_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			phone TEXT,
			avatar_url TEXT,
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

func downCreateOrganizationsAndProfiles(ctx context.Context, tx *sql.Tx) error {
	query := `
		DROP TABLE IF EXISTS profiles;
		DROP TABLE IF EXISTS organizations;
	`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
