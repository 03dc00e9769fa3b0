package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessionStudentsTable, downCreateSessionStudentsTable)
}

func upCreateSessionStudentsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE session_students (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			individual_focus TEXT,
			attendance TEXT CHECK (attendance IN ('pending', 'attended', 'no_show', 'cancelled')),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			UNIQUE(session_id, student_id)
		);

		CREATE INDEX session_students_student_id_idx ON session_students(student_id);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateSessionStudentsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS session_students;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
