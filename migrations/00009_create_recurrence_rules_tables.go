package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateRecurrenceRulesTables, downCreateRecurrenceRulesTables)
}

// Recurring schedules are captured but not expanded into sessions yet;
// no expansion engine exists.
func upCreateRecurrenceRulesTables(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE recurrence_rules (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			trainer_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			location_id UUID REFERENCES locations(id) ON DELETE SET NULL,
			day_of_week INT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
			start_time TIME NOT NULL,
			programme_template_id UUID REFERENCES programme_templates(id) ON DELETE SET NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE TABLE recurrence_rule_students (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			recurrence_rule_id UUID NOT NULL REFERENCES recurrence_rules(id) ON DELETE CASCADE,
			student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			individual_focus TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		ALTER TABLE sessions ADD CONSTRAINT sessions_recurrence_rule_id_fkey
			FOREIGN KEY (recurrence_rule_id) REFERENCES recurrence_rules(id) ON DELETE SET NULL;
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateRecurrenceRulesTables(ctx context.Context, tx *sql.Tx) error {
	query := `
		ALTER TABLE sessions DROP CONSTRAINT IF EXISTS sessions_recurrence_rule_id_fkey;
		DROP TABLE IF EXISTS recurrence_rule_students;
		DROP TABLE IF EXISTS recurrence_rules;
	`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
