package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type ProgrammeTemplate struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	OrganizationID        uuid.UUID  `db:"organization_id" json:"organization_id"`
	Name                  string     `db:"name" json:"name"`
	Description           *string    `db:"description" json:"description,omitempty"`
	TargetDurationMinutes int        `db:"target_duration_minutes" json:"target_duration_minutes"`
	CreatedBy             *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	IsActive              bool       `db:"is_active" json:"is_active"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

type ProgrammeBlock struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	ProgrammeTemplateID uuid.UUID `db:"programme_template_id" json:"programme_template_id"`
	OrderIndex          int       `db:"order_index" json:"order_index"`
	Name                string    `db:"name" json:"name"`
	ExerciseType        *string   `db:"exercise_type" json:"exercise_type"`
	DurationSeconds     *int      `db:"duration_seconds" json:"duration_seconds"`
	Sets                *int      `db:"sets" json:"sets"`
	Reps                *string   `db:"reps" json:"reps"`
	RestSeconds         *int      `db:"rest_seconds" json:"rest_seconds"`
	Instructions        *string   `db:"instructions" json:"instructions"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

type ProgrammeTemplateWithBlocks struct {
	ProgrammeTemplate
	Blocks []ProgrammeBlock `json:"blocks"`
}

// BlockSnapshot is the frozen value copy of one programme block, stored
// inside a session's programme snapshot. It carries no foreign key back to
// programme_blocks; the source block may be edited or deleted afterwards.
type BlockSnapshot struct {
	ID              uuid.UUID `json:"id"`
	OrderIndex      int       `json:"order_index"`
	Name            string    `json:"name"`
	ExerciseType    *string   `json:"exercise_type"`
	DurationSeconds *int      `json:"duration_seconds"`
	Sets            *int      `json:"sets"`
	Reps            *string   `json:"reps"`
	RestSeconds     *int      `json:"rest_seconds"`
	Instructions    *string   `json:"instructions"`
}

// BlockSnapshots maps to a JSONB column.
type BlockSnapshots []BlockSnapshot

func (b BlockSnapshots) Value() (driver.Value, error) {
	if b == nil {
		return json.Marshal([]BlockSnapshot{})
	}
	return json.Marshal(b)
}

func (b *BlockSnapshots) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	case nil:
		*b = nil
		return nil
	default:
		return errors.New("incompatible type for BlockSnapshots")
	}
}

// SessionProgramme is the one-per-session snapshot row.
type SessionProgramme struct {
	ID                  uuid.UUID      `db:"id" json:"id"`
	SessionID           uuid.UUID      `db:"session_id" json:"session_id"`
	ProgrammeTemplateID *uuid.UUID     `db:"programme_template_id" json:"programme_template_id,omitempty"`
	Name                string         `db:"name" json:"name"`
	Blocks              BlockSnapshots `db:"blocks" json:"blocks"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}
