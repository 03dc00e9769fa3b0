package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"

	// Sessions are always one hour; the column has a matching default.
	SessionDurationMinutes = 60
)

const (
	AttendancePending   = "pending"
	AttendanceAttended  = "attended"
	AttendanceNoShow    = "no_show"
	AttendanceCancelled = "cancelled"
)

type Session struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	OrganizationID   uuid.UUID  `db:"organization_id" json:"organization_id"`
	TrainerID        uuid.UUID  `db:"trainer_id" json:"trainer_id"`
	LocationID       *uuid.UUID `db:"location_id" json:"location_id,omitempty"`
	RecurrenceRuleID *uuid.UUID `db:"recurrence_rule_id" json:"recurrence_rule_id,omitempty"`
	StartsAt         time.Time  `db:"starts_at" json:"starts_at"`
	DurationMinutes  int        `db:"duration_minutes" json:"duration_minutes"`
	Status           string     `db:"status" json:"status"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

func (s *Session) EndsAt() time.Time {
	return s.StartsAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// SessionParticipant is one roster row. At most two exist per session;
// the cap is enforced in the service layer, not the schema.
type SessionParticipant struct {
	ID              uuid.UUID `db:"id" json:"id"`
	SessionID       uuid.UUID `db:"session_id" json:"session_id"`
	StudentID       uuid.UUID `db:"student_id" json:"student_id"`
	IndividualFocus *string   `db:"individual_focus" json:"individual_focus,omitempty"`
	Attendance      *string   `db:"attendance" json:"attendance,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`

	// Joined for display; sorted by join time, not an explicit rank.
	StudentName string `db:"student_name" json:"student_name,omitempty"`
}

// SessionDetails is a session with its relations resolved, as the schedule
// and session-detail views consume it.
type SessionDetails struct {
	Session
	TrainerName  string               `db:"trainer_name" json:"trainer_name"`
	LocationName *string              `db:"location_name" json:"location_name,omitempty"`
	Location     *Location            `json:"location,omitempty"`
	Participants []SessionParticipant `json:"participants"`
	Programme    *SessionProgramme    `json:"programme,omitempty"`
}
