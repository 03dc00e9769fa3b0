package model

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	ProfileID             *uuid.UUID `db:"profile_id" json:"profile_id,omitempty"`
	OrganizationID        uuid.UUID  `db:"organization_id" json:"organization_id"`
	FullName              string     `db:"full_name" json:"full_name"`
	Email                 *string    `db:"email" json:"email,omitempty"`
	Phone                 *string    `db:"phone" json:"phone,omitempty"`
	Notes                 *string    `db:"notes" json:"notes,omitempty"`
	ConstraintsInjuries   *string    `db:"constraints_injuries" json:"constraints_injuries,omitempty"`
	Goals                 *string    `db:"goals" json:"goals,omitempty"`
	EmergencyContactName  *string    `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	IsActive              bool       `db:"is_active" json:"is_active"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}
