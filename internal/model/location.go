package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	LocationIndoor  = "indoor"
	LocationOutdoor = "outdoor"
)

type Location struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	Address        *string   `db:"address" json:"address,omitempty"`
	LocationType   string    `db:"location_type" json:"location_type"`
	Latitude       *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude      *float64  `db:"longitude" json:"longitude,omitempty"`
	MeetingPoint   *string   `db:"meeting_point" json:"meeting_point,omitempty"`
	EquipmentNotes *string   `db:"equipment_notes" json:"equipment_notes,omitempty"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
