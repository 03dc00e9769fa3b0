package events

import (
	"encoding/json"
	"log"
	"time"

	"schedule-service/internal/model"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type EventPublisher interface {
	PublishSessionCreated(session *model.Session) error
	PublishSessionStatusChanged(sessionID uuid.UUID, status string) error
	PublishProgrammeAssigned(sessionID, programmeID uuid.UUID, name string) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type SessionCreatedEvent struct {
	EventType string    `json:"event_type"`
	SessionID uuid.UUID `json:"session_id"`
	TrainerID uuid.UUID `json:"trainer_id"`
	StartsAt  time.Time `json:"starts_at"`
}

type SessionStatusChangedEvent struct {
	EventType string    `json:"event_type"`
	SessionID uuid.UUID `json:"session_id"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

type ProgrammeAssignedEvent struct {
	EventType   string    `json:"event_type"`
	SessionID   uuid.UUID `json:"session_id"`
	ProgrammeID uuid.UUID `json:"programme_id"`
	Name        string    `json:"name"`
}

func (p *NatsPublisher) PublishSessionCreated(session *model.Session) error {
	event := SessionCreatedEvent{
		EventType: "session.created",
		SessionID: session.ID,
		TrainerID: session.TrainerID,
		StartsAt:  session.StartsAt,
	}

	return p.publish("session.created", event)
}

func (p *NatsPublisher) PublishSessionStatusChanged(sessionID uuid.UUID, status string) error {
	event := SessionStatusChangedEvent{
		EventType: "session." + status,
		SessionID: sessionID,
		Status:    status,
		ChangedAt: time.Now(),
	}

	return p.publish("session."+status, event)
}

func (p *NatsPublisher) PublishProgrammeAssigned(sessionID, programmeID uuid.UUID, name string) error {
	event := ProgrammeAssignedEvent{
		EventType:   "programme.assigned",
		SessionID:   sessionID,
		ProgrammeID: programmeID,
		Name:        name,
	}

	return p.publish("programme.assigned", event)
}

func (p *NatsPublisher) publish(subject string, event interface{}) error {
	eventJSON, err := json.Marshal(event)

	if err != nil {
		log.Printf("Error marshalling event JSON: %v", err)
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		log.Printf("Error publishing to NATS: %v", err)
		return err
	}

	log.Printf("Published event to NATS on subject '%s'", subject)

	return nil
}
