package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"schedule-service/internal/events"
	"schedule-service/internal/model"
	"schedule-service/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManyStudents = errors.New("maximum 2 students per session")
	ErrNoOrganization  = errors.New("no organization found")
	ErrTrainerOverlap  = errors.New("you already have a session at this time")
)

// pgExclusionViolation is SQLSTATE 23P01, raised by the no_trainer_overlap
// EXCLUDE constraint. The constraint is the only overlap check: concurrent
// creates both attempt the insert and exactly one wins.
const pgExclusionViolation = "23P01"

const overlapConstraint = "no_trainer_overlap"

// Actor identifies the caller for every operation; there is no ambient
// current-user state.
type Actor struct {
	ProfileID      uuid.UUID
	OrganizationID *uuid.UUID
	Role           string
}

type CreateSessionInput struct {
	TrainerID  *uuid.UUID
	LocationID *uuid.UUID
	StartsAt   time.Time
	Notes      *string
	StudentIDs []uuid.UUID
}

// UpdateSessionInput is a partial update: nil fields are untouched, the
// Set* flags clear a column when their pointer is nil, and a non-nil
// StudentIDs replaces the whole roster.
type UpdateSessionInput struct {
	StartsAt    *time.Time
	SetLocation bool
	LocationID  *uuid.UUID
	SetNotes    bool
	Notes       *string
	Status      *string
	StudentIDs  *[]uuid.UUID
}

type SessionService interface {
	CreateSession(ctx context.Context, actor Actor, input CreateSessionInput) (*model.Session, error)
	UpdateSession(ctx context.Context, sessionID uuid.UUID, input UpdateSessionInput) error
	MarkSessionComplete(ctx context.Context, sessionID uuid.UUID) error
	CancelSession(ctx context.Context, sessionID uuid.UUID) error
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
	GetSession(ctx context.Context, sessionID uuid.UUID) (*model.SessionDetails, error)
	ListSessions(ctx context.Context, actor Actor, filter repository.SessionFilter) ([]model.SessionDetails, error)
	ListTodaySessions(ctx context.Context, actor Actor) ([]model.SessionDetails, error)
	ListStudentSessions(ctx context.Context, studentID uuid.UUID) ([]model.SessionDetails, error)
	SetRoster(ctx context.Context, sessionID uuid.UUID, studentIDs []uuid.UUID) error
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	publisher   events.EventPublisher
}

func NewSessionService(repo repository.SessionRepository, pub events.EventPublisher) SessionService {
	return &sessionService{sessionRepo: repo, publisher: pub}
}

func (s *sessionService) CreateSession(ctx context.Context, actor Actor, input CreateSessionInput) (*model.Session, error) {
	studentIDs := dedupe(input.StudentIDs)
	if len(studentIDs) > 2 {
		return nil, ErrTooManyStudents
	}

	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}

	// Selected trainer, or the caller by default.
	trainerID := actor.ProfileID
	if input.TrainerID != nil {
		trainerID = *input.TrainerID
	}

	session := &model.Session{
		OrganizationID:  *actor.OrganizationID,
		TrainerID:       trainerID,
		LocationID:      input.LocationID,
		StartsAt:        input.StartsAt,
		DurationMinutes: model.SessionDurationMinutes,
		Status:          model.SessionScheduled,
		Notes:           input.Notes,
	}

	created, err := s.sessionRepo.Create(ctx, session, studentIDs)
	if err != nil {
		return nil, translateOverlap(err)
	}

	go s.publisher.PublishSessionCreated(created)

	return created, nil
}

func (s *sessionService) UpdateSession(ctx context.Context, sessionID uuid.UUID, input UpdateSessionInput) error {
	patch := repository.SessionPatch{
		StartsAt:    input.StartsAt,
		SetLocation: input.SetLocation,
		LocationID:  input.LocationID,
		SetNotes:    input.SetNotes,
		Notes:       input.Notes,
		Status:      input.Status,
	}

	if patch.StartsAt != nil || patch.SetLocation || patch.SetNotes || patch.Status != nil {
		if err := s.sessionRepo.Update(ctx, sessionID, patch); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSessionNotFound
			}
			return translateOverlap(err)
		}
	}

	if input.StudentIDs != nil {
		if err := s.SetRoster(ctx, sessionID, *input.StudentIDs); err != nil {
			return err
		}
	}

	return nil
}

// MarkSessionComplete is idempotent: completing an already-completed
// session rewrites the same status and succeeds.
func (s *sessionService) MarkSessionComplete(ctx context.Context, sessionID uuid.UUID) error {
	status := model.SessionCompleted
	if err := s.UpdateSession(ctx, sessionID, UpdateSessionInput{Status: &status}); err != nil {
		return err
	}

	go s.publisher.PublishSessionStatusChanged(sessionID, model.SessionCompleted)

	return nil
}

func (s *sessionService) CancelSession(ctx context.Context, sessionID uuid.UUID) error {
	status := model.SessionCancelled
	if err := s.UpdateSession(ctx, sessionID, UpdateSessionInput{Status: &status}); err != nil {
		return err
	}

	go s.publisher.PublishSessionStatusChanged(sessionID, model.SessionCancelled)

	return nil
}

// DeleteSession hard-deletes the session and, via FK cascade, its roster and
// snapshot. The UI exposes only cancel; this exists for cleanup flows.
func (s *sessionService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}

func (s *sessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*model.SessionDetails, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) ListSessions(ctx context.Context, actor Actor, filter repository.SessionFilter) ([]model.SessionDetails, error) {
	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	return s.sessionRepo.List(ctx, *actor.OrganizationID, filter)
}

func (s *sessionService) ListTodaySessions(ctx context.Context, actor Actor) ([]model.SessionDetails, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 2)
	return s.ListSessions(ctx, actor, repository.SessionFilter{From: &from, To: &to})
}

func (s *sessionService) ListStudentSessions(ctx context.Context, studentID uuid.UUID) ([]model.SessionDetails, error) {
	return s.sessionRepo.ListByStudent(ctx, studentID)
}

func (s *sessionService) SetRoster(ctx context.Context, sessionID uuid.UUID, studentIDs []uuid.UUID) error {
	deduped := dedupe(studentIDs)
	if len(deduped) > 2 {
		return ErrTooManyStudents
	}
	return s.sessionRepo.ReplaceRoster(ctx, sessionID, deduped)
}

func translateOverlap(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation && pgErr.ConstraintName == overlapConstraint {
		return ErrTrainerOverlap
	}
	return err
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
