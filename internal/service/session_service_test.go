package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"schedule-service/internal/model"
	"schedule-service/internal/repository"
	"schedule-service/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*model.Session
	rosters   map[uuid.UUID][]uuid.UUID
	createErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[uuid.UUID]*model.Session),
		rosters:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *model.Session, studentIDs []uuid.UUID) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	session.ID = uuid.New()
	f.sessions[session.ID] = session
	f.rosters[session.ID] = studentIDs
	return session, nil
}

func (f *fakeSessionRepo) Update(_ context.Context, sessionID uuid.UUID, patch repository.SessionPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return sql.ErrNoRows
	}
	if patch.StartsAt != nil {
		session.StartsAt = *patch.StartsAt
	}
	if patch.SetLocation {
		session.LocationID = patch.LocationID
	}
	if patch.SetNotes {
		session.Notes = patch.Notes
	}
	if patch.Status != nil {
		session.Status = *patch.Status
	}
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	delete(f.rosters, sessionID)
	return nil
}

func (f *fakeSessionRepo) FindByID(_ context.Context, sessionID uuid.UUID) (*model.SessionDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &model.SessionDetails{Session: *session}, nil
}

func (f *fakeSessionRepo) ReplaceRoster(_ context.Context, sessionID uuid.UUID, studentIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rosters[sessionID] = studentIDs
	return nil
}

func (f *fakeSessionRepo) List(_ context.Context, _ uuid.UUID, _ repository.SessionFilter) ([]model.SessionDetails, error) {
	return []model.SessionDetails{}, nil
}

func (f *fakeSessionRepo) ListByStudent(_ context.Context, _ uuid.UUID) ([]model.SessionDetails, error) {
	return []model.SessionDetails{}, nil
}

type noopPublisher struct{}

func (noopPublisher) PublishSessionCreated(*model.Session) error { return nil }

func (noopPublisher) PublishSessionStatusChanged(uuid.UUID, string) error { return nil }

func (noopPublisher) PublishProgrammeAssigned(uuid.UUID, uuid.UUID, string) error { return nil }

func trainerActor() service.Actor {
	orgID := uuid.New()
	return service.Actor{ProfileID: uuid.New(), OrganizationID: &orgID, Role: "trainer"}
}

func TestCreateSession_RejectsMoreThanTwoStudents(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo, noopPublisher{})

	input := service.CreateSessionInput{
		StartsAt:   time.Now().Add(time.Hour),
		StudentIDs: []uuid.UUID{uuid.New(), uuid.New(), uuid.New()},
	}

	_, err := svc.CreateSession(context.Background(), trainerActor(), input)
	require.ErrorIs(t, err, service.ErrTooManyStudents)
	require.Empty(t, repo.sessions)
}

func TestCreateSession_DeduplicatesRoster(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo, noopPublisher{})

	studentID := uuid.New()
	input := service.CreateSessionInput{
		StartsAt:   time.Now().Add(time.Hour),
		StudentIDs: []uuid.UUID{studentID, studentID, studentID},
	}

	created, err := svc.CreateSession(context.Background(), trainerActor(), input)
	require.NoError(t, err)
	require.Len(t, repo.rosters[created.ID], 1)
}

func TestCreateSession_RequiresOrganization(t *testing.T) {
	svc := service.NewSessionService(newFakeSessionRepo(), noopPublisher{})

	actor := service.Actor{ProfileID: uuid.New(), Role: "trainer"}
	_, err := svc.CreateSession(context.Background(), actor, service.CreateSessionInput{StartsAt: time.Now()})
	require.ErrorIs(t, err, service.ErrNoOrganization)
}

func TestCreateSession_DefaultsTrainerToActor(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo, noopPublisher{})

	actor := trainerActor()
	created, err := svc.CreateSession(context.Background(), actor, service.CreateSessionInput{StartsAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	require.Equal(t, actor.ProfileID, created.TrainerID)
	require.Equal(t, model.SessionScheduled, created.Status)
	require.Equal(t, model.SessionDurationMinutes, created.DurationMinutes)
}

func TestCreateSession_TranslatesOverlapConstraint(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.createErr = &pgconn.PgError{Code: "23P01", ConstraintName: "no_trainer_overlap"}
	svc := service.NewSessionService(repo, noopPublisher{})

	_, err := svc.CreateSession(context.Background(), trainerActor(), service.CreateSessionInput{StartsAt: time.Now()})
	require.ErrorIs(t, err, service.ErrTrainerOverlap)
}

func TestCreateSession_OtherConstraintPassesThrough(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.createErr = &pgconn.PgError{Code: "23503", ConstraintName: "sessions_trainer_id_fkey"}
	svc := service.NewSessionService(repo, noopPublisher{})

	_, err := svc.CreateSession(context.Background(), trainerActor(), service.CreateSessionInput{StartsAt: time.Now()})
	require.Error(t, err)
	require.NotErrorIs(t, err, service.ErrTrainerOverlap)
}

func TestMarkSessionComplete_Idempotent(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo, noopPublisher{})

	created, err := svc.CreateSession(context.Background(), trainerActor(), service.CreateSessionInput{StartsAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, svc.MarkSessionComplete(context.Background(), created.ID))
	require.NoError(t, svc.MarkSessionComplete(context.Background(), created.ID))
	require.Equal(t, model.SessionCompleted, repo.sessions[created.ID].Status)
}

func TestUpdateSession_UnknownSession(t *testing.T) {
	svc := service.NewSessionService(newFakeSessionRepo(), noopPublisher{})

	notes := "bring bands"
	err := svc.UpdateSession(context.Background(), uuid.New(), service.UpdateSessionInput{SetNotes: true, Notes: &notes})
	require.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestUpdateSession_ReplacesRoster(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo, noopPublisher{})

	created, err := svc.CreateSession(context.Background(), trainerActor(), service.CreateSessionInput{
		StartsAt:   time.Now().Add(time.Hour),
		StudentIDs: []uuid.UUID{uuid.New(), uuid.New()},
	})
	require.NoError(t, err)

	replacement := []uuid.UUID{uuid.New()}
	err = svc.UpdateSession(context.Background(), created.ID, service.UpdateSessionInput{StudentIDs: &replacement})
	require.NoError(t, err)
	require.Equal(t, replacement, repo.rosters[created.ID])
}

func TestSetRoster_RejectsMoreThanTwo(t *testing.T) {
	svc := service.NewSessionService(newFakeSessionRepo(), noopPublisher{})

	err := svc.SetRoster(context.Background(), uuid.New(), []uuid.UUID{uuid.New(), uuid.New(), uuid.New()})
	require.ErrorIs(t, err, service.ErrTooManyStudents)
}

func TestSetRoster_EmptyClearsRoster(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := service.NewSessionService(repo, noopPublisher{})

	sessionID := uuid.New()
	require.NoError(t, svc.SetRoster(context.Background(), sessionID, nil))
	require.Empty(t, repo.rosters[sessionID])
}

func TestGetSession_NotFound(t *testing.T) {
	svc := service.NewSessionService(newFakeSessionRepo(), noopPublisher{})

	_, err := svc.GetSession(context.Background(), uuid.New())
	require.ErrorIs(t, err, service.ErrSessionNotFound)
}
