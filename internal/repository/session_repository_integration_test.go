package repository

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"schedule-service/internal/model"
	_ "schedule-service/migrations"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type SessionRepositoryIntegrationTestSuite struct {
	suite.Suite
	db            *sqlx.DB
	sessionRepo   SessionRepository
	programmeRepo ProgrammeRepository
	pgc           *postgres.PostgresContainer
	ctx           context.Context

	orgID     uuid.UUID
	trainerID uuid.UUID
	studentA  uuid.UUID
	studentB  uuid.UUID
	studentC  uuid.UUID
}

func (s *SessionRepositoryIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgc, err := postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("could not start postgres container: %s", err)
	}
	s.pgc = pgc

	connStr, err := pgc.ConnectionString(s.ctx, "sslmode=disable")
	assert.NoError(s.T(), err)

	db, err := sqlx.Connect("pgx", connStr)
	assert.NoError(s.T(), err)
	s.db = db

	err = goose.Up(db.DB, "../../migrations")
	assert.NoError(s.T(), err)

	s.sessionRepo = NewPostgresSessionRepository(s.db)
	s.programmeRepo = NewPostgresProgrammeRepository(s.db)
	s.seedFixtures()
}

func (s *SessionRepositoryIntegrationTestSuite) TearDownSuite() {
	s.db.Close()
	if err := s.pgc.Terminate(s.ctx); err != nil {
		log.Fatalf("failed to terminate pg container: %s", err)
	}
}

func (s *SessionRepositoryIntegrationTestSuite) seedFixtures() {
	err := s.db.QueryRowxContext(s.ctx,
		`INSERT INTO organizations (name) VALUES ('Test Gym') RETURNING id`,
	).Scan(&s.orgID)
	require.NoError(s.T(), err)

	err = s.db.QueryRowxContext(s.ctx,
		`INSERT INTO profiles (organization_id, role, full_name, email, password_hash)
		 VALUES ($1, 'trainer', 'Coach Jo', 'coach@test.com', 'hash') RETURNING id`,
		s.orgID,
	).Scan(&s.trainerID)
	require.NoError(s.T(), err)

	for _, seed := range []struct {
		name string
		dest *uuid.UUID
	}{
		{"Alex", &s.studentA},
		{"Brook", &s.studentB},
		{"Casey", &s.studentC},
	} {
		err = s.db.QueryRowxContext(s.ctx,
			`INSERT INTO students (organization_id, full_name) VALUES ($1, $2) RETURNING id`,
			s.orgID, seed.name,
		).Scan(seed.dest)
		require.NoError(s.T(), err)
	}
}

func (s *SessionRepositoryIntegrationTestSuite) newSession(startsAt time.Time) *model.Session {
	return &model.Session{
		OrganizationID:  s.orgID,
		TrainerID:       s.trainerID,
		StartsAt:        startsAt,
		DurationMinutes: model.SessionDurationMinutes,
		Status:          model.SessionScheduled,
	}
}

func (s *SessionRepositoryIntegrationTestSuite) TestTrainerOverlapConstraint() {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := s.sessionRepo.Create(s.ctx, s.newSession(day), nil)
	require.NoError(s.T(), err)

	// 09:30 overlaps the 09:00-10:00 hour.
	_, err = s.sessionRepo.Create(s.ctx, s.newSession(day.Add(30*time.Minute)), nil)
	require.Error(s.T(), err)
	var pgErr *pgconn.PgError
	require.True(s.T(), errors.As(err, &pgErr))
	assert.Equal(s.T(), "23P01", pgErr.Code)
	assert.Equal(s.T(), "no_trainer_overlap", pgErr.ConstraintName)

	// Back-to-back at 10:00 is allowed; the range is half-open.
	_, err = s.sessionRepo.Create(s.ctx, s.newSession(day.Add(time.Hour)), nil)
	assert.NoError(s.T(), err)
}

func (s *SessionRepositoryIntegrationTestSuite) TestCancelledSessionDoesNotBlock() {
	day := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

	first, err := s.sessionRepo.Create(s.ctx, s.newSession(day), nil)
	require.NoError(s.T(), err)

	status := model.SessionCancelled
	require.NoError(s.T(), s.sessionRepo.Update(s.ctx, first.ID, SessionPatch{Status: &status}))

	// The slot reopens once the session leaves scheduled status.
	_, err = s.sessionRepo.Create(s.ctx, s.newSession(day.Add(30*time.Minute)), nil)
	assert.NoError(s.T(), err)
}

func (s *SessionRepositoryIntegrationTestSuite) TestOtherTrainerMayOverlap() {
	day := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

	_, err := s.sessionRepo.Create(s.ctx, s.newSession(day), nil)
	require.NoError(s.T(), err)

	var otherTrainer uuid.UUID
	err = s.db.QueryRowxContext(s.ctx,
		`INSERT INTO profiles (organization_id, role, full_name, email, password_hash)
		 VALUES ($1, 'trainer', 'Coach Max', 'max@test.com', 'hash') RETURNING id`,
		s.orgID,
	).Scan(&otherTrainer)
	require.NoError(s.T(), err)

	other := s.newSession(day.Add(15 * time.Minute))
	other.TrainerID = otherTrainer
	_, err = s.sessionRepo.Create(s.ctx, other, nil)
	assert.NoError(s.T(), err)
}

func (s *SessionRepositoryIntegrationTestSuite) TestReplaceRoster() {
	day := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

	created, err := s.sessionRepo.Create(s.ctx, s.newSession(day), []uuid.UUID{s.studentA, s.studentB})
	require.NoError(s.T(), err)

	details, err := s.sessionRepo.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), details.Participants, 2)

	// Full replacement, not a merge.
	require.NoError(s.T(), s.sessionRepo.ReplaceRoster(s.ctx, created.ID, []uuid.UUID{s.studentC}))

	details, err = s.sessionRepo.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), details.Participants, 1)
	assert.Equal(s.T(), s.studentC, details.Participants[0].StudentID)
	assert.Equal(s.T(), "Casey", details.Participants[0].StudentName)

	require.NoError(s.T(), s.sessionRepo.ReplaceRoster(s.ctx, created.ID, nil))

	details, err = s.sessionRepo.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), details.Participants)
}

func (s *SessionRepositoryIntegrationTestSuite) TestProgrammeSnapshotUpsertAndAttach() {
	day := time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)

	created, err := s.sessionRepo.Create(s.ctx, s.newSession(day), nil)
	require.NoError(s.T(), err)

	snapshot := &model.SessionProgramme{
		SessionID: created.ID,
		Name:      "Full Body",
		Blocks: model.BlockSnapshots{
			{OrderIndex: 0, Name: "Squats"},
			{OrderIndex: 1, Name: "Plank"},
		},
	}
	require.NoError(s.T(), s.programmeRepo.UpsertSessionProgramme(s.ctx, snapshot))

	details, err := s.sessionRepo.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), details.Programme)
	require.Len(s.T(), details.Programme.Blocks, 2)
	assert.Equal(s.T(), "Squats", details.Programme.Blocks[0].Name)

	// Re-upsert replaces the snapshot wholesale.
	replacement := &model.SessionProgramme{
		SessionID: created.ID,
		Name:      "Mobility",
		Blocks:    model.BlockSnapshots{{OrderIndex: 0, Name: "Hip Circles"}},
	}
	require.NoError(s.T(), s.programmeRepo.UpsertSessionProgramme(s.ctx, replacement))

	stored, err := s.programmeRepo.FindSessionProgramme(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Mobility", stored.Name)
	require.Len(s.T(), stored.Blocks, 1)
}

func (s *SessionRepositoryIntegrationTestSuite) TestFindByIDLoadsLocation() {
	day := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)

	var locationID uuid.UUID
	err := s.db.QueryRowxContext(s.ctx,
		`INSERT INTO locations (organization_id, name, location_type, meeting_point)
		 VALUES ($1, 'Riverside Park', 'outdoor', 'north gate') RETURNING id`,
		s.orgID,
	).Scan(&locationID)
	require.NoError(s.T(), err)

	session := s.newSession(day)
	session.LocationID = &locationID
	created, err := s.sessionRepo.Create(s.ctx, session, nil)
	require.NoError(s.T(), err)

	details, err := s.sessionRepo.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), details.LocationName)
	assert.Equal(s.T(), "Riverside Park", *details.LocationName)

	// The full location row rides along, not just the joined name.
	require.NotNil(s.T(), details.Location)
	assert.Equal(s.T(), locationID, details.Location.ID)
	assert.Equal(s.T(), model.LocationOutdoor, details.Location.LocationType)
	require.NotNil(s.T(), details.Location.MeetingPoint)
	assert.Equal(s.T(), "north gate", *details.Location.MeetingPoint)
}

func (s *SessionRepositoryIntegrationTestSuite) TestDeleteCascadesRosterAndSnapshot() {
	day := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)

	created, err := s.sessionRepo.Create(s.ctx, s.newSession(day), []uuid.UUID{s.studentA})
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.programmeRepo.UpsertSessionProgramme(s.ctx, &model.SessionProgramme{
		SessionID: created.ID,
		Name:      "Full Body",
	}))

	require.NoError(s.T(), s.sessionRepo.Delete(s.ctx, created.ID))

	var count int
	require.NoError(s.T(), s.db.GetContext(s.ctx, &count,
		`SELECT COUNT(*) FROM session_students WHERE session_id = $1`, created.ID))
	assert.Zero(s.T(), count)
	require.NoError(s.T(), s.db.GetContext(s.ctx, &count,
		`SELECT COUNT(*) FROM session_programmes WHERE session_id = $1`, created.ID))
	assert.Zero(s.T(), count)
}

func TestSessionRepositoryIntegration(t *testing.T) {
	if os.Getenv("DOCKER_HOST") == "" {
		t.Skip("Docker is not available, skipping integration test.")
	}
	suite.Run(t, new(SessionRepositoryIntegrationTestSuite))
}
