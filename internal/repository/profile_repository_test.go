package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"schedule-service/internal/model"
	repo "schedule-service/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestPostgresProfileRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresProfileRepository(sqlxDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO profiles (organization_id, role, full_name, email, password_hash, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`)).WithArgs(nil, "trainer", "Coach Jo", "a@b.com", "hash", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))

	nid, err := r.Create(context.Background(), &model.Profile{
		Role:         "trainer",
		FullName:     "Coach Jo",
		Email:        "a@b.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.Equal(t, id, nid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepository_FindByID_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresProfileRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM profiles WHERE id = $1`)).
		WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrNoRows)

	p, err := r.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfileRepository_CreateOrganizationForProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresProfileRepository(sqlxDB)

	orgID := uuid.New()
	profileID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO organizations (name) VALUES ($1) RETURNING id, name, created_at, updated_at`)).
		WithArgs("Test Gym").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).AddRow(orgID, "Test Gym", now, now))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE profiles SET organization_id = $1, full_name = $2, updated_at = now() WHERE id = $3`)).
		WithArgs(orgID, "Coach Jo", profileID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	org, err := r.CreateOrganizationForProfile(context.Background(), profileID, "Test Gym", "Coach Jo")
	require.NoError(t, err)
	require.Equal(t, orgID, org.ID)
	require.Equal(t, "Test Gym", org.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
