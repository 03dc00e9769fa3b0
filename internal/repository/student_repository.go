package repository

import (
	"context"
	"database/sql"

	"schedule-service/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) (*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Deactivate(ctx context.Context, studentID uuid.UUID) error
	FindByID(ctx context.Context, studentID uuid.UUID) (*model.Student, error)
	FindByProfileID(ctx context.Context, profileID uuid.UUID) (*model.Student, error)
	ListActive(ctx context.Context, orgID uuid.UUID) ([]model.Student, error)
}

type postgresStudentRepository struct {
	db *sqlx.DB
}

func NewPostgresStudentRepository(db *sqlx.DB) StudentRepository {
	return &postgresStudentRepository{db: db}
}

func (r *postgresStudentRepository) Create(ctx context.Context, student *model.Student) (*model.Student, error) {
	query := `
		INSERT INTO students
			(organization_id, profile_id, full_name, email, phone, notes, constraints_injuries, goals, emergency_contact_name, emergency_contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, is_active, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		student.OrganizationID, student.ProfileID, student.FullName, student.Email, student.Phone,
		student.Notes, student.ConstraintsInjuries, student.Goals,
		student.EmergencyContactName, student.EmergencyContactPhone,
	)
	err := row.Scan(&student.ID, &student.IsActive, &student.CreatedAt, &student.UpdatedAt)

	if err != nil {
		return nil, err
	}

	return student, nil
}

func (r *postgresStudentRepository) Update(ctx context.Context, student *model.Student) error {
	query := `
		UPDATE students
		SET full_name = $1, email = $2, phone = $3, notes = $4, constraints_injuries = $5,
			goals = $6, emergency_contact_name = $7, emergency_contact_phone = $8, updated_at = now()
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		student.FullName, student.Email, student.Phone, student.Notes, student.ConstraintsInjuries,
		student.Goals, student.EmergencyContactName, student.EmergencyContactPhone, student.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *postgresStudentRepository) Deactivate(ctx context.Context, studentID uuid.UUID) error {
	query := `UPDATE students SET is_active = false, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, studentID)
	return err
}

func (r *postgresStudentRepository) FindByID(ctx context.Context, studentID uuid.UUID) (*model.Student, error) {
	var student model.Student
	err := r.db.GetContext(ctx, &student, `SELECT * FROM students WHERE id = $1`, studentID)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &student, nil
}

func (r *postgresStudentRepository) FindByProfileID(ctx context.Context, profileID uuid.UUID) (*model.Student, error) {
	var student model.Student
	err := r.db.GetContext(ctx, &student, `SELECT * FROM students WHERE profile_id = $1`, profileID)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &student, nil
}

func (r *postgresStudentRepository) ListActive(ctx context.Context, orgID uuid.UUID) ([]model.Student, error) {
	var students []model.Student
	query := `SELECT * FROM students WHERE organization_id = $1 AND is_active ORDER BY full_name`
	err := r.db.SelectContext(ctx, &students, query, orgID)

	if err != nil {
		return nil, err
	}

	if students == nil {
		students = []model.Student{}
	}

	return students, nil
}
