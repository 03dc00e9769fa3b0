package service

import (
	"context"
	"errors"

	"schedule-service/internal/model"
	"schedule-service/internal/repository"

	"github.com/google/uuid"
)

var ErrStudentNotFound = errors.New("student not found")

type StudentInput struct {
	FullName              string
	Email                 *string
	Phone                 *string
	Notes                 *string
	ConstraintsInjuries   *string
	Goals                 *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
}

type StudentService interface {
	CreateStudent(ctx context.Context, actor Actor, input StudentInput) (*model.Student, error)
	UpdateStudent(ctx context.Context, studentID uuid.UUID, input StudentInput) error
	DeleteStudent(ctx context.Context, studentID uuid.UUID) error
	GetStudent(ctx context.Context, studentID uuid.UUID) (*model.Student, error)
	ListStudents(ctx context.Context, actor Actor) ([]model.Student, error)
	FindStudentForProfile(ctx context.Context, profileID uuid.UUID) (*model.Student, error)
}

type studentService struct {
	studentRepo repository.StudentRepository
}

func NewStudentService(repo repository.StudentRepository) StudentService {
	return &studentService{studentRepo: repo}
}

func (s *studentService) CreateStudent(ctx context.Context, actor Actor, input StudentInput) (*model.Student, error) {
	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}

	student := &model.Student{
		OrganizationID:        *actor.OrganizationID,
		FullName:              input.FullName,
		Email:                 input.Email,
		Phone:                 input.Phone,
		Notes:                 input.Notes,
		ConstraintsInjuries:   input.ConstraintsInjuries,
		Goals:                 input.Goals,
		EmergencyContactName:  input.EmergencyContactName,
		EmergencyContactPhone: input.EmergencyContactPhone,
	}

	return s.studentRepo.Create(ctx, student)
}

func (s *studentService) UpdateStudent(ctx context.Context, studentID uuid.UUID, input StudentInput) error {
	student := &model.Student{
		ID:                    studentID,
		FullName:              input.FullName,
		Email:                 input.Email,
		Phone:                 input.Phone,
		Notes:                 input.Notes,
		ConstraintsInjuries:   input.ConstraintsInjuries,
		Goals:                 input.Goals,
		EmergencyContactName:  input.EmergencyContactName,
		EmergencyContactPhone: input.EmergencyContactPhone,
	}
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return ErrStudentNotFound
	}
	return nil
}

// DeleteStudent soft-deletes; past sessions keep their roster rows.
func (s *studentService) DeleteStudent(ctx context.Context, studentID uuid.UUID) error {
	return s.studentRepo.Deactivate(ctx, studentID)
}

func (s *studentService) GetStudent(ctx context.Context, studentID uuid.UUID) (*model.Student, error) {
	student, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

func (s *studentService) ListStudents(ctx context.Context, actor Actor) ([]model.Student, error) {
	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	return s.studentRepo.ListActive(ctx, *actor.OrganizationID)
}

// FindStudentForProfile maps a logged-in student account to its student
// record, for the my-sessions view.
func (s *studentService) FindStudentForProfile(ctx context.Context, profileID uuid.UUID) (*model.Student, error) {
	student, err := s.studentRepo.FindByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}
