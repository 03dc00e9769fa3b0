package api

import (
	"errors"
	"log/slog"

	"schedule-service/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StudentHandler struct {
	studentService service.StudentService
	validate       *validator.Validate
}

func NewStudentHandler(studentService service.StudentService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		validate:       validator.New(),
	}
}

type StudentRequest struct {
	FullName              string  `json:"full_name" validate:"required,max=100"`
	Email                 *string `json:"email" validate:"omitempty,email"`
	Phone                 *string `json:"phone" validate:"omitempty,max=20"`
	Notes                 *string `json:"notes" validate:"omitempty,max=1000"`
	ConstraintsInjuries   *string `json:"constraints_injuries" validate:"omitempty,max=1000"`
	Goals                 *string `json:"goals" validate:"omitempty,max=1000"`
	EmergencyContactName  *string `json:"emergency_contact_name" validate:"omitempty,max=100"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" validate:"omitempty,max=20"`
}

func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	actor, err := RequireTrainer(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	var request StudentRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	student, err := h.studentService.CreateStudent(c.Context(), actor, studentInput(request))
	if err != nil {
		return h.studentErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(student)
}

func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	var request StudentRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	if err := h.studentService.UpdateStudent(c.Context(), studentID, studentInput(request)); err != nil {
		return h.studentErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Student updated"})
}

func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	if err := h.studentService.DeleteStudent(c.Context(), studentID); err != nil {
		return h.studentErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Student deactivated"})
}

func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	student, err := h.studentService.GetStudent(c.Context(), studentID)
	if err != nil {
		return h.studentErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(student)
}

func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	students, err := h.studentService.ListStudents(c.Context(), actor)
	if err != nil {
		return h.studentErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(students)
}

func studentInput(request StudentRequest) service.StudentInput {
	return service.StudentInput{
		FullName:              request.FullName,
		Email:                 request.Email,
		Phone:                 request.Phone,
		Notes:                 request.Notes,
		ConstraintsInjuries:   request.ConstraintsInjuries,
		Goals:                 request.Goals,
		EmergencyContactName:  request.EmergencyContactName,
		EmergencyContactPhone: request.EmergencyContactPhone,
	}
}

func (h *StudentHandler) studentErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNoOrganization):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.ErrorContext(c.UserContext(), "Student operation failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
