package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"schedule-service/internal/ical"
	"schedule-service/internal/model"
	"schedule-service/internal/repository"
	"schedule-service/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SessionHandler struct {
	sessionService service.SessionService
	studentService service.StudentService
	validate       *validator.Validate
}

func NewSessionHandler(sessionService service.SessionService, studentService service.StudentService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		studentService: studentService,
		validate:       validator.New(),
	}
}

type CreateSessionRequest struct {
	TrainerID  *uuid.UUID  `json:"trainer_id"`
	LocationID *uuid.UUID  `json:"location_id"`
	StartsAt   time.Time   `json:"starts_at" validate:"required"`
	Notes      *string     `json:"notes" validate:"omitempty,max=500"`
	StudentIDs []uuid.UUID `json:"student_ids"`
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	actor, err := RequireTrainer(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	var request CreateSessionRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	input := service.CreateSessionInput{
		TrainerID:  request.TrainerID,
		LocationID: request.LocationID,
		StartsAt:   request.StartsAt,
		Notes:      request.Notes,
		StudentIDs: request.StudentIDs,
	}

	session, err := h.sessionService.CreateSession(c.Context(), actor, input)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyStudents):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNoOrganization):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrTrainerOverlap):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			slog.ErrorContext(c.UserContext(), "Error creating session", slog.String("error", err.Error()))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

// UpdateSession applies a partial update. The raw body is inspected so
// "field absent" and "field explicitly null" stay distinguishable: absent
// fields are untouched, null clears the column.
func (h *SessionHandler) UpdateSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var input service.UpdateSessionInput

	if raw, ok := fields["starts_at"]; ok {
		var startsAt time.Time
		if err := json.Unmarshal(raw, &startsAt); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid starts_at"})
		}
		input.StartsAt = &startsAt
	}
	if raw, ok := fields["location_id"]; ok {
		input.SetLocation = true
		if string(raw) != "null" {
			var locationID uuid.UUID
			if err := json.Unmarshal(raw, &locationID); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location_id"})
			}
			input.LocationID = &locationID
		}
	}
	if raw, ok := fields["notes"]; ok {
		input.SetNotes = true
		if string(raw) != "null" {
			var notes string
			if err := json.Unmarshal(raw, &notes); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notes"})
			}
			input.Notes = &notes
		}
	}
	if raw, ok := fields["status"]; ok {
		var status string
		if err := json.Unmarshal(raw, &status); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
		}
		if status != model.SessionScheduled && status != model.SessionCompleted && status != model.SessionCancelled {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
		}
		input.Status = &status
	}
	if raw, ok := fields["student_ids"]; ok {
		var studentIDs []uuid.UUID
		if err := json.Unmarshal(raw, &studentIDs); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student_ids"})
		}
		input.StudentIDs = &studentIDs
	}

	if err := h.sessionService.UpdateSession(c.Context(), sessionID, input); err != nil {
		return h.sessionErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Session updated"})
}

func (h *SessionHandler) MarkSessionComplete(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	if err := h.sessionService.MarkSessionComplete(c.Context(), sessionID); err != nil {
		return h.sessionErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Session completed"})
}

func (h *SessionHandler) CancelSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	if err := h.sessionService.CancelSession(c.Context(), sessionID); err != nil {
		return h.sessionErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Session cancelled"})
}

func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	if err := h.sessionService.DeleteSession(c.Context(), sessionID); err != nil {
		return h.sessionErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Session deleted"})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	session, err := h.sessionService.GetSession(c.Context(), sessionID)
	if err != nil {
		return h.sessionErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(session)
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var filter repository.SessionFilter
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid from timestamp"})
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid to timestamp"})
		}
		filter.To = &t
	}
	filter.Status = c.Query("status")

	sessions, err := h.sessionService.ListSessions(c.Context(), actor, filter)
	if err != nil {
		return h.sessionErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sessions)
}

func (h *SessionHandler) ListTodaySessions(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	sessions, err := h.sessionService.ListTodaySessions(c.Context(), actor)
	if err != nil {
		return h.sessionErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sessions)
}

// ListMySessions is the student-facing view: the caller's own sessions,
// most recent first.
func (h *SessionHandler) ListMySessions(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	student, err := h.studentService.FindStudentForProfile(c.Context(), actor.ProfileID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No student record linked to this account"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	sessions, err := h.sessionService.ListStudentSessions(c.Context(), student.ID)
	if err != nil {
		return h.sessionErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sessions)
}

func (h *SessionHandler) ExportCalendar(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	sessions, err := h.sessionService.ListSessions(c.Context(), actor, repository.SessionFilter{})
	if err != nil {
		return h.sessionErrorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="schedule.ics"`)
	return c.SendString(ical.Render(sessions))
}

func (h *SessionHandler) sessionErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrTooManyStudents):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNoOrganization):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrTrainerOverlap):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.ErrorContext(c.UserContext(), "Session operation failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// firstValidationMessage mirrors the convention of reporting only the first
// failing field.
func firstValidationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		first := validationErrors[0]
		switch first.Tag() {
		case "required":
			return first.Field() + " is required"
		case "max":
			return first.Field() + " is too long"
		case "min":
			return first.Field() + " is too short"
		case "email":
			return "Invalid email"
		default:
			return first.Field() + " is invalid"
		}
	}
	return "Invalid input"
}
