package api

import (
	"errors"
	"log/slog"

	"schedule-service/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProgrammeHandler struct {
	programmeService service.ProgrammeService
	validate         *validator.Validate
}

func NewProgrammeHandler(programmeService service.ProgrammeService) *ProgrammeHandler {
	return &ProgrammeHandler{
		programmeService: programmeService,
		validate:         validator.New(),
	}
}

type ProgrammeTemplateRequest struct {
	Name                  string  `json:"name" validate:"required,max=100"`
	Description           *string `json:"description" validate:"omitempty,max=500"`
	TargetDurationMinutes int     `json:"target_duration_minutes" validate:"required,min=1,max=180"`
}

type ProgrammeBlockRequest struct {
	Name            string  `json:"name" validate:"required,max=100"`
	ExerciseType    *string `json:"exercise_type" validate:"omitempty,oneof=warmup strength cardio flexibility cooldown rest other"`
	DurationSeconds *int    `json:"duration_seconds" validate:"omitempty,min=0,max=3600"`
	Sets            *int    `json:"sets" validate:"omitempty,min=0,max=100"`
	Reps            *string `json:"reps" validate:"omitempty,max=20"`
	RestSeconds     *int    `json:"rest_seconds" validate:"omitempty,min=0,max=600"`
	Instructions    *string `json:"instructions" validate:"omitempty,max=500"`
}

func (h *ProgrammeHandler) CreateProgramme(c *fiber.Ctx) error {
	actor, err := RequireTrainer(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	var request ProgrammeTemplateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	programme, err := h.programmeService.CreateProgramme(c.Context(), actor, service.ProgrammeTemplateInput{
		Name:                  request.Name,
		Description:           request.Description,
		TargetDurationMinutes: request.TargetDurationMinutes,
	})
	if err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(programme)
}

func (h *ProgrammeHandler) UpdateProgramme(c *fiber.Ctx) error {
	programmeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid programme ID format"})
	}

	var request ProgrammeTemplateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	err = h.programmeService.UpdateProgramme(c.Context(), programmeID, service.ProgrammeTemplateInput{
		Name:                  request.Name,
		Description:           request.Description,
		TargetDurationMinutes: request.TargetDurationMinutes,
	})
	if err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Programme updated"})
}

func (h *ProgrammeHandler) DeleteProgramme(c *fiber.Ctx) error {
	programmeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid programme ID format"})
	}

	if err := h.programmeService.DeleteProgramme(c.Context(), programmeID); err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Programme deactivated"})
}

func (h *ProgrammeHandler) ListProgrammes(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	programmes, err := h.programmeService.ListProgrammes(c.Context(), actor)
	if err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(programmes)
}

func (h *ProgrammeHandler) GetProgramme(c *fiber.Ctx) error {
	programmeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid programme ID format"})
	}

	programme, err := h.programmeService.GetProgramme(c.Context(), programmeID)
	if err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(programme)
}

func (h *ProgrammeHandler) AddBlock(c *fiber.Ctx) error {
	programmeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid programme ID format"})
	}

	var request ProgrammeBlockRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	block, err := h.programmeService.AddBlock(c.Context(), programmeID, blockInput(request))
	if err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(block)
}

func (h *ProgrammeHandler) UpdateBlock(c *fiber.Ctx) error {
	blockID, err := uuid.Parse(c.Params("blockId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid block ID format"})
	}

	var request ProgrammeBlockRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	if err := h.programmeService.UpdateBlock(c.Context(), blockID, blockInput(request)); err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Block updated"})
}

func (h *ProgrammeHandler) DeleteBlock(c *fiber.Ctx) error {
	blockID, err := uuid.Parse(c.Params("blockId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid block ID format"})
	}

	if err := h.programmeService.DeleteBlock(c.Context(), blockID); err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Block deleted"})
}

type ReorderBlocksRequest struct {
	BlockIDs []uuid.UUID `json:"block_ids" validate:"required"`
}

func (h *ProgrammeHandler) ReorderBlocks(c *fiber.Ctx) error {
	programmeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid programme ID format"})
	}

	var request ReorderBlocksRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.programmeService.ReorderBlocks(c.Context(), programmeID, request.BlockIDs); err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Blocks reordered"})
}

func (h *ProgrammeHandler) AssignToSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	var request struct {
		ProgrammeID uuid.UUID `json:"programme_id"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if request.ProgrammeID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "programme_id is required"})
	}

	if err := h.programmeService.AssignProgrammeToSession(c.Context(), sessionID, request.ProgrammeID); err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Programme assigned"})
}

func (h *ProgrammeHandler) RemoveFromSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	if err := h.programmeService.RemoveProgrammeFromSession(c.Context(), sessionID); err != nil {
		return h.programmeErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Programme removed"})
}

func blockInput(request ProgrammeBlockRequest) service.ProgrammeBlockInput {
	return service.ProgrammeBlockInput{
		Name:            request.Name,
		ExerciseType:    request.ExerciseType,
		DurationSeconds: request.DurationSeconds,
		Sets:            request.Sets,
		Reps:            request.Reps,
		RestSeconds:     request.RestSeconds,
		Instructions:    request.Instructions,
	}
}

func (h *ProgrammeHandler) programmeErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProgrammeNotFound), errors.Is(err, service.ErrBlockNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNoOrganization):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.ErrorContext(c.UserContext(), "Programme operation failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
