package service

import (
	"context"
	"errors"

	"schedule-service/internal/events"
	"schedule-service/internal/model"
	"schedule-service/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrProgrammeNotFound = errors.New("programme not found")
	ErrBlockNotFound     = errors.New("programme block not found")
)

type ProgrammeTemplateInput struct {
	Name                  string
	Description           *string
	TargetDurationMinutes int
}

type ProgrammeBlockInput struct {
	Name            string
	ExerciseType    *string
	DurationSeconds *int
	Sets            *int
	Reps            *string
	RestSeconds     *int
	Instructions    *string
}

type ProgrammeService interface {
	CreateProgramme(ctx context.Context, actor Actor, input ProgrammeTemplateInput) (*model.ProgrammeTemplate, error)
	UpdateProgramme(ctx context.Context, programmeID uuid.UUID, input ProgrammeTemplateInput) error
	DeleteProgramme(ctx context.Context, programmeID uuid.UUID) error
	ListProgrammes(ctx context.Context, actor Actor) ([]model.ProgrammeTemplate, error)
	GetProgramme(ctx context.Context, programmeID uuid.UUID) (*model.ProgrammeTemplateWithBlocks, error)

	AddBlock(ctx context.Context, programmeID uuid.UUID, input ProgrammeBlockInput) (*model.ProgrammeBlock, error)
	UpdateBlock(ctx context.Context, blockID uuid.UUID, input ProgrammeBlockInput) error
	DeleteBlock(ctx context.Context, blockID uuid.UUID) error
	ReorderBlocks(ctx context.Context, programmeID uuid.UUID, blockIDs []uuid.UUID) error

	AssignProgrammeToSession(ctx context.Context, sessionID, programmeID uuid.UUID) error
	RemoveProgrammeFromSession(ctx context.Context, sessionID uuid.UUID) error
}

type programmeService struct {
	programmeRepo repository.ProgrammeRepository
	publisher     events.EventPublisher
}

func NewProgrammeService(repo repository.ProgrammeRepository, pub events.EventPublisher) ProgrammeService {
	return &programmeService{programmeRepo: repo, publisher: pub}
}

func (s *programmeService) CreateProgramme(ctx context.Context, actor Actor, input ProgrammeTemplateInput) (*model.ProgrammeTemplate, error) {
	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}

	template := &model.ProgrammeTemplate{
		OrganizationID:        *actor.OrganizationID,
		Name:                  input.Name,
		Description:           input.Description,
		TargetDurationMinutes: input.TargetDurationMinutes,
		CreatedBy:             &actor.ProfileID,
	}

	return s.programmeRepo.Create(ctx, template)
}

func (s *programmeService) UpdateProgramme(ctx context.Context, programmeID uuid.UUID, input ProgrammeTemplateInput) error {
	template := &model.ProgrammeTemplate{
		ID:                    programmeID,
		Name:                  input.Name,
		Description:           input.Description,
		TargetDurationMinutes: input.TargetDurationMinutes,
	}
	if err := s.programmeRepo.Update(ctx, template); err != nil {
		return ErrProgrammeNotFound
	}
	return nil
}

// DeleteProgramme deactivates rather than deleting, so snapshots copied
// from the template stay meaningful.
func (s *programmeService) DeleteProgramme(ctx context.Context, programmeID uuid.UUID) error {
	return s.programmeRepo.Deactivate(ctx, programmeID)
}

func (s *programmeService) ListProgrammes(ctx context.Context, actor Actor) ([]model.ProgrammeTemplate, error) {
	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	return s.programmeRepo.ListActive(ctx, *actor.OrganizationID)
}

func (s *programmeService) GetProgramme(ctx context.Context, programmeID uuid.UUID) (*model.ProgrammeTemplateWithBlocks, error) {
	programme, err := s.programmeRepo.FindWithBlocks(ctx, programmeID)
	if err != nil {
		return nil, err
	}
	if programme == nil {
		return nil, ErrProgrammeNotFound
	}
	return programme, nil
}

func (s *programmeService) AddBlock(ctx context.Context, programmeID uuid.UUID, input ProgrammeBlockInput) (*model.ProgrammeBlock, error) {
	programme, err := s.programmeRepo.FindWithBlocks(ctx, programmeID)
	if err != nil {
		return nil, err
	}
	if programme == nil {
		return nil, ErrProgrammeNotFound
	}

	block := &model.ProgrammeBlock{
		ProgrammeTemplateID: programmeID,
		Name:                input.Name,
		ExerciseType:        input.ExerciseType,
		DurationSeconds:     input.DurationSeconds,
		Sets:                input.Sets,
		Reps:                input.Reps,
		RestSeconds:         input.RestSeconds,
		Instructions:        input.Instructions,
	}

	return s.programmeRepo.AddBlock(ctx, block)
}

func (s *programmeService) UpdateBlock(ctx context.Context, blockID uuid.UUID, input ProgrammeBlockInput) error {
	block := &model.ProgrammeBlock{
		ID:              blockID,
		Name:            input.Name,
		ExerciseType:    input.ExerciseType,
		DurationSeconds: input.DurationSeconds,
		Sets:            input.Sets,
		Reps:            input.Reps,
		RestSeconds:     input.RestSeconds,
		Instructions:    input.Instructions,
	}
	if err := s.programmeRepo.UpdateBlock(ctx, block); err != nil {
		return ErrBlockNotFound
	}
	return nil
}

func (s *programmeService) DeleteBlock(ctx context.Context, blockID uuid.UUID) error {
	return s.programmeRepo.DeleteBlock(ctx, blockID)
}

func (s *programmeService) ReorderBlocks(ctx context.Context, programmeID uuid.UUID, blockIDs []uuid.UUID) error {
	return s.programmeRepo.ReorderBlocks(ctx, programmeID, blockIDs)
}

// AssignProgrammeToSession freezes the template's current blocks into a
// value copy attached to the session. Later edits to the template never
// touch the copy; re-assigning replaces it wholesale.
func (s *programmeService) AssignProgrammeToSession(ctx context.Context, sessionID, programmeID uuid.UUID) error {
	programme, err := s.programmeRepo.FindWithBlocks(ctx, programmeID)
	if err != nil {
		return err
	}
	if programme == nil || !programme.IsActive {
		return ErrProgrammeNotFound
	}

	blocks := make(model.BlockSnapshots, 0, len(programme.Blocks))
	for _, block := range programme.Blocks {
		blocks = append(blocks, model.BlockSnapshot{
			ID:              block.ID,
			OrderIndex:      block.OrderIndex,
			Name:            block.Name,
			ExerciseType:    copyStringPtr(block.ExerciseType),
			DurationSeconds: copyIntPtr(block.DurationSeconds),
			Sets:            copyIntPtr(block.Sets),
			Reps:            copyStringPtr(block.Reps),
			RestSeconds:     copyIntPtr(block.RestSeconds),
			Instructions:    copyStringPtr(block.Instructions),
		})
	}

	templateID := programmeID
	snapshot := &model.SessionProgramme{
		SessionID:           sessionID,
		ProgrammeTemplateID: &templateID,
		Name:                programme.Name,
		Blocks:              blocks,
	}

	if err := s.programmeRepo.UpsertSessionProgramme(ctx, snapshot); err != nil {
		return err
	}

	go s.publisher.PublishProgrammeAssigned(sessionID, programmeID, programme.Name)

	return nil
}

// RemoveProgrammeFromSession deletes the snapshot; removing an absent one
// is a no-op success.
func (s *programmeService) RemoveProgrammeFromSession(ctx context.Context, sessionID uuid.UUID) error {
	return s.programmeRepo.DeleteSessionProgramme(ctx, sessionID)
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
