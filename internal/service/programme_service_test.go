package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"schedule-service/internal/model"
	"schedule-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeProgrammeRepo struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*model.ProgrammeTemplateWithBlocks
	snapshots map[uuid.UUID]*model.SessionProgramme
}

func newFakeProgrammeRepo() *fakeProgrammeRepo {
	return &fakeProgrammeRepo{
		templates: make(map[uuid.UUID]*model.ProgrammeTemplateWithBlocks),
		snapshots: make(map[uuid.UUID]*model.SessionProgramme),
	}
}

func (f *fakeProgrammeRepo) addTemplate(template *model.ProgrammeTemplateWithBlocks) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templates[template.ID] = template
}

func (f *fakeProgrammeRepo) Create(_ context.Context, template *model.ProgrammeTemplate) (*model.ProgrammeTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	template.ID = uuid.New()
	template.IsActive = true
	f.templates[template.ID] = &model.ProgrammeTemplateWithBlocks{ProgrammeTemplate: *template, Blocks: []model.ProgrammeBlock{}}
	return template, nil
}

func (f *fakeProgrammeRepo) Update(_ context.Context, template *model.ProgrammeTemplate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.templates[template.ID]
	if !ok {
		return sql.ErrNoRows
	}
	existing.Name = template.Name
	existing.Description = template.Description
	existing.TargetDurationMinutes = template.TargetDurationMinutes
	return nil
}

func (f *fakeProgrammeRepo) Deactivate(_ context.Context, templateID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.templates[templateID]; ok {
		existing.IsActive = false
	}
	return nil
}

func (f *fakeProgrammeRepo) ListActive(_ context.Context, _ uuid.UUID) ([]model.ProgrammeTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ProgrammeTemplate{}
	for _, t := range f.templates {
		if t.IsActive {
			out = append(out, t.ProgrammeTemplate)
		}
	}
	return out, nil
}

func (f *fakeProgrammeRepo) FindWithBlocks(_ context.Context, templateID uuid.UUID) (*model.ProgrammeTemplateWithBlocks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	template, ok := f.templates[templateID]
	if !ok {
		return nil, nil
	}
	return template, nil
}

func (f *fakeProgrammeRepo) AddBlock(_ context.Context, block *model.ProgrammeBlock) (*model.ProgrammeBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	template, ok := f.templates[block.ProgrammeTemplateID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	block.ID = uuid.New()
	block.OrderIndex = len(template.Blocks)
	template.Blocks = append(template.Blocks, *block)
	return block, nil
}

func (f *fakeProgrammeRepo) UpdateBlock(_ context.Context, block *model.ProgrammeBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, template := range f.templates {
		for i := range template.Blocks {
			if template.Blocks[i].ID == block.ID {
				template.Blocks[i].Name = block.Name
				template.Blocks[i].ExerciseType = block.ExerciseType
				return nil
			}
		}
	}
	return sql.ErrNoRows
}

func (f *fakeProgrammeRepo) DeleteBlock(_ context.Context, blockID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, template := range f.templates {
		for i := range template.Blocks {
			if template.Blocks[i].ID == blockID {
				template.Blocks = append(template.Blocks[:i], template.Blocks[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeProgrammeRepo) ReorderBlocks(_ context.Context, _ uuid.UUID, _ []uuid.UUID) error {
	return nil
}

func (f *fakeProgrammeRepo) UpsertSessionProgramme(_ context.Context, snapshot *model.SessionProgramme) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[snapshot.SessionID] = snapshot
	return nil
}

func (f *fakeProgrammeRepo) DeleteSessionProgramme(_ context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.snapshots, sessionID)
	return nil
}

func (f *fakeProgrammeRepo) FindSessionProgramme(_ context.Context, sessionID uuid.UUID) (*model.SessionProgramme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot, ok := f.snapshots[sessionID]
	if !ok {
		return nil, nil
	}
	return snapshot, nil
}

func strPtr(s string) *string { return &s }

func fullBodyTemplate() *model.ProgrammeTemplateWithBlocks {
	templateID := uuid.New()
	return &model.ProgrammeTemplateWithBlocks{
		ProgrammeTemplate: model.ProgrammeTemplate{
			ID:       templateID,
			Name:     "Full Body",
			IsActive: true,
		},
		Blocks: []model.ProgrammeBlock{
			{ID: uuid.New(), ProgrammeTemplateID: templateID, OrderIndex: 0, Name: "Squats", ExerciseType: strPtr("strength")},
			{ID: uuid.New(), ProgrammeTemplateID: templateID, OrderIndex: 1, Name: "Plank", ExerciseType: strPtr("core")},
		},
	}
}

func TestAssignProgramme_SnapshotSurvivesTemplateEdits(t *testing.T) {
	repo := newFakeProgrammeRepo()
	svc := service.NewProgrammeService(repo, noopPublisher{})

	template := fullBodyTemplate()
	repo.addTemplate(template)
	sessionID := uuid.New()

	require.NoError(t, svc.AssignProgrammeToSession(context.Background(), sessionID, template.ID))

	// Mutate the template after assignment.
	template.Blocks[0].Name = "Deadlifts"
	*template.Blocks[0].ExerciseType = "posterior"
	template.Blocks = template.Blocks[:1]

	snapshot := repo.snapshots[sessionID]
	require.Len(t, snapshot.Blocks, 2)
	require.Equal(t, "Squats", snapshot.Blocks[0].Name)
	require.Equal(t, "strength", *snapshot.Blocks[0].ExerciseType)
	require.Equal(t, "Plank", snapshot.Blocks[1].Name)
}

func TestAssignProgramme_PreservesBlockOrder(t *testing.T) {
	repo := newFakeProgrammeRepo()
	svc := service.NewProgrammeService(repo, noopPublisher{})

	template := fullBodyTemplate()
	repo.addTemplate(template)
	sessionID := uuid.New()

	require.NoError(t, svc.AssignProgrammeToSession(context.Background(), sessionID, template.ID))

	snapshot := repo.snapshots[sessionID]
	require.Equal(t, 0, snapshot.Blocks[0].OrderIndex)
	require.Equal(t, 1, snapshot.Blocks[1].OrderIndex)
}

func TestAssignProgramme_UnknownTemplate(t *testing.T) {
	svc := service.NewProgrammeService(newFakeProgrammeRepo(), noopPublisher{})

	err := svc.AssignProgrammeToSession(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, service.ErrProgrammeNotFound)
}

func TestAssignProgramme_InactiveTemplate(t *testing.T) {
	repo := newFakeProgrammeRepo()
	svc := service.NewProgrammeService(repo, noopPublisher{})

	template := fullBodyTemplate()
	template.IsActive = false
	repo.addTemplate(template)

	err := svc.AssignProgrammeToSession(context.Background(), uuid.New(), template.ID)
	require.ErrorIs(t, err, service.ErrProgrammeNotFound)
}

func TestAssignProgramme_ReassignReplacesSnapshot(t *testing.T) {
	repo := newFakeProgrammeRepo()
	svc := service.NewProgrammeService(repo, noopPublisher{})

	first := fullBodyTemplate()
	repo.addTemplate(first)

	secondID := uuid.New()
	second := &model.ProgrammeTemplateWithBlocks{
		ProgrammeTemplate: model.ProgrammeTemplate{ID: secondID, Name: "Mobility", IsActive: true},
		Blocks: []model.ProgrammeBlock{
			{ID: uuid.New(), ProgrammeTemplateID: secondID, OrderIndex: 0, Name: "Hip Circles"},
		},
	}
	repo.addTemplate(second)

	sessionID := uuid.New()
	require.NoError(t, svc.AssignProgrammeToSession(context.Background(), sessionID, first.ID))
	require.NoError(t, svc.AssignProgrammeToSession(context.Background(), sessionID, second.ID))

	snapshot := repo.snapshots[sessionID]
	require.Equal(t, "Mobility", snapshot.Name)
	require.Len(t, snapshot.Blocks, 1)
	require.Equal(t, "Hip Circles", snapshot.Blocks[0].Name)
}

func TestRemoveProgramme_AbsentIsNoOp(t *testing.T) {
	svc := service.NewProgrammeService(newFakeProgrammeRepo(), noopPublisher{})

	require.NoError(t, svc.RemoveProgrammeFromSession(context.Background(), uuid.New()))
}

func TestRemoveThenAssignAgain(t *testing.T) {
	repo := newFakeProgrammeRepo()
	svc := service.NewProgrammeService(repo, noopPublisher{})

	template := fullBodyTemplate()
	repo.addTemplate(template)
	sessionID := uuid.New()

	require.NoError(t, svc.AssignProgrammeToSession(context.Background(), sessionID, template.ID))
	first := repo.snapshots[sessionID]
	require.NotNil(t, first)
	firstName := first.Name
	firstBlocks := append(model.BlockSnapshots(nil), first.Blocks...)

	require.NoError(t, svc.RemoveProgrammeFromSession(context.Background(), sessionID))
	require.Nil(t, repo.snapshots[sessionID])

	require.NoError(t, svc.AssignProgrammeToSession(context.Background(), sessionID, template.ID))
	second := repo.snapshots[sessionID]
	require.NotNil(t, second)
	require.Equal(t, firstName, second.Name)
	require.Equal(t, firstBlocks, second.Blocks)
}

func TestUpdateProgramme_UnknownTemplate(t *testing.T) {
	svc := service.NewProgrammeService(newFakeProgrammeRepo(), noopPublisher{})

	err := svc.UpdateProgramme(context.Background(), uuid.New(), service.ProgrammeTemplateInput{Name: "Renamed"})
	require.ErrorIs(t, err, service.ErrProgrammeNotFound)
}

func TestAddBlock_AppendsAtEnd(t *testing.T) {
	repo := newFakeProgrammeRepo()
	svc := service.NewProgrammeService(repo, noopPublisher{})

	template := fullBodyTemplate()
	repo.addTemplate(template)

	block, err := svc.AddBlock(context.Background(), template.ID, service.ProgrammeBlockInput{Name: "Cooldown"})
	require.NoError(t, err)
	require.Equal(t, 2, block.OrderIndex)
}

func TestCreateProgramme_RequiresOrganization(t *testing.T) {
	svc := service.NewProgrammeService(newFakeProgrammeRepo(), noopPublisher{})

	actor := service.Actor{ProfileID: uuid.New(), Role: "trainer"}
	_, err := svc.CreateProgramme(context.Background(), actor, service.ProgrammeTemplateInput{Name: "Full Body"})
	require.ErrorIs(t, err, service.ErrNoOrganization)
}
