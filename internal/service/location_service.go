package service

import (
	"context"
	"errors"

	"schedule-service/internal/model"
	"schedule-service/internal/repository"

	"github.com/google/uuid"
)

var ErrLocationNotFound = errors.New("location not found")

type LocationInput struct {
	Name           string
	Address        *string
	LocationType   string
	Latitude       *float64
	Longitude      *float64
	MeetingPoint   *string
	EquipmentNotes *string
}

type LocationService interface {
	CreateLocation(ctx context.Context, actor Actor, input LocationInput) (*model.Location, error)
	UpdateLocation(ctx context.Context, locationID uuid.UUID, input LocationInput) error
	DeleteLocation(ctx context.Context, locationID uuid.UUID) error
	GetLocation(ctx context.Context, locationID uuid.UUID) (*model.Location, error)
	ListLocations(ctx context.Context, actor Actor) ([]model.Location, error)
}

type locationService struct {
	locationRepo repository.LocationRepository
}

func NewLocationService(repo repository.LocationRepository) LocationService {
	return &locationService{locationRepo: repo}
}

func (s *locationService) CreateLocation(ctx context.Context, actor Actor, input LocationInput) (*model.Location, error) {
	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}

	location := &model.Location{
		OrganizationID: *actor.OrganizationID,
		Name:           input.Name,
		Address:        input.Address,
		LocationType:   input.LocationType,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		MeetingPoint:   input.MeetingPoint,
		EquipmentNotes: input.EquipmentNotes,
	}

	return s.locationRepo.Create(ctx, location)
}

func (s *locationService) UpdateLocation(ctx context.Context, locationID uuid.UUID, input LocationInput) error {
	location := &model.Location{
		ID:             locationID,
		Name:           input.Name,
		Address:        input.Address,
		LocationType:   input.LocationType,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		MeetingPoint:   input.MeetingPoint,
		EquipmentNotes: input.EquipmentNotes,
	}
	if err := s.locationRepo.Update(ctx, location); err != nil {
		return ErrLocationNotFound
	}
	return nil
}

func (s *locationService) DeleteLocation(ctx context.Context, locationID uuid.UUID) error {
	return s.locationRepo.Deactivate(ctx, locationID)
}

func (s *locationService) GetLocation(ctx context.Context, locationID uuid.UUID) (*model.Location, error) {
	location, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, ErrLocationNotFound
	}
	return location, nil
}

func (s *locationService) ListLocations(ctx context.Context, actor Actor) ([]model.Location, error) {
	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	return s.locationRepo.ListActive(ctx, *actor.OrganizationID)
}
