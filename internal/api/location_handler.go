package api

import (
	"errors"
	"log/slog"

	"schedule-service/internal/geocode"
	"schedule-service/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LocationHandler struct {
	locationService service.LocationService
	geocoder        geocode.Client
	validate        *validator.Validate
}

func NewLocationHandler(locationService service.LocationService, geocoder geocode.Client) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		geocoder:        geocoder,
		validate:        validator.New(),
	}
}

type LocationRequest struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Address        *string  `json:"address" validate:"omitempty,max=200"`
	LocationType   string   `json:"location_type" validate:"required,oneof=indoor outdoor"`
	Latitude       *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude      *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	MeetingPoint   *string  `json:"meeting_point" validate:"omitempty,max=200"`
	EquipmentNotes *string  `json:"equipment_notes" validate:"omitempty,max=500"`
}

func (h *LocationHandler) CreateLocation(c *fiber.Ctx) error {
	actor, err := RequireTrainer(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	var request LocationRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	location, err := h.locationService.CreateLocation(c.Context(), actor, locationInput(request))
	if err != nil {
		return h.locationErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(location)
}

func (h *LocationHandler) UpdateLocation(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location ID format"})
	}

	var request LocationRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	if err := h.locationService.UpdateLocation(c.Context(), locationID, locationInput(request)); err != nil {
		return h.locationErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Location updated"})
}

func (h *LocationHandler) DeleteLocation(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location ID format"})
	}

	if err := h.locationService.DeleteLocation(c.Context(), locationID); err != nil {
		return h.locationErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Location deactivated"})
}

func (h *LocationHandler) GetLocation(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location ID format"})
	}

	location, err := h.locationService.GetLocation(c.Context(), locationID)
	if err != nil {
		return h.locationErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(location)
}

func (h *LocationHandler) ListLocations(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	locations, err := h.locationService.ListLocations(c.Context(), actor)
	if err != nil {
		return h.locationErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(locations)
}

// SearchPlaces proxies the geocoding lookup the location form uses for
// address autocomplete.
func (h *LocationHandler) SearchPlaces(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "q is required"})
	}

	places, err := h.geocoder.Search(c.Context(), query)
	if err != nil {
		slog.ErrorContext(c.UserContext(), "Geocoding lookup failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Address lookup failed"})
	}

	return c.Status(fiber.StatusOK).JSON(places)
}

func locationInput(request LocationRequest) service.LocationInput {
	return service.LocationInput{
		Name:           request.Name,
		Address:        request.Address,
		LocationType:   request.LocationType,
		Latitude:       request.Latitude,
		Longitude:      request.Longitude,
		MeetingPoint:   request.MeetingPoint,
		EquipmentNotes: request.EquipmentNotes,
	}
}

func (h *LocationHandler) locationErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLocationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNoOrganization):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.ErrorContext(c.UserContext(), "Location operation failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
