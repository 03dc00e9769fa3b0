package api

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"schedule-service/internal/repository"
	"schedule-service/internal/s3"
	"schedule-service/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
	profileRepo repository.ProfileRepository
	presigner   *s3.AvatarPresigner
	validate    *validator.Validate
}

func NewAuthHandler(authService service.AuthService, profileRepo repository.ProfileRepository, presigner *s3.AvatarPresigner) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		profileRepo: profileRepo,
		presigner:   presigner,
		validate:    validator.New(),
	}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,oneof=trainer student admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type OnboardingRequest struct {
	OrganizationName string `json:"organization_name" validate:"required,max=100"`
	FullName         string `json:"full_name" validate:"required,max=100"`
}

type AvatarUploadRequest struct {
	FileName string `json:"file_name" validate:"required,max=200"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request RegisterRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	profile, err := h.authService.Register(c.Context(), request.Email, request.Password, request.FullName, request.Role)
	if err != nil {
		slog.ErrorContext(c.UserContext(), "Registration failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Could not register user"})
	}

	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	accessToken, refreshToken, err := h.authService.Login(c.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		slog.ErrorContext(c.UserContext(), "Login failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not log in"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var request RefreshRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	accessToken, err := h.authService.RefreshToken(c.Context(), request.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": service.ErrTokenInvalid.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"access_token": accessToken})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var request RefreshRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.authService.Logout(c.Context(), request.RefreshToken); err != nil {
		slog.ErrorContext(c.UserContext(), "Logout failed", slog.String("error", err.Error()))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	profile, err := h.authService.GetProfile(c.Context(), actor.ProfileID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		slog.ErrorContext(c.UserContext(), "Profile lookup failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

// CompleteOnboarding creates the caller's organization. Tokens issued
// before this call carry no org claim, so the client must log in again
// afterwards to pick it up.
func (h *AuthHandler) CompleteOnboarding(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var request OnboardingRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}

	organization, err := h.authService.CompleteOnboarding(c.Context(), actor.ProfileID, request.OrganizationName, request.FullName)
	if err != nil {
		slog.ErrorContext(c.UserContext(), "Onboarding failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not complete onboarding"})
	}

	return c.Status(fiber.StatusCreated).JSON(organization)
}

func (h *AuthHandler) ListTrainers(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	trainers, err := h.authService.ListTrainers(c.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrNoOrganization) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		slog.ErrorContext(c.UserContext(), "Trainer list failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(trainers)
}

// RequestAvatarUpload presigns a PUT URL for the avatar object and records
// the public URL on the profile so clients can render it immediately.
func (h *AuthHandler) RequestAvatarUpload(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var request AvatarUploadRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": firstValidationMessage(err)})
	}
	if strings.Contains(request.FileName, "/") || strings.Contains(request.FileName, "..") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid file name"})
	}

	objectKey := fmt.Sprintf("avatars/%s/%s-%s", actor.ProfileID, uuid.NewString(), request.FileName)

	uploadURL, err := h.presigner.GeneratePresignedUploadURL(objectKey)
	if err != nil {
		slog.ErrorContext(c.UserContext(), "Presigning avatar upload failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create upload URL"})
	}

	avatarURL := fmt.Sprintf("%s/%s", h.presigner.PublicBaseURL(), objectKey)
	if err := h.profileRepo.UpdateAvatarURL(c.Context(), actor.ProfileID, avatarURL); err != nil {
		slog.ErrorContext(c.UserContext(), "Saving avatar URL failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not save avatar"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"upload_url": uploadURL,
		"avatar_url": avatarURL,
	})
}
