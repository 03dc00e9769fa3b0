package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"schedule-service/internal/jwt"
	"schedule-service/internal/model"
	"schedule-service/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrProfileNotFound    = errors.New("profile not found")
)

type AuthService interface {
	Register(ctx context.Context, email, password, fullName, role string) (*model.Profile, error)
	Login(ctx context.Context, email, password string) (accessToken string, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error)
	Logout(ctx context.Context, refreshTokenString string) error
	GetProfile(ctx context.Context, profileID uuid.UUID) (*model.Profile, error)
	CompleteOnboarding(ctx context.Context, profileID uuid.UUID, orgName, fullName string) (*model.Organization, error)
	ListTrainers(ctx context.Context, actor Actor) ([]model.Profile, error)
}

type authService struct {
	profileRepo repository.ProfileRepository
	tokenRepo   repository.TokenRepository
}

func NewAuthService(profileRepo repository.ProfileRepository, tokenRepo repository.TokenRepository) AuthService {
	return &authService{
		profileRepo: profileRepo,
		tokenRepo:   tokenRepo,
	}
}

func (s *authService) Register(ctx context.Context, email, password, fullName, role string) (*model.Profile, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     fullName,
		Role:         role,
	}

	newID, err := s.profileRepo.Create(ctx, profile)
	if err != nil {
		return nil, err
	}

	profile.ID = newID

	return profile, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	profile, err := s.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := jwt.GenerateTokens(profile)
	if err != nil {
		return "", "", err
	}

	hash := sha256.Sum256([]byte(refreshToken))
	tokenHash := hex.EncodeToString(hash[:])

	refreshTokenModel := &model.RefreshToken{
		ProfileID: profile.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(time.Hour * 24 * 30),
	}

	if err := s.tokenRepo.Create(ctx, refreshTokenModel); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshTokenString string) (string, error) {
	claims, err := jwt.ValidateToken(refreshTokenString)

	if err != nil {
		return "", ErrTokenInvalid
	}

	hash := sha256.Sum256([]byte(refreshTokenString))
	tokenHash := hex.EncodeToString(hash[:])

	_, err = s.tokenRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return "", ErrTokenInvalid
	}

	profileID, _ := uuid.Parse(claims["sub"].(string))
	profile, err := s.profileRepo.FindByID(ctx, profileID)

	if err != nil || profile == nil {
		return "", ErrTokenInvalid
	}

	newAccessToken, _, err := jwt.GenerateTokens(profile)

	if err != nil {
		return "", err
	}

	return newAccessToken, nil
}

func (s *authService) Logout(ctx context.Context, refreshTokenString string) error {
	hash := sha256.Sum256([]byte(refreshTokenString))
	tokenHash := hex.EncodeToString(hash[:])

	return s.tokenRepo.Delete(ctx, tokenHash)
}

func (s *authService) GetProfile(ctx context.Context, profileID uuid.UUID) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// CompleteOnboarding satisfies the organization precondition for every
// other operation: until it runs, creates fail with ErrNoOrganization.
func (s *authService) CompleteOnboarding(ctx context.Context, profileID uuid.UUID, orgName, fullName string) (*model.Organization, error) {
	return s.profileRepo.CreateOrganizationForProfile(ctx, profileID, orgName, fullName)
}

func (s *authService) ListTrainers(ctx context.Context, actor Actor) ([]model.Profile, error) {
	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	return s.profileRepo.ListTrainers(ctx, *actor.OrganizationID)
}
