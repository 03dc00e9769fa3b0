package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"schedule-service/internal/jwt"
	"schedule-service/internal/service"

	"github.com/gofiber/fiber/v2"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
)

func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization header format"})
		}
		tokenString := parts[1]

		claims, err := jwt.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, jwtv5.ErrTokenExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token has expired"})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		profileIDStr, ok := claims["sub"].(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Profile ID not found in token claims"})
		}

		_, err = uuid.Parse(profileIDStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid profile ID format in token"})
		}

		c.Locals("userClaims", claims)

		return c.Next()
	}
}

// GetActor rebuilds the caller identity from the token claims; every
// service operation receives it explicitly.
func GetActor(c *fiber.Ctx) (service.Actor, error) {
	claims, ok := c.Locals("userClaims").(jwtv5.MapClaims)
	if !ok {
		return service.Actor{}, errors.New("claims not found in context")
	}

	profileIDStr, ok := claims["sub"].(string)
	if !ok {
		return service.Actor{}, errors.New("profile ID not found in claims")
	}

	profileID, err := uuid.Parse(profileIDStr)
	if err != nil {
		return service.Actor{}, fmt.Errorf("invalid profile ID format in claims: %w", err)
	}

	actor := service.Actor{ProfileID: profileID}

	if role, ok := claims["role"].(string); ok {
		actor.Role = role
	}
	if orgStr, ok := claims["org"].(string); ok {
		if orgID, err := uuid.Parse(orgStr); err == nil {
			actor.OrganizationID = &orgID
		}
	}

	return actor, nil
}

func RequireTrainer(c *fiber.Ctx) (service.Actor, error) {
	actor, err := GetActor(c)
	if err != nil {
		return service.Actor{}, err
	}
	if actor.Role != "trainer" && actor.Role != "admin" {
		return service.Actor{}, errors.New("trainer role required")
	}
	return actor, nil
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()
		statusCode := c.Response().StatusCode()

		if err != nil {
			var e *fiber.Error

			if errors.As(err, &e) {
				statusCode = e.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		method := c.Method()
		path := c.Path()
		statusStr := fmt.Sprintf("%d", statusCode)

		httpRequestTotal.WithLabelValues(method, path, statusStr).Inc()
		httpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		return err
	}
}
