package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"schedule-service/internal/api"
	"schedule-service/internal/events"
	"schedule-service/internal/geocode"
	"schedule-service/internal/repository"
	"schedule-service/internal/s3"
	"schedule-service/internal/service"
	"schedule-service/internal/tracing"
	_ "schedule-service/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	api.SetupGlobalHandler("schedule-service")

	shutdownTracer, err := tracing.InitTracerProvider("schedule-service")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations()
		return
	}

	db := connectDB()
	defer db.Close()

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	eventPublisher, err := events.NewNatsPublisher(natsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")

	presigner, err := s3.NewAvatarPresigner()
	if err != nil {
		log.Fatalf("Failed to configure S3 presigner: %v", err)
	}

	profileRepo := repository.NewPostgresProfileRepository(db)
	tokenRepo := repository.NewPostgresTokenRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)
	programmeRepo := repository.NewPostgresProgrammeRepository(db)
	studentRepo := repository.NewPostgresStudentRepository(db)
	locationRepo := repository.NewPostgresLocationRepository(db)

	authService := service.NewAuthService(profileRepo, tokenRepo)
	sessionService := service.NewSessionService(sessionRepo, eventPublisher)
	programmeService := service.NewProgrammeService(programmeRepo, eventPublisher)
	studentService := service.NewStudentService(studentRepo)
	locationService := service.NewLocationService(locationRepo)

	authHandler := api.NewAuthHandler(authService, profileRepo, presigner)
	sessionHandler := api.NewSessionHandler(sessionService, studentService)
	programmeHandler := api.NewProgrammeHandler(programmeService)
	studentHandler := api.NewStudentHandler(studentService)
	locationHandler := api.NewLocationHandler(locationService, geocode.NewNominatimClient())

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "schedule-service"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Use(authLimiter())
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Post("/logout", authHandler.Logout)

	profileRoutes := v1.Group("/profiles")
	profileRoutes.Use(api.AuthMiddleware())
	profileRoutes.Get("/me", authHandler.GetMe)
	profileRoutes.Post("/onboarding", authHandler.CompleteOnboarding)
	profileRoutes.Post("/avatar-upload", authHandler.RequestAvatarUpload)

	v1.Get("/trainers", api.AuthMiddleware(), authHandler.ListTrainers)

	sessionRoutes := v1.Group("/sessions")
	sessionRoutes.Use(api.AuthMiddleware())
	sessionRoutes.Post("/", sessionHandler.CreateSession)
	sessionRoutes.Get("/", sessionHandler.ListSessions)
	sessionRoutes.Get("/today", sessionHandler.ListTodaySessions)
	sessionRoutes.Get("/mine", sessionHandler.ListMySessions)
	sessionRoutes.Get("/calendar.ics", sessionHandler.ExportCalendar)
	sessionRoutes.Get("/:id", sessionHandler.GetSession)
	sessionRoutes.Patch("/:id", sessionHandler.UpdateSession)
	sessionRoutes.Delete("/:id", sessionHandler.DeleteSession)
	sessionRoutes.Post("/:id/complete", sessionHandler.MarkSessionComplete)
	sessionRoutes.Post("/:id/cancel", sessionHandler.CancelSession)
	sessionRoutes.Put("/:id/programme", programmeHandler.AssignToSession)
	sessionRoutes.Delete("/:id/programme", programmeHandler.RemoveFromSession)

	programmeRoutes := v1.Group("/programmes")
	programmeRoutes.Use(api.AuthMiddleware())
	programmeRoutes.Post("/", programmeHandler.CreateProgramme)
	programmeRoutes.Get("/", programmeHandler.ListProgrammes)
	programmeRoutes.Get("/:id", programmeHandler.GetProgramme)
	programmeRoutes.Patch("/:id", programmeHandler.UpdateProgramme)
	programmeRoutes.Delete("/:id", programmeHandler.DeleteProgramme)
	programmeRoutes.Post("/:id/blocks", programmeHandler.AddBlock)
	programmeRoutes.Put("/:id/blocks/reorder", programmeHandler.ReorderBlocks)
	programmeRoutes.Patch("/:id/blocks/:blockId", programmeHandler.UpdateBlock)
	programmeRoutes.Delete("/:id/blocks/:blockId", programmeHandler.DeleteBlock)

	studentRoutes := v1.Group("/students")
	studentRoutes.Use(api.AuthMiddleware())
	studentRoutes.Post("/", studentHandler.CreateStudent)
	studentRoutes.Get("/", studentHandler.ListStudents)
	studentRoutes.Get("/:id", studentHandler.GetStudent)
	studentRoutes.Patch("/:id", studentHandler.UpdateStudent)
	studentRoutes.Delete("/:id", studentHandler.DeleteStudent)

	locationRoutes := v1.Group("/locations")
	locationRoutes.Use(api.AuthMiddleware())
	locationRoutes.Post("/", locationHandler.CreateLocation)
	locationRoutes.Get("/", locationHandler.ListLocations)
	locationRoutes.Get("/search", locationHandler.SearchPlaces)
	locationRoutes.Get("/:id", locationHandler.GetLocation)
	locationRoutes.Patch("/:id", locationHandler.UpdateLocation)
	locationRoutes.Delete("/:id", locationHandler.DeleteLocation)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8001"
	}

	log.Printf("Listening schedule-service on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func authLimiter() fiber.Handler {
	maxRequest, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_MAX"))
	if maxRequest == 0 {
		maxRequest = 20
	}
	expirationSec, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_EXPIRATION"))
	if expirationSec == 0 {
		expirationSec = 60
	}

	return limiter.New(limiter.Config{
		Max:        maxRequest,
		Expiration: time.Duration(expirationSec) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many request, please try again later.",
			})
		},
	})
}

func connectDB() *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)

	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations() {
	fmt.Println("Running database migrations...")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
