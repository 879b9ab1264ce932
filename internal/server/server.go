package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gymsnap/gymsnap/internal/config"
	"github.com/gymsnap/gymsnap/internal/domain"
	"github.com/gymsnap/gymsnap/internal/handler"
	"github.com/gymsnap/gymsnap/internal/middleware"
	"github.com/gymsnap/gymsnap/internal/repository"
	"github.com/gymsnap/gymsnap/internal/service"
	"github.com/gymsnap/gymsnap/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application.
// Identifier and Files are optional overrides; when nil they are built from
// config. Tests inject a stubbed identifier and skip blob storage.
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	AuthClient  service.FirebaseAuthClient
	Identifier  domain.IdentifierService
	Files       domain.FileRepository
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Repositories
	workoutRepo := repository.NewMongoWorkoutRepository(deps.MongoDB)
	exerciseRepo := repository.NewMongoExerciseRepository(deps.MongoDB)
	setRepo := repository.NewMongoSetRepository(deps.MongoDB)
	catalogRepo := repository.NewMongoCatalogRepository(deps.MongoDB)
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)

	var cacheRepo domain.CacheRepository
	if deps.RedisClient != nil {
		cacheRepo = repository.NewRedisCacheRepository(deps.RedisClient)
	}

	files := deps.Files
	if files == nil && deps.Config.S3.Endpoint != "" {
		s3Repo, err := repository.NewSeaweedS3Repository(context.Background(), deps.Config.S3)
		if err != nil {
			log.Printf("Warning: failed to initialize photo storage: %v", err)
		} else {
			files = s3Repo
		}
	}

	identifier := deps.Identifier
	if identifier == nil {
		identifier = service.NewOpenRouterIdentifier(
			deps.Config.OpenRouter.APIKey,
			deps.Config.OpenRouter.Model,
			deps.Config.OpenRouter.BaseURL,
		)
	}

	// Services
	authService := service.NewAuthService(userRepo, deps.AuthClient, deps.Config.JWT.Secret)
	workoutService := service.NewWorkoutService(workoutRepo, exerciseRepo, setRepo, cacheRepo)
	sessionService := service.NewSessionService(workoutService, identifier, files)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogRepo)
	sessionHandler := handler.NewSessionHandler(sessionService)
	workoutHandler := handler.NewWorkoutHandler(workoutService)

	app := fiber.New(fiber.Config{
		AppName:      "Gymsnap API",
		BodyLimit:    int(deps.Config.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(telemetry.FiberMiddleware())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "gymsnap",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Auth endpoints (public)
	auth := v1.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// Exercise catalog (public read)
	v1.Get("/catalog", catalogHandler.List)

	// Member API (authenticated)
	me := v1.Group("/me")
	me.Use(middleware.VerifySessionToken(deps.Config.JWT.Secret))

	session := me.Group("/session")
	session.Get("/", sessionHandler.Snapshot)
	session.Post("/start", sessionHandler.Start)
	session.Post("/capture", sessionHandler.Capture)
	session.Post("/retake", sessionHandler.Retake)
	session.Post("/confirm", sessionHandler.Confirm)
	session.Post("/sets", sessionHandler.AddSet)
	session.Delete("/sets/:setId", sessionHandler.DeleteSet)
	session.Post("/next", sessionHandler.NextExercise)
	session.Post("/end", sessionHandler.End)
	session.Post("/cancel", sessionHandler.Cancel)

	me.Get("/workouts", workoutHandler.List)
	me.Get("/workouts/:id", workoutHandler.Get)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
