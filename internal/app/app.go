// Package app assembles the HTTP application from its storage and services.
package app

import (
	"errors"
	"time"

	"dailydiet/internal/handlers"
	"dailydiet/internal/repositories"
	"dailydiet/internal/services"
	"dailydiet/internal/storage"
	"dailydiet/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Deps are the collaborators New wires together. Cache and Publisher are optional.
type Deps struct {
	DB            *gorm.DB
	Avatars       storage.BlobStore
	Cache         services.MetricsCache
	Publisher     services.EventPublisher
	BcryptCost    int
	SessionMaxAge time.Duration
	Telemetry     *telemetry.Telemetry
	// DisableRequestLog turns off the access log middleware.
	DisableRequestLog bool
}

// New builds the Fiber application with every route registered.
func New(deps Deps) (*fiber.App, error) {
	if deps.DB == nil {
		return nil, errors.New("app: database is required")
	}
	if deps.Avatars == nil {
		return nil, errors.New("app: avatar store is required")
	}
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.New()
	}
	if deps.SessionMaxAge <= 0 {
		deps.SessionMaxAge = 7 * 24 * time.Hour
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	dietRepo := repositories.NewGORMDietRepository(deps.DB)

	// --- Services ---
	sessions := services.NewSessionService(userRepo)
	userService := services.NewUserService(userRepo, services.NewBcryptHasher(deps.BcryptCost), sessions, deps.Avatars)
	dietService := services.NewDietService(dietRepo, deps.Cache, deps.Publisher)
	metricsService := services.NewMetricsService(dietRepo, deps.Cache)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, sessions, deps.SessionMaxAge)
	dietHandler := handlers.NewDietHandler(dietService, metricsService, sessions)

	app := fiber.New(fiber.Config{
		AppName:   "dailydiet",
		BodyLimit: 8 * 1024 * 1024,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if !deps.DisableRequestLog {
		app.Use(logger.New())
	}
	app.Use(deps.Telemetry.Middleware())

	// --- Routes ---
	userHandler.RegisterRoutes(app)
	dietHandler.RegisterRoutes(app)

	app.Get("/health", healthHandler(deps.DB))
	app.Get("/metrics", deps.Telemetry.Handler())

	return app, nil
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}
