// Package server contains the HTTP handlers and routes of the recruiting API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "lifewood/docs" // swagger docs
	"lifewood/internal/cache"
	"lifewood/internal/catalog"
	"lifewood/internal/config"
	"lifewood/internal/database"
	"lifewood/internal/featureflags"
	"lifewood/internal/middleware"
	"lifewood/internal/models"
	"lifewood/internal/notifications"
	"lifewood/internal/repository"
	"lifewood/internal/service"
	"lifewood/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultOrigins = "http://localhost:3000,http://localhost:5173,http://localhost:8080"

// Server holds all dependencies and provides handlers
type Server struct {
	config           *config.Config
	db               *gorm.DB
	redis            *redis.Client
	app              *fiber.App
	promMiddleware   *fiberprometheus.FiberPrometheus
	featureFlags     *featureflags.Manager
	projects         *catalog.Catalog
	mailer           *notifications.Mailer
	applicantService *service.ApplicantService
	adminService     *service.AdminService
}

// NewServer connects to the database and Redis and wires the services.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("config and database are required")
	}

	projects := catalog.Default()
	mailer := notifications.NewMailerFromConfig(cfg)
	resumes := storage.NewResumeStore(cfg.ResumeDir)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("lifewood-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		projects:       projects,
		mailer:         mailer,
	}
	server.applicantService = service.NewApplicantService(
		repository.NewApplicantRepository(db), projects, resumes, mailer).
		WithEvents(notifications.NewNotifier(redisClient))
	server.adminService = service.NewAdminService(
		repository.NewAdminRepository(db),
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTLHours)*time.Hour,
		service.RedisRevoker{},
	)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Clients configured without the /api base still reach the API.
	app.Use(middleware.ForwardLegacyPaths("/api", "projects", "applicants", "admin"))

	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Resumes are previewed inline from the web front's origin.
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS
	// headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders:    "Content-Disposition",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/", s.HealthCheck)

	api.Get("/projects", s.GetProjects)

	applicants := api.Group("/applicants")
	applicants.Get("/", s.GetApplicants)
	applicants.Post("/", middleware.RateLimit(
		s.limitStore(), 5, 10*time.Minute, "apply"), s.CreateApplicant)
	// Specific routes before the generic /:id routes.
	applicants.Get("/search", s.SearchApplicants)
	applicants.Get("/project/:project", s.GetApplicantsByProject)
	applicants.Get("/:id/resume", s.GetResume)
	applicants.Put("/:id/resume", s.UploadResume)
	applicants.Put("/:id/status", s.UpdateApplicantStatus)
	applicants.Put("/:id/approve", s.ApproveApplicant)
	applicants.Put("/:id/decline", s.DeclineApplicant)
	applicants.Get("/:id", s.GetApplicant)
	applicants.Put("/:id", s.UpdateApplicant)
	applicants.Delete("/:id", s.DeleteApplicant)

	admin := api.Group("/admin")
	admin.Post("/login", middleware.RateLimit(
		s.limitStore(), 10, 5*time.Minute, "admin_login"), s.AdminLogin)
	admin.Get("/validate", s.ValidateToken)

	protected := admin.Group("", s.AdminRequired())
	protected.Post("/logout", s.AdminLogout)
	protected.Get("/me", s.GetCurrentAdmin)
	protected.Post("/mail/test", s.SendTestMail)
	protected.Get("/feature-flags", s.GetFeatureFlags)
}

// limitStore avoids handing a typed nil client to the rate limiter.
func (s *Server) limitStore() redis.Cmdable {
	if s.redis == nil {
		return nil
	}
	return s.redis
}

// HealthCheck is a simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only an unreachable database makes the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "degraded"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Lifewood API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired rejects requests without a valid admin token. The parsed
// claims are kept in locals for the logout handler.
func (s *Server) AdminRequired() fiber.Handler {
	return middleware.AuthRequired(func(ctx context.Context, token string) (uint, string, error) {
		claims, err := s.adminService.ParseToken(ctx, token)
		if err != nil {
			return 0, "", err
		}
		id, err := claims.AdminID()
		if err != nil {
			return 0, "", err
		}
		return id, claims.ID, nil
	})
}

// NewApp builds a Fiber app with the error handler, middleware and routes.
func (s *Server) NewApp() *fiber.App {
	bodyLimit := s.config.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 10
	}

	app := fiber.New(fiber.Config{
		AppName:      "Lifewood API",
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escaped a handler. Fiber's own errors
// (unknown route, oversized body) keep their status.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithServiceError(c, err)
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
