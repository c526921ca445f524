package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/taskhive/task-api/docs"
	"github.com/taskhive/task-api/internal/api/handler"
	"github.com/taskhive/task-api/internal/api/middleware"
	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
	"github.com/taskhive/task-api/internal/core/token"
)

// Deps carries everything the router needs, wired explicitly by the caller
// (main for production, tests with in-memory stores). There is no implicit
// construction here: what is passed in is exactly what runs.
type Deps struct {
	Logger zerolog.Logger
	Issuer *token.Issuer

	AuthService ports.AuthService
	TaskService ports.TaskService
	Users       ports.UserRepository
	AuditStore  ports.AuditStore

	// Mongo and Redis back the readiness probe; when either is nil the
	// probe route is not registered (tests run without them).
	Mongo *mongo.Database
	Redis *redis.Client

	// Registry holds the request metrics. Nil means the process-wide default
	// registry; tests pass their own so routers can be built repeatedly.
	Registry *prometheus.Registry
}

// accessPolicy enumerates every route class and its requirement. First match
// wins; a path matching no rule is denied. This table is the only place that
// decides public versus protected.
func accessPolicy() middleware.AccessPolicy {
	return middleware.AccessPolicy{Rules: []middleware.Rule{
		{Pattern: "/api/auth/*", Access: middleware.Public},
		{Pattern: "/health/*", Access: middleware.Public},
		{Pattern: "/metrics", Access: middleware.Public},
		{Pattern: "/swagger/*", Access: middleware.Public},
		{Pattern: "/api/admin/*", Access: middleware.RequirePrincipal, Roles: []string{domain.RoleAdmin}},
		{Pattern: "/api/tasks/*", Access: middleware.RequirePrincipal},
	}}
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		registerer = d.Registry
		gatherer = d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "taskapi",
		Registerer: registerer,
	}))
	e.Use(middleware.Authenticate(d.Issuer, d.Users))
	e.Use(middleware.Authorize(accessPolicy()))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	taskHandler := handler.NewTaskHandler(d.TaskService)
	auditHandler := handler.NewAuditHandler(d.AuditStore)

	// --- Auth routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)

	// --- Task routes ---
	e.POST("/api/tasks", taskHandler.Create)
	e.GET("/api/tasks", taskHandler.List)
	e.GET("/api/tasks/:id", taskHandler.Get)
	e.PUT("/api/tasks/:id", taskHandler.Update)
	e.DELETE("/api/tasks/:id", taskHandler.Delete)

	// --- Admin routes ---
	e.GET("/api/admin/audit", auditHandler.List)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer,
	}))
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness)
	if d.Mongo != nil && d.Redis != nil {
		readiness := handler.NewReadinessHandler(d.Mongo, d.Redis)
		e.GET("/health/ready", readiness.Readiness)
	}

	return e
}
