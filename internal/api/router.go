package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskmanager/task-api/docs"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Logger    zerolog.Logger
	JWTSecret string

	Auth      ports.AuthService
	Users     ports.UserService
	Tasks     ports.TaskService
	TaskTypes ports.TaskTypeService
	Workflows ports.WorkflowService
	Reminders ports.ReminderService

	HealthChecks map[string]handler.HealthCheck

	// MaxUploadMB caps the body of the file upload route.
	MaxUploadMB int64
	// UploadsDir, when set, is served read-only under /uploads.
	UploadsDir string
	// Registry receives the HTTP metrics; nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	promMiddleware := echoprometheus.MiddlewareConfig{Subsystem: "taskapi"}
	promHandler := echoprometheus.HandlerConfig{}
	if d.Registry != nil {
		promMiddleware.Registerer = d.Registry
		promHandler.Gatherer = d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promMiddleware))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.HealthChecks)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(promHandler))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if d.UploadsDir != "" {
		e.Static("/uploads", d.UploadsDir)
	}

	authed := []echo.MiddlewareFunc{middleware.Auth(d.JWTSecret), middleware.LoadCaller(d.Users)}
	adminOnly := middleware.AdminOnly()

	// --- Users ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	e.POST("/users/register", authHandler.Register)
	e.POST("/users/login", authHandler.Login)
	users := e.Group("/users", authed...)
	users.GET("", userHandler.List, adminOnly)
	users.PATCH("/:id/role", userHandler.UpdateRole, adminOnly)

	// --- Tasks ---
	taskHandler := handler.NewTaskHandler(d.Tasks)
	tasks := e.Group("/tasks", authed...)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/export/csv", taskHandler.ExportCSV)
	tasks.GET("/reports/productivity", taskHandler.Report)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)
	tasks.POST("/:id/files", taskHandler.Upload, echomiddleware.BodyLimit(fmt.Sprintf("%dM", d.MaxUploadMB)))
	tasks.PATCH("/:id/favorite", taskHandler.Favorite)
	tasks.PATCH("/:id/complete", taskHandler.Complete)

	// --- Task types: reads for everyone, writes for admins ---
	taskTypeHandler := handler.NewTaskTypeHandler(d.TaskTypes)
	taskTypes := e.Group("/task-types", authed...)
	taskTypes.GET("", taskTypeHandler.List)
	taskTypes.GET("/:id", taskTypeHandler.Get)
	taskTypes.POST("", taskTypeHandler.Create, adminOnly)
	taskTypes.PUT("/:id", taskTypeHandler.Update, adminOnly)
	taskTypes.DELETE("/:id", taskTypeHandler.Delete, adminOnly)

	// --- Workflows (admin) ---
	workflowHandler := handler.NewWorkflowHandler(d.Workflows)
	workflows := e.Group("/workflows", append(authed, adminOnly)...)
	workflows.GET("", workflowHandler.List)
	workflows.POST("", workflowHandler.Create)
	workflows.GET("/:id", workflowHandler.Get)
	workflows.PUT("/:id", workflowHandler.Update)
	workflows.DELETE("/:id", workflowHandler.Delete)

	// --- Email (admin) ---
	emailHandler := handler.NewEmailHandler(d.Reminders)
	e.POST("/email/test", emailHandler.SendTest, append(authed, adminOnly)...)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
