package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/brokerdesk/backoffice-api/docs"
	"github.com/brokerdesk/backoffice-api/internal/api/handler"
	"github.com/brokerdesk/backoffice-api/internal/api/middleware"
	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Log       zerolog.Logger
	Tokens    middleware.TokenVerifier
	Auth      ports.AuthService
	Users     ports.UserService
	Customers ports.CustomerService
	Dashboard ports.DashboardService
	Audit     ports.AuditService
	Checks    map[string]handler.Check

	// Registerer receives the HTTP request metrics. Nil means the default
	// Prometheus registerer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "backoffice",
		Registerer: deps.Registerer,
	}))

	auth := middleware.Auth(deps.Tokens)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	customerHandler := handler.NewCustomerHandler(deps.Customers)
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard)
	auditHandler := handler.NewAuditHandler(deps.Audit)
	healthHandler := handler.NewHealthHandler(deps.Checks)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	docs.SwaggerInfo.BasePath = "/"
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register, middleware.OptionalAuth(deps.Tokens))
	e.POST("/auth/refresh", authHandler.Refresh)
	e.GET("/auth/profile", authHandler.Profile, auth)

	v1 := e.Group("/v1", auth)

	// --- Dashboard ---
	v1.GET("/dashboard/welcome", dashboardHandler.Welcome)
	v1.GET("/dashboard/stats", dashboardHandler.Stats)

	// --- Users ---
	users := v1.Group("/users")
	users.GET("", userHandler.List, middleware.RBAC(domain.RoleAdmin, domain.RoleManager))
	users.GET("/stats", userHandler.Stats, middleware.RBAC(domain.RoleAdmin, domain.RoleManager))
	users.GET("/me", userHandler.Me)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create, adminOnly)
	users.PATCH("/:id", userHandler.Update, adminOnly)
	users.PATCH("/:id/change-password", userHandler.ChangePassword)
	users.PATCH("/:id/role", userHandler.UpdateRole, adminOnly)
	users.PATCH("/:id/status", userHandler.UpdateStatus, adminOnly)
	users.DELETE("/:id", userHandler.Deactivate, adminOnly)

	// --- Customers ---
	customers := v1.Group("/customers")
	customers.POST("", customerHandler.Create)
	customers.GET("", customerHandler.List)
	customers.GET("/stats", customerHandler.Stats)
	customers.GET("/:id", customerHandler.Get)
	customers.PATCH("/:id", customerHandler.Update)
	customers.DELETE("/:id", customerHandler.Deactivate)

	// --- Audit ---
	v1.GET("/audit/events", auditHandler.List, adminOnly)

	return e
}
