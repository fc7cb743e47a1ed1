package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/roknskapar/pdf-processor/internal/api/handler"
	"github.com/roknskapar/pdf-processor/internal/api/middleware"
	"github.com/roknskapar/pdf-processor/internal/core/domain"
	"github.com/roknskapar/pdf-processor/internal/core/ports"
	"github.com/roknskapar/pdf-processor/internal/core/service"
	"github.com/roknskapar/pdf-processor/internal/infrastructure/config"
	"github.com/roknskapar/pdf-processor/internal/infrastructure/db/postgres"
)

// Dependencies bundles everything the router needs to wire the handlers.
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Registry  ports.FileRegistry
	Extractor ports.Extractor
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())

	// --- Dependencies ---
	userRepo := postgres.NewUserRepository(deps.DB)
	authService := service.NewAuthService(userRepo, service.AuthConfig{
		JWTSecret:      deps.Config.JWT.Secret,
		JWTIssuer:      deps.Config.JWT.Issuer,
		JWTAudience:    deps.Config.JWT.Audience,
		TokenTTL:       deps.Config.JWT.TTL,
		AdminSecretKey: deps.Config.AdminSetup.SecretKey,
		DevMode:        deps.Config.IsDevelopment(),
	}, deps.Log)
	userService := service.NewUserService(userRepo, deps.Log)
	pdfService := service.NewPDFService(deps.Extractor, deps.Registry, deps.Config.Upload.TempDir, deps.Log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	pdfHandler := handler.NewPDFHandler(pdfService, deps.Registry)

	authMW := middleware.Auth(deps.Config.JWT.Secret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/create-admin", authHandler.CreateAdmin)
	auth.POST("/change-password", authHandler.ChangePassword, authMW)

	// --- User directory (admin only) ---
	users := e.Group("/api/users", authMW, adminOnly)
	users.GET("", userHandler.List)
	users.GET("/roles", userHandler.Roles)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- PDF processing (admin only) ---
	pdf := e.Group("/api/pdf", authMW, adminOnly)
	pdf.POST("/process", pdfHandler.Process)
	pdf.GET("/processed", pdfHandler.Processed)
	pdf.GET("/file/:id", pdfHandler.File)
	pdf.DELETE("/clear", pdfHandler.Clear)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.DB)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
