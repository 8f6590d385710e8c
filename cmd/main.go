package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/saasbase/internal/handler"
	"github.com/suteetoe/saasbase/internal/middleware"
	"github.com/suteetoe/saasbase/internal/repository"
	"github.com/suteetoe/saasbase/pkg/config"
	"github.com/suteetoe/saasbase/pkg/database"
	"github.com/suteetoe/saasbase/pkg/jwtutil"
	"github.com/suteetoe/saasbase/pkg/logger"
	"github.com/suteetoe/saasbase/pkg/ratelimit"
	"github.com/suteetoe/saasbase/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("saasbase")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting saasbase...", cfg.LogConfig()...)

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility and wire it into the handlers
	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)
	handler.Init(jwtUtil)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	tenants := repository.NewGormTenantRepository(database.GetDB())
	limiter := ratelimit.New(ratelimit.Config{
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
	})

	// Initialize Echo framework
	e := echo.New()

	// /t/<slug>/ paths must be recognized before routing
	e.Pre(middleware.TenantPathRewrite())

	// Global middleware - order matters: correlation first so every later
	// stage logs with the request's id
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.CorrelationMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no tenant context required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Login runs only the tenant resolver: credentials are tenant-scoped but
	// there is no token to verify yet
	auth := e.Group("/auth")
	auth.Use(middleware.TenantMiddleware(tenants))
	auth.POST("/login", handler.Login)

	// API routes - full admission chain: resolve, verify, bind
	api := e.Group("/api")
	api.Use(middleware.TenantMiddleware(tenants))
	api.Use(middleware.AuthMiddleware(jwtUtil))
	api.Use(middleware.TenantBindingMiddleware)

	api.GET("/me", handler.Me)

	// Tenant configuration; updates require the admin role
	api.GET("/tenant/config", handler.GetTenantConfig)
	api.PUT("/tenant/config", handler.UpdateTenantConfig, middleware.RequireRole("admin"))

	// High-volume reads carry the per-tenant rate limit; writes do not
	api.GET("/resources", handler.ListResources, middleware.RateLimitMiddleware(limiter))
	api.POST("/resources", handler.CreateResource)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
