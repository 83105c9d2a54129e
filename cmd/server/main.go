package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"expense-tracker/internal/analytics"
	"expense-tracker/internal/config"
	"expense-tracker/internal/database"
	"expense-tracker/internal/handlers"
	"expense-tracker/internal/middleware"
	"expense-tracker/internal/repositories"
	"expense-tracker/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	e := newServer(ctx, cfg, db, logger)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("starting expense tracker API",
			"addr", addr,
			"environment", cfg.Server.Environment,
			"analytics_timezone", cfg.Analytics.Location.String(),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped gracefully")
}

func newServer(ctx context.Context, cfg *config.Config, db *database.DB, logger *slog.Logger) *echo.Echo {
	transactionRepo := repositories.NewTransactionRepository(db.DB,
		repositories.WithPageIsolation(cfg.Analytics.PageIsolation),
	)

	metrics := services.NewPrometheusMetrics()
	auditLogger := services.NewAuditLogger(logger)
	resolver := analytics.NewResolver(analytics.SystemClock, cfg.Analytics.Location)

	analyticsService := services.NewAnalyticsService(transactionRepo, resolver, metrics, auditLogger)
	transactionService := services.NewTransactionService(transactionRepo, metrics, auditLogger, cfg.Analytics.DefaultCurrency)
	tokenService := services.NewTokenService(&cfg.JWT)

	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, cfg.Analytics.Location)
	healthHandler := handlers.NewHealthCheckHandler(db.DB)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	e.IPExtractor = middleware.IPExtractor(cfg.Security)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	rateLimiter.StartCleanup(ctx)

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.TraceIDHeader},
	}))
	e.Use(echomw.BodyLimit("2M"))
	e.Use(rateLimiter.Middleware())

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", middleware.RequireAuth(tokenService, metrics))
	api.GET("/dashboard/stats", analyticsHandler.GetDashboardStats)
	api.GET("/dashboard/trends", analyticsHandler.GetTrends)
	api.GET("/transactions", transactionHandler.ListTransactions)
	api.POST("/transactions", transactionHandler.CreateTransaction)
	api.POST("/transactions/import", transactionHandler.ImportTransactions)
	api.GET("/transactions/:id", transactionHandler.GetTransaction)
	api.PUT("/transactions/:id", transactionHandler.UpdateTransaction)

	if cfg.IsDevelopment() {
		devHandler := handlers.NewDevHandler(transactionService, services.NewTransactionGenerator(cfg.Analytics.DefaultCurrency), tokenService)
		api.POST("/dev/seed", devHandler.SeedTransactions)
		logger.Warn("development endpoints enabled", "route", "/api/v1/dev/seed")

		if cfg.JWT.CanIssue() {
			e.POST("/api/v1/dev/token", devHandler.IssueToken)
			logger.Warn("unauthenticated token issuing enabled", "route", "/api/v1/dev/token")
		}
	}

	return e
}
