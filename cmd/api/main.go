package main

import (
	"context"
	"crypto/subtle"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/config"
	"github.com/dafibh/ledger/ledger-backend/internal/handler"
	"github.com/dafibh/ledger/ledger-backend/internal/middleware"
	"github.com/dafibh/ledger/ledger-backend/internal/rates"
	"github.com/dafibh/ledger/ledger-backend/internal/repository/postgres"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	// Connect to database
	pool, err := postgres.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Connected to database")

	store := postgres.NewStore(pool)
	clock := util.NewClock(cfg.Location)

	// Initialize services
	calculationService := service.NewCalculationService(store)
	budgetService := service.NewBudgetService(store, clock)
	summaryService := service.NewSummaryService(store, clock, budgetService)
	transactionService := service.NewTransactionService(store, clock, calculationService, budgetService, cfg.DefaultCurrency)
	accountService := service.NewAccountService(store, clock, calculationService, cfg.DefaultCurrency)
	categoryService := service.NewCategoryService(store)
	userService := service.NewUserService(store)
	conversionService := service.NewConversionService(rates.NewClient(cfg.Rates.BaseURL, cfg.Rates.Timeout))

	// Initialize handlers
	handlers := handler.Handlers{
		Meta:        handler.NewMetaHandler(categoryService, accountService, userService, clock, cfg.DefaultCurrency, store),
		User:        handler.NewUserHandler(userService),
		Category:    handler.NewCategoryHandler(categoryService),
		Account:     handler.NewAccountHandler(accountService, calculationService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Budget:      handler.NewBudgetHandler(budgetService, clock),
		Summary:     handler.NewSummaryHandler(summaryService, conversionService, cfg.DefaultCurrency),
	}

	var dashboardAuth echo.MiddlewareFunc
	if cfg.DashboardUser != "" && cfg.DashboardPass != "" {
		handlers.Dashboard, err = handler.NewDashboardHandler(handler.DashboardServices{
			Summary:     summaryService,
			Budget:      budgetService,
			Transaction: transactionService,
			Calculation: calculationService,
			Category:    categoryService,
			User:        userService,
			Account:     accountService,
		}, clock)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load dashboard templates")
		}
		dashboardAuth = echomiddleware.BasicAuthWithConfig(echomiddleware.BasicAuthConfig{
			Realm: "Ledger",
			Validator: func(user, pass string, c echo.Context) (bool, error) {
				userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.DashboardUser)) == 1
				passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.DashboardPass)) == 1
				return userOK && passOK, nil
			},
		})
	} else {
		log.Warn().Msg("DASHBOARD_USER/DASHBOARD_PASS not set, dashboard disabled")
	}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.APIKeyHeader},
		MaxAge:       86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(middleware.RequestLogger())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	handler.RegisterRoutes(e, handlers,
		middleware.APIKeyAuth(cfg.APIKey),
		middleware.RateLimitMiddleware(rateLimiter),
		dashboardAuth,
	)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("timezone", cfg.Timezone).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
