package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	pollerUseCase "github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/poller"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/reconciliation"
	walletUseCase "github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/wallet"

	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/database/migration"
	gatewayAdapter "github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/repository"
	timeProvider "github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)

	// Setup database configuration
	dbConfig := database.CreateConfigFromViperConfig(cfg)

	// Initialize time provider
	tp := timeProvider.NewRealTimeProvider()

	// Connect to the database
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() { _ = dbManager.Close() }()

	// Run migrations
	migrationMgr := migration.NewMigrationManager(dbManager.DB(), appLogger, tp)
	if err := migrationMgr.MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Initialize repositories
	transactionRepo := repository.NewTransactionRepository(dbManager.DB(), appLogger)
	ledgerRepo := repository.NewLedgerRepository(dbManager.DB(), tp, appLogger)
	manualRepo := repository.NewManualPaymentRepository(dbManager.DB(), appLogger)

	// Unit of work (transaction manager)
	uow := database.NewUnitOfWork(dbManager.DB(), appLogger, tp)

	// External system clients
	gatewayClient := gatewayAdapter.NewHTTPPaymentGatewayClient(gatewayAdapter.GatewayConfig{
		BaseURL: cfg.Gateway.BaseURL,
		APIKey:  cfg.Gateway.APIKey,
		Timeout: cfg.Gateway.Timeout,
	}, appLogger)
	casinoClient := gatewayAdapter.NewHTTPCasinoClient(gatewayAdapter.CasinoConfig{
		BaseURL: cfg.Casino.BaseURL,
		APIKey:  cfg.Casino.APIKey,
		Timeout: cfg.Casino.Timeout,
	}, appLogger)

	// Initialize use cases
	walletService := walletUseCase.NewService(ledgerRepo, tp, appLogger)

	engine := reconciliation.NewEngine(
		uow,
		transactionRepo,
		ledgerRepo,
		manualRepo,
		gatewayClient,
		casinoClient,
		tp,
		appLogger,
		reconciliation.Config{
			GatewayPollInterval: cfg.Reconciliation.GatewayPollInterval,
			ManualReviewSLA:     cfg.Reconciliation.ManualReviewSLA,
			Retry: reconciliation.RetryPolicy{
				BaseDelay:  cfg.Reconciliation.RetryBaseDelay,
				Factor:     cfg.Reconciliation.RetryFactor,
				MaxDelay:   cfg.Reconciliation.RetryMaxDelay,
				MaxRetries: cfg.Reconciliation.MaxRetries,
			},
			SweepBatchSize: cfg.Reconciliation.SweepBatchSize,
		},
	)

	// Create default users
	if err := migration.CreateDefaultUsers(context.Background(), walletService); err != nil {
		appLogger.Error("Failed to create default users", map[string]any{
			"error": err.Error(),
		})
	}

	// Start the status poller
	statusPoller := pollerUseCase.NewStatusPoller(
		engine,
		transactionRepo,
		gatewayClient,
		tp,
		appLogger,
		pollerUseCase.Config{
			Interval:  cfg.Poller.Interval,
			BatchSize: cfg.Poller.BatchSize,
			Workers:   cfg.Poller.Workers,
		},
	)
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	defer pollerCancel()
	statusPoller.Start(pollerCtx)

	// Initialize API handlers
	depositHandler := handler.NewDepositHandler(engine, appLogger)
	statusHandler := handler.NewStatusHandler(engine, appLogger)
	walletHandler := handler.NewWalletHandler(walletService, appLogger)
	adminHandler := handler.NewAdminHandler(engine, appLogger)

	// Initialize Gin router
	router := gin.New()

	// Setup middlewares
	routes.SetupMiddlewares(router, appLogger)

	// Setup routes
	routes.SetupRoutes(router, depositHandler, statusHandler, walletHandler, adminHandler)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop the poller before closing the database
	appLogger.Info("Stopping status poller...", nil)
	pollerCancel()
	statusPoller.Stop()

	// Shutdown the server
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	// Validate server configuration
	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}
	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	// Validate database configuration; in production the values may arrive
	// through environment variables instead of the config file
	requireDB := func(value, key, envVar string) {
		if value != "" {
			return
		}
		if cfg.Environment == config.Production && os.Getenv(envVar) == "" {
			missingConfigs = append(missingConfigs, fmt.Sprintf("%s (or %s environment variable)", key, envVar))
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, key)
		}
	}
	requireDB(cfg.Database.Host, "database.host", "PR_DB_HOST")
	requireDB(cfg.Database.Port, "database.port", "PR_DB_PORT")
	requireDB(cfg.Database.Username, "database.username", "PR_DB_USERNAME")
	requireDB(cfg.Database.Password, "database.password", "PR_DB_PASSWORD")
	requireDB(cfg.Database.Database, "database.database", "PR_DB_NAME")

	if cfg.Database.QueryTimeout == 0 {
		missingConfigs = append(missingConfigs, "database.queryTimeout")
	}

	// External systems
	if cfg.Gateway.BaseURL == "" {
		missingConfigs = append(missingConfigs, "gateway.baseUrl (or PR_GATEWAY_BASE_URL environment variable)")
	}
	if cfg.Casino.BaseURL == "" {
		missingConfigs = append(missingConfigs, "casino.baseUrl (or PR_CASINO_BASE_URL environment variable)")
	}

	// Reconciliation settings
	if cfg.Reconciliation.MaxRetries == 0 {
		missingConfigs = append(missingConfigs, "reconciliation.maxRetries")
	}
	if cfg.Reconciliation.SweepBatchSize == 0 {
		missingConfigs = append(missingConfigs, "reconciliation.sweepBatchSize")
	}

	// Environment should be set with a valid value
	if cfg.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	// Logger configuration
	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	// If we're in production, do additional validation for sensitive settings
	if cfg.Environment == config.Production {
		var warnings []string

		if mode := strings.ToLower(cfg.Database.SSLMode); mode != "require" && mode != "verify-ca" && mode != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}
		if cfg.Server.WriteTimeout < 5*time.Second {
			warnings = append(warnings, "server.writeTimeout is too low for production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential security issues in production configuration: %v", warnings)
		}
	}

	return nil
}
