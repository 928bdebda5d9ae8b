package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"duit/internal/amqp"
	"duit/internal/auth"
	"duit/internal/cache"
	"duit/internal/config"
	"duit/internal/export"
	apphttp "duit/internal/http"
	"duit/internal/llm"
	"duit/internal/log"
	"duit/internal/services"
	"duit/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional for the API process. Without it transaction
	// writes skip the queued notification check; everything else works.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			cfg.AMQPNotifyKey, cfg.AMQPBackupKey)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without background jobs",
				log.FieldError, err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	cacheManager := cache.NewManager()
	cacheManager.StartCleanup(5 * time.Minute)
	defer cacheManager.Stop()

	analytics := services.NewAnalytics(repo, cfg.AnalyticsCacheTTL, cacheManager)

	var llmClient *llm.Client
	if cfg.LLMAPIKey != "" {
		llmClient = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
		logger.Info("LLM advisor enabled", "model", cfg.LLMModel)
	} else {
		logger.Info("LLM advisor disabled - no LLM_API_KEY provided")
	}

	sheets, err := export.NewSheetsExporter(context.Background(), cfg, repo, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
		os.Exit(1)
	}
	if sheets == nil {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	deps := apphttp.Deps{
		Storage:      repo,
		Auth:         auth.NewService(cfg.JWTSecret, cfg.CronSecret),
		Transactions: services.NewTransactionService(repo, amqpClient, analytics),
		Goals:        services.NewGoalService(repo, logger),
		Analytics:    analytics,
		Notifier:     services.NewNotifier(repo, logger),
		BudgetAlerts: services.NewBudgetAlerter(repo, logger),
		Advisor:      services.NewAdvisor(repo, llmClient, logger),
		Backupper:    services.NewBackupper(repo, logger),
		CSV:          export.NewCSVExporter(repo),
		Sheets:       sheets,
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting duit API server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
