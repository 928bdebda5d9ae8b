package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"duit/internal/amqp"
	"duit/internal/config"
	"duit/internal/log"
	"duit/internal/services"
	"duit/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: log.DefaultConfig().Level, Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting duit-worker")

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

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		cfg.AMQPNotifyKey, cfg.AMQPBackupKey)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	if err := amqpClient.SetPrefetch(cfg.WorkerPrefetch); err != nil {
		logger.Error("Failed to set AMQP prefetch", log.FieldError, err)
		os.Exit(1)
	}

	notifier := services.NewNotifier(repo, logger)
	alerter := services.NewBudgetAlerter(repo, logger)
	backupper := services.NewBackupper(repo, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handlers := amqp.Handlers{
		NotificationCheck: func(msg *amqp.NotificationCheckMessage) error {
			result, err := notifier.Check(ctx, msg.UserID)
			if err != nil {
				return err
			}
			// Budget tiers ride on the same trigger as the rule engine.
			fired, err := alerter.Evaluate(ctx, msg.UserID, time.Now())
			if err != nil {
				return err
			}
			logger.Info("Notification check processed",
				log.FieldUserID, msg.UserID,
				"created", result.Created,
				"budget_alerts", len(fired))
			return nil
		},
		BackupRequest: func(msg *amqp.BackupRequestMessage) error {
			// Zero user ID requests the full sweep.
			if msg.UserID == 0 {
				_, err := backupper.RunDaily(ctx)
				return err
			}
			return backupper.BackupUser(ctx, msg.UserID)
		},
	}

	// Consume with reconnect. A broker restart should not kill the
	// worker; the backoff lives inside Reconnect.
	go func() {
		for {
			err := amqpClient.Consume(ctx, handlers)
			if err == nil || errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("Message consumption failed, reconnecting", log.FieldError, err)
			if err := amqpClient.Reconnect(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error("Reconnect failed, shutting down", log.FieldError, err)
				}
				cancel()
				return
			}
			// Prefetch is per channel and must be reapplied.
			if err := amqpClient.SetPrefetch(cfg.WorkerPrefetch); err != nil {
				logger.Error("Failed to restore AMQP prefetch", log.FieldError, err)
			}
		}
	}()

	// Daily backup sweep at the configured local hour.
	go func() {
		for {
			next := nextRunAt(time.Now(), cfg.BackupHour)
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			backupLog, err := backupper.RunDaily(ctx)
			if err != nil {
				logger.Error("Daily backup sweep failed", log.FieldError, err)
				continue
			}
			logger.Info("Daily backup sweep finished",
				"status", backupLog.Status,
				"total_users", backupLog.TotalUsers,
				"success_count", backupLog.SuccessCount,
				"error_count", backupLog.ErrorCount)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Worker stopped gracefully")
}

// nextRunAt returns the next occurrence of hour o'clock strictly after now.
func nextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
