// Package services orchestrates the domain engines over storage, AMQP
// and the LLM client.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"duit/internal/amqp"
	"duit/internal/core"
	"duit/internal/storage"
)

// TransactionService wraps transaction writes so every mutation also
// queues a notification rule check for the user.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	analytics  *Analytics
}

// NewTransactionService wires storage, the job queue and the analytics
// caches. Both amqpClient and analytics may be nil.
func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, analytics *Analytics) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
		analytics:  analytics,
	}
}

// Create validates and saves a transaction, then publishes a
// notification check. The publish is best-effort; the write has already
// succeeded.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := s.resolveCategory(ctx, &tx); err != nil {
		return core.Transaction{}, err
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.afterWrite(ctx, created.UserID)
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := s.resolveCategory(ctx, &tx); err != nil {
		return core.Transaction{}, err
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.storage.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.afterWrite(ctx, tx.UserID)
	return s.storage.GetTransaction(ctx, tx.UserID, tx.ID)
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.afterWrite(ctx, userID)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID int64, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID, f)
}

// resolveCategory loads the referenced category so Validate can check
// that its type matches the transaction's.
func (s *TransactionService) resolveCategory(ctx context.Context, tx *core.Transaction) error {
	if tx.CategoryID == nil {
		tx.Category = nil
		return nil
	}
	cat, err := s.storage.GetCategory(ctx, tx.UserID, *tx.CategoryID)
	if err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}
	tx.Category = &cat
	return nil
}

// afterWrite invalidates cached aggregates and queues a rule check.
func (s *TransactionService) afterWrite(ctx context.Context, userID int64) {
	if s.analytics != nil {
		s.analytics.Invalidate(userID)
	}
	s.queueNotificationCheck(ctx, userID)
}

func (s *TransactionService) queueNotificationCheck(ctx context.Context, userID int64) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping notification check")
		return
	}
	if err := s.amqpClient.PublishNotificationCheck(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish notification check",
			"user_id", userID, "error", err)
		// Don't fail the request - the transaction is saved
	}
}
