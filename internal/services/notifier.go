package services

import (
	"context"
	"fmt"
	"time"

	"duit/internal/core"
	"duit/internal/log"
	"duit/internal/storage"
)

// Notifier materializes the rule engine's input from storage, runs the
// rules and persists the results. Safe to call repeatedly: the storage
// layer suppresses duplicate unread notifications.
type Notifier struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewNotifier(repo *storage.SQLiteRepository, logger *log.Logger) *Notifier {
	return &Notifier{
		storage: repo,
		logger:  logger.WithComponent(log.ComponentNotifier),
	}
}

// CheckResult summarizes one rule-engine pass.
type CheckResult struct {
	Evaluated      int // drafts produced by the rules
	Created        int // notifications actually inserted
	GoalsCompleted int
}

// Check runs every notification rule for one user.
func (n *Notifier) Check(ctx context.Context, userID int64) (CheckResult, error) {
	now := time.Now()
	monthStart, monthEnd := core.MonthBounds(now)

	monthTxs, err := n.storage.ListTransactions(ctx, userID, storage.TransactionFilter{
		From: &monthStart, To: &monthEnd,
	})
	if err != nil {
		return CheckResult{}, fmt.Errorf("load month transactions: %w", err)
	}

	goals, err := n.storage.ListGoals(ctx, userID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("load goals: %w", err)
	}

	balance, hasBalance, err := n.storage.GetBalance(ctx, userID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("load balance: %w", err)
	}

	res := core.EvaluateRules(core.RuleInput{
		Now:               now,
		MonthTransactions: monthTxs,
		StoredBalance:     balance,
		HasBalance:        hasBalance,
		Goals:             goals,
	})

	result := CheckResult{Evaluated: len(res.Drafts)}

	for _, goalID := range res.CompletedGoalIDs {
		if err := n.storage.MarkGoalCompleted(ctx, userID, goalID); err != nil {
			n.logger.ErrorContext(ctx, "Failed to mark goal completed",
				log.FieldGoalID, goalID, log.FieldError, err)
			continue
		}
		result.GoalsCompleted++
	}

	for _, d := range res.Drafts {
		created, err := n.storage.CreateNotificationIfAbsent(ctx, core.Notification{
			UserID:   userID,
			Type:     d.Type,
			Title:    d.Title,
			Message:  d.Message,
			Priority: d.Priority,
		})
		if err != nil {
			n.logger.ErrorContext(ctx, "Failed to persist notification",
				log.FieldNotifType, string(d.Type), log.FieldError, err)
			continue
		}
		if created {
			result.Created++
		}
	}

	n.logger.InfoContext(ctx, "Notification check finished",
		log.FieldUserID, userID,
		"evaluated", result.Evaluated,
		"created", result.Created,
		"goals_completed", result.GoalsCompleted)

	return result, nil
}
