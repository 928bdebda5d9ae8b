package services

import (
	"context"
	"fmt"
	"time"

	"duit/internal/core"
	"duit/internal/log"
	"duit/internal/storage"
)

// BudgetAlerter evaluates every budget of a user against the current
// month's spending. Fired tiers are recorded per budget per month, so
// calling this on every page load reports each alert exactly once.
type BudgetAlerter struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewBudgetAlerter(repo *storage.SQLiteRepository, logger *log.Logger) *BudgetAlerter {
	return &BudgetAlerter{
		storage: repo,
		logger:  logger.WithComponent(log.ComponentBudgetAlert),
	}
}

// Evaluate returns the alerts that fired for the first time this month.
func (b *BudgetAlerter) Evaluate(ctx context.Context, userID int64, now time.Time) ([]core.BudgetAlert, error) {
	budgets, err := b.storage.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}

	monthStart, monthEnd := core.MonthBounds(now)
	monthExpenses, err := b.storage.ListTransactions(ctx, userID, storage.TransactionFilter{
		Type: core.Expense, From: &monthStart, To: &monthEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("load month expenses: %w", err)
	}

	categories, err := b.storage.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	var fired []core.BudgetAlert
	for _, budget := range budgets {
		var categoryName string
		if budget.CategoryID != nil {
			categoryName = names[*budget.CategoryID]
		}

		for _, alert := range core.EvaluateBudget(budget, categoryName, monthExpenses, now) {
			isNew, err := b.storage.MarkBudgetAlertFired(ctx, alert.BudgetID, alert.Month, alert.Tier)
			if err != nil {
				b.logger.ErrorContext(ctx, "Failed to record budget alert",
					log.FieldBudgetID, alert.BudgetID,
					log.FieldTier, string(alert.Tier),
					log.FieldError, err)
				continue
			}
			if !isNew {
				continue
			}

			fired = append(fired, alert)
			b.logger.InfoContext(ctx, "Budget alert fired",
				log.FieldUserID, userID,
				log.FieldBudgetID, alert.BudgetID,
				log.FieldTier, string(alert.Tier),
				log.FieldMonth, alert.Month)
		}
	}

	return fired, nil
}
