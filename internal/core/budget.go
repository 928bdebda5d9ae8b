package core

import (
	"fmt"
	"math"
	"time"
)

// Budget alert tiers. Each fires at most once per budget per calendar
// month; the storage layer enforces that with a persisted dedup key.
const (
	TierWarning  BudgetTier = "warning"  // 80% <= usage < 100%
	TierExceeded BudgetTier = "exceeded" // usage >= 100%
	TierTip      BudgetTier = "tip"      // usage < 50% with <= 7 days left
)

const (
	warningThreshold = 80.0
	tipThreshold     = 50.0
	tipDaysLeft      = 7
)

type BudgetTier string

// BudgetAlert is one fired tier for one budget in one calendar month.
type BudgetAlert struct {
	BudgetID   int64
	Month      string // "2006-01", the dedup month key
	Tier       BudgetTier
	Title      string
	Message    string
	Spent      int64
	Limit      int64
	Percentage float64
	DaysLeft   int
}

// EvaluateBudget checks one monthly budget against the month's expense
// transactions, returning every tier whose condition holds. Tiers are
// independent; per-tier-per-month dedup is the caller's job.
//
// Spend in scope is the sum of this-month expense transactions matching
// the budget's category, or all expenses when the budget has none.
// categoryName is used in messages; pass "" for an overall budget.
func EvaluateBudget(b Budget, categoryName string, monthExpenses []Transaction, now time.Time) []BudgetAlert {
	var spent int64
	for _, tx := range monthExpenses {
		if tx.Type != Expense {
			continue
		}
		if b.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *b.CategoryID) {
			continue
		}
		spent += tx.Amount.Amount
	}
	if b.Amount.Amount <= 0 {
		return nil
	}

	percentage := float64(spent) / float64(b.Amount.Amount) * 100
	_, monthEnd := MonthBounds(now)
	daysLeft := int(math.Ceil(monthEnd.Sub(now).Hours() / 24))
	monthKey := now.Format("2006-01")
	scope := categoryName
	if scope == "" {
		scope = "total"
	}

	var alerts []BudgetAlert
	if percentage >= warningThreshold && percentage < 100 {
		alerts = append(alerts, BudgetAlert{
			BudgetID:   b.ID,
			Month:      monthKey,
			Tier:       TierWarning,
			Title:      "Budget Warning",
			Message:    fmt.Sprintf("You've used %d%% of the %s budget (%s of %s).", int(percentage), scope, FormatRupiah(spent), FormatRupiah(b.Amount.Amount)),
			Spent:      spent,
			Limit:      b.Amount.Amount,
			Percentage: percentage,
			DaysLeft:   daysLeft,
		})
	}
	if percentage >= 100 {
		overage := spent - b.Amount.Amount
		alerts = append(alerts, BudgetAlert{
			BudgetID:   b.ID,
			Month:      monthKey,
			Tier:       TierExceeded,
			Title:      "Budget Exceeded!",
			Message:    fmt.Sprintf("The %s budget is exceeded by %s (%s of %s).", scope, FormatRupiah(overage), FormatRupiah(spent), FormatRupiah(b.Amount.Amount)),
			Spent:      spent,
			Limit:      b.Amount.Amount,
			Percentage: percentage,
			DaysLeft:   daysLeft,
		})
	}
	if percentage > 0 && percentage < tipThreshold && daysLeft > 0 && daysLeft <= tipDaysLeft {
		remaining := b.Amount.Amount - spent
		alerts = append(alerts, BudgetAlert{
			BudgetID:   b.ID,
			Month:      monthKey,
			Tier:       TierTip,
			Title:      "Budget Tip",
			Message:    fmt.Sprintf("Remaining %s budget: %s (%d days left).", scope, FormatRupiah(remaining), daysLeft),
			Spent:      spent,
			Limit:      b.Amount.Amount,
			Percentage: percentage,
			DaysLeft:   daysLeft,
		})
	}
	return alerts
}
