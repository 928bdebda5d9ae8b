package core

import (
	"fmt"
	"math"
	"time"
)

// Thresholds for the notification rules. Product-policy constants.
const (
	// LowBalanceThreshold is whole rupiah.
	LowBalanceThreshold int64 = 500_000
	// OverspendRatio fires the overspending rule when month expenses
	// exceed this fraction of month income.
	OverspendRatio = 0.8
	// SpikeRatio fires the expense-spike rule when the trailing week's
	// spending exceeds this multiple of the prior week's.
	SpikeRatio = 1.5
)

// RuleInput is everything the notification rule engine reads. The caller
// materializes it; evaluation itself performs no I/O.
type RuleInput struct {
	Now time.Time
	// MonthTransactions are the user's transactions for Now's calendar
	// month.
	MonthTransactions []Transaction
	// StoredBalance is the user's stored balance figure in whole rupiah.
	StoredBalance int64
	// HasBalance distinguishes "balance of zero" from "no balance row".
	HasBalance bool
	Goals      []SavingsGoal
}

// Draft is a notification-insert request. Persistence and the
// one-unread-per-type dedup happen at the storage boundary.
type Draft struct {
	Type     NotificationType
	Title    string
	Message  string
	Priority Priority
}

// RuleResult carries the drafts plus the goal-completion side effects
// the caller must apply.
type RuleResult struct {
	Drafts []Draft
	// CompletedGoalIDs are goals whose current amount reached target but
	// were not yet marked completed. The caller persists the flag flip.
	CompletedGoalIDs []int64
}

// EvaluateRules runs the fixed rule list against the input. Rules are
// independent; any subset may fire in one pass. Rules whose denominator
// is zero are skipped as "cannot evaluate", never treated as true.
func EvaluateRules(in RuleInput) RuleResult {
	var res RuleResult
	month := TotalsByType(in.MonthTransactions, firstOfMonth(in.Now), in.Now)

	if in.HasBalance && in.StoredBalance < LowBalanceThreshold {
		res.Drafts = append(res.Drafts, Draft{
			Type:     NotifLowBalance,
			Title:    "Low Balance",
			Message:  fmt.Sprintf("Your current balance is %s. Consider reducing spending.", FormatRupiah(in.StoredBalance)),
			Priority: PriorityHigh,
		})
	}

	// Skipped when month income is zero: the ratio cannot be evaluated.
	if month.Income > 0 && float64(month.Expense) > float64(month.Income)*OverspendRatio {
		pct := int(math.Round(float64(month.Expense) / float64(month.Income) * 100))
		res.Drafts = append(res.Drafts, Draft{
			Type:     NotifOverspending,
			Title:    "High Spending",
			Message:  fmt.Sprintf("This month's expenses (%s) reached %d%% of income.", FormatRupiah(month.Expense), pct),
			Priority: PriorityMedium,
		})
	}

	lastWeek, prevWeek := weeklyExpenseWindows(in.MonthTransactions, in.Now)
	// Skipped when the prior week had no spending.
	if prevWeek > 0 && float64(lastWeek) > float64(prevWeek)*SpikeRatio {
		pct := int(math.Round(float64(lastWeek-prevWeek) / float64(prevWeek) * 100))
		res.Drafts = append(res.Drafts, Draft{
			Type:     NotifExpenseSpike,
			Title:    "Expense Spike",
			Message:  fmt.Sprintf("This week's spending is up %d%% compared to last week.", pct),
			Priority: PriorityMedium,
		})
	}

	for _, g := range in.Goals {
		if g.CurrentAmount.Amount >= g.TargetAmount.Amount && !g.IsCompleted {
			res.CompletedGoalIDs = append(res.CompletedGoalIDs, g.ID)
			res.Drafts = append(res.Drafts, Draft{
				Type:     NotifGoalAchieved,
				Title:    "Goal Achieved!",
				Message:  fmt.Sprintf("Congratulations! You reached your savings goal %q of %s.", g.Name, FormatRupiah(g.TargetAmount.Amount)),
				Priority: PriorityHigh,
			})
		}
	}

	return res
}

// weeklyExpenseWindows sums expenses over [now-7d, now) and [now-14d, now-7d).
func weeklyExpenseWindows(txs []Transaction, now time.Time) (last, prev int64) {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		switch {
		case !tx.Date.Before(weekAgo) && !tx.Date.After(now):
			last += tx.Amount.Amount
		case !tx.Date.Before(twoWeeksAgo) && tx.Date.Before(weekAgo):
			prev += tx.Amount.Amount
		}
	}
	return last, prev
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
