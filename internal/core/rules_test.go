package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftTypes(r RuleResult) []NotificationType {
	types := make([]NotificationType, 0, len(r.Drafts))
	for _, d := range r.Drafts {
		types = append(types, d.Type)
	}
	return types
}

func TestEvaluateRulesLowBalance(t *testing.T) {
	now := day(2026, 8, 29)

	res := EvaluateRules(RuleInput{Now: now, StoredBalance: 499_999, HasBalance: true})
	require.Len(t, res.Drafts, 1)
	assert.Equal(t, NotifLowBalance, res.Drafts[0].Type)
	assert.Equal(t, PriorityHigh, res.Drafts[0].Priority)
	assert.Contains(t, res.Drafts[0].Message, "Rp 499.999")

	// At the threshold the rule stays quiet.
	res = EvaluateRules(RuleInput{Now: now, StoredBalance: 500_000, HasBalance: true})
	assert.Empty(t, res.Drafts)

	// No balance row means the rule cannot be evaluated.
	res = EvaluateRules(RuleInput{Now: now, StoredBalance: 0, HasBalance: false})
	assert.Empty(t, res.Drafts)
}

func TestEvaluateRulesOverspending(t *testing.T) {
	now := day(2026, 8, 29)

	res := EvaluateRules(RuleInput{
		Now: now,
		MonthTransactions: []Transaction{
			mkTx(Income, 1_000_000, day(2026, 8, 1)),
			mkTx(Expense, 850_000, day(2026, 8, 15)),
		},
	})
	require.Len(t, res.Drafts, 1)
	assert.Equal(t, NotifOverspending, res.Drafts[0].Type)
	assert.Equal(t, PriorityMedium, res.Drafts[0].Priority)
	assert.Contains(t, res.Drafts[0].Message, "85%")

	// Exactly 80% does not fire.
	res = EvaluateRules(RuleInput{
		Now: now,
		MonthTransactions: []Transaction{
			mkTx(Income, 1_000_000, day(2026, 8, 1)),
			mkTx(Expense, 800_000, day(2026, 8, 15)),
		},
	})
	assert.Empty(t, res.Drafts)

	// Zero income skips the rule instead of firing on any expense.
	res = EvaluateRules(RuleInput{
		Now: now,
		MonthTransactions: []Transaction{
			mkTx(Expense, 850_000, day(2026, 8, 15)),
		},
	})
	assert.NotContains(t, draftTypes(res), NotifOverspending)
}

func TestEvaluateRulesExpenseSpike(t *testing.T) {
	now := day(2026, 8, 29)

	res := EvaluateRules(RuleInput{
		Now: now,
		MonthTransactions: []Transaction{
			mkTx(Expense, 100_000, now.AddDate(0, 0, -10)), // prior week
			mkTx(Expense, 160_000, now.AddDate(0, 0, -2)),  // trailing week
		},
	})
	require.Contains(t, draftTypes(res), NotifExpenseSpike)
	for _, d := range res.Drafts {
		if d.Type == NotifExpenseSpike {
			assert.Contains(t, d.Message, "60%")
			assert.Equal(t, PriorityMedium, d.Priority)
		}
	}

	// Exactly 1.5x does not fire.
	res = EvaluateRules(RuleInput{
		Now: now,
		MonthTransactions: []Transaction{
			mkTx(Expense, 100_000, now.AddDate(0, 0, -10)),
			mkTx(Expense, 150_000, now.AddDate(0, 0, -2)),
		},
	})
	assert.NotContains(t, draftTypes(res), NotifExpenseSpike)

	// An empty prior week skips the rule.
	res = EvaluateRules(RuleInput{
		Now: now,
		MonthTransactions: []Transaction{
			mkTx(Expense, 999_000, now.AddDate(0, 0, -2)),
		},
	})
	assert.NotContains(t, draftTypes(res), NotifExpenseSpike)
}

func TestEvaluateRulesGoalAchieved(t *testing.T) {
	now := day(2026, 8, 29)
	goals := []SavingsGoal{
		{ID: 1, Name: "Laptop", TargetAmount: Money{Amount: 1_000_000}, CurrentAmount: Money{Amount: 1_050_000}},
		{ID: 2, Name: "Holiday", TargetAmount: Money{Amount: 2_000_000}, CurrentAmount: Money{Amount: 500_000}},
		{ID: 3, Name: "Done", TargetAmount: Money{Amount: 100}, CurrentAmount: Money{Amount: 100}, IsCompleted: true},
	}
	res := EvaluateRules(RuleInput{Now: now, Goals: goals})
	require.Len(t, res.Drafts, 1)
	assert.Equal(t, NotifGoalAchieved, res.Drafts[0].Type)
	assert.Equal(t, PriorityHigh, res.Drafts[0].Priority)
	assert.Contains(t, res.Drafts[0].Message, "Laptop")
	assert.Equal(t, []int64{1}, res.CompletedGoalIDs)
}

func TestEvaluateRulesIndependent(t *testing.T) {
	now := day(2026, 8, 29)
	res := EvaluateRules(RuleInput{
		Now:           now,
		StoredBalance: 100_000,
		HasBalance:    true,
		MonthTransactions: []Transaction{
			mkTx(Income, 1_000_000, day(2026, 8, 1)),
			mkTx(Expense, 100_000, now.AddDate(0, 0, -10)),
			mkTx(Expense, 800_000, now.AddDate(0, 0, -2)),
		},
		Goals: []SavingsGoal{
			{ID: 7, Name: "Bike", TargetAmount: Money{Amount: 500}, CurrentAmount: Money{Amount: 500}},
		},
	})
	types := draftTypes(res)
	assert.ElementsMatch(t, []NotificationType{
		NotifLowBalance, NotifOverspending, NotifExpenseSpike, NotifGoalAchieved,
	}, types)
}

func TestWeeklyExpenseWindows(t *testing.T) {
	now := day(2026, 8, 29)
	txs := []Transaction{
		mkTx(Expense, 100, now.AddDate(0, 0, -1)),
		mkTx(Expense, 200, now.AddDate(0, 0, -6)),
		mkTx(Expense, 400, now.AddDate(0, 0, -8)),
		mkTx(Expense, 800, now.AddDate(0, 0, -13)),
		mkTx(Expense, 1600, now.AddDate(0, 0, -20)), // outside both windows
		mkTx(Income, 3200, now.AddDate(0, 0, -1)),   // wrong type
	}
	last, prev := weeklyExpenseWindows(txs, now)
	assert.Equal(t, int64(300), last)
	assert.Equal(t, int64(1200), prev)
}
