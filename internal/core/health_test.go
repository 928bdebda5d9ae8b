package core

import (
	"testing"
	"time"
)

func TestComputeHealthScore(t *testing.T) {
	ref := day(2026, 8, 29)
	w := DefaultScoreWeights()

	t.Run("worked month", func(t *testing.T) {
		// 20% savings rate saturates the savings sub-score.
		txs := []Transaction{
			mkTx(Income, 1_000_000, day(2026, 8, 1)),
			mkTx(Expense, 800_000, day(2026, 8, 15)),
		}
		got := ComputeHealthScore(txs, ref, w)
		if got.SavingsRate != 100 {
			t.Errorf("savings sub-score = %v, want 100", got.SavingsRate)
		}
		if got.ExpenseControl != 20 {
			t.Errorf("expense control = %v, want 20", got.ExpenseControl)
		}
		if got.BalanceHealth != 100 {
			t.Errorf("balance health = %v, want 100", got.BalanceHealth)
		}
		if got.Consistency != 20 {
			t.Errorf("consistency = %v, want 20", got.Consistency)
		}
		// 100*.3 + 20*.3 + 100*.2 + 20*.2
		if got.Total != 60 {
			t.Errorf("total = %d, want 60", got.Total)
		}
		if got.RawSavingsRate != 20 {
			t.Errorf("raw savings rate = %v, want 20", got.RawSavingsRate)
		}
	})

	t.Run("no income month", func(t *testing.T) {
		txs := []Transaction{
			mkTx(Expense, 100_000, day(2026, 8, 10)),
		}
		got := ComputeHealthScore(txs, ref, w)
		if got.SavingsRate != 0 || got.ExpenseControl != 0 {
			t.Errorf("income-dependent sub-scores should be 0: %+v", got)
		}
		if got.BalanceHealth != 0 {
			t.Errorf("negative balance should score 0, got %v", got.BalanceHealth)
		}
	})

	t.Run("overspending clamps to zero", func(t *testing.T) {
		txs := []Transaction{
			mkTx(Income, 100_000, day(2026, 8, 1)),
			mkTx(Expense, 250_000, day(2026, 8, 2)),
		}
		got := ComputeHealthScore(txs, ref, w)
		if got.SavingsRate != 0 {
			t.Errorf("savings sub-score = %v, want 0", got.SavingsRate)
		}
		if got.ExpenseControl != 0 {
			t.Errorf("expense control = %v, want 0", got.ExpenseControl)
		}
	})

	t.Run("consistency saturates", func(t *testing.T) {
		var txs []Transaction
		for i := 0; i < 15; i++ {
			txs = append(txs, mkTx(Income, 1_000, day(2026, 8, 1).Add(time.Duration(i)*time.Hour)))
		}
		got := ComputeHealthScore(txs, ref, w)
		if got.Consistency != 100 {
			t.Errorf("consistency = %v, want 100", got.Consistency)
		}
	})
}
