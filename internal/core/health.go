package core

import (
	"math"
	"time"
)

// ScoreWeights are the product-policy constants behind the health score.
// They are exposed as parameters so callers can tune them, but the
// defaults must stay exactly as shipped for score parity.
type ScoreWeights struct {
	// SavingsRateScale multiplies the savings-rate percentage before
	// clamping, so a 20% savings rate maps to a perfect sub-score.
	SavingsRateScale float64
	// ConsistencyTarget is the lifetime transaction count at which the
	// consistency sub-score saturates.
	ConsistencyTarget int

	SavingsRateWeight    float64
	ExpenseControlWeight float64
	BalanceWeight        float64
	ConsistencyWeight    float64
}

// DefaultScoreWeights returns the shipped scoring constants.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		SavingsRateScale:     5,
		ConsistencyTarget:    10,
		SavingsRateWeight:    0.3,
		ExpenseControlWeight: 0.3,
		BalanceWeight:        0.2,
		ConsistencyWeight:    0.2,
	}
}

// HealthScore is the composite 0-100 financial health metric with its
// four sub-scores.
type HealthScore struct {
	Total int

	SavingsRate    float64 // sub-score, 0-100
	ExpenseControl float64
	BalanceHealth  float64
	Consistency    float64

	// RawSavingsRate is the unscaled savings-rate percentage for the
	// reference month, kept for display.
	RawSavingsRate float64
	Balance        int64 // lifetime income - expense
}

// ComputeHealthScore scores the reference month's savings rate and
// expense control, lifetime balance sign and lifetime logging
// consistency, then blends them with the configured weights.
func ComputeHealthScore(txs []Transaction, refMonth time.Time, w ScoreWeights) HealthScore {
	start, end := MonthBounds(refMonth)
	month := TotalsByType(txs, start, end)

	var lifetime Totals
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			lifetime.Income += tx.Amount.Amount
		case Expense:
			lifetime.Expense += tx.Amount.Amount
		}
	}

	var hs HealthScore
	hs.Balance = lifetime.Income - lifetime.Expense

	if month.Income > 0 {
		hs.RawSavingsRate = float64(month.Income-month.Expense) / float64(month.Income) * 100
		hs.SavingsRate = clamp(hs.RawSavingsRate*w.SavingsRateScale, 0, 100)
		hs.ExpenseControl = clamp(100-float64(month.Expense)/float64(month.Income)*100, 0, 100)
	}

	// Balance health is deliberately binary, not graduated.
	if hs.Balance > 0 {
		hs.BalanceHealth = 100
	}

	hs.Consistency = clamp(float64(len(txs))/float64(w.ConsistencyTarget)*100, 0, 100)

	hs.Total = int(math.Round(
		hs.SavingsRate*w.SavingsRateWeight +
			hs.ExpenseControl*w.ExpenseControlWeight +
			hs.BalanceHealth*w.BalanceWeight +
			hs.Consistency*w.ConsistencyWeight))
	return hs
}
