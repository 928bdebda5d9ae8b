package core

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func mkTx(typ TransactionType, amount int64, date time.Time) Transaction {
	return Transaction{Type: typ, Amount: Money{Amount: amount}, Date: date}
}

func catTx(typ TransactionType, amount int64, date time.Time, catID int64, catName string) Transaction {
	return Transaction{
		Type:       typ,
		Amount:     Money{Amount: amount},
		Date:       date,
		CategoryID: &catID,
		Category:   &Category{ID: catID, Name: catName, Type: typ},
	}
}

func TestTotalsByType(t *testing.T) {
	txs := []Transaction{
		mkTx(Income, 1_000_000, day(2026, 8, 1)),
		mkTx(Expense, 300_000, day(2026, 8, 10)),
		mkTx(Expense, 200_000, day(2026, 8, 31)),
		mkTx(Expense, 999_999, day(2026, 7, 31)), // out of range
		mkTx(Income, 999_999, day(2026, 9, 1)),   // out of range
	}
	got := TotalsByType(txs, day(2026, 8, 1), day(2026, 8, 31))
	if got.Income != 1_000_000 || got.Expense != 500_000 {
		t.Fatalf("got %+v", got)
	}
}

// Splitting a range at any day boundary must not change the total.
func TestTotalsByTypeAdditive(t *testing.T) {
	txs := []Transaction{
		mkTx(Expense, 100, day(2026, 8, 1)),
		mkTx(Expense, 200, day(2026, 8, 10)),
		mkTx(Expense, 400, day(2026, 8, 15)),
		mkTx(Expense, 800, day(2026, 8, 16)),
		mkTx(Expense, 1600, day(2026, 8, 31)),
	}
	whole := TotalsByType(txs, day(2026, 8, 1), day(2026, 8, 31))
	first := TotalsByType(txs, day(2026, 8, 1), day(2026, 8, 15))
	second := TotalsByType(txs, day(2026, 8, 16), day(2026, 8, 31))
	if whole.Expense != first.Expense+second.Expense {
		t.Fatalf("whole %d != %d + %d", whole.Expense, first.Expense, second.Expense)
	}
}

func TestPercentChange(t *testing.T) {
	cases := []struct {
		current, previous int64
		want              float64
	}{
		{150, 100, 50},
		{50, 100, -50},
		{100, 100, 0},
		// No prior data reports no change, never a division error.
		{500, 0, 0},
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := PercentChange(tc.current, tc.previous); got != tc.want {
			t.Errorf("PercentChange(%d, %d) = %v, want %v", tc.current, tc.previous, got, tc.want)
		}
	}
}

func TestGroupByCategory(t *testing.T) {
	txs := []Transaction{
		catTx(Expense, 100_000, day(2026, 8, 1), 1, "Food"),
		catTx(Expense, 50_000, day(2026, 8, 2), 2, "Transport"),
		catTx(Expense, 200_000, day(2026, 8, 3), 1, "Food"),
		mkTx(Expense, 75_000, day(2026, 8, 4)), // no category
		catTx(Income, 999, day(2026, 8, 5), 3, "Salary"),
	}
	got := GroupByCategory(txs, Expense)
	if len(got) != 3 {
		t.Fatalf("expected 3 buckets, got %d: %+v", len(got), got)
	}
	if got[0].Name != "Food" || got[0].Value != 300_000 {
		t.Errorf("largest bucket = %+v", got[0])
	}
	if got[2].Name != UncategorizedLabel && got[1].Name != UncategorizedLabel {
		t.Error("missing uncategorized bucket")
	}
	// Bucket sums must equal the filtered total, no amount lost or doubled.
	var sum int64
	for _, b := range got {
		sum += b.Value
	}
	if sum != 425_000 {
		t.Errorf("bucket sum %d, want 425000", sum)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Value > got[i-1].Value {
			t.Errorf("buckets not sorted descending: %+v", got)
		}
	}
}

func TestMonthlyTrend(t *testing.T) {
	txs := []Transaction{
		mkTx(Income, 1_000, day(2026, 6, 15)),
		mkTx(Expense, 500, day(2026, 7, 1)),
		mkTx(Expense, 700, day(2026, 8, 20)),
	}
	got := MonthlyTrend(txs, day(2026, 8, 29), 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	if got[0].Label != "Jun 2026" || got[0].Income != 1_000 {
		t.Errorf("oldest point = %+v", got[0])
	}
	if got[2].Label != "Aug 2026" || got[2].Expense != 700 {
		t.Errorf("newest point = %+v", got[2])
	}
}

func TestMonthlyTrendMonthEndRef(t *testing.T) {
	// A day-31 reference must not skip short months while stepping back.
	txs := []Transaction{
		mkTx(Expense, 100, day(2025, 10, 5)),
		mkTx(Expense, 200, day(2026, 2, 15)),
	}
	got := MonthlyTrend(txs, day(2026, 3, 31), 6)
	if len(got) != 6 {
		t.Fatalf("expected 6 points, got %d", len(got))
	}
	wantLabels := []string{"Oct 2025", "Nov 2025", "Dec 2025", "Jan 2026", "Feb 2026", "Mar 2026"}
	for i, want := range wantLabels {
		if got[i].Label != want {
			t.Fatalf("labels = %v", got)
		}
	}
	if got[0].Expense != 100 {
		t.Errorf("Oct expense = %d, want 100", got[0].Expense)
	}
	if got[4].Expense != 200 {
		t.Errorf("Feb expense = %d, want 200", got[4].Expense)
	}
}

func TestDailyTrend(t *testing.T) {
	from, to := day(2026, 8, 23), day(2026, 8, 29)
	txs := []Transaction{
		mkTx(Expense, 100, day(2026, 8, 23)),
		mkTx(Expense, 200, day(2026, 8, 29)),
		mkTx(Expense, 999, day(2026, 8, 22)), // before range
	}
	got := DailyTrend(txs, from, to)
	if len(got) != 7 {
		t.Fatalf("expected 7 points, got %d", len(got))
	}
	if got[0].Expense != 100 || got[6].Expense != 200 {
		t.Errorf("edge points = %+v, %+v", got[0], got[6])
	}
	for i := 1; i < 6; i++ {
		if got[i].Expense != 0 {
			t.Errorf("day %d should be zero-filled, got %d", i, got[i].Expense)
		}
	}
}

func TestDailyAverage(t *testing.T) {
	txs := []Transaction{
		mkTx(Expense, 700, day(2026, 8, 23)),
	}
	got := DailyAverage(txs, day(2026, 8, 23), day(2026, 8, 29))
	if got != 100 {
		t.Fatalf("got %v, want 100", got)
	}
}

func TestActivityStreak(t *testing.T) {
	today := day(2026, 8, 29)
	cases := []struct {
		name    string
		offsets []int // days before today with activity
		current int
		longest int
	}{
		{"empty", nil, 0, 0},
		{"today and two before", []int{0, 1, 2}, 3, 3},
		{"only yesterday", []int{1}, 1, 1},
		{"starts yesterday", []int{1, 2, 3}, 3, 3},
		{"gap before today", []int{2}, 0, 1},
		{"broken run", []int{0, 1, 4, 5, 6, 7}, 2, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var txs []Transaction
			for _, off := range tc.offsets {
				txs = append(txs, mkTx(Expense, 100, today.AddDate(0, 0, -off)))
			}
			got := ActivityStreak(txs, today)
			if got.Current != tc.current || got.Longest != tc.longest {
				t.Errorf("got %+v, want current=%d longest=%d", got, tc.current, tc.longest)
			}
		})
	}
}

func TestMonthComparison(t *testing.T) {
	txs := []Transaction{
		mkTx(Expense, 100, day(2026, 7, 10)),
		mkTx(Expense, 150, day(2026, 8, 10)),
		mkTx(Income, 1_000, day(2026, 8, 1)),
	}
	got := MonthComparison(txs, day(2026, 8, 29))
	if got.ThisMonth.Expense != 150 || got.LastMonth.Expense != 100 {
		t.Fatalf("totals wrong: %+v", got)
	}
	if got.ExpenseChange != 50 {
		t.Errorf("expense change = %v, want 50", got.ExpenseChange)
	}
	// Last month had no income, so the delta reports zero.
	if got.IncomeChange != 0 {
		t.Errorf("income change = %v, want 0", got.IncomeChange)
	}
}

func TestMonthComparisonMonthEndRef(t *testing.T) {
	// Mar 31 minus one month must land in February, not overflow into
	// March and compare the month against itself.
	txs := []Transaction{
		mkTx(Income, 2_000, day(2026, 2, 14)),
		mkTx(Income, 1_000, day(2026, 3, 5)),
	}
	got := MonthComparison(txs, day(2026, 3, 31))
	if got.LastMonth.Income != 2_000 {
		t.Fatalf("last month income = %d, want 2000", got.LastMonth.Income)
	}
	if got.ThisMonth.Income != 1_000 {
		t.Fatalf("this month income = %d, want 1000", got.ThisMonth.Income)
	}
	if got.IncomeChange != -50 {
		t.Errorf("income change = %v, want -50", got.IncomeChange)
	}
}
