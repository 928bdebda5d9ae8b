package core

import (
	"math"
	"sort"
	"time"
)

// UncategorizedLabel is the bucket name for transactions without a category.
const UncategorizedLabel = "Uncategorized"

type (
	// Totals is income and expense summed over a date range.
	Totals struct {
		Income  int64
		Expense int64
	}

	// CategoryAmount is an amount aggregated under a category name.
	CategoryAmount struct {
		Name  string
		Value int64
	}

	// MonthPoint is one calendar month of a trend series.
	MonthPoint struct {
		Label   string // "Jan 2026"
		Year    int
		Month   time.Month
		Income  int64
		Expense int64
	}

	// DayPoint is one calendar day of the daily expense series.
	DayPoint struct {
		Label   string // abbreviated weekday
		Date    time.Time
		Expense int64
	}

	// Streak reports consecutive-day transaction activity.
	Streak struct {
		Current int
		Longest int
	}

	// Comparison pairs the reference month's totals against the previous
	// month's, with percent deltas.
	Comparison struct {
		ThisMonth     Totals
		LastMonth     Totals
		IncomeChange  float64
		ExpenseChange float64
	}
)

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// MonthBounds returns the first and last instant of t's calendar month.
func MonthBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = EndOfDay(start.AddDate(0, 1, -1))
	return start, end
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

// TotalsByType sums transaction amounts with date in [from, to],
// partitioned by type. Both bounds are inclusive: from is widened to the
// start of its day and to is widened to the end of its day.
func TotalsByType(txs []Transaction, from, to time.Time) Totals {
	lo, hi := StartOfDay(from), EndOfDay(to)
	var t Totals
	for _, tx := range txs {
		if !inRange(tx.Date, lo, hi) {
			continue
		}
		switch tx.Type {
		case Income:
			t.Income += tx.Amount.Amount
		case Expense:
			t.Expense += tx.Amount.Amount
		}
	}
	return t
}

// PercentChange returns the relative change from previous to current in
// percent. When previous is zero the result is 0 rather than undefined:
// a deliberate policy choice inherited from the product, which conflates
// "no prior data" with "no change".
func PercentChange(current, previous int64) float64 {
	if previous <= 0 {
		return 0
	}
	return (float64(current-previous) / float64(previous)) * 100
}

// GroupByCategory buckets transactions of the given type by category
// name, summing amounts. Transactions without a category fall into the
// UncategorizedLabel bucket. Buckets are returned sorted descending by
// value; equal values keep first-encountered order.
func GroupByCategory(txs []Transaction, typ TransactionType) []CategoryAmount {
	idx := make(map[string]int)
	var buckets []CategoryAmount
	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		name := UncategorizedLabel
		if tx.Category != nil && tx.Category.Name != "" {
			name = tx.Category.Name
		}
		i, ok := idx[name]
		if !ok {
			i = len(buckets)
			idx[name] = i
			buckets = append(buckets, CategoryAmount{Name: name})
		}
		buckets[i].Value += tx.Amount.Amount
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Value > buckets[j].Value
	})
	return buckets
}

// MonthlyTrend computes per-month totals for the trailing monthsBack
// calendar months ending at ref's month, oldest first.
func MonthlyTrend(txs []Transaction, ref time.Time, monthsBack int) []MonthPoint {
	if monthsBack <= 0 {
		monthsBack = 6
	}
	points := make([]MonthPoint, 0, monthsBack)
	// Step from the first of the month: AddDate on a day the target
	// month lacks (Mar 31 minus one month) overflows into the next one.
	anchor := firstOfMonth(ref)
	for i := monthsBack - 1; i >= 0; i-- {
		start, end := MonthBounds(anchor.AddDate(0, -i, 0))
		t := TotalsByType(txs, start, end)
		points = append(points, MonthPoint{
			Label:   start.Format("Jan 2006"),
			Year:    start.Year(),
			Month:   start.Month(),
			Income:  t.Income,
			Expense: t.Expense,
		})
	}
	return points
}

// DailyTrend returns one expense bucket per calendar day for the last
// seven days of [from, to], oldest first. Days without transactions
// report zero.
func DailyTrend(txs []Transaction, from, to time.Time) []DayPoint {
	lo, hi := StartOfDay(from), StartOfDay(to)
	if hi.Before(lo) {
		return nil
	}
	days := int(hi.Sub(lo).Hours()/24) + 1
	if days > 7 {
		lo = hi.AddDate(0, 0, -6)
		days = 7
	}
	points := make([]DayPoint, days)
	for i := range points {
		d := lo.AddDate(0, 0, i)
		points[i] = DayPoint{Label: d.Format("Mon"), Date: d}
	}
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		d := StartOfDay(tx.Date)
		if d.Before(lo) || d.After(hi) {
			continue
		}
		i := int(d.Sub(lo).Hours() / 24)
		points[i].Expense += tx.Amount.Amount
	}
	return points
}

// DailyAverage is the mean daily expense over [from, to], counting every
// day of the range including days without spending.
func DailyAverage(txs []Transaction, from, to time.Time) float64 {
	days := int(StartOfDay(to).Sub(StartOfDay(from)).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	t := TotalsByType(txs, from, to)
	return float64(t.Expense) / float64(days)
}

// ActivityStreak derives consecutive-day activity from the set of
// distinct calendar dates with at least one transaction.
//
// Current counts backward from today when today has activity, or from
// yesterday when only yesterday does (a single missing day at today does
// not break the streak). A gap of two or more days resets current to 0.
// Longest is the maximum run of consecutive dates over all history.
func ActivityStreak(txs []Transaction, today time.Time) Streak {
	if len(txs) == 0 {
		return Streak{}
	}
	// Dates are normalized to midnight UTC so day arithmetic is exact
	// regardless of the transactions' locations.
	key := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	days := make(map[time.Time]bool, len(txs))
	for _, tx := range txs {
		days[key(tx.Date)] = true
	}

	var s Streak
	start := key(today)
	if !days[start] {
		start = key(today.AddDate(0, 0, -1))
	}
	if days[start] {
		for d := start; days[d]; d = d.AddDate(0, 0, -1) {
			s.Current++
		}
	}

	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	run := 1
	s.Longest = 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > s.Longest {
			s.Longest = run
		}
	}
	return s
}

// MonthComparison compares ref's calendar month against the previous one.
func MonthComparison(txs []Transaction, ref time.Time) Comparison {
	thisStart, thisEnd := MonthBounds(ref)
	lastStart, lastEnd := MonthBounds(firstOfMonth(ref).AddDate(0, -1, 0))
	cur := TotalsByType(txs, thisStart, thisEnd)
	prev := TotalsByType(txs, lastStart, lastEnd)
	return Comparison{
		ThisMonth:     cur,
		LastMonth:     prev,
		IncomeChange:  PercentChange(cur.Income, prev.Income),
		ExpenseChange: PercentChange(cur.Expense, prev.Expense),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
