package services

import (
	"context"
	"fmt"
	"time"

	"duit/internal/cache"
	"duit/internal/core"
	"duit/internal/storage"
)

// AnalyticsSummary is the dashboard headline block.
type AnalyticsSummary struct {
	Month        core.Totals     `json:"month"`
	Balance      int64           `json:"balance"`
	Comparison   core.Comparison `json:"comparison"`
	DailyAverage float64         `json:"daily_average"`
}

// Analytics computes the dashboard aggregates. Results are cached with
// a short TTL; transaction writes become visible when entries expire.
type Analytics struct {
	storage *storage.SQLiteRepository

	summaryCache *cache.LRUCache[AnalyticsSummary]
	healthCache  *cache.LRUCache[core.HealthScore]
	streakCache  *cache.LRUCache[core.Streak]
}

func NewAnalytics(repo *storage.SQLiteRepository, ttl time.Duration, manager *cache.Manager) *Analytics {
	a := &Analytics{
		storage:      repo,
		summaryCache: cache.NewLRUCache[AnalyticsSummary](1000, ttl),
		healthCache:  cache.NewLRUCache[core.HealthScore](1000, ttl),
		streakCache:  cache.NewLRUCache[core.Streak](1000, ttl),
	}
	if manager != nil {
		manager.Register(a.summaryCache)
		manager.Register(a.healthCache)
		manager.Register(a.streakCache)
	}
	return a
}

func (a *Analytics) Summary(ctx context.Context, userID int64, now time.Time) (AnalyticsSummary, error) {
	key := cacheKey(userID, now.Format("2006-01-02"))
	if s, ok := a.summaryCache.Get(key); ok {
		return s, nil
	}

	txs, err := a.allTransactions(ctx, userID)
	if err != nil {
		return AnalyticsSummary{}, err
	}

	monthStart, monthEnd := core.MonthBounds(now)
	month := core.TotalsByType(txs, monthStart, monthEnd)

	var lifetime core.Totals
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			lifetime.Income += tx.Amount.Amount
		case core.Expense:
			lifetime.Expense += tx.Amount.Amount
		}
	}

	s := AnalyticsSummary{
		Month:        month,
		Balance:      lifetime.Income - lifetime.Expense,
		Comparison:   core.MonthComparison(txs, now),
		DailyAverage: core.DailyAverage(txs, monthStart, now),
	}
	a.summaryCache.Set(key, s)
	return s, nil
}

// Categories buckets the current month's transactions of one type.
func (a *Analytics) Categories(ctx context.Context, userID int64, typ core.TransactionType, now time.Time) ([]core.CategoryAmount, error) {
	monthStart, monthEnd := core.MonthBounds(now)
	txs, err := a.storage.ListTransactions(ctx, userID, storage.TransactionFilter{
		From: &monthStart, To: &monthEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("load month transactions: %w", err)
	}
	return core.GroupByCategory(txs, typ), nil
}

func (a *Analytics) Trend(ctx context.Context, userID int64, now time.Time, monthsBack int) ([]core.MonthPoint, error) {
	txs, err := a.allTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.MonthlyTrend(txs, now, monthsBack), nil
}

func (a *Analytics) Daily(ctx context.Context, userID int64, now time.Time) ([]core.DayPoint, error) {
	from := now.AddDate(0, 0, -6)
	txs, err := a.storage.ListTransactions(ctx, userID, storage.TransactionFilter{
		Type: core.Expense, From: &from, To: &now,
	})
	if err != nil {
		return nil, fmt.Errorf("load week transactions: %w", err)
	}
	return core.DailyTrend(txs, from, now), nil
}

func (a *Analytics) Streak(ctx context.Context, userID int64, now time.Time) (core.Streak, error) {
	key := cacheKey(userID, now.Format("2006-01-02"))
	if s, ok := a.streakCache.Get(key); ok {
		return s, nil
	}

	txs, err := a.allTransactions(ctx, userID)
	if err != nil {
		return core.Streak{}, err
	}
	s := core.ActivityStreak(txs, now)
	a.streakCache.Set(key, s)
	return s, nil
}

func (a *Analytics) Health(ctx context.Context, userID int64, now time.Time) (core.HealthScore, error) {
	key := cacheKey(userID, now.Format("2006-01"))
	if h, ok := a.healthCache.Get(key); ok {
		return h, nil
	}

	txs, err := a.allTransactions(ctx, userID)
	if err != nil {
		return core.HealthScore{}, err
	}
	h := core.ComputeHealthScore(txs, now, core.DefaultScoreWeights())
	a.healthCache.Set(key, h)
	return h, nil
}

// Invalidate drops every cached aggregate for one user. Called after
// transaction writes so dashboards refresh without waiting out the TTL.
func (a *Analytics) Invalidate(userID int64) {
	prefix := fmt.Sprintf("%d:", userID)
	a.summaryCache.DeletePrefix(prefix)
	a.healthCache.DeletePrefix(prefix)
	a.streakCache.DeletePrefix(prefix)
}

func (a *Analytics) allTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	txs, err := a.storage.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}

func cacheKey(userID int64, suffix string) string {
	return fmt.Sprintf("%d:%s", userID, suffix)
}
