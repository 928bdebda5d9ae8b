package http

import (
	"net/http"
	"time"

	"duit/internal/core"
)

type monthPointJSON struct {
	Label   string `json:"label"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

type dayPointJSON struct {
	Label   string `json:"label"`
	Date    string `json:"date"`
	Expense int64  `json:"expense"`
}

type categoryAmountJSON struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type streakJSON struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

type healthJSON struct {
	Total          int     `json:"total"`
	SavingsRate    float64 `json:"savings_rate"`
	ExpenseControl float64 `json:"expense_control"`
	BalanceHealth  float64 `json:"balance_health"`
	Consistency    float64 `json:"consistency"`
	RawSavingsRate float64 `json:"raw_savings_rate"`
	Balance        int64   `json:"balance"`
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Analytics.Summary(r.Context(), userID(r), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(summary).Write(w)
}

func (s *Server) handleAnalyticsCategories(w http.ResponseWriter, r *http.Request) {
	typ := core.Expense
	if v := r.URL.Query().Get("type"); v != "" {
		t := core.TransactionType(v)
		if !t.Valid() {
			BadRequestError("invalid type").Write(w)
			return
		}
		typ = t
	}

	buckets, err := s.deps.Analytics.Categories(r.Context(), userID(r), typ, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryAmountJSON, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, categoryAmountJSON{Name: b.Name, Value: b.Value})
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleAnalyticsTrend(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 6)
	points, err := s.deps.Analytics.Trend(r.Context(), userID(r), time.Now(), months)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]monthPointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, monthPointJSON{Label: p.Label, Income: p.Income, Expense: p.Expense})
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleAnalyticsDaily(w http.ResponseWriter, r *http.Request) {
	points, err := s.deps.Analytics.Daily(r.Context(), userID(r), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]dayPointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, dayPointJSON{
			Label:   p.Label,
			Date:    p.Date.Format("2006-01-02"),
			Expense: p.Expense,
		})
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleAnalyticsStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.deps.Analytics.Streak(r.Context(), userID(r), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(streakJSON{Current: streak.Current, Longest: streak.Longest}).Write(w)
}

func (s *Server) handleAnalyticsHealth(w http.ResponseWriter, r *http.Request) {
	h, err := s.deps.Analytics.Health(r.Context(), userID(r), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(healthJSON{
		Total:          h.Total,
		SavingsRate:    h.SavingsRate,
		ExpenseControl: h.ExpenseControl,
		BalanceHealth:  h.BalanceHealth,
		Consistency:    h.Consistency,
		RawSavingsRate: h.RawSavingsRate,
		Balance:        h.Balance,
	}).Write(w)
}
