package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"duit/internal/auth"
	"duit/internal/export"
	"duit/internal/middleware/ratelimit"
	"duit/internal/middleware/security"
	"duit/internal/middleware/trace"
	"duit/internal/services"
	"duit/internal/storage"
)

// Deps carries everything the server needs. Sheets may be nil when no
// spreadsheet is configured.
type Deps struct {
	Storage      *storage.SQLiteRepository
	Auth         *auth.Service
	Transactions *services.TransactionService
	Goals        *services.GoalService
	Analytics    *services.Analytics
	Notifier     *services.Notifier
	BudgetAlerts *services.BudgetAlerter
	Advisor      *services.Advisor
	Backupper    *services.Backupper
	CSV          *export.CSVExporter
	Sheets       *export.SheetsExporter
}

// Server is the JSON API server.
type Server struct {
	http.Server

	deps         Deps
	rateLimiter  *ratelimit.Limiter
	ipResolver   *security.Resolver
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run
// server listening on addr.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		deps:        deps,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		ipResolver:  security.NewResolver(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	api := http.NewServeMux()

	api.HandleFunc("GET /api/transactions", s.handleListTransactions)
	api.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	api.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api.HandleFunc("GET /api/categories", s.handleListCategories)
	api.HandleFunc("POST /api/categories", s.handleCreateCategory)
	api.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	api.HandleFunc("GET /api/goals", s.handleListGoals)
	api.HandleFunc("POST /api/goals", s.handleCreateGoal)
	api.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	api.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	api.HandleFunc("POST /api/goals/{id}/funds", s.handleAddGoalFunds)

	api.HandleFunc("GET /api/budgets", s.handleListBudgets)
	api.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	api.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)
	api.HandleFunc("GET /api/budgets/alerts", s.handleBudgetAlerts)

	api.HandleFunc("GET /api/analytics/summary", s.handleAnalyticsSummary)
	api.HandleFunc("GET /api/analytics/categories", s.handleAnalyticsCategories)
	api.HandleFunc("GET /api/analytics/trend", s.handleAnalyticsTrend)
	api.HandleFunc("GET /api/analytics/daily", s.handleAnalyticsDaily)
	api.HandleFunc("GET /api/analytics/streak", s.handleAnalyticsStreak)
	api.HandleFunc("GET /api/analytics/health", s.handleAnalyticsHealth)

	api.HandleFunc("GET /api/notifications", s.handleListNotifications)
	api.HandleFunc("POST /api/notifications/check", s.handleNotificationCheck)
	api.HandleFunc("POST /api/notifications/{id}/read", s.handleMarkNotificationRead)
	api.HandleFunc("POST /api/notifications/read-all", s.handleMarkAllNotificationsRead)

	api.HandleFunc("POST /api/ai/chat", s.handleChat)
	api.HandleFunc("POST /api/backup/restore", s.handleBackupRestore)
	api.HandleFunc("GET /api/export/transactions", s.handleExportTransactions)

	// Session-authenticated API surface, rate limited on writes.
	mux.Handle("/api/", deps.Auth.Middleware(s.limitWrites(api)))

	// The backup trigger authenticates with the cron shared secret, not
	// a session.
	mux.Handle("POST /api/backup/daily", deps.Auth.CronMiddleware(http.HandlerFunc(s.handleBackupDaily)))
	mux.Handle("GET /api/backup/history", deps.Auth.CronMiddleware(http.HandlerFunc(s.handleBackupHistory)))

	tracer := trace.NewMiddleware(s.ipResolver.ExtractClientIP)
	handler := security.Headers(security.DefaultHeadersConfig())(tracer.Middleware(mux))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// limitWrites applies the rate limiter to mutating methods only.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.ipResolver.ExtractClientIP)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.deps.Storage.ListProfiles(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// userID pulls the authenticated user from the request context. The
// auth middleware guarantees presence on /api routes.
func userID(r *http.Request) int64 {
	id, _ := auth.UserID(r.Context())
	return id
}
