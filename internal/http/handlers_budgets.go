package http

import (
	"net/http"
	"time"

	"duit/internal/core"
)

type budgetRequest struct {
	CategoryID *int64     `json:"category_id"`
	Amount     amountJSON `json:"amount"`
	Period     string     `json:"period"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.deps.Storage.ListBudgets(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetJSON(b))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	period := req.Period
	if period == "" {
		period = core.PeriodMonthly
	}
	b := core.Budget{
		UserID:     userID(r),
		CategoryID: req.CategoryID,
		Amount:     core.Money{Amount: req.Amount.Value},
		Period:     period,
	}
	if err := b.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.deps.Storage.CreateBudget(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(toBudgetJSON(created)).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.deps.Storage.DeleteBudget(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetAlerts evaluates every budget's tiers for the current
// month and returns only the alerts that fired for the first time.
func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	fired, err := s.deps.BudgetAlerts.Evaluate(r.Context(), userID(r), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetAlertJSON, 0, len(fired))
	for _, a := range fired {
		out = append(out, toBudgetAlertJSON(a))
	}
	NewResponse().JSON(out).Write(w)
}
