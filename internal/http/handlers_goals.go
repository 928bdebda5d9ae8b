package http

import (
	"net/http"
	"time"

	"duit/internal/core"
)

type goalRequest struct {
	Name          string     `json:"name"`
	TargetAmount  amountJSON `json:"target_amount"`
	CurrentAmount amountJSON `json:"current_amount"`
	Deadline      *string    `json:"deadline"`
	Color         string     `json:"color"`
}

func (req goalRequest) toCore(userID int64) (core.SavingsGoal, error) {
	g := core.SavingsGoal{
		UserID:        userID,
		Name:          sanitizeInput(req.Name),
		TargetAmount:  core.Money{Amount: req.TargetAmount.Value},
		CurrentAmount: core.Money{Amount: req.CurrentAmount.Value},
		Color:         sanitizeInput(req.Color),
	}
	if req.Deadline != nil && *req.Deadline != "" {
		d, err := time.Parse("2006-01-02", *req.Deadline)
		if err != nil {
			return core.SavingsGoal{}, core.ErrInvalidDate
		}
		g.Deadline = &d
	}
	return g, nil
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.deps.Goals.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalJSON(g))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	g, err := req.toCore(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.deps.Goals.Create(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(toGoalJSON(created)).Write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	g, err := req.toCore(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	g.ID = id

	updated, err := s.deps.Goals.Update(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(toGoalJSON(updated)).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.deps.Goals.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddGoalFunds(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	var req struct {
		Amount amountJSON `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	goal, err := s.deps.Goals.AddFunds(r.Context(), userID(r), id, core.Money{Amount: req.Amount.Value})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(toGoalJSON(goal)).Write(w)
}
