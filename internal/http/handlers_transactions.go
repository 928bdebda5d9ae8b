package http

import (
	"net/http"
	"time"

	"duit/internal/core"
)

type transactionRequest struct {
	CategoryID  *int64     `json:"category_id"`
	Type        string     `json:"type"`
	Amount      amountJSON `json:"amount"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
}

func (req transactionRequest) toCore(userID int64) (core.Transaction, error) {
	tx := core.Transaction{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Type:        core.TransactionType(req.Type),
		Amount:      core.Money{Amount: req.Amount.Value},
		Description: sanitizeInput(req.Description),
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return core.Transaction{}, core.ErrInvalidDate
		}
		tx.Date = d
	} else {
		tx.Date = time.Now()
	}
	return tx, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	txs, err := s.deps.Transactions.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(toTransactionListJSON(txs)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	tx, err := req.toCore(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.deps.Transactions.Create(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(toTransactionJSON(created)).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	tx, err := req.toCore(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx.ID = id

	updated, err := s.deps.Transactions.Update(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(toTransactionJSON(updated)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.deps.Transactions.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
