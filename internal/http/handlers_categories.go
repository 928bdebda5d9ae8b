package http

import (
	"net/http"

	"duit/internal/core"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Storage.ListCategories(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	cat := core.Category{
		UserID: userID(r),
		Name:   sanitizeInput(req.Name),
		Type:   core.TransactionType(req.Type),
		Icon:   core.IconTag(req.Icon),
		Color:  sanitizeInput(req.Color),
	}
	if err := cat.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.deps.Storage.CreateCategory(r.Context(), cat)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(toCategoryJSON(created)).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.deps.Storage.DeleteCategory(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
