package http

import (
	"net/http"
	"strings"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		BadRequestError("message is required").Write(w)
		return
	}

	reply, err := s.deps.Advisor.Chat(r.Context(), userID(r), req.Message)
	if err != nil {
		// Downstream LLM failures stay generic toward the client.
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(chatResponse{Response: reply}).Write(w)
}
