// Package http provides the JSON API server and its handlers.
//
// Responses are built with a small fluent builder so handlers share one
// encoding and error-formatting path.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"duit/internal/core"
	"duit/internal/storage"
)

// ResponseBuilder assembles a JSON response.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
	hasPayload bool
}

// NewResponse creates a builder with a 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom response header.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the response payload.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.payload = v
	b.hasPayload = true
	return b
}

// Write sends the built response.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.hasPayload {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(b.statusCode)
	if b.hasPayload {
		if err := json.NewEncoder(w).Encode(b.payload); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a {"error": message} response with the given
// status.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// validationSentinels are domain errors reported back to the client as
// 422 with their own message.
var validationSentinels = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidDate,
	core.ErrEmptyName,
	core.ErrCategoryTypeMismatch,
	core.ErrInvalidTarget,
	core.ErrInvalidPeriod,
	core.ErrDefaultCategory,
	core.ErrUnknownIcon,
}

// writeError maps service errors onto responses. Unknown errors become
// a generic 500 so internals stay out of the payload.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		NotFoundError("not found").Write(w)
		return
	}
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			UnprocessableEntityError(sentinel.Error()).Write(w)
			return
		}
	}

	slog.ErrorContext(r.Context(), "Request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	InternalServerError("internal error").Write(w)
}
