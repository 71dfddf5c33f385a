// Package http exposes the ledger services as a JSON API.
//
// This file implements a small builder for JSON responses and the single
// place where service errors are mapped to status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	data       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response. A nil body with 204 writes no content.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.data == nil && b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.data)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorResponse creates a {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Data(errorBody{Error: message})
}

// statusFor maps service errors to HTTP status codes and a client-safe message.
func statusFor(err error) (int, errorBody) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorBody{Error: verr.Error(), Field: verr.Field}
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Error: "unauthenticated"}
	case errors.Is(err, core.ErrAccountNotFound):
		return http.StatusNotFound, errorBody{Error: "account not found"}
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
}

// writeError logs err with the request-scoped logger and writes the mapped response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldStatusCode, status)
	} else {
		logger.WarnContext(r.Context(), "Request rejected", log.FieldError, err, log.FieldStatusCode, status)
	}
	NewJSONResponse().Status(status).Data(body).Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Data(v).Write(w)
}
