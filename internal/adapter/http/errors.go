package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps domain sentinels onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		status, code = http.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "timeout"
	}

	attrs := []any{
		"error", err,
		"status", status,
		"request_id", chimiddleware.GetReqID(r.Context()),
	}
	switch {
	case status == http.StatusInternalServerError:
		s.logger.ErrorContext(r.Context(), "request failed", attrs...)
	case status > http.StatusInternalServerError:
		s.logger.WarnContext(r.Context(), "upstream request failed", attrs...)
	default:
		s.logger.DebugContext(r.Context(), "request rejected", attrs...)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	sharedobs.WriteJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}
