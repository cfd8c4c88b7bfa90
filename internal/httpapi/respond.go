package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kyawswar87/share-mal/internal/service"
	"github.com/kyawswar87/share-mal/internal/storage"
	"github.com/kyawswar87/share-mal/pkg/api"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeSuccess wraps data in the success envelope.
func writeSuccess[T any](s *Server, w http.ResponseWriter, status int, data T, message string) {
	writeJSON(w, status, api.Response[T]{
		Data:      data,
		Message:   message,
		Status:    api.ResponseSuccess,
		Timestamp: s.now().UTC(),
	})
}

// writeError writes an ErrorResponse.
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string, details []string) {
	writeJSON(w, status, api.ErrorResponse{
		Error: api.ErrorDetails{
			Code:    code,
			Message: message,
			Details: details,
		},
		Status:    api.ResponseError,
		Timestamp: s.now().UTC(),
	})
}

// writeServiceError maps a service error onto its HTTP status and code.
// Unexpected errors are logged and hidden behind a generic message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeError(w, http.StatusBadRequest, api.CodeValidation, verr.Message, verr.Details)
	case errors.Is(err, storage.ErrNotFound):
		s.writeError(w, http.StatusNotFound, api.CodeNotFound, err.Error(), nil)
	default:
		slog.ErrorContext(r.Context(), "Unexpected error", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusInternalServerError, api.CodeInternal, "An unexpected error occurred", nil)
	}
}

// decode reads a JSON request body into v, answering 400 when it is
// malformed.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Debug("Malformed request body", "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusBadRequest, api.CodeIllegalArgument, "Malformed request body", nil)
		return false
	}
	return true
}
