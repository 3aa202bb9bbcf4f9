package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"loom/internal/faults"
	"loom/internal/logging"
	"loom/internal/models"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

// writeError renders any error in the canonical {message, details} shape.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := faults.HTTPStatus(err)
	payload := models.ErrorPayload{
		Message: err.Error(),
		Details: faults.Details(err),
	}
	var canonical *faults.Canonical
	if errors.As(err, &canonical) {
		payload.Message = canonical.Message
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", logging.Error(err))
	}
	s.writeJSON(w, status, payload)
}

// writeValidationError renders field-level failures as a 422 body.
func (s *Server) writeValidationError(w http.ResponseWriter, issues []models.ValidationIssue) {
	s.writeJSON(w, http.StatusUnprocessableEntity, models.ValidationErrorPayload{Detail: issues})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusMethodNotAllowed, models.ErrorPayload{Message: "method not allowed"})
}
