package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"loom/internal/faults"
	"loom/internal/logging"
	"loom/internal/models"
	"loom/internal/typegen"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	s.writeJSON(w, http.StatusOK, models.StatusResponse{Status: models.StatusOK})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	if s.status == nil {
		s.writeError(w, faults.Wrap(faults.ErrUnavailable, "api-server", "status", "daemon status unavailable", nil))
		return
	}
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	if s.store == nil {
		s.writeError(w, faults.Wrap(faults.ErrUnavailable, "api-server", "history", "history store unavailable", nil))
		return
	}

	query := r.URL.Query()
	var issues []models.ValidationIssue

	var kind models.RunKind
	if raw := strings.TrimSpace(query.Get("kind")); raw != "" {
		parsed, ok := models.ParseRunKind(raw)
		if !ok {
			issues = append(issues, models.ValidationIssue{
				Loc:  []string{"query", "kind"},
				Msg:  "unknown run kind",
				Type: "value_error",
			})
		}
		kind = parsed
	}

	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			issues = append(issues, models.ValidationIssue{
				Loc:  []string{"query", "limit"},
				Msg:  "limit must be a non-negative integer",
				Type: "type_error",
			})
		} else {
			limit = parsed
		}
	}
	if len(issues) > 0 {
		s.writeValidationError(w, issues)
		return
	}

	records, err := s.store.List(r.Context(), kind, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []models.RunRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleTypegen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}

	var request models.TypegenRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, faults.Wrap(faults.ErrValidation, "api-server", "typegen", "read request body", err))
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &request); err != nil {
			s.writeValidationError(w, []models.ValidationIssue{{
				Loc:  []string{"body"},
				Msg:  "invalid JSON body",
				Type: "value_error.jsondecode",
			}})
			return
		}
	}
	if issues := request.Validate(); len(issues) > 0 {
		s.writeValidationError(w, issues)
		return
	}

	output := s.cfg.TypeGenOutput()
	if request.Output != nil {
		output = strings.TrimSpace(*request.Output)
	}
	exclude := s.cfg.TypeGen.Exclude
	if request.Exclude != nil {
		exclude = request.Exclude
	}

	run, err := s.beginRun(r, models.RunKindTypegen, "output="+output)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := typegen.Run(r.Context(), typegen.Options{
		Registry:   s.registry,
		Output:     output,
		Exclude:    exclude,
		Json2TSCmd: s.cfg.TypeGen.Json2TSCmd,
		Banner:     s.cfg.TypeGen.Banner,
		SchemaOnly: request.SchemaOnly,
		Logger:     s.logger,
	})
	if err != nil {
		s.finishRun(r, run, models.RunStatusFailed, err.Error())
		s.writeError(w, err)
		return
	}
	s.finishRun(r, run, models.RunStatusSucceeded, result.Mode)

	s.writeJSON(w, http.StatusOK, models.TypegenSummary{
		Output:     result.Output,
		Models:     result.Models,
		Bytes:      result.Bytes,
		DurationMS: result.Duration.Milliseconds(),
		Mode:       result.Mode,
	})
}

func (s *Server) beginRun(r *http.Request, kind models.RunKind, detail string) (*models.RunRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	record, err := s.store.Begin(r.Context(), kind, detail)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUnavailable, "api-server", "history", "record run", err)
	}
	return record, nil
}

func (s *Server) finishRun(r *http.Request, record *models.RunRecord, status models.RunStatus, detail string) {
	if s.store == nil || record == nil {
		return
	}
	if err := s.store.Finish(r.Context(), record.ID, status, detail); err != nil {
		s.logger.Warn("finish run record failed", logging.Error(err))
	}
}
