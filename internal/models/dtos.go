package models

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// StatusOK is the canonical healthy-status payload value.
const StatusOK = "hunk-dory"

// RunKind classifies workspace runs recorded in history.
type RunKind string

const (
	RunKindTypegen RunKind = "typegen"
	RunKindCheck   RunKind = "check"
	RunKindDev     RunKind = "dev"
	RunKindBackend RunKind = "backend"
)

func (RunKind) EnumValues() []string {
	return []string{
		string(RunKindTypegen),
		string(RunKindCheck),
		string(RunKindDev),
		string(RunKindBackend),
	}
}

// ParseRunKind validates a run kind received from the API or CLI flags.
func ParseRunKind(value string) (RunKind, bool) {
	kind := RunKind(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range (RunKind("")).EnumValues() {
		if string(kind) == known {
			return kind, true
		}
	}
	return "", false
}

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

func (RunStatus) EnumValues() []string {
	return []string{
		string(RunStatusRunning),
		string(RunStatusSucceeded),
		string(RunStatusFailed),
	}
}

// StatusResponse is the body served by GET /status.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorPayload is the canonical error body: message plus structured details.
type ErrorPayload struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ValidationIssue mirrors one entry of a request validation failure.
type ValidationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationErrorPayload is the 422 body listing every rejected field.
type ValidationErrorPayload struct {
	Detail []ValidationIssue `json:"detail"`
}

// RunRecord is one row of the workspace run history.
type RunRecord struct {
	ID         int64      `json:"id"`
	RunID      string     `json:"run_id"`
	Kind       RunKind    `json:"kind"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Detail     string     `json:"detail,omitempty"`
}

// CheckOutcome reports a single type checker invocation.
type CheckOutcome struct {
	Name       string `json:"name"`
	Passed     bool   `json:"passed"`
	DurationMS int64  `json:"duration_ms"`
	Output     string `json:"output,omitempty"`
}

// TypegenRequest is the POST /api/typegen body.
type TypegenRequest struct {
	Output     *string  `json:"output,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
	SchemaOnly bool     `json:"schema_only,omitempty"`
}

// Validate reports structural problems with the request.
func (r TypegenRequest) Validate() []ValidationIssue {
	var issues []ValidationIssue
	if r.Output != nil {
		output := strings.TrimSpace(*r.Output)
		switch {
		case output == "":
			issues = append(issues, ValidationIssue{
				Loc:  []string{"body", "output"},
				Msg:  "output must not be empty",
				Type: "value_error",
			})
		case !r.SchemaOnly && path.Ext(output) != ".ts":
			issues = append(issues, ValidationIssue{
				Loc:  []string{"body", "output"},
				Msg:  "output must be a .ts file",
				Type: "value_error",
			})
		}
	}
	for i, name := range r.Exclude {
		if strings.TrimSpace(name) == "" {
			issues = append(issues, ValidationIssue{
				Loc:  []string{"body", "exclude", strconv.Itoa(i)},
				Msg:  "exclude entries must not be blank",
				Type: "value_error",
			})
		}
	}
	return issues
}

// TypegenSummary reports the outcome of a generation run.
type TypegenSummary struct {
	Output     string   `json:"output"`
	Models     []string `json:"models"`
	Bytes      int      `json:"bytes"`
	DurationMS int64    `json:"duration_ms"`
	Mode       string   `json:"mode"`
}

// DependencyStatus reports availability of one external binary the
// workspace commands rely on.
type DependencyStatus struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Optional  bool   `json:"optional,omitempty"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

// DaemonStatus is the GET /api/status body.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	Bind         string             `json:"bind"`
	TLS          bool               `json:"tls"`
	LockPath     string             `json:"lock_path"`
	HistoryPath  string             `json:"history_path"`
	StartedAt    time.Time          `json:"started_at"`
	Dependencies []DependencyStatus `json:"dependencies,omitempty"`
}
