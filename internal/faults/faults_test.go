package faults_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"loom/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrExternalTool, "typegen", "json2ts", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"typegen", "json2ts", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", faults.Wrap(faults.ErrValidation, "api", "decode", "invalid", nil), http.StatusUnprocessableEntity},
		{"not found", faults.Wrap(faults.ErrNotFound, "history", "get", "missing", nil), http.StatusNotFound},
		{"configuration", faults.Wrap(faults.ErrConfiguration, "config", "load", "bad", nil), http.StatusBadRequest},
		{"timeout", faults.Wrap(faults.ErrTimeout, "checks", "run", "slow", nil), http.StatusGatewayTimeout},
		{"unavailable", faults.Wrap(faults.ErrUnavailable, "daemon", "status", "down", nil), http.StatusServiceUnavailable},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := faults.HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestCanonicalCarriesStatusAndDetails(t *testing.T) {
	cause := errors.New("broken pipe")
	err := faults.NewCanonical(http.StatusConflict, "run already active").
		WithDetail("run_id", "abc123").
		WithCause(cause)

	if got := faults.HTTPStatus(err); got != http.StatusConflict {
		t.Fatalf("expected explicit status to win, got %d", got)
	}
	details := faults.Details(err)
	if details == nil || details["run_id"] != "abc123" {
		t.Fatalf("expected details to round-trip, got %v", details)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), "broken pipe") {
		t.Fatalf("expected cause in message, got %q", err.Error())
	}
}

func TestDetailsNilForPlainErrors(t *testing.T) {
	if details := faults.Details(errors.New("plain")); details != nil {
		t.Fatalf("expected nil details, got %v", details)
	}
}
