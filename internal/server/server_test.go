package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"loom/internal/config"
	"loom/internal/logging"
	"loom/internal/models"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Config == nil {
		cfg := config.Default()
		opts.Config = &cfg
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = models.Registry()
	}
	srv, err := New(opts)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var payload models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Status != "hunk-dory" {
		t.Fatalf("expected hunk-dory, got %q", payload.Status)
	}
}

func TestHealthEndpointRejectsPost(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL+"/status", "application/json", nil)
	if err != nil {
		t.Fatalf("post status: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	var payload models.ErrorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Message == "" {
		t.Fatal("expected canonical error message")
	}
}

func TestCORSHeadersAppliedToAllResponses(t *testing.T) {
	ts := newTestServer(t, Options{})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/status", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:5173")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials header, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, Options{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/typegen", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "*" {
		t.Fatalf("expected wildcard methods, got %q", got)
	}
}

func TestCORSRestrictedOrigin(t *testing.T) {
	cfg := config.Default()
	cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	ts := newTestServer(t, Options{Config: &cfg})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/status", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Origin", "http://evil.example")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin for unlisted origin, got %q", got)
	}
}

func TestStatusEndpointReportsDaemon(t *testing.T) {
	started := time.Now().UTC()
	ts := newTestServer(t, Options{
		Status: func() models.DaemonStatus {
			return models.DaemonStatus{
				Running:   true,
				PID:       1234,
				Bind:      "127.0.0.1:7892",
				StartedAt: started,
			}
		},
	})

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("get api status: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload models.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !payload.Running || payload.PID != 1234 {
		t.Fatalf("unexpected status payload: %+v", payload)
	}
}

func TestHistoryWithoutStoreIsUnavailable(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/api/history")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	var payload models.ErrorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Message == "" {
		t.Fatal("expected canonical error message")
	}
}

func TestHistoryRejectsUnknownKind(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/api/history?kind=bogus")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var payload models.ValidationErrorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload.Detail) != 1 {
		t.Fatalf("expected one validation issue, got %+v", payload.Detail)
	}
	if got := payload.Detail[0].Loc; len(got) != 2 || got[0] != "query" || got[1] != "kind" {
		t.Fatalf("unexpected loc: %v", got)
	}
}

func TestTypegenRejectsInvalidBody(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Post(ts.URL+"/api/typegen", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post typegen: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var payload models.ValidationErrorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload.Detail) == 0 {
		t.Fatal("expected validation detail entries")
	}
}

func TestTypegenRejectsNonTypescriptOutput(t *testing.T) {
	ts := newTestServer(t, Options{})

	body, _ := json.Marshal(models.TypegenRequest{Output: strPtr("models.txt")})
	resp, err := http.Post(ts.URL+"/api/typegen", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post typegen: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestTypegenWritesDefinitions(t *testing.T) {
	output := filepath.Join(t.TempDir(), "dtos.ts")
	ts := newTestServer(t, Options{})

	body, _ := json.Marshal(models.TypegenRequest{Output: &output})
	resp, err := http.Post(ts.URL+"/api/typegen", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post typegen: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var summary models.TypegenSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Output != output {
		t.Fatalf("unexpected output path %q", summary.Output)
	}
	if summary.Mode != "native" {
		t.Fatalf("expected native mode, got %q", summary.Mode)
	}
	if len(summary.Models) == 0 {
		t.Fatal("expected generated models")
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Contains(string(data), "_Master_") {
		t.Fatal("master wrapper leaked into output")
	}
	if !strings.Contains(string(data), "export interface RunRecord") {
		t.Fatalf("expected RunRecord interface, got:\n%s", data)
	}
}

func TestServerStartAndStop(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Bind = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2

	srv, err := New(Options{Config: &cfg, Logger: logging.NewNop(), Registry: models.Registry()})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("start server: %v", err)
	}
	defer srv.Stop()

	resp, err := http.Get("http://" + srv.Addr() + "/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func strPtr(value string) *string { return &value }
