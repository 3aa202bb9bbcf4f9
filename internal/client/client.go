// Package client talks to a running loom daemon over its HTTP API.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"loom/internal/config"
	"loom/internal/faults"
	"loom/internal/models"
)

// Client issues requests against the daemon API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client from the daemon bind address in the config.
func New(cfg *config.Config) *Client {
	scheme := "http"
	transport := http.DefaultTransport
	if cfg.TLSEnabled() {
		scheme = "https"
		// Local dev certificates are self-signed.
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}
	timeout := time.Duration(cfg.Workflow.StatusTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: fmt.Sprintf("%s://%s", scheme, strings.TrimSpace(cfg.Server.Bind)),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// NewForURL builds a client against an explicit base URL, used in tests
// and when the daemon runs on a non-default address.
func NewForURL(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health calls GET /status.
func (c *Client) Health(ctx context.Context) (*models.StatusResponse, error) {
	var payload models.StatusResponse
	if err := c.get(ctx, "/status", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Status calls GET /api/status.
func (c *Client) Status(ctx context.Context) (*models.DaemonStatus, error) {
	var payload models.DaemonStatus
	if err := c.get(ctx, "/api/status", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// History calls GET /api/history with optional kind and limit filters.
func (c *Client) History(ctx context.Context, kind models.RunKind, limit int) ([]models.RunRecord, error) {
	query := url.Values{}
	if kind != "" {
		query.Set("kind", string(kind))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var payload []models.RunRecord
	if err := c.get(ctx, "/api/history", query, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Typegen calls POST /api/typegen.
func (c *Client) Typegen(ctx context.Context, request models.TypegenRequest) (*models.TypegenSummary, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode typegen request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/typegen", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var payload models.TypegenSummary
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return faults.Wrap(faults.ErrUnavailable, "client", "request", "daemon unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError rebuilds a canonical fault from an API error body.
func decodeError(status int, body []byte) error {
	if status == http.StatusUnprocessableEntity {
		var validation models.ValidationErrorPayload
		if err := json.Unmarshal(body, &validation); err == nil && len(validation.Detail) > 0 {
			issues := make([]string, 0, len(validation.Detail))
			for _, issue := range validation.Detail {
				issues = append(issues, fmt.Sprintf("%s: %s", strings.Join(issue.Loc, "."), issue.Msg))
			}
			canonical := faults.NewCanonical(status, "request validation failed").
				WithDetail("issues", issues)
			return canonical
		}
	}

	var payload models.ErrorPayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		canonical := faults.NewCanonical(status, payload.Message)
		for key, value := range payload.Details {
			canonical.WithDetail(key, value)
		}
		return canonical
	}
	return faults.NewCanonical(status, fmt.Sprintf("daemon returned status %d", status))
}
