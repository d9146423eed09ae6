// Package databricks implements the remote service clients consumed by
// the gateway: the SQL statement execution API, the jobs and workspace
// APIs, and the Unity Catalog metadata API.
package databricks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ErrNoHost is returned when the workspace host is not configured.
var ErrNoHost = errors.New("databricks host is not configured")

// Config holds the connection settings for one workspace.
type Config struct {
	// Host is the workspace base URL, e.g. https://acme.cloud.databricks.com.
	Host string
	// Token is a personal access token. Used when OAuth is not configured.
	Token string
	// ClientID/ClientSecret enable OAuth client-credentials auth when
	// AuthType is "oauth".
	ClientID     string
	ClientSecret string
	AuthType     string

	// HTTPTimeout bounds each request. Zero means 30s.
	HTTPTimeout time.Duration
	// RateLimit caps outgoing requests per second. Zero disables the
	// limiter.
	RateLimit rate.Limit
}

// APIError is a non-2xx response from the workspace, carrying the remote
// error body message when one was present.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error: %d - %s", e.StatusCode, e.Message)
}

// Client talks to one Databricks workspace over REST.
type Client struct {
	host       string
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	auth       *tokenSource
}

// NewClient creates a workspace client. The host must be set; credential
// validity is only checked on first use.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Host == "" {
		return nil, ErrNoHost
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(cfg.RateLimit, 1)
	}
	host := strings.TrimRight(cfg.Host, "/")
	return &Client{
		host:       host,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
		auth:       newTokenSource(host, cfg),
	}, nil
}

// do issues one API request and decodes the JSON response into out when
// out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	u := c.host + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	authHeader, err := c.auth.header(ctx, c.httpClient)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("Content-Type", "application/json")

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("databricks api call", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
			RequestID:  requestID,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// errorMessage extracts the "message" field from an error body, if any.
func errorMessage(body io.Reader) string {
	buf, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(buf, &payload); err != nil || payload.Message == "" {
		return strings.TrimSpace(string(buf))
	}
	return payload.Message
}
