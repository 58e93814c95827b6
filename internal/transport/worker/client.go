// Package worker talks to the KV worker: a small HTTP front for a key-value
// namespace. GET ?key=K answers {"value": "<string>"}; POST {key, value}
// stores a string. The same client fetches static JSON board files.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/elodash/internal/db"
	"github.com/kailas-cloud/elodash/internal/metrics"
)

// maxBodyBytes caps upstream payloads. Larger responses are rejected.
var maxBodyBytes int64 = 32 << 20

// Client is the KV worker and static-file HTTP client.
type Client struct {
	http   *http.Client
	url    string
	logger *zap.Logger
}

// Config holds the worker client settings.
type Config struct {
	URL     string
	Timeout time.Duration
	// Transport overrides the base round tripper (tests).
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// NewClient creates a worker client. Requests carry trace context via otelhttp.
func NewClient(cfg *Config) *Client {
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http:   &http.Client{Transport: otelhttp.NewTransport(base), Timeout: timeout},
		url:    cfg.URL,
		logger: log,
	}
}

// envelope is the worker's read/write body.
type envelope struct {
	Key   string  `json:"key,omitempty"`
	Value *string `json:"value"`
}

// Get reads key from the worker and returns the unwrapped string value.
// A null value, or the literal string "null", yields db.ErrKeyNotFound.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c.url == "" {
		return nil, fmt.Errorf("worker url is not configured")
	}
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("parse worker url: %w", err)
	}
	q := u.Query()
	q.Set("key", key)
	u.RawQuery = q.Encode()

	body, err := c.do(ctx, "get", http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode worker envelope for %s: %w", key, err)
	}
	if env.Value == nil || *env.Value == "null" {
		return nil, db.ErrKeyNotFound
	}
	return []byte(*env.Value), nil
}

// Set stores value under key.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	if c.url == "" {
		return fmt.Errorf("worker url is not configured")
	}
	v := string(value)
	payload, err := json.Marshal(envelope{Key: key, Value: &v})
	if err != nil {
		return fmt.Errorf("encode worker envelope: %w", err)
	}
	if _, err := c.do(ctx, "set", http.MethodPost, c.url, payload); err != nil {
		return err
	}
	return nil
}

// FetchURL downloads a static JSON document.
func (c *Client) FetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, "fetch", http.MethodGet, rawURL, nil)
}

// HealthCheck verifies the worker answers a read. A missing key still counts as healthy.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Get(ctx, "health:ping")
	if err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("worker health: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, target string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("%s %s: %w", method, redact(target), err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	if int64(len(data)) > maxBodyBytes {
		return nil, fmt.Errorf("%s %s: response exceeds %d bytes", method, redact(target), maxBodyBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("upstream error response",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(data, 256)),
		)
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, redact(target), resp.StatusCode)
	}
	return data, nil
}

// redact drops the query string, which may carry keys.
func redact(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
