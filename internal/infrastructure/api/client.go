// internal/infrastructure/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/config"
	"github.com/your-org/storefront-client/internal/infrastructure/storage"
	"github.com/your-org/storefront-client/internal/pkg/auth"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseSize = 4 << 20

// rawList holds a list response until its shape is known
type rawList = json.RawMessage

// Client talks to the storefront REST API. The bearer token is read from the
// store on every request so that a login or logout takes effect immediately.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      storage.Store
	log        *logrus.Logger
	userAgent  string

	mu             sync.RWMutex
	onUnauthorized []func(ctx context.Context)
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTracing wraps the transport so requests propagate trace context
func WithTracing() Option {
	return func(c *Client) {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient.Transport = otelhttp.NewTransport(base)
	}
}

// New creates a client for baseURL
func New(baseURL string, store storage.Store, log *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		store:      store,
		log:        log,
		userAgent:  "storefront-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a client from the API and telemetry configuration
func NewFromConfig(cfg *config.Config, store storage.Store, log *logrus.Logger) *Client {
	opts := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		WithUserAgent(cfg.API.UserAgent),
	}
	if cfg.Telemetry.Enabled {
		opts = append(opts, WithTracing())
	}
	return New(cfg.API.BaseURL, store, log, opts...)
}

// OnUnauthorized registers a hook run after a 401 response cleared the stored tokens
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// do performs one request and decodes a 2xx JSON body into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	op := method + " " + path
	raw, status, err := c.roundTrip(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
		return &APIError{StatusCode: status, Message: errorMessage(raw, "authentication required")}
	}

	if status >= 400 {
		return &APIError{StatusCode: status, Message: errorMessage(raw, http.StatusText(status))}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, int, error) {
	op := method + " " + path

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	token, ok, err := storage.Lookup(ctx, c.store, storage.KeyAuthToken)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to read auth token: %w", op, err)
	}
	if ok && token != "" {
		req.Header.Set("Authorization", auth.BearerHeader(token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"op":         op,
		}).WithError(err).Warn("API request failed")
		return nil, 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err}
	}

	entry := c.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"op":          op,
		"status_code": resp.StatusCode,
	})
	if resp.StatusCode >= 500 {
		entry.Error("API request completed with server error")
	} else if resp.StatusCode >= 400 {
		entry.Warn("API request completed with client error")
	} else {
		entry.Debug("API request completed")
	}

	return raw, resp.StatusCode, nil
}

// handleUnauthorized drops the stored tokens and notifies the hooks
func (c *Client) handleUnauthorized(ctx context.Context) {
	if err := c.store.Remove(ctx, storage.KeyAuthToken, storage.KeyRefreshToken); err != nil {
		c.log.WithError(err).Error("Failed to clear tokens after 401")
	}

	c.mu.RLock()
	hooks := make([]func(ctx context.Context), len(c.onUnauthorized))
	copy(hooks, c.onUnauthorized)
	c.mu.RUnlock()

	for _, hook := range hooks {
		hook(ctx)
	}
}

// decodeList accepts either a bare JSON array or a paginated {"results": [...]} page
func decodeList[T any](raw rawList) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		return []T{}, nil
	}
	return page.Results, nil
}
