// Package csm implements the shared authenticated client for the
// management-plane backends (inventory, power, boot, configuration, image).
//
// All backend adapters go through Client.Do, which owns bearer-token
// handling, retry with exponential backoff on transient failures, and the
// single refresh-and-retry allowed on a credential rejection. Adapters stay
// thin typed wrappers.
package csm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-logr/logr"

	"github.com/shastaops/csmgo/internal/config"
	"github.com/shastaops/csmgo/internal/util/retry"
)

// maxResponseBody bounds how much of a response is read into memory.
// Inventory listings for a full system run to a few MB; anything past this
// is a misbehaving backend.
const maxResponseBody = 64 << 20

// TokenSource supplies the bearer token for backend calls. Implementations
// must be safe for concurrent use; Refresh must be single-flight so that
// many rejected requests trigger one upstream refresh.
type TokenSource interface {
	// Token returns a token valid at the time of the call, acquiring or
	// refreshing the underlying credential as needed.
	Token(ctx context.Context) (string, error)
	// Refresh discards the cached credential and acquires a fresh one.
	Refresh(ctx context.Context) (string, error)
}

// Client issues authenticated JSON calls against the backend services.
type Client struct {
	endpoints  config.Endpoints
	tuning     config.Tuning
	tokens     TokenSource
	httpClient *http.Client
	log        logr.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient overrides the underlying HTTP client (useful for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a Client from the configuration. The root CA file is
// read once at construction.
func NewClient(cfg config.Config, tokens TokenSource, opts ...Option) (*Client, error) {
	var caPEM []byte
	if cfg.RootCAFile != "" {
		var err error
		caPEM, err = os.ReadFile(cfg.RootCAFile)
		if err != nil {
			return nil, fmt.Errorf("read root CA: %w", err)
		}
	}

	transport, err := newTransport(cfg.ProxyURL, caPEM)
	if err != nil {
		return nil, err
	}

	c := &Client{
		endpoints:  cfg.Endpoints,
		tuning:     cfg.Tuning,
		tokens:     tokens,
		httpClient: &http.Client{Transport: transport},
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request describes one logical API call.
type Request struct {
	Backend string // endpoint selector: inventory, power, boot, config, image
	Method  string
	Path    string // joined to the backend base URL
	Query   url.Values
	Body    any // JSON-encoded when non-nil
}

// Do executes the request and decodes a JSON response into out (skipped
// when out is nil). Transient failures are retried with backoff inside the
// request deadline; a credential rejection triggers exactly one token
// refresh and one replay before ErrAuthenticationFailed surfaces. Unknown
// response fields are ignored so additive schema changes do not break us.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.tuning.RequestTimeout)
	defer cancel()

	authRetried := false
	attempt := func() error {
		status, body, err := c.send(ctx, req)
		if err != nil {
			return err // transport-level, retryable
		}

		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			if authRetried {
				return retry.Fatal(fmt.Errorf("%s %s: %w", req.Backend, req.Path, ErrAuthenticationFailed))
			}
			authRetried = true
			c.log.V(1).Info("credential rejected, refreshing token", "backend", req.Backend, "status", status)
			if _, err := c.tokens.Refresh(ctx); err != nil {
				return retry.Fatal(fmt.Errorf("%s %s: refresh token: %w: %v", req.Backend, req.Path, ErrAuthenticationFailed, err))
			}
			status, body, err = c.send(ctx, req)
			if err != nil {
				return err
			}
			if status == http.StatusUnauthorized || status == http.StatusForbidden {
				return retry.Fatal(fmt.Errorf("%s %s: %w", req.Backend, req.Path, ErrAuthenticationFailed))
			}
		}

		if status >= 200 && status < 300 {
			if out == nil || len(body) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return retry.Fatal(fmt.Errorf("%s %s: malformed response: %w", req.Backend, req.Path, err))
			}
			return nil
		}

		apiErr := &APIError{
			Backend:    req.Backend,
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: status,
			Body:       strings.TrimSpace(string(body)),
		}
		if isRetryableStatus(status) {
			return apiErr
		}
		return retry.Fatal(apiErr)
	}

	return retry.Do(ctx, attempt,
		retry.WithMaxRetries(c.tuning.MaxRetryAttempts),
		retry.WithInitialDelay(c.tuning.RetryInitialWait),
		retry.WithMaxDelay(c.tuning.RetryMaxWait),
		retry.WithJitter(0.1))
}

// send issues the HTTP request once and returns the status and body.
func (c *Client) send(ctx context.Context, req Request) (int, []byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("acquire token: %w", err)
	}

	u := strings.TrimSuffix(c.endpoints.For(req.Backend), "/") + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return 0, nil, retry.Fatal(fmt.Errorf("encode request body: %w", err))
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, bodyReader)
	if err != nil {
		return 0, nil, retry.Fatal(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", req.Method, u, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, fmt.Errorf("read response from %s: %w", u, err)
	}
	return resp.StatusCode, body, nil
}

// ValidateToken probes a cheap authenticated endpoint to confirm the
// current credential is accepted.
func (c *Client) ValidateToken(ctx context.Context) error {
	return c.Do(ctx, Request{Backend: "config", Method: http.MethodGet, Path: "/cfs/healthz"}, nil)
}

// Get decodes a GET response into T.
func Get[T any](ctx context.Context, c *Client, backend, path string, query url.Values) (T, error) {
	var out T
	err := c.Do(ctx, Request{Backend: backend, Method: http.MethodGet, Path: path, Query: query}, &out)
	return out, err
}

// Post encodes body and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, backend, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, Request{Backend: backend, Method: http.MethodPost, Path: path, Body: body}, &out)
	return out, err
}
