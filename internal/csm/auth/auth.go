// Package auth acquires and caches the bearer credential used against the
// management plane.
//
// The credential is process-wide mutable state, so it lives behind a single
// owner with single-flight refresh: concurrent callers hitting an expired
// token share one request to the identity provider instead of racing.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"
)

// expirySkew is how long before nominal expiry a credential is already
// treated as stale, so in-flight requests do not ride a dying token.
const expirySkew = 30 * time.Second

// credential is the cached secret material. The token bytes are zeroed when
// the credential is replaced; holders must not retain the string beyond the
// request they got it for.
type credential struct {
	token  []byte
	expiry time.Time
}

func (c *credential) valid(now time.Time) bool {
	return c != nil && len(c.token) > 0 && now.Before(c.expiry.Add(-expirySkew))
}

func (c *credential) wipe() {
	if c == nil {
		return
	}
	for i := range c.token {
		c.token[i] = 0
	}
	c.token = nil
}

// PasswordGrantSource fetches tokens from a Keycloak-style OpenID Connect
// endpoint using the resource-owner password grant, the flow the management
// plane exposes for operator tooling.
type PasswordGrantSource struct {
	tokenURL   string
	username   string
	password   string
	clientID   string
	httpClient *http.Client
	log        logr.Logger
	now        func() time.Time

	mu    sync.Mutex
	cred  *credential
	group singleflight.Group
}

// Option configures a PasswordGrantSource.
type Option func(*PasswordGrantSource)

// WithHTTPClient overrides the HTTP client used to reach the identity
// provider (it needs the same CA/proxy settings as the API transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(s *PasswordGrantSource) { s.httpClient = hc }
}

// WithLogger attaches a logger.
func WithLogger(log logr.Logger) Option {
	return func(s *PasswordGrantSource) { s.log = log }
}

// WithClientID overrides the OAuth client id (default "shasta").
func WithClientID(id string) Option {
	return func(s *PasswordGrantSource) { s.clientID = id }
}

// NewPasswordGrantSource builds a source. No network traffic happens until
// the first Token call.
func NewPasswordGrantSource(tokenURL, username, password string, opts ...Option) (*PasswordGrantSource, error) {
	if tokenURL == "" {
		return nil, fmt.Errorf("token URL is required")
	}
	s := &PasswordGrantSource{
		tokenURL:   tokenURL,
		username:   username,
		password:   password,
		clientID:   "shasta",
		httpClient: http.DefaultClient,
		log:        logr.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Token returns the cached token while it is fresh, refreshing lazily
// otherwise.
func (s *PasswordGrantSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.cred.valid(s.now()) {
		token := string(s.cred.token)
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh fetches a new credential, collapsing concurrent calls into one
// upstream request. All waiters receive the same result.
func (s *PasswordGrantSource) Refresh(ctx context.Context) (string, error) {
	token, err, _ := s.group.Do("refresh", func() (any, error) {
		// Re-check under the flight: a caller queued behind a refresh that
		// just completed should not trigger another one.
		s.mu.Lock()
		if s.cred.valid(s.now()) {
			token := string(s.cred.token)
			s.mu.Unlock()
			return token, nil
		}
		s.mu.Unlock()

		cred, err := s.fetch(ctx)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.cred.wipe()
		s.cred = cred
		s.mu.Unlock()

		s.log.V(1).Info("acquired token", "expiry", cred.expiry)
		return string(cred.token), nil
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// Close drops the cached credential.
func (s *PasswordGrantSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred.wipe()
	s.cred = nil
}

// tokenResponse is the subset of the OpenID token response we use.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *PasswordGrantSource) fetch(ctx context.Context) (*credential, error) {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {s.clientID},
		"username":   {s.username},
		"password":   {s.password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access_token")
	}

	expiry := s.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return &credential{token: []byte(tr.AccessToken), expiry: expiry}, nil
}

// StaticSource wraps a pre-provisioned token (for sites that hand out
// long-lived tokens out of band). Refresh cannot mint a new one, so a
// rejected static token stays rejected.
type StaticSource string

// Token returns the static token.
func (s StaticSource) Token(context.Context) (string, error) { return string(s), nil }

// Refresh returns the same token; there is nothing to refresh.
func (s StaticSource) Refresh(context.Context) (string, error) { return string(s), nil }
