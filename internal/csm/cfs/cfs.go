// Package cfs is the typed adapter for the configuration service:
// configuration definitions, configuration sessions, and per-component
// configuration state.
package cfs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shastaops/csmgo/internal/csm"
)

const backend = "config"

// Layer is one ordered step of a configuration: a commit in a repository
// plus the playbook to run from it.
type Layer struct {
	Name     string `json:"name,omitempty"`
	CloneURL string `json:"clone_url"`
	Commit   string `json:"commit,omitempty"`
	Branch   string `json:"branch,omitempty"`
	Playbook string `json:"playbook,omitempty"`
}

// Configuration is a named, ordered list of layers.
type Configuration struct {
	Name        string  `json:"name"`
	LastUpdated string  `json:"last_updated,omitempty"`
	Layers      []Layer `json:"layers"`
}

// SessionRequest starts a configuration session against a target list.
type SessionRequest struct {
	Name          string `json:"name"`
	Configuration string `json:"configuration_name"`
	// AnsibleLimit narrows the run to a comma-joined list of node ids.
	AnsibleLimit string `json:"ansible_limit,omitempty"`
}

// SessionState is the rolled-up state of a configuration session.
type SessionState struct {
	Status    string `json:"status,omitempty"`
	Succeeded string `json:"succeeded,omitempty"`
	StartTime string `json:"startTime,omitempty"`
}

// Session is an in-flight or finished configuration session.
type Session struct {
	Name          string `json:"name"`
	Configuration struct {
		Name string `json:"name"`
	} `json:"configuration,omitempty"`
	Status struct {
		Session SessionState `json:"session,omitempty"`
	} `json:"status,omitempty"`
}

// State returns the rolled-up session state.
func (s Session) State() SessionState { return s.Status.Session }

// Session status values.
const (
	SessionPending  = "pending"
	SessionRunning  = "running"
	SessionComplete = "complete"
)

// Component is the configuration-service view of one node.
type Component struct {
	ID            string `json:"id"`
	DesiredConfig string `json:"desired_config,omitempty"`
	ErrorCount    int    `json:"error_count,omitempty"`
	Status        string `json:"configuration_status,omitempty"`
	Enabled       *bool  `json:"enabled,omitempty"`
}

// Component configuration status values.
const (
	StatusUnconfigured = "unconfigured"
	StatusPending      = "pending"
	StatusFailed       = "failed"
	StatusConfigured   = "configured"
)

// Client wraps the shared API client with configuration-service calls.
type Client struct {
	api *csm.Client
}

// NewClient builds a configuration adapter over the shared client.
func NewClient(api *csm.Client) *Client {
	return &Client{api: api}
}

type configurationList struct {
	Configurations []Configuration `json:"configurations"`
}

// Configurations lists every configuration definition.
func (c *Client) Configurations(ctx context.Context) ([]Configuration, error) {
	list, err := csm.Get[configurationList](ctx, c.api, backend, "/cfs/v3/configurations", nil)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	return list.Configurations, nil
}

// Configuration fetches one definition by name.
func (c *Client) Configuration(ctx context.Context, name string) (Configuration, error) {
	cfg, err := csm.Get[Configuration](ctx, c.api, backend, "/cfs/v3/configurations/"+name, nil)
	if err != nil {
		return Configuration{}, fmt.Errorf("get configuration %s: %w", name, err)
	}
	return cfg, nil
}

// CreateSession starts a configuration session and returns its name.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (string, error) {
	if req.Configuration == "" {
		return "", fmt.Errorf("create session: configuration name required")
	}
	s, err := csm.Post[Session](ctx, c.api, backend, "/cfs/v3/sessions", req)
	if err != nil {
		return "", fmt.Errorf("create session for %s: %w", req.Configuration, err)
	}
	if s.Name == "" {
		return "", fmt.Errorf("create session: service returned no session name")
	}
	return s.Name, nil
}

// Session fetches one session by name.
func (c *Client) Session(ctx context.Context, name string) (Session, error) {
	s, err := csm.Get[Session](ctx, c.api, backend, "/cfs/v3/sessions/"+name, nil)
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", name, err)
	}
	return s, nil
}

// DeleteSession removes a session record, stopping it if still running.
func (c *Client) DeleteSession(ctx context.Context, name string) error {
	err := c.api.Do(ctx, csm.Request{
		Backend: backend,
		Method:  http.MethodDelete,
		Path:    "/cfs/v3/sessions/" + name,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", name, err)
	}
	return nil
}

type componentList struct {
	Components []Component `json:"components"`
}

// Components fetches the configuration state of the named nodes.
func (c *Client) Components(ctx context.Context, ids []string) ([]Component, error) {
	query := url.Values{}
	if len(ids) > 0 {
		query.Set("ids", strings.Join(ids, ","))
	}
	list, err := csm.Get[componentList](ctx, c.api, backend, "/cfs/v3/components", query)
	if err != nil {
		return nil, fmt.Errorf("list configuration components: %w", err)
	}
	return list.Components, nil
}

// Component fetches the configuration state of one node.
func (c *Client) Component(ctx context.Context, id string) (Component, error) {
	comp, err := csm.Get[Component](ctx, c.api, backend, "/cfs/v3/components/"+id, nil)
	if err != nil {
		return Component{}, fmt.Errorf("get configuration component %s: %w", id, err)
	}
	return comp, nil
}
