// Package bos is the typed adapter for the boot orchestration service:
// session templates, boot sessions, and per-component boot state.
package bos

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shastaops/csmgo/internal/csm"
)

const backend = "boot"

// SessionOperation selects what a boot session does to its targets.
type SessionOperation string

const (
	OperationBoot     SessionOperation = "boot"
	OperationReboot   SessionOperation = "reboot"
	OperationShutdown SessionOperation = "shutdown"
)

// BootSet names the image and parameters one slice of nodes boots with.
type BootSet struct {
	Name          string   `json:"name,omitempty"`
	Path          string   `json:"path"`
	Type          string   `json:"type,omitempty"`
	Etag          string   `json:"etag,omitempty"`
	KernelParams  string   `json:"kernel_parameters,omitempty"`
	NodeList      []string `json:"node_list,omitempty"`
	NodeGroups    []string `json:"node_groups,omitempty"`
	NodeRoles     []string `json:"node_roles_groups,omitempty"`
	RootfsProv    string   `json:"rootfs_provider,omitempty"`
	RootfsBranch  string   `json:"rootfs_provider_passthrough,omitempty"`
	Arch          string   `json:"arch,omitempty"`
}

// SessionTemplate is a reusable boot recipe.
type SessionTemplate struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Enabled     *bool              `json:"enable_cfs,omitempty"`
	CFSConfig   string             `json:"cfs,omitempty"`
	BootSets    map[string]BootSet `json:"boot_sets"`
	TenantName  string             `json:"tenant,omitempty"`
}

// SessionRequest creates a session from a template, limited to a target
// list.
type SessionRequest struct {
	Name            string           `json:"name,omitempty"`
	TemplateName    string           `json:"template_name"`
	Operation       SessionOperation `json:"operation"`
	Limit           string           `json:"limit,omitempty"`
	Stage           bool             `json:"stage,omitempty"`
	IncludeDisabled bool             `json:"include_disabled,omitempty"`
}

// SessionStatus is the rolled-up state of a session.
type SessionStatus struct {
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Session is an in-flight or finished boot session.
type Session struct {
	Name         string           `json:"name"`
	TemplateName string           `json:"template_name"`
	Operation    SessionOperation `json:"operation"`
	Limit        string           `json:"limit,omitempty"`
	Status       SessionStatus    `json:"status,omitempty"`
}

// Session status values.
const (
	SessionPending  = "pending"
	SessionRunning  = "running"
	SessionComplete = "complete"
)

// ComponentState is what one node is booted with, or moving toward.
type ComponentState struct {
	BootArtifacts struct {
		Path         string `json:"path,omitempty"`
		KernelParams string `json:"kernel_parameters,omitempty"`
	} `json:"boot_artifacts,omitempty"`
	BSSToken string `json:"bss_token,omitempty"`
}

// ComponentStatus is the phase a node is in within its current session.
type ComponentStatus struct {
	Phase  string `json:"phase,omitempty"`
	Status string `json:"status,omitempty"`
}

// Component is the boot-service view of one node.
type Component struct {
	ID           string          `json:"id"`
	ActualState  ComponentState  `json:"actual_state,omitempty"`
	DesiredState ComponentState  `json:"desired_state,omitempty"`
	Enabled      *bool           `json:"enabled,omitempty"`
	Error        string          `json:"error,omitempty"`
	Session      string          `json:"session,omitempty"`
	Status       ComponentStatus `json:"status,omitempty"`
}

// Component phase values.
const (
	PhasePoweringOn  = "powering_on"
	PhasePoweringOff = "powering_off"
	PhaseConfiguring = "configuring"
)

// Client wraps the shared API client with boot-service calls.
type Client struct {
	api *csm.Client
}

// NewClient builds a boot adapter over the shared client.
func NewClient(api *csm.Client) *Client {
	return &Client{api: api}
}

// SessionTemplates lists every template.
func (c *Client) SessionTemplates(ctx context.Context) ([]SessionTemplate, error) {
	templates, err := csm.Get[[]SessionTemplate](ctx, c.api, backend, "/bos/v2/sessiontemplates", nil)
	if err != nil {
		return nil, fmt.Errorf("list session templates: %w", err)
	}
	return templates, nil
}

// SessionTemplate fetches one template by name.
func (c *Client) SessionTemplate(ctx context.Context, name string) (SessionTemplate, error) {
	t, err := csm.Get[SessionTemplate](ctx, c.api, backend, "/bos/v2/sessiontemplates/"+name, nil)
	if err != nil {
		return SessionTemplate{}, fmt.Errorf("get session template %s: %w", name, err)
	}
	return t, nil
}

// CreateSession starts a boot session and returns its name.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (string, error) {
	if req.TemplateName == "" {
		return "", fmt.Errorf("create session: template name required")
	}
	s, err := csm.Post[Session](ctx, c.api, backend, "/bos/v2/sessions", req)
	if err != nil {
		return "", fmt.Errorf("create %s session from %s: %w", req.Operation, req.TemplateName, err)
	}
	if s.Name == "" {
		return "", fmt.Errorf("create session: service returned no session name")
	}
	return s.Name, nil
}

// Session fetches one session by name.
func (c *Client) Session(ctx context.Context, name string) (Session, error) {
	s, err := csm.Get[Session](ctx, c.api, backend, "/bos/v2/sessions/"+name, nil)
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", name, err)
	}
	return s, nil
}

// DeleteSession removes a session record. Running sessions are stopped.
func (c *Client) DeleteSession(ctx context.Context, name string) error {
	err := c.api.Do(ctx, csm.Request{
		Backend: backend,
		Method:  http.MethodDelete,
		Path:    "/bos/v2/sessions/" + name,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", name, err)
	}
	return nil
}

// Components fetches the boot-service state of the named nodes.
func (c *Client) Components(ctx context.Context, ids []string) ([]Component, error) {
	query := url.Values{}
	if len(ids) > 0 {
		query.Set("ids", strings.Join(ids, ","))
	}
	comps, err := csm.Get[[]Component](ctx, c.api, backend, "/bos/v2/components", query)
	if err != nil {
		return nil, fmt.Errorf("list boot components: %w", err)
	}
	return comps, nil
}
