// Package pcs is the typed adapter for the power control service. Power
// changes are asynchronous transitions: create one, poll it by id until its
// per-node tasks settle, abort it to request a best-effort stop.
package pcs

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shastaops/csmgo/internal/csm"
)

const backend = "power"

// Operation is a power transition verb.
type Operation string

const (
	On          Operation = "On"
	Off         Operation = "Off"
	SoftOff     Operation = "Soft-Off"
	SoftRestart Operation = "Soft-Restart"
	HardRestart Operation = "Hard-Restart"
	Init        Operation = "Init"
	ForceOff    Operation = "Force-Off"
)

// Operations lists every transition verb the service accepts.
func Operations() []Operation {
	return []Operation{On, Off, SoftOff, SoftRestart, HardRestart, Init, ForceOff}
}

// ParseOperation maps user input onto a transition verb, accepting any
// capitalization and either '-' or '_' as the separator.
func ParseOperation(s string) (Operation, error) {
	normalized := strings.ReplaceAll(strings.ToLower(s), "_", "-")
	for _, op := range Operations() {
		if strings.ToLower(string(op)) == normalized {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown power operation %q (want one of %v)", s, Operations())
}

// Location names one transition target. DeputyKey carries a reservation
// key when the caller holds one; the service enforces it.
type Location struct {
	Xname     string `json:"xname"`
	DeputyKey string `json:"deputyKey,omitempty"`
}

// TransitionRequest creates a transition over a set of locations.
type TransitionRequest struct {
	Operation           Operation  `json:"operation"`
	TaskDeadlineMinutes int        `json:"taskDeadlineMinutes,omitempty"`
	Location            []Location `json:"location"`
}

// TaskCounts summarizes the per-node tasks of a transition.
type TaskCounts struct {
	Total       int `json:"total"`
	New         int `json:"new"`
	InProgress  int `json:"in_progress"`
	Failed      int `json:"failed"`
	Succeeded   int `json:"succeeded"`
	Unsupported int `json:"un_supported"`
}

// Task is the state of one node inside a transition.
type Task struct {
	Xname             string `json:"xname"`
	TaskStatus        string `json:"taskStatus"`
	TaskStatusDescrip string `json:"taskStatusDescription,omitempty"`
	Error             string `json:"error,omitempty"`
}

// Task status values reported by the service.
const (
	TaskNew         = "new"
	TaskInProgress  = "in-progress"
	TaskFailed      = "failed"
	TaskSucceeded   = "succeeded"
	TaskUnsupported = "un-supported"
)

// Transition is the polled view of an in-flight or finished transition.
type Transition struct {
	TransitionID     string     `json:"transitionID"`
	Operation        Operation  `json:"operation"`
	TransitionStatus string     `json:"transitionStatus,omitempty"`
	TaskCounts       TaskCounts `json:"taskCounts"`
	Tasks            []Task     `json:"tasks,omitempty"`
}

// Settled reports whether every task has reached a terminal status.
func (t Transition) Settled() bool {
	return t.TaskCounts.New == 0 && t.TaskCounts.InProgress == 0
}

// Client wraps the shared API client with power-service calls.
type Client struct {
	api *csm.Client
}

// NewClient builds a power adapter over the shared client.
func NewClient(api *csm.Client) *Client {
	return &Client{api: api}
}

// CreateTransition submits a new transition and returns its id.
func (c *Client) CreateTransition(ctx context.Context, req TransitionRequest) (string, error) {
	if len(req.Location) == 0 {
		return "", fmt.Errorf("create transition: no targets")
	}
	resp, err := csm.Post[Transition](ctx, c.api, backend, "/power-control/v1/transitions", req)
	if err != nil {
		return "", fmt.Errorf("create %s transition: %w", req.Operation, err)
	}
	if resp.TransitionID == "" {
		return "", fmt.Errorf("create %s transition: service returned no transition id", req.Operation)
	}
	return resp.TransitionID, nil
}

// Transition fetches the current state of a transition, tasks included.
func (c *Client) Transition(ctx context.Context, id string) (Transition, error) {
	t, err := csm.Get[Transition](ctx, c.api, backend, "/power-control/v1/transitions/"+id, nil)
	if err != nil {
		return Transition{}, fmt.Errorf("get transition %s: %w", id, err)
	}
	return t, nil
}

// AbortTransition asks the service to stop a transition. Tasks already
// executing may still complete; the caller keeps polling to observe the
// final state.
func (c *Client) AbortTransition(ctx context.Context, id string) error {
	err := c.api.Do(ctx, csm.Request{
		Backend: backend,
		Method:  http.MethodDelete,
		Path:    "/power-control/v1/transitions/" + id,
	}, nil)
	if err != nil {
		return fmt.Errorf("abort transition %s: %w", id, err)
	}
	return nil
}
