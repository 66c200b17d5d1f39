// Package orchestrator drives one administrative operation across a set of
// nodes: submit it to a backend service, poll until every node settles or a
// deadline passes, and report per-node results.
//
// The orchestrator never loses a node. Every target appears in the final
// report exactly once; nodes the backend stops reporting keep their last
// observed state, and nodes still unfinished at the deadline are marked
// timed out rather than dropped.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-logr/logr"

	"github.com/shastaops/csmgo/internal/config"
	"github.com/shastaops/csmgo/internal/nodeset"
)

// ErrSubmissionFailed reports that the backend rejected the operation
// outright; nothing was started on any node.
var ErrSubmissionFailed = errors.New("operation submission failed")

// ErrNoTargets reports an empty target set.
var ErrNoTargets = errors.New("no target nodes")

// Status is the state of one node within an operation.
type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusSucceeded
	StatusFailed
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in-progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusTimedOut:
		return "timed-out"
	}
	return "unknown"
}

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusTimedOut
}

// NodeStatus pairs a status with the backend's reason for it. Reason is
// empty unless the node failed.
type NodeStatus struct {
	State  Status
	Reason string
}

// Outcome is the rolled-up result of an operation.
type Outcome int

const (
	// OutcomeCompleted: every node succeeded.
	OutcomeCompleted Outcome = iota
	// OutcomePartiallyFailed: some nodes succeeded, some did not.
	OutcomePartiallyFailed
	// OutcomeFailed: no node succeeded and at least one failed.
	OutcomeFailed
	// OutcomeTimedOut: no node succeeded or failed; the deadline expired
	// with every node still pending or in progress.
	OutcomeTimedOut
	// OutcomeCancelled: the caller withdrew the operation before it
	// settled.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomePartiallyFailed:
		return "partially-failed"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed-out"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Backend is one remote service the orchestrator can drive. Poll returns a
// snapshot of whichever targets the service currently reports; omitted
// targets keep their previous state on the session side.
type Backend interface {
	// Name identifies the backend in logs and errors.
	Name() string
	// Submit starts the operation and returns the backend's job id.
	Submit(ctx context.Context, targets nodeset.Set) (string, error)
	// Poll fetches the current per-node state of the job.
	Poll(ctx context.Context, jobID string, targets nodeset.Set) (map[string]NodeStatus, error)
	// Cancel requests a best-effort stop of the job.
	Cancel(ctx context.Context, jobID string) error
}

// Report is the final account of an operation. Statuses holds every target
// exactly once.
type Report struct {
	Outcome  Outcome
	JobID    string
	Statuses map[string]NodeStatus
	Started  time.Time
	Finished time.Time
}

// Succeeded returns the nodes that finished successfully, sorted.
func (r Report) Succeeded() []string { return r.withState(StatusSucceeded) }

// Failed returns the nodes that failed, sorted.
func (r Report) Failed() []string { return r.withState(StatusFailed) }

// TimedOut returns the nodes still unfinished at the deadline, sorted.
func (r Report) TimedOut() []string { return r.withState(StatusTimedOut) }

func (r Report) withState(want Status) []string {
	var ids []string
	for id, st := range r.Statuses {
		if st.State == want {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Orchestrator submits operations and hands back pollable sessions.
type Orchestrator struct {
	tuning config.Tuning
	log    logr.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger.
func WithLogger(log logr.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// New builds an Orchestrator with the given tuning.
func New(tuning config.Tuning, opts ...Option) *Orchestrator {
	o := &Orchestrator{tuning: tuning, log: logr.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit starts an operation on the backend. A rejection wraps
// ErrSubmissionFailed and leaves nothing running.
func (o *Orchestrator) Submit(ctx context.Context, backend Backend, targets nodeset.Set) (*Session, error) {
	if targets.IsEmpty() {
		return nil, ErrNoTargets
	}

	jobID, err := backend.Submit(ctx, targets)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", backend.Name(), ErrSubmissionFailed, err)
	}
	o.log.Info("operation submitted", "backend", backend.Name(), "job", jobID, "targets", targets.Len())

	statuses := make(map[string]NodeStatus, targets.Len())
	for _, id := range targets.Strings() {
		statuses[id] = NodeStatus{State: StatusPending}
	}

	return &Session{
		backend:  backend,
		jobID:    jobID,
		targets:  targets,
		tuning:   o.tuning,
		log:      o.log.WithValues("backend", backend.Name(), "job", jobID),
		statuses: statuses,
	}, nil
}
