package orchestrator

import (
	"context"
	"maps"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/shastaops/csmgo/internal/config"
	"github.com/shastaops/csmgo/internal/nodeset"
)

// Session is one submitted operation being driven to completion. Snapshot
// may be read concurrently while Run is polling.
type Session struct {
	backend Backend
	jobID   string
	targets nodeset.Set
	tuning  config.Tuning
	log     logr.Logger

	mu       sync.Mutex
	statuses map[string]NodeStatus
}

// JobID returns the backend's identifier for the operation.
func (s *Session) JobID() string { return s.jobID }

// Snapshot returns a copy of the current per-node statuses. Updates are
// applied one whole poll cycle at a time, so a snapshot never mixes two
// cycles.
func (s *Session) Snapshot() map[string]NodeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.statuses)
}

// Run polls the backend until every node reaches a terminal state, the
// operation deadline passes, or ctx is cancelled. It always returns a
// Report accounting for every target; the error is non-nil only for
// cancellation, where it carries context.Canceled after the best-effort
// backend cancel has been attempted.
func (s *Session) Run(ctx context.Context) (Report, error) {
	started := time.Now()
	deadline := started.Add(s.tuning.OperationTimeout)

	opCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for {
		statuses, err := s.backend.Poll(opCtx, s.jobID, s.targets)
		if err != nil {
			if opCtx.Err() != nil {
				return s.finish(ctx, started), s.runErr(ctx)
			}
			// Transient poll failures keep the last snapshot; the next
			// cycle retries.
			s.log.V(1).Info("poll failed, keeping last snapshot", "error", err)
		} else {
			s.apply(statuses)
			if s.settled() {
				s.log.Info("operation settled", "elapsed", time.Since(started).Round(time.Millisecond))
				return s.finish(ctx, started), nil
			}
		}

		select {
		case <-opCtx.Done():
			return s.finish(ctx, started), s.runErr(ctx)
		case <-time.After(s.pollDelay()):
		}
	}
}

// pollDelay jitters the poll interval so many concurrent sessions do not
// align their request bursts.
func (s *Session) pollDelay() time.Duration {
	interval := s.tuning.PollInterval
	if s.tuning.PollJitter <= 0 {
		return interval
	}
	spread := float64(interval) * s.tuning.PollJitter
	return interval + time.Duration((rand.Float64()*2-1)*spread)
}

// apply merges one poll cycle. Targets omitted from the cycle keep their
// previous state; terminal states never regress.
func (s *Session) apply(cycle map[string]NodeStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, current := range s.statuses {
		next, ok := cycle[id]
		if !ok || current.State.Terminal() {
			continue
		}
		s.statuses[id] = next
	}
}

func (s *Session) settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.statuses {
		if !st.State.Terminal() {
			return false
		}
	}
	return true
}

// runErr distinguishes caller cancellation from the operation deadline.
func (s *Session) runErr(ctx context.Context) error {
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return nil
}

// finish closes out the session: on caller cancellation it asks the
// backend to stop within the cancel grace period, on deadline expiry it
// marks every unfinished node timed out, and in all cases it rolls up the
// outcome.
func (s *Session) finish(ctx context.Context, started time.Time) Report {
	cancelled := ctx.Err() != nil

	if cancelled {
		// The caller's context is gone; give the cancel its own bounded one.
		cancelCtx, release := context.WithTimeout(context.WithoutCancel(ctx), s.tuning.CancelGrace)
		defer release()
		if err := s.backend.Cancel(cancelCtx, s.jobID); err != nil {
			s.log.Info("backend cancel failed", "error", err)
		} else {
			s.log.Info("operation cancelled")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !cancelled {
		for id, st := range s.statuses {
			if !st.State.Terminal() {
				s.statuses[id] = NodeStatus{State: StatusTimedOut, Reason: "deadline exceeded"}
			}
		}
	}

	report := Report{
		JobID:    s.jobID,
		Statuses: maps.Clone(s.statuses),
		Started:  started,
		Finished: time.Now(),
	}
	report.Outcome = s.outcome(cancelled, report.Statuses)
	return report
}

// outcome rolls per-node results up to one verdict.
func (s *Session) outcome(cancelled bool, statuses map[string]NodeStatus) Outcome {
	if cancelled {
		return OutcomeCancelled
	}

	var succeeded, failed, timedOut int
	for _, st := range statuses {
		switch st.State {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusTimedOut:
			timedOut++
		}
	}

	switch {
	case succeeded == len(statuses):
		return OutcomeCompleted
	case succeeded > 0 && (failed > 0 || timedOut > 0):
		return OutcomePartiallyFailed
	case failed > 0:
		return OutcomeFailed
	default:
		return OutcomeTimedOut
	}
}
