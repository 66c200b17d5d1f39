package orchestrator

import (
	"context"
	"fmt"

	"github.com/shastaops/csmgo/internal/csm/pcs"
	"github.com/shastaops/csmgo/internal/nodeset"
)

// PowerBackend drives a power transition through the power control service.
type PowerBackend struct {
	pcs *pcs.Client
	op  pcs.Operation

	// DeadlineMinutes is passed to the service as its own per-task
	// deadline. Zero lets the service default apply; the orchestrator's
	// operation timeout still bounds the overall wait.
	DeadlineMinutes int
}

// NewPowerBackend builds a backend for one power operation.
func NewPowerBackend(client *pcs.Client, op pcs.Operation) *PowerBackend {
	return &PowerBackend{pcs: client, op: op}
}

func (b *PowerBackend) Name() string { return "power" }

func (b *PowerBackend) Submit(ctx context.Context, targets nodeset.Set) (string, error) {
	locations := make([]pcs.Location, 0, targets.Len())
	for _, id := range targets.Strings() {
		locations = append(locations, pcs.Location{Xname: id})
	}
	return b.pcs.CreateTransition(ctx, pcs.TransitionRequest{
		Operation:           b.op,
		TaskDeadlineMinutes: b.DeadlineMinutes,
		Location:            locations,
	})
}

func (b *PowerBackend) Poll(ctx context.Context, jobID string, _ nodeset.Set) (map[string]NodeStatus, error) {
	transition, err := b.pcs.Transition(ctx, jobID)
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]NodeStatus, len(transition.Tasks))
	for _, task := range transition.Tasks {
		statuses[task.Xname] = powerTaskStatus(task)
	}
	return statuses, nil
}

func (b *PowerBackend) Cancel(ctx context.Context, jobID string) error {
	return b.pcs.AbortTransition(ctx, jobID)
}

func powerTaskStatus(task pcs.Task) NodeStatus {
	switch task.TaskStatus {
	case pcs.TaskNew:
		return NodeStatus{State: StatusPending}
	case pcs.TaskInProgress:
		return NodeStatus{State: StatusInProgress}
	case pcs.TaskSucceeded:
		return NodeStatus{State: StatusSucceeded}
	case pcs.TaskFailed, pcs.TaskUnsupported:
		reason := task.Error
		if reason == "" {
			reason = task.TaskStatusDescrip
		}
		if reason == "" {
			reason = task.TaskStatus
		}
		return NodeStatus{State: StatusFailed, Reason: reason}
	default:
		return NodeStatus{State: StatusFailed, Reason: fmt.Sprintf("unknown task status %q", task.TaskStatus)}
	}
}
