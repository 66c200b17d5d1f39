package orchestrator

import (
	"context"
	"strings"

	"github.com/shastaops/csmgo/internal/csm/bos"
	"github.com/shastaops/csmgo/internal/nodeset"
)

// BootBackend drives a boot, reboot, or shutdown session through the boot
// orchestration service.
type BootBackend struct {
	bos      *bos.Client
	template string
	op       bos.SessionOperation
}

// NewBootBackend builds a backend for one boot operation against a session
// template.
func NewBootBackend(client *bos.Client, template string, op bos.SessionOperation) *BootBackend {
	return &BootBackend{bos: client, template: template, op: op}
}

func (b *BootBackend) Name() string { return "boot" }

func (b *BootBackend) Submit(ctx context.Context, targets nodeset.Set) (string, error) {
	return b.bos.CreateSession(ctx, bos.SessionRequest{
		TemplateName: b.template,
		Operation:    b.op,
		Limit:        strings.Join(targets.Strings(), ","),
	})
}

// Poll reads per-node boot state. The session name on a component clears
// once the service is done with it, but that only marks success after the
// session itself has finished: right after submission the service has not
// stamped the components yet, and an unstamped node must not read as done.
func (b *BootBackend) Poll(ctx context.Context, jobID string, targets nodeset.Set) (map[string]NodeStatus, error) {
	sess, err := b.bos.Session(ctx, jobID)
	if err != nil {
		return nil, err
	}
	sessionDone := sess.Status.Status == bos.SessionComplete

	comps, err := b.bos.Components(ctx, targets.Strings())
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]NodeStatus, len(comps))
	for _, comp := range comps {
		statuses[comp.ID] = bootComponentStatus(comp, jobID, sessionDone)
	}
	return statuses, nil
}

func (b *BootBackend) Cancel(ctx context.Context, jobID string) error {
	return b.bos.DeleteSession(ctx, jobID)
}

func bootComponentStatus(comp bos.Component, session string, sessionDone bool) NodeStatus {
	switch {
	case comp.Session == session:
		if comp.Error != "" {
			return NodeStatus{State: StatusFailed, Reason: comp.Error}
		}
		if comp.Status.Phase != "" {
			return NodeStatus{State: StatusInProgress}
		}
		return NodeStatus{State: StatusPending}
	case comp.Session != "":
		// Claimed by another session; ours will not touch it.
		return NodeStatus{State: StatusFailed, Reason: "node claimed by session " + comp.Session}
	case sessionDone:
		// Session over and the node released; a leftover error string is
		// the session's verdict on it.
		if comp.Error != "" {
			return NodeStatus{State: StatusFailed, Reason: comp.Error}
		}
		return NodeStatus{State: StatusSucceeded}
	default:
		// Not stamped yet. Any error string here predates our session.
		return NodeStatus{State: StatusPending}
	}
}
