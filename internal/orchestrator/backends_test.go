package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shastaops/csmgo/internal/csm/bos"
	"github.com/shastaops/csmgo/internal/csm/cfs"
	"github.com/shastaops/csmgo/internal/csm/pcs"
)

func TestPowerTaskStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		task pcs.Task
		want NodeStatus
	}{
		{pcs.Task{TaskStatus: pcs.TaskNew}, NodeStatus{State: StatusPending}},
		{pcs.Task{TaskStatus: pcs.TaskInProgress}, NodeStatus{State: StatusInProgress}},
		{pcs.Task{TaskStatus: pcs.TaskSucceeded}, NodeStatus{State: StatusSucceeded}},
		{pcs.Task{TaskStatus: pcs.TaskFailed, Error: "BMC unreachable"}, NodeStatus{State: StatusFailed, Reason: "BMC unreachable"}},
		{pcs.Task{TaskStatus: pcs.TaskUnsupported}, NodeStatus{State: StatusFailed, Reason: pcs.TaskUnsupported}},
		{pcs.Task{TaskStatus: pcs.TaskFailed, TaskStatusDescrip: "power cap"}, NodeStatus{State: StatusFailed, Reason: "power cap"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, powerTaskStatus(tc.task), "status %q", tc.task.TaskStatus)
	}
}

func TestBootComponentStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		comp bos.Component
		done bool
		want NodeStatus
	}{
		{"error during run", bos.Component{Error: "artifact missing", Session: "s1"}, false, NodeStatus{State: StatusFailed, Reason: "artifact missing"}},
		{"unstamped before session starts", bos.Component{}, false, NodeStatus{State: StatusPending}},
		{"released after completion", bos.Component{}, true, NodeStatus{State: StatusSucceeded}},
		{"error surfaced at completion", bos.Component{Error: "artifact missing"}, true, NodeStatus{State: StatusFailed, Reason: "artifact missing"}},
		{"foreign session", bos.Component{Session: "other"}, false, NodeStatus{State: StatusFailed, Reason: "node claimed by session other"}},
		{"in phase", bos.Component{Session: "s1", Status: bos.ComponentStatus{Phase: bos.PhasePoweringOn}}, false, NodeStatus{State: StatusInProgress}},
		{"queued", bos.Component{Session: "s1"}, false, NodeStatus{State: StatusPending}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, bootComponentStatus(tc.comp, "s1", tc.done), tc.name)
	}
}

func TestConfigComponentStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		comp cfs.Component
		done bool
		want NodeStatus
	}{
		{"configured after session", cfs.Component{Status: cfs.StatusConfigured}, true, NodeStatus{State: StatusSucceeded}},
		{"stale configured mid-session", cfs.Component{Status: cfs.StatusConfigured}, false, NodeStatus{State: StatusPending}},
		{"failed after session", cfs.Component{Status: cfs.StatusFailed, ErrorCount: 2}, true, NodeStatus{State: StatusFailed, Reason: "configuration failed after 2 attempts"}},
		{"converging", cfs.Component{Status: cfs.StatusPending}, false, NodeStatus{State: StatusInProgress}},
		{"unconfigured after session", cfs.Component{Status: cfs.StatusUnconfigured}, true, NodeStatus{State: StatusPending}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, configComponentStatus(tc.comp, tc.done), tc.name)
	}
}
