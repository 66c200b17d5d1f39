package console

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/tools/remotecommand"
)

func consolePod(name string, ready bool) *corev1.Pod {
	phase := corev1.PodRunning
	status := corev1.ConditionTrue
	if !ready {
		status = corev1.ConditionFalse
	}
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: consoleNamespace,
			Labels:    map[string]string{"app.kubernetes.io/name": "cray-console-node"},
		},
		Status: corev1.PodStatus{
			Phase:      phase,
			Conditions: []corev1.PodCondition{{Type: corev1.PodReady, Status: status}},
		},
	}
}

type fakeExecutor struct {
	streamed bool
	err      error
}

func (f *fakeExecutor) Stream(remotecommand.StreamOptions) error {
	return f.StreamWithContext(context.Background(), remotecommand.StreamOptions{})
}

func (f *fakeExecutor) StreamWithContext(context.Context, remotecommand.StreamOptions) error {
	f.streamed = true
	return f.err
}

func TestKubeOpener_PicksReadyPod(t *testing.T) {
	t.Parallel()

	clientset := k8sfake.NewSimpleClientset(
		consolePod("cray-console-node-0", false),
		consolePod("cray-console-node-1", true),
	)
	opener := &KubeOpener{
		clientset: clientset,
		namespace: consoleNamespace,
		label:     consoleLabel,
	}

	name, err := opener.findConsolePod(context.Background(), "x1000c0s0b0n0")
	require.NoError(t, err)
	assert.Equal(t, "cray-console-node-1", name)
}

func TestKubeOpener_NoReadyPod(t *testing.T) {
	t.Parallel()

	clientset := k8sfake.NewSimpleClientset(consolePod("cray-console-node-0", false))
	opener := &KubeOpener{
		clientset: clientset,
		namespace: consoleNamespace,
		label:     consoleLabel,
	}

	_, err := opener.findConsolePod(context.Background(), "x1000c0s0b0n0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ready console-server pod")
}

func TestKubeOpener_ExecCommand(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{}
	var gotPod string
	var gotOpts *corev1.PodExecOptions

	opener := &KubeOpener{
		clientset: k8sfake.NewSimpleClientset(consolePod("cray-console-node-0", true)),
		namespace: consoleNamespace,
		label:     consoleLabel,
		newExecutor: func(podName string, opts *corev1.PodExecOptions) (remotecommand.Executor, error) {
			gotPod, gotOpts = podName, opts
			return executor, nil
		},
	}

	err := opener.Open(context.Background(), "x1000c0s0b0n0", Streams{TTY: true})
	require.NoError(t, err)
	assert.True(t, executor.streamed)
	assert.Equal(t, "cray-console-node-0", gotPod)
	assert.Equal(t, []string{"conman", "-j", "x1000c0s0b0n0"}, gotOpts.Command)
	assert.True(t, gotOpts.TTY)
	assert.False(t, gotOpts.Stderr, "tty sessions merge stderr into the terminal stream")
}

func TestKubeOpener_StreamError(t *testing.T) {
	t.Parallel()

	opener := &KubeOpener{
		clientset: k8sfake.NewSimpleClientset(consolePod("cray-console-node-0", true)),
		namespace: consoleNamespace,
		label:     consoleLabel,
		newExecutor: func(string, *corev1.PodExecOptions) (remotecommand.Executor, error) {
			return &fakeExecutor{err: errors.New("connection reset")}, nil
		},
	}

	err := opener.Open(context.Background(), "x1000c0s0b0n0", Streams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
