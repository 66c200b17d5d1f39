package console

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/remotecommand"
)

// Console-server pods run in the management cluster; this is where and how
// to find them.
const (
	consoleNamespace = "services"
	consoleLabel     = "app.kubernetes.io/name=cray-console-node"
)

// KubeOpener opens console streams by exec'ing the console client inside a
// console-server pod.
type KubeOpener struct {
	clientset kubernetes.Interface
	namespace string
	label     string

	// newExecutor is swappable for tests; the default dials SPDY against
	// the apiserver.
	newExecutor func(podName string, opts *corev1.PodExecOptions) (remotecommand.Executor, error)
}

// NewKubeOpener builds an opener from a kubeconfig file.
func NewKubeOpener(kubeconfigPath string) (*KubeOpener, error) {
	restCfg, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("build kubeconfig: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}

	k := &KubeOpener{
		clientset: clientset,
		namespace: consoleNamespace,
		label:     consoleLabel,
	}
	k.newExecutor = func(podName string, opts *corev1.PodExecOptions) (remotecommand.Executor, error) {
		req := clientset.CoreV1().RESTClient().Post().
			Resource("pods").
			Namespace(k.namespace).
			Name(podName).
			SubResource("exec").
			VersionedParams(opts, scheme.ParameterCodec)
		return remotecommand.NewSPDYExecutor(restCfg, "POST", req.URL())
	}
	return k, nil
}

// Open finds a ready console-server pod and attaches an interactive conman
// session for the node.
func (k *KubeOpener) Open(ctx context.Context, node string, streams Streams) error {
	podName, err := k.findConsolePod(ctx, node)
	if err != nil {
		return err
	}

	executor, err := k.newExecutor(podName, &corev1.PodExecOptions{
		Command: []string{"conman", "-j", node},
		Stdin:   streams.In != nil,
		Stdout:  true,
		Stderr:  !streams.TTY,
		TTY:     streams.TTY,
	})
	if err != nil {
		return fmt.Errorf("prepare exec on %s: %w", podName, err)
	}

	return executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdin:  streams.In,
		Stdout: streams.Out,
		Stderr: streams.ErrOut,
		Tty:    streams.TTY,
	})
}

// findConsolePod picks a running, ready console-server pod.
func (k *KubeOpener) findConsolePod(ctx context.Context, node string) (string, error) {
	pods, err := k.clientset.CoreV1().Pods(k.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: k.label,
	})
	if err != nil {
		return "", fmt.Errorf("list console pods: %w", err)
	}

	for _, pod := range pods.Items {
		if isPodReady(&pod) {
			return pod.Name, nil
		}
	}
	return "", fmt.Errorf("console %s: no ready console-server pod matches %q in %s", node, k.label, k.namespace)
}

func isPodReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}
	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady && condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}
