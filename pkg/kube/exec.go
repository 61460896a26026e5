// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package kube

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Exec runs argv inside the named pod and returns the combined stdout. A
// non-zero exit status surfaces as an error carrying the stderr output.
func (c *Clients) Exec(ctx context.Context, namespace, pod, container string, argv ...string) (string, error) {
	return c.exec(ctx, namespace, pod, container, nil, argv...)
}

func (c *Clients) exec(ctx context.Context, namespace, pod, container string, stdin io.Reader, argv ...string) (string, error) {
	request := c.clientset.CoreV1().RESTClient().
		Post().
		Resource("pods").
		Namespace(namespace).
		Name(pod).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   argv,
			Stdin:     stdin != nil,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(c.config, "POST", request.URL())
	if err != nil {
		return "", fmt.Errorf("creating executor: %w", err)
	}

	var stdout, stderr bytes.Buffer
	if err := executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdin:  stdin,
		Stdout: &stdout,
		Stderr: &stderr,
	}); err != nil {
		return stdout.String(), fmt.Errorf("exec in pod %s/%s: %w (stderr: %s)", namespace, pod, err, stderr.String())
	}

	return stdout.String(), nil
}

// Copy streams content into a file inside the named pod.
func (c *Clients) Copy(ctx context.Context, namespace, pod, container, remotePath string, content []byte) error {
	_, err := c.exec(ctx, namespace, pod, container, bytes.NewReader(content), "sh", "-c", fmt.Sprintf("cat > %s", remotePath))
	return err
}

// RunScript copies a shell script into the first pod matching the label
// selector, executes it and removes it again. The copy, exec and cleanup are
// one atomic side effect from the caller's point of view.
func (c *Clients) RunScript(ctx context.Context, namespace, labelSelector, script string) (string, error) {
	pod, err := c.firstPod(ctx, namespace, labelSelector)
	if err != nil {
		return "", err
	}

	remotePath := fmt.Sprintf("/tmp/%s.sh", uuid.NewString())
	if err := c.Copy(ctx, namespace, pod, "", remotePath, []byte(script)); err != nil {
		return "", err
	}

	output, execErr := c.Exec(ctx, namespace, pod, "", "sh", remotePath)

	// Best-effort cleanup, the execution result wins.
	_, _ = c.Exec(ctx, namespace, pod, "", "rm", "-f", remotePath)

	return output, execErr
}

func (c *Clients) firstPod(ctx context.Context, namespace, labelSelector string) (string, error) {
	selector, err := labels.Parse(labelSelector)
	if err != nil {
		return "", fmt.Errorf("parsing selector %q: %w", labelSelector, err)
	}

	podList := &corev1.PodList{}
	if err := c.client.List(ctx, podList, client.InNamespace(namespace), client.MatchingLabelsSelector{Selector: selector}); err != nil {
		return "", err
	}

	for _, pod := range podList.Items {
		if pod.Status.Phase == corev1.PodRunning {
			return pod.Name, nil
		}
	}
	return "", fmt.Errorf("no running pod matching %q in namespace %q", labelSelector, namespace)
}
