// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package kube is the thin adapter every cluster interaction funnels through:
// apply and delete manifest lists, query resource fields, wait for readiness
// conditions, and execute commands inside pods.
package kube

import (
	"context"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Interface is the adapter contract used by the component controllers.
type Interface interface {
	Applier
	PodRunner
}

// Applier covers the manifest-level operations. It is satisfied by Clients
// and, in tests, by a fake built on the controller-runtime fake client.
type Applier interface {
	// Apply posts the manifests in list order, owned by owner. Unchanged
	// manifests are skipped, conflicts are re-read and retried.
	Apply(ctx context.Context, owner client.Object, objs ...client.Object) error
	// DeleteAll deletes the manifests in reverse order, tolerating not-found.
	DeleteAll(ctx context.Context, objs ...client.Object) error
	// Query evaluates a JSONPath expression against a live object and returns
	// the matched values.
	Query(ctx context.Context, obj client.Object, expression string) ([]string, error)
	// WaitForPodReady blocks until a pod matching the label selector reports
	// the Ready condition, or the deadline passes.
	WaitForPodReady(ctx context.Context, namespace, labelSelector string) error
	// WaitForPhase blocks until the object's .status.phase equals the expected
	// value, or the deadline passes.
	WaitForPhase(ctx context.Context, obj client.Object, expected string) error
	// Client exposes the underlying controller-runtime client.
	Client() client.Client
}

// PodRunner covers command execution inside pods.
type PodRunner interface {
	// Exec runs argv inside the named pod and returns the combined stdout.
	Exec(ctx context.Context, namespace, pod, container string, argv ...string) (string, error)
	// Copy streams content into a file inside the named pod.
	Copy(ctx context.Context, namespace, pod, container, remotePath string, content []byte) error
	// RunScript copies and executes a shell script inside the first pod
	// matching the label selector, then removes it again.
	RunScript(ctx context.Context, namespace, labelSelector, script string) (string, error)
}

// Clients bundles the controller-runtime client with the raw clientset needed
// for pod exec.
type Clients struct {
	client    client.Client
	clientset kubernetes.Interface
	config    *rest.Config
	scheme    *runtime.Scheme
}

var _ Interface = &Clients{}

// NewClients returns a Clients using the given controller-runtime client and
// rest config.
func NewClients(c client.Client, clientset kubernetes.Interface, config *rest.Config, scheme *runtime.Scheme) *Clients {
	return &Clients{client: c, clientset: clientset, config: config, scheme: scheme}
}

// Client returns the underlying controller-runtime client.
func (c *Clients) Client() client.Client {
	return c.client
}
