// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package fake provides an in-memory kube.Interface for component tests. It
// records every adapter call and serves reads from a controller-runtime fake
// client.
package fake

import (
	"context"
	"strings"

	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	fakeclient "sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/nuvolaris/nuvolaris-operator/pkg/kube"
)

// Fake implements kube.Interface by recording calls. Query, Exec and
// RunScript answers are configured through the respective maps.
type Fake struct {
	Applied   []client.Object
	Deleted   []client.Object
	Waits     []string
	Scripts   []string
	Execs     [][]string
	Copies    map[string][]byte
	Queries   map[string][]string
	ExecOut   map[string]string
	ScriptOut string

	WaitErr error

	c client.Client
}

var _ kube.Interface = &Fake{}

// New returns a Fake backed by a fresh fake client holding the given objects.
func New(objs ...client.Object) *Fake {
	return NewWithScheme(clientgoscheme.Scheme, objs...)
}

// NewWithScheme returns a Fake whose client uses the given scheme.
func NewWithScheme(scheme *runtime.Scheme, objs ...client.Object) *Fake {
	return &Fake{
		Copies:  map[string][]byte{},
		Queries: map[string][]string{},
		ExecOut: map[string]string{},
		c:       fakeclient.NewClientBuilder().WithScheme(scheme).WithObjects(objs...).Build(),
	}
}

func (f *Fake) Apply(ctx context.Context, owner client.Object, objs ...client.Object) error {
	f.Applied = append(f.Applied, objs...)
	return nil
}

func (f *Fake) DeleteAll(ctx context.Context, objs ...client.Object) error {
	for i := len(objs) - 1; i >= 0; i-- {
		f.Deleted = append(f.Deleted, objs[i])
	}
	return nil
}

func (f *Fake) Query(ctx context.Context, obj client.Object, expression string) ([]string, error) {
	return f.Queries[expression], nil
}

func (f *Fake) WaitForPodReady(ctx context.Context, namespace, labelSelector string) error {
	f.Waits = append(f.Waits, labelSelector)
	return f.WaitErr
}

func (f *Fake) WaitForPhase(ctx context.Context, obj client.Object, expected string) error {
	f.Waits = append(f.Waits, obj.GetName()+"="+expected)
	return f.WaitErr
}

func (f *Fake) Client() client.Client {
	return f.c
}

func (f *Fake) Exec(ctx context.Context, namespace, pod, container string, argv ...string) (string, error) {
	f.Execs = append(f.Execs, argv)
	return f.ExecOut[strings.Join(argv, " ")], nil
}

func (f *Fake) Copy(ctx context.Context, namespace, pod, container, remotePath string, content []byte) error {
	f.Copies[remotePath] = content
	return nil
}

func (f *Fake) RunScript(ctx context.Context, namespace, labelSelector, script string) (string, error) {
	f.Scripts = append(f.Scripts, script)
	return f.ScriptOut, nil
}

// AppliedNames returns "Kind/name" for every applied object, in order.
func (f *Fake) AppliedNames() []string {
	names := make([]string, 0, len(f.Applied))
	for _, obj := range f.Applied {
		names = append(names, obj.GetObjectKind().GroupVersionKind().Kind+"/"+obj.GetName())
	}
	return names
}
