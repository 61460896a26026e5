// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package component_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

func TestComponent(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Component Suite")
}

type fakeController struct {
	name      string
	deps      []string
	createErr error
	deleteErr error
	created   *[]string
	deleted   *[]string
}

func (f *fakeController) Name() string           { return f.name }
func (f *fakeController) Dependencies() []string { return f.deps }

func (f *fakeController) Create(context.Context, *component.Operation) error {
	if f.created != nil {
		*f.created = append(*f.created, f.name)
	}
	return f.createErr
}

func (f *fakeController) Delete(context.Context, *component.Operation) error {
	if f.deleted != nil {
		*f.deleted = append(*f.deleted, f.name)
	}
	return f.deleteErr
}

var _ = Describe("Registry", func() {
	var registry *component.Registry

	BeforeEach(func() {
		registry = component.NewRegistry().Add(
			&fakeController{name: "couchdb"},
			&fakeController{name: "zookeeper"},
			&fakeController{name: "kafka", deps: []string{"zookeeper"}},
			&fakeController{name: "openwhisk", deps: []string{"couchdb", "kafka"}},
			&fakeController{name: "endpoint", deps: []string{"openwhisk"}},
		)
	})

	It("orders creation along dependencies", func() {
		sorted, err := registry.CreationOrder([]string{"endpoint", "openwhisk", "kafka", "zookeeper", "couchdb"})
		Expect(err).NotTo(HaveOccurred())

		names := controllerNames(sorted)
		Expect(indexOf(names, "zookeeper")).To(BeNumerically("<", indexOf(names, "kafka")))
		Expect(indexOf(names, "kafka")).To(BeNumerically("<", indexOf(names, "openwhisk")))
		Expect(indexOf(names, "couchdb")).To(BeNumerically("<", indexOf(names, "openwhisk")))
		Expect(indexOf(names, "openwhisk")).To(BeNumerically("<", indexOf(names, "endpoint")))
	})

	It("does not pull in unrequested dependencies", func() {
		sorted, err := registry.CreationOrder([]string{"openwhisk", "couchdb"})
		Expect(err).NotTo(HaveOccurred())
		Expect(controllerNames(sorted)).To(Equal([]string{"couchdb", "openwhisk"}))
	})

	It("reverses the order for deletion", func() {
		sorted, err := registry.DeletionOrder([]string{"zookeeper", "kafka"})
		Expect(err).NotTo(HaveOccurred())
		Expect(controllerNames(sorted)).To(Equal([]string{"kafka", "zookeeper"}))
	})

	It("rejects unknown components", func() {
		_, err := registry.CreationOrder([]string{"mainframe"})
		Expect(err).To(MatchError(ContainSubstring("mainframe")))
	})

	It("detects dependency cycles", func() {
		cyclic := component.NewRegistry().Add(
			&fakeController{name: "a", deps: []string{"b"}},
			&fakeController{name: "b", deps: []string{"a"}},
		)
		_, err := cyclic.CreationOrder([]string{"a", "b"})
		Expect(err).To(MatchError(ContainSubstring("cycle")))
	})

	It("panics on duplicate registration", func() {
		Expect(func() {
			registry.Add(&fakeController{name: "couchdb"})
		}).To(Panic())
	})
})

var _ = Describe("Patch", func() {
	var op *component.Operation

	BeforeEach(func() {
		op = &component.Operation{}
	})

	It("maps a successful create to the on state", func() {
		state, err := component.Patch(context.Background(), op, &fakeController{name: "redis"}, component.ActionCreate)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(Equal(whiskv1.ComponentOn))
	})

	It("maps a successful delete to the off state", func() {
		state, err := component.Patch(context.Background(), op, &fakeController{name: "redis"}, component.ActionDelete)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(Equal(whiskv1.ComponentOff))
	})

	It("maps a failed create to the error state", func() {
		boom := component.NewExternalSystemError("minio", errors.New("bucket busy"))
		state, err := component.Patch(context.Background(), op, &fakeController{name: "minio", createErr: boom}, component.ActionUpdate)
		Expect(err).To(HaveOccurred())
		Expect(state).To(Equal(whiskv1.ComponentError))

		var external *component.ExternalSystemError
		Expect(errors.As(err, &external)).To(BeTrue())
		Expect(external.System).To(Equal("minio"))
	})
})

var _ = Describe("error kinds", func() {
	It("keeps the wrapped cause reachable", func() {
		cause := errors.New("connection reset")
		err := component.NewTransientError(cause)
		Expect(errors.Is(err, cause)).To(BeTrue())

		var transient *component.TransientError
		Expect(errors.As(wrapped(err), &transient)).To(BeTrue())
	})

	It("formats a transient error without a cause", func() {
		err := component.NewTransientError(nil)
		Expect(err.Error()).To(Equal("transient failure"))
		Expect(component.IsTransientError(err)).To(BeTrue())
	})

	It("formats fatal configuration errors with the key", func() {
		err := component.NewFatalConfigError("nuvolaris.storageclass", "no storage class available")
		Expect(err.Error()).To(ContainSubstring("nuvolaris.storageclass"))
	})
})

func wrapped(err error) error {
	return errors.Join(errors.New("outer"), err)
}

func controllerNames(controllers []component.Controller) []string {
	var names []string
	for _, c := range controllers {
		names = append(names, c.Name())
	}
	return names
}

func indexOf(list []string, want string) int {
	for i, s := range list {
		if s == want {
			return i
		}
	}
	return -1
}
