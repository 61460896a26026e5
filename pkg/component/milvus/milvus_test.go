// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package milvus

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	kubefake "github.com/nuvolaris/nuvolaris-operator/pkg/kube/fake"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
	"github.com/nuvolaris/nuvolaris-operator/pkg/templates"
)

func TestMilvus(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Milvus Component Suite")
}

type fakeVector struct {
	calls    []string
	failures map[string]error
	closed   bool
}

func (f *fakeVector) SetupUser(_ context.Context, username, _, database string) error {
	call := fmt.Sprintf("setup %s@%s", username, database)
	f.calls = append(f.calls, call)
	return f.failures[call]
}

func (f *fakeVector) Close() error {
	f.closed = true
	return nil
}

type fakeStore struct {
	buckets  []string
	endpoint string
	err      error
}

func (f *fakeStore) EnsureBucket(_ context.Context, name string) error {
	f.buckets = append(f.buckets, name)
	return f.err
}

var _ = Describe("Controller", func() {
	var (
		vector  *fakeVector
		store   *fakeStore
		kube    *kubefake.Fake
		op      *component.Operation
		ctrl    *controller
		ctx     context.Context
		address string
	)

	BeforeEach(func() {
		vector = &fakeVector{failures: map[string]error{}}
		store = &fakeStore{}
		kube = kubefake.New()

		op = &component.Operation{
			Config:    config.New(),
			Kube:      kube,
			Renderer:  templates.NewRenderer(whiskv1.OperatorNamespace),
			Owner:     &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "owner"}},
			Namespace: whiskv1.OperatorNamespace,
			Log:       logr.Discard(),
		}
		ctrl = &controller{
			connect: func(_ context.Context, addr, _ string, _ bool) (vectorAPI, error) {
				address = addr
				return vector, nil
			},
			connectStore: func(endpoint, _, _ string) (storeAPI, error) {
				store.endpoint = endpoint
				return store, nil
			},
		}
		ctx = context.Background()
	})

	It("provisions the coordinator user before the deployment", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		Expect(kube.Scripts).To(HaveLen(1))
		Expect(kube.Scripts[0]).To(ContainSubstring("milvus"))
		Expect(kube.Scripts[0]).To(ContainSubstring("milvus-role"))
	})

	It("creates the segment bucket on the object store", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		Expect(store.endpoint).To(Equal("http://nuvolaris-minio.nuvolaris.svc.cluster.local:9000"))
		Expect(store.buckets).To(ConsistOf("vectors"))
	})

	It("deploys the chart, waits and sets up the platform user", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		Expect(kube.Waits).To(ContainElement("app=nuvolaris-milvus"))
		Expect(address).To(Equal("nuvolaris-milvus.nuvolaris.svc.cluster.local:19530"))
		Expect(vector.calls).To(ConsistOf("setup nuvolaris@nuvolaris"))
		Expect(vector.closed).To(BeTrue())
	})

	It("annotates the platform ConfigMap with the endpoint and token", func() {
		op.Config.Put("milvus.nuvolaris.password", "v3ctor")

		Expect(ctrl.Create(ctx, op)).To(Succeed())

		cm := &corev1.ConfigMap{}
		key := types.NamespacedName{Namespace: whiskv1.OperatorNamespace, Name: whiskv1.ConfigConfigMapName}
		Expect(kube.Client().Get(ctx, key, cm)).To(Succeed())
		Expect(cm.Annotations).To(HaveKeyWithValue("milvus_host", "nuvolaris-milvus.nuvolaris.svc.cluster.local"))
		Expect(cm.Annotations).To(HaveKeyWithValue("milvus_port", "19530"))
		Expect(cm.Annotations).To(HaveKeyWithValue("milvus_token", "nuvolaris:v3ctor"))
		Expect(cm.Annotations).To(HaveKeyWithValue("milvus_db_name", "nuvolaris"))
	})

	It("reports a bucket failure against the object store", func() {
		store.err = fmt.Errorf("connection refused")

		err := ctrl.Create(ctx, op)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("minio"))
	})

	It("reports a refused user setup against the vector database", func() {
		vector.failures["setup nuvolaris@nuvolaris"] = fmt.Errorf("permission denied")

		err := ctrl.Create(ctx, op)
		Expect(err).To(HaveOccurred())

		var external *component.ExternalSystemError
		Expect(err).To(BeAssignableToTypeOf(external))
	})

	It("removes the chart and the coordinator user on delete", func() {
		Expect(ctrl.Delete(ctx, op)).To(Succeed())

		Expect(kube.Deleted).NotTo(BeEmpty())
		Expect(kube.Scripts).To(HaveLen(1))
		Expect(kube.Scripts[0]).To(ContainSubstring("milvus"))
	})
})
