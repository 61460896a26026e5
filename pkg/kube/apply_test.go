// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package kube_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/kube"
)

func TestKube(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Kube Adapter Suite")
}

var _ = Describe("Clients", func() {
	var (
		ctx     context.Context
		scheme  *runtime.Scheme
		c       client.Client
		clients *kube.Clients
		owner   *whiskv1.Whisk
	)

	BeforeEach(func() {
		ctx = context.Background()

		scheme = runtime.NewScheme()
		Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())
		Expect(whiskv1.AddToScheme(scheme)).To(Succeed())

		owner = &whiskv1.Whisk{
			ObjectMeta: metav1.ObjectMeta{Name: "controller", Namespace: "nuvolaris", UID: "owner-uid"},
		}

		c = fake.NewClientBuilder().WithScheme(scheme).WithObjects(owner).Build()
		clients = kube.NewClients(c, nil, nil, scheme)
	})

	configMap := func() *corev1.ConfigMap {
		return &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: "config", Namespace: "nuvolaris"},
			Data:       map[string]string{"key": "value"},
		}
	}

	Describe("#Apply", func() {
		It("should create the manifest with an owner reference", func() {
			Expect(clients.Apply(ctx, owner, configMap())).To(Succeed())

			result := &corev1.ConfigMap{}
			Expect(c.Get(ctx, client.ObjectKey{Namespace: "nuvolaris", Name: "config"}, result)).To(Succeed())
			Expect(result.Data).To(HaveKeyWithValue("key", "value"))
			Expect(result.OwnerReferences).To(HaveLen(1))
			Expect(result.OwnerReferences[0].Name).To(Equal("controller"))
			Expect(result.Annotations).To(HaveKey(kube.AnnotationAppliedHash))
		})

		It("should not rewrite an unchanged manifest", func() {
			Expect(clients.Apply(ctx, owner, configMap())).To(Succeed())

			first := &corev1.ConfigMap{}
			Expect(c.Get(ctx, client.ObjectKey{Namespace: "nuvolaris", Name: "config"}, first)).To(Succeed())

			Expect(clients.Apply(ctx, owner, configMap())).To(Succeed())

			second := &corev1.ConfigMap{}
			Expect(c.Get(ctx, client.ObjectKey{Namespace: "nuvolaris", Name: "config"}, second)).To(Succeed())
			Expect(second.ResourceVersion).To(Equal(first.ResourceVersion))
		})

		It("should update a changed manifest", func() {
			Expect(clients.Apply(ctx, owner, configMap())).To(Succeed())

			changed := configMap()
			changed.Data["key"] = "new-value"
			Expect(clients.Apply(ctx, owner, changed)).To(Succeed())

			result := &corev1.ConfigMap{}
			Expect(c.Get(ctx, client.ObjectKey{Namespace: "nuvolaris", Name: "config"}, result)).To(Succeed())
			Expect(result.Data).To(HaveKeyWithValue("key", "new-value"))
		})
	})

	Describe("#DeleteAll", func() {
		It("should delete existing manifests and tolerate missing ones", func() {
			Expect(clients.Apply(ctx, owner, configMap())).To(Succeed())

			missing := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "missing", Namespace: "nuvolaris"}}
			Expect(clients.DeleteAll(ctx, configMap(), missing)).To(Succeed())

			result := &corev1.ConfigMap{}
			err := c.Get(ctx, client.ObjectKey{Namespace: "nuvolaris", Name: "config"}, result)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("#Query", func() {
		It("should evaluate a jsonpath against the live object", func() {
			service := &corev1.Service{
				ObjectMeta: metav1.ObjectMeta{Name: "ingress", Namespace: "nuvolaris"},
				Status: corev1.ServiceStatus{
					LoadBalancer: corev1.LoadBalancerStatus{
						Ingress: []corev1.LoadBalancerIngress{{IP: "142.251.163.105"}},
					},
				},
			}
			Expect(c.Create(ctx, service)).To(Succeed())

			values, err := clients.Query(ctx, &corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "ingress", Namespace: "nuvolaris"}}, "{.status.loadBalancer.ingress[*].ip}")
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"142.251.163.105"}))
		})

		It("should return nothing for a missing field", func() {
			Expect(clients.Apply(ctx, owner, configMap())).To(Succeed())

			values, err := clients.Query(ctx, &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "config", Namespace: "nuvolaris"}}, "{.status.phase}")
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(BeEmpty())
		})
	})

	Describe("#WaitForPodReady", func() {
		It("should succeed when a matching pod is ready", func() {
			pod := &corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Name: "couchdb-0", Namespace: "nuvolaris", Labels: map[string]string{"app": "couchdb"}},
				Status: corev1.PodStatus{
					Phase:      corev1.PodRunning,
					Conditions: []corev1.PodCondition{{Type: corev1.PodReady, Status: corev1.ConditionTrue}},
				},
			}
			Expect(c.Create(ctx, pod)).To(Succeed())

			Expect(clients.WaitForPodReady(ctx, "nuvolaris", "app=couchdb")).To(Succeed())
		})
	})
})
