// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package whisk

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	storagev1 "k8s.io/api/storage/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	fakeclient "sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	kubefake "github.com/nuvolaris/nuvolaris-operator/pkg/kube/fake"
)

// fakeComponent records its lifecycle calls in a log shared by the whole
// registry so ordering across components can be asserted.
type fakeComponent struct {
	name     string
	deps     []string
	log      *[]string
	failures map[string]error
	onCreate func(op *component.Operation)
}

func (f *fakeComponent) Name() string           { return f.name }
func (f *fakeComponent) Dependencies() []string { return f.deps }

func (f *fakeComponent) Create(_ context.Context, op *component.Operation) error {
	if f.onCreate != nil {
		f.onCreate(op)
	}
	call := "create " + f.name
	*f.log = append(*f.log, call)
	return f.failures[call]
}

func (f *fakeComponent) Delete(context.Context, *component.Operation) error {
	call := "delete " + f.name
	*f.log = append(*f.log, call)
	return f.failures[call]
}

var _ = Describe("Reconciler", func() {
	var (
		calls    []string
		failures map[string]error
		captured map[string]string
		c        client.Client
		r        *Reconciler
		whisk    *whiskv1.Whisk
		ctx      context.Context
	)

	indexOf := func(call string) int {
		for i, c := range calls {
			if c == call {
				return i
			}
		}
		return -1
	}

	reconcilePlatform := func() (reconcile.Result, error) {
		return r.Reconcile(ctx, reconcile.Request{
			NamespacedName: types.NamespacedName{Namespace: whisk.Namespace, Name: whisk.Name},
		})
	}

	fetchWhisk := func() *whiskv1.Whisk {
		fetched := &whiskv1.Whisk{}
		key := types.NamespacedName{Namespace: whisk.Namespace, Name: whisk.Name}
		Expect(c.Get(ctx, key, fetched)).To(Succeed())
		return fetched
	}

	newCluster := func(objs ...client.Object) {
		scheme := runtime.NewScheme()
		Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())
		Expect(whiskv1.AddToScheme(scheme)).To(Succeed())

		c = fakeclient.NewClientBuilder().
			WithScheme(scheme).
			WithObjects(whisk).
			WithStatusSubresource(&whiskv1.Whisk{}).
			Build()

		fake := func(name string, deps ...string) *fakeComponent {
			return &fakeComponent{name: name, deps: deps, log: &calls, failures: failures,
				onCreate: func(op *component.Operation) {
					captured["kube"] = op.Config.GetOrDefault("nuvolaris.kube", "auto")
					captured["storageclass"] = op.Config.Get("nuvolaris.storageclass")
				}}
		}
		r = &Reconciler{
			Client: c,
			Kube:   kubefake.NewWithScheme(scheme, objs...),
			Registry: component.NewRegistry().Add(
				fake("couchdb"),
				fake("openwhisk", "couchdb"),
				fake("endpoint", "openwhisk"),
				fake("redis"),
			),
		}
	}

	node := func(providerID string, labels map[string]string) *corev1.Node {
		return &corev1.Node{
			ObjectMeta: metav1.ObjectMeta{Name: "worker-0", Labels: labels},
			Spec:       corev1.NodeSpec{ProviderID: providerID},
		}
	}

	defaultStorageClass := func() *storagev1.StorageClass {
		return &storagev1.StorageClass{
			ObjectMeta: metav1.ObjectMeta{
				Name:        "standard",
				Annotations: map[string]string{DefaultStorageClassAnnotation: "true"},
			},
			Provisioner: "rancher.io/local-path",
		}
	}

	BeforeEach(func() {
		calls = nil
		failures = map[string]error{}
		captured = map[string]string{}
		whisk = &whiskv1.Whisk{
			ObjectMeta: metav1.ObjectMeta{Namespace: whiskv1.OperatorNamespace, Name: "controller"},
			Spec: whiskv1.WhiskSpec{
				Components: whiskv1.ComponentsSpec{CouchDB: true, OpenWhisk: true, Redis: true},
			},
		}
		ctx = context.Background()
	})

	It("creates every enabled component in dependency order on first contact", func() {
		newCluster(node("", nil), defaultStorageClass())

		result, err := reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())
		Expect(result.RequeueAfter).To(BeZero())

		Expect(calls).To(HaveLen(4))
		Expect(calls).To(ContainElement("create redis"))
		Expect(indexOf("create couchdb")).To(BeNumerically("<", indexOf("create openwhisk")))
		Expect(indexOf("create openwhisk")).To(BeNumerically("<", indexOf("create endpoint")))

		fetched := fetchWhisk()
		Expect(fetched.Finalizers).To(ContainElement(FinalizerName))
		Expect(fetched.Annotations).To(HaveKey(whiskv1.AnnotationLastAppliedSpec))
		Expect(fetched.Status.ComponentStates).To(HaveKeyWithValue("openwhisk", whiskv1.ComponentOn))
		Expect(meta.IsStatusConditionTrue(fetched.Status.Conditions, whiskv1.WhiskInitialized)).To(BeTrue())
		Expect(meta.IsStatusConditionTrue(fetched.Status.Conditions, whiskv1.WhiskReady)).To(BeTrue())
	})

	It("resolves the cluster defaults into the operation config", func() {
		newCluster(node("kind://docker/nuvolaris/nuvolaris-control-plane", nil), defaultStorageClass())

		_, err := reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())

		Expect(captured["kube"]).To(Equal("kind"))
		Expect(captured["storageclass"]).To(Equal("standard"))
	})

	It("does nothing when the declaration did not change", func() {
		newCluster(node("", nil), defaultStorageClass())

		_, err := reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())
		created := len(calls)

		_, err = reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(HaveLen(created))
	})

	It("deletes a component whose flag was turned off", func() {
		newCluster(node("", nil), defaultStorageClass())

		_, err := reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())
		calls = nil

		updated := fetchWhisk()
		updated.Spec.Components.Redis = false
		Expect(c.Update(ctx, updated)).To(Succeed())

		_, err = reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())

		Expect(calls).To(ConsistOf("delete redis"))
		Expect(fetchWhisk().Status.ComponentStates).To(HaveKeyWithValue("redis", whiskv1.ComponentOff))
	})

	It("marks a failing component and retries on transient errors", func() {
		newCluster(node("", nil), defaultStorageClass())
		failures["create openwhisk"] = component.NewTransientError(fmt.Errorf("pod not ready"))

		result, err := reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())
		Expect(result.RequeueAfter).To(Equal(transientRetryDelay))

		fetched := fetchWhisk()
		Expect(fetched.Status.ComponentStates).To(HaveKeyWithValue("openwhisk", whiskv1.ComponentError))
		Expect(fetched.Status.ComponentStates).To(HaveKeyWithValue("redis", whiskv1.ComponentOn))
		Expect(meta.IsStatusConditionTrue(fetched.Status.Conditions, whiskv1.WhiskReady)).To(BeFalse())
	})

	It("re-attempts a failed component on the next reconciliation", func() {
		newCluster(node("", nil), defaultStorageClass())
		failures["create openwhisk"] = component.NewTransientError(fmt.Errorf("pod not ready"))

		result, err := reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())
		Expect(result.RequeueAfter).To(Equal(transientRetryDelay))
		// A failed pass must not be recorded as applied, or the retry would
		// diff to nothing.
		Expect(fetchWhisk().Annotations).NotTo(HaveKey(whiskv1.AnnotationLastAppliedSpec))

		delete(failures, "create openwhisk")
		calls = nil

		result, err = reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())
		Expect(result.RequeueAfter).To(BeZero())

		Expect(calls).To(ContainElement("create openwhisk"))
		fetched := fetchWhisk()
		Expect(fetched.Annotations).To(HaveKey(whiskv1.AnnotationLastAppliedSpec))
		Expect(fetched.Status.ComponentStates).To(HaveKeyWithValue("openwhisk", whiskv1.ComponentOn))
		Expect(meta.IsStatusConditionTrue(fetched.Status.Conditions, whiskv1.WhiskReady)).To(BeTrue())
	})

	It("rejects a declaration that misses a component prerequisite", func() {
		whisk.Spec.Components.CouchDB = false
		newCluster(node("", nil), defaultStorageClass())

		_, err := reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())

		Expect(calls).To(BeEmpty())
		fetched := fetchWhisk()
		condition := meta.FindStatusCondition(fetched.Status.Conditions, whiskv1.WhiskInitialized)
		Expect(condition).NotTo(BeNil())
		Expect(condition.Status).To(Equal(metav1.ConditionFalse))
		Expect(condition.Reason).To(Equal("InvalidSpec"))
	})

	It("reports a cluster without a usable storage class", func() {
		newCluster(node("", nil))

		_, err := reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())

		Expect(calls).To(BeEmpty())
		condition := meta.FindStatusCondition(fetchWhisk().Status.Conditions, whiskv1.WhiskInitialized)
		Expect(condition).NotTo(BeNil())
		Expect(condition.Reason).To(Equal("ConfigurationError"))
	})

	It("tears the platform down in reverse dependency order", func() {
		newCluster(node("", nil), defaultStorageClass())

		_, err := reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())
		calls = nil

		Expect(c.Delete(ctx, fetchWhisk())).To(Succeed())
		_, err = reconcilePlatform()
		Expect(err).NotTo(HaveOccurred())

		Expect(calls).To(HaveLen(4))
		Expect(indexOf("delete endpoint")).To(BeNumerically("<", indexOf("delete openwhisk")))
		Expect(indexOf("delete openwhisk")).To(BeNumerically("<", indexOf("delete couchdb")))

		key := types.NamespacedName{Namespace: whisk.Namespace, Name: whisk.Name}
		Expect(errors.IsNotFound(c.Get(ctx, key, &whiskv1.Whisk{}))).To(BeTrue())
	})
})
