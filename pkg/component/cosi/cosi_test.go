// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package cosi

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
	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/objectstorage"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	kubefake "github.com/nuvolaris/nuvolaris-operator/pkg/kube/fake"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
	"github.com/nuvolaris/nuvolaris-operator/pkg/templates"
)

func TestCosi(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cosi Component Suite")
}

type fakeStore struct {
	policies map[string]objectstorage.Policy
	uploads  []string
	err      error
}

func (f *fakeStore) ApplyBucketPolicy(_ context.Context, bucket string, policy objectstorage.Policy) error {
	f.policies[bucket] = policy
	return f.err
}

func (f *fakeStore) UploadContent(_ context.Context, bucket, key string, _ []byte) error {
	f.uploads = append(f.uploads, bucket+"/"+key)
	return f.err
}

var _ = Describe("Controller", func() {
	var (
		store *fakeStore
		kube  *kubefake.Fake
		op    *component.Operation
		ctrl  *controller
		ctx   context.Context
	)

	claimObjects := func(name string) (*corev1.ConfigMap, *corev1.Secret) {
		cm := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Namespace: whiskv1.OperatorNamespace, Name: name},
			Data: map[string]string{
				"BUCKET_NAME": name,
				"BUCKET_HOST": "rook-ceph-rgw.rook-ceph.svc",
				"BUCKET_PORT": "80",
			},
		}
		secret := &corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Namespace: whiskv1.OperatorNamespace, Name: name},
			Data: map[string][]byte{
				"AWS_ACCESS_KEY_ID":     []byte(name + "-access"),
				"AWS_SECRET_ACCESS_KEY": []byte(name + "-secret"),
			},
		}
		return cm, secret
	}

	BeforeEach(func() {
		store = &fakeStore{policies: map[string]objectstorage.Policy{}}

		dataCM, dataSecret := claimObjects(DataClaim)
		webCM, webSecret := claimObjects(WebClaim)
		kube = kubefake.New(dataCM, dataSecret, webCM, webSecret)

		op = &component.Operation{
			Config:    config.New(),
			Kube:      kube,
			Renderer:  templates.NewRenderer(whiskv1.OperatorNamespace),
			Owner:     &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "owner"}},
			Namespace: whiskv1.OperatorNamespace,
			Log:       logr.Discard(),
		}
		ctrl = &controller{connect: func(string, string, string) (storeAPI, error) { return store, nil }}
		ctx = context.Background()
	})

	It("applies the chart and waits for both claims to bind", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		Expect(kube.AppliedNames()).To(ContainElements(
			"ObjectBucketClaim/"+DataClaim,
			"ObjectBucketClaim/"+WebClaim,
		))
		Expect(kube.Waits).To(ConsistOf(DataClaim+"=Bound", WebClaim+"=Bound"))
	})

	It("installs the bucket policies and the welcome page", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		Expect(store.policies).To(HaveKey(DataClaim))
		Expect(store.policies).To(HaveKey(WebClaim))
		Expect(store.uploads).To(ConsistOf(WebClaim + "/index.html"))
	})

	It("annotates the platform ConfigMap with the generated credentials", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		cm := &corev1.ConfigMap{}
		key := types.NamespacedName{Namespace: whiskv1.OperatorNamespace, Name: whiskv1.ConfigConfigMapName}
		Expect(kube.Client().Get(ctx, key, cm)).To(Succeed())
		Expect(cm.Annotations).To(HaveKeyWithValue("s3_provider", "rook"))
		Expect(cm.Annotations).To(HaveKeyWithValue("s3_host", "rook-ceph-rgw.rook-ceph.svc"))
		Expect(cm.Annotations).To(HaveKeyWithValue("s3_access_key", DataClaim+"-access"))
		Expect(cm.Annotations).To(HaveKeyWithValue("s3_bucket_data", DataClaim))
		Expect(cm.Annotations).To(HaveKeyWithValue("s3_bucket_static", WebClaim))
	})

	It("retries while a claim is bound without credentials", func() {
		broken := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Namespace: whiskv1.OperatorNamespace, Name: DataClaim},
		}
		emptySecret := &corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Namespace: whiskv1.OperatorNamespace, Name: DataClaim},
		}
		kube = kubefake.New(broken, emptySecret)
		op.Kube = kube

		err := ctrl.Create(ctx, op)
		Expect(component.IsTransientError(err)).To(BeTrue())
	})

	It("reports a refused policy against the object store", func() {
		store.err = fmt.Errorf("access denied")

		err := ctrl.Create(ctx, op)
		Expect(err).To(HaveOccurred())

		var external *component.ExternalSystemError
		Expect(err).To(BeAssignableToTypeOf(external))
	})

	It("removes the claims on delete", func() {
		Expect(ctrl.Delete(ctx, op)).To(Succeed())
		Expect(kube.Deleted).NotTo(BeEmpty())
	})
})
