// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	kubefake "github.com/nuvolaris/nuvolaris-operator/pkg/kube/fake"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
	"github.com/nuvolaris/nuvolaris-operator/pkg/templates"
)

func TestRegistry(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Registry Component Suite")
}

var _ = Describe("Controller", func() {
	var (
		kube *kubefake.Fake
		op   *component.Operation
		ctrl *controller
		ctx  context.Context
	)

	newOp := func(k *kubefake.Fake) *component.Operation {
		return &component.Operation{
			Config:    config.New(),
			Kube:      k,
			Renderer:  templates.NewRenderer(whiskv1.OperatorNamespace),
			Owner:     &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "owner"}},
			Namespace: whiskv1.OperatorNamespace,
			Log:       logr.Discard(),
		}
	}

	configAnnotations := func(k *kubefake.Fake) map[string]string {
		cm := &corev1.ConfigMap{}
		key := types.NamespacedName{Namespace: whiskv1.OperatorNamespace, Name: whiskv1.ConfigConfigMapName}
		Expect(k.Client().Get(ctx, key, cm)).To(Succeed())
		return cm.Annotations
	}

	BeforeEach(func() {
		kube = kubefake.New()
		op = newOp(kube)
		ctrl = &controller{}
		ctx = context.Background()
	})

	It("deploys the internal registry and waits for it", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		Expect(kube.AppliedNames()).To(ContainElement("Secret/nuvolaris-registry-auth"))
		Expect(kube.Waits).To(ContainElement("app=nuvolaris-registry"))
	})

	It("generates a password once and records the connection settings", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		annotations := configAnnotations(kube)
		Expect(annotations).To(HaveKeyWithValue("registry_internal_host", "nuvolaris-registry-svc.nuvolaris.svc.cluster.local:5000"))
		Expect(annotations).To(HaveKeyWithValue("registry_username", "nuvolaris"))
		Expect(annotations["registry_password"]).NotTo(BeEmpty())
		Expect(annotations["registry_host"]).To(Equal(annotations["registry_internal_host"]))
	})

	It("hashes the credential into an htpasswd entry", func() {
		op.Config.Put("registry.password", "s3cr3t")

		entry, err := htpasswdEntry("nuvolaris", "s3cr3t")
		Expect(err).NotTo(HaveOccurred())

		username, hash, found := strings.Cut(entry, ":")
		Expect(found).To(BeTrue())
		Expect(username).To(Equal("nuvolaris"))
		Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cr3t"))).To(Succeed())
	})

	It("lets a declared hostname win over the derived one", func() {
		op.Config.Put("registry.hostname", "registry.example.com")

		Expect(ctrl.Create(ctx, op)).To(Succeed())
		Expect(configAnnotations(kube)).To(HaveKeyWithValue("registry_host", "registry.example.com"))
	})

	It("derives an img-prefixed host when exposed through an ingress", func() {
		seeded := kubefake.New(&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Namespace:   whiskv1.OperatorNamespace,
				Name:        whiskv1.ConfigConfigMapName,
				Annotations: map[string]string{"apihost": "https://example.com"},
			},
		})
		op = newOp(seeded)
		op.Config.Put("registry.ingress", "true")

		Expect(ctrl.Create(ctx, op)).To(Succeed())

		annotations := configAnnotations(seeded)
		Expect(annotations).To(HaveKeyWithValue("registry_host", "img.example.com"))
		Expect(annotations).To(HaveKeyWithValue("registry_url", "https://img.example.com"))
		Expect(seeded.AppliedNames()).To(ContainElement("Ingress/registry"))
	})

	It("records only the connection metadata for an external registry", func() {
		op.Config.Put("registry.mode", "external")
		op.Config.Put("registry.hostname", "hub.example.com")
		op.Config.Put("registry.username", "hubuser")
		op.Config.Put("registry.password", "hubpass")

		Expect(ctrl.Create(ctx, op)).To(Succeed())

		Expect(kube.Applied).To(BeEmpty())
		annotations := configAnnotations(kube)
		Expect(annotations).To(HaveKeyWithValue("registry_host", "hub.example.com"))
		Expect(annotations).To(HaveKeyWithValue("registry_username", "hubuser"))
	})

	It("removes nothing for an external registry on delete", func() {
		op.Config.Put("registry.mode", "external")

		Expect(ctrl.Delete(ctx, op)).To(Succeed())
		Expect(kube.Deleted).To(BeEmpty())
	})

	It("removes the chart on delete", func() {
		Expect(ctrl.Delete(ctx, op)).To(Succeed())
		Expect(kube.Deleted).NotTo(BeEmpty())
	})
})
