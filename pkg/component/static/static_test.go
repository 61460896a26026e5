// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package static

import (
	"context"
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

func TestStatic(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Static Component Suite")
}

var _ = Describe("Controller", func() {
	var (
		kube *kubefake.Fake
		op   *component.Operation
		ctrl component.Controller
		ctx  context.Context
	)

	platformConfigMap := func(annotations map[string]string) *corev1.ConfigMap {
		return &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Namespace:   whiskv1.OperatorNamespace,
				Name:        whiskv1.ConfigConfigMapName,
				Annotations: annotations,
			},
		}
	}

	BeforeEach(func() {
		kube = kubefake.New(platformConfigMap(map[string]string{
			"apihost": "https://nuvolaris.example.com",
		}))

		op = &component.Operation{
			Config:    config.New(),
			Kube:      kube,
			Renderer:  templates.NewRenderer(whiskv1.OperatorNamespace),
			Owner:     &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "owner"}},
			Namespace: whiskv1.OperatorNamespace,
			Log:       logr.Discard(),
		}
		ctrl = NewController()
		ctx = context.Background()
	})

	It("exposes the gateway under the platform host", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		Expect(kube.AppliedNames()).To(ContainElements(
			"Ingress/static-gateway",
			"Ingress/static-gateway-www",
		))

		cm := &corev1.ConfigMap{}
		key := types.NamespacedName{Namespace: whiskv1.OperatorNamespace, Name: whiskv1.ConfigConfigMapName}
		Expect(kube.Client().Get(ctx, key, cm)).To(Succeed())
		Expect(cm.Annotations).To(HaveKey("static_content_url"))
	})

	It("retries while the api endpoint has not published the host", func() {
		kube = kubefake.New(platformConfigMap(nil))
		op.Kube = kube

		err := ctrl.Create(ctx, op)
		Expect(component.IsTransientError(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("apihost"))
	})
})
