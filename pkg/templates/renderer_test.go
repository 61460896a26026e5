// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package templates_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
	"github.com/nuvolaris/nuvolaris-operator/pkg/templates"
)

func TestTemplates(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Templates Suite")
}

var _ = Describe("Renderer", func() {
	var renderer *templates.Renderer

	BeforeEach(func() {
		renderer = templates.NewRenderer("nuvolaris")
	})

	Describe("rendering the couchdb chart", func() {
		It("produces secret, service and statefulset in install order", func() {
			objs, err := renderer.RenderObjects("couchdb", config.Values{
				"adminUser":     "whisk_admin",
				"adminPassword": "s0meP@ass1",
				"size":          10,
			})
			Expect(err).NotTo(HaveOccurred())

			var kinds []string
			for _, obj := range objs {
				kinds = append(kinds, obj.GetObjectKind().GroupVersionKind().Kind)
				Expect(obj.GetNamespace()).To(Equal("nuvolaris"))
			}
			Expect(kinds).To(ContainElements("Secret", "Service", "StatefulSet"))
			secretIdx := indexOf(kinds, "Secret")
			stsIdx := indexOf(kinds, "StatefulSet")
			Expect(secretIdx).To(BeNumerically("<", stsIdx))
		})

		It("labels every object with app and component", func() {
			objs, err := renderer.RenderObjects("couchdb", config.New().CouchDBValues())
			Expect(err).NotTo(HaveOccurred())
			Expect(objs).NotTo(BeEmpty())
			for _, obj := range objs {
				Expect(obj.GetLabels()).To(HaveKey("app"))
				Expect(obj.GetLabels()).To(HaveKeyWithValue("component", "couchdb"))
			}
		})
	})

	Describe("rendering the shared exposure chart", func() {
		values := func(kube string) config.Values {
			return config.Values{
				"name":        "apihost",
				"host":        "api.example.com",
				"serviceName": "controller",
				"servicePort": 3233,
				"path":        "/",
				"kube":        kube,
				"tls":         false,
			}
		}

		It("emits a Route on openshift", func() {
			objs, err := renderer.RenderObjects("ingress", values("openshift"))
			Expect(err).NotTo(HaveOccurred())
			Expect(objs).To(HaveLen(1))
			Expect(objs[0].GetObjectKind().GroupVersionKind().Kind).To(Equal("Route"))
		})

		It("emits a Middleware plus Ingress when traefik needs a path rewrite", func() {
			v := values("k3s")
			v["rewriteTarget"] = "/api/v1/web"
			v["ingressClass"] = "traefik"
			objs, err := renderer.RenderObjects("ingress", v)
			Expect(err).NotTo(HaveOccurred())

			var kinds []string
			for _, obj := range objs {
				kinds = append(kinds, obj.GetObjectKind().GroupVersionKind().Kind)
			}
			Expect(kinds).To(ConsistOf("Middleware", "Ingress"))

			for _, obj := range objs {
				if obj.GetObjectKind().GroupVersionKind().Kind == "Ingress" {
					annotations := obj.GetAnnotations()
					Expect(annotations).To(HaveKey("traefik.ingress.kubernetes.io/router.middlewares"))
				}
			}
		})

		It("emits an nginx Ingress everywhere else", func() {
			v := values("eks")
			v["rewriteTarget"] = "/api/v1/web"
			v["ingressClass"] = "nginx"
			objs, err := renderer.RenderObjects("ingress", v)
			Expect(err).NotTo(HaveOccurred())
			Expect(objs).To(HaveLen(1))

			obj := objs[0]
			Expect(obj.GetObjectKind().GroupVersionKind().Kind).To(Equal("Ingress"))
			Expect(obj.GetAnnotations()).To(HaveKey("nginx.ingress.kubernetes.io/rewrite-target"))
		})

		It("adds the issuer annotation and a tls section when tls is on", func() {
			v := values("eks")
			v["tls"] = true
			v["ingressClass"] = "nginx"
			objs, err := renderer.RenderObjects("ingress", v)
			Expect(err).NotTo(HaveOccurred())
			Expect(objs).To(HaveLen(1))
			Expect(objs[0].GetAnnotations()).To(HaveKeyWithValue("cert-manager.io/cluster-issuer", "letsencrypt-issuer"))

			tls, found, err := unstructuredSlice(objs[0], "spec", "tls")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(tls).To(HaveLen(1))
		})
	})

	Describe("conditional chart sections", func() {
		It("omits the document proxy unless mongodb is enabled", func() {
			v := config.New().PostgresValues()
			v["mongodbEnabled"] = false
			objs, err := renderer.RenderObjects("postgres", v)
			Expect(err).NotTo(HaveOccurred())
			for _, obj := range objs {
				Expect(obj.GetName()).NotTo(Equal("nuvolaris-mongodb"))
			}

			v["mongodbEnabled"] = true
			objs, err = renderer.RenderObjects("postgres", v)
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for _, obj := range objs {
				names = append(names, obj.GetName())
			}
			Expect(names).To(ContainElement("nuvolaris-mongodb"))
		})

		It("renders the alertmanager only when requested", func() {
			v := config.New().MonitoringValues()
			objs, err := renderer.RenderObjects("monitoring", v)
			Expect(err).NotTo(HaveOccurred())
			for _, obj := range objs {
				Expect(obj.GetName()).NotTo(ContainSubstring("alertmanager"))
			}

			v["alertManagerEnabled"] = true
			v["slackEnabled"] = true
			v["slackChannel"] = "#alerts"
			v["slackURL"] = "https://hooks.slack.com/services/T000/B000/XXX"
			objs, err = renderer.RenderObjects("monitoring", v)
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for _, obj := range objs {
				names = append(names, obj.GetName())
			}
			Expect(names).To(ContainElement("nuvolaris-alertmanager"))
		})
	})

	Describe("unknown charts", func() {
		It("fails with a wrapped error", func() {
			_, err := renderer.Render("does-not-exist", nil)
			Expect(err).To(MatchError(ContainSubstring("does-not-exist")))
		})
	})
})

var _ = Describe("RenderScript", func() {
	It("renders the ACL grant for a user", func() {
		script, err := templates.RenderScript("redis_user_acl.tmpl", map[string]any{
			"AdminPassword": "s0meP@ass3",
			"Username":      "demouser",
			"Password":      "userpass",
			"Prefix":        "demouser:",
			"Category":      "+@all",
			"Mode":          "",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(script).To(ContainSubstring("ACL SETUSER demouser"))
		Expect(script).To(ContainSubstring("~demouser:*"))
		Expect(script).NotTo(ContainSubstring("DELUSER"))
	})

	It("renders the ACL teardown in delete mode", func() {
		script, err := templates.RenderScript("redis_user_acl.tmpl", map[string]any{
			"AdminPassword": "s0meP@ass3",
			"Username":      "demouser",
			"Mode":          "delete",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(script).To(ContainSubstring("ACL DELUSER demouser"))
	})

	It("fails on a missing script", func() {
		_, err := templates.RenderScript("nope.tmpl", nil)
		Expect(err).To(HaveOccurred())
	})
})

func unstructuredSlice(obj client.Object, fields ...string) ([]any, bool, error) {
	u, ok := obj.(*unstructured.Unstructured)
	if !ok {
		return nil, false, nil
	}
	return unstructured.NestedSlice(u.Object, fields...)
}

func indexOf(list []string, want string) int {
	for i, s := range list {
		if s == want {
			return i
		}
	}
	return -1
}
