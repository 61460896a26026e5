// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package couchdb

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

func TestCouchDB(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CouchDB Component Suite")
}

type fakeDB struct {
	calls    []string
	failures map[string]error
}

func (f *fakeDB) record(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	return f.failures[call]
}

func (f *fakeDB) WaitReady(context.Context) error { return f.record("wait-ready") }

func (f *fakeDB) ConfigureSingleNode(_ context.Context, username, _ string) error {
	return f.record("single-node %s", username)
}

func (f *fakeDB) DisableReduceLimit(context.Context) error { return f.record("reduce-limit off") }

func (f *fakeDB) EnableCompaction(_ context.Context, database string) error {
	return f.record("compaction %s", database)
}

func (f *fakeDB) AddUser(_ context.Context, name, _ string) error {
	return f.record("add-user %s", name)
}

func (f *fakeDB) EnsureDB(_ context.Context, name string) error {
	return f.record("ensure-db %s", name)
}

func (f *fakeDB) SetMembers(_ context.Context, database string, members []string) error {
	return f.record("members %s %v", database, members)
}

func (f *fakeDB) UpsertDoc(_ context.Context, database, id string, _ map[string]any) error {
	return f.record("upsert %s/%s", database, id)
}

func (f *fakeDB) AddSubject(_ context.Context, namespace, _, _ string) error {
	return f.record("subject %s", namespace)
}

var _ = Describe("Controller", func() {
	var (
		db   *fakeDB
		kube *kubefake.Fake
		op   *component.Operation
		ctrl *controller
		ctx  context.Context
	)

	BeforeEach(func() {
		db = &fakeDB{failures: map[string]error{}}
		kube = kubefake.New()
		cfg := config.New()
		cfg.Put("openwhisk.namespaces.nuvolaris", "cbd68075-dac2-475e-8c07-d62a30c7e683:s0meK3y")

		op = &component.Operation{
			Config:    cfg,
			Kube:      kube,
			Renderer:  templates.NewRenderer(whiskv1.OperatorNamespace),
			Owner:     &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "owner"}},
			Namespace: whiskv1.OperatorNamespace,
			Log:       logr.Discard(),
		}
		ctrl = &controller{connect: func(string, string, string) (dbAPI, error) { return db, nil }}
		ctx = context.Background()
	})

	It("deploys the chart and waits for the pod", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		Expect(kube.AppliedNames()).To(ContainElement("StatefulSet/couchdb"))
		Expect(kube.Waits).To(ContainElement("app=couchdb"))
	})

	It("initializes users, databases and design documents", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		Expect(db.calls).To(ContainElements(
			"single-node whisk_admin",
			"reduce-limit off",
			"add-user invoker_admin",
			"add-user controller_admin",
			"ensure-db subjects",
			"ensure-db users_metadata",
			"members subjects [invoker_admin controller_admin]",
			"upsert subjects/_design/subjects",
			"upsert whisks/_design/whisks.v2.1.0",
			"compaction users_metadata",
			"subject nuvolaris",
		))
	})

	It("annotates the platform ConfigMap with the endpoint", func() {
		Expect(ctrl.Create(ctx, op)).To(Succeed())

		cm := &corev1.ConfigMap{}
		key := types.NamespacedName{Namespace: whiskv1.OperatorNamespace, Name: whiskv1.ConfigConfigMapName}
		Expect(kube.Client().Get(ctx, key, cm)).To(Succeed())
		Expect(cm.Annotations).To(HaveKeyWithValue("couchdb_host", "couchdb.nuvolaris.svc.cluster.local"))
	})

	It("rejects a malformed namespace credential", func() {
		op.Config.Put("openwhisk.namespaces.broken", "no-separator")

		err := ctrl.Create(ctx, op)
		Expect(component.IsValidationError(err)).To(BeTrue())
	})

	It("reports external failures with the system name", func() {
		db.failures["ensure-db whisks"] = fmt.Errorf("boom")

		err := ctrl.Create(ctx, op)
		Expect(err).To(HaveOccurred())

		var external *component.ExternalSystemError
		Expect(err).To(BeAssignableToTypeOf(external))
	})

	It("removes the chart on delete", func() {
		Expect(ctrl.Delete(ctx, op)).To(Succeed())
		Expect(kube.Deleted).NotTo(BeEmpty())
	})
})
