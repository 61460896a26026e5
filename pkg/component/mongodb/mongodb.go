// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package mongodb exposes the document protocol front of the relational
// database. The ferretdb deployment is part of the postgres chart, gated by
// its mongodbEnabled flag, so this component converges that chart and
// records the connection URL.
package mongodb

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/client"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/postgres"
)

type controller struct{}

// NewController returns the document protocol component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "mongodb" }

func (c *controller) Dependencies() []string { return []string{"postgres"} }

// URL returns the document protocol connection string for one database
// owner. The protocol front authenticates against the relational database,
// hence the PLAIN mechanism.
func URL(namespace, username, password, database string) string {
	return fmt.Sprintf("mongodb://%s:%s@nuvolaris-mongodb.%s.svc.cluster.local:27017/%s?authMechanism=PLAIN",
		username, password, namespace, database)
}

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	values := op.Config.PostgresValues()
	if _, err := component.Deploy(ctx, op, "postgres", values); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=nuvolaris-ferretdb"); err != nil {
		return component.NewTransientError(err)
	}

	password := fmt.Sprintf("%v", values["nuvolarisPassword"])
	return component.AnnotateConfig(ctx, op, map[string]string{
		"mongodb_url": URL(op.Namespace, postgres.Username, password, postgres.Database),
	})
}

// Delete removes only the document protocol manifests out of the postgres
// chart. The relational database itself is owned by the postgres component.
func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	values := op.Config.PostgresValues()
	values["mongodbEnabled"] = true

	objs, err := op.Renderer.RenderObjects("postgres", values)
	if err != nil {
		return fmt.Errorf("rendering postgres: %w", err)
	}
	var front []client.Object
	for _, obj := range objs {
		if obj.GetLabels()[whiskv1.LabelComponent] == "mongodb" {
			front = append(front, obj)
		}
	}
	if err := op.Kube.DeleteAll(ctx, front...); err != nil {
		return component.NewTransientError(err)
	}
	return nil
}
