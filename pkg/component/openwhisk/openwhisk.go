// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package openwhisk manages the function controller deployment.
package openwhisk

import (
	"context"

	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

type controller struct{}

// NewController returns the function controller component.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "openwhisk" }

func (c *controller) Dependencies() []string { return []string{"couchdb"} }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	if _, err := component.Deploy(ctx, op, "openwhisk", op.Config.OpenWhiskValues()); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=controller"); err != nil {
		return component.NewTransientError(err)
	}
	return nil
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "openwhisk", op.Config.OpenWhiskValues())
}
