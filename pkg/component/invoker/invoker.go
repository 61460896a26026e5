// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package invoker manages the function executor deployment, used when the
// platform does not run in slim (lean controller) mode.
package invoker

import (
	"context"

	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

type controller struct{}

// NewController returns the invoker component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "invoker" }

func (c *controller) Dependencies() []string { return []string{"openwhisk"} }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	if _, err := component.Deploy(ctx, op, "invoker", op.Config.InvokerValues()); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=invoker"); err != nil {
		return component.NewTransientError(err)
	}
	return nil
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "invoker", op.Config.InvokerValues())
}
