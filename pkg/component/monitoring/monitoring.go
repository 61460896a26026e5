// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package monitoring manages the prometheus stack and the optional
// alertmanager with its slack or smtp receivers.
package monitoring

import (
	"context"

	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

type controller struct{}

// NewController returns the monitoring component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "monitoring" }

func (c *controller) Dependencies() []string { return nil }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	values := op.Config.MonitoringValues()
	if _, err := component.Deploy(ctx, op, "monitoring", values); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=nuvolaris-prometheus"); err != nil {
		return component.NewTransientError(err)
	}
	if op.Config.GetBool("monitoring.alert-manager.enabled") {
		if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=nuvolaris-alertmanager"); err != nil {
			return component.NewTransientError(err)
		}
	}
	return nil
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "monitoring", op.Config.MonitoringValues())
}
