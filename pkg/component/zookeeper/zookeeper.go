// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package zookeeper manages the coordination service required by the message
// log.
package zookeeper

import (
	"context"

	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

type controller struct{}

// NewController returns the zookeeper component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "zookeeper" }

func (c *controller) Dependencies() []string { return nil }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	if _, err := component.Deploy(ctx, op, "zookeeper", op.Config.ZookeeperValues()); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=zookeeper"); err != nil {
		return component.NewTransientError(err)
	}
	return nil
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "zookeeper", op.Config.ZookeeperValues())
}
