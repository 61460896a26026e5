// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package quotacron schedules the in-cluster quota enforcement job.
package quotacron

import (
	"context"

	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

type controller struct{}

// NewController returns the quota cronjob component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "quota" }

func (c *controller) Dependencies() []string { return nil }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	_, err := component.Deploy(ctx, op, "quota", op.Config.QuotaValues())
	return err
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "quota", op.Config.QuotaValues())
}
