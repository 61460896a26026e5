// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package cron manages the scheduled action executor.
package cron

import (
	"context"

	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
)

type controller struct{}

// NewController returns the action scheduler component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "cron" }

func (c *controller) Dependencies() []string { return []string{"openwhisk"} }

func (c *controller) values(op *component.Operation) config.Values {
	return config.Values{
		"image":   op.Config.GetOrDefault("cron.image", "ghcr.io/nuvolaris/nuvolaris-cron:latest"),
		"apihost": op.Config.GetOrDefault("cron.apihost", "http://controller:3233"),
	}
}

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	_, err := component.Deploy(ctx, op, "cron", c.values(op))
	return err
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "cron", c.values(op))
}
