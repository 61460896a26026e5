// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package preloader pulls the runtime images on every node ahead of the
// first activation.
package preloader

import (
	"context"
	"strings"

	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
)

type controller struct{}

// NewController returns the runtime image preloader component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "preloader" }

func (c *controller) Dependencies() []string { return nil }

// values overrides the chart's default runtime list when one is declared as
// a comma separated string.
func (c *controller) values(op *component.Operation) config.Values {
	values := config.Values{}
	if declared := op.Config.Get("preloader.images"); declared != "" {
		var images []string
		for _, image := range strings.Split(declared, ",") {
			if image = strings.TrimSpace(image); image != "" {
				images = append(images, image)
			}
		}
		values["images"] = images
	}
	return values
}

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	_, err := component.Deploy(ctx, op, "preloader", c.values(op))
	return err
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "preloader", c.values(op))
}
