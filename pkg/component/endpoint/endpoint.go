// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package endpoint exposes the function controller API under the computed
// platform host and records that host for every other exposed component.
package endpoint

import (
	"context"

	"github.com/nuvolaris/nuvolaris-operator/pkg/apihost"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

type controller struct{}

// NewController returns the API endpoint component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "endpoint" }

func (c *controller) Dependencies() []string { return []string{"openwhisk"} }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	apihostURL, err := apihost.NewResolver(op.Config, op.Kube).APIHost(ctx)
	if err != nil {
		return component.NewTransientError(err)
	}

	values := c.ingressValues(op, apihostURL)
	if _, err := component.Deploy(ctx, op, "ingress", values); err != nil {
		return err
	}

	// Everything user-facing reads the platform host from this annotation.
	return component.AnnotateConfig(ctx, op, map[string]string{"apihost": apihostURL})
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	apihostURL, err := apihost.NewResolver(op.Config, op.Kube).APIHost(ctx)
	if err != nil {
		return component.NewTransientError(err)
	}
	return component.Undeploy(ctx, op, "ingress", c.ingressValues(op, apihostURL))
}

func (c *controller) ingressValues(op *component.Operation, apihostURL string) map[string]any {
	host := apihost.ExtractHostname(apihostURL)
	return component.IngressValues(op.Config, "apihost", host, "controller", 3233, "")
}
