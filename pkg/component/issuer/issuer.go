// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package issuer manages the ACME cluster issuer backing TLS ingresses.
// Openshift terminates TLS in its routes and kind has no reachable solver
// endpoint, so both runtimes skip the issuer entirely.
package issuer

import (
	"context"

	"github.com/nuvolaris/nuvolaris-operator/pkg/apihost"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
)

type controller struct{}

// NewController returns the cluster issuer component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "issuer" }

func (c *controller) Dependencies() []string { return nil }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	values, skip := c.values(op)
	if skip {
		op.Log.Info("runtime does not use a cluster issuer, skipping", "runtime", values["kube"])
		return nil
	}
	_, err := component.Deploy(ctx, op, "issuer", values)
	return err
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	values, skip := c.values(op)
	if skip {
		return nil
	}
	return component.Undeploy(ctx, op, "issuer", values)
}

func (c *controller) values(op *component.Operation) (config.Values, bool) {
	runtime := op.Config.GetOrDefault("nuvolaris.kube", "auto")
	values := op.Config.IssuerValues()
	values["kube"] = runtime
	values["ingressClass"] = apihost.IngressClass(op.Config, runtime)
	return values, runtime == "kind" || runtime == "openshift"
}
