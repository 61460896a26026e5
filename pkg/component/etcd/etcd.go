// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package etcd manages the vector database coordinator. Consumers get their
// own prefix-scoped users, created by running etcdctl inside the server pod.
package etcd

import (
	"context"
	"fmt"

	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/templates"
)

// PodSelector matches the coordinator pod for script execution.
const PodSelector = "app=nuvolaris-etcd"

type controller struct{}

// NewController returns the coordinator component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "etcd" }

func (c *controller) Dependencies() []string { return nil }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	if _, err := component.Deploy(ctx, op, "etcd", op.Config.EtcdValues()); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, PodSelector); err != nil {
		return component.NewTransientError(err)
	}
	return nil
}

// EnsureUser creates a coordinator user with readwrite access below its own
// prefix, running etcdctl as root inside the server pod.
func EnsureUser(ctx context.Context, op *component.Operation, username, password, prefix string) error {
	script, err := templates.RenderScript("etcd_user.tmpl", map[string]any{
		"Mode":         "",
		"RootPassword": op.Config.GetOrDefault("etcd.password", "s0meP@ass3"),
		"Username":     username,
		"Password":     password,
		"Prefix":       prefix,
	})
	if err != nil {
		return fmt.Errorf("rendering coordinator user script: %w", err)
	}
	if _, err := op.Kube.RunScript(ctx, op.Namespace, PodSelector, script); err != nil {
		return component.NewExternalSystemError("etcd", err)
	}
	return nil
}

// DeleteUser removes a coordinator user and its role.
func DeleteUser(ctx context.Context, op *component.Operation, username string) error {
	script, err := templates.RenderScript("etcd_user.tmpl", map[string]any{
		"Mode":         "delete",
		"RootPassword": op.Config.GetOrDefault("etcd.password", "s0meP@ass3"),
		"Username":     username,
	})
	if err != nil {
		return fmt.Errorf("rendering coordinator user script: %w", err)
	}
	if _, err := op.Kube.RunScript(ctx, op.Namespace, PodSelector, script); err != nil {
		return component.NewExternalSystemError("etcd", err)
	}
	return nil
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "etcd", op.Config.EtcdValues())
}
