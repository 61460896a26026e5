// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package redis manages the key/value cache, either a redis or a kvrocks
// server, and the platform prefix user. Per-tenant users are handled by the
// tenant reconciler through the same pod-side scripts.
package redis

import (
	"context"
	"fmt"

	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/templates"
)

// PodSelector matches the cache pod for script execution.
const PodSelector = "app=redis"

type controller struct{}

// NewController returns the cache component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "redis" }

func (c *controller) Dependencies() []string { return nil }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	values := op.Config.RedisValues()
	if _, err := component.Deploy(ctx, op, "redis", values); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, PodSelector); err != nil {
		return component.NewTransientError(err)
	}

	provider := fmt.Sprintf("%v", values["provider"])
	prefix := fmt.Sprintf("%v", values["nuvolarisPrefix"])
	password := fmt.Sprintf("%v", values["nuvolarisPassword"])
	adminPassword := fmt.Sprintf("%v", values["defaultPassword"])

	if err := EnsureUser(ctx, op, provider, adminPassword, "nuvolaris", password, prefix, "+@all"); err != nil {
		return err
	}

	service := fmt.Sprintf("redis.%s.svc.cluster.local", op.Namespace)
	return component.AnnotateConfig(ctx, op, map[string]string{
		"redis_url":      fmt.Sprintf("redis://default:%s@%s:6379", adminPassword, service),
		"redis_alt_url":  fmt.Sprintf("redis://nuvolaris:%s@%s:6379", password, service),
		"redis_service":  service,
		"redis_port":     "6379",
		"redis_password": adminPassword,
		"redis_prefix":   prefix,
		"redis_provider": provider,
	})
}

// EnsureUser creates or updates a prefix-scoped cache user by running the
// provider's admin script inside the cache pod. Category is an ACL command
// category like "+@all" or "+@read", ignored by the kvrocks provider. The
// quota enforcer downgrades a tenant over quota to "+@read".
func EnsureUser(ctx context.Context, op *component.Operation, provider, adminPassword, username, password, prefix, category string) error {
	script, err := renderUserScript(provider, map[string]any{
		"Mode":          "",
		"AdminPassword": adminPassword,
		"Username":      username,
		"Password":      password,
		"Prefix":        prefix,
		"Category":      category,
	})
	if err != nil {
		return err
	}
	if _, err := op.Kube.RunScript(ctx, op.Namespace, PodSelector, script); err != nil {
		return component.NewExternalSystemError("redis", err)
	}
	return nil
}

// DeleteUser removes a prefix-scoped cache user.
func DeleteUser(ctx context.Context, op *component.Operation, provider, adminPassword, username, prefix string) error {
	script, err := renderUserScript(provider, map[string]any{
		"Mode":          "delete",
		"AdminPassword": adminPassword,
		"Username":      username,
		"Prefix":        prefix,
	})
	if err != nil {
		return err
	}
	if _, err := op.Kube.RunScript(ctx, op.Namespace, PodSelector, script); err != nil {
		return component.NewExternalSystemError("redis", err)
	}
	return nil
}

func renderUserScript(provider string, data map[string]any) (string, error) {
	name := "redis_user_acl.tmpl"
	if provider == "kvrocks" {
		name = "kvrocks_namespace.tmpl"
	}
	script, err := templates.RenderScript(name, data)
	if err != nil {
		return "", fmt.Errorf("rendering cache user script: %w", err)
	}
	return script, nil
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "redis", op.Config.RedisValues())
}
