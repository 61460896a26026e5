// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package registry manages the container image registry used for custom
// runtimes: either an in-cluster registry with htpasswd auth and an optional
// ingress, or just the connection metadata of an external one.
package registry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nuvolaris/nuvolaris-operator/pkg/apihost"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

// ServiceName is the in-cluster registry service.
const ServiceName = "nuvolaris-registry-svc"

type controller struct{}

// NewController returns the image registry component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "registry" }

func (c *controller) Dependencies() []string { return nil }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	if !op.Config.Exists("registry.password") {
		op.Config.Put("registry.password", uuid.NewString())
	}
	values := op.Config.RegistryValues()
	username := fmt.Sprintf("%v", values["username"])
	password := fmt.Sprintf("%v", values["password"])

	svcHost := fmt.Sprintf("%s.%s.svc.cluster.local:5000", ServiceName, op.Namespace)
	host, repoURL := c.hostname(ctx, op, svcHost)

	annotations := map[string]string{
		"registry_host":          host,
		"registry_internal_host": svcHost,
		"registry_username":      username,
		"registry_password":      password,
	}
	if repoURL != "" {
		annotations["registry_url"] = repoURL
	}

	// An external registry brings its own server, only the connection
	// metadata is recorded.
	if fmt.Sprintf("%v", values["mode"]) != "internal" {
		return component.AnnotateConfig(ctx, op, annotations)
	}

	htpasswd, err := htpasswdEntry(username, password)
	if err != nil {
		return err
	}
	values["htpasswd"] = htpasswd

	if _, err := component.Deploy(ctx, op, "registry", values); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=nuvolaris-registry"); err != nil {
		return component.NewTransientError(err)
	}

	if op.Config.GetBool("registry.ingress") && host != svcHost {
		ingress := component.IngressValues(op.Config, "registry", host, ServiceName, 5000, "")
		if _, err := component.Deploy(ctx, op, "ingress", ingress); err != nil {
			return err
		}
	}

	return component.AnnotateConfig(ctx, op, annotations)
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	values := op.Config.RegistryValues()
	if fmt.Sprintf("%v", values["mode"]) != "internal" {
		return nil
	}

	svcHost := fmt.Sprintf("%s.%s.svc.cluster.local:5000", ServiceName, op.Namespace)
	host, _ := c.hostname(ctx, op, svcHost)
	if op.Config.GetBool("registry.ingress") && host != svcHost {
		ingress := component.IngressValues(op.Config, "registry", host, ServiceName, 5000, "")
		if err := component.Undeploy(ctx, op, "ingress", ingress); err != nil {
			return err
		}
	}
	return component.Undeploy(ctx, op, "registry", values)
}

// hostname resolves the registry host: a declared hostname wins, an exposed
// registry derives an img-prefixed host from the api host, everything else
// stays on the in-cluster service.
func (c *controller) hostname(ctx context.Context, op *component.Operation, svcHost string) (host, repoURL string) {
	if declared := op.Config.Get("registry.hostname"); declared != "" && declared != "auto" {
		return declared, ""
	}
	if !op.Config.GetBool("registry.ingress") {
		return svcHost, ""
	}
	apihostURL, err := component.ConfigAnnotation(ctx, op, "apihost")
	if err != nil || apihostURL == "" {
		return svcHost, ""
	}
	repoURL = apihost.AppendPrefix(apihostURL, "img")
	return apihost.ExtractHostname(repoURL), repoURL
}

func htpasswdEntry(username, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing registry password: %w", err)
	}
	return username + ":" + string(hash), nil
}
