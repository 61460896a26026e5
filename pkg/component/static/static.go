// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package static manages the static content gateway in front of the object
// store web buckets, its platform ingresses, and the per-tenant ingress
// values used by the tenant reconciler.
package static

import (
	"context"
	"fmt"
	"strings"

	"github.com/nuvolaris/nuvolaris-operator/pkg/apihost"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
)

// ServiceName is the gateway service fronted by the ingresses.
const ServiceName = "nuvolaris-static-svc"

type controller struct{}

// NewController returns the static gateway component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "static" }

func (c *controller) Dependencies() []string { return []string{"minio", "endpoint"} }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	if _, err := component.Deploy(ctx, op, "static", op.Config.StaticValues()); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=nuvolaris-static"); err != nil {
		return component.NewTransientError(err)
	}

	apihostURL, err := component.ConfigAnnotation(ctx, op, "apihost")
	if err != nil {
		return component.NewTransientError(err)
	}
	if apihostURL == "" {
		return component.NewTransientError(fmt.Errorf("the api endpoint has not recorded the apihost yet"))
	}

	for _, values := range c.gatewayIngresses(op, apihostURL) {
		if _, err := component.Deploy(ctx, op, "ingress", values); err != nil {
			return err
		}
	}

	runtime := op.Config.GetOrDefault("nuvolaris.kube", "auto")
	contentURL := apihost.URL(op.Config, runtime, apihost.ExtractHostname(apihostURL))
	return component.AnnotateConfig(ctx, op, map[string]string{"static_content_url": contentURL})
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	apihostURL, _ := component.ConfigAnnotation(ctx, op, "apihost")
	if apihostURL != "" {
		for _, values := range c.gatewayIngresses(op, apihostURL) {
			if err := component.Undeploy(ctx, op, "ingress", values); err != nil {
				return err
			}
		}
	}
	return component.Undeploy(ctx, op, "static", op.Config.StaticValues())
}

// gatewayIngresses exposes the gateway under the platform host and, when it
// makes sense, under the www-qualified host. The www variant is skipped when
// the host is already www-qualified and on the kind runtime, which cannot
// route the extra hostname.
func (c *controller) gatewayIngresses(op *component.Operation, apihostURL string) []map[string]any {
	host := apihost.ExtractHostname(apihostURL)
	all := []map[string]any{
		component.IngressValues(op.Config, "static-gateway", host, ServiceName, 8080, "/"+op.Config.GetOrDefault("minio.web-bucket", "nuvolaris-web")+"/"),
	}

	runtime := op.Config.GetOrDefault("nuvolaris.kube", "auto")
	if !strings.HasPrefix(host, "www.") && runtime != "kind" {
		wwwHost := apihost.ExtractHostname(apihost.AppendPrefix(apihostURL, "www"))
		all = append(all, component.IngressValues(op.Config, "static-gateway-www", wwwHost, ServiceName, 8080, "/"+op.Config.GetOrDefault("minio.web-bucket", "nuvolaris-web")+"/"))
	}
	return all
}

// TenantIngressValues builds the ingress parameters for one tenant's static
// site: <tenant>.<platform host> rewriting / to the tenant's web bucket.
func TenantIngressValues(cfg *config.Config, tenant, apihostURL, bucket string) (map[string]any, error) {
	host, err := apihost.UserStaticHost(tenant, apihostURL)
	if err != nil {
		return nil, err
	}
	return component.IngressValues(cfg, tenant+"-static-ingress", host, ServiceName, 8080, "/"+bucket+"/"), nil
}
