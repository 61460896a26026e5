// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package component

import (
	"github.com/nuvolaris/nuvolaris-operator/pkg/apihost"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
)

// IngressValues builds the shared ingress chart parameters for one exposed
// service. The chart renders a Route on openshift, a traefik Middleware plus
// Ingress when a rewrite target is set on k3s, and a plain Ingress elsewhere.
func IngressValues(cfg *config.Config, name, host, serviceName string, servicePort int, rewriteTarget string) config.Values {
	runtime := cfg.GetOrDefault("nuvolaris.kube", "auto")
	tls := cfg.GetBool("components.tls") && runtime != "kind"

	return config.Values{
		"name":          name,
		"host":          host,
		"serviceName":   serviceName,
		"servicePort":   servicePort,
		"path":          "/",
		"rewriteTarget": rewriteTarget,
		"ingressClass":  apihost.IngressClass(cfg, runtime),
		"kube":          runtime,
		"tls":           tls,
		"tlsSecretName": "",
	}
}
