// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package apihost computes the externally visible host and URL of every
// exposed endpoint. It is one of the two places where the kubernetes runtime
// flavour leaks into behavior, the other being the shared exposure chart.
package apihost

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/nuvolaris/nuvolaris-operator/pkg/kube"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
)

// FallbackHost is used when neither a declared host nor a load-balancer
// ingress is available.
const FallbackHost = "miniops.me"

var ipAddressRegexp = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// EnsureHost turns a bare IP address into a resolvable nip.io hostname and
// leaves hostnames untouched. It is idempotent.
func EnsureHost(host string) string {
	if ipAddressRegexp.MatchString(host) {
		return host + ".nip.io"
	}
	return host
}

// IsLoadBalanced reports whether the runtime provisions load balancers for
// ingress controller services.
func IsLoadBalanced(runtime string) bool {
	switch runtime {
	case "k3s", "microk8s", "kind":
		return false
	}
	return true
}

// IngressClass returns the ingress class of the runtime, honoring an explicit
// nuvolaris.ingressclass override.
func IngressClass(cfg *config.Config, runtime string) string {
	if class := cfg.Get("nuvolaris.ingressclass"); class != "" && class != "auto" {
		return class
	}
	switch runtime {
	case "microk8s":
		return "public"
	case "k3s":
		return "traefik"
	}
	return "nginx"
}

// IngressNamespace returns the namespace of the ingress controller service,
// honoring an explicit nuvolaris.ingresslb "namespace/name" override.
func IngressNamespace(cfg *config.Config, runtime string) string {
	if lb := cfg.Get("nuvolaris.ingresslb"); lb != "" && lb != "auto" {
		return strings.SplitN(lb, "/", 2)[0]
	}
	if runtime == "microk8s" {
		return "ingress"
	}
	return "ingress-nginx"
}

// IngressServiceName returns the name of the ingress controller service,
// honoring an explicit nuvolaris.ingresslb "namespace/name" override.
func IngressServiceName(cfg *config.Config, runtime string) string {
	if lb := cfg.Get("nuvolaris.ingresslb"); lb != "" && lb != "auto" {
		if parts := strings.SplitN(lb, "/", 2); len(parts) == 2 {
			return parts[1]
		}
	}
	return "ingress-nginx-controller"
}

// URL builds the full endpoint URL for a host, choosing the scheme from the
// declared protocol, the tls component flag, and the runtime. The runtime
// "kind" has no working TLS termination and always downgrades to http.
func URL(cfg *config.Config, runtime, host string) string {
	scheme := "http"
	if declared := cfg.Get("nuvolaris.protocol"); declared == "http" || declared == "https" {
		scheme = declared
	} else if cfg.GetBool("components.tls") {
		scheme = "https"
	}
	if runtime == "kind" {
		scheme = "http"
	}
	return scheme + "://" + host
}

// AppendPrefix qualifies the hostname of a URL with a prefix such as "www",
// "img", "s3" or "filer", preserving any port. Already qualified URLs are
// returned unchanged.
func AppendPrefix(rawURL, prefix string) string {
	if prefix == "" {
		return rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return rawURL
	}
	if strings.Contains(parsed.Hostname(), prefix) {
		return rawURL
	}
	host := prefix + "." + parsed.Hostname()
	if port := parsed.Port(); port != "" {
		host += ":" + port
	}
	parsed.Host = host
	return parsed.String()
}

// AddSuffix qualifies the hostname of a URL with a domain suffix such as
// "svc.cluster.local", preserving any port. Already qualified URLs are
// returned unchanged.
func AddSuffix(rawURL, suffix string) string {
	if suffix == "" {
		return rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return rawURL
	}
	if strings.Contains(parsed.Hostname(), suffix) {
		return rawURL
	}
	host := parsed.Hostname() + "." + suffix
	if port := parsed.Port(); port != "" {
		host += ":" + port
	}
	parsed.Host = host
	return parsed.String()
}

// ExtractHostname returns the hostname part of a URL, without port.
func ExtractHostname(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// SplitHostPort returns the hostname and port parts of a URL. The port is
// empty when the URL carries none.
func SplitHostPort(rawURL string) (string, string) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	return parsed.Hostname(), parsed.Port()
}

// UserStaticHost derives the per-tenant hostname from the platform URL.
func UserStaticHost(username, apihostURL string) (string, error) {
	hostname := ExtractHostname(apihostURL)
	if hostname == "" {
		return "", fmt.Errorf("cannot derive the static hostname of %q from %q", username, apihostURL)
	}
	return username + "." + hostname, nil
}

// Resolver computes the platform API host from the configuration and, in auto
// mode, the cluster's ingress controller.
type Resolver struct {
	cfg  *config.Config
	kube kube.Applier
}

// NewResolver returns a Resolver over the given configuration and adapter.
func NewResolver(cfg *config.Config, k kube.Applier) *Resolver {
	return &Resolver{cfg: cfg, kube: k}
}

// APIHost resolves the full platform URL. A literal nuvolaris.apihost wins;
// in auto mode the load-balancer ingress is used on load-balanced runtimes
// and the machine address elsewhere, falling back to the fallback domain.
func (r *Resolver) APIHost(ctx context.Context) (string, error) {
	runtime := r.cfg.GetOrDefault("nuvolaris.kube", "auto")
	declared := r.cfg.Get("nuvolaris.apihost")

	var host string
	switch {
	case declared != "" && declared != "auto":
		host = EnsureHost(declared)
	case !IsLoadBalanced(runtime):
		if ip := machinePublicIP(); ip != "" {
			host = EnsureHost(ip)
		}
	case runtime == "openshift":
		// Routes allocate their own hostnames, there is nothing to discover.
	default:
		hostname, ip, err := r.loadBalancerIngress(ctx, runtime)
		if err != nil {
			return "", err
		}
		if hostname != "" {
			host = hostname
		} else if ip != "" {
			host = EnsureHost(ip)
		}
	}

	if host == "" {
		host = FallbackHost
	}
	if port := r.cfg.Get("nuvolaris.apiport"); port != "" {
		host = host + ":" + port
	}

	return URL(r.cfg, runtime, host), nil
}

// loadBalancerIngress reads the first load-balancer ingress record of the
// ingress controller service.
func (r *Resolver) loadBalancerIngress(ctx context.Context, runtime string) (string, string, error) {
	service := &corev1.Service{}
	key := types.NamespacedName{
		Namespace: IngressNamespace(r.cfg, runtime),
		Name:      IngressServiceName(r.cfg, runtime),
	}
	if err := r.kube.Client().Get(ctx, key, service); err != nil {
		return "", "", fmt.Errorf("reading ingress controller service %s: %w", key, err)
	}

	hostnames, err := r.kube.Query(ctx, service, "{.status.loadBalancer.ingress[0].hostname}")
	if err != nil {
		return "", "", err
	}
	ips, err := r.kube.Query(ctx, service, "{.status.loadBalancer.ingress[0].ip}")
	if err != nil {
		return "", "", err
	}

	var hostname, ip string
	if len(hostnames) > 0 {
		hostname = hostnames[0]
	}
	if len(ips) > 0 {
		ip = ips[0]
	}
	return hostname, ip, nil
}

// machinePublicIP returns the address the machine would use to reach the
// internet, or "" when it cannot be determined.
func machinePublicIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return ""
	}
	return addr.IP.String()
}
