// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package quota measures per-tenant resource usage and toggles tenants
// between read-write and read-only when they cross their declared limits.
// One Tick walks every tenant declaration in the cluster; the quota-reached
// annotations on the tenant resource are the single record of the current
// enforcement state, so a tick that finds nothing to flip does nothing.
package quota

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/postgres"
	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/redisadmin"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/metrics"
)

// sqlAPI is the slice of the relational admin client used here.
type sqlAPI interface {
	DatabaseSizes(ctx context.Context) (map[string]int64, error)
	SetReadOnly(ctx context.Context, database, username string) error
	SetReadWrite(ctx context.Context, database, username string) error
	Close() error
}

// cacheAPI is the slice of the cache admin client used here.
type cacheAPI interface {
	PrefixUsedBytes(ctx context.Context, prefix string) (int64, error)
	Close() error
}

// Enforcer runs quota enforcement ticks against every tenant in the cluster.
type Enforcer struct {
	Client client.Client
	Log    logr.Logger

	connectSQL   func(host, port, username, password string) (sqlAPI, error)
	connectCache func(addr, password string) cacheAPI
}

// New returns an enforcer connecting to the real subsystem admin endpoints.
func New(c client.Client, log logr.Logger) *Enforcer {
	return &Enforcer{
		Client: c,
		Log:    log,
		connectSQL: func(host, port, username, password string) (sqlAPI, error) {
			return postgres.New(host, port, username, password)
		},
		connectCache: func(addr, password string) cacheAPI {
			return redisadmin.New(addr, password)
		},
	}
}

// platform caches per-namespace state for one tick: the platform
// configuration, the recorded endpoint annotations and lazily opened admin
// connections shared by every tenant of the namespace.
type platform struct {
	cfg         *config.Config
	annotations map[string]string

	sql   sqlAPI
	sizes map[string]int64
	cache cacheAPI
}

func (p *platform) close() {
	if p.sql != nil {
		_ = p.sql.Close()
	}
	if p.cache != nil {
		_ = p.cache.Close()
	}
}

// Tick enforces quotas on every tenant once. Failures are logged and
// enforcement continues with the next tenant; the first failure is returned.
func (e *Enforcer) Tick(ctx context.Context) error {
	users := &whiskv1.WhiskUserList{}
	if err := e.Client.List(ctx, users); err != nil {
		return fmt.Errorf("listing tenants: %w", err)
	}

	byNamespace := map[string][]*whiskv1.WhiskUser{}
	for i := range users.Items {
		user := &users.Items[i]
		byNamespace[user.Namespace] = append(byNamespace[user.Namespace], user)
	}

	var firstErr error
	for namespace, tenants := range byNamespace {
		p, err := e.platform(ctx, namespace)
		if err != nil {
			e.Log.Info("platform not available, skipping namespace", "namespace", namespace, "reason", err.Error())
			continue
		}

		for _, user := range tenants {
			if err := e.enforceTenant(ctx, p, user); err != nil {
				e.Log.Error(err, "tenant enforcement failed, continuing", "tenant", user.Spec.Namespace)
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", user.Spec.Namespace, err)
				}
			}
		}
		p.close()
	}
	return firstErr
}

// platform loads the namespace's platform declaration and the endpoint
// annotations off the platform ConfigMap.
func (e *Enforcer) platform(ctx context.Context, namespace string) (*platform, error) {
	whisks := &whiskv1.WhiskList{}
	if err := e.Client.List(ctx, whisks, client.InNamespace(namespace)); err != nil {
		return nil, err
	}
	if len(whisks.Items) == 0 {
		return nil, fmt.Errorf("no platform declaration in namespace %q", namespace)
	}
	cfg, err := config.FromWhiskSpec(&whisks.Items[0].Spec)
	if err != nil {
		return nil, err
	}

	cm := &corev1.ConfigMap{}
	key := types.NamespacedName{Namespace: namespace, Name: whiskv1.ConfigConfigMapName}
	if err := e.Client.Get(ctx, key, cm); err != nil {
		return nil, err
	}

	return &platform{cfg: cfg, annotations: cm.Annotations}, nil
}

// enforceTenant compares every limited subsystem of one tenant against its
// measured usage and flips the ones whose state changed. Annotation updates
// are collected and patched once.
func (e *Enforcer) enforceTenant(ctx context.Context, p *platform, user *whiskv1.WhiskUser) error {
	tenantName := user.Spec.Namespace
	flips := map[string]bool{}
	var firstErr error

	record := func(subsystem string, err error) {
		e.Log.Error(err, "quota check failed, continuing", "tenant", tenantName, "subsystem", subsystem)
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", subsystem, err)
		}
	}

	if spec := user.Spec.Postgres; spec != nil && spec.Enabled {
		if limit, limited := quotaBytes(spec.Quota); limited {
			database := orDefault(spec.Database, tenantName)
			if err := e.enforceRelational(ctx, p, user, "postgres", database, tenantName, limit,
				whiskv1.AnnotationPostgresQuotaReached, flips); err != nil {
				record("postgres", err)
			}
		}
	}

	if spec := user.Spec.MongoDB; spec != nil && spec.Enabled {
		if limit, limited := quotaBytes(spec.Quota); limited {
			// The mongodb proxy keeps each tenant in a suffixed relational
			// database.
			database := orDefault(spec.Database, tenantName) + "_ferretdb"
			if err := e.enforceRelational(ctx, p, user, "ferretdb", database, tenantName, limit,
				whiskv1.AnnotationFerretQuotaReached, flips); err != nil {
				record("ferretdb", err)
			}
		}
	}

	if spec := user.Spec.Redis; spec != nil && spec.Enabled {
		if limit, limited := quotaBytes(spec.Quota); limited {
			if err := e.enforceCache(ctx, p, user, orDefault(spec.Prefix, tenantName+":"), limit, flips); err != nil {
				record("redis", err)
			}
		}
	}

	if err := e.patchAnnotations(ctx, user, flips); err != nil {
		return err
	}
	return firstErr
}

// enforceRelational toggles a tenant's access to one relational database. The
// annotation records the applied state, so the grants only change on a
// crossing.
func (e *Enforcer) enforceRelational(ctx context.Context, p *platform, user *whiskv1.WhiskUser,
	subsystem, database, username string, limit int64, annotation string, flips map[string]bool) error {
	sizes, err := e.databaseSizes(ctx, p)
	if err != nil {
		return err
	}
	size, provisioned := sizes[database]
	if !provisioned {
		return nil
	}

	reached := size >= limit
	if reached == annotated(user, annotation) {
		return nil
	}

	db, err := e.relational(p)
	if err != nil {
		return err
	}
	if reached {
		if err := db.SetReadOnly(ctx, database, username); err != nil {
			return err
		}
		metrics.RecordQuotaToggle(subsystem, "readonly")
	} else {
		if err := db.SetReadWrite(ctx, database, username); err != nil {
			return err
		}
		metrics.RecordQuotaToggle(subsystem, "readwrite")
	}
	flips[annotation] = reached
	return nil
}

// enforceCache flips the cache quota annotation. The tenant controller
// watches annotation changes and downgrades or restores the cache user's ACL
// on the next reconciliation.
func (e *Enforcer) enforceCache(ctx context.Context, p *platform, user *whiskv1.WhiskUser,
	prefix string, limit int64, flips map[string]bool) error {
	cache, err := e.cacheConn(p)
	if err != nil {
		return err
	}
	used, err := cache.PrefixUsedBytes(ctx, prefix)
	if err != nil {
		return err
	}

	reached := used >= limit
	if reached == annotated(user, whiskv1.AnnotationRedisQuotaReached) {
		return nil
	}
	if reached {
		metrics.RecordQuotaToggle("redis", "readonly")
	} else {
		metrics.RecordQuotaToggle("redis", "readwrite")
	}
	flips[whiskv1.AnnotationRedisQuotaReached] = reached
	return nil
}

// relational lazily opens the namespace's relational admin connection.
func (e *Enforcer) relational(p *platform) (sqlAPI, error) {
	if p.sql != nil {
		return p.sql, nil
	}
	host := p.annotations["postgres_host"]
	port := p.annotations["postgres_port"]
	if host == "" || port == "" {
		return nil, fmt.Errorf("the platform has not recorded the relational endpoint yet")
	}
	root := fmt.Sprintf("%v", p.cfg.PostgresValues()["rootPassword"])
	db, err := e.connectSQL(host, port, "postgres", root)
	if err != nil {
		return nil, err
	}
	p.sql = db
	return db, nil
}

// databaseSizes measures every database once per namespace and tick.
func (e *Enforcer) databaseSizes(ctx context.Context, p *platform) (map[string]int64, error) {
	if p.sizes != nil {
		return p.sizes, nil
	}
	db, err := e.relational(p)
	if err != nil {
		return nil, err
	}
	sizes, err := db.DatabaseSizes(ctx)
	if err != nil {
		return nil, err
	}
	p.sizes = sizes
	return sizes, nil
}

// cacheConn lazily opens the namespace's cache admin connection.
func (e *Enforcer) cacheConn(p *platform) (cacheAPI, error) {
	if p.cache != nil {
		return p.cache, nil
	}
	service := p.annotations["redis_service"]
	port := p.annotations["redis_port"]
	password := p.annotations["redis_password"]
	if service == "" || port == "" {
		return nil, fmt.Errorf("the platform has not recorded the cache endpoint yet")
	}
	p.cache = e.connectCache(service+":"+port, password)
	return p.cache, nil
}

// patchAnnotations applies the collected flips in one patch. A cleared flag
// is removed rather than set to "false" so a tenant in good standing carries
// no quota annotations at all.
func (e *Enforcer) patchAnnotations(ctx context.Context, user *whiskv1.WhiskUser, flips map[string]bool) error {
	if len(flips) == 0 {
		return nil
	}

	patch := client.MergeFrom(user.DeepCopy())
	if user.Annotations == nil {
		user.Annotations = map[string]string{}
	}
	for annotation, reached := range flips {
		if reached {
			user.Annotations[annotation] = "true"
		} else {
			delete(user.Annotations, annotation)
		}
	}
	return e.Client.Patch(ctx, user, patch)
}

func annotated(user *whiskv1.WhiskUser, annotation string) bool {
	return user.Annotations[annotation] == "true"
}

// quotaBytes converts a quota declaration in megabytes to a byte limit.
// Empty and "auto" mean unlimited.
func quotaBytes(quota string) (int64, bool) {
	if quota == "" || quota == "auto" {
		return 0, false
	}
	megabytes, err := strconv.ParseInt(quota, 10, 64)
	if err != nil || megabytes <= 0 {
		return 0, false
	}
	return megabytes * 1024 * 1024, true
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
