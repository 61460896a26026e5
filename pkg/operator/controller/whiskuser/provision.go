// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package whiskuser

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nuvolaris/nuvolaris-operator/pkg/apihost"
	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/mongodb"
	rediscomp "github.com/nuvolaris/nuvolaris-operator/pkg/component/redis"
	staticcomp "github.com/nuvolaris/nuvolaris-operator/pkg/component/static"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
	"github.com/nuvolaris/nuvolaris-operator/pkg/userdb"
	"github.com/nuvolaris/nuvolaris-operator/pkg/utils/flow"
)

// step is one provisioning unit: a subsystem name for the status map plus the
// work to run when the declaration requests it.
type step struct {
	name      string
	requested bool
	run       func(ctx context.Context, t *tenant) error
}

func (r *Reconciler) steps(t *tenant) []step {
	spec := &t.user.Spec
	return []step{
		{"couchdb", true, r.provisionSubject},
		{"object-storage", spec.ObjectStorage != nil, r.provisionObjectStorage},
		{"redis", spec.Redis != nil && spec.Redis.Enabled, r.provisionRedis},
		{"mongodb", spec.MongoDB != nil && spec.MongoDB.Enabled, r.provisionMongoDB},
		{"postgres", spec.Postgres != nil && spec.Postgres.Enabled, r.provisionPostgres},
		{"milvus", spec.Milvus != nil && spec.Milvus.Enabled, r.provisionMilvus},
		{"metadata", true, r.saveMetadata},
	}
}

// provision runs the requested steps as a flow. The steps carry no mutual
// dependencies, so a failing step only fails itself and the remaining steps
// still run; the returned error aggregates the failures for the status
// message.
func (r *Reconciler) provision(ctx context.Context, t *tenant) (map[string]bool, error) {
	provisioned := map[string]bool{}

	g := flow.NewGraph("tenant provisioning")
	for _, s := range r.steps(t) {
		s := s
		g.Add(flow.Task{
			Name:   s.name,
			SkipIf: !s.requested,
			Fn: func(ctx context.Context) error {
				if err := s.run(ctx, t); err != nil {
					provisioned[s.name] = false
					return err
				}
				provisioned[s.name] = true
				return nil
			},
		})
	}

	err := g.Compile().Run(ctx, flow.Opts{
		Log: t.op.Log.WithValues("tenant", t.user.Spec.Namespace),
	})
	return provisioned, err
}

// teardown undoes the provisioning steps in reverse order, tolerating
// subsystems that are already gone.
func (r *Reconciler) teardown(ctx context.Context, t *tenant) {
	spec := &t.user.Spec
	log := t.op.Log

	undo := func(name string, requested bool, run func(context.Context, *tenant) error) {
		if !requested {
			return
		}
		if err := run(ctx, t); err != nil {
			log.Error(err, "tenant teardown step failed, continuing",
				"tenant", spec.Namespace, "step", name)
		}
	}

	undo("metadata", true, r.removeMetadata)
	undo("milvus", spec.Milvus != nil && spec.Milvus.Enabled, r.removeMilvus)
	undo("postgres", spec.Postgres != nil && spec.Postgres.Enabled, r.removePostgres)
	undo("mongodb", spec.MongoDB != nil && spec.MongoDB.Enabled, r.removeMongoDB)
	undo("redis", spec.Redis != nil && spec.Redis.Enabled, r.removeRedis)
	undo("object-storage", spec.ObjectStorage != nil, r.removeObjectStorage)
	undo("couchdb", true, r.removeSubject)
}

// document opens the document database with the platform admin credentials.
func (r *Reconciler) document(t *tenant) (documentAPI, error) {
	host, err := t.annotation("couchdb_host")
	if err != nil {
		return nil, err
	}
	port, err := t.annotation("couchdb_port")
	if err != nil {
		return nil, err
	}
	values := t.op.Config.CouchDBValues()
	return r.connectDoc(
		fmt.Sprintf("http://%s:%s", host, port),
		fmt.Sprintf("%v", values["adminUser"]),
		fmt.Sprintf("%v", values["adminPassword"]),
	)
}

func (r *Reconciler) provisionSubject(ctx context.Context, t *tenant) error {
	id, key, err := splitAuth(t.user.Spec.Auth)
	if err != nil {
		return err
	}
	db, err := r.document(t)
	if err != nil {
		return err
	}
	if err := db.AddSubject(ctx, t.user.Spec.Namespace, id, key); err != nil {
		return err
	}
	t.metadata.Add(userdb.KeyAuth, t.user.Spec.Auth)
	return nil
}

func (r *Reconciler) removeSubject(ctx context.Context, t *tenant) error {
	db, err := r.document(t)
	if err != nil {
		return err
	}
	return db.DeleteSubject(ctx, t.user.Spec.Namespace)
}

// store opens the object store with the platform credentials recorded by the
// object store component.
func (r *Reconciler) store(t *tenant) (storeAPI, string, string, error) {
	host, err := t.annotation("s3_host")
	if err != nil {
		return nil, "", "", err
	}
	port, err := t.annotation("s3_port")
	if err != nil {
		return nil, "", "", err
	}
	accessKey, err := t.annotation("s3_access_key")
	if err != nil {
		return nil, "", "", err
	}
	secretKey, err := t.annotation("s3_secret_key")
	if err != nil {
		return nil, "", "", err
	}
	store, err := r.connectStore(fmt.Sprintf("http://%s:%s", host, port), accessKey, secretKey)
	return store, host, port, err
}

func (r *Reconciler) provisionObjectStorage(ctx context.Context, t *tenant) error {
	spec := t.user.Spec.ObjectStorage
	tenantName := t.user.Spec.Namespace

	store, host, port, err := r.store(t)
	if err != nil {
		return err
	}

	password := orGenerated(spec.Password)
	if err := store.AddUser(ctx, tenantName, password); err != nil {
		return err
	}

	var buckets []string
	if spec.Data.Enabled {
		bucket := orDefault(spec.Data.Bucket, tenantName+"-data")
		if err := store.EnsureBucket(ctx, bucket); err != nil {
			return err
		}
		buckets = append(buckets, bucket)
		t.metadata.Add(userdb.KeyS3BucketData, bucket)
	}
	if spec.Route.Enabled {
		bucket := orDefault(spec.Route.Bucket, tenantName+"-web")
		if err := store.EnsurePublicBucket(ctx, bucket); err != nil {
			return err
		}
		buckets = append(buckets, bucket)
		t.metadata.Add(userdb.KeyS3BucketStatic, bucket)
	}
	if len(buckets) > 0 {
		if err := store.GrantReadWrite(ctx, tenantName, buckets...); err != nil {
			return err
		}
	}

	if megabytes, limited := numericQuota(spec.Quota); limited {
		for _, bucket := range buckets {
			if err := store.SetBucketQuota(ctx, bucket, megabytes); err != nil {
				return err
			}
		}
	}

	t.metadata.Add(userdb.KeyS3Provider, t.annotations["s3_provider"])
	t.metadata.Add(userdb.KeyS3Host, host)
	t.metadata.Add(userdb.KeyS3Port, port)
	t.metadata.Add(userdb.KeyS3AccessKey, tenantName)
	t.metadata.Add(userdb.KeyS3SecretKey, password)

	if spec.Route.Enabled {
		return r.provisionStaticRoute(ctx, t, orDefault(spec.Route.Bucket, tenantName+"-web"))
	}
	return nil
}

// provisionStaticRoute exposes the tenant's web bucket under
// <tenant>.<platform host> through the static gateway.
func (r *Reconciler) provisionStaticRoute(ctx context.Context, t *tenant, bucket string) error {
	apihostURL, err := t.annotation("apihost")
	if err != nil {
		return err
	}
	tenantName := t.user.Spec.Namespace

	values, err := staticcomp.TenantIngressValues(t.op.Config, tenantName, apihostURL, bucket)
	if err != nil {
		return err
	}
	if _, err := component.Deploy(ctx, t.op, "ingress", config.Values(values)); err != nil {
		return err
	}

	host, err := apihost.UserStaticHost(tenantName, apihostURL)
	if err != nil {
		return err
	}
	runtime := t.op.Config.GetOrDefault("nuvolaris.kube", "auto")
	t.metadata.Add(userdb.KeyStaticContentURL, apihost.URL(t.op.Config, runtime, host))
	return nil
}

func (r *Reconciler) removeObjectStorage(ctx context.Context, t *tenant) error {
	spec := t.user.Spec.ObjectStorage
	tenantName := t.user.Spec.Namespace

	store, _, _, err := r.store(t)
	if err != nil {
		return err
	}

	if spec.Route.Enabled {
		apihostURL, err := t.annotation("apihost")
		if err == nil {
			bucket := orDefault(spec.Route.Bucket, tenantName+"-web")
			if values, err := staticcomp.TenantIngressValues(t.op.Config, tenantName, apihostURL, bucket); err == nil {
				if err := component.Undeploy(ctx, t.op, "ingress", config.Values(values)); err != nil {
					return err
				}
			}
		}
		if err := store.ForceRemoveBucket(ctx, orDefault(spec.Route.Bucket, tenantName+"-web")); err != nil {
			return err
		}
	}
	if spec.Data.Enabled {
		if err := store.ForceRemoveBucket(ctx, orDefault(spec.Data.Bucket, tenantName+"-data")); err != nil {
			return err
		}
	}
	return store.RemoveUser(ctx, tenantName)
}

func (r *Reconciler) provisionRedis(ctx context.Context, t *tenant) error {
	spec := t.user.Spec.Redis
	tenantName := t.user.Spec.Namespace

	provider, err := t.annotation("redis_provider")
	if err != nil {
		return err
	}
	adminPassword, err := t.annotation("redis_password")
	if err != nil {
		return err
	}
	service, err := t.annotation("redis_service")
	if err != nil {
		return err
	}
	port, err := t.annotation("redis_port")
	if err != nil {
		return err
	}

	prefix := orDefault(spec.Prefix, tenantName+":")
	password := orGenerated(spec.Password)

	// A tenant over quota keeps its user but is downgraded to read-only. The
	// annotation is owned by the quota enforcer and honored on resume.
	category := "+@all"
	if t.user.Annotations[whiskv1.AnnotationRedisQuotaReached] == "true" {
		category = "+@read"
	}

	if err := rediscomp.EnsureUser(ctx, t.op, provider, adminPassword, tenantName, password, prefix, category); err != nil {
		return err
	}

	t.metadata.Add(userdb.KeyRedisURL, fmt.Sprintf("redis://%s:%s@%s:%s", tenantName, password, service, port))
	t.metadata.Add(userdb.KeyRedisPrefix, prefix)
	t.metadata.Add(userdb.KeyRedisPassword, password)
	return nil
}

func (r *Reconciler) removeRedis(ctx context.Context, t *tenant) error {
	spec := t.user.Spec.Redis
	tenantName := t.user.Spec.Namespace

	provider, err := t.annotation("redis_provider")
	if err != nil {
		return err
	}
	adminPassword, err := t.annotation("redis_password")
	if err != nil {
		return err
	}
	return rediscomp.DeleteUser(ctx, t.op, provider, adminPassword, tenantName, orDefault(spec.Prefix, tenantName+":"))
}

// relational opens the relational database as the superuser.
func (r *Reconciler) relational(t *tenant) (sqlAPI, string, string, error) {
	host, err := t.annotation("postgres_host")
	if err != nil {
		return nil, "", "", err
	}
	port, err := t.annotation("postgres_port")
	if err != nil {
		return nil, "", "", err
	}
	root := fmt.Sprintf("%v", t.op.Config.PostgresValues()["rootPassword"])
	db, err := r.connectSQL(host, port, "postgres", root)
	return db, host, port, err
}

func (r *Reconciler) provisionMongoDB(ctx context.Context, t *tenant) error {
	spec := t.user.Spec.MongoDB
	tenantName := t.user.Spec.Namespace

	db, _, _, err := r.relational(t)
	if err != nil {
		return err
	}
	defer db.Close()

	database := orDefault(spec.Database, tenantName)
	password := orGenerated(spec.Password)

	// The mongodb proxy stores each tenant database in a dedicated relational
	// database, suffixed so the quota enforcer can tell them apart.
	if err := db.EnsureDatabaseAndUser(ctx, database+"_ferretdb", tenantName, password); err != nil {
		return err
	}

	t.metadata.Add(userdb.KeyMongoDBURL, mongodb.URL(t.op.Namespace, tenantName, password, database))
	return nil
}

func (r *Reconciler) removeMongoDB(ctx context.Context, t *tenant) error {
	spec := t.user.Spec.MongoDB
	tenantName := t.user.Spec.Namespace

	db, _, _, err := r.relational(t)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.DropDatabaseAndUser(ctx, orDefault(spec.Database, tenantName)+"_ferretdb", tenantName)
}

func (r *Reconciler) provisionPostgres(ctx context.Context, t *tenant) error {
	spec := t.user.Spec.Postgres
	tenantName := t.user.Spec.Namespace

	db, host, port, err := r.relational(t)
	if err != nil {
		return err
	}
	defer db.Close()

	database := orDefault(spec.Database, tenantName)
	password := orGenerated(spec.Password)
	if err := db.EnsureDatabaseAndUser(ctx, database, tenantName, password); err != nil {
		return err
	}

	t.metadata.Add(userdb.KeyPostgresDatabase, database)
	t.metadata.Add(userdb.KeyPostgresHost, host)
	t.metadata.Add(userdb.KeyPostgresPort, port)
	t.metadata.Add(userdb.KeyPostgresUsername, tenantName)
	t.metadata.Add(userdb.KeyPostgresPassword, password)
	t.metadata.Add(userdb.KeyPostgresURL,
		fmt.Sprintf("postgresql://%s:%s@%s:%s/%s", tenantName, password, host, port, database))
	return nil
}

func (r *Reconciler) removePostgres(ctx context.Context, t *tenant) error {
	spec := t.user.Spec.Postgres
	tenantName := t.user.Spec.Namespace

	db, _, _, err := r.relational(t)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.DropDatabaseAndUser(ctx, orDefault(spec.Database, tenantName), tenantName)
}

func (r *Reconciler) provisionMilvus(ctx context.Context, t *tenant) error {
	spec := t.user.Spec.Milvus
	tenantName := t.user.Spec.Namespace

	host, err := t.annotation("milvus_host")
	if err != nil {
		return err
	}
	port, err := t.annotation("milvus_port")
	if err != nil {
		return err
	}

	root := fmt.Sprintf("%v", t.op.Config.MilvusValues()["rootPassword"])
	vector, err := r.connectVector(ctx, host+":"+port, root, t.op.Config.GetBool("milvus.legacy-privileges"))
	if err != nil {
		return err
	}
	defer vector.Close()

	database := orDefault(spec.Database, tenantName)
	password := orGenerated(spec.Password)
	if err := vector.SetupUser(ctx, tenantName, password, database); err != nil {
		return err
	}

	t.metadata.Add(userdb.KeyMilvusHost, host)
	t.metadata.Add(userdb.KeyMilvusPort, port)
	t.metadata.Add(userdb.KeyMilvusToken, tenantName+":"+password)
	t.metadata.Add(userdb.KeyMilvusDBName, database)
	return nil
}

func (r *Reconciler) removeMilvus(ctx context.Context, t *tenant) error {
	spec := t.user.Spec.Milvus
	tenantName := t.user.Spec.Namespace

	host, err := t.annotation("milvus_host")
	if err != nil {
		return err
	}
	port, err := t.annotation("milvus_port")
	if err != nil {
		return err
	}
	root := fmt.Sprintf("%v", t.op.Config.MilvusValues()["rootPassword"])
	vector, err := r.connectVector(ctx, host+":"+port, root, t.op.Config.GetBool("milvus.legacy-privileges"))
	if err != nil {
		return err
	}
	defer vector.Close()
	return vector.RemoveUser(ctx, tenantName, orDefault(spec.Database, tenantName))
}

// saveMetadata persists the tenant document with whatever the earlier steps
// managed to allocate.
func (r *Reconciler) saveMetadata(ctx context.Context, t *tenant) error {
	db, err := r.document(t)
	if err != nil {
		return err
	}
	store := userdb.NewStore(db)
	if err := store.Init(ctx); err != nil {
		return err
	}
	return store.Save(ctx, t.metadata)
}

func (r *Reconciler) removeMetadata(ctx context.Context, t *tenant) error {
	db, err := r.document(t)
	if err != nil {
		return err
	}
	return userdb.NewStore(db).Delete(ctx, t.user.Spec.Namespace)
}

// splitAuth cuts the "uuid:key" credential.
func splitAuth(auth string) (id, key string, err error) {
	id, key, found := strings.Cut(auth, ":")
	if !found {
		return "", "", fmt.Errorf("credential is not in the form uuid:key")
	}
	return id, key, nil
}

// numericQuota parses a quota declaration in megabytes. Empty and "auto"
// mean unlimited.
func numericQuota(quota string) (uint64, bool) {
	if quota == "" || quota == "auto" {
		return 0, false
	}
	value, err := strconv.ParseUint(quota, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// orGenerated falls back to a random credential when the declaration does not
// pin one. Re-reconciling with a generated credential converges because every
// subsystem call updates the stored secret.
func orGenerated(password string) string {
	if password == "" {
		return uuid.NewString()
	}
	return password
}
