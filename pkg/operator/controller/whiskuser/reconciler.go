// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package whiskuser reconciles tenant declarations: the couchdb subject plus
// the per-subsystem resources a tenant asked for. Provisioning records each
// step and continues past failures so one refusing subsystem does not block
// the rest of the tenant.
package whiskuser

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1/validation"
	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/couchdb"
	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/milvus"
	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/objectstorage"
	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/postgres"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/kube"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/metrics"
	"github.com/nuvolaris/nuvolaris-operator/pkg/templates"
	"github.com/nuvolaris/nuvolaris-operator/pkg/userdb"
)

// FinalizerName protects the tenant resource until teardown finished.
const FinalizerName = "nuvolaris.org/finalizer"

// retryDelay is how long to wait before retrying a partially provisioned
// tenant.
const retryDelay = 30 * time.Second

// documentAPI is the slice of the document database client used here.
// Superset of userdb.DocumentAPI, satisfied by *couchdb.Client.
type documentAPI interface {
	userdb.DocumentAPI
	AddSubject(ctx context.Context, namespace, uuid, key string) error
	DeleteSubject(ctx context.Context, namespace string) error
}

type storeAPI interface {
	AddUser(ctx context.Context, username, secretKey string) error
	EnsureBucket(ctx context.Context, name string) error
	EnsurePublicBucket(ctx context.Context, name string) error
	GrantReadWrite(ctx context.Context, username string, buckets ...string) error
	SetBucketQuota(ctx context.Context, bucket string, megabytes uint64) error
	ForceRemoveBucket(ctx context.Context, name string) error
	RemoveUser(ctx context.Context, username string) error
}

type sqlAPI interface {
	EnsureDatabaseAndUser(ctx context.Context, database, username, password string) error
	DropDatabaseAndUser(ctx context.Context, database, username string) error
	Close() error
}

type vectorAPI interface {
	SetupUser(ctx context.Context, username, password, database string) error
	RemoveUser(ctx context.Context, username, database string) error
	Close() error
}

// Reconciler reconciles WhiskUser resources.
type Reconciler struct {
	Client client.Client
	Kube   kube.Interface

	connectDoc    func(url, username, password string) (documentAPI, error)
	connectStore  func(endpoint, accessKey, secretKey string) (storeAPI, error)
	connectSQL    func(host, port, username, password string) (sqlAPI, error)
	connectVector func(ctx context.Context, address, rootPassword string, legacyPrivileges bool) (vectorAPI, error)
}

func (r *Reconciler) defaultConnectors() {
	if r.connectDoc == nil {
		r.connectDoc = func(url, username, password string) (documentAPI, error) {
			return couchdb.New(url, username, password)
		}
	}
	if r.connectStore == nil {
		r.connectStore = func(endpoint, accessKey, secretKey string) (storeAPI, error) {
			return objectstorage.New(endpoint, accessKey, secretKey)
		}
	}
	if r.connectSQL == nil {
		r.connectSQL = func(host, port, username, password string) (sqlAPI, error) {
			return postgres.New(host, port, username, password)
		}
	}
	if r.connectVector == nil {
		r.connectVector = func(ctx context.Context, address, rootPassword string, legacyPrivileges bool) (vectorAPI, error) {
			return milvus.New(ctx, address, rootPassword, legacyPrivileges)
		}
	}
}

// tenant bundles everything one reconciliation of a tenant needs: the
// declaration, the platform configuration and the endpoint annotations the
// component controllers recorded on the platform ConfigMap.
type tenant struct {
	user        *whiskv1.WhiskUser
	op          *component.Operation
	annotations map[string]string
	metadata    *userdb.Metadata
}

// annotation returns one recorded platform endpoint, or an error naming the
// subsystem that has not reported yet.
func (t *tenant) annotation(name string) (string, error) {
	value := t.annotations[name]
	if value == "" {
		return "", fmt.Errorf("the platform has not recorded %q yet", name)
	}
	return value, nil
}

// Reconcile drives one tenant declaration to its desired state.
func (r *Reconciler) Reconcile(ctx context.Context, req reconcile.Request) (result reconcile.Result, err error) {
	defer func() { metrics.RecordReconciliation(ControllerName, err) }()

	log := logf.FromContext(ctx)

	user := &whiskv1.WhiskUser{}
	if err := r.Client.Get(ctx, req.NamespacedName, user); err != nil {
		if errors.IsNotFound(err) {
			return reconcile.Result{}, nil
		}
		return reconcile.Result{}, err
	}

	if user.DeletionTimestamp != nil {
		return r.finalize(ctx, user)
	}

	if !controllerutil.ContainsFinalizer(user, FinalizerName) {
		patch := client.MergeFrom(user.DeepCopy())
		controllerutil.AddFinalizer(user, FinalizerName)
		if err := r.Client.Patch(ctx, user, patch); err != nil {
			return reconcile.Result{}, fmt.Errorf("adding finalizer: %w", err)
		}
	}

	if errs := validation.ValidateWhiskUser(user); len(errs) > 0 {
		log.Info("invalid tenant declaration", "tenant", user.Spec.Namespace, "errors", errs.ToAggregate())
		return reconcile.Result{}, r.patchStatus(ctx, user, func(status *whiskv1.WhiskUserStatus) {
			status.Phase = whiskv1.UserPhaseFailed
			status.Message = errs.ToAggregate().Error()
		})
	}

	if err := r.patchStatus(ctx, user, func(status *whiskv1.WhiskUserStatus) {
		status.Phase = whiskv1.UserPhaseProvisioning
		status.Message = ""
	}); err != nil {
		return reconcile.Result{}, err
	}

	t, err := r.newTenant(ctx, user)
	if err != nil {
		// The platform is not installed (yet) in this namespace.
		log.Info("platform not available, retrying", "tenant", user.Spec.Namespace, "reason", err.Error())
		return reconcile.Result{RequeueAfter: retryDelay}, nil
	}

	provisioned, firstErr := r.provision(ctx, t)

	if err := r.patchStatus(ctx, user, func(status *whiskv1.WhiskUserStatus) {
		status.Provisioned = provisioned
		if firstErr != nil {
			status.Phase = whiskv1.UserPhasePartial
			status.Message = firstErr.Error()
		} else {
			status.Phase = whiskv1.UserPhaseReady
			status.Message = ""
		}
	}); err != nil {
		return reconcile.Result{}, err
	}

	if firstErr != nil {
		return reconcile.Result{RequeueAfter: retryDelay}, nil
	}
	return reconcile.Result{}, nil
}

// newTenant loads the platform declaration of the tenant's namespace and the
// endpoint annotations off the platform ConfigMap.
func (r *Reconciler) newTenant(ctx context.Context, user *whiskv1.WhiskUser) (*tenant, error) {
	whisks := &whiskv1.WhiskList{}
	if err := r.Client.List(ctx, whisks, client.InNamespace(user.Namespace)); err != nil {
		return nil, err
	}
	if len(whisks.Items) == 0 {
		return nil, fmt.Errorf("no platform declaration in namespace %q", user.Namespace)
	}
	cfg, err := config.FromWhiskSpec(&whisks.Items[0].Spec)
	if err != nil {
		return nil, err
	}

	cm := &corev1.ConfigMap{}
	key := types.NamespacedName{Namespace: user.Namespace, Name: whiskv1.ConfigConfigMapName}
	if err := r.Kube.Client().Get(ctx, key, cm); err != nil {
		return nil, err
	}

	return &tenant{
		user: user,
		op: &component.Operation{
			Config:    cfg,
			Kube:      r.Kube,
			Renderer:  templates.NewRenderer(user.Namespace),
			Owner:     user,
			Namespace: user.Namespace,
			Log:       logf.FromContext(ctx),
		},
		annotations: cm.Annotations,
		metadata:    userdb.NewMetadata(user.Spec.Namespace, user.Spec.Password, user.Spec.Email),
	}, nil
}

// finalize tears the tenant's resources down, tolerating subsystems that are
// already gone, and releases the finalizer.
func (r *Reconciler) finalize(ctx context.Context, user *whiskv1.WhiskUser) (reconcile.Result, error) {
	log := logf.FromContext(ctx)

	if !controllerutil.ContainsFinalizer(user, FinalizerName) {
		return reconcile.Result{}, nil
	}

	if t, err := r.newTenant(ctx, user); err != nil {
		log.Info("platform gone, skipping tenant teardown", "tenant", user.Spec.Namespace, "reason", err.Error())
	} else {
		r.teardown(ctx, t)
	}

	patch := client.MergeFrom(user.DeepCopy())
	controllerutil.RemoveFinalizer(user, FinalizerName)
	if err := r.Client.Patch(ctx, user, patch); err != nil {
		return reconcile.Result{}, fmt.Errorf("removing finalizer: %w", err)
	}
	return reconcile.Result{}, nil
}

func (r *Reconciler) patchStatus(ctx context.Context, user *whiskv1.WhiskUser, mutate func(*whiskv1.WhiskUserStatus)) error {
	patch := client.MergeFrom(user.DeepCopy())
	mutate(&user.Status)
	return r.Client.Status().Patch(ctx, user, patch)
}
