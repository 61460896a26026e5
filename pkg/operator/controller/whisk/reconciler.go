// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package whisk reconciles the platform declaration: it diffs successive
// desired states into per-component actions and dispatches them along the
// component dependency graph, isolating failures per component.
package whisk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	storagev1 "k8s.io/api/storage/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1/validation"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/kube"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/metrics"
	"github.com/nuvolaris/nuvolaris-operator/pkg/templates"
)

// FinalizerName protects the platform resource until teardown finished.
const FinalizerName = "nuvolaris.org/finalizer"

// transientRetryDelay is how long to wait before retrying a component that
// failed with a transient error.
const transientRetryDelay = 30 * time.Second

// DefaultStorageClassAnnotation marks the cluster's default storage class.
const DefaultStorageClassAnnotation = "storageclass.kubernetes.io/is-default-class"

// Reconciler reconciles Whisk resources.
type Reconciler struct {
	Client   client.Client
	Kube     kube.Interface
	Registry *component.Registry
}

// Reconcile drives one platform declaration to its desired state.
func (r *Reconciler) Reconcile(ctx context.Context, req reconcile.Request) (result reconcile.Result, err error) {
	defer func() { metrics.RecordReconciliation(ControllerName, err) }()

	log := logf.FromContext(ctx)

	whisk := &whiskv1.Whisk{}
	if err := r.Client.Get(ctx, req.NamespacedName, whisk); err != nil {
		if errors.IsNotFound(err) {
			return reconcile.Result{}, nil
		}
		return reconcile.Result{}, err
	}

	if whisk.DeletionTimestamp != nil {
		return r.finalize(ctx, log, whisk)
	}

	if !controllerutil.ContainsFinalizer(whisk, FinalizerName) {
		patch := client.MergeFrom(whisk.DeepCopy())
		controllerutil.AddFinalizer(whisk, FinalizerName)
		if err := r.Client.Patch(ctx, whisk, patch); err != nil {
			return reconcile.Result{}, fmt.Errorf("adding finalizer: %w", err)
		}
	}

	if errs := validation.ValidateWhisk(whisk); len(errs) > 0 {
		log.Info("invalid platform declaration", "errors", errs.ToAggregate())
		return reconcile.Result{}, r.patchStatus(ctx, whisk, func(status *whiskv1.WhiskStatus) {
			meta.SetStatusCondition(&status.Conditions, metav1.Condition{
				Type:    whiskv1.WhiskInitialized,
				Status:  metav1.ConditionFalse,
				Reason:  "InvalidSpec",
				Message: errs.ToAggregate().Error(),
			})
		})
	}

	op, err := r.newOperation(ctx, log, whisk)
	if err != nil {
		if component.IsFatalConfigError(err) {
			log.Error(err, "platform configuration cannot be resolved")
			return reconcile.Result{}, r.patchStatus(ctx, whisk, func(status *whiskv1.WhiskStatus) {
				meta.SetStatusCondition(&status.Conditions, metav1.Condition{
					Type:    whiskv1.WhiskInitialized,
					Status:  metav1.ConditionFalse,
					Reason:  "ConfigurationError",
					Message: err.Error(),
				})
			})
		}
		return reconcile.Result{}, err
	}

	plan, err := r.plan(whisk)
	if err != nil {
		return reconcile.Result{}, err
	}

	if err := r.patchStatus(ctx, whisk, func(status *whiskv1.WhiskStatus) {
		meta.SetStatusCondition(&status.Conditions, metav1.Condition{
			Type:   whiskv1.WhiskInitialized,
			Status: metav1.ConditionTrue,
			Reason: "Reconciling",
		})
	}); err != nil {
		return reconcile.Result{}, err
	}

	states, transient, complete := r.dispatch(ctx, log, op, plan)

	// An incomplete pass keeps the previous applied spec, so the next
	// reconciliation re-plans the same changes and retries the failed
	// components.
	if complete {
		if err := r.recordAppliedSpec(ctx, whisk); err != nil {
			return reconcile.Result{}, err
		}
	}

	if err := r.patchStatus(ctx, whisk, func(status *whiskv1.WhiskStatus) {
		if status.ComponentStates == nil {
			status.ComponentStates = map[string]whiskv1.ComponentState{}
		}
		for name, state := range states {
			status.ComponentStates[name] = state
		}
		status.ObservedGeneration = whisk.Generation
		r.setReadyCondition(whisk, status)
	}); err != nil {
		return reconcile.Result{}, err
	}

	if transient {
		return reconcile.Result{RequeueAfter: transientRetryDelay}, nil
	}
	return reconcile.Result{}, nil
}

// newOperation builds the per-event operation: the config store from the
// declaration plus the resolved cluster defaults.
func (r *Reconciler) newOperation(ctx context.Context, log logr.Logger, whisk *whiskv1.Whisk) (*component.Operation, error) {
	cfg, err := config.FromWhiskSpec(&whisk.Spec)
	if err != nil {
		return nil, err
	}
	if err := r.resolveClusterDefaults(ctx, cfg); err != nil {
		return nil, err
	}
	return &component.Operation{
		Config:    cfg,
		Kube:      r.Kube,
		Renderer:  templates.NewRenderer(whisk.Namespace),
		Owner:     whisk,
		Namespace: whisk.Namespace,
		Log:       log,
	}, nil
}

// resolveClusterDefaults fills in the runtime flavour and the storage class
// when the declaration leaves them on auto-detection.
func (r *Reconciler) resolveClusterDefaults(ctx context.Context, cfg *config.Config) error {
	if cfg.GetOrDefault("nuvolaris.kube", "auto") == "auto" {
		cfg.Put("nuvolaris.kube", r.detectRuntime(ctx))
	}

	if cfg.Get("nuvolaris.storageclass") == "" {
		name, provisioner, err := r.defaultStorageClass(ctx)
		if err != nil {
			return component.NewFatalConfigError("nuvolaris.storageclass", "no default storage class: %v", err)
		}
		cfg.Put("nuvolaris.storageclass", name)
		if cfg.Get("nuvolaris.provisioner") == "" {
			cfg.Put("nuvolaris.provisioner", provisioner)
		}
	}
	return nil
}

// detectRuntime recognizes the kubernetes flavour from the node labels and
// provider IDs, falling back to generic.
func (r *Reconciler) detectRuntime(ctx context.Context) string {
	nodes := &corev1.NodeList{}
	if err := r.Kube.Client().List(ctx, nodes); err != nil || len(nodes.Items) == 0 {
		return "generic"
	}

	for _, node := range nodes.Items {
		if strings.HasPrefix(node.Spec.ProviderID, "kind://") {
			return "kind"
		}
		if node.Labels["node.kubernetes.io/instance-type"] == "k3s" {
			return "k3s"
		}
		for label := range node.Labels {
			switch {
			case strings.HasPrefix(label, "microk8s.io/"):
				return "microk8s"
			case strings.HasPrefix(label, "node.openshift.io/"):
				return "openshift"
			case strings.HasPrefix(label, "eks.amazonaws.com/"):
				return "eks"
			case strings.HasPrefix(label, "cloud.google.com/gke-"):
				return "gke"
			case strings.HasPrefix(label, "kubernetes.azure.com/"):
				return "aks"
			}
		}
	}
	return "generic"
}

// defaultStorageClass returns the cluster's annotated default storage class,
// or the only one present.
func (r *Reconciler) defaultStorageClass(ctx context.Context) (name, provisioner string, err error) {
	classes := &storagev1.StorageClassList{}
	if err := r.Kube.Client().List(ctx, classes); err != nil {
		return "", "", err
	}
	if len(classes.Items) == 0 {
		return "", "", fmt.Errorf("the cluster has no storage classes")
	}
	for _, class := range classes.Items {
		if class.Annotations[DefaultStorageClassAnnotation] == "true" {
			return class.Name, class.Provisioner, nil
		}
	}
	if len(classes.Items) == 1 {
		return classes.Items[0].Name, classes.Items[0].Provisioner, nil
	}
	return "", "", fmt.Errorf("%d storage classes and none is the default", len(classes.Items))
}

// plan turns the declaration into per-component actions: everything enabled
// on first contact, the classified diff afterwards.
func (r *Reconciler) plan(whisk *whiskv1.Whisk) (map[string]component.Action, error) {
	previous, ok := whisk.Annotations[whiskv1.AnnotationLastAppliedSpec]
	if !ok {
		plan := map[string]component.Action{}
		for _, name := range EnabledComponents(&whisk.Spec.Components) {
			plan[name] = component.ActionCreate
		}
		return plan, nil
	}

	oldSpec := &whiskv1.WhiskSpec{}
	if err := json.Unmarshal([]byte(previous), oldSpec); err != nil {
		return nil, fmt.Errorf("parsing last applied declaration: %w", err)
	}
	changes, err := Diff(oldSpec, &whisk.Spec)
	if err != nil {
		return nil, err
	}
	return Classify(changes, func(name string) bool {
		return ComponentEnabled(&whisk.Spec.Components, name)
	}), nil
}

// dispatch runs the planned actions: deletions first in reverse dependency
// order, then creations and updates along the dependency order. A component
// failure marks only that component. The complete flag reports whether every
// planned action was attempted and succeeded.
func (r *Reconciler) dispatch(ctx context.Context, log logr.Logger, op *component.Operation, plan map[string]component.Action) (states map[string]whiskv1.ComponentState, transient, complete bool) {
	var deletes, applies []string
	for name, action := range plan {
		if action == component.ActionDelete {
			deletes = append(deletes, name)
		} else {
			applies = append(applies, name)
		}
	}

	states = map[string]whiskv1.ComponentState{}
	complete = true

	run := func(ctrl component.Controller, action component.Action) {
		log.Info("patching component", "component", ctrl.Name(), "action", action)
		state, err := component.Patch(ctx, op, ctrl, action)
		states[ctrl.Name()] = state
		if err != nil {
			log.Error(err, "component reconciliation failed", "component", ctrl.Name(), "action", action)
			complete = false
			if component.IsTransientError(err) {
				transient = true
			}
		}
	}

	ordered, err := r.Registry.DeletionOrder(deletes)
	if err != nil {
		log.Error(err, "cannot order component deletions")
		complete = false
	} else {
		for _, ctrl := range ordered {
			run(ctrl, component.ActionDelete)
		}
	}

	ordered, err = r.Registry.CreationOrder(applies)
	if err != nil {
		log.Error(err, "cannot order component creations")
		return states, transient, false
	}
	for _, ctrl := range ordered {
		run(ctrl, plan[ctrl.Name()])
	}
	return states, transient, complete
}

// finalize tears the platform down in reverse dependency order and releases
// the finalizer.
func (r *Reconciler) finalize(ctx context.Context, log logr.Logger, whisk *whiskv1.Whisk) (reconcile.Result, error) {
	if !controllerutil.ContainsFinalizer(whisk, FinalizerName) {
		return reconcile.Result{}, nil
	}

	op, err := r.newOperation(ctx, log, whisk)
	if err != nil {
		return reconcile.Result{}, err
	}

	ordered, err := r.Registry.DeletionOrder(EnabledComponents(&whisk.Spec.Components))
	if err != nil {
		return reconcile.Result{}, err
	}
	for _, ctrl := range ordered {
		if err := ctrl.Delete(ctx, op); err != nil {
			log.Error(err, "component teardown failed, continuing", "component", ctrl.Name())
		}
	}

	patch := client.MergeFrom(whisk.DeepCopy())
	controllerutil.RemoveFinalizer(whisk, FinalizerName)
	if err := r.Client.Patch(ctx, whisk, patch); err != nil {
		return reconcile.Result{}, fmt.Errorf("removing finalizer: %w", err)
	}
	return reconcile.Result{}, nil
}

// recordAppliedSpec stores the just-reconciled declaration so the next event
// can be diffed against it.
func (r *Reconciler) recordAppliedSpec(ctx context.Context, whisk *whiskv1.Whisk) error {
	raw, err := json.Marshal(&whisk.Spec)
	if err != nil {
		return fmt.Errorf("marshalling applied declaration: %w", err)
	}
	patch := client.MergeFrom(whisk.DeepCopy())
	if whisk.Annotations == nil {
		whisk.Annotations = map[string]string{}
	}
	whisk.Annotations[whiskv1.AnnotationLastAppliedSpec] = string(raw)
	return r.Client.Patch(ctx, whisk, patch)
}

// setReadyCondition flips Ready true once every enabled component reports on.
func (r *Reconciler) setReadyCondition(whisk *whiskv1.Whisk, status *whiskv1.WhiskStatus) {
	ready := metav1.ConditionTrue
	reason := "AllComponentsOn"
	for _, name := range EnabledComponents(&whisk.Spec.Components) {
		if status.ComponentStates[name] != whiskv1.ComponentOn {
			ready = metav1.ConditionFalse
			reason = "ComponentsPending"
			break
		}
	}
	meta.SetStatusCondition(&status.Conditions, metav1.Condition{
		Type:   whiskv1.WhiskReady,
		Status: ready,
		Reason: reason,
	})
}

func (r *Reconciler) patchStatus(ctx context.Context, whisk *whiskv1.Whisk, mutate func(*whiskv1.WhiskStatus)) error {
	patch := client.MergeFrom(whisk.DeepCopy())
	mutate(&whisk.Status)
	return r.Client.Status().Patch(ctx, whisk, patch)
}

