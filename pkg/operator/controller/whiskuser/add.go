// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package whiskuser

import (
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
)

// ControllerName is the name of this controller.
const ControllerName = "whiskuser"

// AddToManager adds the reconciler to the given manager. The annotation
// predicate is included so quota enforcer flips re-trigger the tenant.
func (r *Reconciler) AddToManager(mgr manager.Manager) error {
	if r.Client == nil {
		r.Client = mgr.GetClient()
	}
	r.defaultConnectors()

	return builder.
		ControllerManagedBy(mgr).
		Named(ControllerName).
		For(&whiskv1.WhiskUser{}, builder.WithPredicates(predicate.Or(
			predicate.GenerationChangedPredicate{},
			predicate.AnnotationChangedPredicate{},
		))).
		WithOptions(controller.Options{MaxConcurrentReconciles: 2}).
		Complete(r)
}
