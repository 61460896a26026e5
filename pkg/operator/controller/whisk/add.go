// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package whisk

import (
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
)

// ControllerName is the name of this controller.
const ControllerName = "whisk"

// AddToManager adds the reconciler to the given manager. Reconciliations are
// serialized: the components share the platform ConfigMap and the external
// subsystems cannot be converged concurrently.
func (r *Reconciler) AddToManager(mgr manager.Manager) error {
	if r.Client == nil {
		r.Client = mgr.GetClient()
	}
	if r.Registry == nil {
		r.Registry = NewComponentRegistry()
	}

	return builder.
		ControllerManagedBy(mgr).
		Named(ControllerName).
		For(&whiskv1.Whisk{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		WithOptions(controller.Options{MaxConcurrentReconciles: 1}).
		Complete(r)
}
