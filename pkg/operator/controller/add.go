// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package controller wires the operator's reconcilers into a manager.
package controller

import (
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/manager"

	"github.com/nuvolaris/nuvolaris-operator/pkg/kube"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/controller/whisk"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/controller/whiskuser"
)

// AddToManager adds all controllers to the given manager.
func AddToManager(mgr manager.Manager, k kube.Interface) error {
	if err := (&whisk.Reconciler{Kube: k}).AddToManager(mgr); err != nil {
		return fmt.Errorf("adding whisk controller: %w", err)
	}
	if err := (&whiskuser.Reconciler{Kube: k}).AddToManager(mgr); err != nil {
		return fmt.Errorf("adding whiskuser controller: %w", err)
	}
	return nil
}
