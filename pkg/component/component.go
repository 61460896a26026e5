// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package component defines the contract every managed subsystem implements
// and the registry that orders them along their dependency graph.
package component

import (
	"context"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/kube"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
	"github.com/nuvolaris/nuvolaris-operator/pkg/templates"
)

// Action is the work the diff engine requests on one component.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Operation bundles everything a controller needs for one reconciliation of
// one owner resource. It is built once per event and shared read-only by the
// controllers.
type Operation struct {
	Config    *config.Config
	Kube      kube.Interface
	Renderer  *templates.Renderer
	Owner     client.Object
	Namespace string
	Log       logr.Logger
}

// Controller is implemented by every managed subsystem.
type Controller interface {
	// Name is the component flag name in the platform declaration.
	Name() string
	// Dependencies names the components that must be ready before this one
	// is created. Deletion runs in the reverse direction.
	Dependencies() []string
	// Create composes the templates with the component parameters, applies
	// them owned by op.Owner, waits for readiness, performs the post-install
	// side effects, and annotates the platform ConfigMap.
	Create(ctx context.Context, op *Operation) error
	// Delete removes the manifests and the externally provisioned side
	// effects.
	Delete(ctx context.Context, op *Operation) error
}

// Patch multiplexes a diff engine action onto a controller and returns the
// resulting component state.
func Patch(ctx context.Context, op *Operation, ctrl Controller, action Action) (whiskv1.ComponentState, error) {
	switch action {
	case ActionDelete:
		if err := ctrl.Delete(ctx, op); err != nil {
			return whiskv1.ComponentError, err
		}
		return whiskv1.ComponentOff, nil
	default:
		if err := ctrl.Create(ctx, op); err != nil {
			return whiskv1.ComponentError, err
		}
		return whiskv1.ComponentOn, nil
	}
}
