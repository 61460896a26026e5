// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package component

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/client"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/operator/config"
)

// Deploy renders the named chart with the given values and applies the
// result owned by the operation's owner. The applied objects are returned in
// install order.
func Deploy(ctx context.Context, op *Operation, chartName string, values config.Values) ([]client.Object, error) {
	objs, err := op.Renderer.RenderObjects(chartName, values)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", chartName, err)
	}
	if err := op.Kube.Apply(ctx, op.Owner, objs...); err != nil {
		return nil, NewTransientError(fmt.Errorf("applying %s: %w", chartName, err))
	}
	return objs, nil
}

// Undeploy renders the named chart and deletes the resulting manifests in
// reverse order, tolerating objects that are already gone.
func Undeploy(ctx context.Context, op *Operation, chartName string, values config.Values) error {
	objs, err := op.Renderer.RenderObjects(chartName, values)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", chartName, err)
	}
	if err := op.Kube.DeleteAll(ctx, objs...); err != nil {
		return NewTransientError(fmt.Errorf("deleting %s: %w", chartName, err))
	}
	return nil
}

// AnnotateConfig merges the given annotations into the platform ConfigMap,
// creating it on first use. Component modules record their derived endpoints
// here so user-facing code can read them at invocation time.
func AnnotateConfig(ctx context.Context, op *Operation, annotations map[string]string) error {
	c := op.Kube.Client()
	key := types.NamespacedName{Namespace: op.Namespace, Name: whiskv1.ConfigConfigMapName}

	return retry.RetryOnConflict(retry.DefaultRetry, func() error {
		cm := &corev1.ConfigMap{}
		if err := c.Get(ctx, key, cm); err != nil {
			if !apierrors.IsNotFound(err) {
				return err
			}
			cm = &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{
					Namespace:   key.Namespace,
					Name:        key.Name,
					Annotations: annotations,
				},
			}
			return c.Create(ctx, cm)
		}

		if cm.Annotations == nil {
			cm.Annotations = map[string]string{}
		}
		for k, v := range annotations {
			cm.Annotations[k] = v
		}
		return c.Update(ctx, cm)
	})
}

// ConfigAnnotation reads one annotation back from the platform ConfigMap.
func ConfigAnnotation(ctx context.Context, op *Operation, name string) (string, error) {
	cm := &corev1.ConfigMap{}
	key := types.NamespacedName{Namespace: op.Namespace, Name: whiskv1.ConfigConfigMapName}
	if err := op.Kube.Client().Get(ctx, key, cm); err != nil {
		return "", err
	}
	return cm.Annotations[name], nil
}
