// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package kube

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/util/jsonpath"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/apiutil"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
)

// AnnotationAppliedHash records a hash of the applied spec so that re-applying
// an unchanged manifest is a no-op.
const AnnotationAppliedHash = "nuvolaris.org/applied-hash"

// Apply posts the manifests in list order. Every manifest receives an owner
// reference to owner so cluster garbage collection cascades deletion. A
// manifest whose content hash matches the live object is not rewritten.
func (c *Clients) Apply(ctx context.Context, owner client.Object, objs ...client.Object) error {
	for _, obj := range objs {
		if err := c.applyOne(ctx, owner, obj); err != nil {
			return fmt.Errorf("applying %s %s/%s: %w", obj.GetObjectKind().GroupVersionKind().Kind, obj.GetNamespace(), obj.GetName(), err)
		}
	}
	return nil
}

func (c *Clients) applyOne(ctx context.Context, owner client.Object, obj client.Object) error {
	hash, err := contentHash(obj)
	if err != nil {
		return err
	}

	if owner != nil {
		if err := controllerutil.SetOwnerReference(owner, obj, c.scheme); err != nil {
			return fmt.Errorf("setting owner reference: %w", err)
		}
	}
	setAnnotation(obj, AnnotationAppliedHash, hash)

	if err := c.client.Create(ctx, obj); err == nil || !apierrors.IsAlreadyExists(err) {
		return err
	}

	gvk, err := apiutil.GVKForObject(obj, c.scheme)
	if err != nil {
		return err
	}

	// Conflicts re-read the live object and retry the update.
	return retry.RetryOnConflict(retry.DefaultRetry, func() error {
		current, err := c.scheme.New(gvk)
		if err != nil {
			return err
		}
		live := current.(client.Object)

		if err := c.client.Get(ctx, client.ObjectKeyFromObject(obj), live); err != nil {
			return err
		}

		if live.GetAnnotations()[AnnotationAppliedHash] == hash {
			return nil
		}

		obj.SetResourceVersion(live.GetResourceVersion())
		return c.client.Update(ctx, obj)
	})
}

// DeleteAll deletes the manifests in reverse order, tolerating not-found.
func (c *Clients) DeleteAll(ctx context.Context, objs ...client.Object) error {
	for i := len(objs) - 1; i >= 0; i-- {
		if err := c.client.Delete(ctx, objs[i]); err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf("deleting %s/%s: %w", objs[i].GetNamespace(), objs[i].GetName(), err)
		}
	}
	return nil
}

// Query reads the live state of obj and evaluates a JSONPath expression, e.g.
// "{.status.loadBalancer.ingress[*].ip}". It returns the matched values.
func (c *Clients) Query(ctx context.Context, obj client.Object, expression string) ([]string, error) {
	if err := c.client.Get(ctx, client.ObjectKeyFromObject(obj), obj); err != nil {
		return nil, err
	}

	parser := jsonpath.New("query").AllowMissingKeys(true)
	if err := parser.Parse(expression); err != nil {
		return nil, fmt.Errorf("parsing jsonpath %q: %w", expression, err)
	}

	// JSONPath evaluation needs the generic representation.
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	results, err := parser.FindResults(generic)
	if err != nil {
		return nil, fmt.Errorf("evaluating jsonpath %q: %w", expression, err)
	}

	var values []string
	for _, result := range results {
		for _, value := range result {
			values = append(values, fmt.Sprintf("%v", value.Interface()))
		}
	}
	return values, nil
}

// contentHash hashes the manifest content, ignoring the metadata the apply
// itself mutates.
func contentHash(obj client.Object) (string, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("hashing manifest: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8]), nil
}

func setAnnotation(obj client.Object, key, value string) {
	annotations := obj.GetAnnotations()
	if annotations == nil {
		annotations = map[string]string{}
	}
	annotations[key] = value
	obj.SetAnnotations(annotations)
}
