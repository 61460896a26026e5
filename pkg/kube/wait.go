// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package kube

import (
	"context"
	"fmt"
	"net/http"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/labels"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/nuvolaris/nuvolaris-operator/pkg/utils/retry"
)

// WaitForPodReady blocks until a pod matching the label selector reports the
// Ready condition. It polls with truncated exponential backoff and gives up
// after the default deadline.
func (c *Clients) WaitForPodReady(ctx context.Context, namespace, labelSelector string) error {
	selector, err := labels.Parse(labelSelector)
	if err != nil {
		return fmt.Errorf("parsing selector %q: %w", labelSelector, err)
	}

	return retry.UntilBackoff(ctx, retry.DefaultMaxBackoff, retry.DefaultDeadline, func(ctx context.Context) (bool, error) {
		podList := &corev1.PodList{}
		if err := c.client.List(ctx, podList, client.InNamespace(namespace), client.MatchingLabelsSelector{Selector: selector}); err != nil {
			return retry.MinorError(err)
		}

		for _, pod := range podList.Items {
			if podReady(&pod) {
				return retry.Ok()
			}
		}
		return retry.MinorError(fmt.Errorf("no ready pod matching %q in namespace %q", labelSelector, namespace))
	})
}

func podReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}
	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady && condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

// WaitForPhase blocks until the object's .status.phase equals the expected
// value, e.g. Bound for a bucket claim.
func (c *Clients) WaitForPhase(ctx context.Context, obj client.Object, expected string) error {
	return retry.UntilBackoff(ctx, retry.DefaultMaxBackoff, retry.DefaultDeadline, func(ctx context.Context) (bool, error) {
		phases, err := c.Query(ctx, obj, "{.status.phase}")
		if err != nil {
			return retry.MinorError(err)
		}
		if len(phases) > 0 && phases[0] == expected {
			return retry.Ok()
		}
		return retry.MinorError(fmt.Errorf("%s/%s not yet in phase %q", obj.GetNamespace(), obj.GetName(), expected))
	})
}

// WaitForHTTP probes the given URL until it answers with one of the allowed
// status codes. Some subsystems answer 401 to unauthenticated probes even
// when healthy, so the allowed set is explicit.
func WaitForHTTP(ctx context.Context, url string, allowedStatus ...int) error {
	httpClient := &http.Client{}

	return retry.UntilBackoff(ctx, retry.DefaultMaxBackoff, retry.DefaultDeadline, func(ctx context.Context) (bool, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.SevereError(err)
		}

		response, err := httpClient.Do(request)
		if err != nil {
			return retry.MinorError(err)
		}
		defer func() { _ = response.Body.Close() }()

		for _, status := range allowedStatus {
			if response.StatusCode == status {
				return retry.Ok()
			}
		}
		return retry.MinorError(fmt.Errorf("%s answered %d", url, response.StatusCode))
	})
}
