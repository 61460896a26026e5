// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package kafka manages the message log between the function controller and
// the invokers.
package kafka

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

type controller struct{}

// NewController returns the kafka component controller.
func NewController() component.Controller { return &controller{} }

func (c *controller) Name() string { return "kafka" }

func (c *controller) Dependencies() []string { return []string{"zookeeper"} }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	// The coordinator endpoint is discovered before rendering so the broker
	// configuration points at the live service address.
	op.Config.Put("kafka.zookeeper-url", c.zookeeperURL(ctx, op))

	if _, err := component.Deploy(ctx, op, "kafka", op.Config.KafkaValues()); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=kafka"); err != nil {
		return component.NewTransientError(err)
	}
	return nil
}

// zookeeperURL resolves the coordinator connect endpoint, preferring the live
// service address over the headless DNS name.
func (c *controller) zookeeperURL(ctx context.Context, op *component.Operation) string {
	svc := &corev1.Service{ObjectMeta: metav1.ObjectMeta{Namespace: op.Namespace, Name: "zookeeper"}}
	values, err := op.Kube.Query(ctx, svc, "{.spec.clusterIP}")
	if err == nil && len(values) > 0 && values[0] != "" && values[0] != "None" {
		return fmt.Sprintf("%s:2181", values[0])
	}
	return fmt.Sprintf("zookeeper-0.zookeeper.%s.svc.cluster.local:2181", op.Namespace)
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "kafka", op.Config.KafkaValues())
}
