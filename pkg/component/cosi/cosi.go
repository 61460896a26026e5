// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package cosi provisions the platform buckets through ObjectBucketClaim
// resources on clusters that bring their own object store, typically rook.
// The claim provisioner generates the bucket credentials, so the component
// waits for each claim to bind and then reads them back from the generated
// secret and configmap.
package cosi

import (
	"context"
	_ "embed"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"

	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/objectstorage"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

// The platform bucket claims. Claim and bucket share the name.
const (
	DataClaim = "nuvolaris-data"
	WebClaim  = "nuvolaris-web"
)

// OwnerARN is the principal the bucket policies are issued for.
const OwnerARN = "arn:aws:iam:::user/nuvolaris"

//go:embed index.html
var welcomePage []byte

type storeAPI interface {
	ApplyBucketPolicy(ctx context.Context, bucket string, policy objectstorage.Policy) error
	UploadContent(ctx context.Context, bucket, key string, body []byte) error
}

// claimAccess is what the provisioner generated for one bound claim.
type claimAccess struct {
	bucket    string
	host      string
	port      string
	accessKey string
	secretKey string
}

type controller struct {
	connect func(endpoint, accessKey, secretKey string) (storeAPI, error)
}

// NewController returns the bucket claim component controller.
func NewController() component.Controller {
	return &controller{
		connect: func(endpoint, accessKey, secretKey string) (storeAPI, error) {
			return objectstorage.New(endpoint, accessKey, secretKey)
		},
	}
}

func (c *controller) Name() string { return "cosi" }

func (c *controller) Dependencies() []string { return nil }

func (c *controller) values(op *component.Operation) map[string]any {
	values := op.Config.CosiValues()
	values["buckets"] = []string{DataClaim, WebClaim}
	return values
}

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	if _, err := component.Deploy(ctx, op, "cosi", c.values(op)); err != nil {
		return err
	}

	data, err := c.boundClaim(ctx, op, DataClaim)
	if err != nil {
		return err
	}
	web, err := c.boundClaim(ctx, op, WebClaim)
	if err != nil {
		return err
	}

	if err := c.installPolicies(ctx, op, data, web); err != nil {
		return component.NewExternalSystemError("objectstorage", err)
	}

	return component.AnnotateConfig(ctx, op, map[string]string{
		"s3_provider":      op.Config.GetOrDefault("cosi.provider", "rook"),
		"s3_host":          data.host,
		"s3_port":          data.port,
		"s3_access_key":    data.accessKey,
		"s3_secret_key":    data.secretKey,
		"s3_bucket_data":   data.bucket,
		"s3_bucket_static": web.bucket,
	})
}

func (c *controller) installPolicies(ctx context.Context, op *component.Operation, data, web claimAccess) error {
	dataStore, err := c.connect(data.endpoint(), data.accessKey, data.secretKey)
	if err != nil {
		return err
	}
	if err := dataStore.ApplyBucketPolicy(ctx, data.bucket, objectstorage.OwnerReadWritePolicy(data.bucket, OwnerARN)); err != nil {
		return err
	}

	webStore, err := c.connect(web.endpoint(), web.accessKey, web.secretKey)
	if err != nil {
		return err
	}
	if err := webStore.ApplyBucketPolicy(ctx, web.bucket, objectstorage.OwnerWebPolicy(web.bucket, OwnerARN)); err != nil {
		return err
	}
	return webStore.UploadContent(ctx, web.bucket, "index.html", welcomePage)
}

// boundClaim waits for the claim to bind and reads the provisioner's
// generated configmap and secret, which carry the claim's name.
func (c *controller) boundClaim(ctx context.Context, op *component.Operation, name string) (claimAccess, error) {
	if err := op.Kube.WaitForPhase(ctx, claimObject(op.Namespace, name), "Bound"); err != nil {
		return claimAccess{}, component.NewTransientError(err)
	}

	key := types.NamespacedName{Namespace: op.Namespace, Name: name}
	cm := &corev1.ConfigMap{}
	if err := op.Kube.Client().Get(ctx, key, cm); err != nil {
		return claimAccess{}, component.NewTransientError(err)
	}
	secret := &corev1.Secret{}
	if err := op.Kube.Client().Get(ctx, key, secret); err != nil {
		return claimAccess{}, component.NewTransientError(err)
	}

	access := claimAccess{
		bucket:    cm.Data["BUCKET_NAME"],
		host:      cm.Data["BUCKET_HOST"],
		port:      cm.Data["BUCKET_PORT"],
		accessKey: string(secret.Data["AWS_ACCESS_KEY_ID"]),
		secretKey: string(secret.Data["AWS_SECRET_ACCESS_KEY"]),
	}
	if access.bucket == "" || access.accessKey == "" {
		return claimAccess{}, component.NewTransientError(fmt.Errorf("claim %q bound without generated credentials", name))
	}
	return access, nil
}

func (a claimAccess) endpoint() string {
	return fmt.Sprintf("http://%s:%s", a.host, a.port)
}

func claimObject(namespace, name string) *unstructured.Unstructured {
	obc := &unstructured.Unstructured{}
	obc.SetGroupVersionKind(schema.GroupVersionKind{Group: "objectbucket.io", Version: "v1alpha1", Kind: "ObjectBucketClaim"})
	obc.SetNamespace(namespace)
	obc.SetName(name)
	return obc
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "cosi", c.values(op))
}
