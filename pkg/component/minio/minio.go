// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package minio manages the S3 compatible object store: the server
// deployment, the platform user with its data and web buckets, and the
// optional API/console ingresses.
package minio

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"

	"github.com/nuvolaris/nuvolaris-operator/pkg/apihost"
	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/objectstorage"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

// The platform buckets. The web bucket is open for anonymous download and
// fronted by the static gateway.
const (
	DataBucket = "nuvolaris-data"
	WebBucket  = "nuvolaris-web"
)

//go:embed index.html
var welcomePage []byte

type storeAPI interface {
	AddUser(ctx context.Context, username, secretKey string) error
	EnsureBucket(ctx context.Context, name string) error
	EnsurePublicBucket(ctx context.Context, name string) error
	UploadContent(ctx context.Context, bucket, key string, body []byte) error
	GrantReadWrite(ctx context.Context, username string, buckets ...string) error
}

type controller struct {
	connect func(endpoint, accessKey, secretKey string) (storeAPI, error)
}

// NewController returns the object store component controller.
func NewController() component.Controller {
	return &controller{
		connect: func(endpoint, accessKey, secretKey string) (storeAPI, error) {
			return objectstorage.New(endpoint, accessKey, secretKey)
		},
	}
}

func (c *controller) Name() string { return "minio" }

func (c *controller) Dependencies() []string { return nil }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	if !op.Config.Exists("minio.nuvolaris.password") {
		op.Config.Put("minio.nuvolaris.password", uuid.NewString())
	}
	values := op.Config.MinioValues()

	if _, err := component.Deploy(ctx, op, "minio", values); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=minio"); err != nil {
		return component.NewTransientError(err)
	}

	host := fmt.Sprintf("%s.%s.svc.cluster.local", values["host"], op.Namespace)
	port := fmt.Sprintf("%v", values["port"])
	endpoint := fmt.Sprintf("http://%s:%s", host, port)

	store, err := c.connect(endpoint, fmt.Sprintf("%v", values["rootUser"]), fmt.Sprintf("%v", values["rootPassword"]))
	if err != nil {
		return component.NewExternalSystemError("minio", err)
	}

	user := fmt.Sprintf("%v", values["nuvolarisUser"])
	password := fmt.Sprintf("%v", values["nuvolarisPassword"])
	if err := c.provision(ctx, store, user, password); err != nil {
		return component.NewExternalSystemError("minio", err)
	}

	return component.AnnotateConfig(ctx, op, map[string]string{
		"s3_provider":      "minio",
		"s3_host":          host,
		"s3_port":          port,
		"s3_access_key":    user,
		"s3_secret_key":    password,
		"s3_bucket_data":   DataBucket,
		"s3_bucket_static": WebBucket,
	})
}

func (c *controller) provision(ctx context.Context, store storeAPI, user, password string) error {
	if err := store.AddUser(ctx, user, password); err != nil {
		return err
	}
	if err := store.EnsureBucket(ctx, DataBucket); err != nil {
		return err
	}
	if err := store.EnsurePublicBucket(ctx, WebBucket); err != nil {
		return err
	}
	if err := store.UploadContent(ctx, WebBucket, "index.html", welcomePage); err != nil {
		return err
	}
	return store.GrantReadWrite(ctx, user, DataBucket, WebBucket)
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "minio", op.Config.MinioValues())
}

// ingresses is the minio-ingresses pseudo-component exposing the S3 API and
// the console outside the cluster. It is registered separately so the diff
// engine can toggle it without touching the server.
type ingresses struct{}

// NewIngressesController returns the minio-ingresses pseudo-component.
func NewIngressesController() component.Controller { return &ingresses{} }

func (i *ingresses) Name() string { return "minio-ingresses" }

func (i *ingresses) Dependencies() []string { return []string{"minio"} }

type exposedIngress struct {
	values        map[string]any
	annotationKey string
	url           string
}

func (i *ingresses) Create(ctx context.Context, op *component.Operation) error {
	annotations := map[string]string{}
	for _, ingress := range i.enabled(ctx, op) {
		if _, err := component.Deploy(ctx, op, "ingress", ingress.values); err != nil {
			return err
		}
		annotations[ingress.annotationKey] = ingress.url
	}
	if len(annotations) == 0 {
		return nil
	}
	return component.AnnotateConfig(ctx, op, annotations)
}

func (i *ingresses) Delete(ctx context.Context, op *component.Operation) error {
	for _, ingress := range i.enabled(ctx, op) {
		if err := component.Undeploy(ctx, op, "ingress", ingress.values); err != nil {
			return err
		}
	}
	return nil
}

func (i *ingresses) enabled(ctx context.Context, op *component.Operation) []exposedIngress {
	apihostURL, err := component.ConfigAnnotation(ctx, op, "apihost")
	if err != nil || apihostURL == "" {
		return nil
	}
	runtime := op.Config.GetOrDefault("nuvolaris.kube", "auto")

	var all []exposedIngress
	if op.Config.GetBool("minio.ingress.s3-enabled") {
		host := i.hostname(op, "minio.ingress.s3-hostname", apihostURL, "s3")
		all = append(all, exposedIngress{
			values:        component.IngressValues(op.Config, "minio-s3", host, "nuvolaris-minio", 9000, ""),
			annotationKey: "s3_api_url",
			url:           apihost.URL(op.Config, runtime, host),
		})
	}
	if op.Config.GetBool("minio.ingress.console-enabled") {
		host := i.hostname(op, "minio.ingress.console-hostname", apihostURL, "mc")
		all = append(all, exposedIngress{
			values:        component.IngressValues(op.Config, "minio-console", host, "nuvolaris-minio", 9090, ""),
			annotationKey: "s3_console_url",
			url:           apihost.URL(op.Config, runtime, host),
		})
	}
	return all
}

// hostname honors a declared hostname and derives "auto" from the api host.
func (i *ingresses) hostname(op *component.Operation, key, apihostURL, prefix string) string {
	if declared := op.Config.Get(key); declared != "" && declared != "auto" {
		return declared
	}
	return apihost.ExtractHostname(apihost.AppendPrefix(apihostURL, prefix))
}
