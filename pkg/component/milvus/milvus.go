// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package milvus manages the vector database. The server needs its
// coordinator user and object store bucket before it starts, so both are
// provisioned up front; the platform database and user are created through
// the admin client once the server answers.
package milvus

import (
	"context"
	"fmt"

	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/milvus"
	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/objectstorage"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/etcd"
)

// Database is the platform vector database.
const Database = "nuvolaris"

// Bucket holds the server's segment storage.
const Bucket = "vectors"

// GrpcPort is the in-cluster client port.
const GrpcPort = "19530"

type vectorAPI interface {
	SetupUser(ctx context.Context, username, password, database string) error
	Close() error
}

type storeAPI interface {
	EnsureBucket(ctx context.Context, name string) error
}

type controller struct {
	connect      func(ctx context.Context, address, rootPassword string, legacyPrivileges bool) (vectorAPI, error)
	connectStore func(endpoint, accessKey, secretKey string) (storeAPI, error)
}

// NewController returns the vector database component controller.
func NewController() component.Controller {
	return &controller{
		connect: func(ctx context.Context, address, rootPassword string, legacyPrivileges bool) (vectorAPI, error) {
			return milvus.New(ctx, address, rootPassword, legacyPrivileges)
		},
		connectStore: func(endpoint, accessKey, secretKey string) (storeAPI, error) {
			return objectstorage.New(endpoint, accessKey, secretKey)
		},
	}
}

func (c *controller) Name() string { return "milvus" }

func (c *controller) Dependencies() []string { return []string{"etcd", "minio"} }

// ServiceHost returns the in-cluster server hostname.
func ServiceHost(namespace string) string {
	return fmt.Sprintf("nuvolaris-milvus.%s.svc.cluster.local", namespace)
}

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	values := op.Config.MilvusValues()

	etcdUser := fmt.Sprintf("%v", values["etcdUser"])
	etcdPassword := fmt.Sprintf("%v", values["etcdPassword"])
	if err := etcd.EnsureUser(ctx, op, etcdUser, etcdPassword, etcdUser); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("http://%v.%s.svc.cluster.local:%v", values["s3Host"], op.Namespace, values["s3Port"])
	store, err := c.connectStore(endpoint, fmt.Sprintf("%v", values["s3AccessKey"]), fmt.Sprintf("%v", values["s3SecretKey"]))
	if err != nil {
		return component.NewExternalSystemError("minio", err)
	}
	if err := store.EnsureBucket(ctx, Bucket); err != nil {
		return component.NewExternalSystemError("minio", err)
	}

	if _, err := component.Deploy(ctx, op, "milvus", values); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=nuvolaris-milvus"); err != nil {
		return component.NewTransientError(err)
	}

	host := ServiceHost(op.Namespace)
	user := fmt.Sprintf("%v", values["nuvolarisUser"])
	password := fmt.Sprintf("%v", values["nuvolarisPassword"])

	vector, err := c.connect(ctx, host+":"+GrpcPort, fmt.Sprintf("%v", values["rootPassword"]), op.Config.GetBool("milvus.legacy-privileges"))
	if err != nil {
		return component.NewExternalSystemError("milvus", err)
	}
	defer vector.Close()

	if err := vector.SetupUser(ctx, user, password, Database); err != nil {
		return component.NewExternalSystemError("milvus", err)
	}

	return component.AnnotateConfig(ctx, op, map[string]string{
		"milvus_host":    host,
		"milvus_port":    GrpcPort,
		"milvus_token":   user + ":" + password,
		"milvus_db_name": Database,
	})
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	if err := component.Undeploy(ctx, op, "milvus", op.Config.MilvusValues()); err != nil {
		return err
	}
	return etcd.DeleteUser(ctx, op, fmt.Sprintf("%v", op.Config.MilvusValues()["etcdUser"]))
}
