// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package couchdb manages the document database: the StatefulSet plus the
// one-time initialization of users, databases, design documents and the
// subjects seeded from the platform declaration.
package couchdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/couchdb"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

// The platform databases. users_metadata holds tenant metadata and is not
// exposed to the function runtime users.
var (
	whiskDatabases = []string{"subjects", "whisks", "activations"}
	allDatabases   = []string{"subjects", "whisks", "activations", "users_metadata"}
	compactedDBs   = []string{"users_metadata", "subjects", "whisks"}
)

type dbAPI interface {
	WaitReady(ctx context.Context) error
	ConfigureSingleNode(ctx context.Context, username, password string) error
	DisableReduceLimit(ctx context.Context) error
	EnableCompaction(ctx context.Context, database string) error
	AddUser(ctx context.Context, name, password string) error
	EnsureDB(ctx context.Context, name string) error
	SetMembers(ctx context.Context, database string, members []string) error
	UpsertDoc(ctx context.Context, database, id string, doc map[string]any) error
	AddSubject(ctx context.Context, namespace, uuid, key string) error
}

type controller struct {
	connect func(url, username, password string) (dbAPI, error)
}

// NewController returns the couchdb component controller.
func NewController() component.Controller {
	return &controller{
		connect: func(url, username, password string) (dbAPI, error) {
			return couchdb.New(url, username, password)
		},
	}
}

func (c *controller) Name() string { return "couchdb" }

func (c *controller) Dependencies() []string { return nil }

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	values := op.Config.CouchDBValues()
	if _, err := component.Deploy(ctx, op, "couchdb", values); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=couchdb"); err != nil {
		return component.NewTransientError(err)
	}

	host := fmt.Sprintf("%s.%s.svc.cluster.local", values["host"], op.Namespace)
	url := fmt.Sprintf("http://%s:%s", host, values["port"])
	adminUser, _ := values["adminUser"].(string)
	adminPassword, _ := values["adminPassword"].(string)

	db, err := c.connect(url, adminUser, adminPassword)
	if err != nil {
		return component.NewExternalSystemError("couchdb", err)
	}
	if err := db.WaitReady(ctx); err != nil {
		return component.NewTransientError(err)
	}

	if err := c.initialize(ctx, op, db, values); err != nil {
		if component.IsValidationError(err) {
			return err
		}
		return component.NewExternalSystemError("couchdb", err)
	}

	return component.AnnotateConfig(ctx, op, map[string]string{
		"couchdb_host": host,
		"couchdb_port": fmt.Sprintf("%v", values["port"]),
	})
}

// initialize is idempotent: every step converges on an already initialized
// server so resuming a platform re-runs it safely.
func (c *controller) initialize(ctx context.Context, op *component.Operation, db dbAPI, values map[string]any) error {
	adminUser, _ := values["adminUser"].(string)
	adminPassword, _ := values["adminPassword"].(string)
	controllerUser, _ := values["controllerUser"].(string)
	invokerUser, _ := values["invokerUser"].(string)

	if err := db.ConfigureSingleNode(ctx, adminUser, adminPassword); err != nil {
		return err
	}
	if err := db.DisableReduceLimit(ctx); err != nil {
		return err
	}

	users := map[string]string{
		controllerUser: fmt.Sprintf("%v", values["controllerPassword"]),
		invokerUser:    fmt.Sprintf("%v", values["invokerPassword"]),
	}
	for name, password := range users {
		if err := db.AddUser(ctx, name, password); err != nil {
			return err
		}
	}

	for _, database := range allDatabases {
		if err := db.EnsureDB(ctx, database); err != nil {
			return err
		}
	}
	for _, database := range whiskDatabases {
		if err := db.SetMembers(ctx, database, []string{controllerUser, invokerUser}); err != nil {
			return err
		}
	}

	for database, docs := range designDocuments {
		for _, doc := range docs {
			id, _ := doc["_id"].(string)
			if err := db.UpsertDoc(ctx, database, id, doc); err != nil {
				return err
			}
		}
	}

	for _, database := range compactedDBs {
		if err := db.EnableCompaction(ctx, database); err != nil {
			return err
		}
	}

	return c.seedSubjects(ctx, op, db)
}

// seedSubjects authorizes every namespace declared under openwhisk.namespaces.
func (c *controller) seedSubjects(ctx context.Context, op *component.Operation, db dbAPI) error {
	for namespace, auth := range op.Config.StringMap("openwhisk.namespaces") {
		uuid, key, ok := strings.Cut(auth, ":")
		if !ok {
			return component.NewValidationError("namespace %q credential is not uuid:key", namespace)
		}
		if err := db.AddSubject(ctx, namespace, uuid, key); err != nil {
			return err
		}
		op.Log.Info("authorized namespace", "namespace", namespace)
	}
	return nil
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "couchdb", op.Config.CouchDBValues())
}
