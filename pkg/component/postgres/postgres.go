// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package postgres manages the relational database and the platform
// database/user pair. Per-tenant databases are handled by the tenant
// reconciler through the same admin client.
package postgres

import (
	"context"
	"fmt"

	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/postgres"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

// The platform database and its owner.
const (
	Database = "nuvolaris"
	Username = "nuvolaris"
)

// Port is the in-cluster server port.
const Port = "5432"

type dbAPI interface {
	EnsureDatabaseAndUser(ctx context.Context, database, username, password string) error
	Close() error
}

type controller struct {
	connect func(host, port, username, password string) (dbAPI, error)
}

// NewController returns the relational database component controller.
func NewController() component.Controller {
	return &controller{
		connect: func(host, port, username, password string) (dbAPI, error) {
			return postgres.New(host, port, username, password)
		},
	}
}

func (c *controller) Name() string { return "postgres" }

func (c *controller) Dependencies() []string { return nil }

// ServiceHost returns the in-cluster server hostname.
func ServiceHost(namespace string) string {
	return fmt.Sprintf("nuvolaris-postgres.%s.svc.cluster.local", namespace)
}

func (c *controller) Create(ctx context.Context, op *component.Operation) error {
	values := op.Config.PostgresValues()
	if _, err := component.Deploy(ctx, op, "postgres", values); err != nil {
		return err
	}
	if err := op.Kube.WaitForPodReady(ctx, op.Namespace, "app=nuvolaris-postgres"); err != nil {
		return component.NewTransientError(err)
	}

	host := ServiceHost(op.Namespace)
	password := fmt.Sprintf("%v", values["nuvolarisPassword"])

	db, err := c.connect(host, Port, "postgres", fmt.Sprintf("%v", values["rootPassword"]))
	if err != nil {
		return component.NewExternalSystemError("postgres", err)
	}
	defer db.Close()

	if err := db.EnsureDatabaseAndUser(ctx, Database, Username, password); err != nil {
		return component.NewExternalSystemError("postgres", err)
	}

	return component.AnnotateConfig(ctx, op, map[string]string{
		"postgres_host":     host,
		"postgres_port":     Port,
		"postgres_database": Database,
		"postgres_username": Username,
		"postgres_password": password,
		"postgres_url":      fmt.Sprintf("postgresql://%s:%s@%s:%s/%s", Username, password, host, Port, Database),
	})
}

func (c *controller) Delete(ctx context.Context, op *component.Operation) error {
	return component.Undeploy(ctx, op, "postgres", op.Config.PostgresValues())
}
