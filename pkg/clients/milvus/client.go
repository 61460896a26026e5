// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package milvus is the admin client for the vector database: per-tenant
// database, role and user provisioning with either the legacy or the
// privilege-group grant set.
package milvus

import (
	"context"
	"fmt"
	"strings"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// LegacyGlobalPrivileges is the grant set for servers without privilege
// groups.
var LegacyGlobalPrivileges = []string{
	"CreateCollection",
	"DropCollection",
	"DescribeCollection",
	"ShowCollections",
	"RenameCollection",
}

// GlobalPrivilegeGroups is the grant set for servers with privilege groups.
var GlobalPrivilegeGroups = []string{
	"CollectionAdmin",
	"DatabaseAdmin",
}

// API is the narrow surface of the vector database used by the operator.
// The production implementation wraps the grpc SDK client.
type API interface {
	CreateDatabase(ctx context.Context, database string) error
	DropDatabase(ctx context.Context, database string) error
	UsingDatabase(ctx context.Context, database string) error
	CreateCredential(ctx context.Context, username, password string) error
	DeleteCredential(ctx context.Context, username string) error
	CreateRole(ctx context.Context, name string) error
	DropRole(ctx context.Context, name string) error
	AddUserRole(ctx context.Context, username, role string) error
	RemoveUserRole(ctx context.Context, username, role string) error
	Grant(ctx context.Context, role, objectType, object, privilege string) error
	Revoke(ctx context.Context, role, objectType, object, privilege string) error
	ListCollections(ctx context.Context) ([]string, error)
	DropCollection(ctx context.Context, name string) error
	Close() error
}

// Client performs the tenant-level admin flows on top of the API.
type Client struct {
	api              API
	legacyPrivileges bool
}

// New connects to the vector database as root.
func New(ctx context.Context, address, rootPassword string, legacyPrivileges bool) (*Client, error) {
	c, err := milvusclient.NewClient(ctx, milvusclient.Config{
		Address:  address,
		Username: "root",
		Password: rootPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to the vector database: %w", err)
	}
	return &Client{api: &grpcAPI{c: c}, legacyPrivileges: legacyPrivileges}, nil
}

// NewFromAPI wraps an existing API implementation. Used by tests.
func NewFromAPI(api API, legacyPrivileges bool) *Client {
	return &Client{api: api, legacyPrivileges: legacyPrivileges}
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.api.Close()
}

// RoleName returns the role that carries a tenant's grants.
func RoleName(username string) string {
	return username + "_role"
}

// privileges returns the active grant set.
func (c *Client) privileges() []string {
	if c.legacyPrivileges {
		return LegacyGlobalPrivileges
	}
	return GlobalPrivilegeGroups
}

// SetupUser provisions a tenant: credential, database, role with the active
// privilege set, and the user-role binding. Every step tolerates objects
// that already exist so re-provisioning converges.
func (c *Client) SetupUser(ctx context.Context, username, password, database string) error {
	role := RoleName(username)

	if err := c.api.CreateCredential(ctx, username, password); ignoreExists(err) != nil {
		return fmt.Errorf("creating user %q: %w", username, err)
	}
	if err := c.api.CreateDatabase(ctx, database); ignoreExists(err) != nil {
		return fmt.Errorf("creating database %q: %w", database, err)
	}

	if err := c.api.UsingDatabase(ctx, database); err != nil {
		return fmt.Errorf("selecting database %q: %w", database, err)
	}
	if err := c.api.CreateRole(ctx, role); ignoreExists(err) != nil {
		return fmt.Errorf("creating role %q: %w", role, err)
	}
	for _, privilege := range c.privileges() {
		if err := c.api.Grant(ctx, role, "Global", "*", privilege); ignoreExists(err) != nil {
			return fmt.Errorf("granting %s to %q: %w", privilege, role, err)
		}
	}
	if err := c.api.AddUserRole(ctx, username, role); ignoreExists(err) != nil {
		return fmt.Errorf("assigning role %q to %q: %w", role, username, err)
	}
	return nil
}

// RemoveUser tears a tenant down symmetrically: collections, grants, role,
// credential, database. Objects that are already gone are tolerated.
func (c *Client) RemoveUser(ctx context.Context, username, database string) error {
	role := RoleName(username)

	if err := c.api.UsingDatabase(ctx, database); err == nil {
		collections, err := c.api.ListCollections(ctx)
		if err != nil {
			return fmt.Errorf("listing collections of %q: %w", database, err)
		}
		for _, collection := range collections {
			if err := c.api.DropCollection(ctx, collection); ignoreMissing(err) != nil {
				return fmt.Errorf("dropping collection %q: %w", collection, err)
			}
		}

		for _, privilege := range c.privileges() {
			if err := c.api.Revoke(ctx, role, "Global", "*", privilege); ignoreMissing(err) != nil {
				return fmt.Errorf("revoking %s from %q: %w", privilege, role, err)
			}
		}
		if err := c.api.RemoveUserRole(ctx, username, role); ignoreMissing(err) != nil {
			return fmt.Errorf("unassigning role %q from %q: %w", role, username, err)
		}
		if err := c.api.DropRole(ctx, role); ignoreMissing(err) != nil {
			return fmt.Errorf("dropping role %q: %w", role, err)
		}
	}

	if err := c.api.DeleteCredential(ctx, username); ignoreMissing(err) != nil {
		return fmt.Errorf("deleting user %q: %w", username, err)
	}
	if err := c.api.DropDatabase(ctx, database); ignoreMissing(err) != nil {
		return fmt.Errorf("dropping database %q: %w", database, err)
	}
	return nil
}

func ignoreExists(err error) error {
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "already exist") {
		return nil
	}
	return err
}

func ignoreMissing(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not found") || strings.Contains(msg, "not exist") {
		return nil
	}
	return err
}

// grpcAPI adapts the SDK client to the API surface.
type grpcAPI struct {
	c milvusclient.Client
}

func (g *grpcAPI) CreateDatabase(ctx context.Context, database string) error {
	return g.c.CreateDatabase(ctx, database)
}

func (g *grpcAPI) DropDatabase(ctx context.Context, database string) error {
	return g.c.DropDatabase(ctx, database)
}

func (g *grpcAPI) UsingDatabase(ctx context.Context, database string) error {
	return g.c.UsingDatabase(ctx, database)
}

func (g *grpcAPI) CreateCredential(ctx context.Context, username, password string) error {
	return g.c.CreateCredential(ctx, username, password)
}

func (g *grpcAPI) DeleteCredential(ctx context.Context, username string) error {
	return g.c.DeleteCredential(ctx, username)
}

func (g *grpcAPI) CreateRole(ctx context.Context, name string) error {
	return g.c.CreateRole(ctx, name)
}

func (g *grpcAPI) DropRole(ctx context.Context, name string) error {
	return g.c.DropRole(ctx, name)
}

func (g *grpcAPI) AddUserRole(ctx context.Context, username, role string) error {
	return g.c.AddUserRole(ctx, username, role)
}

func (g *grpcAPI) RemoveUserRole(ctx context.Context, username, role string) error {
	return g.c.RemoveUserRole(ctx, username, role)
}

func (g *grpcAPI) Grant(ctx context.Context, role, objectType, object, privilege string) error {
	return g.c.Grant(ctx, role, privilegeObjectType(objectType), object, privilege)
}

func (g *grpcAPI) Revoke(ctx context.Context, role, objectType, object, privilege string) error {
	return g.c.Revoke(ctx, role, privilegeObjectType(objectType), object, privilege)
}

func (g *grpcAPI) ListCollections(ctx context.Context) ([]string, error) {
	collections, err := g.c.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(collections))
	for _, collection := range collections {
		names = append(names, collection.Name)
	}
	return names, nil
}

func (g *grpcAPI) DropCollection(ctx context.Context, name string) error {
	return g.c.DropCollection(ctx, name)
}

func (g *grpcAPI) Close() error {
	return g.c.Close()
}

// The SDK misspells its own constants, so the mapping spells them the way the
// SDK does.
func privilegeObjectType(objectType string) entity.PriviledgeObjectType {
	switch objectType {
	case "Collection":
		return entity.PriviledegeObjectTypeCollection
	case "User":
		return entity.PriviledegeObjectTypeUser
	}
	return entity.PriviledegeObjectTypeGlobal
}
