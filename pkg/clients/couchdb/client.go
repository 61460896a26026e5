// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package couchdb is the admin client for the document database: cluster
// setup, users, databases, security, and idempotent design document upserts.
package couchdb

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	kivik "github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/nuvolaris/nuvolaris-operator/pkg/utils/retry"
)

// Client wraps a kivik connection plus the raw node configuration endpoint,
// which kivik does not cover.
type Client struct {
	kivik     *kivik.Client
	configURL *url.URL
	http      *http.Client
}

// New connects to the database at rawURL with the given admin credentials.
func New(rawURL, username, password string) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing couchdb url %q: %w", rawURL, err)
	}
	parsed.User = url.UserPassword(username, password)

	client, err := kivik.New("couch", parsed.String())
	if err != nil {
		return nil, fmt.Errorf("connecting to couchdb: %w", err)
	}

	return &Client{kivik: client, configURL: parsed, http: http.DefaultClient}, nil
}

// WaitReady blocks until the server answers, using the standard truncated
// exponential backoff.
func (c *Client) WaitReady(ctx context.Context) error {
	return retry.UntilBackoff(ctx, retry.DefaultMaxBackoff, retry.DefaultDeadline, func(ctx context.Context) (bool, error) {
		if _, err := c.kivik.Version(ctx); err != nil {
			return retry.MinorError(err)
		}
		return retry.Ok()
	})
}

// ConfigureSingleNode finishes the cluster setup in single node mode.
// Re-running it on a configured node is tolerated.
func (c *Client) ConfigureSingleNode(ctx context.Context, username, password string) error {
	err := c.kivik.ClusterSetup(ctx, map[string]any{
		"action":       "enable_single_node",
		"bind_address": "0.0.0.0",
		"username":     username,
		"password":     password,
		"singlenode":   true,
	})
	if err != nil && kivik.HTTPStatus(err) != http.StatusBadRequest {
		return fmt.Errorf("enabling single node mode: %w", err)
	}
	return nil
}

// SetConfigValue writes one node configuration value, e.g. the query server
// reduce limit or a per-database compaction rule.
func (c *Client) SetConfigValue(ctx context.Context, section, key, value string) error {
	target := *c.configURL
	target.Path = fmt.Sprintf("/_node/_local/_config/%s/%s", section, key)

	body := bytes.NewBufferString(fmt.Sprintf("%q", value))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("writing config %s/%s: %w", section, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("writing config %s/%s: unexpected status %s", section, key, resp.Status)
	}
	return nil
}

// DisableReduceLimit lifts the query server reduce limit required by the
// platform design documents.
func (c *Client) DisableReduceLimit(ctx context.Context) error {
	return c.SetConfigValue(ctx, "query_server_config", "reduce_limit", "false")
}

// EnableCompaction activates scheduled compaction for one database.
func (c *Client) EnableCompaction(ctx context.Context, database string) error {
	rule := `[{db_fragmentation, "60%"}, {view_fragmentation, "60%"}, {from, "22:00"}, {to, "05:00"}]`
	return c.SetConfigValue(ctx, "compactions", database, rule)
}

// AddUser upserts a server user with the given credentials.
func (c *Client) AddUser(ctx context.Context, name, password string) error {
	doc := map[string]any{
		"name":     name,
		"password": password,
		"roles":    []string{},
		"type":     "user",
	}
	return c.UpsertDoc(ctx, "_users", "org.couchdb.user:"+name, doc)
}

// EnsureDB creates a database unless it already exists.
func (c *Client) EnsureDB(ctx context.Context, name string) error {
	exists, err := c.kivik.DBExists(ctx, name)
	if err != nil {
		return fmt.Errorf("checking database %q: %w", name, err)
	}
	if exists {
		return nil
	}
	if err := c.kivik.CreateDB(ctx, name); err != nil && kivik.HTTPStatus(err) != http.StatusPreconditionFailed {
		return fmt.Errorf("creating database %q: %w", name, err)
	}
	return nil
}

// SetMembers restricts a database to the given member users.
func (c *Client) SetMembers(ctx context.Context, database string, members []string) error {
	security := &kivik.Security{
		Members: kivik.Members{Names: members},
	}
	if err := c.kivik.DB(database).SetSecurity(ctx, security); err != nil {
		return fmt.Errorf("setting members of %q: %w", database, err)
	}
	return nil
}

// UpsertDoc writes a document under a fixed id, carrying over the current
// revision when the document already exists.
func (c *Client) UpsertDoc(ctx context.Context, database, id string, doc map[string]any) error {
	db := c.kivik.DB(database)

	var current map[string]any
	err := db.Get(ctx, id).ScanDoc(&current)
	switch {
	case err == nil:
		doc["_rev"] = current["_rev"]
	case kivik.HTTPStatus(err) == http.StatusNotFound:
		delete(doc, "_rev")
	default:
		return fmt.Errorf("reading document %s/%s: %w", database, id, err)
	}

	if _, err := db.Put(ctx, id, doc); err != nil {
		return fmt.Errorf("writing document %s/%s: %w", database, id, err)
	}
	return nil
}

// GetDoc reads a document by id. The second return value is false when the
// document does not exist.
func (c *Client) GetDoc(ctx context.Context, database, id string) (map[string]any, bool, error) {
	var doc map[string]any
	err := c.kivik.DB(database).Get(ctx, id).ScanDoc(&doc)
	if err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading document %s/%s: %w", database, id, err)
	}
	return doc, true, nil
}

// DeleteDoc removes a document by id, tolerating documents that are already
// gone.
func (c *Client) DeleteDoc(ctx context.Context, database, id string) error {
	db := c.kivik.DB(database)

	row := db.Get(ctx, id)
	var doc map[string]any
	if err := row.ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("reading document %s/%s: %w", database, id, err)
	}
	rev, err := row.Rev()
	if err != nil {
		return fmt.Errorf("reading revision of %s/%s: %w", database, id, err)
	}

	if _, err := db.Delete(ctx, id, rev); err != nil && kivik.HTTPStatus(err) != http.StatusNotFound {
		return fmt.Errorf("deleting document %s/%s: %w", database, id, err)
	}
	return nil
}

// FindOne returns the first document matching the mango selector, or false
// when nothing matches.
func (c *Client) FindOne(ctx context.Context, database string, selector map[string]any) (map[string]any, bool, error) {
	rs := c.kivik.DB(database).Find(ctx, map[string]any{"selector": selector, "limit": 1})
	defer rs.Close()

	if rs.Next() {
		var doc map[string]any
		if err := rs.ScanDoc(&doc); err != nil {
			return nil, false, fmt.Errorf("scanning find result in %q: %w", database, err)
		}
		return doc, true, nil
	}
	if err := rs.Err(); err != nil {
		return nil, false, fmt.Errorf("finding document in %q: %w", database, err)
	}
	return nil, false, nil
}

// AddSubject authorizes a namespace by upserting its subject document. The
// credential must be "uuid:key".
func (c *Client) AddSubject(ctx context.Context, namespace, uuid, key string) error {
	doc := map[string]any{
		"subject": namespace,
		"namespaces": []map[string]any{
			{"name": namespace, "uuid": uuid, "key": key},
		},
	}
	return c.UpsertDoc(ctx, "subjects", namespace, doc)
}

// DeleteSubject removes the subject document of a namespace.
func (c *Client) DeleteSubject(ctx context.Context, namespace string) error {
	doc, found, err := c.FindOne(ctx, "subjects", map[string]any{"subject": map[string]any{"$eq": namespace}})
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	id, _ := doc["_id"].(string)
	return c.DeleteDoc(ctx, "subjects", id)
}
