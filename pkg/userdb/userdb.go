// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package userdb persists tenant metadata documents in the users_metadata
// database. Every provisioned collaborator service records the coordinates a
// tenant needs (hosts, credentials, bucket names) as key/value entries of a
// single per-tenant document.
package userdb

import (
	"context"
	"fmt"
)

// DatabaseName is the document database holding tenant metadata.
const DatabaseName = "users_metadata"

// Metadata entry keys written by the provisioning steps.
const (
	KeyAuth             = "AUTH"
	KeyMongoDBURL       = "MONGODB_URL"
	KeyPostgresDatabase = "POSTGRES_DATABASE"
	KeyPostgresHost     = "POSTGRES_HOST"
	KeyPostgresPort     = "POSTGRES_PORT"
	KeyPostgresUsername = "POSTGRES_USERNAME"
	KeyPostgresPassword = "POSTGRES_PASSWORD"
	KeyPostgresURL      = "POSTGRES_URL"
	KeyRedisURL         = "REDIS_URL"
	KeyRedisPrefix      = "REDIS_PREFIX"
	KeyRedisPassword    = "REDIS_PASSWORD"
	KeyS3Provider       = "S3_PROVIDER"
	KeyS3Host           = "S3_HOST"
	KeyS3Port           = "S3_PORT"
	KeyS3AccessKey      = "S3_ACCESS_KEY"
	KeyS3SecretKey      = "S3_SECRET_KEY"
	KeyS3BucketData     = "S3_BUCKET_DATA"
	KeyS3BucketStatic   = "S3_BUCKET_STATIC"
	KeyStaticContentURL = "STATIC_CONTENT_URL"
	KeyMilvusHost       = "MILVUS_HOST"
	KeyMilvusPort       = "MILVUS_PORT"
	KeyMilvusToken      = "MILVUS_TOKEN"
	KeyMilvusDBName     = "MILVUS_DB_NAME"
)

// Entry is one key/value pair of a tenant metadata document.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Metadata is the in-memory form of a tenant metadata document.
type Metadata struct {
	Login    string
	Password string
	Email    string

	entries []Entry
}

// NewMetadata starts an empty metadata document for a tenant.
func NewMetadata(login, password, email string) *Metadata {
	return &Metadata{Login: login, Password: password, Email: email}
}

// Add records a key/value entry. Empty values are skipped so provisioning
// steps can add whatever they allocated without guarding every call, and an
// existing key is overwritten so re-provisioning converges.
func (m *Metadata) Add(key, value string) {
	if value == "" {
		return
	}
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Value = value
			return
		}
	}
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Get returns the value recorded under key.
func (m *Metadata) Get(key string) (string, bool) {
	for _, entry := range m.entries {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

// Entries returns the recorded entries in insertion order.
func (m *Metadata) Entries() []Entry {
	return m.entries
}

func (m *Metadata) document() map[string]any {
	entries := make([]map[string]any, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, map[string]any{"key": entry.Key, "value": entry.Value})
	}
	return map[string]any{
		"login":    m.Login,
		"password": m.Password,
		"email":    m.Email,
		"metadata": entries,
	}
}

// DocumentAPI is the slice of the document database client used by the
// store. Satisfied by *couchdb.Client.
type DocumentAPI interface {
	EnsureDB(ctx context.Context, name string) error
	UpsertDoc(ctx context.Context, database, id string, doc map[string]any) error
	FindOne(ctx context.Context, database string, selector map[string]any) (map[string]any, bool, error)
	DeleteDoc(ctx context.Context, database, id string) error
}

// Store reads and writes tenant metadata documents.
type Store struct {
	db DocumentAPI
}

// NewStore wraps a document database client.
func NewStore(db DocumentAPI) *Store {
	return &Store{db: db}
}

// Init makes sure the metadata database exists.
func (s *Store) Init(ctx context.Context) error {
	return s.db.EnsureDB(ctx, DatabaseName)
}

// Save upserts the tenant document under its login.
func (s *Store) Save(ctx context.Context, metadata *Metadata) error {
	if err := s.db.UpsertDoc(ctx, DatabaseName, metadata.Login, metadata.document()); err != nil {
		return fmt.Errorf("saving metadata of %q: %w", metadata.Login, err)
	}
	return nil
}

// Fetch loads the tenant document by login. The second return value is false
// when no document exists.
func (s *Store) Fetch(ctx context.Context, login string) (*Metadata, bool, error) {
	doc, found, err := s.db.FindOne(ctx, DatabaseName, map[string]any{"login": map[string]any{"$eq": login}})
	if err != nil {
		return nil, false, fmt.Errorf("fetching metadata of %q: %w", login, err)
	}
	if !found {
		return nil, false, nil
	}

	metadata := &Metadata{
		Login:    stringField(doc, "login"),
		Password: stringField(doc, "password"),
		Email:    stringField(doc, "email"),
	}
	if raw, ok := doc["metadata"].([]any); ok {
		for _, item := range raw {
			if entry, ok := item.(map[string]any); ok {
				metadata.Add(stringField(entry, "key"), stringField(entry, "value"))
			}
		}
	}
	return metadata, true, nil
}

// Delete removes the tenant document, tolerating documents that are already
// gone.
func (s *Store) Delete(ctx context.Context, login string) error {
	doc, found, err := s.db.FindOne(ctx, DatabaseName, map[string]any{"login": map[string]any{"$eq": login}})
	if err != nil {
		return fmt.Errorf("deleting metadata of %q: %w", login, err)
	}
	if !found {
		return nil
	}
	id, _ := doc["_id"].(string)
	if id == "" {
		id = login
	}
	if err := s.db.DeleteDoc(ctx, DatabaseName, id); err != nil {
		return fmt.Errorf("deleting metadata of %q: %w", login, err)
	}
	return nil
}

func stringField(doc map[string]any, key string) string {
	value, _ := doc[key].(string)
	return value
}
