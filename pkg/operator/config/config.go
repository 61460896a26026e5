// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package config provides the hierarchical configuration store populated from
// a platform declaration plus environment overrides, and the per-component
// parameter dictionaries used to render the chart templates.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
)

// Config is an explicit configuration context passed through every component
// call. Keys are flat dotted paths ("couchdb.admin.password"); values may be
// overridden by environment variables (COUCHDB_ADMIN_PASSWORD).
//
// Writes happen only during boot (FromWhiskSpec) and through Put when a
// component discovers an endpoint after readiness. Reads are safe from
// concurrent tenant handlers.
type Config struct {
	mu sync.RWMutex
	v  *viper.Viper
}

// New returns an empty Config with environment overrides enabled.
func New() *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// FromWhiskSpec populates a Config from the platform declaration. The spec's
// JSON rendering becomes the key tree, so "couchdb.admin.password" reads the
// declared value and falls back to the COUCHDB_ADMIN_PASSWORD variable.
func FromWhiskSpec(spec *whiskv1.WhiskSpec) (*Config, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshalling platform declaration: %w", err)
	}

	tree := map[string]any{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("unmarshalling platform declaration: %w", err)
	}

	cfg := New()
	if err := cfg.v.MergeConfigMap(tree); err != nil {
		return nil, fmt.Errorf("merging platform declaration: %w", err)
	}
	return cfg, nil
}

// Get returns the string value for the given dotted key, or "" when unset.
func (c *Config) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.GetString(key)
}

// GetOrDefault returns the value for the given key, or def when unset.
func (c *Config) GetOrDefault(key, def string) string {
	if value := c.Get(key); value != "" {
		return value
	}
	return def
}

// GetInt returns the integer value for the given key, or def when unset or
// not a number.
func (c *Config) GetInt(key string, def int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.v.IsSet(key) {
		return def
	}
	if value := c.v.GetInt(key); value != 0 {
		return value
	}
	return def
}

// GetBool returns the boolean value for the given key, false when unset.
func (c *Config) GetBool(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.GetBool(key)
}

// Exists reports whether the given key is set.
func (c *Config) Exists(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.IsSet(key)
}

// Put records a discovered value, e.g. an endpoint read after a component
// became ready. Component code must only write keys below its own section.
func (c *Config) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v.Set(key, value)
}

// StringMap returns the sub-tree below the given key as a map of strings.
func (c *Config) StringMap(key string) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.GetStringMapString(key)
}
