// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package redisadmin is the admin client for the cache: the prefix memory
// measurement used by quota enforcement. Per-tenant ACLs are managed through
// the pod-exec scripts shared with the kvrocks provider, not through this
// client.
package redisadmin

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// prefixUsageScript walks all keys below a prefix and sums their memory
// usage in bytes. Runs server-side so large prefixes need one round trip.
const prefixUsageScript = `
local total = 0
local cursor = "0"
repeat
  local result = redis.call("SCAN", cursor, "MATCH", KEYS[1], "COUNT", 100)
  cursor = result[1]
  for _, key in ipairs(result[2]) do
    local ok, mem = pcall(redis.call, "MEMORY", "USAGE", key)
    if ok and mem then
      total = total + mem
    end
  end
until cursor == "0"
return total
`

// Client wraps a go-redis connection authenticated as the default admin user.
type Client struct {
	rdb *redis.Client
}

// New connects to the cache at addr with the default user's password.
func New(addr, password string) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password})}
}

// NewFromClient wraps an existing connection. Used by tests.
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// PrefixUsedBytes returns the total memory in bytes allocated by all keys
// below the given prefix.
func (c *Client) PrefixUsedBytes(ctx context.Context, prefix string) (int64, error) {
	result, err := c.rdb.Eval(ctx, prefixUsageScript, []string{prefix + "*"}).Result()
	if err != nil {
		return 0, fmt.Errorf("measuring prefix %q: %w", prefix, err)
	}
	total, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("measuring prefix %q: unexpected result %v", prefix, result)
	}
	return total, nil
}
