// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package postgres is the admin client for the relational database: tenant
// database and user provisioning, size measurement, and the schema-by-schema
// read-only toggle used by quota enforcement.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Client executes admin statements against the database server. Statements
// that only exist per-database (schema grants) connect to the target
// database on demand.
type Client struct {
	admin   *sql.DB
	connect func(database string) (*sql.DB, error)
}

// New connects to the server's default database with admin credentials.
func New(host, port, username, password string) (*Client, error) {
	dsn := func(database string) string {
		s := fmt.Sprintf("host=%s port=%s user=%s password=%s", host, port, username, password)
		if database != "" {
			s += " dbname=" + database
		}
		return s
	}

	admin, err := sql.Open("pgx", dsn(""))
	if err != nil {
		return nil, fmt.Errorf("opening admin connection: %w", err)
	}

	return &Client{
		admin: admin,
		connect: func(database string) (*sql.DB, error) {
			return sql.Open("pgx", dsn(database))
		},
	}, nil
}

// Close releases the admin connection.
func (c *Client) Close() error {
	return c.admin.Close()
}

// EnsureDatabaseAndUser provisions a tenant database owned by a same-named
// login user. Both are created only when missing, so re-provisioning an
// existing tenant converges.
func (c *Client) EnsureDatabaseAndUser(ctx context.Context, database, username, password string) error {
	var exists bool

	if err := c.admin.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)", username).Scan(&exists); err != nil {
		return fmt.Errorf("checking role %q: %w", username, err)
	}
	if !exists {
		stmt := fmt.Sprintf("CREATE USER %s WITH PASSWORD %s",
			pgx.Identifier{username}.Sanitize(), quoteLiteral(password))
		if _, err := c.admin.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating role %q: %w", username, err)
		}
	}

	if err := c.admin.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", database).Scan(&exists); err != nil {
		return fmt.Errorf("checking database %q: %w", database, err)
	}
	if !exists {
		stmt := fmt.Sprintf("CREATE DATABASE %s OWNER %s",
			pgx.Identifier{database}.Sanitize(), pgx.Identifier{username}.Sanitize())
		if _, err := c.admin.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating database %q: %w", database, err)
		}
	}

	stmt := fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s",
		pgx.Identifier{database}.Sanitize(), pgx.Identifier{username}.Sanitize())
	if _, err := c.admin.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("granting database %q to %q: %w", database, username, err)
	}
	return nil
}

// DropDatabaseAndUser removes a tenant database and its login user,
// terminating open sessions first. Missing objects are tolerated.
func (c *Client) DropDatabaseAndUser(ctx context.Context, database, username string) error {
	if _, err := c.admin.ExecContext(ctx,
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()",
		database); err != nil {
		return fmt.Errorf("terminating sessions on %q: %w", database, err)
	}

	if _, err := c.admin.ExecContext(ctx,
		fmt.Sprintf("DROP DATABASE IF EXISTS %s", pgx.Identifier{database}.Sanitize())); err != nil {
		return fmt.Errorf("dropping database %q: %w", database, err)
	}
	if _, err := c.admin.ExecContext(ctx,
		fmt.Sprintf("DROP ROLE IF EXISTS %s", pgx.Identifier{username}.Sanitize())); err != nil {
		return fmt.Errorf("dropping role %q: %w", username, err)
	}
	return nil
}

// DatabaseSizes returns the size in bytes of every database on the server.
func (c *Client) DatabaseSizes(ctx context.Context) (map[string]int64, error) {
	rows, err := c.admin.QueryContext(ctx,
		"SELECT datname, pg_database_size(datname) FROM pg_database")
	if err != nil {
		return nil, fmt.Errorf("querying database sizes: %w", err)
	}
	defer rows.Close()

	sizes := map[string]int64{}
	for rows.Next() {
		var (
			name string
			size int64
		)
		if err := rows.Scan(&name, &size); err != nil {
			return nil, fmt.Errorf("scanning database size: %w", err)
		}
		sizes[name] = size
	}
	return sizes, rows.Err()
}

// SetReadOnly revokes write access of the user on every schema of the
// database and leaves read access in place. Used when a tenant exceeds its
// declared quota.
func (c *Client) SetReadOnly(ctx context.Context, database, username string) error {
	return c.forEachSchema(ctx, database, username, func(db *sql.DB, schema, user string) error {
		statements := []string{
			fmt.Sprintf("REVOKE ALL ON ALL TABLES IN SCHEMA %s FROM %s", schema, user),
			fmt.Sprintf("REVOKE ALL ON ALL SEQUENCES IN SCHEMA %s FROM %s", schema, user),
			fmt.Sprintf("REVOKE ALL ON SCHEMA %s FROM %s", schema, user),
			fmt.Sprintf("GRANT USAGE ON SCHEMA %s TO %s", schema, user),
			fmt.Sprintf("GRANT SELECT ON ALL TABLES IN SCHEMA %s TO %s", schema, user),
			fmt.Sprintf("GRANT SELECT ON ALL SEQUENCES IN SCHEMA %s TO %s", schema, user),
			fmt.Sprintf("ALTER DEFAULT PRIVILEGES IN SCHEMA %s GRANT SELECT ON TABLES TO %s", schema, user),
			fmt.Sprintf("ALTER DEFAULT PRIVILEGES IN SCHEMA %s GRANT SELECT ON SEQUENCES TO %s", schema, user),
		}
		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("executing %q: %w", stmt, err)
			}
		}
		return nil
	})
}

// SetReadWrite restores full access of the user on every schema of the
// database, reversing SetReadOnly.
func (c *Client) SetReadWrite(ctx context.Context, database, username string) error {
	return c.forEachSchema(ctx, database, username, func(db *sql.DB, schema, user string) error {
		statements := []string{
			fmt.Sprintf("GRANT ALL ON ALL TABLES IN SCHEMA %s TO %s", schema, user),
			fmt.Sprintf("GRANT ALL ON ALL SEQUENCES IN SCHEMA %s TO %s", schema, user),
			fmt.Sprintf("GRANT ALL ON SCHEMA %s TO %s", schema, user),
			fmt.Sprintf("ALTER DEFAULT PRIVILEGES IN SCHEMA %s GRANT ALL ON TABLES TO %s", schema, user),
			fmt.Sprintf("ALTER DEFAULT PRIVILEGES IN SCHEMA %s GRANT ALL ON SEQUENCES TO %s", schema, user),
		}
		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("executing %q: %w", stmt, err)
			}
		}
		return nil
	})
}

// forEachSchema connects to the database, lists its user schemas, and calls
// apply once per schema with sanitized identifiers.
func (c *Client) forEachSchema(ctx context.Context, database, username string, apply func(db *sql.DB, schema, user string) error) error {
	db, err := c.connect(database)
	if err != nil {
		return fmt.Errorf("connecting to %q: %w", database, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		"SELECT nspname FROM pg_catalog.pg_namespace WHERE nspname NOT IN ('information_schema','pg_catalog','pg_toast')")
	if err != nil {
		return fmt.Errorf("listing schemas of %q: %w", database, err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var schema string
		if err := rows.Scan(&schema); err != nil {
			return fmt.Errorf("scanning schema name: %w", err)
		}
		schemas = append(schemas, schema)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	user := pgx.Identifier{username}.Sanitize()
	for _, schema := range schemas {
		if err := apply(db, pgx.Identifier{schema}.Sanitize(), user); err != nil {
			return err
		}
	}
	return nil
}

// quoteLiteral escapes a string literal for statements that cannot be
// parameterized, such as CREATE USER.
func quoteLiteral(s string) string {
	out := []byte{'\''}
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'')
		}
		out = append(out, s[i])
	}
	return string(append(out, '\''))
}
