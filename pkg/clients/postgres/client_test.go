// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Postgres Client Suite")
}

var _ = Describe("Client", func() {
	var (
		client  *Client
		admin   sqlmock.Sqlmock
		tenant  sqlmock.Sqlmock
		ctx     context.Context
	)

	BeforeEach(func() {
		adminDB, adminMock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		Expect(err).NotTo(HaveOccurred())
		tenantDB, tenantMock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		Expect(err).NotTo(HaveOccurred())

		admin, tenant = adminMock, tenantMock
		ctx = context.Background()
		client = &Client{
			admin: adminDB,
			connect: func(string) (*sql.DB, error) {
				return tenantDB, nil
			},
		}
	})

	AfterEach(func() {
		Expect(admin.ExpectationsWereMet()).To(Succeed())
		Expect(tenant.ExpectationsWereMet()).To(Succeed())
	})

	Describe("EnsureDatabaseAndUser", func() {
		It("creates both when missing and grants the database", func() {
			admin.ExpectQuery("SELECT EXISTS .*pg_roles").
				WithArgs("alice").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			admin.ExpectExec(`CREATE USER "alice" WITH PASSWORD`).
				WillReturnResult(sqlmock.NewResult(0, 0))
			admin.ExpectQuery("SELECT EXISTS .*pg_database").
				WithArgs("alice").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			admin.ExpectExec(`CREATE DATABASE "alice" OWNER "alice"`).
				WillReturnResult(sqlmock.NewResult(0, 0))
			admin.ExpectExec(`GRANT ALL PRIVILEGES ON DATABASE "alice" TO "alice"`).
				WillReturnResult(sqlmock.NewResult(0, 0))

			Expect(client.EnsureDatabaseAndUser(ctx, "alice", "alice", "s3cret")).To(Succeed())
		})

		It("converges when both already exist", func() {
			admin.ExpectQuery("SELECT EXISTS .*pg_roles").
				WithArgs("alice").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			admin.ExpectQuery("SELECT EXISTS .*pg_database").
				WithArgs("alice").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			admin.ExpectExec("GRANT ALL PRIVILEGES ON DATABASE").
				WillReturnResult(sqlmock.NewResult(0, 0))

			Expect(client.EnsureDatabaseAndUser(ctx, "alice", "alice", "s3cret")).To(Succeed())
		})
	})

	Describe("DropDatabaseAndUser", func() {
		It("terminates sessions then drops both", func() {
			admin.ExpectExec("pg_terminate_backend").
				WithArgs("alice").
				WillReturnResult(sqlmock.NewResult(0, 0))
			admin.ExpectExec(`DROP DATABASE IF EXISTS "alice"`).
				WillReturnResult(sqlmock.NewResult(0, 0))
			admin.ExpectExec(`DROP ROLE IF EXISTS "alice"`).
				WillReturnResult(sqlmock.NewResult(0, 0))

			Expect(client.DropDatabaseAndUser(ctx, "alice", "alice")).To(Succeed())
		})
	})

	Describe("DatabaseSizes", func() {
		It("maps database names to bytes", func() {
			admin.ExpectQuery("pg_database_size").
				WillReturnRows(sqlmock.NewRows([]string{"datname", "size"}).
					AddRow("alice", int64(157286400)).
					AddRow("postgres", int64(8388608)))

			sizes, err := client.DatabaseSizes(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sizes).To(HaveKeyWithValue("alice", int64(157286400)))
			Expect(sizes).To(HaveLen(2))
		})
	})

	Describe("SetReadOnly", func() {
		It("revokes writes schema by schema and leaves reads", func() {
			tenant.ExpectQuery("pg_namespace").
				WillReturnRows(sqlmock.NewRows([]string{"nspname"}).AddRow("public"))
			for range [8]int{} {
				tenant.ExpectExec(`"public"`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			}

			Expect(client.SetReadOnly(ctx, "alice", "alice")).To(Succeed())
		})
	})

	Describe("SetReadWrite", func() {
		It("restores full access schema by schema", func() {
			tenant.ExpectQuery("pg_namespace").
				WillReturnRows(sqlmock.NewRows([]string{"nspname"}).AddRow("public"))
			for range [5]int{} {
				tenant.ExpectExec(`GRANT ALL`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			}

			Expect(client.SetReadWrite(ctx, "alice", "alice")).To(Succeed())
		})
	})
})

var _ = DescribeTable("quoteLiteral",
	func(input, expected string) {
		Expect(quoteLiteral(input)).To(Equal(expected))
	},
	Entry("plain", "s3cret", "'s3cret'"),
	Entry("embedded quote", "o'brien", "'o''brien'"),
	Entry("empty", "", "''"),
)
