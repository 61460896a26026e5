// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package couchdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kivik/kivik/v4/mockdb"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCouchDB(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CouchDB Client Suite")
}

var _ = Describe("Client", func() {
	var (
		client *Client
		mock   *mockdb.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		kivikClient, m, err := mockdb.New()
		Expect(err).NotTo(HaveOccurred())
		mock = m
		ctx = context.Background()
		client = &Client{kivik: kivikClient, http: http.DefaultClient}
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	Describe("EnsureDB", func() {
		It("skips creation when the database exists", func() {
			mock.ExpectDBExists().WithName("whisks").WillReturn(true)
			Expect(client.EnsureDB(ctx, "whisks")).To(Succeed())
		})

		It("creates a missing database", func() {
			mock.ExpectDBExists().WithName("whisks").WillReturn(false)
			mock.ExpectCreateDB().WithName("whisks")
			Expect(client.EnsureDB(ctx, "whisks")).To(Succeed())
		})
	})

	Describe("UpsertDoc", func() {
		It("carries the current revision over", func() {
			db := mock.NewDB()
			mock.ExpectDB().WithName("subjects").WillReturn(db)

			current, err := mockdb.Document(`{"_id":"alice","_rev":"3-abc","subject":"alice"}`)
			Expect(err).NotTo(HaveOccurred())
			db.ExpectGet().WithDocID("alice").WillReturn(current)
			db.ExpectPut().WithDocID("alice").WillReturn("4-def")

			doc := map[string]any{"subject": "alice"}
			Expect(client.UpsertDoc(ctx, "subjects", "alice", doc)).To(Succeed())
			Expect(doc).To(HaveKeyWithValue("_rev", "3-abc"))
		})
	})

	Describe("DeleteSubject", func() {
		It("tolerates a namespace that was never authorized", func() {
			db := mock.NewDB()
			mock.ExpectDB().WithName("subjects").WillReturn(db)
			db.ExpectFind().WillReturn(mockdb.NewRows())

			Expect(client.DeleteSubject(ctx, "ghost")).To(Succeed())
		})
	})
})

var _ = Describe("WaitReady", func() {
	It("returns once the server answers", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"couchdb":"Welcome","version":"3.3.2"}`)
		}))
		defer server.Close()

		client, err := New(server.URL, "whisk_admin", "some_passw0rd")
		Expect(err).NotTo(HaveOccurred())
		Expect(client.WaitReady(context.Background())).To(Succeed())
	})
})

var _ = Describe("SetConfigValue", func() {
	It("writes the node configuration endpoint", func() {
		var (
			gotMethod string
			gotPath   string
			gotBody   string
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, err := New(server.URL, "whisk_admin", "some_passw0rd")
		Expect(err).NotTo(HaveOccurred())

		Expect(client.DisableReduceLimit(context.Background())).To(Succeed())
		Expect(gotMethod).To(Equal(http.MethodPut))
		Expect(gotPath).To(Equal("/_node/_local/_config/query_server_config/reduce_limit"))
		Expect(gotBody).To(Equal(`"false"`))
	})

	It("reports unexpected statuses", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client, err := New(server.URL, "whisk_admin", "some_passw0rd")
		Expect(err).NotTo(HaveOccurred())
		Expect(client.EnableCompaction(context.Background(), "whisks")).NotTo(Succeed())
	})
})
