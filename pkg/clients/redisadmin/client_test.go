// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package redisadmin_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/redisadmin"
)

func TestRedisAdmin(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Redis Admin Client Suite")
}

var _ = Describe("Client", func() {
	var (
		server *miniredis.Miniredis
		client *redisadmin.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		server, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(server.Close)

		client = redisadmin.NewFromClient(redis.NewClient(&redis.Options{Addr: server.Addr()}))
		DeferCleanup(client.Close)
		ctx = context.Background()
	})

	Describe("PrefixUsedBytes", func() {
		It("sums only the keys below the prefix", func() {
			server.Set("alice:a", "some value")
			server.Set("alice:b", "another value")
			server.Set("bob:a", "not hers")

			aliceBytes, err := client.PrefixUsedBytes(ctx, "alice:")
			Expect(err).NotTo(HaveOccurred())

			bobBytes, err := client.PrefixUsedBytes(ctx, "bob:")
			Expect(err).NotTo(HaveOccurred())

			Expect(aliceBytes).To(BeNumerically(">", bobBytes))
		})

		It("reports zero for an unused prefix", func() {
			used, err := client.PrefixUsedBytes(ctx, "carol:")
			Expect(err).NotTo(HaveOccurred())
			Expect(used).To(BeZero())
		})
	})
})
