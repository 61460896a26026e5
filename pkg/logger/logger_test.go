// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package logger_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nuvolaris/nuvolaris-operator/pkg/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	Describe("#NewZapLogger", func() {
		It("should return a logger for defaults", func() {
			log, err := logger.NewZapLogger("", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(log.Enabled()).To(BeTrue())
		})

		It("should not log debug messages at info level", func() {
			log, err := logger.NewZapLogger(logger.InfoLevel, logger.FormatJSON)
			Expect(err).NotTo(HaveOccurred())
			Expect(log.V(1).Enabled()).To(BeFalse())
		})

		It("should log debug messages at debug level", func() {
			log, err := logger.NewZapLogger(logger.DebugLevel, logger.FormatText)
			Expect(err).NotTo(HaveOccurred())
			Expect(log.V(1).Enabled()).To(BeTrue())
		})

		It("should fail on an unknown level", func() {
			_, err := logger.NewZapLogger("warning", logger.FormatJSON)
			Expect(err).To(MatchError(ContainSubstring("invalid log level")))
		})

		It("should fail on an unknown format", func() {
			_, err := logger.NewZapLogger(logger.InfoLevel, "xml")
			Expect(err).To(MatchError(ContainSubstring("invalid log format")))
		})
	})
})
