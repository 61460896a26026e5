// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the operator's Prometheus collectors. They are
// registered on the controller-runtime registry and served by the manager's
// metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// ReconciliationsTotal counts finished reconciliations per controller and
	// outcome ("success" or "error").
	ReconciliationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nuvolaris_operator_reconciliations_total",
		Help: "Total number of finished reconciliations, partitioned by controller and outcome.",
	}, []string{"controller", "outcome"})

	// QuotaTogglesTotal counts quota enforcement toggles per subsystem and
	// direction ("readonly" or "readwrite").
	QuotaTogglesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nuvolaris_quota_toggles_total",
		Help: "Total number of tenant quota toggles, partitioned by subsystem and direction.",
	}, []string{"subsystem", "direction"})
)

func init() {
	metrics.Registry.MustRegister(ReconciliationsTotal, QuotaTogglesTotal)
}

// RecordReconciliation increments the reconciliation counter for the given
// controller.
func RecordReconciliation(controller string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ReconciliationsTotal.WithLabelValues(controller, outcome).Inc()
}

// RecordQuotaToggle increments the quota toggle counter.
func RecordQuotaToggle(subsystem, direction string) {
	QuotaTogglesTotal.WithLabelValues(subsystem, direction).Inc()
}
