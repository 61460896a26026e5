// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package v1

const (
	// AnnotationLastAppliedSpec records the spec that was last reconciled, so
	// updates can be diffed against it.
	AnnotationLastAppliedSpec = "nuvolaris.org/last-applied-spec"

	// AnnotationPostgresQuotaReached marks a tenant whose relational database
	// exceeded its quota. Set and cleared only by the quota enforcer.
	AnnotationPostgresQuotaReached = "postgres_db_quota_reached"
	// AnnotationFerretQuotaReached marks a tenant whose mongodb proxy database
	// exceeded its quota.
	AnnotationFerretQuotaReached = "ferret_db_quota_reached"
	// AnnotationRedisQuotaReached marks a tenant whose cache prefix exceeded
	// its quota.
	AnnotationRedisQuotaReached = "redis_db_quota_reached"

	// LabelApp is the app label put on every rendered manifest.
	LabelApp = "app"
	// LabelComponent identifies the owning component on every rendered manifest.
	LabelComponent = "component"

	// OperatorNamespace is the namespace the platform is installed into.
	OperatorNamespace = "nuvolaris"

	// ConfigConfigMapName is the platform ConfigMap whose annotations expose
	// the discovered endpoints to user code.
	ConfigConfigMapName = "config"
)
