// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +genclient
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// WhiskUser declares one tenant of the platform: a namespace credential plus
// the per-subsystem resources (buckets, databases, cache prefix, vector role)
// that must be provisioned for it.
type WhiskUser struct {
	metav1.TypeMeta `json:",inline"`
	// Standard object metadata.
	metav1.ObjectMeta `json:"metadata,omitempty"`
	// Spec contains the tenant declaration.
	Spec WhiskUserSpec `json:"spec,omitempty"`
	// Status records how far provisioning got.
	Status WhiskUserStatus `json:"status,omitempty"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// WhiskUserList is a collection of WhiskUsers.
type WhiskUserList struct {
	metav1.TypeMeta `json:",inline"`
	// Standard list object metadata.
	metav1.ListMeta `json:"metadata,omitempty"`
	// Items is the list of WhiskUsers.
	Items []WhiskUser `json:"items"`
}

// WhiskUserSpec is the tenant declaration.
type WhiskUserSpec struct {
	// Namespace is the tenant name, a DNS label of at least 5 characters.
	Namespace string `json:"namespace"`
	// Auth is the basic credential in the form "uuid:key", key at least 64 chars.
	Auth string `json:"auth"`
	// Email is the tenant contact address.
	Email string `json:"email,omitempty"`
	// Password is the tenant console password.
	Password string `json:"password,omitempty"`
	// ObjectStorage requests tenant buckets on the object store.
	ObjectStorage *UserObjectStorageSpec `json:"object-storage,omitempty"`
	// Redis requests a tenant key prefix on the cache.
	Redis *UserRedisSpec `json:"redis,omitempty"`
	// MongoDB requests a tenant database on the mongodb proxy.
	MongoDB *UserDatabaseSpec `json:"mongodb,omitempty"`
	// Postgres requests a tenant database on the relational database.
	Postgres *UserDatabaseSpec `json:"postgres,omitempty"`
	// Milvus requests a tenant database and role on the vector database.
	Milvus *UserMilvusSpec `json:"milvus,omitempty"`
}

// UserBucketSpec requests one tenant bucket.
type UserBucketSpec struct {
	Enabled bool `json:"enabled,omitempty"`
	// Bucket overrides the default bucket name.
	Bucket string `json:"bucket,omitempty"`
}

// UserObjectStorageSpec requests tenant object storage.
type UserObjectStorageSpec struct {
	// Password is the tenant's secret key on the store.
	Password string `json:"password,omitempty"`
	// Quota is "auto" or a positive integer in megabytes.
	Quota string `json:"quota,omitempty"`
	// Data is the private read-write bucket.
	Data UserBucketSpec `json:"data,omitempty"`
	// Route is the web bucket served by the static gateway.
	Route UserBucketSpec `json:"route,omitempty"`
}

// UserRedisSpec requests a tenant cache prefix.
type UserRedisSpec struct {
	Enabled bool `json:"enabled,omitempty"`
	// Prefix is the tenant key prefix, defaults to "<namespace>:".
	Prefix   string `json:"prefix,omitempty"`
	Password string `json:"password,omitempty"`
	// Quota is "auto" or a positive integer in megabytes.
	Quota string `json:"quota,omitempty"`
}

// UserDatabaseSpec requests a tenant database on a SQL-backed subsystem.
type UserDatabaseSpec struct {
	Enabled  bool   `json:"enabled,omitempty"`
	Database string `json:"database,omitempty"`
	Password string `json:"password,omitempty"`
	// Quota is "auto" or a positive integer in megabytes.
	Quota string `json:"quota,omitempty"`
}

// UserMilvusSpec requests a tenant vector database.
type UserMilvusSpec struct {
	Enabled  bool   `json:"enabled,omitempty"`
	Database string `json:"database,omitempty"`
	Password string `json:"password,omitempty"`
}

const (
	// UserPhaseProvisioning means tenant provisioning is in progress.
	UserPhaseProvisioning = "Provisioning"
	// UserPhaseReady means all requested subsystems were provisioned.
	UserPhaseReady = "Ready"
	// UserPhasePartial means at least one subsystem failed but others succeeded.
	UserPhasePartial = "Partial"
	// UserPhaseFailed means validation failed and nothing was created.
	UserPhaseFailed = "Failed"
)

// WhiskUserStatus records how far tenant provisioning got.
type WhiskUserStatus struct {
	// Phase is one of Provisioning, Ready, Partial, Failed.
	Phase string `json:"phase,omitempty"`
	// Message carries the human-readable reason for a failure.
	Message string `json:"message,omitempty"`
	// Provisioned maps each subsystem to whether its tenant resources exist.
	Provisioned map[string]bool `json:"provisioned,omitempty"`
}
