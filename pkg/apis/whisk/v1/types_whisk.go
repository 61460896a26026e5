// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +genclient
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// Whisk declares the desired state of the serverless platform in one cluster.
// The operator reconciles it into a dependency-ordered set of subsystems.
type Whisk struct {
	metav1.TypeMeta `json:",inline"`
	// Standard object metadata.
	metav1.ObjectMeta `json:"metadata,omitempty"`
	// Spec contains the platform declaration.
	Spec WhiskSpec `json:"spec,omitempty"`
	// Status contains the per-component reconciliation states.
	Status WhiskStatus `json:"status,omitempty"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// WhiskList is a collection of Whisks.
type WhiskList struct {
	metav1.TypeMeta `json:",inline"`
	// Standard list object metadata.
	metav1.ListMeta `json:"metadata,omitempty"`
	// Items is the list of Whisks.
	Items []Whisk `json:"items"`
}

// WhiskSpec is the platform declaration.
type WhiskSpec struct {
	// Components enables or disables each managed subsystem.
	Components ComponentsSpec `json:"components,omitempty"`
	// Nuvolaris carries cluster-wide hints (runtime flavor, storage class, api host).
	Nuvolaris NuvolarisSpec `json:"nuvolaris,omitempty"`
	// CouchDB configures the document database.
	CouchDB CouchDBSpec `json:"couchdb,omitempty"`
	// Zookeeper configures the coordination service.
	Zookeeper ZookeeperSpec `json:"zookeeper,omitempty"`
	// Kafka configures the message log.
	Kafka KafkaSpec `json:"kafka,omitempty"`
	// OpenWhisk configures the function platform, notably the pre-seeded namespaces.
	OpenWhisk OpenWhiskSpec `json:"openwhisk,omitempty"`
	// Redis configures the key-value cache.
	Redis RedisSpec `json:"redis,omitempty"`
	// Minio configures the primary object store variant.
	Minio MinioSpec `json:"minio,omitempty"`
	// Cosi configures the bucket-claim based object store variant.
	Cosi CosiSpec `json:"cosi,omitempty"`
	// Postgres configures the relational database (also backing the mongodb proxy).
	Postgres PostgresSpec `json:"postgres,omitempty"`
	// Etcd configures the vector database coordinator.
	Etcd EtcdSpec `json:"etcd,omitempty"`
	// Milvus configures the vector database.
	Milvus MilvusSpec `json:"milvus,omitempty"`
	// Registry configures the in-cluster container image registry.
	Registry RegistrySpec `json:"registry,omitempty"`
	// Monitoring configures the prometheus stack.
	Monitoring MonitoringSpec `json:"monitoring,omitempty"`
	// Quota configures the quota enforcement cronjob.
	Quota QuotaSpec `json:"quota,omitempty"`
	// TLS configures the ACME cluster issuer.
	TLS TLSSpec `json:"tls,omitempty"`
	// Configs carries the function platform limits and JVM tuning.
	Configs ConfigsSpec `json:"configs,omitempty"`
}

// ComponentsSpec is the set of component flags. Prerequisites between
// components must hold, see the validation package.
type ComponentsSpec struct {
	CouchDB    bool `json:"couchdb,omitempty"`
	Zookeeper  bool `json:"zookeeper,omitempty"`
	Kafka      bool `json:"kafka,omitempty"`
	OpenWhisk  bool `json:"openwhisk,omitempty"`
	Invoker    bool `json:"invoker,omitempty"`
	Redis      bool `json:"redis,omitempty"`
	MongoDB    bool `json:"mongodb,omitempty"`
	Minio      bool `json:"minio,omitempty"`
	Cosi       bool `json:"cosi,omitempty"`
	Static     bool `json:"static,omitempty"`
	Postgres   bool `json:"postgres,omitempty"`
	Etcd       bool `json:"etcd,omitempty"`
	Milvus     bool `json:"milvus,omitempty"`
	Registry   bool `json:"registry,omitempty"`
	Monitoring bool `json:"monitoring,omitempty"`
	Quota      bool `json:"quota,omitempty"`
	TLS        bool `json:"tls,omitempty"`
	Cron       bool `json:"cron,omitempty"`
	Preloader  bool `json:"preloader,omitempty"`
}

// NuvolarisSpec carries cluster-wide hints.
type NuvolarisSpec struct {
	// Kube is the runtime flavor, one of auto, k3s, microk8s, kind, openshift, eks, gke, aks, generic.
	Kube string `json:"kube,omitempty"`
	// StorageClass overrides the detected default storage class.
	StorageClass string `json:"storageclass,omitempty"`
	// Provisioner overrides the detected storage provisioner.
	Provisioner string `json:"provisioner,omitempty"`
	// APIHost is either a literal host name or "auto".
	APIHost string `json:"apihost,omitempty"`
	// APIPort is an optional port appended to the computed host.
	APIPort string `json:"apiport,omitempty"`
	// Protocol is one of auto, http, https.
	Protocol string `json:"protocol,omitempty"`
	// Slim reduces resource requests for constrained clusters.
	Slim bool `json:"slim,omitempty"`
	// Affinity enables the node-affinity hints in the rendered manifests.
	Affinity bool `json:"affinity,omitempty"`
	// Tolerations enables the toleration hints in the rendered manifests.
	Tolerations bool `json:"tolerations,omitempty"`
}

// UserCredentials is a user/password pair for a subsystem account.
type UserCredentials struct {
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
}

// CouchDBSpec configures the document database.
type CouchDBSpec struct {
	// Host is the service host, defaults to "couchdb".
	Host string `json:"host,omitempty"`
	// VolumeSize is the PVC size in gigabytes.
	VolumeSize int `json:"volume-size,omitempty"`
	// Admin is the administrative account.
	Admin UserCredentials `json:"admin,omitempty"`
	// Controller is the account used by the function controller.
	Controller UserCredentials `json:"controller,omitempty"`
	// Invoker is the account used by the invoker.
	Invoker UserCredentials `json:"invoker,omitempty"`
}

// ZookeeperSpec configures the coordination service.
type ZookeeperSpec struct {
	VolumeSize int `json:"volume-size,omitempty"`
	DataSize   int `json:"data-size,omitempty"`
}

// KafkaSpec configures the message log.
type KafkaSpec struct {
	VolumeSize int `json:"volume-size,omitempty"`
}

// OpenWhiskSpec configures the function platform.
type OpenWhiskSpec struct {
	// Namespaces maps a subject name to its "uuid:key" credential. Every entry
	// is seeded into the auth database when the document database comes up.
	Namespaces map[string]string `json:"namespaces,omitempty"`
}

// RedisUserSpec is a cache account bound to a key prefix.
type RedisUserSpec struct {
	Prefix   string `json:"prefix,omitempty"`
	Password string `json:"password,omitempty"`
}

// RedisSpec configures the key-value cache.
type RedisSpec struct {
	// Provider selects the cache engine, "redis" or "kvrocks".
	Provider   string `json:"provider,omitempty"`
	VolumeSize int    `json:"volume-size,omitempty"`
	// Persistence enables AOF persistence.
	Persistence bool `json:"persistence,omitempty"`
	// Default is the default-user account.
	Default RedisUserSpec `json:"default,omitempty"`
	// Nuvolaris is the platform prefix account.
	Nuvolaris RedisUserSpec `json:"nuvolaris,omitempty"`
}

// MinioIngressSpec controls the optional s3/console exposure.
type MinioIngressSpec struct {
	S3Enabled       bool   `json:"s3-enabled,omitempty"`
	ConsoleEnabled  bool   `json:"console-enabled,omitempty"`
	S3Hostname      string `json:"s3-hostname,omitempty"`
	ConsoleHostname string `json:"console-hostname,omitempty"`
}

// MinioSpec configures the primary object store variant.
type MinioSpec struct {
	VolumeSize int              `json:"volume-size,omitempty"`
	Admin      UserCredentials  `json:"admin,omitempty"`
	Nuvolaris  UserCredentials  `json:"nuvolaris,omitempty"`
	Ingress    MinioIngressSpec `json:"ingress,omitempty"`
}

// CosiSpec configures the bucket-claim based object store variant.
type CosiSpec struct {
	// StorageClass is the bucket storage class the claims reference.
	StorageClass string `json:"storageclass,omitempty"`
	// Provider identifies the fulfilling storage provider, e.g. "rook".
	Provider string `json:"provider,omitempty"`
}

// PostgresAdminSpec is the administrative side of the relational database.
type PostgresAdminSpec struct {
	Password string `json:"password,omitempty"`
	Replicas int    `json:"replicas,omitempty"`
}

// PostgresBackupSpec enables the periodic base backup cronjob.
type PostgresBackupSpec struct {
	Enabled  bool   `json:"enabled,omitempty"`
	Schedule string `json:"schedule,omitempty"`
}

// PostgresNuvolarisSpec is the platform account of the relational database.
type PostgresNuvolarisSpec struct {
	Password string `json:"password,omitempty"`
}

// PostgresSpec configures the relational database.
type PostgresSpec struct {
	VolumeSize int                   `json:"volume-size,omitempty"`
	Admin      PostgresAdminSpec     `json:"admin,omitempty"`
	Nuvolaris  PostgresNuvolarisSpec `json:"nuvolaris,omitempty"`
	Backup     PostgresBackupSpec    `json:"backup,omitempty"`
}

// EtcdSpec configures the vector database coordinator.
type EtcdSpec struct {
	VolumeSize int `json:"volume-size,omitempty"`
	Replicas   int `json:"replicas,omitempty"`
	// Password is the root account password.
	Password string `json:"password,omitempty"`
}

// MilvusSpec configures the vector database.
type MilvusSpec struct {
	VolumeSize int `json:"volume-size,omitempty"`
	// Password is the root account password.
	Password string `json:"password,omitempty"`
	// Nuvolaris is the platform account.
	Nuvolaris UserCredentials `json:"nuvolaris,omitempty"`
	// LegacyPrivileges switches tenant role grants to the legacy
	// collection-level privilege set.
	LegacyPrivileges bool `json:"legacy-privileges,omitempty"`
}

// RegistrySpec configures the container image registry.
type RegistrySpec struct {
	// Mode is "internal" (statefulset + secrets) or "external" (secrets only).
	Mode       string `json:"mode,omitempty"`
	Hostname   string `json:"hostname,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	VolumeSize int    `json:"volume-size,omitempty"`
	// Ingress exposes the internal registry outside the cluster.
	Ingress bool `json:"ingress,omitempty"`
}

// SlackSpec carries the alertmanager slack receiver settings.
type SlackSpec struct {
	Enabled bool   `json:"enabled,omitempty"`
	Channel string `json:"channel,omitempty"`
	URL     string `json:"url,omitempty"`
}

// EmailSpec carries the alertmanager smtp receiver settings.
type EmailSpec struct {
	Enabled      bool   `json:"enabled,omitempty"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
	SmartHost    string `json:"smarthost,omitempty"`
	AuthUser     string `json:"auth-user,omitempty"`
	AuthPassword string `json:"auth-password,omitempty"`
}

// AlertManagerSpec enables the optional alertmanager.
type AlertManagerSpec struct {
	Enabled bool      `json:"enabled,omitempty"`
	Slack   SlackSpec `json:"slack,omitempty"`
	Email   EmailSpec `json:"email,omitempty"`
}

// MonitoringSpec configures the prometheus stack.
type MonitoringSpec struct {
	VolumeSize   int              `json:"volume-size,omitempty"`
	AlertManager AlertManagerSpec `json:"alert-manager,omitempty"`
}

// QuotaSpec configures the quota enforcement cronjob.
type QuotaSpec struct {
	// Schedule is a cron expression, defaults to "*/10 * * * *".
	Schedule string `json:"schedule,omitempty"`
}

// TLSSpec configures the ACME cluster issuer.
type TLSSpec struct {
	AcmeRegisteredEmail string `json:"acme-registered-email,omitempty"`
	AcmeServerURL       string `json:"acme-server-url,omitempty"`
}

// ActionLimits are the per-action platform limits.
type ActionLimits struct {
	SequenceMaxLength int `json:"sequence-maxLength,omitempty"`
	InvokesPerMinute  int `json:"invokes-perMinute,omitempty"`
	InvokesConcurrent int `json:"invokes-concurrent,omitempty"`
}

// TriggerLimits are the per-trigger platform limits.
type TriggerLimits struct {
	FiresPerMinute int `json:"fires-perMinute,omitempty"`
}

// TimeLimits bound the action execution time, in milliseconds.
type TimeLimits struct {
	Max string `json:"max,omitempty"`
	Min string `json:"min,omitempty"`
	Std string `json:"std,omitempty"`
}

// MemoryLimits bound the action memory, e.g. "512m".
type MemoryLimits struct {
	Max string `json:"max,omitempty"`
	Min string `json:"min,omitempty"`
	Std string `json:"std,omitempty"`
}

// LimitsSpec groups the function platform limits.
type LimitsSpec struct {
	Actions  ActionLimits  `json:"actions,omitempty"`
	Triggers TriggerLimits `json:"triggers,omitempty"`
	Time     TimeLimits    `json:"time,omitempty"`
	Memory   MemoryLimits  `json:"memory,omitempty"`
}

// ControllerConfigSpec tunes the function controller process.
type ControllerConfigSpec struct {
	JavaOpts        string `json:"javaOpts,omitempty"`
	LoggingLevel    string `json:"loggingLevel,omitempty"`
	ResourcesMemory string `json:"resources-memory,omitempty"`
}

// InvokerConfigSpec tunes the invoker process.
type InvokerConfigSpec struct {
	JavaOpts           string `json:"javaOpts,omitempty"`
	ContainerPoolMemory string `json:"containerPool-userMemory,omitempty"`
}

// ConfigsSpec carries the function platform limits and JVM tuning.
type ConfigsSpec struct {
	Limits     LimitsSpec           `json:"limits,omitempty"`
	Controller ControllerConfigSpec `json:"controller,omitempty"`
	Invoker    InvokerConfigSpec    `json:"invoker,omitempty"`
}

// ComponentState is the reconciliation state of one component.
type ComponentState string

const (
	// ComponentOn means the component is deployed and ready.
	ComponentOn ComponentState = "on"
	// ComponentOff means the component is not deployed.
	ComponentOff ComponentState = "off"
	// ComponentError means the last reconciliation of the component failed.
	ComponentError ComponentState = "error"
	// ComponentUnknown means the component state has not been determined yet.
	ComponentUnknown ComponentState = "?"
)

const (
	// WhiskInitialized is the condition type set when reconciliation starts.
	WhiskInitialized = "Initialized"
	// WhiskReady is the condition type set when all enabled components are on.
	WhiskReady = "Ready"
)

// WhiskStatus holds the observed state of the platform.
type WhiskStatus struct {
	// ComponentStates maps each component to its reconciliation state.
	ComponentStates map[string]ComponentState `json:"componentStates,omitempty"`
	// Conditions carries the Initialized and Ready transitions.
	Conditions []metav1.Condition `json:"conditions,omitempty"`
	// ObservedGeneration is the generation last processed by the operator.
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}
