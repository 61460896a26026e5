// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package config

// Values is a parameter dictionary handed to the chart renderer.
type Values map[string]any

// CommonValues returns the cluster-wide parameters every chart receives.
func (c *Config) CommonValues() Values {
	return Values{
		"kube":         c.GetOrDefault("nuvolaris.kube", "auto"),
		"storageClass": c.Get("nuvolaris.storageclass"),
		"provisioner":  c.Get("nuvolaris.provisioner"),
		"slim":         c.GetBool("nuvolaris.slim"),
		"affinity":     c.GetBool("nuvolaris.affinity"),
		"tolerations":  c.GetBool("nuvolaris.tolerations"),
	}
}

// CouchDBValues returns the document database parameters.
func (c *Config) CouchDBValues() Values {
	return Values{
		"host":               c.GetOrDefault("couchdb.host", "couchdb"),
		"port":               c.GetOrDefault("couchdb.port", "5984"),
		"size":               c.GetInt("couchdb.volume-size", 10),
		"storageClass":       c.Get("nuvolaris.storageclass"),
		"adminUser":          c.GetOrDefault("couchdb.admin.user", "whisk_admin"),
		"adminPassword":      c.GetOrDefault("couchdb.admin.password", "some_passw0rd"),
		"controllerUser":     c.GetOrDefault("couchdb.controller.user", "invoker_admin"),
		"controllerPassword": c.GetOrDefault("couchdb.controller.password", "s0meP@ass1"),
		"invokerUser":        c.GetOrDefault("couchdb.invoker.user", "controller_admin"),
		"invokerPassword":    c.GetOrDefault("couchdb.invoker.password", "s0meP@ass2"),
	}
}

// ZookeeperValues returns the coordinator parameters.
func (c *Config) ZookeeperValues() Values {
	return Values{
		"size":         c.GetInt("zookeeper.volume-size", 5),
		"dataSize":     c.GetInt("zookeeper.data-size", 2),
		"storageClass": c.Get("nuvolaris.storageclass"),
	}
}

// KafkaValues returns the message log parameters.
func (c *Config) KafkaValues() Values {
	return Values{
		"size":         c.GetInt("kafka.volume-size", 10),
		"storageClass": c.Get("nuvolaris.storageclass"),
		// zookeeper-url is discovered by the zookeeper component after readiness.
		"zookeeperUrl": c.GetOrDefault("kafka.zookeeper-url", "zookeeper-0.zookeeper:2181"),
	}
}

// OpenWhiskValues returns the function controller parameters.
func (c *Config) OpenWhiskValues() Values {
	return Values{
		"couchdbHost":               c.GetOrDefault("couchdb.host", "couchdb"),
		"couchdbPort":               c.GetOrDefault("couchdb.port", "5984"),
		"couchdbControllerUser":     c.GetOrDefault("couchdb.controller.user", "invoker_admin"),
		"couchdbControllerPassword": c.GetOrDefault("couchdb.controller.password", "s0meP@ass1"),
		"kafkaEnabled":              c.GetBool("components.kafka"),
		"kafkaUrl":                  c.GetOrDefault("kafka.url", "kafka:9092"),
		"zookeeperUrl":              c.GetOrDefault("kafka.zookeeper-url", "zookeeper-0.zookeeper:2181"),
		"triggersFiresPerMinute":    c.GetInt("configs.limits.triggers.fires-perMinute", 60),
		"actionsSequenceMaxLength":  c.GetInt("configs.limits.actions.sequence-maxLength", 50),
		"actionsInvokesPerMinute":   c.GetInt("configs.limits.actions.invokes-perMinute", 60),
		"actionsInvokesConcurrent":  c.GetInt("configs.limits.actions.invokes-concurrent", 30),
		"timeLimitMin":              c.GetOrDefault("configs.limits.time.min", "100ms"),
		"timeLimitStd":              c.GetOrDefault("configs.limits.time.std", "1min"),
		"timeLimitMax":              c.GetOrDefault("configs.limits.time.max", "5min"),
		"memoryLimitMin":            c.GetOrDefault("configs.limits.memory.min", "128m"),
		"memoryLimitStd":            c.GetOrDefault("configs.limits.memory.std", "256m"),
		"memoryLimitMax":            c.GetOrDefault("configs.limits.memory.max", "512m"),
		"controllerJavaOpts":        c.GetOrDefault("configs.controller.javaOpts", "-Xmx2048M"),
		"usePrivateRegistry":        c.GetBool("components.registry"),
	}
}

// InvokerValues returns the invoker parameters.
func (c *Config) InvokerValues() Values {
	values := c.OpenWhiskValues()
	values["invokerJavaOpts"] = c.GetOrDefault("configs.invoker.javaOpts", "-Xmx2048M")
	values["containerPoolMemory"] = c.GetOrDefault("configs.invoker.containerPool-userMemory", "2048m")
	return values
}

// RedisValues returns the cache parameters.
func (c *Config) RedisValues() Values {
	return Values{
		"provider":          c.GetOrDefault("redis.provider", "redis"),
		"size":              c.GetInt("redis.volume-size", 10),
		"storageClass":      c.Get("nuvolaris.storageclass"),
		"persistence":       c.GetBool("redis.persistence"),
		"maxmemory":         c.GetOrDefault("redis.maxmemory", "1000mb"),
		"defaultPassword":   c.GetOrDefault("redis.default.password", "s0meP@ass3"),
		"nuvolarisPrefix":   c.GetOrDefault("redis.nuvolaris.prefix", "nuvolaris:"),
		"nuvolarisPassword": c.GetOrDefault("redis.nuvolaris.password", "s0meP@ass3"),
	}
}

// MinioValues returns the object store parameters.
func (c *Config) MinioValues() Values {
	return Values{
		"host":              c.GetOrDefault("minio.host", "nuvolaris-minio"),
		"port":              c.GetOrDefault("minio.port", "9000"),
		"size":              c.GetInt("minio.volume-size", 5),
		"storageClass":      c.Get("nuvolaris.storageclass"),
		"rootUser":          c.GetOrDefault("minio.admin.user", "minio"),
		"rootPassword":      c.GetOrDefault("minio.admin.password", "minio123"),
		"nuvolarisUser":     c.GetOrDefault("minio.nuvolaris.user", "nuvolaris"),
		"nuvolarisPassword": c.Get("minio.nuvolaris.password"),
		"s3Ingress":         c.GetBool("minio.ingress.s3-enabled"),
		"consoleIngress":    c.GetBool("minio.ingress.console-enabled"),
		"s3Hostname":        c.GetOrDefault("minio.ingress.s3-hostname", "auto"),
		"consoleHostname":   c.GetOrDefault("minio.ingress.console-hostname", "auto"),
	}
}

// CosiValues returns the bucket-claim object store parameters.
func (c *Config) CosiValues() Values {
	return Values{
		"storageClass": c.GetOrDefault("cosi.storageclass", "rook-ceph-bucket"),
		"provider":     c.GetOrDefault("cosi.provider", "rook"),
	}
}

// PostgresValues returns the relational database parameters.
func (c *Config) PostgresValues() Values {
	return Values{
		"size":              c.GetInt("postgres.volume-size", 10),
		"storageClass":      c.Get("nuvolaris.storageclass"),
		"replicas":          c.GetInt("postgres.admin.replicas", 2),
		"rootPassword":      c.GetOrDefault("postgres.admin.password", "0therPa55"),
		"nuvolarisPassword": c.GetOrDefault("postgres.nuvolaris.password", "s0meP@ass3"),
		"backup":            c.GetBool("postgres.backup.enabled"),
		"backupSchedule":    c.GetOrDefault("postgres.backup.schedule", "30 * * * *"),
		"mongodbEnabled":    c.GetBool("components.mongodb"),
	}
}

// EtcdValues returns the vector database coordinator parameters.
func (c *Config) EtcdValues() Values {
	return Values{
		"size":         c.GetInt("etcd.volume-size", 5),
		"replicas":     c.GetInt("etcd.replicas", 1),
		"storageClass": c.Get("nuvolaris.storageclass"),
		"rootPassword": c.GetOrDefault("etcd.password", "s0meP@ass3"),
	}
}

// MilvusValues returns the vector database parameters.
func (c *Config) MilvusValues() Values {
	return Values{
		"size":              c.GetInt("milvus.volume-size", 10),
		"storageClass":      c.Get("nuvolaris.storageclass"),
		"rootPassword":      c.GetOrDefault("milvus.password", "An0therPa55"),
		"nuvolarisUser":     c.GetOrDefault("milvus.nuvolaris.user", "nuvolaris"),
		"nuvolarisPassword": c.GetOrDefault("milvus.nuvolaris.password", "s0meP@ass3"),
		"etcdUser":          "milvus",
		"etcdPassword":      c.GetOrDefault("etcd.password", "s0meP@ass3"),
		"bucket":            "vectors",
		"s3Host":            c.GetOrDefault("minio.host", "nuvolaris-minio"),
		"s3Port":            c.GetOrDefault("minio.port", "9000"),
		"s3AccessKey":       c.GetOrDefault("minio.admin.user", "minio"),
		"s3SecretKey":       c.GetOrDefault("minio.admin.password", "minio123"),
	}
}

// RegistryValues returns the image registry parameters.
func (c *Config) RegistryValues() Values {
	return Values{
		"mode":         c.GetOrDefault("registry.mode", "internal"),
		"hostname":     c.Get("registry.hostname"),
		"username":     c.GetOrDefault("registry.username", "nuvolaris"),
		"password":     c.Get("registry.password"),
		"size":         c.GetInt("registry.volume-size", 20),
		"storageClass": c.Get("nuvolaris.storageclass"),
		"ingress":      c.GetBool("registry.ingress"),
	}
}

// MonitoringValues returns the prometheus stack parameters.
func (c *Config) MonitoringValues() Values {
	return Values{
		"size":                c.GetInt("monitoring.volume-size", 10),
		"storageClass":        c.Get("nuvolaris.storageclass"),
		"alertManagerEnabled": c.GetBool("monitoring.alert-manager.enabled"),
		"slackEnabled":        c.GetBool("monitoring.alert-manager.slack.enabled"),
		"slackChannel":        c.Get("monitoring.alert-manager.slack.channel"),
		"slackURL":            c.Get("monitoring.alert-manager.slack.url"),
		"emailEnabled":        c.GetBool("monitoring.alert-manager.email.enabled"),
		"emailFrom":           c.Get("monitoring.alert-manager.email.from"),
		"emailTo":             c.Get("monitoring.alert-manager.email.to"),
		"emailSmartHost":      c.Get("monitoring.alert-manager.email.smarthost"),
		"emailAuthUser":       c.Get("monitoring.alert-manager.email.auth-user"),
		"emailAuthPassword":   c.Get("monitoring.alert-manager.email.auth-password"),
	}
}

// QuotaValues returns the quota enforcement cronjob parameters.
func (c *Config) QuotaValues() Values {
	return Values{
		"schedule": c.GetOrDefault("quota.schedule", "*/10 * * * *"),
	}
}

// IssuerValues returns the ACME cluster issuer parameters.
func (c *Config) IssuerValues() Values {
	return Values{
		"email":  c.Get("tls.acme-registered-email"),
		"server": c.GetOrDefault("tls.acme-server-url", "https://acme-v02.api.letsencrypt.org/directory"),
	}
}

// StaticValues returns the static gateway parameters.
func (c *Config) StaticValues() Values {
	return Values{
		"s3Host": c.GetOrDefault("minio.host", "nuvolaris-minio"),
		"s3Port": c.GetOrDefault("minio.port", "9000"),
		"bucket": "nuvolaris-web",
	}
}
