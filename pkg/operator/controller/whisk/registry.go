// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package whisk

import (
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/cosi"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/couchdb"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/cron"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/endpoint"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/etcd"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/invoker"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/issuer"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/kafka"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/milvus"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/minio"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/mongodb"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/monitoring"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/openwhisk"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/postgres"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/preloader"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/quotacron"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/redis"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/registry"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/static"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component/zookeeper"
)

// NewComponentRegistry returns the registry of every managed subsystem,
// registered in a stable order so ties in the dependency sort are
// deterministic.
func NewComponentRegistry() *component.Registry {
	return component.NewRegistry().Add(
		couchdb.NewController(),
		zookeeper.NewController(),
		kafka.NewController(),
		openwhisk.NewController(),
		invoker.NewController(),
		endpoint.NewController(),
		redis.NewController(),
		minio.NewController(),
		minio.NewIngressesController(),
		cosi.NewController(),
		static.NewController(),
		postgres.NewController(),
		mongodb.NewController(),
		etcd.NewController(),
		milvus.NewController(),
		registry.NewController(),
		monitoring.NewController(),
		quotacron.NewController(),
		issuer.NewController(),
		cron.NewController(),
		preloader.NewController(),
	)
}
