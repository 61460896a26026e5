// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/robfig/cron"
	"k8s.io/apimachinery/pkg/util/validation/field"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
)

var (
	namespaceRegexp = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9]{0,61}[a-z0-9])?$`)

	availableRuntimes  = []string{"", "auto", "k3s", "microk8s", "kind", "openshift", "eks", "gke", "aks", "generic"}
	availableProtocols = []string{"", "auto", "http", "https"}
)

// minNamespaceLength is the minimum length of a tenant namespace.
const minNamespaceLength = 5

// minAuthKeyLength is the minimum length of the key part of a tenant credential.
const minAuthKeyLength = 64

// ValidateWhisk validates a platform declaration.
func ValidateWhisk(whisk *whiskv1.Whisk) field.ErrorList {
	allErrs := field.ErrorList{}
	specPath := field.NewPath("spec")

	allErrs = append(allErrs, validateNuvolaris(&whisk.Spec.Nuvolaris, specPath.Child("nuvolaris"))...)
	allErrs = append(allErrs, validateComponentPrerequisites(&whisk.Spec.Components, specPath.Child("components"))...)

	if schedule := whisk.Spec.Quota.Schedule; schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			allErrs = append(allErrs, field.Invalid(specPath.Child("quota", "schedule"), schedule, err.Error()))
		}
	}

	if mode := whisk.Spec.Registry.Mode; mode != "" && mode != "internal" && mode != "external" {
		allErrs = append(allErrs, field.NotSupported(specPath.Child("registry", "mode"), mode, []string{"internal", "external"}))
	}

	for name, auth := range whisk.Spec.OpenWhisk.Namespaces {
		if err := validateAuth(auth); err != nil {
			allErrs = append(allErrs, field.Invalid(specPath.Child("openwhisk", "namespaces").Key(name), auth, err.Error()))
		}
	}

	return allErrs
}

func validateNuvolaris(nuvolaris *whiskv1.NuvolarisSpec, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}

	if !contains(availableRuntimes, nuvolaris.Kube) {
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("kube"), nuvolaris.Kube, availableRuntimes[1:]))
	}
	if !contains(availableProtocols, nuvolaris.Protocol) {
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("protocol"), nuvolaris.Protocol, availableProtocols[1:]))
	}

	return allErrs
}

// validateComponentPrerequisites enforces the component dependency closure:
// an enabled component requires all its prerequisites to be enabled too.
func validateComponentPrerequisites(components *whiskv1.ComponentsSpec, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}

	require := func(name string, enabled bool, prerequisite string, ok bool) {
		if enabled && !ok {
			allErrs = append(allErrs, field.Forbidden(fldPath.Child(name), fmt.Sprintf("requires component %q to be enabled", prerequisite)))
		}
	}

	hasObjectStore := components.Minio || components.Cosi

	require("kafka", components.Kafka, "zookeeper", components.Zookeeper)
	require("openwhisk", components.OpenWhisk, "couchdb", components.CouchDB)
	require("invoker", components.Invoker, "couchdb", components.CouchDB)
	require("invoker", components.Invoker, "kafka", components.Kafka)
	require("mongodb", components.MongoDB, "postgres", components.Postgres)
	require("static", components.Static, "minio or cosi", hasObjectStore)
	require("milvus", components.Milvus, "etcd", components.Etcd)
	require("milvus", components.Milvus, "minio or cosi", hasObjectStore)

	if components.Minio && components.Cosi {
		allErrs = append(allErrs, field.Forbidden(fldPath.Child("cosi"), "only one object store variant may be enabled"))
	}

	return allErrs
}

// ValidateWhiskUser validates a tenant declaration.
func ValidateWhiskUser(user *whiskv1.WhiskUser) field.ErrorList {
	allErrs := field.ErrorList{}
	specPath := field.NewPath("spec")

	namespace := user.Spec.Namespace
	if len(namespace) < minNamespaceLength {
		allErrs = append(allErrs, field.Invalid(specPath.Child("namespace"), namespace, fmt.Sprintf("must be at least %d characters", minNamespaceLength)))
	} else if !namespaceRegexp.MatchString(namespace) {
		allErrs = append(allErrs, field.Invalid(specPath.Child("namespace"), namespace, "must be a lowercase DNS label"))
	}

	if err := validateAuth(user.Spec.Auth); err != nil {
		allErrs = append(allErrs, field.Invalid(specPath.Child("auth"), user.Spec.Auth, err.Error()))
	}

	if storage := user.Spec.ObjectStorage; storage != nil {
		allErrs = append(allErrs, validateQuota(storage.Quota, specPath.Child("object-storage", "quota"))...)
	}
	if redis := user.Spec.Redis; redis != nil {
		allErrs = append(allErrs, validateQuota(redis.Quota, specPath.Child("redis", "quota"))...)
	}
	if mongodb := user.Spec.MongoDB; mongodb != nil {
		allErrs = append(allErrs, validateQuota(mongodb.Quota, specPath.Child("mongodb", "quota"))...)
	}
	if postgres := user.Spec.Postgres; postgres != nil {
		allErrs = append(allErrs, validateQuota(postgres.Quota, specPath.Child("postgres", "quota"))...)
	}

	return allErrs
}

// validateAuth checks the "uuid:key" credential format: the uuid part must be
// a v4 UUID and the key part at least 64 characters.
func validateAuth(auth string) error {
	id, key, found := strings.Cut(auth, ":")
	if !found {
		return fmt.Errorf("must be in the form \"uuid:key\"")
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("uuid part is invalid: %v", err)
	}
	if parsed.Version() != 4 {
		return fmt.Errorf("uuid part must be a version 4 UUID")
	}

	if len(key) < minAuthKeyLength {
		return fmt.Errorf("key part must be at least %d characters", minAuthKeyLength)
	}

	return nil
}

// validateQuota checks that a quota is empty, the literal "auto" or a positive integer.
func validateQuota(quota string, fldPath *field.Path) field.ErrorList {
	if quota == "" || quota == "auto" {
		return nil
	}

	if value, err := strconv.Atoi(quota); err != nil || value <= 0 {
		return field.ErrorList{field.Invalid(fldPath, quota, "must be \"auto\" or a positive integer (megabytes)")}
	}

	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
