// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package whisk

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	jsonpatch "gomodules.xyz/jsonpatch/v2"

	whiskv1 "github.com/nuvolaris/nuvolaris-operator/pkg/apis/whisk/v1"
	"github.com/nuvolaris/nuvolaris-operator/pkg/component"
)

// ChangeOp tells how a field differs between two platform declarations.
type ChangeOp string

const (
	OpAdd    ChangeOp = "add"
	OpChange ChangeOp = "change"
	OpRemove ChangeOp = "remove"
)

// Change is one field-level difference between two platform declarations.
type Change struct {
	Op   ChangeOp
	Path []string
	Old  any
	New  any
}

// Diff computes the ordered field-level differences between two platform
// declarations. Both specs are compared through their JSON rendering, so the
// paths use the declaration's field names.
func Diff(oldSpec, newSpec *whiskv1.WhiskSpec) ([]Change, error) {
	oldJSON, err := json.Marshal(oldSpec)
	if err != nil {
		return nil, fmt.Errorf("marshalling previous declaration: %w", err)
	}
	newJSON, err := json.Marshal(newSpec)
	if err != nil {
		return nil, fmt.Errorf("marshalling declaration: %w", err)
	}

	ops, err := jsonpatch.CreatePatch(oldJSON, newJSON)
	if err != nil {
		return nil, fmt.Errorf("diffing declarations: %w", err)
	}

	// The patch operations only carry the new value, the old one is looked up
	// in the previous declaration.
	oldTree := map[string]any{}
	if err := json.Unmarshal(oldJSON, &oldTree); err != nil {
		return nil, fmt.Errorf("unmarshalling previous declaration: %w", err)
	}

	changes := make([]Change, 0, len(ops))
	for _, op := range ops {
		path := splitPointer(op.Path)
		change := Change{Path: path}
		switch op.Operation {
		case "add":
			change.Op = OpAdd
			change.New = op.Value
		case "remove":
			change.Op = OpRemove
			change.Old = lookupTree(oldTree, path)
		default:
			change.Op = OpChange
			change.Old = lookupTree(oldTree, path)
			change.New = op.Value
		}
		changes = append(changes, change)
	}

	sort.Slice(changes, func(i, j int) bool {
		return strings.Join(changes[i].Path, "/") < strings.Join(changes[j].Path, "/")
	})
	return changes, nil
}

// splitPointer turns an RFC 6901 pointer into path segments.
func splitPointer(pointer string) []string {
	var path []string
	for _, segment := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		path = append(path, segment)
	}
	return path
}

func lookupTree(tree any, path []string) any {
	current := tree
	for _, segment := range path {
		switch node := current.(type) {
		case map[string]any:
			current = node[segment]
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil
			}
			current = node[index]
		default:
			return nil
		}
	}
	return current
}

// flagComponents maps each component flag to the controllers it drives. The
// api endpoint rides on the function controller flag and the object store
// exposure rides on the object store flag.
var flagComponents = map[string][]string{
	"couchdb":    {"couchdb"},
	"zookeeper":  {"zookeeper"},
	"kafka":      {"kafka"},
	"openwhisk":  {"openwhisk", "endpoint"},
	"invoker":    {"invoker"},
	"redis":      {"redis"},
	"mongodb":    {"mongodb"},
	"minio":      {"minio", "minio-ingresses"},
	"cosi":       {"cosi"},
	"static":     {"static"},
	"postgres":   {"postgres"},
	"etcd":       {"etcd"},
	"milvus":     {"milvus"},
	"registry":   {"registry"},
	"monitoring": {"monitoring"},
	"quota":      {"quota"},
	"tls":        {"issuer"},
	"cron":       {"cron"},
	"preloader":  {"preloader"},
}

// configTrees maps each top-level declaration tree to the components that
// consume it. The function platform limits feed both the controller and the
// invoker, and the pre-seeded namespaces live in the auth database.
var configTrees = map[string][]string{
	"couchdb":    {"couchdb"},
	"zookeeper":  {"zookeeper"},
	"kafka":      {"kafka"},
	"openwhisk":  {"couchdb", "openwhisk"},
	"redis":      {"redis"},
	"minio":      {"minio"},
	"cosi":       {"cosi"},
	"postgres":   {"postgres", "mongodb"},
	"etcd":       {"etcd"},
	"milvus":     {"milvus"},
	"registry":   {"registry"},
	"monitoring": {"monitoring"},
	"quota":      {"quota"},
	"tls":        {"issuer"},
	"configs":    {"openwhisk", "invoker"},
}

// exposedComponents are re-reconciled whenever the cluster-wide host,
// port, protocol or TLS settings move.
var exposedComponents = []string{"endpoint", "static", "minio-ingresses"}

// flagValue reads one component flag off the declaration.
func flagValue(components *whiskv1.ComponentsSpec, flag string) bool {
	switch flag {
	case "couchdb":
		return components.CouchDB
	case "zookeeper":
		return components.Zookeeper
	case "kafka":
		return components.Kafka
	case "openwhisk":
		return components.OpenWhisk
	case "invoker":
		return components.Invoker
	case "redis":
		return components.Redis
	case "mongodb":
		return components.MongoDB
	case "minio":
		return components.Minio
	case "cosi":
		return components.Cosi
	case "static":
		return components.Static
	case "postgres":
		return components.Postgres
	case "etcd":
		return components.Etcd
	case "milvus":
		return components.Milvus
	case "registry":
		return components.Registry
	case "monitoring":
		return components.Monitoring
	case "quota":
		return components.Quota
	case "tls":
		return components.TLS
	case "cron":
		return components.Cron
	case "preloader":
		return components.Preloader
	default:
		return false
	}
}

// componentFlag maps every controller name back to the flag that drives it.
var componentFlag = func() map[string]string {
	out := map[string]string{}
	for flag, names := range flagComponents {
		for _, name := range names {
			out[name] = flag
		}
	}
	return out
}()

// ComponentEnabled reports whether the controller's driving flag is on.
func ComponentEnabled(components *whiskv1.ComponentsSpec, name string) bool {
	flag, ok := componentFlag[name]
	return ok && flagValue(components, flag)
}

// EnabledComponents lists the controllers switched on by the declaration, in
// no particular order. The registry imposes the dependency order.
func EnabledComponents(components *whiskv1.ComponentsSpec) []string {
	var names []string
	for flag, mapped := range flagComponents {
		if flagValue(components, flag) {
			names = append(names, mapped...)
		}
	}
	sort.Strings(names)
	return names
}

// Classify folds field changes into per-component actions. The enabled
// predicate answers against the NEW declaration: updates are only issued for
// components that stay on. When several changes collide on one component,
// delete wins over create, and create wins over update.
func Classify(changes []Change, enabled func(name string) bool) map[string]component.Action {
	plan := map[string]component.Action{}

	merge := func(name string, action component.Action) {
		current, ok := plan[name]
		if !ok {
			plan[name] = action
			return
		}
		if action == component.ActionDelete || current == component.ActionDelete {
			plan[name] = component.ActionDelete
			return
		}
		if action == component.ActionCreate || current == component.ActionCreate {
			plan[name] = component.ActionCreate
		}
	}

	update := func(names ...string) {
		for _, name := range names {
			if enabled(name) {
				merge(name, component.ActionUpdate)
			}
		}
	}

	for _, change := range changes {
		if len(change.Path) < 1 {
			continue
		}

		switch change.Path[0] {
		case "components":
			if len(change.Path) < 2 {
				continue
			}
			was, _ := change.Old.(bool)
			is, _ := change.New.(bool)
			for _, name := range flagComponents[change.Path[1]] {
				switch {
				case is && !was:
					merge(name, component.ActionCreate)
				case was && !is:
					merge(name, component.ActionDelete)
				}
			}
			// The TLS flag changes every exposed URL.
			if change.Path[1] == "tls" && was != is {
				update(exposedComponents...)
			}

		case "nuvolaris":
			if len(change.Path) < 2 {
				continue
			}
			switch change.Path[1] {
			case "apihost", "apiport", "protocol":
				update(exposedComponents...)
			}

		case "minio":
			if len(change.Path) >= 2 && change.Path[1] == "ingress" {
				update("minio-ingresses")
				continue
			}
			update(configTrees["minio"]...)

		default:
			update(configTrees[change.Path[0]]...)
		}
	}

	return plan
}
