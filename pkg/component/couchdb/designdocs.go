// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package couchdb

// designDocuments is the catalog of design documents the function runtime
// expects, keyed by database. They are upserted on every initialization so a
// version upgrade refreshes the views in place.
var designDocuments = map[string][]map[string]any{
	"subjects": {
		{
			"_id": "_design/subjects",
			"views": map[string]any{
				"identities": map[string]any{
					"map": `function (doc) {
  if (doc.uuid && doc.key && !doc.blocked) {
    var v = {_id: doc._id, namespace: doc.subject, uuid: doc.uuid, key: doc.key};
    emit([doc.subject], v);
    emit([doc.uuid, doc.key], v);
  }
  if (doc.namespaces && !doc.blocked) {
    doc.namespaces.forEach(function(namespace) {
      var v = {_id: namespace.name, namespace: namespace.name, uuid: namespace.uuid, key: namespace.key};
      emit([namespace.name], v);
      emit([namespace.uuid, namespace.key], v);
    });
  }
}`,
				},
			},
			"language": "javascript",
			"indexes":  map[string]any{},
		},
		{
			"_id": "_design/namespaceThrottlings",
			"views": map[string]any{
				"blockedNamespaces": map[string]any{
					"map": `function (doc) {
  if (doc._id.indexOf("/limits") >= 0) {
    if (doc.concurrentInvocations === 0 || doc.invocationsPerMinute === 0) {
      var namespace = doc._id.replace("/limits", "");
      emit(namespace, 1);
    }
  } else if (doc.subject && doc.namespaces && doc.blocked) {
    doc.namespaces.forEach(function(namespace) {
      emit(namespace.name, 1);
    });
  }
}`,
				},
			},
			"language": "javascript",
		},
	},
	"whisks": {
		{
			"_id": "_design/whisks.v2.1.0",
			"views": map[string]any{
				"actions":  entityView("action"),
				"packages": entityView("package"),
				"rules":    entityView("rule"),
				"triggers": entityView("trigger"),
			},
			"language": "javascript",
		},
	},
	"activations": {
		{
			"_id": "_design/activations",
			"views": map[string]any{
				"byDate": map[string]any{
					"map": `function (doc) {
  if (doc.start !== undefined) {
    emit(doc.start, doc._id);
  }
}`,
				},
			},
			"language": "javascript",
		},
		{
			"_id": "_design/logCleanup",
			"views": map[string]any{
				"byDateWithLogs": map[string]any{
					"map": `function (doc) {
  if (doc.start !== undefined && doc.logs && doc.logs.length > 0) {
    emit(doc.start, doc._id);
  }
}`,
				},
			},
			"language": "javascript",
		},
	},
}

// entityView emits one function runtime entity type by namespace and update
// time, the shape the controller's list operations page through.
func entityView(entityType string) map[string]any {
	return map[string]any{
		"map": `function (doc) {
  var isEntity = function (doc) { return doc.entityType === "` + entityType + `"; };
  if (isEntity(doc)) {
    var value = {
      _id: doc._id,
      name: doc.name,
      version: doc.version,
      publish: doc.publish,
      annotations: doc.annotations,
      updated: doc.updated
    };
    emit([doc.namespace, doc.updated], value);
  }
}`,
	}
}
