// Package graph provides the serialization format for workspace dependency
// graphs.
//
// This package defines the canonical wire format for wsgraph graph data, used
// for snapshot files, cached results and interoperability with other tools.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [Graph], [Package], [Edge]: Serialization types (this package)
//   - pkg/dag.Graph: Immutable in-memory graph
//
// Use [FromDAG] and [ToDAG] to convert between them. [ToDAG] rebuilds the
// in-memory graph with dag.Build, so a snapshot is validated exactly like
// freshly read manifests.
//
// # Graph Serialization
//
// Graphs use a package-list JSON format with explicit edges:
//
//	{
//	  "fingerprint": "5c2f0e1d9a7b3c44",
//	  "packages": [
//	    {"name": "app", "directory": "apps/app", "dependencies": ["lib"]},
//	    {"name": "lib", "directory": "packages/lib", "dependents": ["app"]}
//	  ],
//	  "edges": [{"from": "app", "to": "lib"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("workspace.json") // File → dag.Graph
//	graph.WriteGraphFile(g, "workspace.json")     // dag.Graph → File
//	data, _ := graph.MarshalGraph(g)              // dag.Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)       // []byte → Graph
//
// # Concurrency
//
// All functions are safe for concurrent use.
package graph
