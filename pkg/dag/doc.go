// Package dag provides the immutable dependency graph over the packages of a
// monorepo workspace.
//
// # Overview
//
// A workspace is a set of packages, each declaring runtime and dev
// dependencies by name. Only dependencies naming another workspace package
// become edges; everything else is an external reference and is ignored.
// This package turns raw [Record] values into a [Graph] that answers
// structural questions about the workspace without further I/O.
//
// # Building
//
// [Build] validates the records and derives forward and reverse edges in one
// pass:
//
//	g, err := dag.Build([]dag.Record{
//	    {Name: "app", Directory: "apps/app", Dependencies: []string{"lib"}},
//	    {Name: "lib", Directory: "packages/lib"},
//	})
//
// Duplicate package names are a hard error. Malformed records and
// self-dependencies are excluded and reported through [Graph.Diagnostics]
// instead, so one broken manifest never hides the rest of the workspace.
//
// # Queries
//
// Forward edges are available through [Package.Deps]; reverse edges through
// [Package.Dependents], which is always the exact inverse of the forward
// relation. Higher-level queries include:
//
//   - [Graph.Subgraph]: a package plus everything it transitively depends on
//   - [Graph.DirectDependents]: packages that declare a given package
//   - [Graph.ImpactSet]: every package that transitively depends on a given one
//
// Build order and cycle detection live in the [order] subpackage.
//
// # Determinism
//
// All slices returned by this package are sorted lexicographically and are
// fresh copies. The same records always produce the same graph, and
// [Graph.Fingerprint] identifies that structure for cache keys.
//
// # Concurrency
//
// A Graph is never modified after [Build] returns, so it is safe for use by
// multiple goroutines without synchronization.
//
// [order]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag/order
package dag
