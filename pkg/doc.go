// Package pkg provides the libraries behind wsgraph, a workspace dependency
// graph engine.
//
// # Overview
//
// wsgraph reads the packages of a monorepo, builds the graph of internal
// dependencies between them and answers questions about it: in what order
// packages must be built, which packages sit on dependency cycles, and what
// is affected when one package changes. The pkg directory is organized into
// these areas:
//
//  1. [dag] - Graph construction, reverse edges, subgraphs and fingerprints
//  2. [dag/order] - Layered ordering, cycle detection and impact ordering
//  3. [source] - Package records from manifests, snapshots or memory
//  4. [pipeline] - Orchestration (load → build → query) with result caching
//  5. [graph] - JSON serialization of graphs
//  6. [render] - DOT and SVG output
//  7. [cache], [observability], [errors], [buildinfo] - Infrastructure
//
// # Architecture
//
// The typical data flow through wsgraph:
//
//	Package manifests (package.json, Cargo.toml, go.mod, pyproject.toml)
//	         ↓
//	    [source] package (records + diagnostics)
//	         ↓
//	    [dag] package (graph structure)
//	         ↓
//	    [dag/order] package (layers, cycles, impact)
//	         ↓
//	    JSON / DOT / SVG output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
//	    "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag/order"
//	    "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/source"
//	)
//
//	dirs, _ := source.Expand(".", []string{"packages/*"})
//	res, _ := source.Directories{Dirs: dirs}.Load(context.Background())
//	g, _ := dag.Build(res.Records)
//	result := order.Sort(g)
//	for i, layer := range result.Layers {
//	    fmt.Println(i, layer)
//	}
//
// The [pipeline] package wraps the same steps with caching and
// instrumentation, and is what the wsgraph command uses.
//
// [dag]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag
// [dag/order]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag/order
// [source]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/source
// [pipeline]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/pipeline
// [graph]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/graph
// [render]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/render
// [cache]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/cache
// [observability]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/observability
// [errors]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors
// [buildinfo]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/buildinfo
package pkg
