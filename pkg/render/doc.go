// Package render draws workspace dependency graphs as node-link diagrams.
//
// # Overview
//
// [DOT] converts a [dag.Graph] into Graphviz DOT source. Each package becomes
// a box and each dependency edge an arrow from the dependent package to the
// package it depends on. [SVG] lays the DOT source out with Graphviz and
// returns the resulting image.
//
//	var buf bytes.Buffer
//	err := render.DOT(&buf, g, render.Options{})
//	svg, err := render.SVG(ctx, buf.Bytes())
//
// # Options
//
// [Options] controls the presentation only; the structure of the graph is
// never altered:
//
//   - Highlight fills the named packages, e.g. the impact set of a change
//   - Root marks the package a query started from
//   - Cycles colours every edge lying on one of the given cycles
//   - HideDev omits development-only edges
//
// # Dependencies
//
// DOT emission uses [github.com/dominikbraun/graph/draw]. SVG rendering uses
// [github.com/goccy/go-graphviz], which runs Graphviz in-process.
//
// [dag.Graph]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag.Graph
package render
