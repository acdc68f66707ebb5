// Package pipeline runs workspace graph queries with caching and
// instrumentation.
//
// The graph engine in [dag] and [order] is pure: it performs no I/O, keeps
// no state between calls and never consults a cache. This package is the
// layer around it that the CLI (and any other front end) shares:
//
//  1. Load: read package records from a [source.Source] and build the graph
//  2. Query: order, cycles, dependents, impact and impact order
//  3. Render: export the graph as JSON, DOT or SVG
//
// Query results are serialized as JSON and cached under the fingerprint of
// the graph they were computed from. A workspace edit changes the
// fingerprint, so a cached answer can never be served for a different graph.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	ws, err := runner.Load(ctx, source.Directories{Dirs: dirs})
//	if err != nil {
//	    return err
//	}
//	res, hit, err := runner.Order(ctx, ws.Graph, "")
//
// Every method emits events through [observability.Pipeline] and
// [observability.Cache].
//
// [dag]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag
// [order]: github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag/order
package pipeline

import (
	"fmt"
	"time"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

// Query names, used for cache keys, hooks and log fields.
const (
	QueryOrder       = "order"
	QueryCycles      = "cycles"
	QueryDependents  = "dependents"
	QueryImpact      = "impact"
	QueryImpactOrder = "impact-order"
	QueryRender      = "render"
)

// Format constants for graph exports.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported export formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// Workspace is a loaded and built workspace snapshot.
type Workspace struct {
	// Graph is the built dependency graph.
	Graph *dag.Graph

	// Diagnostics combines the source's diagnostics (unreadable
	// directories) with the graph's own (malformed records, self
	// dependencies).
	Diagnostics []dag.Diagnostic

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains load statistics.
type Stats struct {
	Records   int
	Packages  int
	Edges     int
	LoadTime  time.Duration
	BuildTime time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("%d packages, %d edges (load %s, build %s)",
		s.Packages, s.Edges, s.LoadTime.Round(time.Millisecond), s.BuildTime.Round(time.Millisecond))
}
