package graph

import (
	"encoding/json"
	"slices"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

// FormatVersion is the version of the serialization format written by this
// package.
const FormatVersion = 1

// =============================================================================
// Graph - Workspace Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for workspace dependency graphs.
// Used for snapshots, caching, and cross-tool compatibility.
//
// Packages and edges are sorted, so the same workspace always serializes to
// identical bytes.
type Graph struct {
	Version     int              `json:"version"`
	Fingerprint string           `json:"fingerprint,omitempty"`
	Packages    []Package        `json:"packages"`
	Edges       []Edge           `json:"edges"`
	Diagnostics []dag.Diagnostic `json:"diagnostics,omitempty"`
}

// =============================================================================
// Package - Serialized Node
// =============================================================================

// Package is a serialized workspace package.
//
// Dependencies and DevDependencies are stored exactly as [dag.Record]
// expects them: a dev-only dependency appears in DevDependencies alone.
// Dependents is informational and ignored when a graph is read back.
type Package struct {
	Name            string   `json:"name"`
	Directory       string   `json:"directory,omitempty"`
	Dependencies    []string `json:"dependencies,omitempty"`
	DevDependencies []string `json:"devDependencies,omitempty"`
	Dependents      []string `json:"dependents,omitempty"`
}

// =============================================================================
// Edge - Directed Dependency
// =============================================================================

// Edge represents a directed edge: From depends on To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Dev  bool   `json:"dev,omitempty"`
}

// =============================================================================
// dag.Graph ↔ Graph Conversion
// =============================================================================

// FromDAG converts a built graph to its serialization format.
func FromDAG(g *dag.Graph) Graph {
	out := Graph{
		Version:     FormatVersion,
		Fingerprint: g.Fingerprint(),
		Packages:    make([]Package, 0, g.Len()),
		Edges:       make([]Edge, 0, g.EdgeCount()),
		Diagnostics: g.Diagnostics(),
	}

	for _, name := range g.Names() {
		p, _ := g.Package(name)
		out.Packages = append(out.Packages, packageFromDAG(p))
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To, Dev: e.Dev})
	}
	return out
}

// ToDAG rebuilds an in-memory graph from its serialization format.
//
// Packages are passed through [dag.Build], so duplicate names fail exactly as
// they would for manifests. Edges listed in gj.Edges that are not implied by
// the package dependency lists are added as runtime (or dev) dependencies.
func ToDAG(gj Graph) (*dag.Graph, error) {
	if gj.Version > FormatVersion {
		return nil, apperrors.New(apperrors.ErrCodeUnsupported,
			"graph format version %d is newer than supported version %d", gj.Version, FormatVersion)
	}
	return dag.Build(Records(gj))
}

// Records converts the serialized packages back to raw records, folding in
// any edge that the dependency lists do not already declare.
func Records(gj Graph) []dag.Record {
	records := make([]dag.Record, len(gj.Packages))
	index := make(map[string]int, len(gj.Packages))
	for i, p := range gj.Packages {
		records[i] = dag.Record{
			Name:            p.Name,
			Directory:       p.Directory,
			Dependencies:    slices.Clone(p.Dependencies),
			DevDependencies: slices.Clone(p.DevDependencies),
		}
		index[p.Name] = i
	}

	for _, e := range gj.Edges {
		i, ok := index[e.From]
		if !ok {
			continue
		}
		r := &records[i]
		if slices.Contains(r.Dependencies, e.To) || slices.Contains(r.DevDependencies, e.To) {
			continue
		}
		if e.Dev {
			r.DevDependencies = append(r.DevDependencies, e.To)
		} else {
			r.Dependencies = append(r.Dependencies, e.To)
		}
	}
	return records
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode graph")
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// packageFromDAG is the single point of conversion for dag.Package → Package.
func packageFromDAG(p *dag.Package) Package {
	out := Package{
		Name:            p.Name(),
		Directory:       p.Dir(),
		DevDependencies: p.DevDeps(),
		Dependents:      p.Dependents(),
	}
	for _, dep := range p.Deps() {
		if !p.IsDevDep(dep) {
			out.Dependencies = append(out.Dependencies, dep)
		}
	}
	return out
}
