package dag

import (
	"errors"
	"slices"
)

var (
	// ErrDuplicateIdentity is the cause of the error returned by [Build] when
	// two records declare the same package name. The second record never
	// silently replaces the first.
	ErrDuplicateIdentity = errors.New("duplicate package name")

	// ErrPackageNotFound is the cause of the error returned by queries whose
	// root or subject package is absent from the graph.
	ErrPackageNotFound = errors.New("package not found")
)

// Package is a workspace package: one node of the dependency graph.
//
// A Package is immutable once its [Graph] has been built. Every accessor
// returns a fresh copy so callers can never alter the graph through it.
type Package struct {
	name       string
	dir        string
	deps       []string // sorted, workspace-internal, runtime ∪ dev
	devDeps    []string // sorted subset of deps declared only as dev dependencies
	dependents []string // sorted reverse edges
}

// Name returns the package name taken from its metadata.
func (p *Package) Name() string { return p.name }

// Dir returns the directory the package record came from.
func (p *Package) Dir() string { return p.dir }

// Deps returns the names of workspace packages this package depends on,
// runtime and dev combined, in lexicographic order.
func (p *Package) Deps() []string { return slices.Clone(p.deps) }

// DevDeps returns the subset of [Package.Deps] that was declared only under
// dev dependencies.
func (p *Package) DevDeps() []string { return slices.Clone(p.devDeps) }

// Dependents returns the names of workspace packages that declare this
// package as a dependency, in lexicographic order.
func (p *Package) Dependents() []string { return slices.Clone(p.dependents) }

// DependsOn reports whether name is one of the package's workspace dependencies.
func (p *Package) DependsOn(name string) bool {
	_, ok := slices.BinarySearch(p.deps, name)
	return ok
}

// IsDevDep reports whether name is a dev-only workspace dependency.
func (p *Package) IsDevDep(name string) bool {
	_, ok := slices.BinarySearch(p.devDeps, name)
	return ok
}

// Edge is a directed dependency: From depends on To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Dev  bool   `json:"dev,omitempty"` // declared only as a dev dependency
}

// Graph is an immutable dependency graph over the packages of one workspace
// snapshot.
//
// The zero value is an empty graph. Use [Build] to construct a populated one.
// A Graph is never mutated after construction, so any number of goroutines may
// query it concurrently. A refreshed view of the workspace requires building a
// new Graph.
type Graph struct {
	packages    map[string]*Package
	names       []string // sorted
	diagnostics []Diagnostic
}

// Package returns the package with the given name and true, or nil and false
// if the name is not part of the workspace.
func (g *Graph) Package(name string) (*Package, bool) {
	p, ok := g.packages[name]
	return p, ok
}

// Has reports whether name is a workspace package of this graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.packages[name]
	return ok
}

// Names returns all package names in lexicographic order.
func (g *Graph) Names() []string { return slices.Clone(g.names) }

// Len returns the number of packages in the graph.
func (g *Graph) Len() int { return len(g.names) }

// Edges returns every dependency edge, ordered by From then To.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, name := range g.names {
		p := g.packages[name]
		for _, dep := range p.deps {
			edges = append(edges, Edge{From: name, To: dep, Dev: p.IsDevDep(dep)})
		}
	}
	return edges
}

// EdgeCount returns the number of dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, p := range g.packages {
		n += len(p.deps)
	}
	return n
}

// Diagnostics returns the non-fatal problems recorded while building the
// graph: excluded malformed records and dropped self-dependencies.
func (g *Graph) Diagnostics() []Diagnostic { return slices.Clone(g.diagnostics) }

// deps returns the internal dependency slice for name without copying.
// Callers inside the package must treat it as read-only.
func (g *Graph) deps(name string) []string {
	if p, ok := g.packages[name]; ok {
		return p.deps
	}
	return nil
}

// dependents returns the internal dependents slice for name without copying.
func (g *Graph) dependents(name string) []string {
	if p, ok := g.packages[name]; ok {
		return p.dependents
	}
	return nil
}
