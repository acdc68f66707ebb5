package dag

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

// Record is a raw package descriptor as supplied by a record source.
//
// Name is required and must be unique across the workspace. Dependency names
// that do not match any workspace package are external references and never
// become edges.
type Record struct {
	Name            string   `json:"name"`
	Directory       string   `json:"directory"`
	Dependencies    []string `json:"dependencies,omitempty"`
	DevDependencies []string `json:"devDependencies,omitempty"`
}

// DiagnosticKind classifies a non-fatal problem found while building a graph
// or reading records.
type DiagnosticKind string

const (
	// DiagnosticSelfDependency marks a package that lists itself as a
	// dependency. The edge is dropped.
	DiagnosticSelfDependency DiagnosticKind = "self-dependency"
	// DiagnosticMalformedRecord marks a record that is missing required
	// fields. The record is excluded.
	DiagnosticMalformedRecord DiagnosticKind = "malformed-record"
	// DiagnosticUnreadableRecord marks a package directory whose metadata
	// could not be read. Emitted by record sources, never by [Build].
	DiagnosticUnreadableRecord DiagnosticKind = "unreadable-record"
)

// Diagnostic describes a record or edge that was excluded from a graph
// without failing the build.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	Package   string         `json:"package,omitempty"`
	Directory string         `json:"directory,omitempty"`
	Message   string         `json:"message"`
}

// String formats the diagnostic for logs.
func (d Diagnostic) String() string {
	subject := d.Package
	if subject == "" {
		subject = d.Directory
	}
	if subject == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Kind, subject, d.Message)
}

// Build constructs an immutable dependency graph from raw records.
//
// Construction runs in two phases. The first collects every valid package
// name so that declared dependencies can be classified as workspace-internal
// or external. The second adds a forward edge for each internal dependency
// and, once all forward edges exist, derives the reverse (dependent) edges by
// inverting each edge exactly once.
//
// Records with a missing name (empty, blank or containing control
// characters) are excluded and reported through
// [Graph.Diagnostics]; so are self-dependencies, whose edge is dropped.
// Two records sharing a name abort the build with an error wrapping
// [ErrDuplicateIdentity] and carrying code DUPLICATE_IDENTITY; no partial
// graph is returned.
//
// Build is deterministic: identical input yields structurally identical
// graphs regardless of record order.
func Build(records []Record) (*Graph, error) {
	g := &Graph{packages: make(map[string]*Package, len(records))}

	// Phase 1: known names.
	for _, r := range records {
		if err := apperrors.ValidateRecordName(r.Name); err != nil {
			g.diagnostics = append(g.diagnostics, Diagnostic{
				Kind:      DiagnosticMalformedRecord,
				Package:   r.Name,
				Directory: r.Directory,
				Message:   apperrors.UserMessage(err),
			})
			continue
		}
		if prev, exists := g.packages[r.Name]; exists {
			return nil, apperrors.Wrap(apperrors.ErrCodeDuplicateIdentity, ErrDuplicateIdentity,
				"package %q is declared in both %s and %s", r.Name, displayDir(prev.dir), displayDir(r.Directory))
		}
		g.packages[r.Name] = &Package{name: r.Name, dir: r.Directory}
		g.names = append(g.names, r.Name)
	}
	slices.Sort(g.names)

	// Phase 2: forward edges.
	for _, r := range records {
		p, ok := g.packages[r.Name]
		if !ok {
			continue
		}
		runtime := g.internal(p, r.Dependencies)
		dev := g.internal(p, r.DevDependencies)
		p.deps = union(runtime, dev)
		for _, d := range dev {
			if _, declared := slices.BinarySearch(runtime, d); !declared {
				p.devDeps = append(p.devDeps, d)
			}
		}
	}

	// Reverse edges, derived once. Iterating names and deps in sorted order
	// leaves every dependents slice sorted.
	for _, name := range g.names {
		for _, dep := range g.packages[name].deps {
			target := g.packages[dep]
			target.dependents = append(target.dependents, name)
		}
	}

	slices.SortFunc(g.diagnostics, compareDiagnostics)
	return g, nil
}

// internal filters declared dependency names down to workspace packages,
// dropping duplicates and recording self-references.
func (g *Graph) internal(p *Package, declared []string) []string {
	var out []string
	for _, name := range declared {
		if _, ok := g.packages[name]; !ok {
			continue
		}
		if name == p.name {
			d := Diagnostic{
				Kind:      DiagnosticSelfDependency,
				Package:   p.name,
				Directory: p.dir,
				Message:   "package lists itself as a dependency; edge dropped",
			}
			if !slices.Contains(g.diagnostics, d) {
				g.diagnostics = append(g.diagnostics, d)
			}
			continue
		}
		out = append(out, name)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}

func compareDiagnostics(a, b Diagnostic) int {
	if c := strings.Compare(string(a.Kind), string(b.Kind)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Package, b.Package); c != 0 {
		return c
	}
	if c := strings.Compare(a.Directory, b.Directory); c != 0 {
		return c
	}
	return strings.Compare(a.Message, b.Message)
}

func displayDir(dir string) string {
	if dir == "" {
		return "<unknown directory>"
	}
	return dir
}
