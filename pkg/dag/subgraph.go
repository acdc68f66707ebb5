package dag

import (
	"slices"

	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
)

// Subgraph returns the graph induced by root and every package it depends on,
// directly or transitively. Only dependency edges are followed; packages that
// merely depend on root are left out.
//
// The result is a new independent Graph and shares no state with g. It carries
// no diagnostics. An unknown root returns an error wrapping
// [ErrPackageNotFound] with code PACKAGE_NOT_FOUND.
func (g *Graph) Subgraph(root string) (*Graph, error) {
	closure, err := g.Closure(root)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(closure, root) {
		closure = append(closure, root)
	}
	return g.Induced(closure), nil
}

// Closure returns the sorted names of every package root depends on,
// directly or transitively, excluding root itself unless it lies on a
// dependency cycle through which it reaches itself.
func (g *Graph) Closure(root string) ([]string, error) {
	if !g.Has(root) {
		return nil, notFound(root)
	}
	return g.reach(root, g.deps), nil
}

// Induced returns the graph restricted to the given names: every listed
// package that exists in g, and every edge of g whose endpoints are both
// listed. Unknown names are ignored.
func (g *Graph) Induced(names []string) *Graph {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		if g.Has(n) {
			keep[n] = true
		}
	}

	sub := &Graph{packages: make(map[string]*Package, len(keep))}
	for _, name := range g.names {
		if !keep[name] {
			continue
		}
		src := g.packages[name]
		sub.packages[name] = &Package{
			name:       name,
			dir:        src.dir,
			deps:       filter(src.deps, keep),
			devDeps:    filter(src.devDeps, keep),
			dependents: filter(src.dependents, keep),
		}
		sub.names = append(sub.names, name)
	}
	return sub
}

// reach walks next breadth-first from start and returns every reached name
// in sorted order. start is included only when a walk returns to it.
func (g *Graph) reach(start string, next func(string) []string) []string {
	visited := map[string]bool{}
	queue := slices.Clone(next(start))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, n := range next(cur) {
			if !visited[n] {
				queue = append(queue, n)
			}
		}
	}

	out := make([]string, 0, len(visited))
	for name := range visited {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func filter(names []string, keep map[string]bool) []string {
	var out []string
	for _, n := range names {
		if keep[n] {
			out = append(out, n)
		}
	}
	return out
}

func notFound(name string) error {
	return apperrors.Wrap(apperrors.ErrCodePackageNotFound, ErrPackageNotFound,
		"package %q is not part of the workspace", name)
}
