package dag

import "slices"

// DirectDependents returns the sorted names of packages that declare name as
// a dependency. The returned slice is a copy.
func (g *Graph) DirectDependents(name string) ([]string, error) {
	if !g.Has(name) {
		return nil, notFound(name)
	}
	return slices.Clone(g.dependents(name)), nil
}

// DirectDependencies returns the sorted names of workspace packages that name
// declares as dependencies. The returned slice is a copy.
func (g *Graph) DirectDependencies(name string) ([]string, error) {
	if !g.Has(name) {
		return nil, notFound(name)
	}
	return slices.Clone(g.deps(name)), nil
}

// ImpactSet returns every package that depends on name directly or
// transitively: the set that needs re-validation when name changes.
//
// The traversal follows reverse edges with a visited set, so it terminates on
// cyclic graphs. name itself is never part of the result, even when it sits
// on a cycle among its own dependents.
func (g *Graph) ImpactSet(name string) ([]string, error) {
	if !g.Has(name) {
		return nil, notFound(name)
	}
	return slices.DeleteFunc(g.reach(name, g.dependents), func(n string) bool {
		return n == name
	}), nil
}
