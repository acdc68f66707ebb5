package order

import (
	"slices"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
)

// Result is the build order of a graph.
//
// All fields are non-nil, so a Result always serializes with empty arrays
// rather than nulls.
type Result struct {
	// Layers groups packages so that every dependency of a package sits in an
	// earlier layer. Each layer is sorted lexicographically.
	Layers [][]string `json:"layers"`

	// Sorted is the concatenation of Layers: one valid build order.
	Sorted []string `json:"sorted"`

	// Circular lists the dependency cycles among packages that could not be
	// placed. Every package lying on a cycle is a member of at least one.
	Circular []Cycle `json:"circular"`

	// Blocked lists, sorted, the packages that could not be placed although
	// they are on no cycle: they depend on a package that is.
	Blocked []string `json:"blocked"`
}

// HasCycles reports whether any dependency cycle prevented a full order.
func (r Result) HasCycles() bool { return len(r.Circular) > 0 }

// LayerOf returns the layer index of name and true, or -1 and false if the
// package was not placed.
func (r Result) LayerOf(name string) (int, bool) {
	for i, layer := range r.Layers {
		if _, ok := slices.BinarySearch(layer, name); ok {
			return i, true
		}
	}
	return -1, false
}

// Sort computes a layered build order for g with dependencies first.
//
// # Algorithm
//
// Sort is a Kahn-style traversal over dependency counts:
//  1. Give every package a counter equal to its number of dependencies
//  2. Packages whose counter is zero form the first layer
//  3. After emitting a layer, decrement the counter of each dependent of
//     its members; those reaching zero form the next layer
//  4. Repeat until a layer comes out empty
//
// Packages left with a non-zero counter cannot be ordered. They are handed
// to [FindCyclesIn] restricted to exactly that set; packages on a reported
// cycle go to [Result.Circular] and the rest to [Result.Blocked]. Neither
// group appears in Layers or Sorted.
//
// # Performance
//
// Time complexity is O(V log V + E), dominated by sorting each layer.
func Sort(g *dag.Graph) Result {
	res := Result{
		Layers:   [][]string{},
		Sorted:   []string{},
		Circular: []Cycle{},
		Blocked:  []string{},
	}

	names := g.Names()
	remaining := make(map[string]int, len(names))
	var layer []string
	for _, n := range names {
		p, _ := g.Package(n)
		remaining[n] = len(p.Deps())
		if remaining[n] == 0 {
			layer = append(layer, n)
		}
	}

	placed := 0
	for len(layer) > 0 {
		slices.Sort(layer)
		res.Layers = append(res.Layers, layer)
		res.Sorted = append(res.Sorted, layer...)
		placed += len(layer)

		var next []string
		for _, n := range layer {
			p, _ := g.Package(n)
			for _, dependent := range p.Dependents() {
				remaining[dependent]--
				if remaining[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		layer = next
	}

	if placed == len(names) {
		return res
	}

	var unresolved []string
	for _, n := range names {
		if remaining[n] > 0 {
			unresolved = append(unresolved, n)
		}
	}
	res.Circular = FindCyclesIn(g, unresolved)

	onCycle := make(map[string]bool)
	for _, c := range res.Circular {
		for _, n := range c {
			onCycle[n] = true
		}
	}
	for _, n := range unresolved {
		if !onCycle[n] {
			res.Blocked = append(res.Blocked, n)
		}
	}
	return res
}

// SortFrom orders root and every package it depends on, ignoring the rest of
// the workspace. An unknown root returns an error wrapping
// [dag.ErrPackageNotFound].
func SortFrom(g *dag.Graph, root string) (Result, error) {
	sub, err := g.Subgraph(root)
	if err != nil {
		return Result{}, err
	}
	return Sort(sub), nil
}

// SortImpact orders name together with every package that depends on it,
// directly or transitively. This is the set to rebuild after name changes;
// name itself comes first unless it sits on a cycle.
func SortImpact(g *dag.Graph, name string) (Result, error) {
	impact, err := g.ImpactSet(name)
	if err != nil {
		return Result{}, err
	}
	return Sort(g.Induced(append(impact, name))), nil
}
