package order

import (
	"slices"
	"strings"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
)

// Cycle is a closed chain of dependency edges. The first package is repeated
// at the end, so [a b a] means a depends on b and b depends on a.
type Cycle []string

// String renders the cycle as "a -> b -> a".
func (c Cycle) String() string { return strings.Join(c, " -> ") }

// Members returns the distinct packages on the cycle in lexicographic order.
func (c Cycle) Members() []string {
	if len(c) == 0 {
		return nil
	}
	out := slices.Clone(c[:len(c)-1])
	slices.Sort(out)
	return slices.Compact(out)
}

// FindCycles reports dependency cycles across the whole graph.
// It is equivalent to FindCyclesIn(g, g.Names()).
func FindCycles(g *dag.Graph) []Cycle {
	return FindCyclesIn(g, g.Names())
}

// FindCyclesIn reports dependency cycles of the subgraph induced by names.
// Names absent from g are ignored, and edges leaving the set are not
// followed.
//
// # Algorithm
//
// Depth-first search visits the names in sorted order and keeps one shared
// recursion stack with an index per on-stack package. An edge to a package
// that is currently on the stack closes a cycle: the stack slice from that
// package to the current one. A separate visited marker ensures every package
// is expanded once, so the search is O(V + E).
//
// A single search can miss a cycle whose edges are all explored from
// different branches. To guarantee that every package lying on a cycle is
// reported, strongly connected components are computed afterwards and each
// cyclic package not yet covered receives its shortest cycle within its
// component.
//
// Results are deterministic: the same graph and names always yield the same
// cycles in the same order. An empty result means the subgraph is acyclic.
func FindCyclesIn(g *dag.Graph, names []string) []Cycle {
	adj := restrict(g, names)
	keys := sortedKeys(adj)

	var (
		cycles  []Cycle
		visited = make(map[string]bool, len(adj))
		index   = make(map[string]int)
		stack   []string
	)

	var visit func(n string)
	visit = func(n string) {
		visited[n] = true
		index[n] = len(stack)
		stack = append(stack, n)

		for _, dep := range adj[n] {
			if i, onStack := index[dep]; onStack {
				c := make(Cycle, 0, len(stack)-i+1)
				c = append(c, stack[i:]...)
				cycles = append(cycles, append(c, dep))
				continue
			}
			if !visited[dep] {
				visit(dep)
			}
		}

		stack = stack[:len(stack)-1]
		delete(index, n)
	}

	for _, n := range keys {
		if !visited[n] {
			visit(n)
		}
	}

	covered := make(map[string]bool)
	for _, c := range cycles {
		for _, n := range c {
			covered[n] = true
		}
	}
	for _, comp := range components(adj, keys) {
		if len(comp) < 2 {
			continue
		}
		in := make(map[string]bool, len(comp))
		for _, n := range comp {
			in[n] = true
		}
		for _, n := range comp {
			if covered[n] {
				continue
			}
			c := shortestCycle(adj, in, n)
			for _, m := range c {
				covered[m] = true
			}
			cycles = append(cycles, c)
		}
	}
	return cycles
}

// restrict builds the adjacency of the subgraph induced by names.
func restrict(g *dag.Graph, names []string) map[string][]string {
	adj := make(map[string][]string, len(names))
	for _, n := range names {
		if g.Has(n) {
			adj[n] = nil
		}
	}
	for n := range adj {
		p, _ := g.Package(n)
		for _, dep := range p.Deps() {
			if _, ok := adj[dep]; ok {
				adj[n] = append(adj[n], dep)
			}
		}
	}
	return adj
}

func sortedKeys(adj map[string][]string) []string {
	keys := make([]string, 0, len(adj))
	for k := range adj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// components returns the strongly connected components of adj using
// Tarjan's algorithm. Members of each component are sorted.
func components(adj map[string][]string, keys []string) [][]string {
	var (
		out     [][]string
		counter int
		index   = make(map[string]int, len(adj))
		low     = make(map[string]int, len(adj))
		onStack = make(map[string]bool)
		stack   []string
	)

	var connect func(n string)
	connect = func(n string) {
		index[n] = counter
		low[n] = counter
		counter++
		stack = append(stack, n)
		onStack[n] = true

		for _, dep := range adj[n] {
			if _, seen := index[dep]; !seen {
				connect(dep)
				low[n] = min(low[n], low[dep])
			} else if onStack[dep] {
				low[n] = min(low[n], index[dep])
			}
		}

		if low[n] != index[n] {
			return
		}
		var comp []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			comp = append(comp, top)
			if top == n {
				break
			}
		}
		slices.Sort(comp)
		out = append(out, comp)
	}

	for _, n := range keys {
		if _, seen := index[n]; !seen {
			connect(n)
		}
	}
	return out
}

// shortestCycle finds a shortest cycle through start using only packages in
// the set in. start must belong to a non-trivial strongly connected component
// contained in in.
func shortestCycle(adj map[string][]string, in map[string]bool, start string) Cycle {
	parent := map[string]string{start: ""}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range adj[cur] {
			if !in[dep] {
				continue
			}
			if dep == start {
				var path []string
				for n := cur; n != start; n = parent[n] {
					path = append(path, n)
				}
				path = append(path, start)
				slices.Reverse(path)
				return append(Cycle(path), start)
			}
			if _, seen := parent[dep]; !seen {
				parent[dep] = cur
				queue = append(queue, dep)
			}
		}
	}
	return nil
}
