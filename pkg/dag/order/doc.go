// Package order computes build order and dependency cycles for a workspace
// [dag.Graph].
//
// # Layers
//
// [Sort] groups packages into layers using a Kahn-style traversal that puts
// dependencies first. Layer 0 holds packages with no workspace dependencies;
// every later layer holds packages whose dependencies all appear in earlier
// layers. Packages within one layer do not depend on each other, so a build
// tool may process a whole layer concurrently:
//
//	res := order.Sort(g)
//	for i, layer := range res.Layers {
//	    fmt.Println(i, layer) // build every package of layer i in parallel
//	}
//
// Each layer is sorted lexicographically and [Result.Sorted] is simply the
// concatenation of all layers.
//
// # Cycles
//
// Dependency cycles are reported, never fatal. Packages that cannot be placed
// are split into two groups:
//
//   - [Result.Circular]: cycles found among the unplaced packages; every
//     package lying on some cycle appears in at least one of them
//   - [Result.Blocked]: unplaced packages that are not on a cycle themselves
//     but depend, directly or transitively, on one
//
// [FindCycles] runs the same detection over a whole graph. It uses a
// depth-first search with a single shared recursion stack, so the cost is
// linear in the size of the graph. It does not enumerate every elementary
// cycle: it reports one cycle per back edge, plus a shortest witness cycle for
// any cyclic package the search did not already cover.
//
// # Scoped orders
//
// [SortFrom] orders only a package and what it depends on. [SortImpact] orders
// a package together with everything that depends on it, which is the set a
// pipeline must rebuild after that package changes.
package order
