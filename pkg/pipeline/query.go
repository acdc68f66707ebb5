package pipeline

import (
	"context"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag/order"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/observability"
)

// Order layers the whole graph, or only root and its transitive
// dependencies when root is non-empty. The boolean reports a cache hit.
func (r *Runner) Order(ctx context.Context, g *dag.Graph, root string) (order.Result, bool, error) {
	res, hit, err := cached(ctx, r, g, QueryOrder, []string{root}, func() (order.Result, error) {
		if root == "" {
			return order.Sort(g), nil
		}
		return order.SortFrom(g, root)
	})
	if err == nil {
		observability.Pipeline().OnCyclesDetected(ctx, len(res.Circular))
	}
	return res, hit, err
}

// Cycles reports every dependency cycle of g. The result is never nil.
func (r *Runner) Cycles(ctx context.Context, g *dag.Graph) ([]order.Cycle, bool, error) {
	cycles, hit, err := cached(ctx, r, g, QueryCycles, nil, func() ([]order.Cycle, error) {
		cycles := order.FindCycles(g)
		if cycles == nil {
			cycles = []order.Cycle{}
		}
		return cycles, nil
	})
	if err == nil {
		observability.Pipeline().OnCyclesDetected(ctx, len(cycles))
	}
	return cycles, hit, err
}

// Dependents returns the packages that depend on name directly.
func (r *Runner) Dependents(ctx context.Context, g *dag.Graph, name string) ([]string, bool, error) {
	return cached(ctx, r, g, QueryDependents, []string{name}, func() ([]string, error) {
		return nonNil(g.DirectDependents(name))
	})
}

// Impact returns every package that depends on name, directly or
// transitively.
func (r *Runner) Impact(ctx context.Context, g *dag.Graph, name string) ([]string, bool, error) {
	return cached(ctx, r, g, QueryImpact, []string{name}, func() ([]string, error) {
		return nonNil(g.ImpactSet(name))
	})
}

// ImpactOrder layers name together with its impact set: the order in which
// packages must be rebuilt after name changes.
func (r *Runner) ImpactOrder(ctx context.Context, g *dag.Graph, name string) (order.Result, bool, error) {
	res, hit, err := cached(ctx, r, g, QueryImpactOrder, []string{name}, func() (order.Result, error) {
		return order.SortImpact(g, name)
	})
	if err == nil {
		observability.Pipeline().OnCyclesDetected(ctx, len(res.Circular))
	}
	return res, hit, err
}

func nonNil(names []string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
