package render

import (
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag/order"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Highlight lists packages drawn with a filled background.
	Highlight []string

	// Root is drawn with a bold outline. Empty means no root.
	Root string

	// Cycles lists dependency cycles whose edges are drawn in red.
	Cycles []order.Cycle

	// HideDev omits development-only dependency edges.
	HideDev bool
}

const (
	highlightColor = "#fde68a"
	cycleColor     = "#dc2626"
)

// DOT writes g to w as Graphviz DOT source.
func DOT(w io.Writer, g *dag.Graph, opts Options) error {
	dg, err := toGraph(g, opts)
	if err != nil {
		return err
	}
	return draw.DOT(dg, w,
		draw.GraphAttribute("rankdir", "TB"),
		draw.GraphAttribute("bgcolor", "transparent"),
		draw.GraphAttribute("ranksep", "0.5"),
		draw.GraphAttribute("nodesep", "0.3"),
	)
}

func toGraph(g *dag.Graph, opts Options) (graph.Graph[string, string], error) {
	highlight := make(map[string]bool, len(opts.Highlight))
	for _, n := range opts.Highlight {
		highlight[n] = true
	}
	onCycle := cycleEdges(opts.Cycles)

	dg := graph.New(graph.StringHash, graph.Directed())
	for _, name := range g.Names() {
		if err := dg.AddVertex(name, nodeAttrs(name, highlight[name], name == opts.Root)...); err != nil {
			return nil, fmt.Errorf("add package %s: %w", name, err)
		}
	}
	for _, e := range g.Edges() {
		if e.Dev && opts.HideDev {
			continue
		}
		if err := dg.AddEdge(e.From, e.To, edgeAttrs(e, onCycle[[2]string{e.From, e.To}])...); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	return dg, nil
}

func nodeAttrs(name string, highlighted, root bool) []func(*graph.VertexProperties) {
	attrs := []func(*graph.VertexProperties){
		graph.VertexAttribute("label", name),
		graph.VertexAttribute("shape", "box"),
		graph.VertexAttribute("style", "rounded,filled"),
		graph.VertexAttribute("fillcolor", "white"),
	}
	if highlighted {
		attrs = append(attrs, graph.VertexAttribute("fillcolor", highlightColor))
	}
	if root {
		attrs = append(attrs, graph.VertexAttribute("penwidth", "3"))
	}
	return attrs
}

func edgeAttrs(e dag.Edge, onCycle bool) []func(*graph.EdgeProperties) {
	var attrs []func(*graph.EdgeProperties)
	if e.Dev {
		attrs = append(attrs, graph.EdgeAttribute("style", "dashed"))
	}
	if onCycle {
		attrs = append(attrs,
			graph.EdgeAttribute("color", cycleColor),
			graph.EdgeAttribute("penwidth", "2"),
		)
	}
	return attrs
}

func cycleEdges(cycles []order.Cycle) map[[2]string]bool {
	edges := make(map[[2]string]bool)
	for _, c := range cycles {
		for i := 0; i+1 < len(c); i++ {
			edges[[2]string{c[i], c[i+1]}] = true
		}
	}
	return edges
}
