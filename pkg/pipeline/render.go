package pipeline

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/graph"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/render"
)

// Render exports the workspace graph in format. JSON output includes the
// workspace diagnostics and ignores opts; DOT and SVG output apply opts. The
// boolean reports a cache hit.
//
// DOT and SVG bytes are cached like query results. JSON is always encoded
// afresh because source diagnostics are not part of the graph fingerprint.
func (r *Runner) Render(ctx context.Context, ws *Workspace, format string, opts render.Options) ([]byte, bool, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, false, err
	}
	if format == FormatJSON {
		data, err := renderFormat(ctx, ws, format, opts)
		return data, false, err
	}
	return cached(ctx, r, ws.Graph, QueryRender, renderKeyArgs(format, opts), func() ([]byte, error) {
		return renderFormat(ctx, ws, format, opts)
	})
}

func renderFormat(ctx context.Context, ws *Workspace, format string, opts render.Options) ([]byte, error) {
	var buf bytes.Buffer
	if format == FormatJSON {
		gj := graph.FromDAG(ws.Graph)
		if len(ws.Diagnostics) > 0 {
			gj.Diagnostics = ws.Diagnostics
		}
		if err := graph.EncodeGraph(gj, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	if err := render.DOT(&buf, ws.Graph, opts); err != nil {
		return nil, err
	}
	if format == FormatDOT {
		return buf.Bytes(), nil
	}
	return render.SVG(ctx, buf.Bytes())
}

func renderKeyArgs(format string, opts render.Options) []string {
	args := []string{
		format,
		opts.Root,
		strings.Join(opts.Highlight, ","),
		strconv.FormatBool(opts.HideDev),
	}
	for _, c := range opts.Cycles {
		args = append(args, c.String())
	}
	return args
}
