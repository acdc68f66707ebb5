package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/pipeline"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/render"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	format  string // json, dot or svg
	output  string // output file; empty writes to stdout
	root    string // restrict the export to this package and its dependencies
	impact  string // highlight the impact set of this package
	hideDev bool   // omit dev-only edges from diagrams
}

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{format: pipeline.FormatJSON}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dependency graph as JSON, DOT or SVG",
		Long: `Export the workspace dependency graph.

The JSON format can be read back with --snapshot. DOT and SVG render a
node-link diagram: dependency cycles are drawn in red and, with --impact, the
packages affected by a change are highlighted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runExport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json (default), dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.root, "from", "", "export only this package and its dependencies")
	cmd.Flags().StringVar(&opts.impact, "impact", "", "highlight packages affected by a change to this package")
	cmd.Flags().BoolVar(&opts.hideDev, "hide-dev", false, "omit development-only edges from diagrams")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, opts exportOpts) error {
	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.runner.Close()

	ws := s.ws
	if opts.root != "" {
		sub, err := ws.Graph.Subgraph(opts.root)
		if err != nil {
			return err
		}
		ws = &pipeline.Workspace{Graph: sub, Diagnostics: ws.Diagnostics, Stats: ws.Stats}
	}

	ropts := render.Options{Root: opts.root, HideDev: opts.hideDev}
	if opts.format != pipeline.FormatJSON {
		cycles, _, err := s.runner.Cycles(ctx, ws.Graph)
		if err != nil {
			return err
		}
		ropts.Cycles = cycles
	}
	if opts.impact != "" {
		affected, _, err := s.runner.Impact(ctx, ws.Graph, opts.impact)
		if err != nil {
			return err
		}
		ropts.Root = opts.impact
		ropts.Highlight = affected
	}

	data, hit, err := s.runner.Render(ctx, ws, opts.format, ropts)
	if err != nil {
		return err
	}
	c.printWorkspace(ws, hit)

	if opts.output == "" {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	printSuccess(c.err, "Exported %s", opts.format)
	printFile(c.err, opts.output)
	return nil
}
