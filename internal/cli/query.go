package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag/order"
	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/pipeline"
)

// session is a loaded workspace together with the runner that loaded it.
type session struct {
	runner *pipeline.Runner
	ws     *pipeline.Workspace
}

// open creates a runner and loads the workspace. Callers must close the
// session's runner.
func (c *CLI) open(ctx context.Context) (*session, error) {
	r, err := c.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	ws, err := c.loadWorkspace(ctx, r)
	if err != nil {
		r.Close()
		return nil, err
	}
	return &session{runner: r, ws: ws}, nil
}

// orderCommand creates the "order" command.
func (c *CLI) orderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "order [package]",
		Short: "Print build layers, dependencies first",
		Long: `Print the workspace packages in build layers. Every package comes after
all packages it depends on; packages in the same layer can be built in
parallel. With a package argument only that package and its transitive
dependencies are ordered.

Packages on a dependency cycle, or depending on one, cannot be placed and are
reported separately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var root string
			if len(args) == 1 {
				root = args[0]
			}
			return c.runOrder(cmd.Context(), root)
		},
	}
}

func (c *CLI) runOrder(ctx context.Context, root string) error {
	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.runner.Close()

	res, hit, err := s.runner.Order(ctx, s.ws.Graph, root)
	if err != nil {
		return err
	}
	c.printWorkspace(s.ws, hit)
	if c.flags.json {
		return c.printJSON(res)
	}
	c.printOrder(res)
	return nil
}

func (c *CLI) printOrder(res order.Result) {
	printLayers(c.out, res.Layers)
	if !res.HasCycles() && len(res.Blocked) == 0 {
		return
	}
	printWarning(c.out, "%d dependency cycle(s); these packages could not be ordered:", len(res.Circular))
	for _, cy := range res.Circular {
		printCycle(c.out, cy)
	}
	if len(res.Blocked) > 0 {
		printList(c.out, "Blocked by a cycle", res.Blocked)
	}
}

// cyclesCommand creates the "cycles" command.
func (c *CLI) cyclesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "List dependency cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.runCycles(cmd.Context())
			return err
		},
	}
}

// checkCommand creates the "check" command.
func (c *CLI) checkCommand() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fail if the workspace has dependency cycles",
		Long: `Exit with a non-zero status when the workspace contains a dependency cycle.
With --strict, unreadable or malformed package records also fail the check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.runCycles(cmd.Context())
			if err != nil {
				return err
			}
			if s.cycles > 0 {
				return apperrors.New(apperrors.ErrCodeCycleDetected, "%d dependency cycle(s) found", s.cycles)
			}
			if strict && s.diagnostics > 0 {
				return apperrors.New(apperrors.ErrCodeMalformedRecord, "%d package record problem(s) found", s.diagnostics)
			}
			if !c.flags.json {
				printSuccess(c.out, "No dependency cycles")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "also fail on package record diagnostics")
	return cmd
}

type cycleSummary struct {
	cycles      int
	diagnostics int
}

func (c *CLI) runCycles(ctx context.Context) (cycleSummary, error) {
	s, err := c.open(ctx)
	if err != nil {
		return cycleSummary{}, err
	}
	defer s.runner.Close()

	cycles, hit, err := s.runner.Cycles(ctx, s.ws.Graph)
	if err != nil {
		return cycleSummary{}, err
	}
	c.printWorkspace(s.ws, hit)
	sum := cycleSummary{cycles: len(cycles), diagnostics: len(s.ws.Diagnostics)}

	if c.flags.json {
		return sum, c.printJSON(cycles)
	}
	if len(cycles) > 0 {
		printWarning(c.out, "%d dependency cycle(s)", len(cycles))
		for _, cy := range cycles {
			printCycle(c.out, cy)
		}
	}
	return sum, nil
}

// dependentsCommand creates the "dependents" command.
func (c *CLI) dependentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dependents <package>",
		Short: "List packages that depend on a package directly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.runner.Close()

			names, hit, err := s.runner.Dependents(ctx, s.ws.Graph, args[0])
			if err != nil {
				return err
			}
			c.printWorkspace(s.ws, hit)
			if c.flags.json {
				return c.printJSON(names)
			}
			printList(c.out, "Direct dependents of "+args[0], names)
			return nil
		},
	}
}

// impactCommand creates the "impact" command.
func (c *CLI) impactCommand() *cobra.Command {
	var ordered bool
	cmd := &cobra.Command{
		Use:   "impact <package>",
		Short: "List every package affected by a change to a package",
		Long: `List every package that depends on the given package, directly or
transitively. With --order the package and its impact set are printed as
build layers: the order in which to rebuild after the change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.runner.Close()

			if ordered {
				res, hit, err := s.runner.ImpactOrder(ctx, s.ws.Graph, args[0])
				if err != nil {
					return err
				}
				c.printWorkspace(s.ws, hit)
				if c.flags.json {
					return c.printJSON(res)
				}
				c.printOrder(res)
				return nil
			}

			names, hit, err := s.runner.Impact(ctx, s.ws.Graph, args[0])
			if err != nil {
				return err
			}
			c.printWorkspace(s.ws, hit)
			if c.flags.json {
				return c.printJSON(names)
			}
			printList(c.out, "Affected by "+args[0], names)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ordered, "order", false, "print the impact set as rebuild layers")
	return cmd
}
