package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/internal/config"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/buildinfo"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/cache"
	apperrors "github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/errors"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/observability"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/observability/metrics"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/pipeline"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "wsgraph"

// Log levels for the CLI logger.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitCycles      = 2   // check found dependency cycles
	ExitInterrupted = 130 // SIGINT, the shell convention
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case apperrors.Is(err, apperrors.ErrCodeCycleDetected):
		return ExitCycles
	default:
		return ExitError
	}
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out io.Writer // command results
	err io.Writer // logs, progress and diagnostics

	flags    globalFlags
	cfg      *config.Config
	registry *prometheus.Registry
}

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	verbose  bool
	root     string   // workspace root
	dirs     []string // explicit package directories
	config   string   // explicit config file
	snapshot string   // graph JSON to read instead of manifests
	noCache  bool
	json     bool
}

// New creates a CLI writing results to out and logs to errw.
func New(out, errw io.Writer) *CLI {
	return &CLI{
		Logger: newLogger(errw, LogInfo),
		out:    out,
		err:    errw,
		cfg:    config.Default(),
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "wsgraph orders and queries a monorepo's package dependency graph",
		Long: `wsgraph reads the package manifests of a workspace, builds the internal
dependency graph and answers build-order, cycle and impact questions about it.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	root.SetErr(c.err)

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&c.flags.root, "root", "C", ".", "workspace root directory")
	pf.StringArrayVarP(&c.flags.dirs, "dir", "d", nil, "package directory (repeatable); overrides discovery")
	pf.StringVar(&c.flags.config, "config", "", "config file (default <root>/"+config.FileName+")")
	pf.StringVar(&c.flags.snapshot, "snapshot", "", "read the graph from an exported JSON file instead of manifests")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable the query result cache")
	pf.BoolVar(&c.flags.json, "json", false, "print results as JSON")

	root.AddCommand(c.orderCommand())
	root.AddCommand(c.cyclesCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.dependentsCommand())
	root.AddCommand(c.impactCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it applies the log level, attaches a run
// scoped logger to the context, loads configuration and installs metrics
// hooks when a metrics file is configured.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.flags.verbose {
		c.Logger.SetLevel(LogDebug)
	}
	logger := c.Logger.With("run", newRunID())
	cmd.SetContext(withLogger(cmd.Context(), logger))

	cfg, err := config.Load(c.flags.root, c.flags.config)
	if err != nil {
		return err
	}
	c.cfg = cfg
	logger.Debug("loaded config", "backend", cfg.Cache.Backend, "patterns", len(cfg.Packages))

	if cfg.MetricsFile != "" {
		c.registry = prometheus.NewRegistry()
		m := metrics.New(c.registry)
		observability.SetPipelineHooks(m)
		observability.SetCacheHooks(m)
	}
	return nil
}

// Finish flushes end-of-run state. It writes the metrics file when one is
// configured and must be called once after the root command has executed,
// whether or not it failed.
func (c *CLI) Finish() error {
	if c.registry == nil {
		return nil
	}
	defer observability.Reset()
	path := c.cfg.MetricsFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.flags.root, path)
	}
	if err := metrics.WriteTextfile(c.registry, path); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope(appName))
	r := pipeline.NewRunner(store, keyer, loggerFromContext(ctx))
	r.TTL = c.cfg.Cache.TTL
	return r, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.flags.noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(c.cfg.Cache.MemoryEntries)
	case config.BackendRedis:
		rc, err := cache.DialRedis(ctx, c.cfg.Cache.RedisAddr, c.cfg.Cache.RedisPrefix)
		if err != nil {
			loggerFromContext(ctx).Warn("redis cache unavailable, continuing without cache", "addr", c.cfg.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Workspace Loading
// =============================================================================

// loadWorkspace resolves the package source and loads the workspace graph.
func (c *CLI) loadWorkspace(ctx context.Context, r *pipeline.Runner) (*pipeline.Workspace, error) {
	src, err := c.source()
	if err != nil {
		return nil, err
	}

	var spin *Spinner
	if !c.flags.verbose && isTerminal(c.err) {
		spin = newSpinner(ctx, c.err, "Loading workspace...")
		spin.Start()
	}
	prog := newProgress(loggerFromContext(ctx))
	ws, err := r.Load(ctx, src)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d packages", ws.Stats.Packages))
	return ws, nil
}

// source picks the record source: a snapshot file, explicit directories,
// configured patterns or auto-discovered workspace patterns, in that order.
func (c *CLI) source() (source.Source, error) {
	if c.flags.snapshot != "" {
		return source.Snapshot{Path: c.flags.snapshot}, nil
	}

	var dirs []string
	if len(c.flags.dirs) > 0 {
		for _, d := range c.flags.dirs {
			if !filepath.IsAbs(d) {
				d = filepath.Join(c.flags.root, d)
			}
			dirs = append(dirs, d)
		}
	} else {
		patterns := c.cfg.Packages
		if len(patterns) == 0 {
			discovered, err := source.Discover(c.flags.root)
			if err != nil {
				return nil, err
			}
			patterns = discovered
		}
		if len(patterns) == 0 {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput,
				"no packages found in %s: pass --dir, set packages in %s, or add a workspace manifest", c.flags.root, config.FileName)
		}
		expanded, err := source.Expand(c.flags.root, patterns)
		if err != nil {
			return nil, err
		}
		dirs = expanded
	}
	return source.Directories{Dirs: dirs, Concurrency: c.cfg.Concurrency}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/wsgraph/).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return defaultCacheDir()
}

func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// printJSON writes v as indented JSON to the result stream.
func (c *CLI) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printWorkspace reports the workspace size and cache status on the log
// stream, so it never mixes with machine-readable results. Diagnostics are
// already logged by the runner.
func (c *CLI) printWorkspace(ws *pipeline.Workspace, cached bool) {
	printStats(c.err, ws.Stats.Packages, ws.Stats.Edges, cached)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
