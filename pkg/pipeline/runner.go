package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/cache"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/dag"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/observability"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/source"
)

// Runner executes loads and queries with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// graphs or results. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached results. Zero means [cache.DefaultTTL].
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Load reads records from src and builds the graph. Source and graph
// diagnostics are logged as warnings and returned on the workspace; only a
// source failure or a duplicate package name is an error.
func (r *Runner) Load(ctx context.Context, src source.Source) (*Workspace, error) {
	name := sourceName(src)
	hooks := observability.Pipeline()

	hooks.OnLoadStart(ctx, name)
	loadStart := time.Now()
	res, err := src.Load(ctx)
	loadTime := time.Since(loadStart)
	if err != nil {
		hooks.OnLoadComplete(ctx, name, 0, 0, loadTime, err)
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	hooks.OnLoadComplete(ctx, name, len(res.Records), len(res.Diagnostics), loadTime, nil)

	buildStart := time.Now()
	g, err := dag.Build(res.Records)
	buildTime := time.Since(buildStart)
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, buildTime, err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, g.Len(), g.EdgeCount(), buildTime, nil)

	ws := &Workspace{
		Graph:       g,
		Diagnostics: slices.Concat(res.Diagnostics, g.Diagnostics()),
		Stats: Stats{
			Records:   len(res.Records),
			Packages:  g.Len(),
			Edges:     g.EdgeCount(),
			LoadTime:  loadTime,
			BuildTime: buildTime,
		},
	}

	for _, d := range ws.Diagnostics {
		r.Logger.Warn(d.Message, "kind", d.Kind, "package", d.Package, "dir", d.Directory)
	}
	r.Logger.Info("built graph",
		"source", name,
		"packages", ws.Stats.Packages,
		"edges", ws.Stats.Edges,
		"diagnostics", len(ws.Diagnostics),
		"duration", loadTime+buildTime)

	return ws, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.DefaultTTL
}

// cached returns the JSON-cached result of query for g, computing and
// storing it on a miss. The boolean reports a cache hit. Cache failures are
// logged and never fail the query.
func cached[T any](ctx context.Context, r *Runner, g *dag.Graph, query string, args []string, compute func() (T, error)) (T, bool, error) {
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	hooks.OnQueryStart(ctx, query)
	start := time.Now()

	key := r.Keyer.QueryKey(g.Fingerprint(), query, args...)

	if data, hit, err := r.Cache.Get(ctx, key); err != nil {
		r.Logger.Debug("cache read failed", "query", query, "err", err)
	} else if hit {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			cacheHooks.OnCacheHit(ctx, query)
			hooks.OnQueryComplete(ctx, query, time.Since(start), nil)
			r.Logger.Debug("cache hit", "query", query, "args", args)
			return v, true, nil
		}
		// Undecodable entry: recompute and overwrite.
	}
	cacheHooks.OnCacheMiss(ctx, query)

	v, err := compute()
	hooks.OnQueryComplete(ctx, query, time.Since(start), err)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
			r.Logger.Debug("cache write failed", "query", query, "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, query, len(data))
		}
	}
	return v, false, nil
}

func sourceName(src source.Source) string {
	switch src.(type) {
	case source.Static, *source.Static:
		return "static"
	case source.Directories, *source.Directories:
		return "directories"
	case source.Snapshot, *source.Snapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("%T", src)
	}
}
