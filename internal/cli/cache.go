package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/internal/config"
	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the query result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached query result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newCache(ctx)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			cl, ok := store.(cache.Clearer)
			if !ok {
				printInfo(c.out, "Cache backend %q cannot be cleared", c.cfg.Cache.Backend)
				return nil
			}
			if err := cl.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess(c.out, "Cleared %s cache", c.cfg.Cache.Backend)
			if fc, ok := store.(*cache.FileCache); ok {
				printDetail(c.out, "Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached results are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.cfg.Cache.Backend {
			case config.BackendRedis:
				fmt.Fprintf(c.out, "redis://%s/%s*\n", c.cfg.Cache.RedisAddr, c.cfg.Cache.RedisPrefix)
			case config.BackendFile:
				dir, err := c.cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(c.out, dir)
			default:
				printInfo(c.out, "Cache backend %q stores nothing on disk", c.cfg.Cache.Backend)
			}
			return nil
		},
	}
}
