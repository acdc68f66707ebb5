package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx)
	if code := cli.ExitCode(err); code != 0 {
		if code != cli.ExitInterrupted {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		cancel()
		os.Exit(code)
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stdout, os.Stderr)
	err := c.RootCommand().ExecuteContext(ctx)
	if ferr := c.Finish(); err == nil {
		err = ferr
	}
	return err
}
