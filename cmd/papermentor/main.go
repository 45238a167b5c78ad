// Command papermentor is a Socratic mentor for research papers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/papermentor/internal/adapters/driven/config/env"
	"github.com/custodia-labs/papermentor/internal/adapters/driving/cli"
	"github.com/custodia-labs/papermentor/internal/app"
	"github.com/custodia-labs/papermentor/internal/logger"
)

// version is set by the linker: -ldflags "-X main.version=v1.0.0".
var version string

func main() {
	if err := env.LoadDotEnv(); err != nil {
		logger.Warn("reading .env: %v", err)
	}

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	a, err := app.New(ctx, app.Options{
		ConfigDir: opts.ConfigDir,
		Ephemeral: opts.Ephemeral,
	})
	if err != nil {
		return nil, nil, err
	}

	services := &cli.Services{
		Ingest:    a.Ingest,
		Chat:      a.Chat,
		Retrieval: a.Retrieval,
		Sessions:  a.Sessions,
		Settings:  a.Config,
		Warnings:  a.Warnings,
	}
	return services, func() { _ = a.Close() }, nil
}
