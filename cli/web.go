package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/jdekker/daybook/output"
	"github.com/jdekker/daybook/telemetry"
	"github.com/jdekker/daybook/web"
)

// ServeCmd serves computed reports over HTTP, reloading the ledger file when
// it changes on disk.
type ServeCmd struct {
	File  string `help:"Ledger file to serve." arg:""`
	Port  int    `help:"Port to listen on." default:"8080"`
	Watch bool   `help:"Reload the ledger when the file changes." short:"w" default:"true" negatable:""`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx := context.Background()

	if globals.Telemetry {
		collector := telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
		}()
	}

	ledgerFile, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	server := web.NewWithVersion(cmd.Port, ledgerFile, version, commitSHA)
	server.WatchEnabled = cmd.Watch

	printInfof(ctx.Stdout, "Starting server on %s:%d", server.Host, cmd.Port)
	printInfof(ctx.Stdout, "Serving ledger: %s", pathStyle.Render(ledgerFile))

	return server.Start(runCtx)
}
