package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/jdekker/daybook/ledger"
	"github.com/jdekker/daybook/loader"
	"github.com/jdekker/daybook/output"
	"github.com/jdekker/daybook/telemetry"
)

// AssertCmd checks every balance assertion in the ledger file against
// computed running balances.
type AssertCmd struct {
	File FileOrStdin `help:"Ledger file (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *AssertCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()

	var collector telemetry.Collector
	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
		}()
	}

	timer := telemetry.FromContext(runCtx).Start(
		fmt.Sprintf("assert %s", filepath.Base(cmd.File.Filename)))
	defer timer.End()

	file, err := cmd.File.LoadLedger(runCtx, loader.New())
	if err != nil {
		return err
	}
	session, err := file.Session(runCtx)
	if err != nil {
		return err
	}

	if len(file.Assertions) == 0 {
		printInfof(ctx.Stdout, "No balance assertions in %s", pathStyle.Render(cmd.File.Filename))
		return nil
	}

	meta := session.Metadata()
	failed := 0
	for _, assertion := range file.Assertions {
		result, err := session.Check(runCtx, assertion)
		if err != nil {
			return err
		}

		want := fmt.Sprintf("%s %s", ledger.FormatQuantity(assertion.Quantity, meta.DecimalPlaces), assertion.Commodity)
		if result.Passed {
			printSuccess(ctx.Stdout, fmt.Sprintf("%s %s = %s", assertion.Date, assertion.Account, want))
			continue
		}

		failed++
		got := fmt.Sprintf("%s %s", ledger.FormatQuantity(result.Actual, meta.DecimalPlaces), meta.ReportingCommodity)
		if assertion.Commodity != meta.ReportingCommodity {
			printError(ctx.Stderr, fmt.Sprintf("%s %s: asserted in %s, balances are computed in %s only",
				assertion.Date, assertion.Account, assertion.Commodity, meta.ReportingCommodity))
			continue
		}
		printError(ctx.Stderr, fmt.Sprintf("%s %s: want %s, got %s", assertion.Date, assertion.Account, want, got))
	}

	if failed > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, fmt.Sprintf("%d of %d assertion(s) failed", failed, len(file.Assertions)))
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("All %d assertion(s) passed", len(file.Assertions)))
	return nil
}
