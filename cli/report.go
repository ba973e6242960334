package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/jdekker/daybook/date"
	"github.com/jdekker/daybook/ledger"
	"github.com/jdekker/daybook/loader"
	"github.com/jdekker/daybook/output"
	"github.com/jdekker/daybook/report"
	"github.com/jdekker/daybook/telemetry"
)

// reportOptions are the flags shared by every report command.
type reportOptions struct {
	File    FileOrStdin `help:"Ledger file (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	End     string      `help:"Most recent period end (YYYY-MM-DD). Defaults to the financial-year end on or after today."`
	Start   string      `help:"Most recent period start (YYYY-MM-DD). Defaults to the financial-year start."`
	Periods int         `help:"Number of comparative periods, most recent first." default:"1"`
	Unit    string      `help:"Comparative period unit (months or years)." default:"months" enum:"months,years"`
	Format  string      `help:"Output format (table, csv or json)." default:"table" enum:"table,csv,json"`
}

type TrialBalanceCmd struct {
	reportOptions
}

func (cmd *TrialBalanceCmd) Run(ctx *kong.Context, globals *Globals) error {
	return runReport(ctx, globals, &cmd.reportOptions, report.KindTrialBalance)
}

type IncomeStatementCmd struct {
	reportOptions
}

func (cmd *IncomeStatementCmd) Run(ctx *kong.Context, globals *Globals) error {
	return runReport(ctx, globals, &cmd.reportOptions, report.KindIncomeStatement)
}

type BalanceSheetCmd struct {
	reportOptions
}

func (cmd *BalanceSheetCmd) Run(ctx *kong.Context, globals *Globals) error {
	return runReport(ctx, globals, &cmd.reportOptions, report.KindBalanceSheet)
}

// ExportCmd writes a report to a file instead of the terminal, defaulting
// to CSV.
type ExportCmd struct {
	reportOptions
	Kind   string `help:"Report kind to export (trial-balance, income-statement or balance-sheet)." default:"balance-sheet"`
	Output string `help:"Output filename (use '-' for stdout)." short:"o" default:"-"`
	Force  bool   `help:"Overwrite the output file without confirmation." short:"f"`
}

func (cmd *ExportCmd) Run(ctx *kong.Context, globals *Globals) error {
	kind, err := report.ParseKind(cmd.Kind)
	if err != nil {
		return err
	}
	if cmd.Format == "table" {
		cmd.Format = "csv"
	}

	if cmd.Output == "-" || cmd.Output == "" {
		return runReport(ctx, globals, &cmd.reportOptions, kind)
	}

	if _, err := os.Stat(cmd.Output); err == nil && !cmd.Force {
		confirmed, err := promptYesNo(ctx, fmt.Sprintf("File %q already exists. Overwrite it?", cmd.Output))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !confirmed {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", cmd.Output)
		}
	}

	out, err := os.Create(cmd.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cmd.Output, err)
	}
	defer func() { _ = out.Close() }()

	result, meta, err := computeReport(ctx, globals, &cmd.reportOptions, kind)
	if err != nil {
		return err
	}
	if err := writeReport(out, result, meta, cmd.Format); err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Exported %s to %s", kind, pathStyle.Render(cmd.Output)))
	return nil
}

func runReport(ctx *kong.Context, globals *Globals, opts *reportOptions, kind report.Kind) error {
	result, meta, err := computeReport(ctx, globals, opts, kind)
	if err != nil {
		return err
	}

	if opts.Format == "table" {
		renderTable(ctx.Stdout, result, meta)
		for _, warning := range result.Warnings {
			_, _ = fmt.Fprintln(ctx.Stderr)
			printError(ctx.Stderr, warning)
		}
		if len(result.Warnings) > 0 {
			return NewCommandError(1)
		}
		return nil
	}
	return writeReport(ctx.Stdout, result, meta, opts.Format)
}

func computeReport(ctx *kong.Context, globals *Globals, opts *reportOptions, kind report.Kind) (*report.Report, ledger.Metadata, error) {
	if err := opts.File.EnsureContents(); err != nil {
		return nil, ledger.Metadata{}, err
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
		fmt.Sprintf("%s %s", kind, filepath.Base(opts.File.Filename)))
	defer timer.End()

	file, err := opts.File.LoadLedger(runCtx, loader.New())
	if err != nil {
		return nil, ledger.Metadata{}, err
	}
	session, err := file.Session(runCtx)
	if err != nil {
		return nil, ledger.Metadata{}, err
	}

	req := report.Request{Kind: kind, Periods: opts.Periods}
	if opts.End != "" {
		if req.End, err = date.Parse(opts.End); err != nil {
			return nil, ledger.Metadata{}, fmt.Errorf("invalid --end: %w", err)
		}
	}
	if opts.Start != "" {
		if req.Start, err = date.Parse(opts.Start); err != nil {
			return nil, ledger.Metadata{}, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if req.Unit, err = date.ParseUnit(opts.Unit); err != nil {
		return nil, ledger.Metadata{}, err
	}

	result, err := report.Compute(runCtx, session, req)
	if err != nil {
		return nil, ledger.Metadata{}, err
	}
	return result, session.Metadata(), nil
}

func writeReport(w io.Writer, r *report.Report, meta ledger.Metadata, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return report.WriteCSV(w, r, meta)
	}
}
