package report

import (
	"context"
	"fmt"

	"github.com/jdekker/daybook/date"
	"github.com/jdekker/daybook/ledger"
	"github.com/jdekker/daybook/telemetry"
)

// Request describes the reports to compute. The zero value asks for a single
// period ending at the session's default report date and starting at the
// financial-year start.
type Request struct {
	// Kind selects which report to return.
	Kind Kind

	// End is the (most recent) period end. Zero means the session default,
	// the financial-year end on or after today.
	End date.Date

	// Start is the (most recent) period start. Zero means the start of the
	// financial year containing End.
	Start date.Date

	// Periods is the number of comparative periods, most recent first.
	// Zero means one.
	Periods int

	// Unit shifts comparative periods back by calendar months or years.
	Unit date.Unit
}

// Compute resolves the request's comparative periods, executes the reporting
// workflow once per period, and assembles the columns into a single report,
// most recent period first.
func Compute(ctx context.Context, session *ledger.Session, req Request) (*Report, error) {
	periods, err := resolvePeriods(session, req)
	if err != nil {
		return nil, err
	}

	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("Compute %s", req.Kind))
	defer timer.End()

	runs := make([]*Run, 0, len(periods))
	for _, period := range periods {
		run, err := Execute(ctx, session, period)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return assemble(ctx, req.Kind, runs, session)
}

// resolvePeriods turns the request into concrete comparative periods, most
// recent first.
func resolvePeriods(session *ledger.Session, req Request) ([]date.Range, error) {
	end := req.End
	if end.IsZero() {
		end = session.DefaultReportDate()
	}
	start := req.Start
	if start.IsZero() {
		start = date.FinancialYearStart(end, session.Metadata().EOFY)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("period end %s is before period start %s", end, start)
	}

	n := req.Periods
	if n <= 0 {
		n = 1
	}
	return date.ComparativeRanges(date.Range{Start: start, End: end}, req.Unit, n), nil
}

// assemble merges the per-period runs into one multi-column report.
func assemble(ctx context.Context, kind Kind, runs []*Run, session *ledger.Session) (*Report, error) {
	switch kind {
	case KindTrialBalance:
		// Trial balances are single-period; comparative columns would pair
		// Dr/Cr splits across periods with nothing to compare.
		return runs[0].ReportAt(KindTrialBalance, StageUnreconciledImports)
	case KindIncomeStatement, KindBalanceSheet:
	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}

	kinds, err := session.Store().AccountKinds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account kinds: %w", err)
	}

	columns := make([]PeriodColumn, 0, len(runs))
	netSurplus := make([]Cell, 0, len(runs))
	retained := make([]Cell, 0, len(runs))
	for _, run := range runs {
		columns = append(columns, PeriodColumn{
			Title:    run.Period().End.String(),
			Balances: run.BalancesAt(StageEquityReclassification),
		})
		netSurplus = append(netSurplus, Value(run.NetSurplus()))
		retained = append(retained, Value(run.RetainedEarnings()))
	}

	if kind == KindIncomeStatement {
		return IncomeStatement(kinds, columns), nil
	}
	return BalanceSheet(kinds, columns, netSurplus, retained), nil
}
