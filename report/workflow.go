package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/jdekker/daybook/date"
	"github.com/jdekker/daybook/ledger"
	"github.com/jdekker/daybook/telemetry"
)

// Stage identifies one step of the reporting workflow. Stages run in a fixed
// order; none may be skipped.
type Stage int

const (
	// StageFromLedger loads persisted balances as of the period end.
	StageFromLedger Stage = iota

	// StageUnreconciledImports synthesizes suspense-account transactions for
	// imported statement lines with no linked posting.
	StageUnreconciledImports

	// StageEquityReclassification zeroes income and expense balances as of
	// the day before the period start, offsetting to the accumulated
	// surplus equity account.
	StageEquityReclassification

	// StageInterimIncomeStatement derives the income statement and the net
	// surplus from reclassified balances.
	StageInterimIncomeStatement

	// StageBalanceSheet derives the balance sheet, injecting current-year
	// and retained earnings under equity.
	StageBalanceSheet

	stageCount
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageFromLedger:
		return "FromLedger"
	case StageUnreconciledImports:
		return "UnreconciledImports"
	case StageEquityReclassification:
		return "EquityReclassification"
	case StageInterimIncomeStatement:
		return "InterimIncomeStatement"
	case StageBalanceSheet:
		return "BalanceSheet"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Kind is a report type a workflow run can produce.
type Kind string

const (
	KindTrialBalance    Kind = "trial-balance"
	KindIncomeStatement Kind = "income-statement"
	KindBalanceSheet    Kind = "balance-sheet"
)

// ParseKind parses a report kind from its string form.
func ParseKind(str string) (Kind, error) {
	switch Kind(str) {
	case KindTrialBalance, KindIncomeStatement, KindBalanceSheet:
		return Kind(str), nil
	}
	return "", fmt.Errorf("unknown report kind %q", str)
}

// stageResult is the product of one workflow stage: the balance snapshot
// after the stage, the synthetic transactions it contributed, and the reports
// it produced.
type stageResult struct {
	balances  map[string]int64
	synthetic []*ledger.Transaction
	reports   map[Kind]*Report
}

// Run is one execution of the reporting workflow over a single period. Each
// stage consumes the previous stage's balances and contributes synthetic
// transactions; nothing a run synthesizes is ever persisted. A run owns all
// of its state, so independent runs may execute concurrently against the
// same store.
type Run struct {
	session *ledger.Session
	period  date.Range
	kinds   ledger.AccountKinds

	stages [stageCount]stageResult

	// netSurplus and accumulated, display-signed, feed the balance sheet.
	netSurplus  int64
	accumulated int64
}

// Execute runs every workflow stage for the period. Any stage failure aborts
// the run; no partial products are kept.
func Execute(ctx context.Context, session *ledger.Session, period date.Range) (*Run, error) {
	kinds, err := session.Store().AccountKinds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account kinds: %w", err)
	}

	run := &Run{session: session, period: period, kinds: kinds}
	collector := telemetry.FromContext(ctx)

	for stage := StageFromLedger; stage < stageCount; stage++ {
		timer := collector.Start(stage.String())
		err := run.execute(ctx, stage)
		timer.End()
		if err != nil {
			return nil, fmt.Errorf("reporting stage %s failed: %w", stage, err)
		}
	}
	return run, nil
}

// Period returns the period the run covers.
func (r *Run) Period() date.Range { return r.period }

func (r *Run) execute(ctx context.Context, stage Stage) error {
	switch stage {
	case StageFromLedger:
		return r.fromLedger(ctx)
	case StageUnreconciledImports:
		return r.unreconciledImports(ctx)
	case StageEquityReclassification:
		return r.equityReclassification(ctx)
	case StageInterimIncomeStatement:
		return r.interimIncomeStatement()
	case StageBalanceSheet:
		return r.balanceSheet()
	}
	return fmt.Errorf("unknown stage %d", int(stage))
}

// fromLedger loads persisted balances as of the period end.
func (r *Run) fromLedger(ctx context.Context) error {
	balances, err := r.session.Balances(ctx, r.period.End)
	if err != nil {
		return err
	}
	r.stages[StageFromLedger] = stageResult{balances: balances}
	return nil
}

// unreconciledImports synthesizes one transaction per unlinked statement line
// dated in the period, posting the source account against the debit or credit
// suspense account, and folds them into the balances.
func (r *Run) unreconciledImports(ctx context.Context) error {
	lines, err := r.session.Store().StatementLines(ctx)
	if err != nil {
		return err
	}

	balances := cloneBalances(r.stages[StageFromLedger].balances)
	var synthetic []*ledger.Transaction
	for _, line := range lines {
		if line.Reconciled() || line.Date.After(r.period.End) {
			continue
		}

		suspense := ledger.UnclassifiedCreditsAccount
		if line.Quantity >= 0 {
			suspense = ledger.UnclassifiedDebitsAccount
		}
		t := &ledger.Transaction{
			Date:        line.Date,
			Description: line.Description,
			Postings: []*ledger.Posting{
				{Account: line.SourceAccount, Quantity: line.Quantity, Commodity: line.Commodity, Date: line.Date},
				{Account: suspense, Quantity: -line.Quantity, Commodity: line.Commodity, Date: line.Date},
			},
		}
		synthetic = append(synthetic, t)
		if err := foldTransaction(balances, t, r.session.Metadata()); err != nil {
			return err
		}
	}

	r.stages[StageUnreconciledImports] = stageResult{
		balances:  balances,
		synthetic: synthetic,
		reports: map[Kind]*Report{
			KindTrialBalance: TrialBalance("Trial balance", balances),
		},
	}
	return nil
}

// equityReclassification zeroes every income and expense account as of the
// day before the period start, posting the offset to the accumulated surplus
// equity account. This lets the income statement start the period from zero
// while the balance sheet keeps the cumulative equity.
func (r *Run) equityReclassification(ctx context.Context) error {
	boundary := r.period.Start.AddDays(-1)
	meta := r.session.Metadata()

	// Balances at the boundary see the same unreconciled imports the
	// previous stage synthesized, restricted to the boundary date.
	atBoundary, err := r.session.Balances(ctx, boundary)
	if err != nil {
		return err
	}
	for _, t := range r.stages[StageUnreconciledImports].synthetic {
		if t.Date.After(boundary) {
			continue
		}
		if err := foldTransaction(atBoundary, t, meta); err != nil {
			return err
		}
	}

	balances := cloneBalances(r.stages[StageUnreconciledImports].balances)
	var synthetic []*ledger.Transaction
	var accumulated int64
	for _, account := range sortedAccounts(atBoundary) {
		if !r.kinds.IsAny(account, ledger.KindIncome, ledger.KindExpense) {
			continue
		}
		balance := atBoundary[account]
		if balance == 0 {
			continue
		}

		t := &ledger.Transaction{
			Date:        boundary,
			Description: "Accumulated surplus (deficit)",
			Postings: []*ledger.Posting{
				{Account: account, Quantity: -balance, Commodity: meta.ReportingCommodity, Date: boundary},
				{Account: ledger.AccumulatedSurplusAccount, Quantity: balance, Commodity: meta.ReportingCommodity, Date: boundary},
			},
		}
		synthetic = append(synthetic, t)
		accumulated += balance
		if err := foldTransaction(balances, t, meta); err != nil {
			return err
		}
	}

	// Sign-inverted for display: the account accumulates credits.
	r.accumulated = -accumulated
	r.stages[StageEquityReclassification] = stageResult{
		balances:  balances,
		synthetic: synthetic,
	}
	return nil
}

// interimIncomeStatement derives the income statement and net surplus from
// the reclassified balances.
func (r *Run) interimIncomeStatement() error {
	balances := r.stages[StageEquityReclassification].balances

	statement := IncomeStatement(r.kinds, []PeriodColumn{{
		Title:    r.period.End.String(),
		Balances: balances,
	}})
	cells, ok := statement.CellsForID("net_surplus")
	if !ok || len(cells) != 1 {
		return fmt.Errorf("income statement has no net surplus row")
	}
	r.netSurplus = cells[0].Quantity

	r.stages[StageInterimIncomeStatement] = stageResult{
		balances: cloneBalances(balances),
		reports: map[Kind]*Report{
			KindIncomeStatement: statement,
		},
	}
	return nil
}

// balanceSheet derives the balance sheet from the reclassified balances,
// injecting the net surplus as current year earnings and the sign-inverted
// accumulated surplus as retained earnings.
func (r *Run) balanceSheet() error {
	balances := r.stages[StageInterimIncomeStatement].balances

	sheet := BalanceSheet(r.kinds,
		[]PeriodColumn{{Title: r.period.End.String(), Balances: balances}},
		[]Cell{Value(r.netSurplus)},
		[]Cell{Value(r.accumulated)},
	)

	r.stages[StageBalanceSheet] = stageResult{
		balances: cloneBalances(balances),
		reports: map[Kind]*Report{
			KindBalanceSheet: sheet,
		},
	}
	return nil
}

// ReportAt returns the report of the given kind as of the given stage,
// falling back to the nearest earlier stage that produced it.
func (r *Run) ReportAt(kind Kind, stage Stage) (*Report, error) {
	for s := stage; s >= StageFromLedger; s-- {
		if rep, ok := r.stages[s].reports[kind]; ok {
			return rep, nil
		}
	}
	return nil, fmt.Errorf("no %s produced by stage %s or earlier", kind, stage)
}

// Report returns the final report of the given kind.
func (r *Run) Report(kind Kind) (*Report, error) {
	return r.ReportAt(kind, StageBalanceSheet)
}

// NetSurplus returns the period's display-signed net surplus (deficit).
func (r *Run) NetSurplus() int64 { return r.netSurplus }

// RetainedEarnings returns the display-signed accumulated surplus carried
// into the period.
func (r *Run) RetainedEarnings() int64 { return r.accumulated }

// BalancesAt returns a copy of the balance snapshot after the given stage.
func (r *Run) BalancesAt(stage Stage) map[string]int64 {
	return cloneBalances(r.stages[stage].balances)
}

// TransactionsThrough returns the union of real transactions up to the period
// end and the synthetic transactions contributed at or before the given
// stage. Stage order is not chronological order, so callers must re-sort,
// conventionally by (date desc, id desc).
func (r *Run) TransactionsThrough(ctx context.Context, stage Stage) ([]*ledger.Transaction, error) {
	real, err := r.session.Store().Transactions(ctx)
	if err != nil {
		return nil, err
	}

	var out []*ledger.Transaction
	for _, t := range real {
		if !t.Date.After(r.period.End) {
			out = append(out, t)
		}
	}
	for s := StageFromLedger; s <= stage; s++ {
		for _, t := range r.stages[s].synthetic {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func cloneBalances(balances map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(balances))
	for account, balance := range balances {
		out[account] = balance
	}
	return out
}

func sortedAccounts(balances map[string]int64) []string {
	accounts := make([]string, 0, len(balances))
	for account := range balances {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts
}

// foldTransaction folds a transaction's cost-basis-converted postings into a
// balance map, dropping entries that return to zero.
func foldTransaction(balances map[string]int64, t *ledger.Transaction, meta ledger.Metadata) error {
	for _, p := range t.Postings {
		cost, err := ledger.AsCost(p.Quantity, p.Commodity, meta)
		if err != nil {
			return err
		}
		balance := balances[p.Account] + cost
		if balance == 0 {
			delete(balances, p.Account)
		} else {
			balances[p.Account] = balance
		}
	}
	return nil
}
