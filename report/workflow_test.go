package report

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/jdekker/daybook/date"
	"github.com/jdekker/daybook/ledger"
	"github.com/jdekker/daybook/store"
)

func day(t *testing.T, str string) date.Date {
	t.Helper()
	d, err := date.Parse(str)
	assert.NoError(t, err)
	return d
}

// workflowSession builds a ledger with activity in two financial years:
// an opening balance and rent payment before 2024-07-01, and a sale after.
func workflowSession(t *testing.T) *ledger.Session {
	t.Helper()
	ctx := context.Background()

	mem := store.NewMemory(ledger.Metadata{
		ReportingCommodity: "$",
		DecimalPlaces:      2,
		EOFY:               date.MonthDay{Month: 6, Day: 30},
	})
	mem.SetAccountKinds("Cash at bank", ledger.KindAsset)
	mem.SetAccountKinds("Opening Balances", ledger.KindEquity)
	mem.SetAccountKinds("Sales", ledger.KindIncome)
	mem.SetAccountKinds("Rent", ledger.KindExpense)

	session, err := ledger.NewSession(ctx, mem)
	assert.NoError(t, err)

	add := func(dt, desc string, postings ...*ledger.Posting) {
		_, err := session.AddTransaction(ctx, &ledger.Transaction{
			Date:        day(t, dt),
			Description: desc,
			Postings:    postings,
		})
		assert.NoError(t, err)
	}
	p := func(account string, quantity int64) *ledger.Posting {
		return &ledger.Posting{Account: account, Quantity: quantity, Commodity: "$"}
	}

	add("2024-06-01", "Opening", p("Cash at bank", 10000), p("Opening Balances", -10000))
	add("2024-06-15", "Office rent", p("Rent", 2000), p("Cash at bank", -2000))
	add("2025-01-10", "Sale", p("Cash at bank", 5000), p("Sales", -5000))
	return session
}

func fy2025(t *testing.T) date.Range {
	return date.Range{Start: day(t, "2024-07-01"), End: day(t, "2025-06-30")}
}

func TestExecuteStageProgression(t *testing.T) {
	ctx := context.Background()
	run, err := Execute(ctx, workflowSession(t), fy2025(t))
	assert.NoError(t, err)

	assert.Equal(t, map[string]int64{
		"Cash at bank":     13000,
		"Opening Balances": -10000,
		"Sales":            -5000,
		"Rent":             2000,
	}, run.BalancesAt(StageFromLedger))

	// Reclassification zeroes the prior-year rent into accumulated surplus;
	// the current-year sale is untouched.
	assert.Equal(t, map[string]int64{
		"Cash at bank":                   13000,
		"Opening Balances":               -10000,
		"Sales":                          -5000,
		ledger.AccumulatedSurplusAccount: 2000,
	}, run.BalancesAt(StageEquityReclassification))

	assert.Equal(t, int64(5000), run.NetSurplus())
	assert.Equal(t, int64(-2000), run.RetainedEarnings())
}

func TestExecuteBalanceSheetBalances(t *testing.T) {
	ctx := context.Background()
	run, err := Execute(ctx, workflowSession(t), fy2025(t))
	assert.NoError(t, err)

	sheet, err := run.Report(KindBalanceSheet)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(sheet.Warnings))

	assets, ok := sheet.CellsForID("total_assets")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(13000)}, assets)

	cye, ok := sheet.CellsForID("current_year_earnings")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(5000)}, cye)

	retained, ok := sheet.CellsForID("retained_earnings")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(-2000)}, retained)

	equity, ok := sheet.CellsForID("total_equity")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(13000)}, equity)
}

func TestUnreconciledImportsSuspense(t *testing.T) {
	ctx := context.Background()
	session := workflowSession(t)
	mem := session.Store().(*store.Memory)

	// One unreconciled fee, one line dated after the period end, and one
	// already reconciled line. Only the first synthesizes a suspense posting.
	mem.AddStatementLine(&ledger.StatementLine{
		SourceAccount: "Cash at bank",
		Date:          day(t, "2025-02-01"),
		Description:   "Bank fee",
		Quantity:      -2500,
		Commodity:     "$",
	})
	mem.AddStatementLine(&ledger.StatementLine{
		SourceAccount: "Cash at bank",
		Date:          day(t, "2025-07-15"),
		Description:   "Next year",
		Quantity:      -9900,
		Commodity:     "$",
	})
	pid := int64(5)
	mem.AddStatementLine(&ledger.StatementLine{
		SourceAccount: "Cash at bank",
		Date:          day(t, "2025-01-10"),
		Description:   "Sale",
		Quantity:      5000,
		Commodity:     "$",
		PostingID:     &pid,
	})

	run, err := Execute(ctx, session, fy2025(t))
	assert.NoError(t, err)

	balances := run.BalancesAt(StageUnreconciledImports)
	assert.Equal(t, int64(10500), balances["Cash at bank"])
	assert.Equal(t, int64(2500), balances[ledger.UnclassifiedCreditsAccount])

	tb, err := run.ReportAt(KindTrialBalance, StageUnreconciledImports)
	assert.NoError(t, err)
	totals, ok := tb.CellsForID("totals")
	assert.True(t, ok)
	assert.Equal(t, totals[0], totals[1])

	// The suspense account is unclassified, so the balance sheet carries a
	// warning but is still produced.
	sheet, err := run.Report(KindBalanceSheet)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(sheet.Warnings))
}

func TestReportAtFallsBack(t *testing.T) {
	ctx := context.Background()
	run, err := Execute(ctx, workflowSession(t), fy2025(t))
	assert.NoError(t, err)

	// The trial balance is produced early in the workflow and is still
	// addressable from the final stage.
	tb, err := run.ReportAt(KindTrialBalance, StageBalanceSheet)
	assert.NoError(t, err)
	assert.Equal(t, "Trial balance", tb.Title)

	// Nothing before the balance-sheet stage produces a balance sheet.
	_, err = run.ReportAt(KindBalanceSheet, StageInterimIncomeStatement)
	assert.Error(t, err)
}

func TestTransactionsThrough(t *testing.T) {
	ctx := context.Background()
	session := workflowSession(t)

	// A transaction after the period end never appears.
	_, err := session.AddTransaction(ctx, &ledger.Transaction{
		Date:        day(t, "2025-08-01"),
		Description: "Next year",
		Postings: []*ledger.Posting{
			{Account: "Cash at bank", Quantity: 100, Commodity: "$"},
			{Account: "Sales", Quantity: -100, Commodity: "$"},
		},
	})
	assert.NoError(t, err)

	mem := session.Store().(*store.Memory)
	mem.AddStatementLine(&ledger.StatementLine{
		SourceAccount: "Cash at bank",
		Date:          day(t, "2025-02-01"),
		Description:   "Bank fee",
		Quantity:      -2500,
		Commodity:     "$",
	})

	run, err := Execute(ctx, session, fy2025(t))
	assert.NoError(t, err)

	real, err := run.TransactionsThrough(ctx, StageFromLedger)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(real))

	withImports, err := run.TransactionsThrough(ctx, StageUnreconciledImports)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(withImports))

	// Reclassification contributes the rent offset.
	all, err := run.TransactionsThrough(ctx, StageEquityReclassification)
	assert.NoError(t, err)
	assert.Equal(t, 5, len(all))
}

func TestExecuteDeterministic(t *testing.T) {
	ctx := context.Background()
	session := workflowSession(t)

	first, err := Execute(ctx, session, fy2025(t))
	assert.NoError(t, err)
	second, err := Execute(ctx, session, fy2025(t))
	assert.NoError(t, err)

	for _, kind := range []Kind{KindTrialBalance, KindIncomeStatement, KindBalanceSheet} {
		a, err := first.Report(kind)
		assert.NoError(t, err)
		b, err := second.Report(kind)
		assert.NoError(t, err)

		aJSON, err := json.Marshal(a)
		assert.NoError(t, err)
		bJSON, err := json.Marshal(b)
		assert.NoError(t, err)
		assert.Equal(t, string(aJSON), string(bJSON))
	}
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("balance-sheet")
	assert.NoError(t, err)
	assert.Equal(t, KindBalanceSheet, kind)

	_, err = ParseKind("cashflow")
	assert.Error(t, err)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "FromLedger", StageFromLedger.String())
	assert.Equal(t, "BalanceSheet", StageBalanceSheet.String())
}
