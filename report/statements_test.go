package report

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/jdekker/daybook/ledger"
)

func testKinds() ledger.AccountKinds {
	return ledger.AccountKinds{
		"Cash at bank":     {ledger.KindAsset},
		"Loan":             {ledger.KindLiability},
		"Opening Balances": {ledger.KindEquity},
		"Sales":            {ledger.KindIncome},
		"Rent":             {ledger.KindExpense},
	}
}

func TestTrialBalance(t *testing.T) {
	r := TrialBalance("Trial balance", map[string]int64{
		"Cash at bank":     15000,
		"Opening Balances": -10000,
		"Sales":            -5000,
	})

	assert.Equal(t, []string{"Dr", "Cr"}, r.Columns)

	section := r.Nodes[0].(*Section)
	assert.Equal(t, 4, len(section.Nodes)) // three accounts plus the totals row

	// Accounts are sorted; positive balances are debits, negative credits.
	cash := section.Nodes[0].(*Row)
	assert.Equal(t, "Cash at bank", cash.Text)
	assert.Equal(t, []Cell{Value(15000), Value(0)}, cash.Cells)

	sales := section.Nodes[2].(*Row)
	assert.Equal(t, "Sales", sales.Text)
	assert.Equal(t, []Cell{Value(0), Value(5000)}, sales.Cells)

	// Dr and Cr totals agree for balanced books.
	totals, ok := r.CellsForID("totals")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(15000), Value(15000)}, totals)
}

func TestIncomeStatement(t *testing.T) {
	r := IncomeStatement(testKinds(), []PeriodColumn{{
		Title: "2025-06-30",
		Balances: map[string]int64{
			"Sales": -5000,
			"Rent":  2000,
		},
	}})

	assert.Equal(t, "Income statement", r.Title)

	// Income accounts are credit-normal and shown positive.
	income, ok := r.CellsForID("total_income")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(5000)}, income)

	expenses, ok := r.CellsForID("total_expenses")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(2000)}, expenses)

	net, ok := r.CellsForID("net_surplus")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(3000)}, net)
}

func TestIncomeStatementComparativeColumns(t *testing.T) {
	r := IncomeStatement(testKinds(), []PeriodColumn{
		{Title: "2025-06-30", Balances: map[string]int64{"Sales": -5000}},
		{Title: "2024-06-30", Balances: map[string]int64{"Rent": 1000}},
	})

	assert.Equal(t, []string{"2025-06-30", "2024-06-30"}, r.Columns)

	// An account absent from a column gets a blank cell there.
	node, ok := r.ByID("net_surplus")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(5000), Value(-1000)}, node.(*Computed).Cells)

	income := r.Nodes[0].(*Section)
	sales := income.Nodes[0].(*Row)
	assert.Equal(t, "Sales", sales.Text)
	assert.Equal(t, []Cell{Value(5000), BlankCell()}, sales.Cells)
}

func TestBalanceSheet(t *testing.T) {
	r := BalanceSheet(testKinds(),
		[]PeriodColumn{{
			Title: "2025-06-30",
			Balances: map[string]int64{
				"Cash at bank":                   15000,
				"Opening Balances":               -10000,
				ledger.AccumulatedSurplusAccount: -2000,
			},
		}},
		[]Cell{Value(3000)},
		[]Cell{Value(2000)},
	)

	assert.Equal(t, "Balance sheet", r.Title)
	assert.Equal(t, 0, len(r.Warnings))

	assets, ok := r.CellsForID("total_assets")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(15000)}, assets)

	cye, ok := r.CellsForID("current_year_earnings")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(3000)}, cye)

	retained, ok := r.CellsForID("retained_earnings")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(2000)}, retained)

	equity, ok := r.CellsForID("total_equity")
	assert.True(t, ok)
	assert.Equal(t, []Cell{Value(15000)}, equity)

	// No liabilities: the section auto-hides.
	_, ok = r.ByID("total_liabilities")
	assert.False(t, ok)
}

func TestBalanceSheetWarnsWhenUnbalanced(t *testing.T) {
	// An unclassified account breaks the accounting equation but the report
	// is still produced.
	r := BalanceSheet(testKinds(),
		[]PeriodColumn{{
			Title: "2025-06-30",
			Balances: map[string]int64{
				"Cash at bank": 15000,
				"Mystery":      -15000,
			},
		}},
		[]Cell{Value(0)},
		[]Cell{Value(0)},
	)

	assert.Equal(t, 1, len(r.Warnings))
	assert.Contains(t, r.Warnings[0], "2025-06-30")
}

func TestBalanceSheetRetainedEarningsAutoHides(t *testing.T) {
	r := BalanceSheet(testKinds(),
		[]PeriodColumn{{
			Title:    "2025-06-30",
			Balances: map[string]int64{"Cash at bank": 5000, "Opening Balances": -5000},
		}},
		[]Cell{Value(0)},
		[]Cell{Value(0)},
	)

	_, ok := r.ByID("retained_earnings")
	assert.False(t, ok)

	// Current year earnings stays even at zero.
	_, ok = r.ByID("current_year_earnings")
	assert.True(t, ok)
}
