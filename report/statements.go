package report

import (
	"fmt"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/jdekker/daybook/ledger"
)

// PeriodColumn is one comparative column of a statement: a title and the
// account balances backing it, in the reporting commodity.
type PeriodColumn struct {
	Title    string
	Balances map[string]int64
}

// entriesForKind builds the Row nodes for every account tagged with the kind,
// aligned across the comparative columns by account name. Accounts whose
// balance is zero in every column are dropped; a column in which the account
// has no balance gets a blank cell. Credit-normal kinds (liability, equity,
// income) are negated for display.
func entriesForKind(kinds ledger.AccountKinds, kind ledger.Kind, negate bool, columns []PeriodColumn) []Node {
	var accounts []string
	for _, column := range columns {
		for account := range column.Balances {
			if kinds.Is(account, kind) && !slices.Contains(accounts, account) {
				accounts = append(accounts, account)
			}
		}
	}
	sort.Strings(accounts)

	nodes := make([]Node, 0, len(accounts))
	for _, account := range accounts {
		cells := make([]Cell, len(columns))
		for i, column := range columns {
			balance, ok := column.Balances[account]
			if !ok || balance == 0 {
				cells[i] = BlankCell()
				continue
			}
			if negate {
				balance = -balance
			}
			cells[i] = Value(balance)
		}
		nodes = append(nodes, &Row{
			Text:    account,
			Cells:   cells,
			Visible: true,
			Link:    "/transactions/" + account,
		})
	}
	return nodes
}

// TrialBalance builds a two-column debit/credit trial balance from a single
// balance snapshot. Every account with a nonzero balance is listed, whether
// classified or not.
func TrialBalance(title string, balances map[string]int64) *Report {
	accounts := make([]string, 0, len(balances))
	for account := range balances {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	section := &Section{ID: "accounts", Visible: true}
	for _, account := range accounts {
		balance := balances[account]
		var dr, cr int64
		if balance >= 0 {
			dr = balance
		} else {
			cr = -balance
		}
		section.Nodes = append(section.Nodes, &Row{
			Text:    account,
			Cells:   []Cell{Value(dr), Value(cr)},
			Visible: true,
			Link:    "/transactions/" + account,
		})
	}
	section.Nodes = append(section.Nodes, &Subtotal{
		Text:     "Totals",
		ID:       "totals",
		Visible:  true,
		Heading:  true,
		Bordered: true,
	})

	r := &Report{
		Title:   title,
		Columns: []string{"Dr", "Cr"},
		Nodes:   []Node{section},
	}
	r.Calculate()
	return r
}

// IncomeStatement builds a comparative income statement from post-
// reclassification balances: income and expense sections with subtotals and
// a net surplus (deficit) line.
func IncomeStatement(kinds ledger.AccountKinds, columns []PeriodColumn) *Report {
	titles := make([]string, len(columns))
	for i, column := range columns {
		titles[i] = column.Title
	}

	income := &Section{Title: "Income", Visible: true}
	income.Nodes = append(income.Nodes, entriesForKind(kinds, ledger.KindIncome, true, columns)...)
	income.Nodes = append(income.Nodes, &Subtotal{
		Text:     "Total income",
		ID:       "total_income",
		Visible:  true,
		Heading:  true,
		Bordered: true,
	})

	expenses := &Section{Title: "Expenses", Visible: true}
	expenses.Nodes = append(expenses.Nodes, entriesForKind(kinds, ledger.KindExpense, false, columns)...)
	expenses.Nodes = append(expenses.Nodes, &Subtotal{
		Text:     "Total expenses",
		ID:       "total_expenses",
		Visible:  true,
		Heading:  true,
		Bordered: true,
	})

	r := &Report{
		Title:   "Income statement",
		Columns: titles,
		Nodes: []Node{
			income,
			&Spacer{},
			expenses,
			&Spacer{},
			&Computed{
				Text:     "Net surplus (deficit)",
				ID:       "net_surplus",
				Visible:  true,
				Heading:  true,
				Bordered: true,
				Fn:       subtractCells("total_income", "total_expenses"),
			},
		},
	}
	r.Calculate()
	return r
}

// subtractCells derives a computed row as the column-wise difference of two
// already-resolved nodes.
func subtractCells(minuendID, subtrahendID string) func(*Report) []Cell {
	return func(r *Report) []Cell {
		minuend, _ := r.CellsForID(minuendID)
		subtrahend, _ := r.CellsForID(subtrahendID)

		cells := make([]Cell, len(r.Columns))
		for i := range cells {
			var value int64
			if i < len(minuend) && !minuend[i].Blank {
				value = minuend[i].Quantity
			}
			if i < len(subtrahend) && !subtrahend[i].Blank {
				value -= subtrahend[i].Quantity
			}
			cells[i] = Value(value)
		}
		return cells
	}
}

// BalanceSheet builds a comparative balance sheet. The net surplus of each
// column is injected as "Current Year Earnings" and the sign-inverted
// accumulated surplus as "Retained Earnings" under Equity. A column whose
// totals violate the accounting equation adds a warning; the report is still
// produced.
func BalanceSheet(kinds ledger.AccountKinds, columns []PeriodColumn, netSurplus, retained []Cell) *Report {
	titles := make([]string, len(columns))
	for i, column := range columns {
		titles[i] = column.Title
	}

	assets := &Section{Title: "Assets", Visible: true}
	assets.Nodes = append(assets.Nodes, entriesForKind(kinds, ledger.KindAsset, false, columns)...)
	assets.Nodes = append(assets.Nodes, &Subtotal{
		Text:     "Total assets",
		ID:       "total_assets",
		Visible:  true,
		Heading:  true,
		Bordered: true,
	})

	liabilities := &Section{Title: "Liabilities", Visible: true, AutoHide: true}
	liabilities.Nodes = append(liabilities.Nodes, entriesForKind(kinds, ledger.KindLiability, true, columns)...)
	liabilities.Nodes = append(liabilities.Nodes, &Subtotal{
		Text:     "Total liabilities",
		ID:       "total_liabilities",
		Visible:  true,
		Heading:  true,
		Bordered: true,
	})

	equity := &Section{Title: "Equity", Visible: true}
	equity.Nodes = append(equity.Nodes, entriesForKind(kinds, ledger.KindEquity, true, columns)...)
	equity.Nodes = append(equity.Nodes, &Row{
		Text:    ledger.CurrentYearEarningsRow,
		Cells:   netSurplus,
		ID:      "current_year_earnings",
		Visible: true,
		Link:    "/income-statement",
	})
	equity.Nodes = append(equity.Nodes, &Row{
		Text:     ledger.RetainedEarningsRow,
		Cells:    retained,
		ID:       "retained_earnings",
		Visible:  true,
		AutoHide: true,
	})
	equity.Nodes = append(equity.Nodes, &Subtotal{
		Text:     "Total equity",
		ID:       "total_equity",
		Visible:  true,
		Heading:  true,
		Bordered: true,
	})

	r := &Report{
		Title:   "Balance sheet",
		Columns: titles,
		Nodes: []Node{
			assets,
			&Spacer{},
			liabilities,
			&Spacer{},
			equity,
		},
	}
	r.Calculate()

	totalAssets, _ := r.CellsForID("total_assets")
	totalLiabilities, _ := r.CellsForID("total_liabilities")
	totalEquity, _ := r.CellsForID("total_equity")
	for i := range titles {
		diff := cellQuantity(totalAssets, i) - cellQuantity(totalLiabilities, i) - cellQuantity(totalEquity, i)
		if diff != 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"balance sheet does not balance as of %s: assets differ from liabilities plus equity; check for unclassified accounts",
				titles[i]))
		}
	}
	r.AutoHide()
	return r
}

func cellQuantity(cells []Cell, i int) int64 {
	if i >= len(cells) || cells[i].Blank {
		return 0
	}
	return cells[i].Quantity
}
