package ledger

import "sort"

// Kind classifies an account for report inclusion and sign rules. Kinds are
// externally assigned tags; plugins may define their own.
type Kind string

const (
	KindAsset     Kind = "asset"
	KindLiability Kind = "liability"
	KindEquity    Kind = "equity"
	KindIncome    Kind = "income"
	KindExpense   Kind = "expense"
)

// Synthetic accounts posted by the reporting pipeline. They never exist in
// the persisted ledger.
const (
	UnclassifiedDebitsAccount  = "Unclassified Statement Line Debits"
	UnclassifiedCreditsAccount = "Unclassified Statement Line Credits"
	AccumulatedSurplusAccount  = "Accumulated surplus (deficit)"
	CurrentYearEarningsRow     = "Current Year Earnings"
	RetainedEarningsRow        = "Retained Earnings"
)

// AccountKinds maps account names to their assigned kinds.
type AccountKinds map[string][]Kind

// Is reports whether the account carries the given kind.
func (ak AccountKinds) Is(account string, kind Kind) bool {
	for _, k := range ak[account] {
		if k == kind {
			return true
		}
	}
	return false
}

// IsAny reports whether the account carries any of the given kinds.
func (ak AccountKinds) IsAny(account string, kinds ...Kind) bool {
	for _, k := range kinds {
		if ak.Is(account, k) {
			return true
		}
	}
	return false
}

// Accounts returns the accounts tagged with the given kind, sorted by name.
func (ak AccountKinds) Accounts(kind Kind) []string {
	var accounts []string
	for account := range ak {
		if ak.Is(account, kind) {
			accounts = append(accounts, account)
		}
	}
	sort.Strings(accounts)
	return accounts
}

// Classified reports whether the account carries at least one of the five
// statement kinds. Unclassified accounts with nonzero balances break the
// accounting equation on the balance sheet.
func (ak AccountKinds) Classified(account string) bool {
	return ak.IsAny(account, KindAsset, KindLiability, KindEquity, KindIncome, KindExpense)
}
