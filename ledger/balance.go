package ledger

import "sort"

// Balance is the per-commodity balance of a single account, keyed by the full
// commodity string including any cost base.
type Balance map[string]int64

// Add adds a quantity of a commodity to the balance.
func (b Balance) Add(commodity string, quantity int64) {
	b[commodity] += quantity
}

// Clone returns an independent copy of the balance.
func (b Balance) Clone() Balance {
	out := make(Balance, len(b))
	for commodity, quantity := range b {
		out[commodity] = quantity
	}
	return out
}

// Clean removes zero entries from the balance.
func (b Balance) Clean() {
	for commodity, quantity := range b {
		if quantity == 0 {
			delete(b, commodity)
		}
	}
}

// Commodities returns the commodities present in the balance, sorted.
func (b Balance) Commodities() []string {
	commodities := make([]string, 0, len(b))
	for commodity := range b {
		commodities = append(commodities, commodity)
	}
	sort.Strings(commodities)
	return commodities
}
