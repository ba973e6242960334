package web

import (
	"net/http"

	"github.com/jdekker/daybook/date"
)

// BalanceEntry is one commodity's raw balance within an account.
type BalanceEntry struct {
	Commodity string `json:"commodity"`
	Quantity  int64  `json:"quantity"`
}

// BalancesResponse is the JSON response structure for the balances endpoint.
type BalancesResponse struct {
	Account  string         `json:"account"`
	Date     date.Date      `json:"date"`
	Balances []BalanceEntry `json:"balances"`
	Total    int64          `json:"total"`
}

// handleGetBalances handles GET requests to /api/balances. Returns an
// account's per-commodity balances without cost conversion, plus the
// cost-converted total in the reporting commodity.
//
// Query parameters:
//   - account: Account name (required).
//   - date: Cutoff in YYYY-MM-DD format. Defaults to the financial-year end
//     on or after today.
//
// Examples:
//   - GET /api/balances?account=Cash%20at%20bank
//   - GET /api/balances?account=Foreign%20cash&date=2025-06-30
func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	_, session := s.snapshot()

	account := r.URL.Query().Get("account")
	if account == "" {
		http.Error(w, "missing account parameter", http.StatusBadRequest)
		return
	}

	asOf := session.DefaultReportDate()
	if param := r.URL.Query().Get("date"); param != "" {
		var err error
		if asOf, err = date.Parse(param); err != nil {
			http.Error(w, "invalid date (expected YYYY-MM-DD): "+param, http.StatusBadRequest)
			return
		}
	}

	balance, err := session.CommodityBalances(r.Context(), account, asOf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	total, err := session.RunningBalance(r.Context(), account, asOf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entries := make([]BalanceEntry, 0, len(balance))
	for _, commodity := range balance.Commodities() {
		entries = append(entries, BalanceEntry{Commodity: commodity, Quantity: balance[commodity]})
	}

	writeJSONResponse(w, &BalancesResponse{
		Account:  account,
		Date:     asOf,
		Balances: entries,
		Total:    total,
	})
}
