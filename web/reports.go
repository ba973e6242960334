package web

import (
	"net/http"
	"strconv"

	"github.com/jdekker/daybook/date"
	"github.com/jdekker/daybook/ledger"
	"github.com/jdekker/daybook/report"
)

// handleGetReport handles GET requests to /api/reports/{kind}.
//
// Query parameters:
//   - end: Most recent period end in YYYY-MM-DD format. Defaults to the
//     financial-year end on or after today.
//   - start: Most recent period start. Defaults to the financial-year start.
//   - periods: Number of comparative periods, most recent first. Defaults to 1.
//   - unit: "months" or "years", the comparative shift. Defaults to months.
//
// Examples:
//   - GET /api/reports/balance-sheet
//   - GET /api/reports/income-statement?end=2025-06-30&periods=3&unit=years
//   - GET /api/reports/trial-balance?end=2025-06-30
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	_, session := s.snapshot()

	kind, err := report.ParseKind(r.PathValue("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := report.Request{Kind: kind}
	if param := r.URL.Query().Get("end"); param != "" {
		if req.End, err = date.Parse(param); err != nil {
			http.Error(w, "invalid end date (expected YYYY-MM-DD): "+param, http.StatusBadRequest)
			return
		}
	}
	if param := r.URL.Query().Get("start"); param != "" {
		if req.Start, err = date.Parse(param); err != nil {
			http.Error(w, "invalid start date (expected YYYY-MM-DD): "+param, http.StatusBadRequest)
			return
		}
	}
	if param := r.URL.Query().Get("periods"); param != "" {
		periods, err := strconv.Atoi(param)
		if err != nil || periods < 1 {
			http.Error(w, "invalid periods: "+param, http.StatusBadRequest)
			return
		}
		req.Periods = periods
	}
	if param := r.URL.Query().Get("unit"); param != "" {
		if req.Unit, err = date.ParseUnit(param); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := report.Compute(r.Context(), session, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSONResponse(w, result)
}

// TransactionsResponse is the JSON response structure for the transactions
// endpoint.
type TransactionsResponse struct {
	Transactions []*ledger.Transaction `json:"transactions"`
}

// handleGetTransactions handles GET requests to /api/transactions. Report row
// links point here. Transactions are returned most recent first.
//
// Query parameters:
//   - account: Only transactions with a posting to this account.
//   - upTo: Only transactions dated on or before this date.
func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	_, session := s.snapshot()

	txns, err := session.Store().Transactions(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if param := r.URL.Query().Get("upTo"); param != "" {
		upTo, err := date.Parse(param)
		if err != nil {
			http.Error(w, "invalid upTo date (expected YYYY-MM-DD): "+param, http.StatusBadRequest)
			return
		}
		filtered := txns[:0]
		for _, t := range txns {
			if !t.Date.After(upTo) {
				filtered = append(filtered, t)
			}
		}
		txns = filtered
	}

	if account := r.URL.Query().Get("account"); account != "" {
		filtered := txns[:0]
		for _, t := range txns {
			for _, p := range t.Postings {
				if p.Account == account {
					filtered = append(filtered, t)
					break
				}
			}
		}
		txns = filtered
	}

	ledger.SortTransactionsForDisplay(txns)
	writeJSONResponse(w, &TransactionsResponse{Transactions: txns})
}

// AssertionsResponse is the JSON response structure for the assertions
// endpoint.
type AssertionsResponse struct {
	Results []AssertionResult `json:"results"`
}

// AssertionResult is one checked balance assertion.
type AssertionResult struct {
	Assertion ledger.BalanceAssertion `json:"assertion"`
	Actual    int64                   `json:"actual"`
	Passed    bool                    `json:"passed"`
}

// handleGetAssertions handles GET requests to /api/assertions, checking every
// assertion in the ledger file against computed balances.
func (s *Server) handleGetAssertions(w http.ResponseWriter, r *http.Request) {
	file, session := s.snapshot()

	results := make([]AssertionResult, 0, len(file.Assertions))
	for _, a := range file.Assertions {
		result, err := session.Check(r.Context(), a)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		results = append(results, AssertionResult{
			Assertion: result.Assertion,
			Actual:    result.Actual,
			Passed:    result.Passed,
		})
	}
	writeJSONResponse(w, &AssertionsResponse{Results: results})
}
