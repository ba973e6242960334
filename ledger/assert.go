package ledger

import (
	"context"

	"github.com/jdekker/daybook/date"
)

// BalanceAssertion asserts that an account holds an exact signed quantity of
// a commodity at a date.
type BalanceAssertion struct {
	Date      date.Date `json:"date"`
	Account   string    `json:"account"`
	Quantity  int64     `json:"quantity"`
	Commodity string    `json:"commodity"`
}

// AssertionResult is the outcome of checking a single balance assertion.
type AssertionResult struct {
	Assertion BalanceAssertion
	Actual    int64
	Passed    bool
}

// Check computes the account's balance at the assertion date and compares it
// for exact equality. An assertion in any commodity other than the reporting
// commodity always fails, because balances are computed in the reporting
// commodity only.
func (s *Session) Check(ctx context.Context, a BalanceAssertion) (AssertionResult, error) {
	actual, err := s.RunningBalance(ctx, a.Account, a.Date)
	if err != nil {
		return AssertionResult{}, err
	}

	result := AssertionResult{Assertion: a, Actual: actual}
	if a.Commodity == s.meta.ReportingCommodity {
		result.Passed = actual == a.Quantity
	}
	return result, nil
}
