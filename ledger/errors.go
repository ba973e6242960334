package ledger

import (
	"fmt"

	"github.com/jdekker/daybook/date"
)

// MissingCostBaseError is returned when a non-reporting commodity occurs
// without a parseable cost base.
type MissingCostBaseError struct {
	Commodity string
}

func (e *MissingCostBaseError) Error() string {
	return fmt.Sprintf("commodity %q has no cost base in the reporting commodity", e.Commodity)
}

// InvalidQuantityError is returned when a quantity string cannot be
// represented exactly as a fixed-point integer.
type InvalidQuantityError struct {
	Value  string
	Reason string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %q: %s", e.Value, e.Reason)
}

// UnbalancedTransactionError is returned at the write boundary when the
// cost-basis-converted postings of a transaction do not sum to zero.
type UnbalancedTransactionError struct {
	Date        date.Date
	Description string
	Residual    int64 // leftover cost in the reporting commodity
}

func (e *UnbalancedTransactionError) Error() string {
	return fmt.Sprintf("%s: transaction %q does not balance (residual %d)",
		e.Date, e.Description, e.Residual)
}

// MalformedTransactionError is returned when a transaction violates the
// structural model, e.g. fewer than two postings.
type MalformedTransactionError struct {
	Date        date.Date
	Description string
	Reason      string
}

func (e *MalformedTransactionError) Error() string {
	return fmt.Sprintf("%s: transaction %q: %s", e.Date, e.Description, e.Reason)
}

// TransactionNotFoundError is returned when a transaction id does not exist
// in the store.
type TransactionNotFoundError struct {
	ID int64
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction %d not found", e.ID)
}

// ReconciliationError is returned when statement lines cannot be reconciled
// as requested.
type ReconciliationError struct {
	Reason string
}

func (e *ReconciliationError) Error() string {
	return "cannot reconcile statement lines: " + e.Reason
}
