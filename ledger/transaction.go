package ledger

import (
	"sort"

	"github.com/jdekker/daybook/date"
)

// Posting is one debit (positive) or credit (negative) line within a
// transaction.
type Posting struct {
	ID            int64     `json:"id"`
	TransactionID int64     `json:"transactionId"`
	Account       string    `json:"account"`
	Quantity      int64     `json:"quantity"`
	Commodity     string    `json:"commodity"`
	Description   string    `json:"description,omitempty"`
	Date          date.Date `json:"date"` // denormalized from the transaction for ordering
}

// Transaction is a dated set of two or more postings whose converted costs
// sum to zero.
type Transaction struct {
	ID          int64      `json:"id"`
	Date        date.Date  `json:"date"`
	Description string     `json:"description"`
	Postings    []*Posting `json:"postings"`
}

// Clone returns a deep copy of the transaction.
func (t *Transaction) Clone() *Transaction {
	out := &Transaction{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Postings:    make([]*Posting, len(t.Postings)),
	}
	for i, p := range t.Postings {
		cp := *p
		out.Postings[i] = &cp
	}
	return out
}

// Validate checks the structural model and the accounting equation for a
// transaction. It returns a MalformedTransactionError for structural
// violations and an UnbalancedTransactionError when the cost-basis-converted
// postings do not sum to zero.
func (t *Transaction) Validate(meta Metadata) error {
	if len(t.Postings) < 2 {
		return &MalformedTransactionError{
			Date:        t.Date,
			Description: t.Description,
			Reason:      "fewer than two postings",
		}
	}

	var residual int64
	for _, p := range t.Postings {
		if p.Quantity > MaxQuantity || p.Quantity < -MaxQuantity {
			return &InvalidQuantityError{
				Value:  FormatQuantity(p.Quantity, meta.DecimalPlaces),
				Reason: "exceeds safe integer range",
			}
		}
		cost, err := AsCost(p.Quantity, p.Commodity, meta)
		if err != nil {
			return err
		}
		residual += cost
	}
	if residual != 0 {
		return &UnbalancedTransactionError{
			Date:        t.Date,
			Description: t.Description,
			Residual:    residual,
		}
	}
	return nil
}

// SortTransactions sorts transactions into the canonical (date, id) order.
// Postings within a transaction keep their insertion order.
func SortTransactions(txns []*Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if c := txns[i].Date.Compare(txns[j].Date); c != 0 {
			return c < 0
		}
		return txns[i].ID < txns[j].ID
	})
}

// SortTransactionsForDisplay sorts transactions by (date desc, id desc), the
// order report consumers present them in.
func SortTransactionsForDisplay(txns []*Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if c := txns[i].Date.Compare(txns[j].Date); c != 0 {
			return c > 0
		}
		return txns[i].ID > txns[j].ID
	})
}

// postingBefore reports whether a precedes b in the canonical
// (date, transaction id, posting id) total order.
func postingBefore(a, b *Posting) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c < 0
	}
	if a.TransactionID != b.TransactionID {
		return a.TransactionID < b.TransactionID
	}
	return a.ID < b.ID
}

// SortPostings sorts postings into the canonical total order.
func SortPostings(postings []*Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		return postingBefore(postings[i], postings[j])
	})
}

// StatementLine is an imported bank statement line. A line with no linked
// posting is unreconciled and is surfaced through a suspense account by the
// reporting pipeline.
type StatementLine struct {
	ID            int64     `json:"id"`
	SourceAccount string    `json:"sourceAccount"`
	Date          date.Date `json:"date"`
	Description   string    `json:"description"`
	Quantity      int64     `json:"quantity"`
	Commodity     string    `json:"commodity"`
	PostingID     *int64    `json:"postingId,omitempty"`
}

// Reconciled reports whether the line is linked to a posting.
func (l *StatementLine) Reconciled() bool { return l.PostingID != nil }
