package ledger

import (
	"context"

	"github.com/jdekker/daybook/date"
)

// PostingFilter restricts an ordered posting retrieval. The zero value
// matches every posting.
type PostingFilter struct {
	// Accounts restricts the result to the given accounts. Empty means all.
	Accounts []string

	// UpTo is the inclusive upper-bound date. Nil means no bound.
	UpTo *date.Date
}

// Store is the ledger persistence boundary. Implementations must return
// postings in the canonical (date, transaction id, posting id) order, and
// must renumber subsequent postings when an edit inserts a posting
// mid-sequence so the order stays total.
//
// Structural writes (AddTransaction, UpdateTransaction, DeleteTransaction,
// reconciliation) must be serialized by the implementation; balance reads may
// run concurrently against a consistent snapshot.
type Store interface {
	// Metadata returns the ledger configuration.
	Metadata(ctx context.Context) (Metadata, error)

	// Transactions returns all transactions in canonical order.
	Transactions(ctx context.Context) ([]*Transaction, error)

	// Postings returns postings matching the filter in canonical order.
	Postings(ctx context.Context, filter PostingFilter) ([]*Posting, error)

	// StatementLines returns all imported statement lines.
	StatementLines(ctx context.Context) ([]*StatementLine, error)

	// AccountKinds returns the kind tags for every configured account.
	AccountKinds(ctx context.Context) (AccountKinds, error)

	// AddTransaction persists a transaction and returns its assigned id.
	// The caller validates; the store only assigns ids and ordering.
	AddTransaction(ctx context.Context, t *Transaction) (int64, error)

	// UpdateTransaction replaces a transaction in place, renumbering
	// postings as needed to preserve the canonical order.
	UpdateTransaction(ctx context.Context, t *Transaction) error

	// DeleteTransaction removes a transaction and its postings.
	DeleteTransaction(ctx context.Context, id int64) error

	// LinkStatementLine links a statement line to the posting that
	// reconciles it.
	LinkStatementLine(ctx context.Context, lineID, postingID int64) error
}
