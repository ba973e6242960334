package ledger

import (
	"context"
	"fmt"

	"github.com/jdekker/daybook/date"
)

// Session binds a ledger store to its cached metadata and running-balance
// cache. Every computation takes an explicit session; there is no ambient
// ledger state. Balance reads through one session are safe for concurrent
// use, but structural writes through one session must not race with writes
// through another.
type Session struct {
	store Store
	meta  Metadata
	cache *balanceCache
}

// NewSession opens a session on the store, reading and caching the ledger
// metadata.
func NewSession(ctx context.Context, store Store) (*Session, error) {
	meta, err := store.Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger metadata: %w", err)
	}
	return &Session{
		store: store,
		meta:  meta,
		cache: newBalanceCache(),
	}, nil
}

// Store returns the underlying store.
func (s *Session) Store() Store { return s.store }

// Metadata returns the cached ledger metadata.
func (s *Session) Metadata() Metadata { return s.meta }

// AddTransaction validates and persists a transaction. Unbalanced or
// structurally invalid transactions are rejected before they reach the store.
func (s *Session) AddTransaction(ctx context.Context, t *Transaction) (int64, error) {
	if err := t.Validate(s.meta); err != nil {
		return 0, err
	}

	id, err := s.store.AddTransaction(ctx, t)
	if err != nil {
		return 0, err
	}
	for _, p := range t.Postings {
		s.cache.invalidate(p.Account, t.Date)
	}
	return id, nil
}

// UpdateTransaction validates and replaces a transaction. The cache is
// invalidated for every affected account from the earlier of the old and new
// dates.
func (s *Session) UpdateTransaction(ctx context.Context, t *Transaction) error {
	if err := t.Validate(s.meta); err != nil {
		return err
	}

	old, err := s.findTransaction(ctx, t.ID)
	if err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return err
	}

	from := t.Date
	if old.Date.Before(from) {
		from = old.Date
	}
	for _, p := range old.Postings {
		s.cache.invalidate(p.Account, from)
	}
	for _, p := range t.Postings {
		s.cache.invalidate(p.Account, from)
	}
	return nil
}

// DeleteTransaction removes a transaction and invalidates the cache for its
// accounts from its date onward.
func (s *Session) DeleteTransaction(ctx context.Context, id int64) error {
	old, err := s.findTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	for _, p := range old.Postings {
		s.cache.invalidate(p.Account, old.Date)
	}
	return nil
}

func (s *Session) findTransaction(ctx context.Context, id int64) (*Transaction, error) {
	txns, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, &TransactionNotFoundError{ID: id}
}

// ReconcileTransfer reconciles two unreconciled statement lines as a transfer
// between their source accounts. The lines must hold equal and opposite
// quantities of the same commodity in different accounts. The synthesized
// transaction posts exactly the two source accounts; no suspense account is
// involved.
func (s *Session) ReconcileTransfer(ctx context.Context, a, b *StatementLine) (*Transaction, error) {
	switch {
	case a.Reconciled() || b.Reconciled():
		return nil, &ReconciliationError{Reason: "line already reconciled"}
	case a.Commodity != b.Commodity:
		return nil, &ReconciliationError{Reason: "commodities differ"}
	case a.Quantity != -b.Quantity:
		return nil, &ReconciliationError{Reason: "quantities are not equal and opposite"}
	case a.SourceAccount == b.SourceAccount:
		return nil, &ReconciliationError{Reason: "lines share a source account"}
	}

	dt := a.Date
	if b.Date.After(dt) {
		dt = b.Date
	}
	t := &Transaction{
		Date:        dt,
		Description: "Transfer",
		Postings: []*Posting{
			{Account: a.SourceAccount, Quantity: a.Quantity, Commodity: a.Commodity, Description: a.Description},
			{Account: b.SourceAccount, Quantity: b.Quantity, Commodity: b.Commodity, Description: b.Description},
		},
	}

	if _, err := s.AddTransaction(ctx, t); err != nil {
		return nil, err
	}
	if err := s.store.LinkStatementLine(ctx, a.ID, t.Postings[0].ID); err != nil {
		return nil, err
	}
	if err := s.store.LinkStatementLine(ctx, b.ID, t.Postings[1].ID); err != nil {
		return nil, err
	}
	return t, nil
}

// DefaultReportDate returns the financial-year end on or after today, the
// default date for reports when none is given.
func (s *Session) DefaultReportDate() date.Date {
	return date.FinancialYearEnd(date.Today(), s.meta.EOFY)
}
