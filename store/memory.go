// Package store provides implementations of the ledger persistence boundary.
package store

import (
	"context"
	"sync"

	"github.com/jdekker/daybook/ledger"
)

// Memory is an in-memory ledger store. It keeps transactions in canonical
// order and serializes structural writes behind a mutex, so balance reads
// always observe a consistent snapshot.
type Memory struct {
	mu    sync.RWMutex
	meta  ledger.Metadata
	kinds ledger.AccountKinds
	txns  []*ledger.Transaction
	lines []*ledger.StatementLine

	nextTransactionID int64
	nextPostingID     int64
	nextLineID        int64
}

// NewMemory creates an empty in-memory store with the given metadata.
func NewMemory(meta ledger.Metadata) *Memory {
	return &Memory{
		meta:              meta,
		kinds:             make(ledger.AccountKinds),
		nextTransactionID: 1,
		nextPostingID:     1,
		nextLineID:        1,
	}
}

var _ ledger.Store = (*Memory)(nil)

// Metadata implements ledger.Store.
func (m *Memory) Metadata(ctx context.Context) (ledger.Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta, nil
}

// SetAccountKinds assigns kind tags to an account, replacing existing tags.
func (m *Memory) SetAccountKinds(account string, kinds ...ledger.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds[account] = kinds
}

// AccountKinds implements ledger.Store.
func (m *Memory) AccountKinds(ctx context.Context) (ledger.AccountKinds, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(ledger.AccountKinds, len(m.kinds))
	for account, kinds := range m.kinds {
		out[account] = append([]ledger.Kind(nil), kinds...)
	}
	return out, nil
}

// Transactions implements ledger.Store.
func (m *Memory) Transactions(ctx context.Context) ([]*ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ledger.Transaction, len(m.txns))
	for i, t := range m.txns {
		out[i] = t.Clone()
	}
	return out, nil
}

// Postings implements ledger.Store.
func (m *Memory) Postings(ctx context.Context, filter ledger.PostingFilter) ([]*ledger.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var wanted map[string]bool
	if len(filter.Accounts) > 0 {
		wanted = make(map[string]bool, len(filter.Accounts))
		for _, account := range filter.Accounts {
			wanted[account] = true
		}
	}

	var out []*ledger.Posting
	for _, t := range m.txns {
		if filter.UpTo != nil && t.Date.After(*filter.UpTo) {
			// Transactions are in canonical date order.
			break
		}
		for _, p := range t.Postings {
			if wanted != nil && !wanted[p.Account] {
				continue
			}
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// StatementLines implements ledger.Store.
func (m *Memory) StatementLines(ctx context.Context) ([]*ledger.StatementLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ledger.StatementLine, len(m.lines))
	for i, l := range m.lines {
		cp := *l
		if l.PostingID != nil {
			id := *l.PostingID
			cp.PostingID = &id
		}
		out[i] = &cp
	}
	return out, nil
}

// AddStatementLine records an imported statement line and returns its id.
func (m *Memory) AddStatementLine(line *ledger.StatementLine) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *line
	cp.ID = m.nextLineID
	m.nextLineID++
	m.lines = append(m.lines, &cp)
	return cp.ID
}

// LinkStatementLine implements ledger.Store.
func (m *Memory) LinkStatementLine(ctx context.Context, lineID, postingID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.lines {
		if l.ID == lineID {
			id := postingID
			l.PostingID = &id
			return nil
		}
	}
	return &ledger.ReconciliationError{Reason: "statement line not found"}
}

// AddTransaction implements ledger.Store. It assigns the transaction id and
// posting ids in insertion order and mutates the argument so the caller sees
// the assigned ids.
func (m *Memory) AddTransaction(ctx context.Context, t *ledger.Transaction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t.ID = m.nextTransactionID
	m.nextTransactionID++
	m.renumber(t)

	m.txns = append(m.txns, t.Clone())
	ledger.SortTransactions(m.txns)
	return t.ID, nil
}

// UpdateTransaction implements ledger.Store.
func (m *Memory) UpdateTransaction(ctx context.Context, t *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.txns {
		if existing.ID == t.ID {
			renumbered := m.renumber(t)
			m.relink(renumbered)
			m.txns[i] = t.Clone()
			ledger.SortTransactions(m.txns)
			return nil
		}
	}
	return &ledger.TransactionNotFoundError{ID: t.ID}
}

// DeleteTransaction implements ledger.Store.
func (m *Memory) DeleteTransaction(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.txns {
		if existing.ID == id {
			m.txns = append(m.txns[:i], m.txns[i+1:]...)
			return nil
		}
	}
	return &ledger.TransactionNotFoundError{ID: id}
}

// renumber assigns posting ids so that ids are strictly increasing in
// insertion order. A posting inserted mid-sequence forces fresh ids for
// itself and every posting after it, keeping the (date, transaction id,
// posting id) order total. It returns a map of old posting ids to their
// replacements.
func (m *Memory) renumber(t *ledger.Transaction) map[int64]int64 {
	replaced := make(map[int64]int64)
	var lastID int64
	renumbering := false
	for _, p := range t.Postings {
		p.TransactionID = t.ID
		p.Date = t.Date
		if renumbering || p.ID == 0 || p.ID <= lastID {
			renumbering = true
			old := p.ID
			p.ID = m.nextPostingID
			m.nextPostingID++
			if old != 0 {
				replaced[old] = p.ID
			}
		} else if p.ID >= m.nextPostingID {
			m.nextPostingID = p.ID + 1
		}
		lastID = p.ID
	}
	return replaced
}

// relink repoints statement-line links at renumbered postings.
func (m *Memory) relink(replaced map[int64]int64) {
	if len(replaced) == 0 {
		return
	}
	for _, l := range m.lines {
		if l.PostingID != nil {
			if id, ok := replaced[*l.PostingID]; ok {
				l.PostingID = &id
			}
		}
	}
}
