package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/jdekker/daybook/date"
)

// runningEntry is one cached point of an account's running balance, attached
// to a posting in canonical order. The running value is the cumulative
// cost-basis-converted sum up to and including that posting.
type runningEntry struct {
	date          date.Date
	transactionID int64
	postingID     int64
	running       int64
}

// balanceCache memoizes running balances per account. Invalidation is an
// explicit per-account watermark: any structural change to an account's
// postings at or after a date marks the account dirty, and the next read
// repairs it by a full ordered replay. Repair is idempotent; repeated calls
// with no intervening writes do nothing.
//
// The mutex serializes repair against reads and invalidation, so concurrent
// balance queries through the same session are safe.
type balanceCache struct {
	mu      sync.Mutex
	entries map[string][]runningEntry
	dirty   map[string]date.Date
	primed  bool
}

func newBalanceCache() *balanceCache {
	return &balanceCache{
		entries: make(map[string][]runningEntry),
		dirty:   make(map[string]date.Date),
	}
}

// invalidate lowers the account's watermark to the given date.
func (c *balanceCache) invalidate(account string, from date.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.dirty[account]; !ok || from.Before(existing) {
		c.dirty[account] = from
	}
}

// at returns the running balance attached to the latest cached posting dated
// on or before the cutoff, or zero when the account has no postings by then.
// The caller must hold the cache mutex.
func (c *balanceCache) at(account string, cutoff date.Date) int64 {
	entries := c.entries[account]
	// First entry dated after the cutoff; its predecessor holds the balance.
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].date.After(cutoff)
	})
	if i == 0 {
		return 0
	}
	return entries[i-1].running
}

// repairBalances rebuilds the running-balance cache for every dirty account
// (or all accounts on first use) by replaying the full ordered posting
// history in one pass. The caller must hold the cache mutex.
func (s *Session) repairBalances(ctx context.Context) error {
	if s.cache.primed && len(s.cache.dirty) == 0 {
		return nil
	}

	var filter PostingFilter
	if s.cache.primed {
		filter.Accounts = make([]string, 0, len(s.cache.dirty))
		for account := range s.cache.dirty {
			filter.Accounts = append(filter.Accounts, account)
		}
		sort.Strings(filter.Accounts)
	}

	postings, err := s.store.Postings(ctx, filter)
	if err != nil {
		return err
	}

	rebuilt := make(map[string][]runningEntry)
	running := make(map[string]int64)
	for _, p := range postings {
		cost, err := AsCost(p.Quantity, p.Commodity, s.meta)
		if err != nil {
			return err
		}
		running[p.Account] += cost
		rebuilt[p.Account] = append(rebuilt[p.Account], runningEntry{
			date:          p.Date,
			transactionID: p.TransactionID,
			postingID:     p.ID,
			running:       running[p.Account],
		})
	}

	if s.cache.primed {
		// Only the dirty accounts were replayed; splice them in. A dirty
		// account with no remaining postings loses its entries.
		for account := range s.cache.dirty {
			if entries, ok := rebuilt[account]; ok {
				s.cache.entries[account] = entries
			} else {
				delete(s.cache.entries, account)
			}
		}
	} else {
		s.cache.entries = rebuilt
	}
	s.cache.dirty = make(map[string]date.Date)
	s.cache.primed = true
	return nil
}

// RunningBalance returns the account's cost-basis-converted running balance
// as of the cutoff date.
func (s *Session) RunningBalance(ctx context.Context, account string, asOf date.Date) (int64, error) {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	if err := s.repairBalances(ctx); err != nil {
		return 0, err
	}
	return s.cache.at(account, asOf), nil
}

// Balances returns every account's running balance as of the cutoff date, in
// the reporting commodity. Zero balances are dropped.
func (s *Session) Balances(ctx context.Context, asOf date.Date) (map[string]int64, error) {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	if err := s.repairBalances(ctx); err != nil {
		return nil, err
	}

	balances := make(map[string]int64, len(s.cache.entries))
	for account := range s.cache.entries {
		if balance := s.cache.at(account, asOf); balance != 0 {
			balances[account] = balance
		}
	}
	return balances, nil
}

// CommodityBalances returns the account's raw per-commodity balance as of the
// cutoff date, without cost conversion.
func (s *Session) CommodityBalances(ctx context.Context, account string, asOf date.Date) (Balance, error) {
	postings, err := s.store.Postings(ctx, PostingFilter{
		Accounts: []string{account},
		UpTo:     &asOf,
	})
	if err != nil {
		return nil, err
	}

	balance := make(Balance)
	for _, p := range postings {
		balance.Add(p.Commodity, p.Quantity)
	}
	balance.Clean()
	return balance, nil
}
