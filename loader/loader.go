// Package loader reads a JSON ledger file into an in-memory store. A ledger
// file carries the reporting metadata, the account classifications, the
// transactions with decimal-string quantities, imported statement lines and
// balance assertions.
//
// Example usage:
//
//	loader := loader.New()
//	ledgerFile, err := loader.Load(ctx, "ledger.json")
//
//	// Skip transaction validation, e.g. for known-unbalanced fixtures:
//	loader := loader.New(loader.WithoutValidation())
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jdekker/daybook/date"
	"github.com/jdekker/daybook/ledger"
	"github.com/jdekker/daybook/store"
	"github.com/jdekker/daybook/telemetry"
)

// Loader reads ledger files. Configure it with functional options passed
// to New.
type Loader struct {
	// Validate determines whether each transaction is checked for balance
	// before it is stored. When false, unbalanced transactions load and
	// surface later as balance-sheet warnings.
	Validate bool
}

// Option configures how ledger files are loaded.
type Option func(*Loader)

// WithoutValidation loads transactions without checking that their postings
// balance.
func WithoutValidation() Option {
	return func(l *Loader) {
		l.Validate = false
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{Validate: true}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// File is a fully loaded ledger file.
type File struct {
	Store      *store.Memory
	Assertions []ledger.BalanceAssertion
}

// ledgerFile mirrors the on-disk JSON shape. Quantities are decimal strings
// so ledger files stay independent of the store's fixed-point scale.
type ledgerFile struct {
	ReportingCommodity string                `json:"reportingCommodity"`
	DecimalPlaces      int32                 `json:"decimalPlaces"`
	EOFY               date.MonthDay         `json:"eofy"`
	Accounts           []accountRecord       `json:"accounts"`
	Transactions       []transactionRecord   `json:"transactions"`
	StatementLines     []statementLineRecord `json:"statementLines"`
	Assertions         []assertionRecord     `json:"assertions"`
}

type accountRecord struct {
	Name  string        `json:"name"`
	Kinds []ledger.Kind `json:"kinds"`
}

type transactionRecord struct {
	Date        date.Date       `json:"date"`
	Description string          `json:"description"`
	Postings    []postingRecord `json:"postings"`
}

type postingRecord struct {
	Account     string `json:"account"`
	Quantity    string `json:"quantity"`
	Commodity   string `json:"commodity"`
	Description string `json:"description,omitempty"`
}

type statementLineRecord struct {
	SourceAccount string    `json:"sourceAccount"`
	Date          date.Date `json:"date"`
	Description   string    `json:"description"`
	Quantity      string    `json:"quantity"`
	Commodity     string    `json:"commodity"`
}

type assertionRecord struct {
	Date      date.Date `json:"date"`
	Account   string    `json:"account"`
	Quantity  string    `json:"quantity"`
	Commodity string    `json:"commodity"`
}

// Load reads and decodes a ledger file into a fresh in-memory store.
func (l *Loader) Load(ctx context.Context, filename string) (*File, error) {
	timer := telemetry.FromContext(ctx).Start("Load ledger")
	defer timer.End()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return l.LoadBytes(ctx, filename, data)
}

// LoadBytes decodes an already-read ledger file.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) (*File, error) {
	var raw ledgerFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	if raw.ReportingCommodity == "" {
		return nil, fmt.Errorf("%s: reportingCommodity is required", filename)
	}
	if raw.DecimalPlaces < 0 {
		return nil, fmt.Errorf("%s: decimalPlaces must not be negative", filename)
	}

	meta := ledger.Metadata{
		ReportingCommodity: raw.ReportingCommodity,
		DecimalPlaces:      raw.DecimalPlaces,
		EOFY:               raw.EOFY,
	}
	mem := store.NewMemory(meta)

	for _, account := range raw.Accounts {
		mem.SetAccountKinds(account.Name, account.Kinds...)
	}

	for i, record := range raw.Transactions {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t, err := l.transaction(record, meta)
		if err != nil {
			return nil, fmt.Errorf("%s: transaction %d (%s): %w", filename, i, record.Description, err)
		}
		if _, err := mem.AddTransaction(ctx, t); err != nil {
			return nil, fmt.Errorf("%s: transaction %d (%s): %w", filename, i, record.Description, err)
		}
	}

	for i, record := range raw.StatementLines {
		quantity, err := ledger.ParseQuantity(record.Quantity, meta.DecimalPlaces)
		if err != nil {
			return nil, fmt.Errorf("%s: statement line %d (%s): %w", filename, i, record.Description, err)
		}
		mem.AddStatementLine(&ledger.StatementLine{
			SourceAccount: record.SourceAccount,
			Date:          record.Date,
			Description:   record.Description,
			Quantity:      quantity,
			Commodity:     record.Commodity,
		})
	}

	assertions := make([]ledger.BalanceAssertion, 0, len(raw.Assertions))
	for i, record := range raw.Assertions {
		quantity, err := ledger.ParseQuantity(record.Quantity, meta.DecimalPlaces)
		if err != nil {
			return nil, fmt.Errorf("%s: assertion %d (%s): %w", filename, i, record.Account, err)
		}
		assertions = append(assertions, ledger.BalanceAssertion{
			Date:      record.Date,
			Account:   record.Account,
			Quantity:  quantity,
			Commodity: record.Commodity,
		})
	}

	return &File{Store: mem, Assertions: assertions}, nil
}

// Session opens a reporting session over the loaded store.
func (f *File) Session(ctx context.Context) (*ledger.Session, error) {
	return ledger.NewSession(ctx, f.Store)
}

func (l *Loader) transaction(record transactionRecord, meta ledger.Metadata) (*ledger.Transaction, error) {
	t := &ledger.Transaction{
		Date:        record.Date,
		Description: record.Description,
		Postings:    make([]*ledger.Posting, 0, len(record.Postings)),
	}
	for _, p := range record.Postings {
		quantity, err := ledger.ParseQuantity(p.Quantity, meta.DecimalPlaces)
		if err != nil {
			return nil, fmt.Errorf("posting %s: %w", p.Account, err)
		}
		t.Postings = append(t.Postings, &ledger.Posting{
			Account:     p.Account,
			Quantity:    quantity,
			Commodity:   p.Commodity,
			Description: p.Description,
			Date:        record.Date,
		})
	}
	if l.Validate {
		if err := t.Validate(meta); err != nil {
			return nil, err
		}
	}
	return t, nil
}
