package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/jdekker/daybook/date"
	"github.com/jdekker/daybook/ledger"
)

const fixture = `{
  "reportingCommodity": "$",
  "decimalPlaces": 2,
  "eofy": "06-30",
  "accounts": [
    {"name": "Cash at bank", "kinds": ["asset"]},
    {"name": "Sales", "kinds": ["income"]},
    {"name": "Opening Balances", "kinds": ["equity"]}
  ],
  "transactions": [
    {
      "date": "2025-01-01",
      "description": "Opening balance",
      "postings": [
        {"account": "Cash at bank", "quantity": "100.00", "commodity": "$"},
        {"account": "Opening Balances", "quantity": "-100.00", "commodity": "$"}
      ]
    },
    {
      "date": "2025-02-01",
      "description": "Widget sale",
      "postings": [
        {"account": "Cash at bank", "quantity": "50.00", "commodity": "$"},
        {"account": "Sales", "quantity": "-50.00", "commodity": "$"}
      ]
    }
  ],
  "statementLines": [
    {
      "sourceAccount": "Cash at bank",
      "date": "2025-02-10",
      "description": "Card payment",
      "quantity": "-25.00",
      "commodity": "$"
    }
  ],
  "assertions": [
    {"date": "2025-02-01", "account": "Cash at bank", "quantity": "150.00", "commodity": "$"}
  ]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.json")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLedgerFile(t *testing.T) {
	ctx := context.Background()
	file, err := New().Load(ctx, writeFixture(t, fixture))
	assert.NoError(t, err)

	meta, err := file.Store.Metadata(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "$", meta.ReportingCommodity)
	assert.Equal(t, int32(2), meta.DecimalPlaces)
	assert.Equal(t, "06-30", meta.EOFY.String())

	kinds, err := file.Store.AccountKinds(ctx)
	assert.NoError(t, err)
	assert.True(t, kinds.Is("Cash at bank", ledger.KindAsset))
	assert.True(t, kinds.Is("Sales", ledger.KindIncome))

	txns, err := file.Store.Transactions(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(txns))
	assert.Equal(t, "Opening balance", txns[0].Description)
	assert.Equal(t, int64(10000), txns[0].Postings[0].Quantity)

	lines, err := file.Store.StatementLines(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(lines))
	assert.Equal(t, int64(-2500), lines[0].Quantity)
	assert.False(t, lines[0].Reconciled())

	assert.Equal(t, 1, len(file.Assertions))
	assert.Equal(t, int64(15000), file.Assertions[0].Quantity)
	assert.Equal(t, date.MustParse("2025-02-01"), file.Assertions[0].Date)
}

func TestLoadComputesBalances(t *testing.T) {
	ctx := context.Background()
	file, err := New().Load(ctx, writeFixture(t, fixture))
	assert.NoError(t, err)

	session, err := file.Session(ctx)
	assert.NoError(t, err)

	balance, err := session.RunningBalance(ctx, "Cash at bank", date.MustParse("2025-02-01"))
	assert.NoError(t, err)
	assert.Equal(t, int64(15000), balance)
}

func TestLoadRejectsUnbalancedTransaction(t *testing.T) {
	content := `{
	  "reportingCommodity": "$",
	  "decimalPlaces": 2,
	  "eofy": "06-30",
	  "transactions": [
	    {
	      "date": "2025-01-01",
	      "description": "Lopsided",
	      "postings": [
	        {"account": "Cash at bank", "quantity": "100.00", "commodity": "$"},
	        {"account": "Sales", "quantity": "-99.00", "commodity": "$"}
	      ]
	    }
	  ]
	}`

	_, err := New().Load(context.Background(), writeFixture(t, content))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Lopsided")

	// Without validation the transaction loads; the imbalance surfaces as a
	// balance-sheet warning instead.
	file, err := New(WithoutValidation()).Load(context.Background(), writeFixture(t, content))
	assert.NoError(t, err)

	txns, err := file.Store.Transactions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, len(txns))
}

func TestLoadRejectsBadQuantity(t *testing.T) {
	content := `{
	  "reportingCommodity": "$",
	  "decimalPlaces": 2,
	  "eofy": "06-30",
	  "transactions": [
	    {
	      "date": "2025-01-01",
	      "description": "Too precise",
	      "postings": [
	        {"account": "Cash at bank", "quantity": "1.005", "commodity": "$"},
	        {"account": "Sales", "quantity": "-1.005", "commodity": "$"}
	      ]
	    }
	  ]
	}`

	_, err := New().Load(context.Background(), writeFixture(t, content))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Too precise")
}

func TestLoadRequiresReportingCommodity(t *testing.T) {
	_, err := New().Load(context.Background(), writeFixture(t, `{"decimalPlaces": 2}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reportingCommodity")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
