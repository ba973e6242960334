package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/jdekker/daybook/date"
	"github.com/jdekker/daybook/ledger"
	"github.com/jdekker/daybook/loader"
	"github.com/jdekker/daybook/report"
)

const testLedger = `{
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
  ]
}`

func computeTestReport(t *testing.T, kind report.Kind) (*report.Report, ledger.Metadata) {
	t.Helper()
	ctx := context.Background()

	file, err := loader.New().LoadBytes(ctx, "test.json", []byte(testLedger))
	assert.NoError(t, err)
	session, err := file.Session(ctx)
	assert.NoError(t, err)

	result, err := report.Compute(ctx, session, report.Request{
		Kind: kind,
		End:  date.MustParse("2025-06-30"),
	})
	assert.NoError(t, err)
	return result, session.Metadata()
}

func TestRenderTableBalanceSheet(t *testing.T) {
	result, meta := computeTestReport(t, report.KindBalanceSheet)

	var buf bytes.Buffer
	renderTable(&buf, result, meta)

	out := buf.String()
	assert.Contains(t, out, "Balance sheet")
	assert.Contains(t, out, "Assets")
	assert.Contains(t, out, "Cash at bank")
	assert.Contains(t, out, "150.00")
	assert.Contains(t, out, "Current Year Earnings")
	assert.Contains(t, out, "50.00")
	// Liabilities auto-hide when empty.
	assert.NotContains(t, out, "Liabilities")
}

func TestRenderTableAlignment(t *testing.T) {
	result, meta := computeTestReport(t, report.KindTrialBalance)

	var buf bytes.Buffer
	renderTable(&buf, result, meta)

	// Account rows all end at the Cr column's right edge.
	var widths []int
	for _, line := range strings.Split(buf.String(), "\n") {
		for _, account := range []string{"Cash at bank", "Opening Balances", "Sales"} {
			if strings.Contains(line, account) {
				widths = append(widths, len(line))
			}
		}
	}
	assert.Equal(t, 3, len(widths))
	assert.Equal(t, widths[0], widths[1])
	assert.Equal(t, widths[0], widths[2])
}

func TestWriteReportJSON(t *testing.T) {
	result, meta := computeTestReport(t, report.KindIncomeStatement)

	var buf bytes.Buffer
	assert.NoError(t, writeReport(&buf, result, meta, "json"))

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Income statement", decoded["title"].(string))
}

func TestWriteReportCSV(t *testing.T) {
	result, meta := computeTestReport(t, report.KindIncomeStatement)

	var buf bytes.Buffer
	assert.NoError(t, writeReport(&buf, result, meta, "csv"))

	out := buf.String()
	assert.Contains(t, out, "Income")
	assert.Contains(t, out, "Sales,50.00")
	assert.Contains(t, out, "Net surplus (deficit),50.00")
}

func runExport(t *testing.T, args ...string) error {
	t.Helper()

	var app struct {
		Globals
		Export ExportCmd `cmd:""`
	}
	var out bytes.Buffer
	parser, err := kong.New(&app, kong.Writers(&out, &out), kong.Bind(&app.Globals))
	assert.NoError(t, err)

	kctx, err := parser.Parse(append([]string{"export"}, args...))
	assert.NoError(t, err)
	return kctx.Run()
}

func TestExportRefusesOverwrite(t *testing.T) {
	if isTerminal() {
		t.Skip("requires non-interactive stdin")
	}

	dir := t.TempDir()
	ledgerFile := filepath.Join(dir, "ledger.json")
	assert.NoError(t, os.WriteFile(ledgerFile, []byte(testLedger), 0600))
	outFile := filepath.Join(dir, "out.csv")
	assert.NoError(t, os.WriteFile(outFile, []byte("existing"), 0600))

	// Without --force the existing file is left untouched.
	err := runExport(t, ledgerFile, "--end", "2025-06-30", "-o", outFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	contents, err := os.ReadFile(outFile)
	assert.NoError(t, err)
	assert.Equal(t, "existing", string(contents))

	// --force overwrites without prompting.
	assert.NoError(t, runExport(t, ledgerFile, "--end", "2025-06-30", "-o", outFile, "--force"))

	contents, err = os.ReadFile(outFile)
	assert.NoError(t, err)
	assert.Contains(t, string(contents), "Cash at bank")
}

func TestExportToNewFile(t *testing.T) {
	dir := t.TempDir()
	ledgerFile := filepath.Join(dir, "ledger.json")
	assert.NoError(t, os.WriteFile(ledgerFile, []byte(testLedger), 0600))
	outFile := filepath.Join(dir, "out.csv")

	// A fresh output path never prompts.
	assert.NoError(t, runExport(t, ledgerFile, "--end", "2025-06-30", "-o", outFile))

	contents, err := os.ReadFile(outFile)
	assert.NoError(t, err)
	assert.Contains(t, string(contents), "Cash at bank")
}

func TestPromptYesNo(t *testing.T) {
	// In a non-interactive environment (CI, piped input) the prompt must
	// decline immediately instead of blocking on huh.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("requires non-interactive stdin")
	}

	confirmed, err := promptYesNo(nil, "Overwrite?")
	assert.NoError(t, err)
	assert.False(t, confirmed)
}

func TestFormatCellsBlanks(t *testing.T) {
	meta := ledger.Metadata{ReportingCommodity: "$", DecimalPlaces: 2}

	cells := formatCells([]report.Cell{
		report.Value(12345),
		report.BlankCell(),
		report.Value(-500),
	}, meta)

	assert.Equal(t, []string{"123.45", "", "-5.00"}, cells)
}
