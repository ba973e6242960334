package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	TrialBalance    TrialBalanceCmd    `cmd:"" help:"Compute a trial balance from a ledger file."`
	IncomeStatement IncomeStatementCmd `cmd:"" help:"Compute an income statement from a ledger file."`
	BalanceSheet    BalanceSheetCmd    `cmd:"" help:"Compute a balance sheet from a ledger file."`
	Export          ExportCmd          `cmd:"" help:"Export a report as CSV or JSON."`
	Assert          AssertCmd          `cmd:"" help:"Check the ledger file's balance assertions."`
	Serve           ServeCmd           `cmd:"" help:"Serve computed reports over HTTP."`
}
