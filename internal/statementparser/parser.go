// Package statementparser extracts statement metadata, ledger transactions
// and summary totals from a spreadsheet grid of unknown layout.
//
// Extraction is heuristic: each field is located by keyword matchers run in
// a fixed order, and a field that cannot be found is left at its zero value
// rather than reported as an error.
package statementparser

import (
	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
)

// Options bounds the heuristics.
type Options struct {
	MetadataScanRows    int
	HeaderScanRows      int
	SummaryWindowBefore int
	SummaryWindowAfter  int
	DefaultCurrency     string
}

// DefaultOptions returns the standard scan limits.
func DefaultOptions() Options {
	return Options{
		MetadataScanRows:    50,
		HeaderScanRows:      100,
		SummaryWindowBefore: 5,
		SummaryWindowAfter:  10,
		DefaultCurrency:     models.DefaultCurrency,
	}
}

// Result is everything extracted from one grid.
type Result struct {
	Metadata     models.StatementMetadata
	Transactions TransactionResult
	Summary      models.StatementSummary
}

// Parser runs the extractors. It holds no mutable state and may be shared
// between goroutines.
type Parser struct {
	opts   Options
	logger logging.Logger
}

// NewParser creates a Parser. Non-positive limits fall back to defaults.
func NewParser(opts Options, logger logging.Logger) *Parser {
	def := DefaultOptions()
	if opts.MetadataScanRows <= 0 {
		opts.MetadataScanRows = def.MetadataScanRows
	}
	if opts.HeaderScanRows <= 0 {
		opts.HeaderScanRows = def.HeaderScanRows
	}
	if opts.SummaryWindowBefore < 0 {
		opts.SummaryWindowBefore = def.SummaryWindowBefore
	}
	if opts.SummaryWindowAfter < 0 {
		opts.SummaryWindowAfter = def.SummaryWindowAfter
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = def.DefaultCurrency
	}
	return &Parser{opts: opts, logger: logging.OrDefault(logger)}
}

// Parse runs the metadata and transaction extractors over g, then
// reconciles the summary.
func (p *Parser) Parse(g grid.Grid) Result {
	res := Result{
		Metadata:     p.ExtractMetadata(g),
		Transactions: p.ExtractTransactions(g),
	}
	res.Summary = p.ReconcileSummary(g, res.Transactions.Transactions)

	p.logger.Debug("Extracted statement grid",
		logging.F(logging.FieldBank, res.Metadata.BankName),
		logging.F(logging.FieldRow, res.Transactions.HeaderRow),
		logging.F(logging.FieldCount, len(res.Transactions.Transactions)))
	return res
}
