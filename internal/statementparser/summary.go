package statementparser

import (
	"strings"
	"unicode"

	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/normalize"

	"github.com/shopspring/decimal"
)

var summaryTriggers = []string{"opening balance", "closing balance", "statement summary"}

// summaryField identifies one figure of an explicit summary block.
type summaryField int

const (
	fieldOpening summaryField = iota
	fieldClosing
	fieldDebitCount
	fieldCreditCount
	fieldDebits
	fieldCredits
)

// summaryLabels are matched in order against a lower-cased cell; counts
// come before totals.
var summaryLabels = []struct {
	labels []string
	field  summaryField
}{
	{[]string{"opening balance"}, fieldOpening},
	{[]string{"closing balance"}, fieldClosing},
	{[]string{"dr count", "debit count"}, fieldDebitCount},
	{[]string{"cr count", "credit count"}, fieldCreditCount},
	{[]string{"debits"}, fieldDebits},
	{[]string{"credits"}, fieldCredits},
}

// explicitSummary holds the figures found in the grid, keyed by field.
type explicitSummary map[summaryField]decimal.Decimal

// ComputeSummary derives totals from the transactions alone. The closing
// balance is left at zero.
func ComputeSummary(txs []models.Transaction) models.StatementSummary {
	s := models.StatementSummary{}
	if len(txs) == 0 {
		return s
	}

	first := txs[0]
	s.OpeningBalance = first.Balance.Add(first.Withdrawal).Sub(first.Deposit)

	for _, tx := range txs {
		if tx.Withdrawal.IsPositive() {
			s.TotalDebits = s.TotalDebits.Add(tx.Withdrawal)
			s.DebitCount++
		}
		if tx.Deposit.IsPositive() {
			s.TotalCredits = s.TotalCredits.Add(tx.Deposit)
			s.CreditCount++
		}
	}
	return s
}

// ReconcileSummary computes the summary from txs, overrides each figure
// found in an explicit summary block of g, then falls back to the last
// transaction's balance for a zero closing balance. txs must be in source
// row order; they are never re-sorted.
func (p *Parser) ReconcileSummary(g grid.Grid, txs []models.Transaction) models.StatementSummary {
	s := ComputeSummary(txs)

	explicit := p.findExplicitSummary(g)
	for field, value := range explicit {
		switch field {
		case fieldOpening:
			s.OpeningBalance = value
		case fieldClosing:
			s.ClosingBalance = value
		case fieldDebits:
			s.TotalDebits = value
		case fieldCredits:
			s.TotalCredits = value
		case fieldDebitCount:
			s.DebitCount = int(value.IntPart())
		case fieldCreditCount:
			s.CreditCount = int(value.IntPart())
		}
	}

	if s.ClosingBalance.IsZero() && len(txs) > 0 {
		s.ClosingBalance = txs[len(txs)-1].Balance
	}

	s.NetFlow = s.TotalCredits.Sub(s.TotalDebits)
	if count := s.DebitCount + s.CreditCount; count > 0 {
		s.AverageAmount = s.TotalDebits.Add(s.TotalCredits).
			Div(decimal.NewFromInt(int64(count))).Round(2)
	}
	return s
}

// findExplicitSummary scans a window around every trigger row and merges
// the figures field by field. The first value found for a field wins.
func (p *Parser) findExplicitSummary(g grid.Grid) explicitSummary {
	merged := explicitSummary{}
	for i, row := range g {
		if !containsAny(row.Joined(), summaryTriggers...) {
			continue
		}
		start := i - p.opts.SummaryWindowBefore
		if start < 0 {
			start = 0
		}
		end := i + p.opts.SummaryWindowAfter
		if end >= len(g) {
			end = len(g) - 1
		}
		for field, value := range scanSummaryWindow(g[start : end+1]) {
			if _, seen := merged[field]; !seen {
				merged[field] = value
			}
		}
	}
	return merged
}

// scanSummaryWindow reads "label | value" pairs. The first value found for a
// field wins. Ledger rows, recognised by a leading date, are ignored.
func scanSummaryWindow(rows []grid.Row) explicitSummary {
	found := explicitSummary{}
	for _, row := range rows {
		if _, dated := normalize.Date(row.Cell(0)); dated {
			continue
		}
		for j, cell := range row {
			field, ok := summaryLabel(cell)
			if !ok {
				continue
			}
			if _, seen := found[field]; seen {
				continue
			}
			next := row.Cell(j + 1)
			if !looksNumeric(next) {
				continue
			}
			found[field] = normalize.Amount(next)
		}
	}
	return found
}

func summaryLabel(cell grid.Cell) (summaryField, bool) {
	if cell.Kind != grid.Text {
		return 0, false
	}
	lower := strings.ToLower(cell.String())
	for _, sl := range summaryLabels {
		if containsAny(lower, sl.labels...) {
			return sl.field, true
		}
	}
	return 0, false
}

func looksNumeric(cell grid.Cell) bool {
	switch cell.Kind {
	case grid.Number:
		return true
	case grid.Text:
		return strings.IndexFunc(cell.Text, unicode.IsDigit) >= 0
	}
	return false
}
