package statementparser

import (
	"strings"

	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/normalize"

	"github.com/shopspring/decimal"
)

// TransactionResult is the output of the transaction extractor.
// Transactions keep the row order of the source grid.
type TransactionResult struct {
	HeaderRow    int
	Columns      ColumnMap
	Transactions []models.Transaction
	// DroppedRows lists ledger rows that were not boilerplate but had an
	// unparseable date. Rows with an empty date cell and summary lines
	// are not counted.
	DroppedRows []int
}

// HasHeader reports whether a transaction header row was found.
func (r TransactionResult) HasHeader() bool {
	return r.HeaderRow >= 0
}

// ColumnMap holds the column index of each ledger field, or -1.
type ColumnMap struct {
	Date       int
	ValueDate  int
	Narration  int
	ChequeRef  int
	Withdrawal int
	Deposit    int
	Balance    int
	// Amount is a single signed amount column, used when the statement has
	// no separate withdrawal and deposit columns.
	Amount int
	// DrCr marks the direction of Amount with "DR" or "CR".
	DrCr int
}

func newColumnMap() ColumnMap {
	return ColumnMap{-1, -1, -1, -1, -1, -1, -1, -1, -1}
}

var amountKeywords = []string{"withdrawal", "debit", "deposit", "credit", "amount"}

// isHeaderRow reports whether joined row text qualifies as the ledger header.
func isHeaderRow(joined string) bool {
	if !strings.Contains(joined, "date") {
		return false
	}
	if !strings.Contains(joined, "narration") && !strings.Contains(joined, "description") {
		return false
	}
	for _, kw := range amountKeywords {
		if strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}

// FindHeader returns the index of the first header row within the first
// HeaderScanRows rows, or -1.
func (p *Parser) FindHeader(g grid.Grid) int {
	for i, row := range g {
		if i >= p.opts.HeaderScanRows {
			break
		}
		if isHeaderRow(row.Joined()) {
			return i
		}
	}
	return -1
}

// MapColumns classifies header cells. The first column of each kind wins.
func MapColumns(header grid.Row) ColumnMap {
	cols := newColumnMap()
	set := func(idx *int, i int) {
		if *idx < 0 {
			*idx = i
		}
	}
	for i, cell := range header {
		h := strings.ToLower(cell.String())
		switch {
		case h == "":
		case strings.Contains(h, "dr/cr") || strings.Contains(h, "cr/dr"):
			set(&cols.DrCr, i)
		case strings.Contains(h, "value") && (strings.Contains(h, "date") || strings.Contains(h, "dt")):
			set(&cols.ValueDate, i)
		case strings.Contains(h, "date"):
			set(&cols.Date, i)
		case containsAny(h, "narration", "description", "particulars", "remarks", "details"):
			set(&cols.Narration, i)
		case containsAny(h, "chq", "cheque", "ref"):
			set(&cols.ChequeRef, i)
		case containsAny(h, "withdrawal", "debit"):
			set(&cols.Withdrawal, i)
		case containsAny(h, "deposit", "credit"):
			set(&cols.Deposit, i)
		case strings.Contains(h, "balance"):
			set(&cols.Balance, i)
		case strings.Contains(h, "amount") || strings.Contains(h, "amt"):
			set(&cols.Amount, i)
		}
	}
	return cols
}

// ExtractTransactions locates the ledger header and walks the rows below
// it. Without a header the result is empty.
func (p *Parser) ExtractTransactions(g grid.Grid) TransactionResult {
	result := TransactionResult{HeaderRow: p.FindHeader(g), Columns: newColumnMap()}
	if !result.HasHeader() {
		return result
	}
	result.Columns = MapColumns(g[result.HeaderRow])

	for i := result.HeaderRow + 1; i < len(g); i++ {
		row := g[i]
		first := strings.ToLower(row.Cell(0).String())

		if strings.Contains(first, "statement summary") {
			break
		}
		if skipRow(first) {
			continue
		}

		tx, ok := buildTransaction(row, i, result.Columns)
		if !ok {
			if !undatedFooter(row, result.Columns) {
				result.DroppedRows = append(result.DroppedRows, i)
			}
			continue
		}
		tx.ID = models.TransactionID(len(result.Transactions))
		result.Transactions = append(result.Transactions, tx)
	}
	return result
}

// skipRow reports whether a ledger row is blank, a separator or boilerplate.
func skipRow(first string) bool {
	return first == "" ||
		strings.Contains(first, "***") ||
		strings.Contains(first, "---") ||
		strings.Contains(first, "statement")
}

// undatedFooter reports whether a row without a date is trailing matter
// rather than a broken ledger entry: an empty date cell or a summary line.
func undatedFooter(row grid.Row, cols ColumnMap) bool {
	if cols.Date >= 0 && strings.TrimSpace(cellAt(row, cols.Date).String()) == "" {
		return true
	}
	first := row.Cell(0)
	if _, ok := summaryLabel(first); ok {
		return true
	}
	return containsAny(strings.ToLower(first.String()), summaryTriggers...)
}

// buildTransaction converts a ledger row. It fails only when the date
// cannot be parsed.
func buildTransaction(row grid.Row, index int, cols ColumnMap) (models.Transaction, bool) {
	date, ok := normalize.Date(cellAt(row, cols.Date))
	if !ok {
		return models.Transaction{}, false
	}
	valueDate, _ := normalize.Date(cellAt(row, cols.ValueDate))

	narration := cellAt(row, cols.Narration).String()
	withdrawal, deposit := amounts(row, cols)
	balance := normalize.Amount(cellAt(row, cols.Balance))

	txType := NarrationType(narration)
	if withdrawal.IsPositive() {
		txType = models.TransactionTypeDebit
	}
	if deposit.IsPositive() {
		txType = models.TransactionTypeCredit
	}

	remitter, beneficiary, bank := Counterparties(narration)

	tx, err := models.NewTransactionBuilder().
		WithDate(date).
		WithValueDate(valueDate).
		WithNarration(narration).
		WithChequeRef(chequeRef(cellAt(row, cols.ChequeRef))).
		WithAmounts(withdrawal, deposit, balance).
		WithType(txType).
		WithMode(PaymentMode(narration)).
		WithCounterparties(remitter, beneficiary, bank).
		WithOriginalRow(index, row).
		Build()
	if err != nil {
		return models.Transaction{}, false
	}
	return tx, true
}

// amounts returns the withdrawal and deposit of a row, both non-negative.
func amounts(row grid.Row, cols ColumnMap) (decimal.Decimal, decimal.Decimal) {
	withdrawal := normalize.Amount(cellAt(row, cols.Withdrawal)).Abs()
	deposit := normalize.Amount(cellAt(row, cols.Deposit)).Abs()
	if cols.Withdrawal >= 0 || cols.Deposit >= 0 || cols.Amount < 0 {
		return withdrawal, deposit
	}

	amount := normalize.Amount(cellAt(row, cols.Amount))
	indicator := strings.ToUpper(cellAt(row, cols.DrCr).String())
	switch {
	case strings.HasPrefix(indicator, "D"):
		return amount.Abs(), decimal.Zero
	case strings.HasPrefix(indicator, "C"):
		return decimal.Zero, amount.Abs()
	case amount.IsNegative():
		return amount.Abs(), decimal.Zero
	default:
		return decimal.Zero, amount
	}
}

func chequeRef(cell grid.Cell) string {
	ref := cell.String()
	if strings.Trim(ref, "-0") == "" {
		return ""
	}
	return ref
}

func cellAt(row grid.Row, idx int) grid.Cell {
	return row.Cell(idx)
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
