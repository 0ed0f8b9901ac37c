package statementparser

import (
	"testing"
	"time"

	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/normalize"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTransactions_NEFTCreditRow(t *testing.T) {
	g := grid.FromStrings([][]string{
		{"Date", "Narration", "Chq./Ref.No.", "Withdrawal Amt.", "Deposit Amt.", "Closing Balance"},
		{"05/03/2024", "NEFT-HDFC-ICICI-ABC CORP-XYZ LTD-REF123", "REF123", "", "50000.00", "125000.00"},
	})

	res := newTestParser().ExtractTransactions(g)
	require.Len(t, res.Transactions, 1)
	tx := res.Transactions[0]

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, models.PaymentModeNEFT, tx.Mode)
	assert.Equal(t, models.TransactionTypeCredit, tx.Type)
	assert.True(t, decimal.RequireFromString("50000.00").Equal(tx.Deposit))
	assert.True(t, tx.Withdrawal.IsZero())
	assert.True(t, decimal.RequireFromString("125000.00").Equal(tx.Balance))
	assert.Equal(t, "ABC CORP", tx.Remitter)
	assert.Equal(t, "XYZ LTD", tx.Beneficiary)
	assert.Equal(t, "HDFC", tx.BankName)
	assert.Equal(t, "REF123", tx.ChequeRef)
	assert.Equal(t, "txn-0001", tx.ID)
	assert.Equal(t, 1, tx.SourceRow)
	assert.Equal(t, g[1].Texts(), tx.OriginalRow.Texts())
}

func TestExtractTransactions_Fixture(t *testing.T) {
	g := hdfcFixture()
	res := newTestParser().ExtractTransactions(g)

	assert.Equal(t, fixtureHeaderRow, res.HeaderRow)
	assert.Equal(t, 0, res.Columns.Date)
	assert.Equal(t, 1, res.Columns.Narration)
	assert.Equal(t, 2, res.Columns.ChequeRef)
	assert.Equal(t, 3, res.Columns.ValueDate)
	assert.Equal(t, 4, res.Columns.Withdrawal)
	assert.Equal(t, 5, res.Columns.Deposit)
	assert.Equal(t, 6, res.Columns.Balance)

	require.Len(t, res.Transactions, 3)
	assert.Equal(t, []int{fixtureDroppedRow}, res.DroppedRows)

	upi := res.Transactions[1]
	assert.Equal(t, "txn-0002", upi.ID)
	assert.Equal(t, models.PaymentModeUPI, upi.Mode)
	assert.Equal(t, models.TransactionTypeDebit, upi.Type)
	assert.True(t, decimal.NewFromInt(1500).Equal(upi.Withdrawal))
	assert.Empty(t, upi.ChequeRef, "zero placeholder is not a reference")
	assert.Empty(t, upi.Remitter)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), upi.ValueDate)

	cheque := res.Transactions[2]
	assert.Equal(t, models.PaymentModeCheque, cheque.Mode)
	assert.Equal(t, "123456", cheque.ChequeRef)

	for i := 1; i < len(res.Transactions); i++ {
		assert.Less(t, res.Transactions[i-1].SourceRow, res.Transactions[i].SourceRow, "source row order is preserved")
	}
}

func TestExtractTransactions_NoHeader(t *testing.T) {
	g := grid.FromStrings([][]string{
		{"Date", "Amount"},
		{"05/03/2024", "100"},
	})
	res := newTestParser().ExtractTransactions(g)

	assert.False(t, res.HasHeader())
	assert.Equal(t, -1, res.HeaderRow)
	assert.Empty(t, res.Transactions)
}

func TestExtractTransactions_HeaderBeyondScanLimit(t *testing.T) {
	rows := make([][]string, 0, 102)
	for i := 0; i < 100; i++ {
		rows = append(rows, []string{"filler"})
	}
	rows = append(rows,
		[]string{"Date", "Description", "Debit", "Credit"},
		[]string{"05/03/2024", "x", "1", ""},
	)

	res := newTestParser().ExtractTransactions(grid.FromStrings(rows))
	assert.False(t, res.HasHeader())
}

func TestExtractTransactions_SkipAndStopRules(t *testing.T) {
	g := grid.FromStrings([][]string{
		{"Txn Date", "Description", "Debit", "Credit", "Balance"},
		{"", "continuation line"},
		{"   ", "blank first cell"},
		{"-----", "-----"},
		{"Statement generated on request", ""},
		{"01/03/2024", "CASH DEPOSIT", "", "100", "100"},
		{"Statement Summary"},
		{"02/03/2024", "after summary", "50", "", "50"},
	})

	res := newTestParser().ExtractTransactions(g)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, models.PaymentModeCash, res.Transactions[0].Mode)
	assert.Empty(t, res.DroppedRows)
}

func TestExtractTransactions_TrailingSummaryNotDropped(t *testing.T) {
	g := grid.FromStrings([][]string{
		{"Date", "Narration", "Withdrawal", "Deposit", "Balance"},
		{"01/03/2024", "UPI-A", "100", "", "900"},
		{"02/03/2024", "UPI-B", "", "300", "1200"},
		{"Opening Balance", "1000"},
		{"Closing Balance", "1200"},
		{"Total Debits", "100"},
		{"", "", "", "", "Page 1 of 1"},
	})

	res := newTestParser().ExtractTransactions(g)
	assert.Len(t, res.Transactions, 2)
	assert.Empty(t, res.DroppedRows)
}

func TestExtractTransactions_RetentionIffDated(t *testing.T) {
	rows := [][]string{{"Date", "Narration", "Withdrawal", "Deposit", "Balance"}}
	firstCells := []string{"01/03/2024", "not a date", "2024-03-02", "3-Mar-24", "B/F", "45355", "31/02/2024"}
	for _, first := range firstCells {
		rows = append(rows, []string{first, "row", "10", "", "90"})
	}
	g := grid.FromStrings(rows)

	res := newTestParser().ExtractTransactions(g)

	retained := map[int]bool{}
	for _, tx := range res.Transactions {
		retained[tx.SourceRow] = true
	}
	for i := 1; i < len(g); i++ {
		_, dated := normalize.Date(g[i][0])
		assert.Equal(t, dated, retained[i], "row %d (%q)", i, g[i][0].Text)
	}
	assert.Len(t, res.Transactions, 4)
	assert.Len(t, res.DroppedRows, 3)
}

func TestExtractTransactions_SignedAmountColumn(t *testing.T) {
	g := grid.FromStrings([][]string{
		{"Date", "Description", "Amount", "Dr/Cr", "Balance"},
		{"01/03/2024", "UPI-GROCER", "250.00", "DR", "750.00"},
		{"02/03/2024", "IMPS-SALARY", "1000.00", "CR", "1750.00"},
	})
	g2 := grid.FromStrings([][]string{
		{"Date", "Description", "Amount", "Balance"},
		{"01/03/2024", "RTGS OUT", "-250.00", "750.00"},
	})

	res := newTestParser().ExtractTransactions(g)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, models.TransactionTypeDebit, res.Transactions[0].Type)
	assert.True(t, decimal.NewFromInt(250).Equal(res.Transactions[0].Withdrawal))
	assert.Equal(t, models.TransactionTypeCredit, res.Transactions[1].Type)
	assert.True(t, decimal.NewFromInt(1000).Equal(res.Transactions[1].Deposit))

	res2 := newTestParser().ExtractTransactions(g2)
	require.Len(t, res2.Transactions, 1)
	assert.Equal(t, models.PaymentModeRTGS, res2.Transactions[0].Mode)
	assert.True(t, decimal.NewFromInt(250).Equal(res2.Transactions[0].Withdrawal))
}

func TestExtractTransactions_OriginalRowIsCopied(t *testing.T) {
	g := grid.FromStrings([][]string{
		{"Date", "Narration", "Withdrawal", "Deposit", "Balance"},
		{"01/03/2024", "UPI-X", "10", "", "90"},
	})
	res := newTestParser().ExtractTransactions(g)
	require.Len(t, res.Transactions, 1)

	g[1][1] = grid.TextCell("mutated")
	assert.Equal(t, "UPI-X", res.Transactions[0].OriginalRow[1].Text)
}

func TestMapColumns_ValueDateNotPrimary(t *testing.T) {
	header := grid.FromStrings([][]string{{"Value Date", "Transaction Date", "Particulars", "Ref No", "Debit", "Credit", "Balance"}})[0]
	cols := MapColumns(header)

	assert.Equal(t, 0, cols.ValueDate)
	assert.Equal(t, 1, cols.Date)
	assert.Equal(t, 2, cols.Narration)
	assert.Equal(t, 3, cols.ChequeRef)
	assert.Equal(t, 4, cols.Withdrawal)
	assert.Equal(t, 5, cols.Deposit)
	assert.Equal(t, 6, cols.Balance)
	assert.Equal(t, -1, cols.Amount)
}

func TestPaymentMode(t *testing.T) {
	tests := []struct {
		narration string
		want      models.PaymentMode
	}{
		{"NEFT-HDFC-REF", models.PaymentModeNEFT},
		{"neft cr-imps mixup", models.PaymentModeNEFT},
		{"RTGS/ICIC/123", models.PaymentModeRTGS},
		{"IMPS-P2A", models.PaymentModeIMPS},
		{"CHQ PAID 000123", models.PaymentModeCheque},
		{"Cheque deposit", models.PaymentModeCheque},
		{"UPI/abc@okhdfc", models.PaymentModeUPI},
		{"CASH WDL ATM", models.PaymentModeCash},
		{"Interest credited", models.PaymentModeOther},
	}
	for _, tt := range tests {
		t.Run(tt.narration, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentMode(tt.narration))
		})
	}
}

func TestTypeInference(t *testing.T) {
	assert.Equal(t, models.TransactionTypeCredit, NarrationType("NEFT CR-ACME"))
	assert.Equal(t, models.TransactionTypeDebit, NarrationType("ACH DR-LOAN"))
	assert.Equal(t, models.TransactionTypeTransfer, NarrationType("Funds transfer to self"))
	assert.Equal(t, models.TransactionTypeOther, NarrationType("Interest"))

	g := grid.FromStrings([][]string{
		{"Date", "Narration", "Withdrawal", "Deposit", "Balance"},
		{"01/03/2024", "NEFT CR-ACME", "500", "", "0"},
		{"02/03/2024", "FUNDS TRANSFER", "", "", "0"},
		{"03/03/2024", "both sides", "10", "20", "0"},
	})
	res := newTestParser().ExtractTransactions(g)
	require.Len(t, res.Transactions, 3)
	assert.Equal(t, models.TransactionTypeDebit, res.Transactions[0].Type, "amount evidence overrides narration")
	assert.Equal(t, models.TransactionTypeTransfer, res.Transactions[1].Type)
	assert.Equal(t, models.TransactionTypeCredit, res.Transactions[2].Type)
}

func TestCounterparties(t *testing.T) {
	tests := []struct {
		narration                   string
		remitter, beneficiary, bank string
	}{
		{"NEFT-HDFC-ICICI-ABC CORP-XYZ LTD-REF123", "ABC CORP", "XYZ LTD", "HDFC"},
		{"IMPS--SBIN-JOHN-JANE-", "SBIN", "JOHN", "SBIN"},
		{"UPI-SHOP-9876", "", "", ""},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.narration, func(t *testing.T) {
			r, b, bank := Counterparties(tt.narration)
			assert.Equal(t, tt.remitter, r)
			assert.Equal(t, tt.beneficiary, b)
			assert.Equal(t, tt.bank, bank)
		})
	}
}
