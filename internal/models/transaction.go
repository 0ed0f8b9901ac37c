package models

import (
	"fmt"
	"regexp"
	"time"

	"fjacquet/bankstmt/internal/grid"

	"github.com/shopspring/decimal"
)

// TransactionType classifies the direction of a transaction.
type TransactionType string

const (
	TransactionTypeCredit   TransactionType = "CREDIT"
	TransactionTypeDebit    TransactionType = "DEBIT"
	TransactionTypeTransfer TransactionType = "TRANSFER"
	TransactionTypeOther    TransactionType = "OTHER"
)

// PaymentMode is the payment rail inferred from the narration.
type PaymentMode string

const (
	PaymentModeNEFT   PaymentMode = "NEFT"
	PaymentModeRTGS   PaymentMode = "RTGS"
	PaymentModeIMPS   PaymentMode = "IMPS"
	PaymentModeCheque PaymentMode = "CHEQUE"
	PaymentModeUPI    PaymentMode = "UPI"
	PaymentModeCash   PaymentMode = "CASH"
	PaymentModeOther  PaymentMode = "OTHER"
)

// Transaction is one dated ledger line of a statement. It has no identity
// outside its statement; ID is unique only within the owning statement.
type Transaction struct {
	ID          string          `json:"id" yaml:"id"`
	Date        time.Time       `json:"date" yaml:"date"`
	ValueDate   time.Time       `json:"value_date,omitempty" yaml:"value_date,omitempty"`
	Narration   string          `json:"narration" yaml:"narration"`
	ChequeRef   string          `json:"cheque_ref,omitempty" yaml:"cheque_ref,omitempty"`
	Withdrawal  decimal.Decimal `json:"withdrawal" yaml:"withdrawal"`
	Deposit     decimal.Decimal `json:"deposit" yaml:"deposit"`
	Balance     decimal.Decimal `json:"balance" yaml:"balance"`
	Type        TransactionType `json:"type" yaml:"type"`
	Mode        PaymentMode     `json:"mode" yaml:"mode"`
	Beneficiary string          `json:"beneficiary,omitempty" yaml:"beneficiary,omitempty"`
	Remitter    string          `json:"remitter,omitempty" yaml:"remitter,omitempty"`
	BankName    string          `json:"bank_name,omitempty" yaml:"bank_name,omitempty"`
	SourceRow   int             `json:"source_row" yaml:"source_row"`
	OriginalRow grid.Row        `json:"original_row,omitempty" yaml:"original_row,omitempty"`
}

var transactionIDPattern = regexp.MustCompile(`^txn-\d{4,}$`)

// TransactionID returns the identifier of the transaction at position index
// (zero-based) within its statement.
func TransactionID(index int) string {
	return fmt.Sprintf("txn-%04d", index+1)
}

// IsValidTransactionID reports whether id has the shape produced by
// TransactionID.
func IsValidTransactionID(id string) bool {
	return transactionIDPattern.MatchString(id)
}

// Amount returns the deposit when positive, otherwise the withdrawal.
func (t Transaction) Amount() decimal.Decimal {
	if t.Deposit.IsPositive() {
		return t.Deposit
	}
	return t.Withdrawal
}

// NetAmount returns deposit minus withdrawal.
func (t Transaction) NetAmount() decimal.Decimal {
	return t.Deposit.Sub(t.Withdrawal)
}

// IsCredit returns true if the transaction is a credit
func (t Transaction) IsCredit() bool {
	return t.Type == TransactionTypeCredit
}

// IsDebit returns true if the transaction is a debit
func (t Transaction) IsDebit() bool {
	return t.Type == TransactionTypeDebit
}

// Clone returns a copy that shares no memory with t.
func (t Transaction) Clone() Transaction {
	t.OriginalRow = t.OriginalRow.Clone()
	return t
}
