package models

import (
	"errors"
	"fmt"
	"time"

	"fjacquet/bankstmt/internal/dateutils"
	"fjacquet/bankstmt/internal/grid"

	"github.com/shopspring/decimal"
)

// TransactionBuilder provides a fluent API for constructing transactions
type TransactionBuilder struct {
	tx  Transaction
	err error
}

// NewTransactionBuilder creates a new TransactionBuilder with default values
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{
		tx: Transaction{
			Type:       TransactionTypeOther,
			Mode:       PaymentModeOther,
			Withdrawal: decimal.Zero,
			Deposit:    decimal.Zero,
			Balance:    decimal.Zero,
		},
	}
}

// WithID sets the transaction ID
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.ID = id
	return b
}

// WithDate sets the transaction date
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if date.IsZero() {
		b.err = errors.New("date cannot be zero")
		return b
	}
	b.tx.Date = dateutils.DateOnly(date)
	return b
}

// WithValueDate sets the value date; a zero date leaves it absent
func (b *TransactionBuilder) WithValueDate(valueDate time.Time) *TransactionBuilder {
	if b.err != nil || valueDate.IsZero() {
		return b
	}
	b.tx.ValueDate = dateutils.DateOnly(valueDate)
	return b
}

// WithNarration sets the narration text
func (b *TransactionBuilder) WithNarration(narration string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Narration = narration
	return b
}

// WithChequeRef sets the cheque or reference number
func (b *TransactionBuilder) WithChequeRef(ref string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.ChequeRef = ref
	return b
}

// WithAmounts sets withdrawal, deposit and running balance
func (b *TransactionBuilder) WithAmounts(withdrawal, deposit, balance decimal.Decimal) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Withdrawal = withdrawal
	b.tx.Deposit = deposit
	b.tx.Balance = balance
	return b
}

// WithType sets the transaction type
func (b *TransactionBuilder) WithType(t TransactionType) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Type = t
	return b
}

// WithMode sets the payment mode
func (b *TransactionBuilder) WithMode(mode PaymentMode) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Mode = mode
	return b
}

// WithCounterparties sets the inferred remitter, beneficiary and bank
func (b *TransactionBuilder) WithCounterparties(remitter, beneficiary, bank string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Remitter = remitter
	b.tx.Beneficiary = beneficiary
	b.tx.BankName = bank
	return b
}

// WithOriginalRow records a deep copy of the source row and its index
func (b *TransactionBuilder) WithOriginalRow(index int, row grid.Row) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.SourceRow = index
	b.tx.OriginalRow = row.Clone()
	return b
}

// AsDebit marks the transaction as a debit
func (b *TransactionBuilder) AsDebit() *TransactionBuilder {
	return b.WithType(TransactionTypeDebit)
}

// AsCredit marks the transaction as a credit
func (b *TransactionBuilder) AsCredit() *TransactionBuilder {
	return b.WithType(TransactionTypeCredit)
}

// Build validates the transaction and returns the final Transaction
func (b *TransactionBuilder) Build() (Transaction, error) {
	if b.err != nil {
		return Transaction{}, fmt.Errorf("builder error: %w", b.err)
	}

	if b.tx.Date.IsZero() {
		return Transaction{}, errors.New("date is required")
	}

	return b.tx.Clone(), nil
}

// Reset clears the builder state and returns a new builder
func (b *TransactionBuilder) Reset() *TransactionBuilder {
	return NewTransactionBuilder()
}
