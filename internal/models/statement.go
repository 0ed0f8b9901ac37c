package models

import (
	"time"

	"fjacquet/bankstmt/internal/grid"

	"github.com/shopspring/decimal"
)

// ProcessingStatus is the outcome of ingesting one statement file.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "PENDING"
	StatusProcessing ProcessingStatus = "PROCESSING"
	StatusCompleted  ProcessingStatus = "COMPLETED"
	StatusFailed     ProcessingStatus = "FAILED"
	StatusPartial    ProcessingStatus = "PARTIAL"
)

// StatementMetadata holds the account details found above the ledger.
// Every field except BankName may be empty.
type StatementMetadata struct {
	BankName         string    `json:"bank_name" yaml:"bank_name"`
	AccountHolder    string    `json:"account_holder,omitempty" yaml:"account_holder,omitempty"`
	AccountNumber    string    `json:"account_number,omitempty" yaml:"account_number,omitempty"`
	PeriodFrom       time.Time `json:"period_from,omitempty" yaml:"period_from,omitempty"`
	PeriodTo         time.Time `json:"period_to,omitempty" yaml:"period_to,omitempty"`
	Branch           string    `json:"branch,omitempty" yaml:"branch,omitempty"`
	IFSC             string    `json:"ifsc,omitempty" yaml:"ifsc,omitempty"`
	MICR             string    `json:"micr,omitempty" yaml:"micr,omitempty"`
	CustomerID       string    `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
	Address          string    `json:"address,omitempty" yaml:"address,omitempty"`
	City             string    `json:"city,omitempty" yaml:"city,omitempty"`
	State            string    `json:"state,omitempty" yaml:"state,omitempty"`
	Phone            string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email            string    `json:"email,omitempty" yaml:"email,omitempty"`
	GSTIN            string    `json:"gstin,omitempty" yaml:"gstin,omitempty"`
	Currency         string    `json:"currency" yaml:"currency"`
	GeneratedOn      string    `json:"generated_on,omitempty" yaml:"generated_on,omitempty"`
	GeneratedBy      string    `json:"generated_by,omitempty" yaml:"generated_by,omitempty"`
	RequestingBranch string    `json:"requesting_branch,omitempty" yaml:"requesting_branch,omitempty"`
	PageNumber       string    `json:"page_number,omitempty" yaml:"page_number,omitempty"`
	StatementType    string    `json:"statement_type,omitempty" yaml:"statement_type,omitempty"`
}

// NewStatementMetadata returns metadata carrying the bank and currency defaults.
func NewStatementMetadata(currency string) StatementMetadata {
	if currency == "" {
		currency = DefaultCurrency
	}
	return StatementMetadata{BankName: DefaultBankName, Currency: currency}
}

// StatementSummary holds the statement totals.
type StatementSummary struct {
	OpeningBalance decimal.Decimal `json:"opening_balance" yaml:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance" yaml:"closing_balance"`
	TotalDebits    decimal.Decimal `json:"total_debits" yaml:"total_debits"`
	TotalCredits   decimal.Decimal `json:"total_credits" yaml:"total_credits"`
	DebitCount     int             `json:"debit_count" yaml:"debit_count"`
	CreditCount    int             `json:"credit_count" yaml:"credit_count"`
	NetFlow        decimal.Decimal `json:"net_flow" yaml:"net_flow"`
	AverageAmount  decimal.Decimal `json:"average_amount" yaml:"average_amount"`
}

// ProcessingError records an extraction issue. Row is the one-based grid
// row, or 0 when the issue concerns the whole file.
type ProcessingError struct {
	Row     int    `json:"row" yaml:"row"`
	Message string `json:"message" yaml:"message"`
}

// Statement is the persisted aggregate produced by one ingestion.
type Statement struct {
	ID           string            `json:"id" yaml:"id"`
	FileName     string            `json:"file_name" yaml:"file_name"`
	UploadedBy   Identity          `json:"uploaded_by" yaml:"uploaded_by"`
	UploadedAt   time.Time         `json:"uploaded_at" yaml:"uploaded_at"`
	Metadata     StatementMetadata `json:"metadata" yaml:"metadata"`
	Transactions []Transaction     `json:"transactions" yaml:"transactions"`
	Summary      StatementSummary  `json:"summary" yaml:"summary"`
	RawGrid      grid.Grid         `json:"raw_grid,omitempty" yaml:"raw_grid,omitempty"`
	Status       ProcessingStatus  `json:"status" yaml:"status"`
	Errors       []ProcessingError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Tags         []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	FileMetadata map[string]string `json:"file_metadata,omitempty" yaml:"file_metadata,omitempty"`
}

// Transaction returns the transaction with the given id.
func (s *Statement) Transaction(id string) (Transaction, bool) {
	for _, tx := range s.Transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return Transaction{}, false
}

// DateSpan returns the statement period, falling back to the earliest and
// latest transaction dates for missing bounds.
func (s *Statement) DateSpan() (time.Time, time.Time) {
	from, to := s.Metadata.PeriodFrom, s.Metadata.PeriodTo
	for _, tx := range s.Transactions {
		if s.Metadata.PeriodFrom.IsZero() && (from.IsZero() || tx.Date.Before(from)) {
			from = tx.Date
		}
		if s.Metadata.PeriodTo.IsZero() && (to.IsZero() || tx.Date.After(to)) {
			to = tx.Date
		}
	}
	return from, to
}

// Clone returns a deep copy of the statement.
func (s *Statement) Clone() *Statement {
	if s == nil {
		return nil
	}
	c := *s
	if s.Transactions != nil {
		c.Transactions = make([]Transaction, len(s.Transactions))
		for i, tx := range s.Transactions {
			c.Transactions[i] = tx.Clone()
		}
	}
	c.RawGrid = s.RawGrid.Clone()
	c.Errors = append([]ProcessingError(nil), s.Errors...)
	c.Tags = append([]string(nil), s.Tags...)
	if s.FileMetadata != nil {
		c.FileMetadata = make(map[string]string, len(s.FileMetadata))
		for k, v := range s.FileMetadata {
			c.FileMetadata[k] = v
		}
	}
	return &c
}
