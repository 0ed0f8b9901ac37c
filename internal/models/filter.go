package models

import (
	"strings"
	"time"

	"fjacquet/bankstmt/internal/dateutils"

	"github.com/shopspring/decimal"
)

// Page selects a window of an ordered result. A zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

// Bounds returns the slice bounds of the page over total items.
func (p Page) Bounds(total int) (int, int) {
	start := p.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if p.Limit > 0 && start+p.Limit < total {
		end = start + p.Limit
	}
	return start, end
}

// StatementFilter selects statements. Zero-valued fields do not filter.
type StatementFilter struct {
	BankName      string
	AccountNumber string
	From          time.Time
	To            time.Time
	Search        string
}

// Matches reports whether s satisfies every set criterion. A date range
// matches statements whose span overlaps it.
func (f StatementFilter) Matches(s *Statement) bool {
	if f.BankName != "" && !containsFold(s.Metadata.BankName, f.BankName) {
		return false
	}
	if f.AccountNumber != "" && !strings.Contains(s.Metadata.AccountNumber, strings.TrimSpace(f.AccountNumber)) {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		start, end := s.DateSpan()
		if start.IsZero() && end.IsZero() {
			return false
		}
		if !f.To.IsZero() && !start.IsZero() && dateutils.CompareDates(start, f.To) > 0 {
			return false
		}
		if !f.From.IsZero() && !end.IsZero() && dateutils.CompareDates(end, f.From) < 0 {
			return false
		}
	}
	if f.Search != "" {
		fields := append([]string{
			s.FileName,
			s.Metadata.BankName,
			s.Metadata.AccountHolder,
			s.Metadata.AccountNumber,
			s.Metadata.Branch,
		}, s.Tags...)
		if !anyContainsFold(fields, f.Search) {
			return false
		}
	}
	return true
}

// TransactionFilter selects transactions within one statement.
type TransactionFilter struct {
	Type      TransactionType
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Search    string
}

// Matches reports whether tx satisfies every set criterion. Amount bounds
// apply to the transaction's deposit or withdrawal.
func (f TransactionFilter) Matches(tx Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	amount := tx.Amount()
	if f.MinAmount != nil && amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.Search != "" {
		fields := []string{tx.Narration, tx.ChequeRef, tx.Beneficiary, tx.Remitter, tx.BankName}
		if !anyContainsFold(fields, f.Search) {
			return false
		}
	}
	return true
}

// SuspenseFilter selects suspense entries. With ShowCleared false only
// entries with a positive balance match.
type SuspenseFilter struct {
	StatementID string
	Status      SuspenseStatus
	Client      string
	From        time.Time
	To          time.Time
	MinBalance  *decimal.Decimal
	MaxBalance  *decimal.Decimal
	Search      string
	ShowCleared bool
}

// Matches reports whether e satisfies every set criterion.
func (f SuspenseFilter) Matches(e *SuspenseEntry) bool {
	if !f.ShowCleared && !e.BalanceAmount.IsPositive() {
		return false
	}
	if f.StatementID != "" && e.StatementID != f.StatementID {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Client != "" && !containsFold(e.ClientName, f.Client) && !containsFold(e.ManualClientName, f.Client) {
		return false
	}
	if !dateutils.InRange(e.Date, f.From, f.To) {
		return false
	}
	if f.MinBalance != nil && e.BalanceAmount.LessThan(*f.MinBalance) {
		return false
	}
	if f.MaxBalance != nil && e.BalanceAmount.GreaterThan(*f.MaxBalance) {
		return false
	}
	if f.Search != "" {
		fields := []string{
			e.ClientName, e.ManualClientName,
			e.ReferenceNumber,
			e.Description, e.ManualDescription,
			e.Notes,
		}
		if !anyContainsFold(fields, f.Search) {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}

func anyContainsFold(fields []string, substr string) bool {
	for _, field := range fields {
		if field != "" && containsFold(field, substr) {
			return true
		}
	}
	return false
}
