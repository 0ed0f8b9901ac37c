package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SuspenseStatus is the reconciliation state of a suspense entry.
type SuspenseStatus string

const (
	SuspenseActive   SuspenseStatus = "ACTIVE"
	SuspenseCleared  SuspenseStatus = "CLEARED"
	SuspensePending  SuspenseStatus = "PENDING"
	SuspenseDisputed SuspenseStatus = "DISPUTED"
)

// IsValid reports whether s is one of the known statuses.
func (s SuspenseStatus) IsValid() bool {
	switch s {
	case SuspenseActive, SuspenseCleared, SuspensePending, SuspenseDisputed:
		return true
	}
	return false
}

// Comment is one entry of a suspense entry's append-only audit log.
type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Author    Identity  `json:"author" yaml:"author"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SuspenseEntry tracks the unreconciled balance of one statement
// transaction. A zero balance and CLEARED status always go together.
type SuspenseEntry struct {
	ID                string          `json:"id" yaml:"id"`
	StatementID       string          `json:"statement_id" yaml:"statement_id"`
	TransactionID     string          `json:"transaction_id" yaml:"transaction_id"`
	BalanceAmount     decimal.Decimal `json:"balance_amount" yaml:"balance_amount"`
	ClientName        string          `json:"client_name" yaml:"client_name"`
	ManualClientName  string          `json:"manual_client_name,omitempty" yaml:"manual_client_name,omitempty"`
	Description       string          `json:"description" yaml:"description"`
	ManualDescription string          `json:"manual_description,omitempty" yaml:"manual_description,omitempty"`
	Notes             string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Date              time.Time       `json:"date" yaml:"date"`
	ReferenceNumber   string          `json:"reference_number" yaml:"reference_number"`
	Status            SuspenseStatus  `json:"status" yaml:"status"`
	ClearedAt         *time.Time      `json:"cleared_at,omitempty" yaml:"cleared_at,omitempty"`
	ClearedBy         *Identity       `json:"cleared_by,omitempty" yaml:"cleared_by,omitempty"`
	Comments          []Comment       `json:"comments" yaml:"comments"`
	Snapshot          Transaction     `json:"transaction_snapshot" yaml:"transaction_snapshot"`
	CreatedBy         Identity        `json:"created_by" yaml:"created_by"`
	CreatedAt         time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" yaml:"updated_at"`
}

// Client returns the manual client override when set, else the inferred one.
func (e *SuspenseEntry) Client() string {
	if e.ManualClientName != "" {
		return e.ManualClientName
	}
	return e.ClientName
}

// Details returns the manual description override when set, else the
// inferred one.
func (e *SuspenseEntry) Details() string {
	if e.ManualDescription != "" {
		return e.ManualDescription
	}
	return e.Description
}

// IsCleared reports whether the entry is CLEARED.
func (e *SuspenseEntry) IsCleared() bool {
	return e.Status == SuspenseCleared
}

// Clone returns a deep copy of the entry.
func (e *SuspenseEntry) Clone() *SuspenseEntry {
	if e == nil {
		return nil
	}
	c := *e
	if e.ClearedAt != nil {
		t := *e.ClearedAt
		c.ClearedAt = &t
	}
	if e.ClearedBy != nil {
		id := *e.ClearedBy
		c.ClearedBy = &id
	}
	c.Comments = append([]Comment(nil), e.Comments...)
	c.Snapshot = e.Snapshot.Clone()
	return &c
}

// SuspenseTotals aggregates entries matching a filter.
type SuspenseTotals struct {
	TotalBalance decimal.Decimal `json:"total_balance" yaml:"total_balance"`
	Count        int             `json:"count" yaml:"count"`
	ClearedCount int             `json:"cleared_count" yaml:"cleared_count"`
}
