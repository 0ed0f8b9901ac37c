// Package suspense maintains the suspense ledger: one adjustable entry per
// (statement, transaction) pair awaiting reconciliation.
//
// A zero balance and the CLEARED status always go together. Every balance
// change and clear appends an audit comment; entries are never deleted.
package suspense

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fjacquet/bankstmt/internal/apperror"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"

	"github.com/shopspring/decimal"
)

// Repository persists suspense entries. CreateSuspense must fail with
// *apperror.ConflictError when the pair already has an entry.
type Repository interface {
	CreateSuspense(ctx context.Context, e *models.SuspenseEntry) error
	GetSuspense(ctx context.Context, id string) (*models.SuspenseEntry, error)
	UpdateSuspense(ctx context.Context, id string, fn func(*models.SuspenseEntry) error) (*models.SuspenseEntry, error)
	ListSuspense(ctx context.Context) ([]*models.SuspenseEntry, error)
}

// StatementReader loads the statement an entry refers to.
type StatementReader interface {
	GetStatement(ctx context.Context, id string) (*models.Statement, error)
}

// ClientResolver infers a client name from a transaction.
type ClientResolver interface {
	Resolve(ctx context.Context, tx models.Transaction) (string, bool)
}

// Options holds the labels used when nothing better is known.
type Options struct {
	UnknownClient      string
	DefaultDescription string
	ReferencePrefix    string
}

// DefaultOptions returns the standard labels.
func DefaultOptions() Options {
	return Options{
		UnknownClient:      "Unknown Client",
		DefaultDescription: "Bank transaction",
		ReferencePrefix:    "SUS",
	}
}

// Service implements the suspense ledger operations.
type Service struct {
	repo       Repository
	statements StatementReader
	resolver   ClientResolver
	opts       Options
	logger     logging.Logger
	now        func() time.Time
	newID      func() string
}

// NewService creates a ledger service. A nil resolver leaves inference to
// the unknown-client label.
func NewService(repo Repository, statements StatementReader, resolver ClientResolver, opts Options, logger logging.Logger) *Service {
	def := DefaultOptions()
	if opts.UnknownClient == "" {
		opts.UnknownClient = def.UnknownClient
	}
	if opts.DefaultDescription == "" {
		opts.DefaultDescription = def.DefaultDescription
	}
	if opts.ReferencePrefix == "" {
		opts.ReferencePrefix = def.ReferencePrefix
	}
	return &Service{
		repo:       repo,
		statements: statements,
		resolver:   resolver,
		opts:       opts,
		logger:     logging.OrDefault(logger),
		now:        time.Now,
		newID:      models.NewID,
	}
}

// CreateRequest asks for one suspense entry. Balance is required; empty
// client name and description are inferred from the transaction.
type CreateRequest struct {
	StatementID   string
	TransactionID string
	Balance       *decimal.Decimal
	ClientName    string
	Description   string
	Notes         string
	Actor         models.Identity
}

// Create adds an entry for one persisted transaction.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.SuspenseEntry, error) {
	if err := req.Actor.Validate(); err != nil {
		return nil, err
	}
	if err := models.ValidateUUID("statement_id", req.StatementID); err != nil {
		return nil, err
	}
	st, err := s.statements.GetStatement(ctx, req.StatementID)
	if err != nil {
		return nil, err
	}
	return s.createFor(ctx, st, req)
}

// createFor validates the item-level fields and inserts the entry for a
// statement that is already loaded.
func (s *Service) createFor(ctx context.Context, st *models.Statement, req CreateRequest) (*models.SuspenseEntry, error) {
	if err := models.ValidateTransactionID(req.TransactionID); err != nil {
		return nil, err
	}
	if req.Balance == nil {
		return nil, &apperror.ValidationError{Field: "balance", Reason: "is required"}
	}
	if req.Balance.IsNegative() {
		return nil, &apperror.ValidationError{Field: "balance", Reason: "must not be negative"}
	}

	tx, ok := st.Transaction(req.TransactionID)
	if !ok {
		return nil, &apperror.NotFoundError{Kind: "transaction", ID: req.TransactionID}
	}

	now := s.now().UTC()
	entry := &models.SuspenseEntry{
		ID:              s.newID(),
		StatementID:     st.ID,
		TransactionID:   tx.ID,
		BalanceAmount:   *req.Balance,
		ClientName:      s.clientName(ctx, req.ClientName, tx),
		Description:     s.description(req.Description, tx),
		Notes:           strings.TrimSpace(req.Notes),
		Date:            tx.Date,
		ReferenceNumber: s.referenceNumber(st.ID, tx, now),
		Status:          models.SuspenseActive,
		Snapshot:        tx.Clone(),
		CreatedBy:       req.Actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	applyInvariant(entry, req.Actor, now)

	if err := s.repo.CreateSuspense(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Suspense entry created",
		logging.F(logging.FieldEntryID, entry.ID),
		logging.F(logging.FieldStatementID, entry.StatementID),
		logging.F(logging.FieldTransactionID, entry.TransactionID),
		logging.F(logging.FieldAmount, entry.BalanceAmount.StringFixed(2)),
		logging.F(logging.FieldUser, req.Actor.UserID))
	return entry, nil
}

func (s *Service) clientName(ctx context.Context, provided string, tx models.Transaction) string {
	if name := strings.TrimSpace(provided); name != "" {
		return name
	}
	if s.resolver != nil {
		if name, ok := s.resolver.Resolve(ctx, tx); ok {
			return name
		}
	}
	return s.opts.UnknownClient
}

func (s *Service) description(provided string, tx models.Transaction) string {
	if d := strings.TrimSpace(provided); d != "" {
		return d
	}
	if d := strings.TrimSpace(tx.Narration); d != "" {
		return d
	}
	return s.opts.DefaultDescription
}

// referenceNumber uses the cheque/reference number of the transaction, or
// a generated token that is not guaranteed unique.
func (s *Service) referenceNumber(statementID string, tx models.Transaction, now time.Time) string {
	if ref := strings.TrimSpace(tx.ChequeRef); ref != "" {
		return ref
	}
	return fmt.Sprintf("%s-%s-%s",
		s.opts.ReferencePrefix,
		strings.ToUpper(lastN(strings.ReplaceAll(statementID, "-", ""), 6)),
		lastN(strconv.FormatInt(now.UnixMilli(), 10), 6))
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// applyInvariant keeps status and balance consistent: a zero balance is
// CLEARED and stamped, a positive balance on a CLEARED entry reverts to
// ACTIVE with the clearing stamps removed.
func applyInvariant(e *models.SuspenseEntry, actor models.Identity, now time.Time) {
	switch {
	case e.BalanceAmount.IsZero():
		if e.Status != models.SuspenseCleared || e.ClearedAt == nil {
			stamp(e, actor, now)
		}
		e.Status = models.SuspenseCleared
	case e.Status == models.SuspenseCleared:
		e.Status = models.SuspenseActive
		e.ClearedAt = nil
		e.ClearedBy = nil
	}
}

func stamp(e *models.SuspenseEntry, actor models.Identity, now time.Time) {
	at := now
	by := actor
	e.ClearedAt = &at
	e.ClearedBy = &by
}

func (s *Service) comment(text string, actor models.Identity, now time.Time) models.Comment {
	return models.Comment{
		ID:        s.newID(),
		Text:      text,
		Author:    actor,
		CreatedAt: now,
	}
}

// mutate validates the actor and id, then applies fn to the stored entry.
func (s *Service) mutate(ctx context.Context, id string, actor models.Identity, fn func(e *models.SuspenseEntry, now time.Time) error) (*models.SuspenseEntry, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := models.ValidateUUID("suspense_id", id); err != nil {
		return nil, err
	}
	return s.repo.UpdateSuspense(ctx, id, func(e *models.SuspenseEntry) error {
		now := s.now().UTC()
		if err := fn(e, now); err != nil {
			return err
		}
		e.UpdatedAt = now
		return nil
	})
}

// UpdateBalance overwrites the balance and records the change.
func (s *Service) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, actor models.Identity) (*models.SuspenseEntry, error) {
	if balance.IsNegative() {
		return nil, &apperror.ValidationError{Field: "balance", Reason: "must not be negative"}
	}

	var old decimal.Decimal
	entry, err := s.mutate(ctx, id, actor, func(e *models.SuspenseEntry, now time.Time) error {
		old = e.BalanceAmount
		e.BalanceAmount = balance
		applyInvariant(e, actor, now)
		e.Comments = append(e.Comments, s.comment(
			fmt.Sprintf("Balance updated from %s to %s", old.StringFixed(2), balance.StringFixed(2)), actor, now))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Suspense balance updated",
		logging.F(logging.FieldEntryID, id),
		logging.F("old_amount", old.StringFixed(2)),
		logging.F(logging.FieldAmount, balance.StringFixed(2)),
		logging.F(logging.FieldStatus, string(entry.Status)),
		logging.F(logging.FieldUser, actor.UserID))
	return entry, nil
}

// Clear zeroes the balance and marks the entry CLEARED. Clearing an already
// cleared entry restamps it.
func (s *Service) Clear(ctx context.Context, id string, actor models.Identity) (*models.SuspenseEntry, error) {
	var cleared decimal.Decimal
	entry, err := s.mutate(ctx, id, actor, func(e *models.SuspenseEntry, now time.Time) error {
		cleared = e.BalanceAmount
		e.BalanceAmount = decimal.Zero
		e.Status = models.SuspenseCleared
		stamp(e, actor, now)
		e.Comments = append(e.Comments, s.comment(
			fmt.Sprintf("Cleared balance of %s", cleared.StringFixed(2)), actor, now))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Suspense entry cleared",
		logging.F(logging.FieldEntryID, id),
		logging.F(logging.FieldAmount, cleared.StringFixed(2)),
		logging.F(logging.FieldUser, actor.UserID))
	return entry, nil
}

// SetStatus changes the status manually. CLEARED behaves like Clear; any
// other status requires a positive balance.
func (s *Service) SetStatus(ctx context.Context, id string, status models.SuspenseStatus, actor models.Identity) (*models.SuspenseEntry, error) {
	status = models.SuspenseStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !status.IsValid() {
		return nil, &apperror.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status '%s'", status)}
	}
	if status == models.SuspenseCleared {
		return s.Clear(ctx, id, actor)
	}

	var previous models.SuspenseStatus
	entry, err := s.mutate(ctx, id, actor, func(e *models.SuspenseEntry, now time.Time) error {
		if !e.BalanceAmount.IsPositive() {
			return &apperror.ValidationError{
				Field:  "status",
				Reason: fmt.Sprintf("entry with zero balance must stay %s", models.SuspenseCleared),
			}
		}
		previous = e.Status
		e.Status = status
		e.Comments = append(e.Comments, s.comment(
			fmt.Sprintf("Status changed from %s to %s", previous, status), actor, now))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Suspense status changed",
		logging.F(logging.FieldEntryID, id),
		logging.F("old_status", string(previous)),
		logging.F(logging.FieldStatus, string(status)),
		logging.F(logging.FieldUser, actor.UserID))
	return entry, nil
}

// AddComment appends a free-text comment.
func (s *Service) AddComment(ctx context.Context, id, text string, actor models.Identity) (*models.SuspenseEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &apperror.ValidationError{Field: "comment", Reason: "text is required"}
	}
	return s.mutate(ctx, id, actor, func(e *models.SuspenseEntry, now time.Time) error {
		e.Comments = append(e.Comments, s.comment(text, actor, now))
		return nil
	})
}

// DetailsUpdate holds manual overrides. Nil fields are left unchanged; an
// empty string removes the override.
type DetailsUpdate struct {
	ClientName  *string
	Description *string
	Notes       *string
}

// UpdateDetails sets the manual client name, manual description and notes.
func (s *Service) UpdateDetails(ctx context.Context, id string, update DetailsUpdate, actor models.Identity) (*models.SuspenseEntry, error) {
	if update.ClientName == nil && update.Description == nil && update.Notes == nil {
		return nil, &apperror.ValidationError{Field: "details", Reason: "nothing to update"}
	}
	return s.mutate(ctx, id, actor, func(e *models.SuspenseEntry, now time.Time) error {
		var changed []string
		if update.ClientName != nil {
			e.ManualClientName = strings.TrimSpace(*update.ClientName)
			changed = append(changed, "client")
		}
		if update.Description != nil {
			e.ManualDescription = strings.TrimSpace(*update.Description)
			changed = append(changed, "description")
		}
		if update.Notes != nil {
			e.Notes = strings.TrimSpace(*update.Notes)
			changed = append(changed, "notes")
		}
		e.Comments = append(e.Comments, s.comment("Updated "+strings.Join(changed, ", "), actor, now))
		return nil
	})
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id string) (*models.SuspenseEntry, error) {
	if err := models.ValidateUUID("suspense_id", id); err != nil {
		return nil, err
	}
	return s.repo.GetSuspense(ctx, id)
}

// List returns one page of the entries matching filter, in creation order,
// along with the total number of matches.
func (s *Service) List(ctx context.Context, filter models.SuspenseFilter, page models.Page) ([]*models.SuspenseEntry, int, error) {
	matched, err := s.matching(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	start, end := page.Bounds(len(matched))
	return matched[start:end], len(matched), nil
}

// ListByStatement returns every entry of one statement, cleared ones
// included.
func (s *Service) ListByStatement(ctx context.Context, statementID string) ([]*models.SuspenseEntry, error) {
	if err := models.ValidateUUID("statement_id", statementID); err != nil {
		return nil, err
	}
	return s.matching(ctx, models.SuspenseFilter{StatementID: statementID, ShowCleared: true})
}

// Totals aggregates the entries matching filter.
func (s *Service) Totals(ctx context.Context, filter models.SuspenseFilter) (models.SuspenseTotals, error) {
	matched, err := s.matching(ctx, filter)
	if err != nil {
		return models.SuspenseTotals{}, err
	}
	return Summarize(matched), nil
}

// Summarize sums the balances and counts the entries.
func Summarize(entries []*models.SuspenseEntry) models.SuspenseTotals {
	totals := models.SuspenseTotals{TotalBalance: decimal.Zero}
	for _, e := range entries {
		totals.TotalBalance = totals.TotalBalance.Add(e.BalanceAmount)
		totals.Count++
		if e.IsCleared() {
			totals.ClearedCount++
		}
	}
	return totals
}

func (s *Service) matching(ctx context.Context, filter models.SuspenseFilter) ([]*models.SuspenseEntry, error) {
	all, err := s.repo.ListSuspense(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list suspense entries: %w", err)
	}
	var out []*models.SuspenseEntry
	for _, e := range all {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}
