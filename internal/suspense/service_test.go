package suspense

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"fjacquet/bankstmt/internal/apperror"
	"fjacquet/bankstmt/internal/counterparty"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	operator = models.Identity{UserID: "u1", DisplayName: "Asha", Role: "operator"}
	fixedNow = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc         *Service
	repo        *store.MemoryStore
	logger      *logging.MockLogger
	statementID string
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newFixture(t *testing.T, resolver ClientResolver) *fixture {
	t.Helper()
	logger := logging.NewMockLogger()
	repo := store.NewMemoryStore(logger)

	st := &models.Statement{
		ID:       models.NewID(),
		FileName: "hdfc.csv",
		Metadata: models.NewStatementMetadata("INR"),
		Status:   models.StatusCompleted,
		Transactions: []models.Transaction{
			{
				ID: models.TransactionID(0), Date: day(5),
				Narration: "NEFT CR-HDFC-ABC CORP-XYZ LTD-REF123", ChequeRef: "REF123",
				Deposit: decimal.NewFromInt(50000), Type: models.TransactionTypeCredit, Mode: models.PaymentModeNEFT,
				Remitter: "ABC CORP", Beneficiary: "XYZ LTD", BankName: "HDFC",
			},
			{
				ID: models.TransactionID(1), Date: day(6),
				Narration: "UPI-SHOP-9876", Withdrawal: decimal.NewFromInt(500),
				Type: models.TransactionTypeDebit, Mode: models.PaymentModeUPI,
			},
			{
				ID: models.TransactionID(2), Date: day(7),
				Narration: "IMPS-P2A-123456789", Deposit: decimal.NewFromInt(300),
				Type: models.TransactionTypeCredit, Mode: models.PaymentModeIMPS,
			},
		},
	}
	require.NoError(t, repo.SaveStatement(context.Background(), st))

	svc := NewService(repo, repo, resolver, DefaultOptions(), logger)
	svc.now = func() time.Time { return fixedNow }
	return &fixture{svc: svc, repo: repo, logger: logger, statementID: st.ID}
}

func (f *fixture) create(t *testing.T, txID, balance string) *models.SuspenseEntry {
	t.Helper()
	e, err := f.svc.Create(context.Background(), CreateRequest{
		StatementID: f.statementID, TransactionID: txID, Balance: amount(balance), Actor: operator,
	})
	require.NoError(t, err)
	return e
}

func TestCreate_Inference(t *testing.T) {
	f := newFixture(t, counterparty.NewDefaultResolver(nil, nil))

	neft := f.create(t, "txn-0001", "50000")
	assert.Equal(t, "XYZ LTD", neft.ClientName)
	assert.Equal(t, "NEFT CR-HDFC-ABC CORP-XYZ LTD-REF123", neft.Description)
	assert.Equal(t, "REF123", neft.ReferenceNumber)
	assert.Equal(t, models.SuspenseActive, neft.Status)
	assert.Equal(t, day(5), neft.Date)
	assert.Equal(t, "XYZ LTD", neft.Snapshot.Beneficiary)
	assert.Empty(t, neft.Comments)
	assert.Nil(t, neft.ClearedAt)
	assert.Equal(t, operator, neft.CreatedBy)

	upi := f.create(t, "txn-0002", "500")
	assert.Equal(t, "SHOP", upi.ClientName)
	millis := strconv.FormatInt(fixedNow.UnixMilli(), 10)
	statementTail := strings.ToUpper(f.statementID[len(f.statementID)-6:])
	assert.Equal(t, "SUS-"+statementTail+"-"+millis[len(millis)-6:], upi.ReferenceNumber)

	imps := f.create(t, "txn-0003", "300")
	assert.Equal(t, "Unknown Client", imps.ClientName)
}

func TestCreate_OperatorInputWins(t *testing.T) {
	f := newFixture(t, counterparty.NewDefaultResolver(nil, nil))
	e, err := f.svc.Create(context.Background(), CreateRequest{
		StatementID: f.statementID, TransactionID: "txn-0001", Balance: amount("10"),
		ClientName: " Manual Client ", Description: "Advance", Notes: "call back", Actor: operator,
	})
	require.NoError(t, err)
	assert.Equal(t, "Manual Client", e.ClientName)
	assert.Equal(t, "Advance", e.Description)
	assert.Equal(t, "call back", e.Notes)
}

type failingAI struct{}

func (failingAI) IdentifyCounterparty(context.Context, models.Transaction) (string, error) {
	return "", errors.New("model unavailable")
}

func TestCreate_AIFailureFallsBackToUnknown(t *testing.T) {
	f := newFixture(t, counterparty.NewDefaultResolver(failingAI{}, nil))
	e := f.create(t, "txn-0003", "300")
	assert.Equal(t, "Unknown Client", e.ClientName)
}

func TestCreate_ZeroBalanceIsCleared(t *testing.T) {
	f := newFixture(t, nil)
	e := f.create(t, "txn-0003", "0")
	assert.Equal(t, models.SuspenseCleared, e.Status)
	require.NotNil(t, e.ClearedAt)
	assert.Equal(t, fixedNow, *e.ClearedAt)
	require.NotNil(t, e.ClearedBy)
	assert.Equal(t, "u1", e.ClearedBy.UserID)
}

func TestCreate_Errors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.create(t, "txn-0001", "100")

	tests := []struct {
		name   string
		req    CreateRequest
		target error
	}{
		{"missing actor", CreateRequest{StatementID: f.statementID, TransactionID: "txn-0002", Balance: amount("1")}, apperror.ErrInvalidInput},
		{"missing balance", CreateRequest{StatementID: f.statementID, TransactionID: "txn-0002", Actor: operator}, apperror.ErrInvalidInput},
		{"negative balance", CreateRequest{StatementID: f.statementID, TransactionID: "txn-0002", Balance: amount("-1"), Actor: operator}, apperror.ErrInvalidInput},
		{"malformed statement id", CreateRequest{StatementID: "abc", TransactionID: "txn-0002", Balance: amount("1"), Actor: operator}, apperror.ErrInvalidInput},
		{"malformed transaction id", CreateRequest{StatementID: f.statementID, TransactionID: "2", Balance: amount("1"), Actor: operator}, apperror.ErrInvalidInput},
		{"unknown statement", CreateRequest{StatementID: models.NewID(), TransactionID: "txn-0002", Balance: amount("1"), Actor: operator}, apperror.ErrNotFound},
		{"unknown transaction", CreateRequest{StatementID: f.statementID, TransactionID: "txn-0099", Balance: amount("1"), Actor: operator}, apperror.ErrNotFound},
		{"duplicate pair", CreateRequest{StatementID: f.statementID, TransactionID: "txn-0001", Balance: amount("1"), Actor: operator}, apperror.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.req)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	all, err := f.repo.ListSuspense(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreate_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t, nil)
	const attempts = 20

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(context.Background(), CreateRequest{
				StatementID: f.statementID, TransactionID: "txn-0002", Balance: amount("500"), Actor: operator,
			})
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else if errors.Is(err, apperror.ErrConflict) {
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestClear(t *testing.T) {
	f := newFixture(t, nil)
	e := f.create(t, "txn-0002", "500")
	clearer := models.Identity{UserID: "u2", DisplayName: "Ravi"}

	cleared, err := f.svc.Clear(context.Background(), e.ID, clearer)
	require.NoError(t, err)
	assert.True(t, cleared.BalanceAmount.IsZero())
	assert.Equal(t, models.SuspenseCleared, cleared.Status)
	require.NotNil(t, cleared.ClearedAt)
	assert.Equal(t, fixedNow, *cleared.ClearedAt)
	require.NotNil(t, cleared.ClearedBy)
	assert.Equal(t, "u2", cleared.ClearedBy.UserID)
	require.Len(t, cleared.Comments, 1)
	assert.Equal(t, "Cleared balance of 500.00", cleared.Comments[0].Text)
	assert.Equal(t, clearer, cleared.Comments[0].Author)

	again, err := f.svc.Clear(context.Background(), e.ID, operator)
	require.NoError(t, err)
	assert.Len(t, again.Comments, 2)
	assert.Equal(t, "u1", again.ClearedBy.UserID)

	_, err = f.svc.Clear(context.Background(), models.NewID(), operator)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateBalance_Invariant(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	e := f.create(t, "txn-0002", "500")

	partial, err := f.svc.UpdateBalance(ctx, e.ID, decimal.NewFromInt(200), operator)
	require.NoError(t, err)
	assert.Equal(t, models.SuspenseActive, partial.Status)
	require.Len(t, partial.Comments, 1)
	assert.Equal(t, "Balance updated from 500.00 to 200.00", partial.Comments[0].Text)

	zero, err := f.svc.UpdateBalance(ctx, e.ID, decimal.Zero, operator)
	require.NoError(t, err)
	assert.Equal(t, models.SuspenseCleared, zero.Status)
	assert.NotNil(t, zero.ClearedAt)
	assert.NotNil(t, zero.ClearedBy)

	reopened, err := f.svc.UpdateBalance(ctx, e.ID, decimal.NewFromInt(50), operator)
	require.NoError(t, err)
	assert.Equal(t, models.SuspenseActive, reopened.Status)
	assert.Nil(t, reopened.ClearedAt)
	assert.Nil(t, reopened.ClearedBy)
	assert.Len(t, reopened.Comments, 3)

	_, err = f.svc.UpdateBalance(ctx, e.ID, decimal.NewFromInt(-5), operator)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	_, err = f.svc.UpdateBalance(ctx, "nope", decimal.NewFromInt(5), operator)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestUpdateBalance_KeepsManualStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	e := f.create(t, "txn-0002", "500")

	_, err := f.svc.SetStatus(ctx, e.ID, models.SuspenseDisputed, operator)
	require.NoError(t, err)
	updated, err := f.svc.UpdateBalance(ctx, e.ID, decimal.NewFromInt(100), operator)
	require.NoError(t, err)
	assert.Equal(t, models.SuspenseDisputed, updated.Status)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	e := f.create(t, "txn-0002", "500")

	pending, err := f.svc.SetStatus(ctx, e.ID, "pending", operator)
	require.NoError(t, err)
	assert.Equal(t, models.SuspensePending, pending.Status)
	assert.Equal(t, "Status changed from ACTIVE to PENDING", pending.Comments[0].Text)

	_, err = f.svc.SetStatus(ctx, e.ID, "FOO", operator)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	cleared, err := f.svc.SetStatus(ctx, e.ID, models.SuspenseCleared, operator)
	require.NoError(t, err)
	assert.True(t, cleared.BalanceAmount.IsZero())
	assert.Equal(t, models.SuspenseCleared, cleared.Status)

	_, err = f.svc.SetStatus(ctx, e.ID, models.SuspenseActive, operator)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	stored, err := f.svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SuspenseCleared, stored.Status)
}

func TestAddCommentAndDetails(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	e := f.create(t, "txn-0003", "300")

	_, err := f.svc.AddComment(ctx, e.ID, "   ", operator)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	commented, err := f.svc.AddComment(ctx, e.ID, "Client called", operator)
	require.NoError(t, err)
	require.Len(t, commented.Comments, 1)
	assert.Equal(t, "Client called", commented.Comments[0].Text)
	assert.NotEmpty(t, commented.Comments[0].ID)

	client, notes := "Ravi Kumar", "awaiting invoice"
	updated, err := f.svc.UpdateDetails(ctx, e.ID, DetailsUpdate{ClientName: &client, Notes: &notes}, operator)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", updated.Client())
	assert.Equal(t, "Unknown Client", updated.ClientName)
	assert.Equal(t, "awaiting invoice", updated.Notes)
	assert.Equal(t, "Updated client, notes", updated.Comments[1].Text)

	_, err = f.svc.UpdateDetails(ctx, e.ID, DetailsUpdate{}, operator)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestListAndTotals(t *testing.T) {
	f := newFixture(t, counterparty.NewDefaultResolver(nil, nil))
	ctx := context.Background()
	f.create(t, "txn-0001", "500")
	f.create(t, "txn-0002", "0")
	imps := f.create(t, "txn-0003", "300")

	client := "Ravi Kumar"
	_, err := f.svc.UpdateDetails(ctx, imps.ID, DetailsUpdate{ClientName: &client}, operator)
	require.NoError(t, err)

	open, total, err := f.svc.List(ctx, models.SuspenseFilter{}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, open, 2)

	totals, err := f.svc.Totals(ctx, models.SuspenseFilter{})
	require.NoError(t, err)
	assert.True(t, totals.TotalBalance.Equal(decimal.NewFromInt(800)))
	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, 0, totals.ClearedCount)

	totals, err = f.svc.Totals(ctx, models.SuspenseFilter{ShowCleared: true})
	require.NoError(t, err)
	assert.Equal(t, 3, totals.Count)
	assert.Equal(t, 1, totals.ClearedCount)

	byClient, _, err := f.svc.List(ctx, models.SuspenseFilter{Client: "ravi"}, models.Page{})
	require.NoError(t, err)
	require.Len(t, byClient, 1)
	assert.Equal(t, imps.ID, byClient[0].ID)

	byRef, _, err := f.svc.List(ctx, models.SuspenseFilter{Search: "ref123", ShowCleared: true}, models.Page{})
	require.NoError(t, err)
	assert.Len(t, byRef, 1)

	ranged, _, err := f.svc.List(ctx, models.SuspenseFilter{From: day(6), To: day(7), ShowCleared: true}, models.Page{})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	paged, total, err := f.svc.List(ctx, models.SuspenseFilter{ShowCleared: true}, models.Page{Offset: 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, paged, 1)
	assert.Equal(t, imps.ID, paged[0].ID)

	byStatement, err := f.svc.ListByStatement(ctx, f.statementID)
	require.NoError(t, err)
	assert.Len(t, byStatement, 3)

	empty, err := f.svc.ListByStatement(ctx, models.NewID())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
