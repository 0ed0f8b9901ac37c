package statement

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/bankstmt/internal/apperror"
	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/statementparser"
	"fjacquet/bankstmt/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uploader = models.Identity{UserID: "u1", DisplayName: "Asha", Role: "operator"}

func ledgerGrid(extra ...[]string) grid.Grid {
	rows := [][]string{
		{"HDFC BANK LTD"},
		{"Date", "Narration", "Chq./Ref.No.", "Withdrawal Amt.", "Deposit Amt.", "Closing Balance"},
		{"05/03/2024", "NEFT CR-HDFC-ABC CORP-XYZ LTD-REF", "REF1", "", "125000.50", "225000.50"},
		{"06/03/2024", "UPI-SHOP-9876", "", "500.00", "", "224500.50"},
	}
	return grid.FromStrings(append(rows, extra...))
}

func newTestService(t *testing.T) (*Service, *store.MemoryStore, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	repo := store.NewMemoryStore(logger)
	parser := statementparser.NewParser(statementparser.DefaultOptions(), logger)
	return NewService(repo, NewAssembler(parser, logger), logger), repo, logger
}

func TestAssemble_Status(t *testing.T) {
	tests := []struct {
		name       string
		grid       grid.Grid
		wantStatus models.ProcessingStatus
		wantTxs    int
		wantErrs   int
	}{
		{"completed", ledgerGrid(), models.StatusCompleted, 2, 0},
		{"partial on undated row", ledgerGrid([]string{"31/02/2024x", "BROKEN ROW", "", "1.00", "", ""}), models.StatusPartial, 2, 1},
		{"completed with bare summary block", ledgerGrid(
			[]string{"Opening Balance", "100500.00"},
			[]string{"Closing Balance", "224500.50"},
			[]string{"Total Debits", "500.00"},
		), models.StatusCompleted, 2, 0},
		{"failed without header", grid.FromStrings([][]string{{"HDFC BANK"}, {"nothing", "here"}}), models.StatusFailed, 0, 1},
		{"failed without transactions", grid.FromStrings([][]string{{"Date", "Narration", "Deposit"}}), models.StatusFailed, 0, 1},
		{"failed on empty grid", nil, models.StatusFailed, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := statementparser.NewParser(statementparser.DefaultOptions(), nil)
			st := NewAssembler(parser, nil).Assemble(IngestRequest{Grid: tt.grid, Uploader: uploader, FileName: "f.csv"})
			assert.Equal(t, tt.wantStatus, st.Status)
			assert.Len(t, st.Transactions, tt.wantTxs)
			assert.Len(t, st.Errors, tt.wantErrs)
			assert.NoError(t, models.ValidateUUID("id", st.ID))
		})
	}
}

func TestAssemble_PartialRecordsRow(t *testing.T) {
	parser := statementparser.NewParser(statementparser.DefaultOptions(), nil)
	st := NewAssembler(parser, nil).Assemble(IngestRequest{
		Grid:     ledgerGrid([]string{"someday", "BROKEN ROW", "", "1.00", "", ""}),
		Uploader: uploader,
	})
	require.Len(t, st.Errors, 1)
	assert.Equal(t, 5, st.Errors[0].Row)
	assert.Contains(t, st.Errors[0].Message, "someday")
}

func TestAssemble_CopiesInput(t *testing.T) {
	g := ledgerGrid()
	meta := map[string]string{"size": "123"}
	a := NewAssembler(statementparser.NewParser(statementparser.DefaultOptions(), nil), nil)
	a.now = func() time.Time { return time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC) }
	a.newID = func() string { return "fixed-id" }

	st := a.Assemble(IngestRequest{Grid: g, Uploader: uploader, FileMetadata: meta, Tags: []string{" March ", "march", ""}})

	g[2][1] = grid.TextCell("mutated")
	meta["size"] = "0"

	assert.Equal(t, "fixed-id", st.ID)
	assert.Equal(t, time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC), st.UploadedAt)
	assert.Equal(t, "NEFT CR-HDFC-ABC CORP-XYZ LTD-REF", st.RawGrid[2][1].Text)
	assert.Equal(t, "123", st.FileMetadata["size"])
	assert.Equal(t, []string{"March"}, st.Tags)
	assert.Equal(t, "HDFC Bank", st.Metadata.BankName)
}

func TestService_IngestAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _, logger := newTestService(t)

	st, err := svc.Ingest(ctx, IngestRequest{Grid: ledgerGrid(), Uploader: uploader, FileName: "/tmp/uploads/hdfc.csv"})
	require.NoError(t, err)
	assert.Equal(t, "hdfc.csv", st.FileName)
	assert.True(t, logger.HasEntry("INFO", "Statement ingested"))

	got, err := svc.Get(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "txn-0001", got.Transactions[0].ID)
	assert.Equal(t, models.TransactionTypeCredit, got.Transactions[0].Type)
	assert.True(t, got.Summary.ClosingBalance.Equal(decimal.RequireFromString("224500.50")))
}

func TestService_IngestFailedIsPersisted(t *testing.T) {
	ctx := context.Background()
	svc, repo, logger := newTestService(t)

	st, err := svc.Ingest(ctx, IngestRequest{Grid: grid.FromStrings([][]string{{"junk"}}), Uploader: uploader})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, st.Status)
	assert.Equal(t, "statement", st.FileName)
	assert.True(t, logger.HasEntry("WARN", "Statement ingested with processing errors"))

	_, err = repo.GetStatement(ctx, st.ID)
	assert.NoError(t, err)
}

func TestService_IngestValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Ingest(context.Background(), IngestRequest{Grid: ledgerGrid()})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestService_IngestSaveFailure(t *testing.T) {
	repo := store.NewMockStore()
	repo.SaveStatementError = errors.New("disk full")
	svc := NewService(repo, NewAssembler(statementparser.NewParser(statementparser.DefaultOptions(), nil), nil), nil)

	_, err := svc.Ingest(context.Background(), IngestRequest{Grid: ledgerGrid(), Uploader: uploader})
	assert.ErrorContains(t, err, "disk full")
}

func TestService_GetErrors(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	_, err = svc.Get(context.Background(), models.NewID())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestService_ListFilterAndPage(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for _, name := range []string{"jan.csv", "feb.csv", "mar.csv"} {
		_, err := svc.Ingest(ctx, IngestRequest{Grid: ledgerGrid(), Uploader: uploader, FileName: name})
		require.NoError(t, err)
	}
	_, err := svc.Ingest(ctx, IngestRequest{
		Grid:     grid.FromStrings([][]string{{"ICICI BANK"}, {"Date", "Narration", "Deposit"}, {"01/01/2023", "X", "1"}}),
		Uploader: uploader, FileName: "icici.csv",
	})
	require.NoError(t, err)

	all, total, err := svc.List(ctx, models.StatementFilter{}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, all, 4)

	hdfc, total, err := svc.List(ctx, models.StatementFilter{BankName: "hdfc"}, models.Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, hdfc, 1)
	assert.Equal(t, "feb.csv", hdfc[0].FileName)

	ranged, _, err := svc.List(ctx, models.StatementFilter{
		From: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}, models.Page{})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "icici.csv", ranged[0].FileName)

	searched, _, err := svc.List(ctx, models.StatementFilter{Search: "MAR"}, models.Page{})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "mar.csv", searched[0].FileName)
}

func TestService_Transactions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	st, err := svc.Ingest(ctx, IngestRequest{Grid: ledgerGrid(), Uploader: uploader})
	require.NoError(t, err)

	debits, err := svc.Transactions(ctx, st.ID, models.TransactionFilter{Type: models.TransactionTypeDebit})
	require.NoError(t, err)
	require.Len(t, debits, 1)
	assert.Equal(t, "txn-0002", debits[0].ID)

	minAmount := decimal.NewFromInt(1000)
	large, err := svc.Transactions(ctx, st.ID, models.TransactionFilter{MinAmount: &minAmount})
	require.NoError(t, err)
	require.Len(t, large, 1)
	assert.Equal(t, "txn-0001", large[0].ID)

	shop, err := svc.Transactions(ctx, st.ID, models.TransactionFilter{Search: "shop"})
	require.NoError(t, err)
	assert.Len(t, shop, 1)

	_, err = svc.Transactions(ctx, models.NewID(), models.TransactionFilter{})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
