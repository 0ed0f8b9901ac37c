package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/bankstmt/internal/apperror"
	"fjacquet/bankstmt/internal/config"
	"fjacquet/bankstmt/internal/container"
	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/statement"
	"fjacquet/bankstmt/internal/suspense"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*container.Container, *models.Statement) {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DataFile = filepath.Join(t.TempDir(), "ledger.yaml")
	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	g := grid.FromStrings([][]string{
		{"HDFC BANK LTD"},
		{"Date", "Narration", "Chq./Ref.No.", "Withdrawal Amt.", "Deposit Amt.", "Closing Balance"},
		{"05/03/2024", "NEFT CR-HDFC-ABC CORP-XYZ LTD-REF", "REF1", "", "125000.50", "225000.50"},
		{"06/03/2024", "=HYPERLINK(\"x\")", "REF2", "2000.00", "", "223000.50"},
	})
	st, err := c.GetStatementService().Ingest(context.Background(), statement.IngestRequest{
		Grid: g, Uploader: c.Operator(), FileName: "hdfc.csv",
	})
	require.NoError(t, err)
	return c, st
}

func TestExportCommand_Metadata(t *testing.T) {
	assert.Equal(t, "export", Cmd.Use)
	assert.Contains(t, Cmd.Long, "Example")
	assert.Len(t, Cmd.Commands(), 2)
}

func TestRunTransactions(t *testing.T) {
	c, st := setup(t)

	var out bytes.Buffer
	require.NoError(t, RunTransactions(context.Background(), &out, c, st.ID, TransactionOptions{}))
	assert.Contains(t, out.String(), "StatementID,TransactionID,Date")
	assert.Contains(t, out.String(), "txn-0001")
	assert.Contains(t, out.String(), "125000.50")
	assert.NotContains(t, out.String(), ",=HYPERLINK")

	out.Reset()
	require.NoError(t, RunTransactions(context.Background(), &out, c, st.ID, TransactionOptions{Type: "credit"}))
	assert.NotContains(t, out.String(), "txn-0002")

	err := RunTransactions(context.Background(), &out, c, uuid.NewString(), TransactionOptions{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRunSuspense_File(t *testing.T) {
	c, st := setup(t)
	balance := decimal.NewFromInt(750)
	_, err := c.GetSuspenseService().Create(context.Background(), suspense.CreateRequest{
		StatementID: st.ID, TransactionID: "txn-0001", Balance: &balance, Actor: c.Operator(),
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "suspense.csv")
	var out bytes.Buffer
	require.NoError(t, RunSuspense(context.Background(), &out, c, SuspenseOptions{Output: path}))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ReferenceNumber")
	assert.Contains(t, string(data), "XYZ LTD")
	assert.Contains(t, string(data), "750.00")
}
