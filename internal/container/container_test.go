package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/bankstmt/internal/config"
	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/statement"
	"fjacquet/bankstmt/internal/suspense"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(nil)
	assert.EqualError(t, err, "configuration cannot be nil")

	_, err = NewContainerWithLogger(nil, nil)
	assert.Error(t, err)
}

func TestNewContainer_Wiring(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DataFile = filepath.Join(t.TempDir(), "ledger.yaml")

	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	assert.NotNil(t, c.GetLogger())
	assert.Same(t, cfg, c.GetConfig())
	assert.NotNil(t, c.GetStore())
	assert.NotNil(t, c.GetResolver())
	assert.NotNil(t, c.GetStatementService())
	assert.NotNil(t, c.GetSuspenseService())
	assert.NotNil(t, c.GetFileIngester())
	assert.NotNil(t, c.GetAggregator())
	assert.NotNil(t, c.GetExporter())
	assert.NotNil(t, c.GetReportGenerator())
	assert.Equal(t, "cli", c.Operator().UserID)
	assert.Equal(t, cfg.Storage.DataFile, c.GetStore().DataFile())
	assert.NoError(t, c.Close())
}

func TestContainer_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.DataFile = filepath.Join(t.TempDir(), "ledger.yaml")

	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	g := grid.FromStrings([][]string{
		{"HDFC BANK LTD"},
		{"Date", "Narration", "Chq./Ref.No.", "Withdrawal Amt.", "Deposit Amt.", "Closing Balance"},
		{"05/03/2024", "NEFT CR-HDFC-ABC CORP-XYZ LTD-REF", "REF1", "", "125000.50", "225000.50"},
	})
	st, err := c.GetStatementService().Ingest(ctx, statement.IngestRequest{Grid: g, Uploader: c.Operator(), FileName: "hdfc.csv"})
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, st.Status)

	balance := decimal.NewFromInt(500)
	entry, err := c.GetSuspenseService().Create(ctx, suspense.CreateRequest{
		StatementID: st.ID, TransactionID: "txn-0001", Balance: &balance, Actor: c.Operator(),
	})
	require.NoError(t, err)
	assert.Equal(t, "XYZ LTD", entry.ClientName)
	require.NoError(t, c.Close())

	reopened, err := NewContainerWithLogger(cfg, nil)
	require.NoError(t, err)
	got, err := reopened.GetSuspenseService().Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, got.BalanceAmount.Equal(balance))

	_, err = os.Stat(cfg.Storage.DataFile)
	assert.NoError(t, err)
}

func TestDelimiter(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, ',', Delimiter(cfg))
	cfg.Extraction.CSVDelimiter = ";"
	assert.Equal(t, ';', Delimiter(cfg))
	assert.Equal(t, ',', Delimiter(nil))
}
