package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/bankstmt/internal/config"
	"fjacquet/bankstmt/internal/container"
	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/statement"
	"fjacquet/bankstmt/internal/suspense"

	ireport "fjacquet/bankstmt/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func setup(t *testing.T) *container.Container {
	t.Helper()
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.DataFile = filepath.Join(t.TempDir(), "ledger.yaml")
	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	g := grid.FromStrings([][]string{
		{"HDFC BANK LTD"},
		{"Date", "Narration", "Chq./Ref.No.", "Withdrawal Amt.", "Deposit Amt.", "Closing Balance"},
		{"05/03/2024", "NEFT CR-HDFC-ABC CORP-XYZ LTD-REF", "REF1", "", "125000.50", "225000.50"},
		{"06/03/2024", "NEFT CR-HDFC-ABC CORP-XYZ LTD-REF2", "REF2", "", "1000.00", "226000.50"},
	})
	st, err := c.GetStatementService().Ingest(ctx, statement.IngestRequest{Grid: g, Uploader: c.Operator(), FileName: "hdfc.csv"})
	require.NoError(t, err)

	for _, tx := range []string{"txn-0001", "txn-0002"} {
		balance := decimal.NewFromInt(400)
		_, err := c.GetSuspenseService().Create(ctx, suspense.CreateRequest{
			StatementID: st.ID, TransactionID: tx, Balance: &balance, Actor: c.Operator(),
		})
		require.NoError(t, err)
	}
	entries, _, err := c.GetSuspenseService().List(ctx, models.SuspenseFilter{ShowCleared: true}, models.Page{})
	require.NoError(t, err)
	_, err = c.GetSuspenseService().Clear(ctx, entries[1].ID, c.Operator())
	require.NoError(t, err)
	return c
}

func TestReportCommand_Metadata(t *testing.T) {
	assert.Equal(t, "report", Cmd.Use)
	assert.Contains(t, Cmd.Long, "Example")
	for _, name := range []string{"format", "output", "statement", "open-only", "include-entries"} {
		assert.NotNil(t, Cmd.Flags().Lookup(name), name)
	}
}

func TestRun_JSON(t *testing.T) {
	c := setup(t)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), &out, c, Options{Format: "json", IncludeEntries: true}))

	var r ireport.SuspenseReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &r))
	assert.Equal(t, 2, r.Totals.Count)
	assert.Equal(t, 1, r.Totals.ClearedCount)
	assert.True(t, r.Totals.TotalBalance.Equal(decimal.NewFromInt(400)))
	assert.Len(t, r.Entries, 2)
	require.Len(t, r.ByClient, 1)
	assert.Equal(t, 1, r.ByClient[0].Count)
}

func TestRun_OpenOnlyYAMLFile(t *testing.T) {
	c := setup(t)
	path := filepath.Join(t.TempDir(), "reports", "suspense.yaml")

	require.NoError(t, Run(context.Background(), &bytes.Buffer{}, c, Options{Format: "yaml", Output: path, OpenOnly: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var r map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &r))
	assert.Contains(t, r, "totals")
	assert.NotContains(t, r, "entries")
}

func TestRun_UnsupportedFormat(t *testing.T) {
	c := setup(t)
	err := Run(context.Background(), &bytes.Buffer{}, c, Options{Format: "pdf"})
	assert.EqualError(t, err, "unsupported report format: pdf")
}
