// Package export writes transactions and suspense entries as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/bankstmt/internal/dateutils"
	"fjacquet/bankstmt/internal/fileutils"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"

	"github.com/gocarina/gocsv"
)

// TransactionRow is the CSV layout of one transaction.
type TransactionRow struct {
	StatementID   string `csv:"StatementID"`
	TransactionID string `csv:"TransactionID"`
	Date          string `csv:"Date"`
	ValueDate     string `csv:"ValueDate"`
	Narration     string `csv:"Narration"`
	ChequeRef     string `csv:"ChequeRef"`
	Withdrawal    string `csv:"Withdrawal"`
	Deposit       string `csv:"Deposit"`
	Balance       string `csv:"Balance"`
	Type          string `csv:"Type"`
	Mode          string `csv:"Mode"`
	Remitter      string `csv:"Remitter"`
	Beneficiary   string `csv:"Beneficiary"`
	BankName      string `csv:"BankName"`
}

// SuspenseRow is the CSV layout of one suspense entry.
type SuspenseRow struct {
	ID              string `csv:"ID"`
	StatementID     string `csv:"StatementID"`
	TransactionID   string `csv:"TransactionID"`
	Date            string `csv:"Date"`
	ReferenceNumber string `csv:"ReferenceNumber"`
	Client          string `csv:"Client"`
	Description     string `csv:"Description"`
	Balance         string `csv:"Balance"`
	Status          string `csv:"Status"`
	ClearedAt       string `csv:"ClearedAt"`
	ClearedBy       string `csv:"ClearedBy"`
	Notes           string `csv:"Notes"`
	Comments        int    `csv:"Comments"`
}

// Exporter writes CSV with a configurable delimiter.
type Exporter struct {
	delimiter rune
	logger    logging.Logger
}

// NewExporter creates an Exporter. A zero delimiter means comma.
func NewExporter(delimiter rune, logger logging.Logger) *Exporter {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Exporter{delimiter: delimiter, logger: logging.OrDefault(logger)}
}

// TransactionRows converts transactions of one statement.
func TransactionRows(statementID string, txs []models.Transaction) []TransactionRow {
	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, TransactionRow{
			StatementID:   statementID,
			TransactionID: tx.ID,
			Date:          dateutils.ToISODate(tx.Date),
			ValueDate:     dateutils.ToISODate(tx.ValueDate),
			Narration:     tx.Narration,
			ChequeRef:     tx.ChequeRef,
			Withdrawal:    tx.Withdrawal.StringFixed(2),
			Deposit:       tx.Deposit.StringFixed(2),
			Balance:       tx.Balance.StringFixed(2),
			Type:          string(tx.Type),
			Mode:          string(tx.Mode),
			Remitter:      tx.Remitter,
			Beneficiary:   tx.Beneficiary,
			BankName:      tx.BankName,
		})
	}
	return rows
}

// SuspenseRows converts suspense entries, using manual overrides where set.
func SuspenseRows(entries []*models.SuspenseEntry) []SuspenseRow {
	rows := make([]SuspenseRow, 0, len(entries))
	for _, e := range entries {
		row := SuspenseRow{
			ID:              e.ID,
			StatementID:     e.StatementID,
			TransactionID:   e.TransactionID,
			Date:            dateutils.ToISODate(e.Date),
			ReferenceNumber: e.ReferenceNumber,
			Client:          e.Client(),
			Description:     e.Details(),
			Balance:         e.BalanceAmount.StringFixed(2),
			Status:          string(e.Status),
			Notes:           e.Notes,
			Comments:        len(e.Comments),
		}
		if e.ClearedAt != nil {
			row.ClearedAt = e.ClearedAt.UTC().Format(dateutils.DateLayoutFull)
		}
		if e.ClearedBy != nil {
			row.ClearedBy = e.ClearedBy.Name()
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteTransactions writes the transactions of one statement to w.
func (x *Exporter) WriteTransactions(w io.Writer, statementID string, txs []models.Transaction) error {
	return x.write(w, TransactionRows(statementID, txs))
}

// WriteSuspense writes suspense entries to w.
func (x *Exporter) WriteSuspense(w io.Writer, entries []*models.SuspenseEntry) error {
	return x.write(w, SuspenseRows(entries))
}

func (x *Exporter) write(w io.Writer, rows interface{}) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = x.delimiter

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteFile creates path and fills it with write. "-" writes to stdout.
func (x *Exporter) WriteFile(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}

	if err := fileutils.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, models.PermissionReportFile)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			x.logger.WithError(err).Warn("Failed to close file", logging.F(logging.FieldFile, path))
		}
	}()

	if err := write(file); err != nil {
		x.logger.WithError(err).Error("Failed to export CSV", logging.F(logging.FieldFile, path))
		return err
	}

	x.logger.Info("Exported CSV file", logging.F(logging.FieldFile, path))
	return nil
}
