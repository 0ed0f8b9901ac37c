// Package export implements the export command
package export

import (
	"context"
	"io"
	"strings"

	"fjacquet/bankstmt/cmd/root"
	"fjacquet/bankstmt/internal/container"
	"fjacquet/bankstmt/internal/models"

	"github.com/spf13/cobra"
)

// TransactionOptions holds the export transactions flags
type TransactionOptions struct {
	Type   string
	Search string
	Output string
}

// SuspenseOptions holds the export suspense flags
type SuspenseOptions struct {
	Statement string
	Status    string
	Client    string
	All       bool
	Output    string
}

var (
	txOpts       TransactionOptions
	suspenseOpts SuspenseOptions
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions or suspense entries to CSV",
	Long: `Export the transactions of a statement or the suspense ledger to CSV.

Cells that a spreadsheet would evaluate as formulas are escaped. Without
--output the CSV is written to standard output.

Example:
  bankstmt export transactions <statement-id> -o march.csv
  bankstmt export suspense --all -o suspense.csv`,
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions STATEMENT_ID",
	Short: "Export the transactions of a statement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunTransactions(cmd.Context(), cmd.OutOrStdout(), c, args[0], txOpts)
	},
}

var suspenseCmd = &cobra.Command{
	Use:   "suspense",
	Short: "Export suspense entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunSuspense(cmd.Context(), cmd.OutOrStdout(), c, suspenseOpts)
	},
}

func init() {
	transactionsCmd.Flags().StringVar(&txOpts.Type, "type", "", "Filter by type (CREDIT, DEBIT, TRANSFER, OTHER)")
	transactionsCmd.Flags().StringVarP(&txOpts.Search, "search", "s", "", "Search narration, reference and parties")
	transactionsCmd.Flags().StringVarP(&txOpts.Output, "output", "o", "", "Output CSV file (default stdout)")

	suspenseCmd.Flags().StringVar(&suspenseOpts.Statement, "statement", "", "Filter by statement id")
	suspenseCmd.Flags().StringVar(&suspenseOpts.Status, "status", "", "Filter by status")
	suspenseCmd.Flags().StringVar(&suspenseOpts.Client, "client", "", "Filter by client name (substring)")
	suspenseCmd.Flags().BoolVarP(&suspenseOpts.All, "all", "a", false, "Include cleared entries")
	suspenseCmd.Flags().StringVarP(&suspenseOpts.Output, "output", "o", "", "Output CSV file (default stdout)")

	Cmd.AddCommand(transactionsCmd, suspenseCmd)
}

// RunTransactions exports the matching transactions of one statement.
func RunTransactions(ctx context.Context, w io.Writer, c *container.Container, statementID string, o TransactionOptions) error {
	filter := models.TransactionFilter{
		Type:   models.TransactionType(strings.ToUpper(strings.TrimSpace(o.Type))),
		Search: o.Search,
	}
	txs, err := c.GetStatementService().Transactions(ctx, statementID, filter)
	if err != nil {
		return err
	}
	return writeCSV(w, c, o.Output, func(out io.Writer) error {
		return c.GetExporter().WriteTransactions(out, statementID, txs)
	})
}

// RunSuspense exports the matching suspense entries.
func RunSuspense(ctx context.Context, w io.Writer, c *container.Container, o SuspenseOptions) error {
	filter := models.SuspenseFilter{
		StatementID: strings.TrimSpace(o.Statement),
		Status:      models.SuspenseStatus(strings.ToUpper(strings.TrimSpace(o.Status))),
		Client:      o.Client,
		ShowCleared: o.All,
	}
	entries, _, err := c.GetSuspenseService().List(ctx, filter, models.Page{})
	if err != nil {
		return err
	}
	return writeCSV(w, c, o.Output, func(out io.Writer) error {
		return c.GetExporter().WriteSuspense(out, entries)
	})
}

func writeCSV(w io.Writer, c *container.Container, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(w)
	}
	return c.GetExporter().WriteFile(path, write)
}
