// Package ingest implements the ingest command
package ingest

import (
	"context"
	"fmt"
	"io"

	"fjacquet/bankstmt/cmd/common"
	"fjacquet/bankstmt/cmd/root"
	"fjacquet/bankstmt/internal/batch"
	"fjacquet/bankstmt/internal/container"
	"fjacquet/bankstmt/internal/fileutils"
	"fjacquet/bankstmt/internal/models"

	"github.com/spf13/cobra"
)

// Options holds the ingest flags
type Options struct {
	Tags   []string
	Format string
}

var opts Options

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Ingest bank statement files",
	Long: `Ingest one or more bank statement files (CSV, XLSX or XLS). A directory
argument ingests every statement file below it.

Each file is scanned for account metadata, the transaction header row, the
transactions and the summary totals, then stored as a statement. Files are
processed concurrently; a failing file does not stop the others.

Example:
  bankstmt ingest --tags march,hdfc statements/*.xlsx
  bankstmt ingest statements/2024/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), cmd.OutOrStdout(), c, args, opts)
	},
}

func init() {
	Cmd.Flags().StringSliceVarP(&opts.Tags, "tags", "t", nil, "Tags attached to every ingested statement")
	Cmd.Flags().StringVarP(&opts.Format, "format", "f", common.FormatTable, "Output format (table, json, yaml)")
}

type fileSummary struct {
	File         string `json:"file" yaml:"file"`
	StatementID  string `json:"statement_id,omitempty" yaml:"statement_id,omitempty"`
	Status       string `json:"status" yaml:"status"`
	Bank         string `json:"bank,omitempty" yaml:"bank,omitempty"`
	Account      string `json:"account,omitempty" yaml:"account,omitempty"`
	Transactions int    `json:"transactions" yaml:"transactions"`
	Errors       int    `json:"errors" yaml:"errors"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run ingests paths and prints one line per file followed by the account
// groups. It fails only when no file could be ingested.
func Run(ctx context.Context, w io.Writer, c *container.Container, paths []string, o Options) error {
	if err := common.ValidateFormat(o.Format); err != nil {
		return err
	}

	files, err := fileutils.ExpandInputs(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no statement files found")
	}

	results := c.GetFileIngester().IngestFiles(ctx, files, c.Operator(), o.Tags)

	summaries := make([]fileSummary, 0, len(results))
	ingested := make([]batch.FileResult, 0, len(results))
	for _, r := range results {
		s := fileSummary{File: r.Path}
		if r.Err != nil {
			s.Status = "ERROR"
			s.Error = r.Err.Error()
		} else {
			s.StatementID = r.Statement.ID
			s.Status = string(r.Statement.Status)
			s.Bank = r.Statement.Metadata.BankName
			s.Account = r.Statement.Metadata.AccountNumber
			s.Transactions = len(r.Statement.Transactions)
			s.Errors = len(r.Statement.Errors)
			ingested = append(ingested, r)
		}
		summaries = append(summaries, s)
	}

	if o.Format != common.FormatTable {
		if err := common.WriteStructured(w, o.Format, summaries); err != nil {
			return err
		}
	} else if err := writeTable(w, c, summaries, ingested); err != nil {
		return err
	}

	if len(ingested) == 0 {
		return fmt.Errorf("no statement could be ingested from %d file(s)", len(files))
	}
	return nil
}

func writeTable(w io.Writer, c *container.Container, summaries []fileSummary, ingested []batch.FileResult) error {
	tw := common.NewTable(w)
	fmt.Fprintln(tw, "FILE\tSTATUS\tSTATEMENT\tBANK\tACCOUNT\tTXNS\tERRORS")
	for _, s := range summaries {
		if s.Error != "" {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t0\t%s\n", s.File, s.Status, common.Truncate(s.Error, 60))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			s.File, s.Status, s.StatementID, s.Bank, s.Account, s.Transactions, s.Errors)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(ingested) < 2 {
		return nil
	}
	stmts := make([]*models.Statement, 0, len(ingested))
	for _, r := range ingested {
		stmts = append(stmts, r.Statement)
	}
	groups := c.GetAggregator().GroupByAccount(stmts)

	fmt.Fprintln(w)
	tw = common.NewTable(w)
	fmt.Fprintln(tw, "BANK\tACCOUNT\tSTATEMENTS\tPERIOD\tTXNS")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\n", g.BankName, g.AccountNumber, len(g.StatementIDs), g.DateRange, g.Transactions)
	}
	return tw.Flush()
}
