// Package statements implements the statements command
package statements

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"fjacquet/bankstmt/cmd/common"
	"fjacquet/bankstmt/cmd/root"
	"fjacquet/bankstmt/internal/container"
	"fjacquet/bankstmt/internal/currencyutils"
	"fjacquet/bankstmt/internal/dateutils"
	"fjacquet/bankstmt/internal/models"

	"github.com/spf13/cobra"
)

// ListOptions holds the statements list flags
type ListOptions struct {
	Bank    string
	Account string
	From    string
	To      string
	Search  string
	Offset  int
	Limit   int
	Format  string
}

// TransactionOptions holds the statements transactions flags
type TransactionOptions struct {
	Type   string
	Min    string
	Max    string
	Search string
	Format string
}

var (
	listOpts   ListOptions
	txOpts     TransactionOptions
	showFormat string
)

// Cmd represents the statements command
var Cmd = &cobra.Command{
	Use:     "statements",
	Aliases: []string{"stmt"},
	Short:   "Browse ingested statements",
	Long: `Browse ingested statements and their transactions.

Example:
  bankstmt statements list --bank hdfc --from 2024-03-01
  bankstmt statements show 3f1c...
  bankstmt statements transactions 3f1c... --type CREDIT --min 1000`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List statements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunList(cmd.Context(), cmd.OutOrStdout(), c, listOpts)
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one statement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunShow(cmd.Context(), cmd.OutOrStdout(), c, args[0], showFormat)
	},
}

var transactionsCmd = &cobra.Command{
	Use:     "transactions ID",
	Aliases: []string{"txns"},
	Short:   "List the transactions of a statement",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunTransactions(cmd.Context(), cmd.OutOrStdout(), c, args[0], txOpts)
	},
}

func init() {
	listCmd.Flags().StringVar(&listOpts.Bank, "bank", "", "Filter by bank name (substring)")
	listCmd.Flags().StringVar(&listOpts.Account, "account", "", "Filter by account number (substring)")
	listCmd.Flags().StringVar(&listOpts.From, "from", "", "Statements covering dates on or after")
	listCmd.Flags().StringVar(&listOpts.To, "to", "", "Statements covering dates on or before")
	listCmd.Flags().StringVarP(&listOpts.Search, "search", "s", "", "Search file name, holder, account, branch and tags")
	listCmd.Flags().IntVar(&listOpts.Offset, "offset", 0, "Number of statements to skip")
	listCmd.Flags().IntVar(&listOpts.Limit, "limit", 50, "Maximum number of statements (0 for all)")
	listCmd.Flags().StringVarP(&listOpts.Format, "format", "f", common.FormatTable, "Output format (table, json, yaml)")

	showCmd.Flags().StringVarP(&showFormat, "format", "f", common.FormatTable, "Output format (table, json, yaml)")

	transactionsCmd.Flags().StringVar(&txOpts.Type, "type", "", "Filter by type (CREDIT, DEBIT, TRANSFER, OTHER)")
	transactionsCmd.Flags().StringVar(&txOpts.Min, "min", "", "Minimum amount")
	transactionsCmd.Flags().StringVar(&txOpts.Max, "max", "", "Maximum amount")
	transactionsCmd.Flags().StringVarP(&txOpts.Search, "search", "s", "", "Search narration, reference and parties")
	transactionsCmd.Flags().StringVarP(&txOpts.Format, "format", "f", common.FormatTable, "Output format (table, json, yaml)")

	Cmd.AddCommand(listCmd, showCmd, transactionsCmd)
}

// RunList prints the statements matching o.
func RunList(ctx context.Context, w io.Writer, c *container.Container, o ListOptions) error {
	if err := common.ValidateFormat(o.Format); err != nil {
		return err
	}
	from, err := common.ParseDateFlag("from", o.From)
	if err != nil {
		return err
	}
	to, err := common.ParseDateFlag("to", o.To)
	if err != nil {
		return err
	}

	filter := models.StatementFilter{
		BankName:      o.Bank,
		AccountNumber: o.Account,
		From:          from,
		To:            to,
		Search:        o.Search,
	}
	stmts, total, err := c.GetStatementService().List(ctx, filter, models.Page{Offset: o.Offset, Limit: o.Limit})
	if err != nil {
		return err
	}

	if o.Format != common.FormatTable {
		return common.WriteStructured(w, o.Format, stmts)
	}

	tw := common.NewTable(w)
	fmt.Fprintln(tw, "ID\tFILE\tBANK\tACCOUNT\tPERIOD\tTXNS\tSTATUS\tUPLOADED")
	for _, s := range stmts {
		start, end := s.DateSpan()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			s.ID, common.Truncate(s.FileName, 30), s.Metadata.BankName, s.Metadata.AccountNumber,
			period(start, end), len(s.Transactions), s.Status, dateutils.FormatDate(s.UploadedAt, dateutils.DateLayoutFull))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d of %d statement(s)\n", len(stmts), total)
	return nil
}

// RunShow prints one statement's metadata, summary and processing errors.
func RunShow(ctx context.Context, w io.Writer, c *container.Container, id, format string) error {
	if err := common.ValidateFormat(format); err != nil {
		return err
	}
	s, err := c.GetStatementService().Get(ctx, id)
	if err != nil {
		return err
	}
	if format != common.FormatTable {
		view := s.Clone()
		view.RawGrid = nil
		return common.WriteStructured(w, format, view)
	}

	md := s.Metadata
	start, end := s.DateSpan()
	tw := common.NewTable(w)
	rows := [][2]string{
		{"ID", s.ID},
		{"File", s.FileName},
		{"Status", string(s.Status)},
		{"Uploaded", fmt.Sprintf("%s by %s", dateutils.FormatDate(s.UploadedAt, dateutils.DateLayoutFull), s.UploadedBy.UserID)},
		{"Bank", md.BankName},
		{"Holder", md.AccountHolder},
		{"Account", md.AccountNumber},
		{"Branch", md.Branch},
		{"IFSC", md.IFSC},
		{"Period", period(start, end)},
		{"Currency", md.Currency},
		{"Tags", strings.Join(s.Tags, ", ")},
		{"Opening balance", currencyutils.FormatAmount(s.Summary.OpeningBalance, md.Currency)},
		{"Closing balance", currencyutils.FormatAmount(s.Summary.ClosingBalance, md.Currency)},
		{"Total debits", fmt.Sprintf("%s (%d)", currencyutils.FormatAmount(s.Summary.TotalDebits, md.Currency), s.Summary.DebitCount)},
		{"Total credits", fmt.Sprintf("%s (%d)", currencyutils.FormatAmount(s.Summary.TotalCredits, md.Currency), s.Summary.CreditCount)},
		{"Net flow", currencyutils.FormatAmount(s.Summary.NetFlow, md.Currency)},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	entries, err := c.GetSuspenseService().ListByStatement(ctx, s.ID)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Fprintln(w, "\nSuspense entries:")
		for _, e := range entries {
			fmt.Fprintf(w, "  %s  %s  %s  %s\n", e.TransactionID, e.ReferenceNumber,
				currencyutils.FormatAmount(e.BalanceAmount, md.Currency), e.Status)
		}
	}

	if len(s.Errors) > 0 {
		fmt.Fprintln(w, "\nProcessing errors:")
		for _, e := range s.Errors {
			if e.Row <= 0 {
				fmt.Fprintf(w, "  %s\n", e.Message)
				continue
			}
			fmt.Fprintf(w, "  row %d: %s\n", e.Row, e.Message)
		}
	}
	return nil
}

// RunTransactions prints the transactions of one statement matching o.
func RunTransactions(ctx context.Context, w io.Writer, c *container.Container, id string, o TransactionOptions) error {
	if err := common.ValidateFormat(o.Format); err != nil {
		return err
	}
	minAmount, err := common.ParseAmountFlag("min", o.Min)
	if err != nil {
		return err
	}
	maxAmount, err := common.ParseAmountFlag("max", o.Max)
	if err != nil {
		return err
	}

	filter := models.TransactionFilter{
		Type:      models.TransactionType(strings.ToUpper(strings.TrimSpace(o.Type))),
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		Search:    o.Search,
	}
	txs, err := c.GetStatementService().Transactions(ctx, id, filter)
	if err != nil {
		return err
	}

	if o.Format != common.FormatTable {
		return common.WriteStructured(w, o.Format, txs)
	}

	tw := common.NewTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tMODE\tWITHDRAWAL\tDEPOSIT\tBALANCE\tNARRATION")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, dateutils.ToISODate(tx.Date), tx.Type, tx.Mode,
			tx.Withdrawal.StringFixed(2), tx.Deposit.StringFixed(2), tx.Balance.StringFixed(2),
			common.Truncate(tx.Narration, 50))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d transaction(s)\n", len(txs))
	return nil
}

func period(start, end time.Time) string {
	if start.IsZero() && end.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s to %s", dateutils.ToISODate(start), dateutils.ToISODate(end))
}
