package suspense

import (
	"fmt"
	"io"

	"fjacquet/bankstmt/cmd/common"
	"fjacquet/bankstmt/internal/dateutils"
	"fjacquet/bankstmt/internal/models"
)

// writeEntry prints one entry in the requested format.
func writeEntry(w io.Writer, e *models.SuspenseEntry, format string) error {
	if format != common.FormatTable {
		return common.WriteStructured(w, format, e)
	}

	tw := common.NewTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", e.ID)
	fmt.Fprintf(tw, "Reference:\t%s\n", e.ReferenceNumber)
	fmt.Fprintf(tw, "Statement:\t%s\n", e.StatementID)
	fmt.Fprintf(tw, "Transaction:\t%s\n", e.TransactionID)
	fmt.Fprintf(tw, "Date:\t%s\n", dateutils.ToISODate(e.Date))
	fmt.Fprintf(tw, "Balance:\t%s\n", e.BalanceAmount.StringFixed(2))
	fmt.Fprintf(tw, "Status:\t%s\n", e.Status)
	fmt.Fprintf(tw, "Client:\t%s\n", e.Client())
	fmt.Fprintf(tw, "Description:\t%s\n", e.Details())
	if e.Notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", e.Notes)
	}
	if e.ClearedAt != nil && e.ClearedBy != nil {
		fmt.Fprintf(tw, "Cleared:\t%s by %s\n", dateutils.FormatDate(*e.ClearedAt, dateutils.DateLayoutFull), e.ClearedBy.UserID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(e.Comments) > 0 {
		fmt.Fprintln(w, "\nComments:")
		for _, c := range e.Comments {
			fmt.Fprintf(w, "  %s  %s: %s\n", dateutils.FormatDate(c.CreatedAt, dateutils.DateLayoutFull), c.Author.UserID, c.Text)
		}
	}
	return nil
}

// writeEntries prints entries as a table or in a structured format.
func writeEntries(w io.Writer, entries []*models.SuspenseEntry, format string) error {
	if format != common.FormatTable {
		return common.WriteStructured(w, format, entries)
	}

	tw := common.NewTable(w)
	fmt.Fprintln(tw, "ID\tREFERENCE\tDATE\tBALANCE\tSTATUS\tCLIENT\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.ReferenceNumber, dateutils.ToISODate(e.Date), e.BalanceAmount.StringFixed(2), e.Status,
			common.Truncate(e.Client(), 30), common.Truncate(e.Details(), 40))
	}
	return tw.Flush()
}
