package suspense

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/bankstmt/cmd/common"
	"fjacquet/bankstmt/cmd/root"
	"fjacquet/bankstmt/internal/container"
	"fjacquet/bankstmt/internal/models"

	"github.com/spf13/cobra"
)

// FilterOptions holds the flags shared by list and totals
type FilterOptions struct {
	Statement string
	Status    string
	Client    string
	From      string
	To        string
	Min       string
	Max       string
	Search    string
	All       bool
}

// ListOptions holds the suspense list flags
type ListOptions struct {
	FilterOptions
	Offset int
	Limit  int
	Format string
}

var (
	listOpts   ListOptions
	totalsOpts FilterOptions
	showFormat string
	totalsFmt  string
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a suspense entry and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunShow(cmd.Context(), cmd.OutOrStdout(), c, args[0], showFormat)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List suspense entries",
	Long: `List suspense entries in creation order. Cleared entries are hidden unless
--all is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunList(cmd.Context(), cmd.OutOrStdout(), c, listOpts)
	},
}

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show the total open balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunTotals(cmd.Context(), cmd.OutOrStdout(), c, totalsOpts, totalsFmt)
	},
}

func addFilterFlags(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().StringVar(&o.Statement, "statement", "", "Filter by statement id")
	cmd.Flags().StringVar(&o.Status, "status", "", "Filter by status (ACTIVE, PENDING, DISPUTED, CLEARED)")
	cmd.Flags().StringVar(&o.Client, "client", "", "Filter by client name (substring)")
	cmd.Flags().StringVar(&o.From, "from", "", "Transaction date on or after")
	cmd.Flags().StringVar(&o.To, "to", "", "Transaction date on or before")
	cmd.Flags().StringVar(&o.Min, "min", "", "Minimum balance")
	cmd.Flags().StringVar(&o.Max, "max", "", "Maximum balance")
	cmd.Flags().StringVarP(&o.Search, "search", "s", "", "Search client, reference, description and notes")
	cmd.Flags().BoolVarP(&o.All, "all", "a", false, "Include cleared entries")
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", common.FormatTable, "Output format (table, json, yaml)")

	addFilterFlags(listCmd, &listOpts.FilterOptions)
	listCmd.Flags().IntVar(&listOpts.Offset, "offset", 0, "Number of entries to skip")
	listCmd.Flags().IntVar(&listOpts.Limit, "limit", 50, "Maximum number of entries (0 for all)")
	listCmd.Flags().StringVarP(&listOpts.Format, "format", "f", common.FormatTable, "Output format (table, json, yaml)")

	addFilterFlags(totalsCmd, &totalsOpts)
	totalsCmd.Flags().StringVarP(&totalsFmt, "format", "f", common.FormatTable, "Output format (table, json, yaml)")
}

// Filter converts the flag values to a suspense filter.
func (o FilterOptions) Filter() (models.SuspenseFilter, error) {
	from, err := common.ParseDateFlag("from", o.From)
	if err != nil {
		return models.SuspenseFilter{}, err
	}
	to, err := common.ParseDateFlag("to", o.To)
	if err != nil {
		return models.SuspenseFilter{}, err
	}
	minBalance, err := common.ParseAmountFlag("min", o.Min)
	if err != nil {
		return models.SuspenseFilter{}, err
	}
	maxBalance, err := common.ParseAmountFlag("max", o.Max)
	if err != nil {
		return models.SuspenseFilter{}, err
	}
	return models.SuspenseFilter{
		StatementID: strings.TrimSpace(o.Statement),
		Status:      models.SuspenseStatus(strings.ToUpper(strings.TrimSpace(o.Status))),
		Client:      o.Client,
		From:        from,
		To:          to,
		MinBalance:  minBalance,
		MaxBalance:  maxBalance,
		Search:      o.Search,
		ShowCleared: o.All,
	}, nil
}

// RunShow prints one entry with its comment log.
func RunShow(ctx context.Context, w io.Writer, c *container.Container, id, format string) error {
	if err := common.ValidateFormat(format); err != nil {
		return err
	}
	entry, err := c.GetSuspenseService().Get(ctx, id)
	if err != nil {
		return err
	}
	return writeEntry(w, entry, format)
}

// RunList prints the entries matching o.
func RunList(ctx context.Context, w io.Writer, c *container.Container, o ListOptions) error {
	if err := common.ValidateFormat(o.Format); err != nil {
		return err
	}
	filter, err := o.Filter()
	if err != nil {
		return err
	}
	entries, total, err := c.GetSuspenseService().List(ctx, filter, models.Page{Offset: o.Offset, Limit: o.Limit})
	if err != nil {
		return err
	}
	if err := writeEntries(w, entries, o.Format); err != nil {
		return err
	}
	if o.Format == common.FormatTable {
		fmt.Fprintf(w, "%d of %d entries\n", len(entries), total)
	}
	return nil
}

// RunTotals prints the aggregate balance of the entries matching o.
func RunTotals(ctx context.Context, w io.Writer, c *container.Container, o FilterOptions, format string) error {
	if err := common.ValidateFormat(format); err != nil {
		return err
	}
	filter, err := o.Filter()
	if err != nil {
		return err
	}
	totals, err := c.GetSuspenseService().Totals(ctx, filter)
	if err != nil {
		return err
	}
	if format != common.FormatTable {
		return common.WriteStructured(w, format, totals)
	}

	tw := common.NewTable(w)
	fmt.Fprintf(tw, "Entries:\t%d\n", totals.Count)
	fmt.Fprintf(tw, "Cleared:\t%d\n", totals.ClearedCount)
	fmt.Fprintf(tw, "Total balance:\t%s\n", totals.TotalBalance.StringFixed(2))
	return tw.Flush()
}
