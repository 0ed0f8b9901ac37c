package suspense

import (
	"context"
	"io"
	"strings"

	"fjacquet/bankstmt/cmd/common"
	"fjacquet/bankstmt/cmd/root"
	"fjacquet/bankstmt/internal/apperror"
	"fjacquet/bankstmt/internal/container"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/suspense"

	"github.com/spf13/cobra"
)

var (
	updateBalance string
	detailsFlags  struct {
		client      string
		description string
		notes       string
	}
	mutateFormat string
)

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Set the outstanding balance of an entry",
	Long: `Set the outstanding balance of an entry. A zero balance clears the entry;
a positive balance reopens a cleared one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunUpdateBalance(cmd.Context(), cmd.OutOrStdout(), c, args[0], updateBalance, mutateFormat)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear ID",
	Short: "Clear an entry, setting its balance to zero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunClear(cmd.Context(), cmd.OutOrStdout(), c, args[0], mutateFormat)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Change the status of an entry",
	Long: `Change the status of an entry to ACTIVE, PENDING, DISPUTED or CLEARED.
CLEARED also sets the balance to zero.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunSetStatus(cmd.Context(), cmd.OutOrStdout(), c, args[0], args[1], mutateFormat)
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details ID",
	Short: "Override the client name, description or notes of an entry",
	Long: `Override the client name, description or notes of an entry. Only the
flags given are changed; an empty value removes the override.

Example:
  bankstmt suspense details <entry-id> --client "Acme Traders" --notes "called 12/03"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		update := suspense.DetailsUpdate{}
		if cmd.Flags().Changed("client") {
			update.ClientName = &detailsFlags.client
		}
		if cmd.Flags().Changed("description") {
			update.Description = &detailsFlags.description
		}
		if cmd.Flags().Changed("notes") {
			update.Notes = &detailsFlags.notes
		}
		return RunUpdateDetails(cmd.Context(), cmd.OutOrStdout(), c, args[0], update, mutateFormat)
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment ID TEXT",
	Short: "Add a comment to an entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunComment(cmd.Context(), cmd.OutOrStdout(), c, args[0], args[1], mutateFormat)
	},
}

func init() {
	updateCmd.Flags().StringVarP(&updateBalance, "balance", "b", "", "New balance (required)")
	_ = updateCmd.MarkFlagRequired("balance")

	detailsCmd.Flags().StringVar(&detailsFlags.client, "client", "", "Manual client name")
	detailsCmd.Flags().StringVar(&detailsFlags.description, "description", "", "Manual description")
	detailsCmd.Flags().StringVar(&detailsFlags.notes, "notes", "", "Notes")

	for _, cmd := range []*cobra.Command{updateCmd, clearCmd, statusCmd, detailsCmd, commentCmd} {
		cmd.Flags().StringVarP(&mutateFormat, "format", "f", common.FormatTable, "Output format (table, json, yaml)")
	}
}

// RunUpdateBalance sets the balance of one entry.
func RunUpdateBalance(ctx context.Context, w io.Writer, c *container.Container, id, balance, format string) error {
	if err := common.ValidateFormat(format); err != nil {
		return err
	}
	amount, err := common.ParseAmountFlag("balance", balance)
	if err != nil {
		return err
	}
	if amount == nil {
		return &apperror.ValidationError{Field: "balance", Reason: "is required"}
	}
	entry, err := c.GetSuspenseService().UpdateBalance(ctx, id, *amount, c.Operator())
	if err != nil {
		return err
	}
	return writeEntry(w, entry, format)
}

// RunClear clears one entry.
func RunClear(ctx context.Context, w io.Writer, c *container.Container, id, format string) error {
	if err := common.ValidateFormat(format); err != nil {
		return err
	}
	entry, err := c.GetSuspenseService().Clear(ctx, id, c.Operator())
	if err != nil {
		return err
	}
	return writeEntry(w, entry, format)
}

// RunSetStatus changes the status of one entry.
func RunSetStatus(ctx context.Context, w io.Writer, c *container.Container, id, status, format string) error {
	if err := common.ValidateFormat(format); err != nil {
		return err
	}
	st := models.SuspenseStatus(strings.ToUpper(strings.TrimSpace(status)))
	entry, err := c.GetSuspenseService().SetStatus(ctx, id, st, c.Operator())
	if err != nil {
		return err
	}
	return writeEntry(w, entry, format)
}

// RunUpdateDetails applies manual overrides to one entry.
func RunUpdateDetails(ctx context.Context, w io.Writer, c *container.Container, id string, update suspense.DetailsUpdate, format string) error {
	if err := common.ValidateFormat(format); err != nil {
		return err
	}
	entry, err := c.GetSuspenseService().UpdateDetails(ctx, id, update, c.Operator())
	if err != nil {
		return err
	}
	return writeEntry(w, entry, format)
}

// RunComment appends a comment to one entry.
func RunComment(ctx context.Context, w io.Writer, c *container.Container, id, text, format string) error {
	if err := common.ValidateFormat(format); err != nil {
		return err
	}
	entry, err := c.GetSuspenseService().AddComment(ctx, id, text, c.Operator())
	if err != nil {
		return err
	}
	return writeEntry(w, entry, format)
}
