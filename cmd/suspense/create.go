package suspense

import (
	"context"
	"fmt"
	"io"

	"fjacquet/bankstmt/cmd/common"
	"fjacquet/bankstmt/cmd/root"
	"fjacquet/bankstmt/internal/apperror"
	"fjacquet/bankstmt/internal/container"
	"fjacquet/bankstmt/internal/suspense"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// CreateOptions holds the suspense create flags
type CreateOptions struct {
	Balance     string
	Client      string
	Description string
	Notes       string
	Format      string
}

// BulkOptions holds the suspense bulk flags
type BulkOptions struct {
	Transactions []string
	Balances     []string
	Clients      []string
	Descriptions []string
	Format       string
}

var (
	createOpts CreateOptions
	bulkOpts   BulkOptions
)

var createCmd = &cobra.Command{
	Use:   "create STATEMENT_ID TRANSACTION_ID",
	Short: "Create a suspense entry for one transaction",
	Long: `Create a suspense entry for one transaction of an ingested statement.

The client name and description are inferred from the transaction when not
given. A transaction can carry at most one suspense entry.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunCreate(cmd.Context(), cmd.OutOrStdout(), c, args[0], args[1], createOpts)
	},
}

var bulkCmd = &cobra.Command{
	Use:   "bulk STATEMENT_ID",
	Short: "Create suspense entries for several transactions",
	Long: `Create suspense entries for several transactions of one statement.

--transactions and --balances are parallel lists; --clients and --descriptions
are optional and parallel when given. Each item succeeds or fails on its own.

Example:
  bankstmt suspense bulk <statement-id> --transactions txn-0001,txn-0004 --balances 500,1200`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunBulk(cmd.Context(), cmd.OutOrStdout(), c, args[0], bulkOpts)
	},
}

func init() {
	createCmd.Flags().StringVarP(&createOpts.Balance, "balance", "b", "", "Outstanding balance (required)")
	createCmd.Flags().StringVar(&createOpts.Client, "client", "", "Client name (inferred when empty)")
	createCmd.Flags().StringVar(&createOpts.Description, "description", "", "Description (narration when empty)")
	createCmd.Flags().StringVar(&createOpts.Notes, "notes", "", "Free-form notes")
	createCmd.Flags().StringVarP(&createOpts.Format, "format", "f", common.FormatTable, "Output format (table, json, yaml)")
	_ = createCmd.MarkFlagRequired("balance")

	bulkCmd.Flags().StringSliceVar(&bulkOpts.Transactions, "transactions", nil, "Transaction ids")
	bulkCmd.Flags().StringSliceVar(&bulkOpts.Balances, "balances", nil, "Balances, one per transaction")
	bulkCmd.Flags().StringSliceVar(&bulkOpts.Clients, "clients", nil, "Client names, one per transaction")
	bulkCmd.Flags().StringSliceVar(&bulkOpts.Descriptions, "descriptions", nil, "Descriptions, one per transaction")
	bulkCmd.Flags().StringVarP(&bulkOpts.Format, "format", "f", common.FormatTable, "Output format (table, json, yaml)")
	_ = bulkCmd.MarkFlagRequired("transactions")
	_ = bulkCmd.MarkFlagRequired("balances")
}

// RunCreate creates one entry and prints it.
func RunCreate(ctx context.Context, w io.Writer, c *container.Container, statementID, transactionID string, o CreateOptions) error {
	if err := common.ValidateFormat(o.Format); err != nil {
		return err
	}
	balance, err := common.ParseAmountFlag("balance", o.Balance)
	if err != nil {
		return err
	}
	if balance == nil {
		return &apperror.ValidationError{Field: "balance", Reason: "is required"}
	}

	entry, err := c.GetSuspenseService().Create(ctx, suspense.CreateRequest{
		StatementID:   statementID,
		TransactionID: transactionID,
		Balance:       balance,
		ClientName:    o.Client,
		Description:   o.Description,
		Notes:         o.Notes,
		Actor:         c.Operator(),
	})
	if err != nil {
		return err
	}
	return writeEntry(w, entry, o.Format)
}

// RunBulk creates several entries and prints the created ones and the
// rejected items. It fails when any item was rejected.
func RunBulk(ctx context.Context, w io.Writer, c *container.Container, statementID string, o BulkOptions) error {
	if err := common.ValidateFormat(o.Format); err != nil {
		return err
	}
	balances := make([]decimal.Decimal, 0, len(o.Balances))
	for i, raw := range o.Balances {
		b, err := common.ParseAmountFlag(fmt.Sprintf("balances[%d]", i), raw)
		if err != nil {
			return err
		}
		if b == nil {
			return &apperror.ValidationError{Field: fmt.Sprintf("balances[%d]", i), Reason: "is empty"}
		}
		balances = append(balances, *b)
	}

	result, err := c.GetSuspenseService().BulkCreate(ctx, suspense.BulkCreateRequest{
		StatementID:    statementID,
		TransactionIDs: o.Transactions,
		Balances:       balances,
		ClientNames:    o.Clients,
		Descriptions:   o.Descriptions,
		Actor:          c.Operator(),
	})
	if err != nil {
		return err
	}

	if o.Format != common.FormatTable {
		if err := common.WriteStructured(w, o.Format, result); err != nil {
			return err
		}
	} else {
		if err := writeEntries(w, result.Created, common.FormatTable); err != nil {
			return err
		}
		for _, e := range result.Errors {
			fmt.Fprintf(w, "rejected %s\n", e.Error())
		}
		fmt.Fprintf(w, "%d created, %d rejected\n", len(result.Created), len(result.Errors))
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d of %d item(s) rejected", len(result.Errors), len(o.Transactions))
	}
	return nil
}
