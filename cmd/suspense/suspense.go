// Package suspense implements the suspense ledger commands
package suspense

import (
	"github.com/spf13/cobra"
)

// Cmd represents the suspense command
var Cmd = &cobra.Command{
	Use:     "suspense",
	Aliases: []string{"sus"},
	Short:   "Manage suspense entries awaiting reconciliation",
	Long: `Manage the suspense ledger: transactions whose counterparty or purpose is
not yet reconciled. An entry stays open while its balance is positive and is
CLEARED exactly when its balance reaches zero. Every change is recorded in the
entry's comment log.

Example:
  bankstmt suspense create <statement-id> txn-0003 --balance 12500
  bankstmt suspense list --status ACTIVE --client acme
  bankstmt suspense update <entry-id> --balance 2500
  bankstmt suspense clear <entry-id>`,
}

func init() {
	Cmd.AddCommand(
		createCmd,
		bulkCmd,
		showCmd,
		listCmd,
		totalsCmd,
		updateCmd,
		clearCmd,
		statusCmd,
		detailsCmd,
		commentCmd,
	)
}
