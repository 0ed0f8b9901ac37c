// Package report implements the report command
package report

import (
	"context"
	"io"
	"strings"
	"time"

	"fjacquet/bankstmt/cmd/root"
	"fjacquet/bankstmt/internal/container"
	"fjacquet/bankstmt/internal/fileutils"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"

	"github.com/spf13/cobra"
)

// Options holds the report flags
type Options struct {
	Format         string
	Output         string
	Statement      string
	OpenOnly       bool
	IncludeEntries bool
}

var opts Options

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a suspense ledger report",
	Long: `Generate a suspense ledger report with totals by status and open balances
by client, as JSON or YAML.

Example:
  bankstmt report --format yaml --include-entries -o suspense-report.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), cmd.OutOrStdout(), c, opts)
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Format, "format", "f", "json", "Report format (json, yaml)")
	Cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file (default stdout)")
	Cmd.Flags().StringVar(&opts.Statement, "statement", "", "Only entries of this statement")
	Cmd.Flags().BoolVar(&opts.OpenOnly, "open-only", false, "Exclude cleared entries")
	Cmd.Flags().BoolVar(&opts.IncludeEntries, "include-entries", false, "Include every entry in the report")
}

// Run builds the report and writes it to w or to o.Output.
func Run(ctx context.Context, w io.Writer, c *container.Container, o Options) error {
	filter := models.SuspenseFilter{
		StatementID: strings.TrimSpace(o.Statement),
		ShowCleared: !o.OpenOnly,
	}
	entries, _, err := c.GetSuspenseService().List(ctx, filter, models.Page{})
	if err != nil {
		return err
	}

	gen := c.GetReportGenerator()
	report := gen.Build(entries, c.Operator(), time.Now(), o.IncludeEntries)
	data, err := gen.GenerateReport(report, o.Format)
	if err != nil {
		return err
	}

	if o.Output == "" || o.Output == "-" {
		_, err = w.Write(data)
		return err
	}

	if err := fileutils.WriteFile(o.Output, data, models.PermissionReportFile); err != nil {
		return err
	}
	c.GetLogger().Info("Report written",
		logging.F(logging.FieldFile, o.Output),
		logging.F(logging.FieldCount, len(entries)))
	return nil
}
