// =============================================================================
// Supplier Price Loader - Inspect Command
// =============================================================================
//
// This file defines the 'inspect' command, which shows how every workbook
// column would be treated without writing anything.
//
// COMMAND USAGE:
//   pricing inspect [--only price|excluded]
//
// OUTPUT:
//   #  HEADER                 CATEGORY   OUTCOME     SUPPLIER   CHANNEL  VALID FROM  SOURCE
//   3  AUG 25 - Acme Direct   Price      melted      Acme Ltd   Direct   2025-08-01  alias
//   5  Avg Price              Derived    derived
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/pricing"
)

// inspectOnly filters the inspect table: "", "price" or "excluded".
var inspectOnly string

// inspectCmd represents the 'inspect' command.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show how each workbook column is classified and resolved",
	Long: `The inspect command runs the same analysis as 'process' and prints one line
per workbook column: its category, whether it was melted or why not, and
the supplier, channel and valid-from date assigned to price columns.

No files are written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.Context(), cmd.OutOrStdout(), inspectOnly)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(
		&inspectOnly,
		"only",
		"",
		"Show only \"price\" columns or \"excluded\" columns",
	)
}

// runInspect prints the column table for the configured workbook.
func runInspect(ctx context.Context, out io.Writer, only string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch only {
	case "", "price", "excluded":
	default:
		return fmt.Errorf("--only must be \"price\" or \"excluded\", got %q", only)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	run := pricing.NewRunContext(time.Now(), cfg.Run.BatchIDFormat)
	res, err := runEngine(ctx, cfg, run, logger)
	if err != nil {
		return err
	}

	printColumns(out, res, only)
	return nil
}

// printColumns writes the column table.
func printColumns(out io.Writer, res *pricing.Result, only string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tHEADER\tCATEGORY\tOUTCOME\tSUPPLIER\tCHANNEL\tVALID FROM\tSOURCE")

	for _, c := range res.Columns {
		switch {
		case only == "price" && c.Classification.Category != pricing.CategoryPrice:
			continue
		case only == "excluded" && c.Melted:
			continue
		}

		outcome := "melted"
		if !c.Melted {
			outcome = string(c.Reason)
		}
		switch {
		case c.Reason == pricing.ReasonUnresolved:
			outcome += ": " + c.Resolution.Reason
		case c.DuplicateOf >= 0:
			outcome += fmt.Sprintf(" (same as #%d)", c.DuplicateOf)
		}

		var supplier, channel, validFrom, source string
		if c.Resolution.Resolved {
			supplier = c.Resolution.Supplier
			channel = c.Resolution.Channel.String()
			validFrom = c.Resolution.ValidFrom.Format(time.DateOnly)
			source = c.Resolution.Source
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Index, c.Header, c.Classification.Category, outcome,
			supplier, channel, validFrom, source)
	}
	w.Flush()
}
