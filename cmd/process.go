// =============================================================================
// Supplier Price Loader - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// turning the supplier pricing workbook into load-ready extracts. It
// orchestrates the entire pipeline.
//
// COMMAND USAGE:
//   pricing process [flags]
//
// FLAGS:
//   --dry-run     : Run the whole pipeline but write no files
//   --batch-id    : Use this BatchId instead of batch_id_format
//   --quoted-on   : Use this QuotedOn date (YYYY-MM-DD) instead of today
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Read the workbook, column mapping and supplier alias table
//   3. Fix the run context (QuotedOn, BatchId)
//   4. Run the pricing engine:
//      a. Validate the workbook structure
//      b. Classify every column and resolve price column headers
//      c. Detect duplicate columns
//      d. Build products and melt the price columns
//   5. Write the extracts, manifest and optional SQLite file
//   6. Print a summary
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/config"
	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/output"
	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/pricing"
	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/tables"
	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/validation"
	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/workbook"
	"github.com/martybo/Warehouse-Supplier-Price-Management/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processOptions holds the process command's flags.
type processOptions struct {
	// DryRun runs the pipeline without writing output files.
	DryRun bool

	// BatchID overrides the configured batch_id_format.
	BatchID string

	// QuotedOn overrides today's date, as YYYY-MM-DD.
	QuotedOn string
}

var processOpts processOptions

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert the supplier pricing workbook into load-ready extracts",
	Long: `The process command reads the pricing workbook named in the configuration,
decides for every column whether it carries prices, resolves the supplier
and channel of each price column and melts them into one row per quote.

On success the output directory receives:
  - products.csv, suppliers.csv, supplier_items.csv, price_quotes.csv
  - reference_columns.csv, duplicates.csv, product_conflicts.csv,
    unresolved_columns.csv
  - manifest.json (and run_summary.txt when enabled)

On error nothing is written and the previous output is left untouched.`,

	// RunE is like Run but returns an error. This is preferred for commands
	// that can fail, as it allows Cobra to handle the error gracefully.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), cmd.OutOrStdout(), processOpts)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&processOpts.DryRun,
		"dry-run",
		false,
		"Run the full pipeline but write no output files",
	)

	processCmd.Flags().StringVar(
		&processOpts.BatchID,
		"batch-id",
		"",
		"BatchId to stamp on every quote (default: from run.batch_id_format)",
	)

	processCmd.Flags().StringVar(
		&processOpts.QuotedOn,
		"quoted-on",
		"",
		"QuotedOn date to stamp on every quote, YYYY-MM-DD (default: today)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess is the main function that orchestrates the pipeline.
func runProcess(ctx context.Context, out io.Writer, opts processOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Fprintln(out, "=== Supplier Price Loader ===")
	fmt.Fprintln(out, "Loading configuration...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	run, err := runContext(cfg, opts, time.Now())
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("batch_id", run.BatchID()))

	// =========================================================================
	// STEP 2: READ INPUTS AND RUN THE ENGINE
	// =========================================================================

	fmt.Fprintf(out, "Reading %s (sheet %q)...\n", cfg.Inputs.PriceWorkbook, cfg.Inputs.SheetName)

	res, err := runEngine(ctx, cfg, run, logger)
	if err != nil {
		if errors.Is(err, pricing.ErrMissingIdentity) {
			fmt.Fprintln(out, "Workbook rejected: a required identity column is missing.")
		}
		return err
	}

	// =========================================================================
	// STEP 3: WRITE OUTPUTS
	// =========================================================================

	var paths []string
	if opts.DryRun {
		fmt.Fprintln(out, "[DRY RUN] No files written.")
	} else {
		fmt.Fprintf(out, "Writing extracts to %s...\n", cfg.Outputs.Dir)
		paths, err = output.Write(res, run, output.Options{
			Dir:          cfg.Outputs.Dir,
			SQLitePath:   cfg.Outputs.SQLitePath,
			WriteSummary: cfg.Outputs.WriteSummary,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to write outputs: %w", err)
		}
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	printSummary(out, res, run, paths)

	logger.Info("run complete",
		zap.Int("price_quotes", res.Manifest.PriceQuotes),
		zap.Int("excluded_columns", res.Manifest.ExcludedColumns),
		zap.Duration("elapsed", res.ProcessingTime),
		zap.Bool("dry_run", opts.DryRun),
	)
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// runContext fixes QuotedOn and BatchId for the run. Flag values win over
// the configured batch_id_format and today's date.
func runContext(cfg *config.Config, opts processOptions, now time.Time) (pricing.RunContext, error) {
	run := pricing.NewRunContext(now, cfg.Run.BatchIDFormat)
	if opts.BatchID == "" && opts.QuotedOn == "" {
		return run, nil
	}

	quotedOn := run.QuotedOn()
	if opts.QuotedOn != "" {
		t, err := time.Parse(time.DateOnly, opts.QuotedOn)
		if err != nil {
			return pricing.RunContext{}, fmt.Errorf("invalid --quoted-on %q: expected YYYY-MM-DD", opts.QuotedOn)
		}
		quotedOn = t
	}

	batchID := run.BatchID()
	if opts.BatchID != "" {
		batchID = opts.BatchID
	}
	return pricing.FixedRunContext(quotedOn, batchID), nil
}

// engineOptions converts the run configuration into engine options.
func engineOptions(cfg *config.Config) (pricing.Options, error) {
	opts := pricing.Options{
		Identity: validation.IdentityColumns{
			PIP:      cfg.Identity.PIPColumn,
			Name:     cfg.Identity.NameColumn,
			PackSize: cfg.Identity.PackSizeColumn,
		},
		DuplicatePolicy: cfg.Run.DuplicatePolicy,
		Workers:         cfg.Run.Workers,
	}

	if label := strings.TrimSpace(cfg.Run.DefaultChannel); label != "" {
		ch, ok := pricing.ParseChannel(label)
		if !ok {
			return opts, fmt.Errorf("run.default_channel %q is not a known channel", label)
		}
		opts.DefaultChannel = ch
	}
	return opts, nil
}

// runEngine reads the three inputs named in cfg and runs the engine over
// them. It is shared by the process and inspect commands.
func runEngine(ctx context.Context, cfg *config.Config, run pricing.RunContext, logger *zap.Logger) (*pricing.Result, error) {
	opts, err := engineOptions(cfg)
	if err != nil {
		return nil, err
	}

	table, err := workbook.ReadFile(cfg.Inputs.PriceWorkbook, cfg.Inputs.SheetName)
	if err != nil {
		return nil, err
	}
	mapping, err := tables.ReadMappingFile(cfg.Inputs.ColumnMappingCSV)
	if err != nil {
		return nil, err
	}
	aliases, err := tables.ReadAliasFile(cfg.Inputs.SupplierAliasCSV)
	if err != nil {
		return nil, err
	}

	logger.Debug("inputs read",
		zap.Int("rows", len(table.Rows)),
		zap.Int("columns", len(table.Headers)),
		zap.Int("mapping_entries", len(mapping)),
		zap.Int("aliases", len(aliases)),
	)

	return pricing.NewEngine(opts, logger).Run(ctx, run, pricing.Input{
		Table:   table,
		Mapping: mapping,
		Aliases: aliases,
		Sources: pricing.Sources{
			Workbook: filepath.Base(cfg.Inputs.PriceWorkbook),
			Sheet:    cfg.Inputs.SheetName,
			Mapping:  filepath.Base(cfg.Inputs.ColumnMappingCSV),
			Alias:    filepath.Base(cfg.Inputs.SupplierAliasCSV),
		},
	})
}

// printSummary prints the run counts and the published files.
func printSummary(out io.Writer, res *pricing.Result, run pricing.RunContext, paths []string) {
	m := res.Manifest

	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "=== Processing Summary ===")
	fmt.Fprintf(out, "Batch:            %s\n", run.BatchID())
	fmt.Fprintf(out, "Quoted on:        %s\n", m.QuotedOn)
	fmt.Fprintf(out, "Source rows:      %s\n", humanize.Comma(int64(m.SourceRows)))
	fmt.Fprintf(out, "Price columns:    %d (%d melted)\n", m.PriceColumns, m.MeltedColumns)
	fmt.Fprintf(out, "Excluded columns: %d\n", m.ExcludedColumns)
	fmt.Fprintf(out, "Products:         %s\n", humanize.Comma(int64(m.Products)))
	fmt.Fprintf(out, "Suppliers:        %d\n", m.Suppliers)
	fmt.Fprintf(out, "Price quotes:     %s\n", humanize.Comma(int64(m.PriceQuotes)))
	fmt.Fprintf(out, "Duplicate groups: %d\n", m.DuplicateGroups)
	fmt.Fprintf(out, "Conflicts:        %d\n", m.ProductConflicts)
	fmt.Fprintf(out, "Processing time:  %v\n", res.ProcessingTime.Round(time.Millisecond))

	if len(res.Warnings) > 0 {
		fmt.Fprintln(out, "")
		fmt.Fprint(out, validation.FormatErrors(res.Warnings))
	}

	if unresolved := res.Excluded(pricing.ReasonUnresolved); len(unresolved) > 0 {
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Unresolved price columns:")
		for _, c := range unresolved {
			fmt.Fprintf(out, "  - %s (%s)\n", c.Header, c.Resolution.Reason)
		}
	}

	if len(paths) > 0 {
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Output files:")
		for _, p := range paths {
			size, err := utils.GetFileSize(p)
			if err != nil {
				fmt.Fprintf(out, "  - %s\n", p)
				continue
			}
			fmt.Fprintf(out, "  - %s (%s)\n", p, humanize.Bytes(uint64(size)))
		}
	}
}
