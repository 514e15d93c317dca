// =============================================================================
// Supplier Price Loader - Output Writer Module
// =============================================================================
//
// This module writes a pricing Result to disk for the database load scripts.
//
// OUTPUT SET:
//   products.csv            medicare_pip,name,pack_size
//   suppliers.csv           name
//   supplier_items.csv      supplier,medicare_pip
//   price_quotes.csv        MediCarePIPCode,...,BatchId,QuotedPrice
//   reference_columns.csv   column_name,bucket,reason,notes,last_seen_on
//   duplicates.csv          column_name,canonical_column,signature
//   product_conflicts.csv   medicare_pip,field,kept,ignored,row
//   unresolved_columns.csv  column_name,reason
//   manifest.json           flat run manifest, two-space indent
//   run_summary.txt         optional human-readable summary
//   <sqlite_path>           optional SQLite file with the same tables
//
// ATOMICITY:
//   Files are written into a staging directory and published together.
//   If any write fails the staging directory is discarded and the output
//   directory is left as it was.
//
// =============================================================================

package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/pricing"
	"github.com/martybo/Warehouse-Supplier-Price-Management/pkg/utils"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls what Write produces.
type Options struct {
	// Dir is the output directory.
	Dir string

	// SQLitePath, when set, also writes a SQLite staging database.
	SQLitePath string

	// WriteSummary adds run_summary.txt to the output set.
	WriteSummary bool
}

// =============================================================================
// WRITE
// =============================================================================

// Write publishes the full output set of a run.
//
// PARAMETERS:
//   - res: the engine result.
//   - run: the run context the result was produced with.
//   - opts: output locations.
//   - logger: may be nil.
//
// RETURNS:
//   - The published file paths, including the SQLite file if written.
//   - An error if any file could not be written; nothing is published then.
func Write(res *pricing.Result, run pricing.RunContext, opts Options, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fm := utils.NewFileManager(opts.Dir)
	stage, err := fm.BeginStaging()
	if err != nil {
		return nil, err
	}
	published := false
	defer func() {
		if !published {
			if err := fm.Discard(); err != nil {
				logger.Warn("failed to discard staging directory", zap.Error(err))
			}
		}
	}()

	extracts := Extracts(res)
	names, err := WriteAll(stage, extracts, res.Manifest)
	if err != nil {
		return nil, err
	}

	if opts.WriteSummary {
		if _, err := utils.WriteSummaryLog(Summary(res, run, names), stage); err != nil {
			return nil, err
		}
	}

	// The SQLite file is built now but only renamed into place once the
	// CSVs are published.
	var sqliteTmp string
	if opts.SQLitePath != "" {
		if err := fm.EnsureDirectories(filepath.Dir(opts.SQLitePath)); err != nil {
			return nil, err
		}
		sqliteTmp, err = BuildSQLite(opts.SQLitePath, extracts, res.Manifest)
		if err != nil {
			return nil, fmt.Errorf("failed to write sqlite staging file: %w", err)
		}
		defer os.Remove(sqliteTmp)
	}

	paths, err := fm.Publish()
	if err != nil {
		return paths, err
	}
	published = true

	if opts.SQLitePath != "" {
		replaced := utils.FileExists(opts.SQLitePath)
		if err := CommitSQLite(sqliteTmp, opts.SQLitePath); err != nil {
			return paths, err
		}
		logger.Info("sqlite staging file written",
			zap.String("path", opts.SQLitePath),
			zap.Bool("replaced", replaced),
		)
		paths = append(paths, opts.SQLitePath)
	}
	for _, p := range paths {
		logger.Debug("published", zap.String("path", p))
	}
	return paths, nil
}

// WriteAll writes every extract as CSV plus the manifest as JSON into dir.
// It returns the written file names in write order.
func WriteAll(dir string, extracts []Extract, manifest pricing.Manifest) ([]string, error) {
	var names []string
	for _, e := range extracts {
		if err := WriteCSV(filepath.Join(dir, e.FileName()), e.Columns, e.Rows); err != nil {
			return names, fmt.Errorf("failed to write %s: %w", e.FileName(), err)
		}
		names = append(names, e.FileName())
	}

	if err := WriteManifest(filepath.Join(dir, ManifestFileName), manifest); err != nil {
		return names, fmt.Errorf("failed to write %s: %w", ManifestFileName, err)
	}
	names = append(names, ManifestFileName)
	return names, nil
}

// WriteCSV writes a header row and data rows with LF line endings.
func WriteCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return file.Sync()
}

// WriteManifest writes the manifest as two-space indented JSON.
func WriteManifest(path string, manifest pricing.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary turns a result into the run summary text file's content.
func Summary(res *pricing.Result, run pricing.RunContext, files []string) utils.RunSummary {
	m := res.Manifest
	s := utils.RunSummary{
		BatchID:   run.BatchID(),
		QuotedOn:  run.QuotedOn(),
		StartTime: run.StartedAt(),
		EndTime:   run.StartedAt().Add(res.ProcessingTime),
		Workbook:  m.InputWorkbook,
		Sheet:     m.InputSheet,
		Counts: []utils.SummaryCount{
			{Label: "Source rows", Value: m.SourceRows},
			{Label: "Source columns", Value: m.SourceColumns},
			{Label: "Price columns", Value: m.PriceColumns},
			{Label: "Melted columns", Value: m.MeltedColumns},
			{Label: "Products", Value: m.Products},
			{Label: "Suppliers", Value: m.Suppliers},
			{Label: "Supplier items", Value: m.SupplierItems},
			{Label: "Price quotes", Value: m.PriceQuotes},
			{Label: "Excluded columns", Value: m.ExcludedColumns},
			{Label: "Duplicate groups", Value: m.DuplicateGroups},
			{Label: "Product conflicts", Value: m.ProductConflicts},
		},
		OutputFiles: files,
	}

	for _, w := range res.Warnings {
		s.Findings = append(s.Findings, w.Error())
	}
	for _, c := range res.Excluded(pricing.ReasonUnresolved) {
		s.Findings = append(s.Findings, fmt.Sprintf("column %q unresolved: %s", c.Header, c.Resolution.Reason))
	}
	for _, c := range res.Excluded(pricing.ReasonDuplicate) {
		s.Findings = append(s.Findings, fmt.Sprintf("column %q suppressed as a duplicate of %q",
			c.Header, res.Columns[c.DuplicateOf].Header))
	}
	if len(res.Conflicts) > 0 {
		s.Findings = append(s.Findings, fmt.Sprintf("%d product conflict(s); see product_conflicts.csv", len(res.Conflicts)))
	}
	return s
}
