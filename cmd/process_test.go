package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/config"
	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/pricing"
)

// setupRun writes a workbook, the two lookup tables and a config file into
// a temp dir and points --config at it.
func setupRun(t *testing.T, headers []interface{}, rows ...[]interface{}) (outDir string) {
	t.Helper()
	dir := t.TempDir()

	wb := excelize.NewFile()
	defer wb.Close()
	require.NoError(t, wb.SetSheetName(wb.GetSheetName(0), "Prices"))
	all := append([][]interface{}{headers}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, wb.SetSheetRow("Prices", cell, &r))
	}
	workbookPath := filepath.Join(dir, "prices.xlsx")
	require.NoError(t, wb.SaveAs(workbookPath))

	mappingPath := filepath.Join(dir, "mapping.csv")
	require.NoError(t, os.WriteFile(mappingPath,
		[]byte("Column,Bucket,Notes\nAvg Price,Reference/Derived,\"derived, do not stage\"\n"), 0o644))

	aliasPath := filepath.Join(dir, "alias.csv")
	require.NoError(t, os.WriteFile(aliasPath,
		[]byte("SourceColumn,ProposedSupplier,ProposedChannel\nAcme Direct,Acme Ltd,Direct\n"), 0o644))

	outDir = filepath.Join(dir, "out")
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
inputs:
  price_workbook: %q
  sheet_name: Prices
  column_mapping_csv: %q
  supplier_alias_csv: %q
outputs:
  dir: %q
logging:
  level: error
`, workbookPath, mappingPath, aliasPath, outDir)), 0o644))

	prevCfg, prevVerbose := cfgFile, verbose
	cfgFile, verbose = configPath, false
	t.Cleanup(func() { cfgFile, verbose = prevCfg, prevVerbose })
	return outDir
}

func sampleHeaders() []interface{} {
	return []interface{}{"MediCare PIPCode", "Product Name", "Pack Size", "AUG 25 - Acme Direct", "Avg Price"}
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunProcess(t *testing.T) {
	outDir := setupRun(t, sampleHeaders(),
		[]interface{}{"0123456", "Paracetamol 500mg", 16, 12.5, 7},
		[]interface{}{"0654321", "Ibuprofen 200mg", 24, nil, 3},
	)

	var out bytes.Buffer
	err := runProcess(context.Background(), &out, processOptions{BatchID: "batch-1", QuotedOn: "2025-09-03"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"MediCarePIPCode", "ProductName", "PackSize", "Supplier", "Channel", "SourceColumn", "ValidFrom", "QuotedOn", "BatchId", "QuotedPrice"},
		{"0123456", "Paracetamol 500mg", "16", "Acme Ltd", "Direct", "AUG 25 - Acme Direct", "2025-08-01", "2025-09-03", "batch-1", "12.50"},
	}, readCSVFile(t, filepath.Join(outDir, "price_quotes.csv")))

	assert.Equal(t, [][]string{
		{"medicare_pip", "name", "pack_size"},
		{"0123456", "Paracetamol 500mg", "16"},
		{"0654321", "Ibuprofen 200mg", "24"},
	}, readCSVFile(t, filepath.Join(outDir, "products.csv")))

	text := out.String()
	assert.Contains(t, text, "=== Processing Summary ===")
	assert.Contains(t, text, "Price quotes:     1")
	assert.Contains(t, text, "products.csv (")
	assert.FileExists(t, filepath.Join(outDir, "manifest.json"))
}

func TestRunProcessPrintsWarnings(t *testing.T) {
	setupRun(t,
		[]interface{}{"MediCare PIPCode", "Product Name", "AUG 25 - Acme Direct"},
		[]interface{}{"0123456", "Paracetamol 500mg", 12.5},
	)

	var out bytes.Buffer
	require.NoError(t, runProcess(context.Background(), &out, processOptions{DryRun: true}))

	text := out.String()
	assert.Contains(t, text, "Validation completed with")
	assert.Contains(t, text, "Column 'Pack Size': pack size column is missing")
}

func TestRunProcessDryRun(t *testing.T) {
	outDir := setupRun(t, sampleHeaders(),
		[]interface{}{"0123456", "Paracetamol 500mg", 16, 12.5, 7},
	)

	var out bytes.Buffer
	require.NoError(t, runProcess(context.Background(), &out, processOptions{DryRun: true}))

	assert.Contains(t, out.String(), "[DRY RUN]")
	assert.NoDirExists(t, outDir)
}

func TestRunProcessMissingIdentity(t *testing.T) {
	outDir := setupRun(t,
		[]interface{}{"Product Name", "AUG 25 - Acme Direct"},
		[]interface{}{"Paracetamol 500mg", 12.5},
	)

	var out bytes.Buffer
	err := runProcess(context.Background(), &out, processOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, pricing.ErrMissingIdentity)
	assert.NoDirExists(t, outDir)
}

func TestRunInspect(t *testing.T) {
	setupRun(t, sampleHeaders(),
		[]interface{}{"0123456", "Paracetamol 500mg", 16, 12.5, 7},
	)

	var out bytes.Buffer
	require.NoError(t, runInspect(context.Background(), &out, ""))
	text := out.String()
	assert.Contains(t, text, "AUG 25 - Acme Direct")
	assert.Contains(t, text, "Acme Ltd")
	assert.Contains(t, text, "2025-08-01")
	assert.Contains(t, text, "derived")

	out.Reset()
	require.NoError(t, runInspect(context.Background(), &out, "price"))
	assert.NotContains(t, out.String(), "Avg Price")

	assert.Error(t, runInspect(context.Background(), &out, "everything"))
}

func TestRunContext(t *testing.T) {
	cfg := &config.Config{Run: config.RunConfig{BatchIDFormat: "load_{date}"}}
	now := time.Date(2025, time.September, 3, 15, 4, 5, 0, time.UTC)

	run, err := runContext(cfg, processOptions{}, now)
	require.NoError(t, err)
	assert.Equal(t, "load_20250903", run.BatchID())

	run, err = runContext(cfg, processOptions{QuotedOn: "2025-01-31"}, now)
	require.NoError(t, err)
	assert.Equal(t, "load_20250903", run.BatchID())
	assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), run.QuotedOn())

	_, err = runContext(cfg, processOptions{QuotedOn: "31/01/2025"}, now)
	assert.Error(t, err)
}

func TestEngineOptions(t *testing.T) {
	cfg := &config.Config{Run: config.RunConfig{DefaultChannel: "t&r", DuplicatePolicy: "melt", Workers: 2}}
	opts, err := engineOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, pricing.ChannelTenderAndRetail, opts.DefaultChannel)
	assert.Equal(t, "melt", opts.DuplicatePolicy)

	cfg.Run.DefaultChannel = "Wholesale"
	_, err = engineOptions(cfg)
	assert.Error(t, err)
}
