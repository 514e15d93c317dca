package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInputs(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()
	for _, name := range []string{"prices.xlsx", "mapping.csv", "alias.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	return dir
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
inputs:
  price_workbook: prices.xlsx
  sheet_name: Prices
`), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, "MediCare PIPCode", cfg.Identity.PIPColumn)
	assert.Equal(t, "Product Name", cfg.Identity.NameColumn)
	assert.Equal(t, "Pack Size", cfg.Identity.PackSizeColumn)
	assert.Equal(t, "./out", cfg.Outputs.Dir)
	assert.Equal(t, "initial_migration_{timestamp}", cfg.Run.BatchIDFormat)
	assert.Equal(t, DuplicatePolicySuppress, cfg.Run.DuplicatePolicy)
	assert.Equal(t, 4, cfg.Run.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Empty(t, cfg.Run.DefaultChannel)
}

func TestParseTOML(t *testing.T) {
	cfg, err := Parse([]byte(`
[inputs]
price_workbook = "prices.xlsx"
sheet_name = "Prices"

[run]
duplicate_policy = "melt"
default_channel = "Direct"
workers = 2
`), ".toml")
	require.NoError(t, err)

	assert.Equal(t, "prices.xlsx", cfg.Inputs.PriceWorkbook)
	assert.Equal(t, DuplicatePolicyMelt, cfg.Run.DuplicatePolicy)
	assert.Equal(t, "Direct", cfg.Run.DefaultChannel)
	assert.Equal(t, 2, cfg.Run.Workers)
}

func TestLoad(t *testing.T) {
	dir := writeInputs(t)
	path := filepath.Join(dir, "config.yaml")
	body := "inputs:\n" +
		"  price_workbook: " + filepath.Join(dir, "prices.xlsx") + "\n" +
		"  sheet_name: Prices\n" +
		"  column_mapping_csv: " + filepath.Join(dir, "mapping.csv") + "\n" +
		"  supplier_alias_csv: " + filepath.Join(dir, "alias.csv") + "\n" +
		"outputs:\n" +
		"  dir: " + filepath.Join(dir, "out") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "Prices", cfg.Inputs.SheetName)
}

func TestValidate(t *testing.T) {
	dir := writeInputs(t)
	base := func() *Config {
		cfg, err := Parse(nil, ".yaml")
		require.NoError(t, err)
		cfg.Inputs = InputsConfig{
			PriceWorkbook:    filepath.Join(dir, "prices.xlsx"),
			SheetName:        "Prices",
			ColumnMappingCSV: filepath.Join(dir, "mapping.csv"),
			SupplierAliasCSV: filepath.Join(dir, "alias.csv"),
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing sheet",
			mutate:  func(c *Config) { c.Inputs.SheetName = "" },
			wantErr: "inputs.sheet_name",
		},
		{
			name:    "missing alias file",
			mutate:  func(c *Config) { c.Inputs.SupplierAliasCSV = filepath.Join(dir, "nope.csv") },
			wantErr: "supplier_alias_csv",
		},
		{
			name:    "bad duplicate policy",
			mutate:  func(c *Config) { c.Run.DuplicatePolicy = "drop" },
			wantErr: "duplicate_policy",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("PRICING_OUTPUT_DIR", "/tmp/extracts")
	t.Setenv("PRICING_DUPLICATE_POLICY", "melt")
	t.Setenv("PRICING_LOG_LEVEL", "  ")

	cfg, err := Parse([]byte("outputs:\n  dir: ./out\nlogging:\n  level: warn\n"), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/extracts", cfg.Outputs.Dir)
	assert.Equal(t, DuplicatePolicyMelt, cfg.Run.DuplicatePolicy)
	assert.Equal(t, "warn", cfg.Logging.Level, "blank variables are ignored")
}
