// =============================================================================
// Supplier Price Loader - Configuration Module
// =============================================================================
//
// This module loads the run configuration for the loader. A single file
// describes where the inputs live, which workbook columns carry product
// identity, where the extracts are written and the run policies.
//
// CONFIGURATION FILE:
//   config.yaml (default) or any *.toml file. The format is chosen from the
//   file extension; both decode into the same Config structure.
//
//   inputs:
//     price_workbook: ./data/prices.xlsx
//     sheet_name: Prices
//     column_mapping_csv: ./data/column_mapping.csv
//     supplier_alias_csv: ./data/supplier_alias.csv
//   identity:
//     pip_column: MediCare PIPCode
//     name_column: Product Name
//     pack_size_column: Pack Size
//   outputs:
//     dir: ./out
//   run:
//     batch_id_format: initial_migration_{timestamp}
//     duplicate_policy: suppress
//
// ENVIRONMENT OVERRIDES:
//   Variables listed in envOverrides replace the matching file setting.
//   The CLI loads a .env file into the environment before reading config.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete run configuration.
type Config struct {
	Inputs   InputsConfig   `yaml:"inputs" toml:"inputs"`
	Identity IdentityConfig `yaml:"identity" toml:"identity"`
	Outputs  OutputsConfig  `yaml:"outputs" toml:"outputs"`
	Run      RunConfig      `yaml:"run" toml:"run"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`

	// path is the file the configuration was loaded from.
	path string
}

// InputsConfig points at the three input files.
type InputsConfig struct {
	// PriceWorkbook is the wide-format supplier pricing workbook (.xlsx).
	PriceWorkbook string `yaml:"price_workbook" toml:"price_workbook"`

	// SheetName is the worksheet inside PriceWorkbook to load.
	SheetName string `yaml:"sheet_name" toml:"sheet_name"`

	// ColumnMappingCSV classifies workbook columns (Column, Bucket, Notes).
	ColumnMappingCSV string `yaml:"column_mapping_csv" toml:"column_mapping_csv"`

	// SupplierAliasCSV maps headers to canonical supplier and channel
	// (SourceColumn, ProposedSupplier, ProposedChannel).
	SupplierAliasCSV string `yaml:"supplier_alias_csv" toml:"supplier_alias_csv"`
}

// IdentityConfig names the workbook columns that identify a product.
type IdentityConfig struct {
	// PIPColumn holds the product identity code. Required in the workbook.
	// Default: "MediCare PIPCode"
	PIPColumn string `yaml:"pip_column" toml:"pip_column"`

	// NameColumn holds the product name. Required in the workbook.
	// Default: "Product Name"
	NameColumn string `yaml:"name_column" toml:"name_column"`

	// PackSizeColumn holds the pack size. Optional in the workbook.
	// Default: "Pack Size"
	PackSizeColumn string `yaml:"pack_size_column" toml:"pack_size_column"`
}

// OutputsConfig controls where the extracts go.
type OutputsConfig struct {
	// Dir receives the CSV extracts and manifest.json.
	// Default: "./out"
	Dir string `yaml:"dir" toml:"dir"`

	// SQLitePath, when set, also writes every extract into a SQLite
	// staging database at this path.
	SQLitePath string `yaml:"sqlite_path" toml:"sqlite_path"`

	// WriteSummary writes a human readable run_summary.txt next to the
	// extracts.
	WriteSummary bool `yaml:"write_summary" toml:"write_summary"`
}

// RunConfig holds the run policies.
type RunConfig struct {
	// BatchIDFormat is the template for the run's BatchId.
	// Placeholders:
	//   {timestamp} - run start, 20060102T150405Z
	//   {date}      - run start, 20060102
	//   {uuid}      - a random UUID
	// Default: "initial_migration_{timestamp}"
	BatchIDFormat string `yaml:"batch_id_format" toml:"batch_id_format"`

	// DefaultChannel is used when a price column resolves a supplier but no
	// channel. Empty means such columns are left unresolved.
	DefaultChannel string `yaml:"default_channel" toml:"default_channel"`

	// DuplicatePolicy decides whether Price columns flagged as content
	// duplicates are still melted. Valid values: "suppress", "melt".
	// Default: "suppress"
	DuplicatePolicy string `yaml:"duplicate_policy" toml:"duplicate_policy"`

	// Workers bounds the per-column classification fan-out.
	// Default: 4
	Workers int `yaml:"workers" toml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level" toml:"level"`

	// Format is "console" or "json".
	// Default: "console"
	Format string `yaml:"format" toml:"format"`

	// File, when set, receives log output in addition to stderr.
	File string `yaml:"file" toml:"file"`
}

// Duplicate policies.
const (
	DuplicatePolicySuppress = "suppress"
	DuplicatePolicyMelt     = "melt"
)

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration file at configPath, applies defaults and
// validates the result.
//
// PARAMETERS:
//   - configPath: path to a .yaml, .yml or .toml file.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	cfg.path = configPath

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes raw configuration bytes and applies defaults. The ext
// argument selects the decoder (".toml" for TOML, anything else for YAML).
// Parse does not validate; call Validate for that.
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config

	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// envOverrides maps environment variables to the settings they replace.
var envOverrides = []struct {
	name  string
	field func(*Config) *string
}{
	{"PRICING_OUTPUT_DIR", func(c *Config) *string { return &c.Outputs.Dir }},
	{"PRICING_SQLITE_PATH", func(c *Config) *string { return &c.Outputs.SQLitePath }},
	{"PRICING_BATCH_ID_FORMAT", func(c *Config) *string { return &c.Run.BatchIDFormat }},
	{"PRICING_DEFAULT_CHANNEL", func(c *Config) *string { return &c.Run.DefaultChannel }},
	{"PRICING_DUPLICATE_POLICY", func(c *Config) *string { return &c.Run.DuplicatePolicy }},
	{"PRICING_LOG_LEVEL", func(c *Config) *string { return &c.Logging.Level }},
}

// applyEnv copies set, non-empty override variables into cfg.
func applyEnv(cfg *Config) {
	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.name); ok && strings.TrimSpace(v) != "" {
			*o.field(cfg) = strings.TrimSpace(v)
		}
	}
}

// Path returns the file the configuration was loaded from, or "" when it
// was built in memory.
func (c *Config) Path() string {
	return c.path
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Identity.PIPColumn == "" {
		cfg.Identity.PIPColumn = "MediCare PIPCode"
	}
	if cfg.Identity.NameColumn == "" {
		cfg.Identity.NameColumn = "Product Name"
	}
	if cfg.Identity.PackSizeColumn == "" {
		cfg.Identity.PackSizeColumn = "Pack Size"
	}
	if cfg.Outputs.Dir == "" {
		cfg.Outputs.Dir = "./out"
	}
	if cfg.Run.BatchIDFormat == "" {
		cfg.Run.BatchIDFormat = "initial_migration_{timestamp}"
	}
	if cfg.Run.DuplicatePolicy == "" {
		cfg.Run.DuplicatePolicy = DuplicatePolicySuppress
	}
	if cfg.Run.Workers <= 0 {
		cfg.Run.Workers = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate checks that every required setting is present and that the
// input files exist.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"inputs.price_workbook", c.Inputs.PriceWorkbook},
		{"inputs.sheet_name", c.Inputs.SheetName},
		{"inputs.column_mapping_csv", c.Inputs.ColumnMappingCSV},
		{"inputs.supplier_alias_csv", c.Inputs.SupplierAliasCSV},
		{"outputs.dir", c.Outputs.Dir},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("missing `%s`", r.key)
		}
	}

	files := []struct {
		key  string
		path string
	}{
		{"price_workbook", c.Inputs.PriceWorkbook},
		{"column_mapping_csv", c.Inputs.ColumnMappingCSV},
		{"supplier_alias_csv", c.Inputs.SupplierAliasCSV},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err != nil {
			return fmt.Errorf("required input `%s` not found at %s: %w", f.key, f.path, err)
		}
	}

	switch c.Run.DuplicatePolicy {
	case DuplicatePolicySuppress, DuplicatePolicyMelt:
	default:
		return fmt.Errorf("run.duplicate_policy must be %q or %q, got %q",
			DuplicatePolicySuppress, DuplicatePolicyMelt, c.Run.DuplicatePolicy)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}

	return nil
}
