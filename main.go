// =============================================================================
// Supplier Price Loader - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Supplier Price Loader CLI. It hands
// control to the Cobra commands in the cmd package.
//
// USAGE:
//   pricing process       - Convert the pricing workbook into load-ready extracts
//   pricing inspect       - Show how each workbook column is treated
//   pricing version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/                 : CLI command definitions (Cobra)
//   - internal/config      : YAML/TOML run configuration
//   - internal/workbook    : worksheet reader (excelize)
//   - internal/tables      : column mapping and supplier alias CSV readers
//   - internal/validation  : structural checks on the worksheet
//   - internal/pricing     : classification, resolution, duplicates, melt
//   - internal/output      : CSV, manifest and SQLite writers
//   - pkg/utils            : staging, placeholders and run summary
//
// =============================================================================

package main

import (
	"github.com/martybo/Warehouse-Supplier-Price-Management/cmd"
)

func main() {
	cmd.Execute()
}
