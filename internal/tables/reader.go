// =============================================================================
// Supplier Price Loader - Mapping and Alias Table Readers
// =============================================================================
//
// This module reads the two CSV side tables that steer the pricing engine:
//
//   column_mapping.csv   Column, Bucket, Notes
//   supplier_alias.csv   SourceColumn, ProposedSupplier, ProposedChannel
//
// Header names are matched case-insensitively after trimming, and a UTF-8
// byte order mark on the first header is ignored (Excel adds one when
// saving as "CSV UTF-8").
//
// =============================================================================

package tables

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/types"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Mapping table headers.
const (
	MappingColumn = "Column"
	MappingBucket = "Bucket"
	MappingNotes  = "Notes"
)

// Alias table headers.
const (
	AliasSourceColumn = "SourceColumn"
	AliasSupplier     = "ProposedSupplier"
	AliasChannel      = "ProposedChannel"
)

// =============================================================================
// MAPPING TABLE
// =============================================================================

// ReadMappingFile reads the column classification mapping table at path.
func ReadMappingFile(path string) ([]types.MappingEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping table: %w", err)
	}
	defer file.Close()

	entries, err := ReadMapping(file)
	if err != nil {
		return nil, fmt.Errorf("mapping table %s: %w", path, err)
	}
	return entries, nil
}

// ReadMapping reads a mapping table from r. The Column header is required;
// Bucket and Notes default to empty when the headers are missing. Rows with
// a blank Column are skipped.
func ReadMapping(r io.Reader) ([]types.MappingEntry, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	colIdx, ok := header[strings.ToLower(MappingColumn)]
	if !ok {
		return nil, fmt.Errorf("mapping table must include a `%s` header", MappingColumn)
	}
	bucketIdx, hasBucket := header[strings.ToLower(MappingBucket)]
	notesIdx, hasNotes := header[strings.ToLower(MappingNotes)]

	entries := make([]types.MappingEntry, 0, len(rows))
	for _, row := range rows {
		entry := types.MappingEntry{Column: cell(row, colIdx)}
		if entry.Column == "" {
			continue
		}
		if hasBucket {
			entry.Bucket = cell(row, bucketIdx)
		}
		if hasNotes {
			entry.Notes = cell(row, notesIdx)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// =============================================================================
// ALIAS TABLE
// =============================================================================

// ReadAliasFile reads the supplier alias table at path.
func ReadAliasFile(path string) ([]types.AliasEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alias table: %w", err)
	}
	defer file.Close()

	entries, err := ReadAlias(file)
	if err != nil {
		return nil, fmt.Errorf("alias table %s: %w", path, err)
	}
	return entries, nil
}

// ReadAlias reads an alias table from r. All three headers are required.
// Rows whose SourceColumn is blank, or whose supplier and channel are both
// blank, carry no alias and are skipped.
func ReadAlias(r io.Reader) ([]types.AliasEntry, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	expected := []string{AliasSourceColumn, AliasSupplier, AliasChannel}
	var missing []string
	for _, name := range expected {
		if _, ok := header[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("alias table must include columns: %s. Missing: %s",
			strings.Join(expected, ", "), strings.Join(missing, ", "))
	}

	srcIdx := header[strings.ToLower(AliasSourceColumn)]
	supIdx := header[strings.ToLower(AliasSupplier)]
	chIdx := header[strings.ToLower(AliasChannel)]

	entries := make([]types.AliasEntry, 0, len(rows))
	for _, row := range rows {
		entry := types.AliasEntry{
			SourceColumn: cell(row, srcIdx),
			Supplier:     cell(row, supIdx),
			Channel:      cell(row, chIdx),
		}
		if entry.SourceColumn == "" || (entry.Supplier == "" && entry.Channel == "") {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readAll reads every record and returns a lower-cased header index plus
// the non-empty data rows.
func readAll(r io.Reader) (map[string]int, [][]string, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	configureReader(reader)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("CSV file is empty")
	}

	header := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := header[key]; !dup {
			header[key] = i
		}
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isRowEmpty(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

// configureReader sets the lenient parsing options used for hand-edited
// side tables.
func configureReader(reader *csv.Reader) {
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
