// =============================================================================
// Supplier Price Loader - Shared Types
// =============================================================================
//
// This package contains the tabular types handed between the input readers
// and the pricing engine. Keeping them here avoids import cycles between:
//   - workbook   (produces Table)
//   - tables     (produces MappingEntry and AliasEntry)
//   - validation (inspects all three)
//   - pricing    (consumes all three)
//
// =============================================================================

package types

// =============================================================================
// WORKBOOK TABLE
// =============================================================================

// Table is an in-memory snapshot of one worksheet: a single header row and
// the data rows beneath it.
type Table struct {
	// Source is the path of the workbook the table was read from.
	Source string

	// Sheet is the worksheet name.
	Sheet string

	// Headers contains the column headers in their original order.
	// The position in this slice is the column's positional index.
	Headers []string

	// Rows contains the data rows. Every row has exactly len(Headers) cells;
	// short rows are padded with empty strings by the reader.
	Rows [][]string

	// RowNumbers holds the 1-based worksheet row of each entry in Rows.
	// Readers that drop blank rows fill it so findings point at the sheet.
	RowNumbers []int
}

// RowNumber returns the worksheet row of data row r. Without RowNumbers
// the rows are taken to be contiguous below a single header row.
func (t *Table) RowNumber(r int) int {
	if r >= 0 && r < len(t.RowNumbers) && len(t.RowNumbers) == len(t.Rows) {
		return t.RowNumbers[r]
	}
	return r + 2
}

// ColumnIndex returns the position of the first column whose header equals
// name, or -1 when the header is absent.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns every cell of the column at index, top to bottom.
func (t *Table) Column(index int) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if index < len(row) {
			values[i] = row[index]
		}
	}
	return values
}

// Cell returns the value at (row, col), or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// =============================================================================
// MAPPING AND ALIAS TABLES
// =============================================================================

// MappingEntry is one row of the column classification mapping table.
type MappingEntry struct {
	// Column is the workbook header this entry describes.
	Column string

	// Bucket is the raw, loosely spelled bucket label ("Reference",
	// "Supplier/Price", "Master/DM+D", ...).
	Bucket string

	// Notes is free text written by whoever maintains the mapping.
	Notes string
}

// AliasEntry is one row of the supplier alias table.
type AliasEntry struct {
	// SourceColumn is a full workbook header or a token expected inside one.
	SourceColumn string

	// Supplier is the canonical supplier name.
	Supplier string

	// Channel is the raw channel label; the pricing engine parses it into
	// the closed channel vocabulary.
	Channel string
}
