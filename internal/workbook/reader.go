// =============================================================================
// Supplier Price Loader - Workbook Reader
// =============================================================================
//
// This module reads the wide-format pricing worksheet into a types.Table.
//
// WORKSHEET STRUCTURE (Expected Layout):
//
//   | Row 1 (headers)  | MediCare PIPCode | Product Name | Pack Size | AUG 25 - Acme Direct | ... |
//   |------------------|------------------|--------------|-----------|----------------------|-----|
//   | Row 2..n (data)  | 1234567          | Paracetamol  | 32        | 12.50                | ... |
//
// Cells are read as raw values so that number formats applied in Excel
// (currency symbols, fixed decimals) do not leak into the extracts.
//
// =============================================================================

package workbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/types"
)

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadFile opens the workbook at path and reads the named sheet.
//
// PARAMETERS:
//   - path: the .xlsx file.
//   - sheet: the worksheet name. Empty selects the first sheet.
//
// RETURNS:
//   - The sheet as a Table.
//   - An error if the file cannot be opened or the sheet does not exist.
func ReadFile(path, sheet string) (*types.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := ReadSheet(f, sheet)
	if err != nil {
		return nil, err
	}
	table.Source = path
	return table, nil
}

// Read reads a workbook from r. It is the stream counterpart of ReadFile.
func Read(r io.Reader, sheet string) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return ReadSheet(f, sheet)
}

// ReadSheet extracts one worksheet from an already opened workbook.
func ReadSheet(f *excelize.File, sheet string) (*types.Table, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	}

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found (available: %s)",
			sheet, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheet, err)
	}

	table := &types.Table{Sheet: sheet}
	if len(rows) == 0 {
		return table, nil
	}

	// The first row is the header row. Data rows may be wider than the
	// header when stray cells sit to the right; those get placeholder names.
	width := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) > width {
			width = len(row)
		}
	}

	table.Headers = cleanHeaders(rows[0], width)
	table.Rows = make([][]string, 0, len(rows)-1)
	table.RowNumbers = make([]int, 0, len(rows)-1)

	for r, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}
		padded := make([]string, width)
		for i := 0; i < width && i < len(row); i++ {
			padded[i] = strings.TrimSpace(row[i])
		}
		table.Rows = append(table.Rows, padded)
		table.RowNumbers = append(table.RowNumbers, r+2)
	}

	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims header text and names blank headers by position.
func cleanHeaders(raw []string, width int) []string {
	headers := make([]string, width)
	for i := 0; i < width; i++ {
		var h string
		if i < len(raw) {
			h = strings.TrimSpace(raw[i])
		}
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = h
	}
	return headers
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
