// =============================================================================
// Supplier Price Loader - Run Manifest
// =============================================================================

package pricing

import "time"

// Manifest is the flat run summary written to manifest.json.
type Manifest struct {
	BatchID     string `json:"batch_id"`
	QuotedOn    string `json:"quoted_on"`
	GeneratedAt string `json:"generated_at"`

	SourceRows    int `json:"source_rows"`
	SourceColumns int `json:"source_columns"`
	PriceColumns  int `json:"price_columns"`
	MeltedColumns int `json:"melted_columns"`

	Products      int `json:"products"`
	Suppliers     int `json:"suppliers"`
	SupplierItems int `json:"supplier_items"`
	PriceQuotes   int `json:"price_quotes"`

	ReferenceColumns           int `json:"reference_columns"`
	DerivedColumns             int `json:"derived_columns"`
	UnclassifiableColumns      int `json:"unclassifiable_columns"`
	UnresolvedColumns          int `json:"unresolved_columns"`
	DuplicateSuppressedColumns int `json:"duplicate_suppressed_columns"`
	ExcludedColumns            int `json:"excluded_columns"`
	IdentityColumns            int `json:"identity_columns"`

	DuplicateGroups  int `json:"duplicate_groups"`
	DuplicateColumns int `json:"duplicate_columns"`
	ProductConflicts int `json:"product_conflicts"`

	DuplicatePolicy string `json:"duplicate_policy"`

	InputWorkbook string `json:"input_workbook"`
	InputSheet    string `json:"input_sheet"`
	InputMapping  string `json:"input_mapping"`
	InputAlias    string `json:"input_alias"`
}

// Sources names the inputs of a run, for the manifest.
type Sources struct {
	Workbook string
	Sheet    string
	Mapping  string
	Alias    string
}

// BuildManifest counts what the run produced. It makes no decisions; every
// figure is read off the result.
func BuildManifest(res *Result, run RunContext, policy string, src Sources) Manifest {
	m := Manifest{
		BatchID:          run.BatchID(),
		QuotedOn:         run.QuotedOn().Format(time.DateOnly),
		GeneratedAt:      run.StartedAt().Format(time.RFC3339),
		SourceRows:       res.SourceRows,
		SourceColumns:    len(res.Columns),
		Products:         len(res.Products),
		Suppliers:        len(res.Suppliers),
		SupplierItems:    len(res.SupplierItems),
		PriceQuotes:      len(res.Quotes),
		DuplicateGroups:  len(res.DuplicateGroups),
		ProductConflicts: len(res.Conflicts),
		DuplicatePolicy:  policy,
		InputWorkbook:    src.Workbook,
		InputSheet:       src.Sheet,
		InputMapping:     src.Mapping,
		InputAlias:       src.Alias,
	}

	for _, g := range res.DuplicateGroups {
		m.DuplicateColumns += len(g.Duplicates())
	}

	for _, c := range res.Columns {
		if c.Classification.Category == CategoryPrice {
			m.PriceColumns++
		}
		if c.Melted {
			m.MeltedColumns++
		}
		switch c.Reason {
		case ReasonIdentity:
			m.IdentityColumns++
		case ReasonReference:
			m.ReferenceColumns++
		case ReasonDerived:
			m.DerivedColumns++
		case ReasonUnclassifiable:
			m.UnclassifiableColumns++
		case ReasonUnresolved:
			m.UnresolvedColumns++
		case ReasonDuplicate:
			m.DuplicateSuppressedColumns++
		}
	}
	m.ExcludedColumns = m.ReferenceColumns + m.DerivedColumns + m.UnclassifiableColumns +
		m.UnresolvedColumns + m.DuplicateSuppressedColumns

	return m
}
