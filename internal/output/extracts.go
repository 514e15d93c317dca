package output

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/pricing"
)

// Extract names. Each is both a CSV file stem and a SQLite table name.
const (
	ExtractProducts          = "products"
	ExtractSuppliers         = "suppliers"
	ExtractSupplierItems     = "supplier_items"
	ExtractPriceQuotes       = "price_quotes"
	ExtractReferenceColumns  = "reference_columns"
	ExtractDuplicates        = "duplicates"
	ExtractProductConflicts  = "product_conflicts"
	ExtractUnresolvedColumns = "unresolved_columns"
)

// ManifestFileName is the name of the JSON run manifest.
const ManifestFileName = "manifest.json"

// Extract is one relational output table.
type Extract struct {
	Name    string
	Columns []string
	Rows    [][]string

	// Types holds SQLite column types; unlisted columns are TEXT.
	Types map[string]string

	// Indexes lists columns to index in SQLite.
	Indexes []string
}

// FileName is the CSV file name of the extract.
func (e Extract) FileName() string {
	return e.Name + ".csv"
}

// Extracts lays the result out as the output tables, in write order.
func Extracts(res *pricing.Result) []Extract {
	lastSeen := res.Manifest.QuotedOn

	products := Extract{
		Name:    ExtractProducts,
		Columns: []string{"medicare_pip", "name", "pack_size"},
		Indexes: []string{"medicare_pip"},
	}
	for _, p := range res.Products {
		products.Rows = append(products.Rows, []string{p.PIP, p.Name, p.PackSize})
	}

	suppliers := Extract{Name: ExtractSuppliers, Columns: []string{"name"}}
	for _, s := range res.Suppliers {
		suppliers.Rows = append(suppliers.Rows, []string{s})
	}

	items := Extract{
		Name:    ExtractSupplierItems,
		Columns: []string{"supplier", "medicare_pip"},
		Indexes: []string{"supplier", "medicare_pip"},
	}
	for _, it := range res.SupplierItems {
		items.Rows = append(items.Rows, []string{it.Supplier, it.PIP})
	}

	quotes := Extract{
		Name: ExtractPriceQuotes,
		Columns: []string{
			"MediCarePIPCode", "ProductName", "PackSize", "Supplier", "Channel",
			"SourceColumn", "ValidFrom", "QuotedOn", "BatchId", "QuotedPrice",
		},
		Types:   map[string]string{"QuotedPrice": "NUMERIC"},
		Indexes: []string{"MediCarePIPCode", "Supplier"},
	}
	for _, q := range res.Quotes {
		quotes.Rows = append(quotes.Rows, []string{
			q.PIP,
			q.ProductName,
			q.PackSize,
			q.Supplier,
			q.Channel.String(),
			q.SourceColumn,
			q.ValidFrom.Format(time.DateOnly),
			q.QuotedOn.Format(time.DateOnly),
			q.BatchID,
			FormatPrice(q.Price),
		})
	}

	reference := Extract{
		Name:    ExtractReferenceColumns,
		Columns: []string{"column_name", "bucket", "reason", "notes", "last_seen_on"},
	}
	for _, c := range res.Excluded(pricing.ReasonReference, pricing.ReasonDerived, pricing.ReasonUnclassifiable) {
		bucket := c.Classification.Bucket
		if bucket == "" {
			bucket = c.Classification.Category.String()
		}
		reference.Rows = append(reference.Rows, []string{
			c.Header, bucket, string(c.Reason), c.Classification.Notes, lastSeen,
		})
	}

	duplicates := Extract{
		Name:    ExtractDuplicates,
		Columns: []string{"column_name", "canonical_column", "signature"},
	}
	for _, g := range res.DuplicateGroups {
		canonical := res.Columns[g.Canonical()].Header
		for _, pos := range g.Duplicates() {
			duplicates.Rows = append(duplicates.Rows, []string{res.Columns[pos].Header, canonical, g.Signature})
		}
	}

	conflicts := Extract{
		Name:    ExtractProductConflicts,
		Columns: []string{"medicare_pip", "field", "kept", "ignored", "row"},
		Types:   map[string]string{"row": "INTEGER"},
	}
	for _, c := range res.Conflicts {
		conflicts.Rows = append(conflicts.Rows, []string{c.PIP, c.Field, c.Kept, c.Ignored, strconv.Itoa(c.Row)})
	}

	unresolved := Extract{
		Name:    ExtractUnresolvedColumns,
		Columns: []string{"column_name", "reason"},
	}
	for _, c := range res.Excluded(pricing.ReasonUnresolved) {
		unresolved.Rows = append(unresolved.Rows, []string{c.Header, c.Resolution.Reason})
	}

	return []Extract{products, suppliers, items, quotes, reference, duplicates, conflicts, unresolved}
}

// FormatPrice writes a price with at least two decimal places and never
// rounds: 12.5 and 12.500 are "12.50", 3.333 stays "3.333".
func FormatPrice(d decimal.Decimal) string {
	s := d.String()
	places := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		places = len(s) - i - 1
	}
	if places < 2 {
		return d.StringFixed(2)
	}
	return s
}
