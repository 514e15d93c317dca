// =============================================================================
// Supplier Price Loader - Product Builder and Melter
// =============================================================================
//
// Products come from the identity columns, one per PIP. Price columns are
// then melted into one quote per positive cell, sorted so reruns produce
// identical output.
//
// =============================================================================

package pricing

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/types"
)

// Product is keyed by PIP code.
type Product struct {
	PIP      string
	Name     string
	PackSize string
}

// Conflict fields.
const (
	FieldName     = "name"
	FieldPackSize = "pack_size"
)

// ProductConflict records a later row that disagreed with the first
// occurrence of a PIP. The first occurrence is kept.
type ProductConflict struct {
	PIP     string
	Field   string
	Kept    string
	Ignored string

	// Row is the spreadsheet row number (header is row 1).
	Row int
}

// IdentityIndex holds the positions of the identity columns. PackSize is -1
// when the workbook has no pack size column.
type IdentityIndex struct {
	PIP      int
	Name     int
	PackSize int
}

// BuildProducts makes one product per distinct PIP, in PIP order. Rows
// with a blank PIP are skipped. A later row may fill a blank pack size;
// any other disagreement is returned as a conflict.
func BuildProducts(table *types.Table, idx IdentityIndex) ([]Product, []ProductConflict) {
	byPIP := make(map[string]*Product)
	var order []string
	var conflicts []ProductConflict

	for r := range table.Rows {
		pip := normalizePIP(table.Cell(r, idx.PIP))
		if pip == "" {
			continue
		}
		name := strings.TrimSpace(table.Cell(r, idx.Name))
		pack := ""
		if idx.PackSize >= 0 {
			pack = strings.TrimSpace(table.Cell(r, idx.PackSize))
		}

		p, seen := byPIP[pip]
		if !seen {
			byPIP[pip] = &Product{PIP: pip, Name: name, PackSize: pack}
			order = append(order, pip)
			continue
		}

		if name != "" && p.Name != name {
			if p.Name == "" {
				p.Name = name
			} else {
				conflicts = append(conflicts, ProductConflict{PIP: pip, Field: FieldName, Kept: p.Name, Ignored: name, Row: table.RowNumber(r)})
			}
		}
		if pack != "" && p.PackSize != pack {
			if p.PackSize == "" {
				p.PackSize = pack
			} else {
				conflicts = append(conflicts, ProductConflict{PIP: pip, Field: FieldPackSize, Kept: p.PackSize, Ignored: pack, Row: table.RowNumber(r)})
			}
		}
	}

	sort.Strings(order)
	products := make([]Product, 0, len(order))
	for _, pip := range order {
		products = append(products, *byPIP[pip])
	}
	return products, conflicts
}

// PriceQuote is one long-format price observation.
type PriceQuote struct {
	PIP         string
	ProductName string
	PackSize    string

	Supplier string
	Channel  Channel

	SourceColumn string
	ColumnIndex  int
	Row          int

	ValidFrom time.Time
	QuotedOn  time.Time
	BatchID   string

	Price decimal.Decimal
}

// MeltColumn is a resolved price column ready to melt.
type MeltColumn struct {
	Index     int
	Header    string
	Supplier  string
	Channel   Channel
	ValidFrom time.Time
}

// Melt reshapes price columns into quotes. A cell yields a quote only when
// its row has a PIP and the cell parses as a price greater than zero.
// Product fields come from products, so every quote points at a product.
// The result is sorted by PIP, supplier, channel, column position, then
// ValidFrom.
func Melt(table *types.Table, pipIndex int, columns []MeltColumn, products []Product, run RunContext) []PriceQuote {
	byPIP := make(map[string]Product, len(products))
	for _, p := range products {
		byPIP[p.PIP] = p
	}

	var quotes []PriceQuote
	for _, col := range columns {
		for r := range table.Rows {
			pip := normalizePIP(table.Cell(r, pipIndex))
			if pip == "" {
				continue
			}
			product, ok := byPIP[pip]
			if !ok {
				continue
			}
			price, ok := ParsePrice(table.Cell(r, col.Index))
			if !ok {
				continue
			}
			quotes = append(quotes, PriceQuote{
				PIP:          pip,
				ProductName:  product.Name,
				PackSize:     product.PackSize,
				Supplier:     col.Supplier,
				Channel:      col.Channel,
				SourceColumn: col.Header,
				ColumnIndex:  col.Index,
				Row:          table.RowNumber(r),
				ValidFrom:    col.ValidFrom,
				QuotedOn:     run.QuotedOn(),
				BatchID:      run.BatchID(),
				Price:        price,
			})
		}
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		a, b := quotes[i], quotes[j]
		switch {
		case a.PIP != b.PIP:
			return a.PIP < b.PIP
		case a.Supplier != b.Supplier:
			return a.Supplier < b.Supplier
		case a.Channel != b.Channel:
			return a.Channel.String() < b.Channel.String()
		case a.ColumnIndex != b.ColumnIndex:
			return a.ColumnIndex < b.ColumnIndex
		case !a.ValidFrom.Equal(b.ValidFrom):
			return a.ValidFrom.Before(b.ValidFrom)
		default:
			return a.Row < b.Row
		}
	})
	return quotes
}

// SupplierItem pairs a supplier with a product it quotes.
type SupplierItem struct {
	Supplier string
	PIP      string
}

// Suppliers returns the distinct supplier names of the melted columns,
// sorted.
func Suppliers(columns []MeltColumn) []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range columns {
		if !seen[c.Supplier] {
			seen[c.Supplier] = true
			names = append(names, c.Supplier)
		}
	}
	sort.Strings(names)
	return names
}

// SupplierItems returns the distinct (supplier, PIP) pairs among quotes,
// sorted by supplier then PIP.
func SupplierItems(quotes []PriceQuote) []SupplierItem {
	seen := make(map[SupplierItem]bool)
	var items []SupplierItem
	for _, q := range quotes {
		item := SupplierItem{Supplier: q.Supplier, PIP: q.PIP}
		if !seen[item] {
			seen[item] = true
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Supplier != items[j].Supplier {
			return items[i].Supplier < items[j].Supplier
		}
		return items[i].PIP < items[j].PIP
	})
	return items
}

// canonicalSuppliers folds supplier names case-insensitively onto the
// first spelling seen, in column order.
func canonicalSuppliers(columns []MeltColumn) {
	first := make(map[string]string)
	for i := range columns {
		key := strings.ToLower(strings.Join(strings.Fields(columns[i].Supplier), " "))
		if name, ok := first[key]; ok {
			columns[i].Supplier = name
			continue
		}
		first[key] = columns[i].Supplier
	}
}
