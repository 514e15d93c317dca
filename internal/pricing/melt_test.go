package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/types"
)

var testRun = FixedRunContext(time.Date(2025, time.September, 3, 15, 4, 5, 0, time.UTC), "batch-1")

func productTable() *types.Table {
	return &types.Table{
		Headers: []string{"PIP", "Name", "Pack", "P1", "P2"},
		Rows: [][]string{
			{"200", "Ibuprofen", "", "2.00", "0"},
			{"100", "Paracetamol", "16", "1.50", "abc"},
			{"", "Orphan", "1", "9.99", "9.99"},
			{"200.0", "Ibuprofen 200mg", "24", "-1", "3.25"},
			{"100", "Paracetamol", "32", "", "1.45"},
		},
	}
}

func TestBuildProducts(t *testing.T) {
	products, conflicts := BuildProducts(productTable(), IdentityIndex{PIP: 0, Name: 1, PackSize: 2})

	assert.Equal(t, []Product{
		{PIP: "100", Name: "Paracetamol", PackSize: "16"},
		{PIP: "200", Name: "Ibuprofen", PackSize: "24"},
	}, products)

	assert.Equal(t, []ProductConflict{
		{PIP: "200", Field: FieldName, Kept: "Ibuprofen", Ignored: "Ibuprofen 200mg", Row: 5},
		{PIP: "100", Field: FieldPackSize, Kept: "16", Ignored: "32", Row: 6},
	}, conflicts)
}

func TestBuildProductsWithoutPackSize(t *testing.T) {
	products, conflicts := BuildProducts(productTable(), IdentityIndex{PIP: 0, Name: 1, PackSize: -1})
	require.Len(t, products, 2)
	assert.Equal(t, "", products[0].PackSize)
	assert.Len(t, conflicts, 1)
}

func TestBuildProductsReportsSheetRows(t *testing.T) {
	// Sheet row 3 was blank and dropped by the reader.
	table := &types.Table{
		Headers:    []string{"PIP", "Name", "P1"},
		Rows:       [][]string{{"1", "A", "2.00"}, {"1", "B", "3.00"}},
		RowNumbers: []int{2, 4},
	}

	_, conflicts := BuildProducts(table, IdentityIndex{PIP: 0, Name: 1, PackSize: -1})
	require.Len(t, conflicts, 1)
	assert.Equal(t, 4, conflicts[0].Row)

	products, _ := BuildProducts(table, IdentityIndex{PIP: 0, Name: 1, PackSize: -1})
	quotes := Melt(table, 0, []MeltColumn{{Index: 2, Header: "P1", Supplier: "Acme", Channel: ChannelDirect}}, products, testRun)
	require.Len(t, quotes, 2)
	assert.Equal(t, 2, quotes[0].Row)
	assert.Equal(t, 4, quotes[1].Row)
}

func TestMelt(t *testing.T) {
	table := productTable()
	products, _ := BuildProducts(table, IdentityIndex{PIP: 0, Name: 1, PackSize: 2})
	columns := []MeltColumn{
		{Index: 3, Header: "P1", Supplier: "Beta", Channel: ChannelSpot, ValidFrom: date(2025, time.July)},
		{Index: 4, Header: "P2", Supplier: "Acme", Channel: ChannelDirect, ValidFrom: date(2025, time.August)},
	}

	quotes := Melt(table, 0, columns, products, testRun)

	type row struct {
		pip, supplier, column, price string
		row                          int
	}
	var got []row
	for _, q := range quotes {
		assert.True(t, q.Price.IsPositive())
		assert.Equal(t, "batch-1", q.BatchID)
		assert.Equal(t, time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC), q.QuotedOn)
		got = append(got, row{q.PIP, q.Supplier, q.SourceColumn, q.Price.String(), q.Row})
	}

	assert.Equal(t, []row{
		{"100", "Acme", "P2", "1.45", 6},
		{"100", "Beta", "P1", "1.5", 3},
		{"200", "Acme", "P2", "3.25", 5},
		{"200", "Beta", "P1", "2", 2},
	}, got)

	// Product fields come from the first occurrence, not the melted row.
	assert.Equal(t, "Ibuprofen", quotes[2].ProductName)
	assert.Equal(t, "24", quotes[2].PackSize)
}

func TestSuppliersAndItems(t *testing.T) {
	columns := []MeltColumn{
		{Supplier: "Beta"}, {Supplier: "Acme"}, {Supplier: "Beta"}, {Supplier: "Gamma"},
	}
	assert.Equal(t, []string{"Acme", "Beta", "Gamma"}, Suppliers(columns))

	items := SupplierItems([]PriceQuote{
		{Supplier: "Beta", PIP: "2"},
		{Supplier: "Acme", PIP: "9"},
		{Supplier: "Beta", PIP: "1"},
		{Supplier: "Beta", PIP: "2"},
	})
	assert.Equal(t, []SupplierItem{
		{Supplier: "Acme", PIP: "9"},
		{Supplier: "Beta", PIP: "1"},
		{Supplier: "Beta", PIP: "2"},
	}, items)
}

func TestCanonicalSuppliers(t *testing.T) {
	columns := []MeltColumn{
		{Supplier: "Acme Ltd"}, {Supplier: "ACME  LTD"}, {Supplier: "Beta"},
	}
	canonicalSuppliers(columns)
	assert.Equal(t, "Acme Ltd", columns[1].Supplier)
	assert.Equal(t, []string{"Acme Ltd", "Beta"}, Suppliers(columns))
}
