package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/types"
)

func TestNormalizeBucket(t *testing.T) {
	tests := []struct {
		bucket, notes string
		want          Category
	}{
		{"Reference", "", CategoryReference},
		{"Master/DM+D", "", CategoryReference},
		{"Order Qty", "", CategoryReference},
		{"Other / Meta", "", CategoryReference},
		{"Reference/Derived", "", CategoryDerived},
		{"Derived", "", CategoryDerived},
		{"Supplier/Price", "", CategoryPrice},
		{"", "", CategoryPrice},
		{"Supplier/Price", "Derived from the two columns left", CategoryDerived},
		{"Supplier/Price", "ref only", CategoryReference},
		{"Supplier/Price", "Duplicate of AUG 25 Acme", CategoryReference},
		{"", "do not stage", CategoryReference},
		{"Price", "Not part of staging", CategoryReference},
	}
	for _, tt := range tests {
		t.Run(tt.bucket+"|"+tt.notes, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBucket(tt.bucket, tt.notes))
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("no entry, parsable header", func(t *testing.T) {
		c := Classify(nil, true)
		assert.Equal(t, CategoryPrice, c.Category)
		assert.Equal(t, ReasonNone, c.Reason)
		assert.False(t, c.Excluded())
	})

	t.Run("no entry, unparsable header", func(t *testing.T) {
		c := Classify(nil, false)
		assert.Equal(t, CategoryReference, c.Category)
		assert.Equal(t, ReasonUnclassifiable, c.Reason)
		assert.True(t, c.Excluded())
	})

	t.Run("derived entry ignores header", func(t *testing.T) {
		c := Classify(&types.MappingEntry{Column: "AUG 25 Acme Direct", Bucket: "Derived", Notes: "avg"}, true)
		assert.Equal(t, CategoryDerived, c.Category)
		assert.Equal(t, ReasonDerived, c.Reason)
		assert.Equal(t, "Derived", c.Bucket)
		assert.Equal(t, "avg", c.Notes)
	})

	t.Run("reference entry", func(t *testing.T) {
		c := Classify(&types.MappingEntry{Bucket: "Reference"}, true)
		assert.Equal(t, CategoryReference, c.Category)
		assert.Equal(t, ReasonReference, c.Reason)
	})

	t.Run("price entry with unparsable header stays price", func(t *testing.T) {
		c := Classify(&types.MappingEntry{Bucket: "Supplier/Price"}, false)
		assert.Equal(t, CategoryPrice, c.Category)
	})
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "Price", CategoryPrice.String())
	assert.Equal(t, "Reference", CategoryReference.String())
	assert.Equal(t, "Derived", CategoryDerived.String())
}
