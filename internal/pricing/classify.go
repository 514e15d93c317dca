// =============================================================================
// Supplier Price Loader - Column Classifier
// =============================================================================
//
// Each workbook column is Price, Reference or Derived. The mapping table
// decides when it has an entry; otherwise a header with a month token is
// Price and anything else is Reference (unclassifiable).
//
// =============================================================================

package pricing

import (
	"strings"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/types"
)

// Category is the closed classification of a workbook column.
type Category int

const (
	CategoryPrice Category = iota
	CategoryReference
	CategoryDerived
)

func (c Category) String() string {
	switch c {
	case CategoryReference:
		return "Reference"
	case CategoryDerived:
		return "Derived"
	default:
		return "Price"
	}
}

// Reason records why a column was not melted.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonIdentity       Reason = "identity"
	ReasonReference      Reason = "reference"
	ReasonDerived        Reason = "derived"
	ReasonUnclassifiable Reason = "unclassifiable"
	ReasonUnresolved     Reason = "unresolved"
	ReasonDuplicate      Reason = "duplicate"
)

// Classification is the outcome of classifying one column.
type Classification struct {
	Category Category
	Reason   Reason

	// Bucket and Notes are copied from the mapping entry, if there was one.
	Bucket string
	Notes  string
}

// Excluded reports whether the classification keeps the column out of the
// price output.
func (c Classification) Excluded() bool {
	return c.Category != CategoryPrice
}

var (
	derivedNoteWords   = []string{"derived"}
	referenceNoteWords = []string{"ref only", "reference", "duplicate", "do not stage", "not part of staging", "exclude"}

	derivedBucketWords   = []string{"derived"}
	referenceBucketWords = []string{"reference", "master", "dm+d", "order qty", "other", "meta"}
)

// NormalizeBucket folds a free-text Bucket label and its Notes into the
// closed classification. Notes take precedence over the bucket label, and
// anything that is not recognisably Reference or Derived is Price.
func NormalizeBucket(bucket, notes string) Category {
	n := strings.ToLower(notes)
	b := strings.ToLower(bucket)

	switch {
	case containsAny(n, derivedNoteWords):
		return CategoryDerived
	case containsAny(n, referenceNoteWords):
		return CategoryReference
	case containsAny(b, derivedBucketWords):
		return CategoryDerived
	case containsAny(b, referenceBucketWords):
		return CategoryReference
	default:
		return CategoryPrice
	}
}

// Classify decides a column's category from its mapping entry (nil when
// the column has no entry) and whether its header carries a month token.
// A column with neither is Reference by default, recorded as unclassifiable.
func Classify(entry *types.MappingEntry, headerParsable bool) Classification {
	if entry == nil {
		if headerParsable {
			return Classification{Category: CategoryPrice}
		}
		return Classification{Category: CategoryReference, Reason: ReasonUnclassifiable}
	}

	c := Classification{Bucket: entry.Bucket, Notes: entry.Notes}
	switch NormalizeBucket(entry.Bucket, entry.Notes) {
	case CategoryDerived:
		c.Category, c.Reason = CategoryDerived, ReasonDerived
	case CategoryReference:
		c.Category, c.Reason = CategoryReference, ReasonReference
	default:
		c.Category = CategoryPrice
	}
	return c
}

// identityClassification is used for the designated PIP, name and pack size
// columns.
func identityClassification(entry *types.MappingEntry) Classification {
	c := Classification{Category: CategoryReference, Reason: ReasonIdentity}
	if entry != nil {
		c.Bucket, c.Notes = entry.Bucket, entry.Notes
	}
	return c
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
