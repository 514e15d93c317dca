// =============================================================================
// Supplier Price Loader - Value Normalization
// =============================================================================
//
// Every cell passes through one numeric cleanup: currency symbols and
// thousands separators are stripped and "(x)" reads as a negative. Column
// signatures and price parsing share it, so "12.50" and "£12.5" are the
// same value in both places.
//
// =============================================================================

package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MissingValue stands in for a blank cell in content signatures.
const MissingValue = "<NA>"

// numericReplacer strips currency symbols and thousands separators.
var numericReplacer = strings.NewReplacer(
	"£", "",
	"$", "",
	"€", "",
	",", "",
)

// maxExponent bounds the decimal exponent of a parsed number. Cells such
// as "1e-50000000" are text, not numbers; expanding them would build
// strings of that many digits.
const maxExponent = 30

// ParseNumber applies the shared numeric cleanup and parses the result.
// Accepted forms include "12.50", "£1,234.5", "(3.00)" (accounting
// negative) and "1e2". Anything else returns false.
func ParseNumber(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.TrimSpace(numericReplacer.Replace(s))
	if s == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// ParsePrice parses a price cell. Only numeric values strictly greater than
// zero are prices; zero, negative and non-numeric cells return false.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	d, ok := ParseNumber(raw)
	if !ok || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// NormalizeCell returns the canonical text of a cell for content hashing.
// Numbers are rewritten to their shortest decimal form so that "12.50",
// "12.5" and "£12.50" compare equal; other text has its whitespace
// collapsed; blanks become MissingValue.
func NormalizeCell(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return MissingValue
	}
	if d, ok := ParseNumber(s); ok {
		return d.String()
	}
	return s
}

// normalizePIP trims a PIP code and drops a float suffix (".0") that
// spreadsheet exports add to integer-looking codes. Leading zeros are kept.
func normalizePIP(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasSuffix(s, ".0") {
		head := s[:len(s)-2]
		if head != "" && strings.Trim(head, "0123456789") == "" {
			return head
		}
	}
	return s
}
