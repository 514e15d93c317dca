// =============================================================================
// Supplier Price Loader - Alias Resolver
// =============================================================================
//
// RESOLUTION ORDER:
//   1. Exact match of the normalized header in the alias table
//   2. Longest alias key found as whole words inside the header
//   3. The header parser
//
// An alias hit sets supplier and channel. ValidFrom always comes from the
// header's month token.
//
// =============================================================================

package pricing

import (
	"sort"
	"strings"
	"time"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/types"
)

// Resolution sources.
const (
	SourceAlias  = "alias"
	SourceHeader = "header"
)

// Unresolved reasons.
const (
	UnresolvedNoMonth        = "no month token in header"
	UnresolvedNoSupplier     = "no supplier name"
	UnresolvedNoChannel      = "no channel"
	UnresolvedAmbiguous      = "ambiguous channel"
	UnresolvedUnknownChannel = "unknown alias channel"
)

// Resolution is the identity assigned to a price column.
type Resolution struct {
	Supplier  string
	Channel   Channel
	ValidFrom time.Time

	// Source is SourceAlias or SourceHeader.
	Source string

	// AliasKey is the normalized alias key that matched, if any.
	AliasKey string

	Resolved bool
	Reason   string
}

// AliasMatch is a normalized alias table entry.
type AliasMatch struct {
	Key      string
	Supplier string
	Channel  string
}

// Resolver resolves price column identity from the alias table, falling
// back to the header parser. It is safe for concurrent use.
type Resolver struct {
	exact map[string]AliasMatch

	// byLength holds every alias, longest key first.
	byLength []AliasMatch

	defaultChannel Channel
}

// NewResolver normalizes the alias table once. When two entries normalize
// to the same key the first one wins. defaultChannel is used for a column
// whose channel cannot be found; ChannelUnknown leaves such columns
// unresolved.
func NewResolver(aliases []types.AliasEntry, defaultChannel Channel) *Resolver {
	r := &Resolver{
		exact:          make(map[string]AliasMatch, len(aliases)),
		defaultChannel: defaultChannel,
	}
	for _, a := range aliases {
		key := NormalizeAliasKey(a.SourceColumn)
		if key == "" {
			continue
		}
		if _, dup := r.exact[key]; dup {
			continue
		}
		rec := AliasMatch{
			Key:      key,
			Supplier: strings.TrimSpace(a.Supplier),
			Channel:  strings.TrimSpace(a.Channel),
		}
		r.exact[key] = rec
		r.byLength = append(r.byLength, rec)
	}
	sort.SliceStable(r.byLength, func(i, j int) bool {
		return len(r.byLength[i].Key) > len(r.byLength[j].Key)
	})
	return r
}

var dashReplacer = strings.NewReplacer("—", "-", "–", "-")

// NormalizeAliasKey lower-cases text, unifies dashes and collapses
// whitespace.
func NormalizeAliasKey(s string) string {
	s = dashReplacer.Replace(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

// Lookup finds the alias entry for a header: an exact normalized match
// first, then the longest key found in the header on word boundaries.
func (r *Resolver) Lookup(header string) (AliasMatch, bool) {
	h := NormalizeAliasKey(header)
	if rec, ok := r.exact[h]; ok {
		return rec, true
	}
	for _, rec := range r.byLength {
		if containsWord(h, rec.Key) {
			return rec, true
		}
	}
	return AliasMatch{}, false
}

// Resolve assigns Supplier, Channel and ValidFrom to a price column header.
// An alias hit overrides whatever the header parser found for supplier and
// channel; ValidFrom always comes from the header.
func (r *Resolver) Resolve(header string) Resolution {
	parsed := ParseHeader(header)
	if !parsed.HasMonth {
		return Resolution{Source: SourceHeader, Reason: UnresolvedNoMonth}
	}

	res := Resolution{
		ValidFrom: parsed.Month.ValidFrom,
		Source:    SourceHeader,
		Supplier:  parsed.Supplier,
	}

	if rec, ok := r.Lookup(header); ok {
		res.Source, res.AliasKey = SourceAlias, rec.Key
		if rec.Supplier != "" {
			res.Supplier = rec.Supplier
		}
		if rec.Channel != "" {
			ch, ok := ParseChannel(rec.Channel)
			if !ok {
				res.Reason = UnresolvedUnknownChannel
				return res
			}
			res.Channel = ch
		}
	} else {
		if parsed.Channel.Ambiguous {
			res.Reason = UnresolvedAmbiguous
			return res
		}
		res.Channel = parsed.Channel.Channel
	}

	if res.Channel == ChannelUnknown {
		if r.defaultChannel == ChannelUnknown {
			res.Reason = UnresolvedNoChannel
			return res
		}
		res.Channel = r.defaultChannel
	}
	if res.Supplier == "" {
		res.Reason = UnresolvedNoSupplier
		return res
	}

	res.Resolved = true
	return res
}

// containsWord reports whether key occurs in s with no letter or digit
// directly before or after it.
func containsWord(s, key string) bool {
	for from := 0; from <= len(s)-len(key); {
		i := strings.Index(s[from:], key)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(key)
		if isBoundary(s, start-1) && isBoundary(s, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}
