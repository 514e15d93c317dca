// =============================================================================
// Supplier Price Loader - Duplicate Column Detection
// =============================================================================

package pricing

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// DuplicateGroup is a set of columns with identical normalized content.
type DuplicateGroup struct {
	Signature string

	// Members are column positions in ascending order. The first member is
	// the canonical column.
	Members []int
}

// Canonical returns the position of the group's canonical column.
func (g DuplicateGroup) Canonical() int {
	return g.Members[0]
}

// Duplicates returns the flagged (non-canonical) members.
func (g DuplicateGroup) Duplicates() []int {
	return g.Members[1:]
}

// Signature is an order-preserving digest of a column's cells. Each cell
// goes through NormalizeCell and is length-prefixed before hashing, so
// ["ab", "c"] and ["a", "bc"] differ.
func Signature(cells []string) string {
	h := sha256.New()
	var size [8]byte
	for _, c := range cells {
		v := NormalizeCell(c)
		binary.BigEndian.PutUint64(size[:], uint64(len(v)))
		h.Write(size[:])
		h.Write([]byte(v))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DetectDuplicates groups column positions by signature. signatures[i] is
// the signature of column i. Only groups with more than one member are
// returned, ordered by canonical position.
func DetectDuplicates(signatures []string) []DuplicateGroup {
	index := make(map[string]int)
	var groups []DuplicateGroup
	for pos, sig := range signatures {
		if g, ok := index[sig]; ok {
			groups[g].Members = append(groups[g].Members, pos)
			continue
		}
		index[sig] = len(groups)
		groups = append(groups, DuplicateGroup{Signature: sig, Members: []int{pos}})
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Members) > 1 {
			out = append(out, g)
		}
	}
	return out
}
