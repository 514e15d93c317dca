// =============================================================================
// Supplier Price Loader - Pricing Channels
// =============================================================================
//
// The closed set of commercial channels. Labels from the alias table and
// configuration are parsed whole; headers are scanned with channelRules.
//
// =============================================================================

package pricing

import (
	"regexp"
	"strings"
)

// Channel is the commercial pricing channel of a price column. The set is
// closed; anything that does not parse into one of these is unresolved.
type Channel int

const (
	ChannelUnknown Channel = iota
	ChannelDirect
	ChannelProposition
	ChannelTenderAndRetail
	ChannelShortDated
	ChannelSpot
	ChannelPromo
	ChannelTender
)

// Channels lists every valid channel in display order.
var Channels = []Channel{
	ChannelDirect,
	ChannelProposition,
	ChannelTenderAndRetail,
	ChannelShortDated,
	ChannelSpot,
	ChannelPromo,
	ChannelTender,
}

// String returns the label written to the extracts.
func (c Channel) String() string {
	switch c {
	case ChannelDirect:
		return "Direct"
	case ChannelProposition:
		return "Proposition"
	case ChannelTenderAndRetail:
		return "T&R"
	case ChannelShortDated:
		return "Short-dated"
	case ChannelSpot:
		return "Spot"
	case ChannelPromo:
		return "Promo"
	case ChannelTender:
		return "Tender"
	default:
		return ""
	}
}

// channelKeys maps a letters-only, lower-cased label to its channel. It is
// used for labels that arrive on their own (alias table, config), where the
// whole value must name a channel.
var channelKeys = map[string]Channel{
	"direct":          ChannelDirect,
	"prop":            ChannelProposition,
	"proposition":     ChannelProposition,
	"tr":              ChannelTenderAndRetail,
	"tandr":           ChannelTenderAndRetail,
	"tenderandretail": ChannelTenderAndRetail,
	"tenderretail":    ChannelTenderAndRetail,
	"sd":              ChannelShortDated,
	"shortdated":      ChannelShortDated,
	"spot":            ChannelSpot,
	"spotbuy":         ChannelSpot,
	"promo":           ChannelPromo,
	"promotion":       ChannelPromo,
	"promotional":     ChannelPromo,
	"tender":          ChannelTender,
	"tendered":        ChannelTender,
}

// ParseChannel parses a standalone channel label such as "Direct", "T&R",
// "Short-dated" or "TenderAndRetail". Blank or unknown labels return false.
func ParseChannel(label string) (Channel, bool) {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	c, ok := channelKeys[b.String()]
	return c, ok
}

// channelRules are the in-header keyword patterns. Order matters: the
// tender-and-retail forms must be consumed before plain "tender".
var channelRules = []struct {
	channel Channel
	pattern *regexp.Regexp
}{
	{ChannelTenderAndRetail, regexp.MustCompile(`(?i)\b(?:tender\s*(?:and|&)\s*retail|t\s*(?:&|and)\s*r)\b`)},
	{ChannelShortDated, regexp.MustCompile(`(?i)(?:\bshort[-\s]?dated\b|\bs/d\b)`)},
	{ChannelProposition, regexp.MustCompile(`(?i)\b(?:proposition|prop)\b`)},
	{ChannelSpot, regexp.MustCompile(`(?i)\bspot(?:[-\s]?buy)?\b`)},
	{ChannelPromo, regexp.MustCompile(`(?i)\bpromo(?:tion(?:al)?)?\b`)},
	{ChannelTender, regexp.MustCompile(`(?i)\btender(?:ed)?\b`)},
	{ChannelDirect, regexp.MustCompile(`(?i)\bdirect\b`)},
}
