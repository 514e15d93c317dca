// =============================================================================
// Supplier Price Loader - Header Parser
// =============================================================================
//
// Price column headers are free text typed by buyers, for example:
//
//   "AUG 25 - Acme Direct"
//   "Sept 2024 Beta Pharma T&R Price"
//   "Gamma Concessions Jan-25 Short Dated"
//
// The parser splits such a header with three independent rules. Each rule
// returns a typed partial result and never fails loudly:
//
//   1. ParseMonthToken   - month and year, giving ValidFrom
//   2. ParseChannelToken - one keyword from the closed channel vocabulary
//   3. ParseSupplierName - whatever text is left, title cased
//
// A header without a month token yields no identity.
//
// =============================================================================

package pricing

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MonthToken is a month/year pair found in a header.
type MonthToken struct {
	// Text is the matched substring, e.g. "AUG 25".
	Text string

	// ValidFrom is the first day of the month, UTC.
	ValidFrom time.Time

	start, end int
}

// ChannelToken is the outcome of scanning a header for channel keywords.
type ChannelToken struct {
	Channel Channel

	// Matches holds the matched substrings in rule order.
	Matches []string

	// Ambiguous is set when keywords for two different channels were found.
	Ambiguous bool
}

// HeaderParse is the composed result of all header rules.
type HeaderParse struct {
	Header string

	Month    MonthToken
	HasMonth bool

	Channel    ChannelToken
	HasChannel bool

	Supplier string
}

// Parsable reports whether the header yields a ValidFrom.
func (h HeaderParse) Parsable() bool {
	return h.HasMonth
}

var monthPattern = regexp.MustCompile(
	`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)[^\da-z]{0,3}(\d{4}|\d{2})(?:\D|$)`)

var monthNumbers = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// ParseMonthToken finds the first month/year token in a header. Two digit
// years are read as 20YY.
func ParseMonthToken(header string) (MonthToken, bool) {
	m := monthPattern.FindStringSubmatchIndex(header)
	if m == nil {
		return MonthToken{}, false
	}

	month := monthNumbers[strings.ToLower(header[m[2] : m[2]+3])]
	year, err := strconv.Atoi(header[m[4]:m[5]])
	if err != nil {
		return MonthToken{}, false
	}
	if m[5]-m[4] == 2 {
		year += 2000
	}

	return MonthToken{
		Text:      header[m[0]:m[5]],
		ValidFrom: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		start:     m[0],
		end:       m[5],
	}, true
}

// ParseChannelToken scans text for channel keywords. Found is false when
// no keyword matches or when the keywords disagree.
func ParseChannelToken(text string) (token ChannelToken, found bool) {
	_, token = scanChannels(text)
	if token.Ambiguous || token.Channel == ChannelUnknown {
		return token, false
	}
	return token, true
}

// scanChannels applies the channel rules in order, blanking each match so
// that a longer synonym is never re-read by a shorter rule. It returns the
// text with all keywords removed.
func scanChannels(text string) (string, ChannelToken) {
	var token ChannelToken
	for _, rule := range channelRules {
		locs := rule.pattern.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		for _, loc := range locs {
			token.Matches = append(token.Matches, text[loc[0]:loc[1]])
		}
		text = rule.pattern.ReplaceAllString(text, " ")

		switch {
		case token.Channel == ChannelUnknown:
			token.Channel = rule.channel
		case token.Channel != rule.channel:
			token.Ambiguous = true
		}
	}
	if token.Ambiguous {
		token.Channel = ChannelUnknown
	}
	return text, token
}

var (
	markerPattern    = regexp.MustCompile(`(?i)\b(?:last\s+purchased|concessions?|order\s*list|prices?)\b`)
	separatorPattern = regexp.MustCompile(`[—–\-_/|:()]+`)
)

// ParseSupplierName cleans the text left after month and channel tokens
// have been removed. It returns "" when nothing usable remains.
func ParseSupplierName(text string) string {
	text = markerPattern.ReplaceAllString(text, " ")
	text = separatorPattern.ReplaceAllString(text, " ")
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.English).String(text)
}

// ParseHeader composes the month, channel and supplier rules.
func ParseHeader(header string) HeaderParse {
	result := HeaderParse{Header: header}

	rest := header
	if month, ok := ParseMonthToken(header); ok {
		result.Month, result.HasMonth = month, true
		rest = header[:month.start] + " " + header[month.end:]
	}

	rest, result.Channel = scanChannels(rest)
	result.HasChannel = !result.Channel.Ambiguous && result.Channel.Channel != ChannelUnknown

	result.Supplier = ParseSupplierName(rest)
	return result
}
