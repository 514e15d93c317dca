package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestParseMonthToken(t *testing.T) {
	tests := []struct {
		header string
		want   time.Time
		text   string
	}{
		{"AUG 25 - Acme Direct", date(2025, time.August), "AUG 25"},
		{"Sept 2024 Beta", date(2024, time.September), "Sept 2024"},
		{"Gamma Jan-25 Short Dated", date(2025, time.January), "Jan-25"},
		{"march 2023", date(2023, time.March), "march 2023"},
		{"Acme dec24", date(2024, time.December), "dec24"},
		{"may 25 mayne pharma", date(2025, time.May), "may 25"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			tok, ok := ParseMonthToken(tt.header)
			assert.True(t, ok)
			assert.Equal(t, tt.want, tok.ValidFrom)
			assert.Equal(t, tt.text, tok.Text)
		})
	}

	for _, header := range []string{"Avg Price", "Mayne Pharma Direct", "Order Qty", "AUG 255"} {
		t.Run("none "+header, func(t *testing.T) {
			_, ok := ParseMonthToken(header)
			assert.False(t, ok)
		})
	}
}

func TestParseChannelToken(t *testing.T) {
	tests := []struct {
		text string
		want Channel
	}{
		{"Acme Direct", ChannelDirect},
		{"prop", ChannelProposition},
		{"Proposition", ChannelProposition},
		{"Beta T&R", ChannelTenderAndRetail},
		{"Beta t & r", ChannelTenderAndRetail},
		{"Tender and Retail", ChannelTenderAndRetail},
		{"Tender & Retail", ChannelTenderAndRetail},
		{"Short Dated", ChannelShortDated},
		{"short-dated", ChannelShortDated},
		{"S/D", ChannelShortDated},
		{"Spot-buy", ChannelSpot},
		{"spot", ChannelSpot},
		{"Promotional", ChannelPromo},
		{"Tendered", ChannelTender},
		{"Direct direct", ChannelDirect},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tok, ok := ParseChannelToken(tt.text)
			assert.True(t, ok)
			assert.Equal(t, tt.want, tok.Channel)
		})
	}

	t.Run("ambiguous", func(t *testing.T) {
		tok, ok := ParseChannelToken("Zeta Direct Promo")
		assert.False(t, ok)
		assert.True(t, tok.Ambiguous)
		assert.Equal(t, ChannelUnknown, tok.Channel)
	})

	t.Run("none", func(t *testing.T) {
		_, ok := ParseChannelToken("Acme Price")
		assert.False(t, ok)
	})
}

func TestParseChannel(t *testing.T) {
	for label, want := range map[string]Channel{
		"Direct":          ChannelDirect,
		"T&R":             ChannelTenderAndRetail,
		"TenderAndRetail": ChannelTenderAndRetail,
		"Short-dated":     ChannelShortDated,
		"spot buy":        ChannelSpot,
		"PROMO":           ChannelPromo,
		"Tender":          ChannelTender,
		"Prop":            ChannelProposition,
	} {
		got, ok := ParseChannel(label)
		assert.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}

	for _, label := range []string{"", "Wholesale", "Direct Promo"} {
		_, ok := ParseChannel(label)
		assert.False(t, ok, label)
	}
}

func TestParseSupplierName(t *testing.T) {
	assert.Equal(t, "Acme", ParseSupplierName(" - ACME "))
	assert.Equal(t, "Beta Pharma", ParseSupplierName("beta pharma price"))
	assert.Equal(t, "Gamma", ParseSupplierName("Gamma Concessions"))
	assert.Equal(t, "Delta", ParseSupplierName("Delta | Last Purchased"))
	assert.Equal(t, "Epsilon", ParseSupplierName("Epsilon OrderList"))
	assert.Equal(t, "", ParseSupplierName(" — price "))
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		header     string
		month      time.Time
		hasChannel bool
		channel    Channel
		supplier   string
	}{
		{"AUG 25 - Acme Direct", date(2025, time.August), true, ChannelDirect, "Acme"},
		{"AUG 25 — Acme Direct", date(2025, time.August), true, ChannelDirect, "Acme"},
		{"Sept 2024 Beta Pharma T&R Price", date(2024, time.September), true, ChannelTenderAndRetail, "Beta Pharma"},
		{"Gamma Concessions Jan-25 Short Dated", date(2025, time.January), true, ChannelShortDated, "Gamma"},
		{"Delta Tender and Retail MAR 2025", date(2025, time.March), true, ChannelTenderAndRetail, "Delta"},
		{"DEC 24 Epsilon Tender", date(2024, time.December), true, ChannelTender, "Epsilon"},
		{"may 25 mayne pharma spot buy", date(2025, time.May), true, ChannelSpot, "Mayne Pharma"},
		{"JUN 25 Zeta Direct Promo", date(2025, time.June), false, ChannelUnknown, "Zeta"},
		{"JUL 25 Eta", date(2025, time.July), false, ChannelUnknown, "Eta"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			p := ParseHeader(tt.header)
			assert.True(t, p.Parsable())
			assert.Equal(t, tt.month, p.Month.ValidFrom)
			assert.Equal(t, tt.hasChannel, p.HasChannel)
			assert.Equal(t, tt.channel, p.Channel.Channel)
			assert.Equal(t, tt.supplier, p.Supplier)
		})
	}

	t.Run("no month", func(t *testing.T) {
		p := ParseHeader("Acme Direct")
		assert.False(t, p.Parsable())
		assert.True(t, p.HasChannel)
		assert.Equal(t, "Acme", p.Supplier)
	})
}
