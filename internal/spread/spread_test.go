package spread

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_NeedsBothVenues(t *testing.T) {
	m := NewMonitor("binance", "bybit", 1.0, 0.5)

	_, ok := m.UpdateA(Quote{Bid: 100, Ask: 101})
	assert.False(t, ok, "no comparison until both venues quoted")

	c, ok := m.UpdateB(Quote{Bid: 99, Ask: 100})
	require.True(t, ok)
	assert.Equal(t, 1.0, c.BidDiff)
	assert.Equal(t, 1.0, c.AskDiff)
	assert.InDelta(t, 1.0/99.0*100, c.BidDiffPct, 1e-12)
}

func TestMonitor_DirectionAndProfit(t *testing.T) {
	m := NewMonitor("binance", "bybit", 1.0, 0.5)

	// A bids 102 while B asks 100: buy on B, sell into A's bid, $2 gross.
	m.UpdateA(Quote{Bid: 102, Ask: 103})
	c, ok := m.UpdateB(Quote{Bid: 99, Ask: 100})
	require.True(t, ok)
	assert.Equal(t, "buy_b", c.BestDirection)
	assert.InDelta(t, 2.0, c.PotentialProfit, 1e-12)

	// Reversed books point the other way.
	m.UpdateA(Quote{Bid: 99, Ask: 100})
	c, ok = m.UpdateB(Quote{Bid: 102, Ask: 103})
	require.True(t, ok)
	assert.Equal(t, "buy_a", c.BestDirection)
	assert.InDelta(t, 2.0, c.PotentialProfit, 1e-12)
}

func TestMonitor_NoDirectionBelowThreshold(t *testing.T) {
	m := NewMonitor("binance", "bybit", 1.0, 0.5)

	// Books overlap by less than the profit threshold.
	m.UpdateA(Quote{Bid: 100.3, Ask: 101})
	c, ok := m.UpdateB(Quote{Bid: 100, Ask: 100.1})
	require.True(t, ok)
	assert.Equal(t, "none", c.BestDirection)
	assert.Zero(t, c.PotentialProfit)
}

func TestMonitor_Significant(t *testing.T) {
	m := NewMonitor("binance", "bybit", 1.0, 0.5)
	assert.True(t, m.Significant(Comparison{BidDiff: -1.5}))
	assert.True(t, m.Significant(Comparison{AskDiff: 1.0}))
	assert.False(t, m.Significant(Comparison{BidDiff: 0.4, AskDiff: -0.9}))
}

func TestParseQuote(t *testing.T) {
	at := time.Unix(1700000000, 0)

	q, err := ParseQuote("50000.5", "1.25", "50001", "2", at)
	require.NoError(t, err)
	assert.Equal(t, Quote{Bid: 50000.5, Ask: 50001, BidVolume: 1.25, AskVolume: 2, UpdatedAt: at}, q)

	cases := []struct {
		name                     string
		bid, bidQty, ask, askQty string
	}{
		{"bad bid", "oops", "1", "100", "1"},
		{"bad ask", "100", "1", "oops", "1"},
		{"bad bid volume", "100", "oops", "101", "1"},
		{"bad ask volume", "100", "1", "101", "oops"},
		{"empty bid side", "0", "0", "101", "1"},
		{"empty ask side", "100", "1", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseQuote(tc.bid, tc.bidQty, tc.ask, tc.askQty, at)
			assert.Error(t, err)
		})
	}
}

func TestMonitor_QuoteAge(t *testing.T) {
	m := NewMonitor("binance", "bybit", 1.0, 0.5)
	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }

	m.UpdateA(Quote{Bid: 100, Ask: 101, UpdatedAt: now.Add(-2 * time.Second)})
	c, ok := m.UpdateB(Quote{Bid: 100, Ask: 101, UpdatedAt: now.Add(-5 * time.Second)})
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, c.MaxQuoteAge)
}
