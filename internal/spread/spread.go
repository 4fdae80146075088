// Package spread compares top-of-book quotes across two venues and surfaces
// cross-exchange price differences. Stateless beyond the last quote per
// venue; a comparison needs both sides present.
package spread

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"
)

// Quote is a venue's current best bid/ask with sizes.
type Quote struct {
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	BidVolume float64   `json:"bid_volume"`
	AskVolume float64   `json:"ask_volume"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comparison is the cross-venue difference report. Directions are from the
// perspective of buying on the cheaper venue and selling on the richer one.
type Comparison struct {
	VenueA string `json:"venue_a"`
	VenueB string `json:"venue_b"`
	QuoteA Quote  `json:"quote_a"`
	QuoteB Quote  `json:"quote_b"`

	BidDiff    float64 `json:"bid_diff"`     // A.bid − B.bid
	AskDiff    float64 `json:"ask_diff"`     // A.ask − B.ask
	BidDiffPct float64 `json:"bid_diff_pct"` // relative to B.bid, percent
	AskDiffPct float64 `json:"ask_diff_pct"` // relative to B.ask, percent

	BestDirection   string        `json:"best_direction"` // "buy_a", "buy_b", or "none"
	PotentialProfit float64       `json:"potential_profit"`
	MaxQuoteAge     time.Duration `json:"max_quote_age"`
}

// ParseQuote converts the string bid/ask fields venue REST tickers report.
// Non-positive prices fail: a one-sided or empty book has no usable quote.
func ParseQuote(bid, bidQty, ask, askQty string, at time.Time) (Quote, error) {
	q := Quote{UpdatedAt: at}
	var err error
	if q.Bid, err = strconv.ParseFloat(bid, 64); err != nil {
		return Quote{}, fmt.Errorf("unparseable bid %q: %w", bid, err)
	}
	if q.Ask, err = strconv.ParseFloat(ask, 64); err != nil {
		return Quote{}, fmt.Errorf("unparseable ask %q: %w", ask, err)
	}
	if q.BidVolume, err = strconv.ParseFloat(bidQty, 64); err != nil {
		return Quote{}, fmt.Errorf("unparseable bid volume %q: %w", bidQty, err)
	}
	if q.AskVolume, err = strconv.ParseFloat(askQty, 64); err != nil {
		return Quote{}, fmt.Errorf("unparseable ask volume %q: %w", askQty, err)
	}
	if q.Bid <= 0 || q.Ask <= 0 {
		return Quote{}, fmt.Errorf("quote has no two-sided market (bid=%.8f ask=%.8f)", q.Bid, q.Ask)
	}
	return q, nil
}

// Monitor tracks the latest quote from each of two venues.
type Monitor struct {
	mu sync.Mutex

	venueA, venueB string
	quoteA, quoteB Quote
	hasA, hasB     bool

	minPriceDiff    float64
	profitThreshold float64
	now             func() time.Time
}

// NewMonitor compares venueA against venueB. minPriceDiff gates whether a
// raw bid/ask difference is worth reporting; profitThreshold gates the
// cross-venue direction call.
func NewMonitor(venueA, venueB string, minPriceDiff, profitThreshold float64) *Monitor {
	return &Monitor{
		venueA:          venueA,
		venueB:          venueB,
		minPriceDiff:    minPriceDiff,
		profitThreshold: profitThreshold,
		now:             time.Now,
	}
}

// UpdateA records a new quote for venue A. The second return is true once
// both venues have data and reports the fresh comparison.
func (m *Monitor) UpdateA(q Quote) (Comparison, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteA = q
	m.hasA = true
	return m.compareLocked()
}

// UpdateB records a new quote for venue B.
func (m *Monitor) UpdateB(q Quote) (Comparison, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteB = q
	m.hasB = true
	return m.compareLocked()
}

// Significant reports whether either side's difference clears minPriceDiff.
func (m *Monitor) Significant(c Comparison) bool {
	return math.Abs(c.BidDiff) >= m.minPriceDiff || math.Abs(c.AskDiff) >= m.minPriceDiff
}

func (m *Monitor) compareLocked() (Comparison, bool) {
	if !m.hasA || !m.hasB {
		return Comparison{}, false
	}

	c := Comparison{
		VenueA: m.venueA,
		VenueB: m.venueB,
		QuoteA: m.quoteA,
		QuoteB: m.quoteB,

		BidDiff: m.quoteA.Bid - m.quoteB.Bid,
		AskDiff: m.quoteA.Ask - m.quoteB.Ask,
	}
	if m.quoteB.Bid > 0 {
		c.BidDiffPct = c.BidDiff / m.quoteB.Bid * 100
	}
	if m.quoteB.Ask > 0 {
		c.AskDiffPct = c.AskDiff / m.quoteB.Ask * 100
	}

	// Buy on one venue's ask, sell into the other's bid.
	buyB := m.quoteA.Bid - m.quoteB.Ask
	buyA := m.quoteB.Bid - m.quoteA.Ask

	c.BestDirection = "none"
	switch {
	case buyB > m.profitThreshold && buyB >= buyA:
		c.BestDirection = "buy_b"
		c.PotentialProfit = buyB
	case buyA > m.profitThreshold:
		c.BestDirection = "buy_a"
		c.PotentialProfit = buyA
	}

	now := m.now()
	ageA := now.Sub(m.quoteA.UpdatedAt)
	ageB := now.Sub(m.quoteB.UpdatedAt)
	if ageA > ageB {
		c.MaxQuoteAge = ageA
	} else {
		c.MaxQuoteAge = ageB
	}
	return c, true
}
