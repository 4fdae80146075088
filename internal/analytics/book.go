package analytics

import "sort"

// bookView is the latest order book snapshot, normalized on every update.
// Bids are sorted descending and asks ascending by price, so the best quote
// on each side is the first element.
type bookView struct {
	bids []OrderBookLevel
	asks []OrderBookLevel
}

// replace swaps in a whole new ladder. Levels with non-positive price or size
// are dropped before sorting; the previous view is discarded entirely.
func (b *bookView) replace(bids, asks []OrderBookLevel) {
	b.bids = normalizeLevels(bids, func(a, b OrderBookLevel) bool { return a.Price > b.Price })
	b.asks = normalizeLevels(asks, func(a, b OrderBookLevel) bool { return a.Price < b.Price })
}

func normalizeLevels(levels []OrderBookLevel, less func(a, b OrderBookLevel) bool) []OrderBookLevel {
	out := make([]OrderBookLevel, 0, len(levels))
	for _, lvl := range levels {
		if lvl.Price <= 0 || lvl.Size <= 0 {
			continue
		}
		out = append(out, lvl)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (b *bookView) bestBid() (OrderBookLevel, bool) {
	if len(b.bids) == 0 {
		return OrderBookLevel{}, false
	}
	return b.bids[0], true
}

func (b *bookView) bestAsk() (OrderBookLevel, bool) {
	if len(b.asks) == 0 {
		return OrderBookLevel{}, false
	}
	return b.asks[0], true
}
