package analytics

// DefaultDepthLevels is the number of book levels summed for depth metrics.
const DefaultDepthLevels = 10

// LiquidityMetrics captures the order-book side of a snapshot. Pointer fields
// are nil when the metric is not computable from the current book.
type LiquidityMetrics struct {
	Spread         float64  `json:"spread"`
	RelativeSpread float64  `json:"relative_spread"`
	BidDepth       float64  `json:"bid_depth"`
	AskDepth       float64  `json:"ask_depth"`
	Imbalance      *float64 `json:"order_book_imbalance,omitempty"`
	BidVWAP        *float64 `json:"bid_vwap,omitempty"`
	AskVWAP        *float64 `json:"ask_vwap,omitempty"`
	BidSlippage    *float64 `json:"bid_slippage,omitempty"`
	AskSlippage    *float64 `json:"ask_slippage,omitempty"`
	BidSlope       float64  `json:"bid_slope"`
	AskSlope       float64  `json:"ask_slope"`
}

// computeLiquidity derives all order-book metrics from the current view.
// Returns the zero value when either side of the book is empty.
func computeLiquidity(b *bookView, depth int, sampleVolume float64) LiquidityMetrics {
	var m LiquidityMetrics

	bestBid, okBid := b.bestBid()
	bestAsk, okAsk := b.bestAsk()
	if !okBid || !okAsk {
		return m
	}

	m.Spread = bestAsk.Price - bestBid.Price
	if mid := (bestAsk.Price + bestBid.Price) / 2.0; mid > 0 {
		m.RelativeSpread = m.Spread / mid
	}

	m.BidDepth = sumDepth(b.bids, depth)
	m.AskDepth = sumDepth(b.asks, depth)
	if total := m.BidDepth + m.AskDepth; total > 0 {
		imb := (m.BidDepth - m.AskDepth) / total
		m.Imbalance = &imb
	}

	if vwap, ok := walkVWAP(b.bids, sampleVolume); ok {
		slip := (bestBid.Price - vwap) / bestBid.Price
		m.BidVWAP = &vwap
		m.BidSlippage = &slip
	}
	if vwap, ok := walkVWAP(b.asks, sampleVolume); ok {
		slip := (vwap - bestAsk.Price) / bestAsk.Price
		m.AskVWAP = &vwap
		m.AskSlippage = &slip
	}

	m.BidSlope = bookSlope(b.bids, depth)
	m.AskSlope = bookSlope(b.asks, depth)
	return m
}

// sumDepth totals the sizes of the top n levels, capped by available depth.
func sumDepth(levels []OrderBookLevel, n int) float64 {
	if n > len(levels) {
		n = len(levels)
	}
	total := 0.0
	for i := 0; i < n; i++ {
		total += levels[i].Size
	}
	return total
}

// walkVWAP walks the ladder from the best price outward, consuming up to
// targetVolume, and returns the volume-weighted average fill price. The
// second return is false when nothing could be consumed.
func walkVWAP(levels []OrderBookLevel, targetVolume float64) (float64, bool) {
	if len(levels) == 0 || targetVolume <= 0 {
		return 0, false
	}
	consumed := 0.0
	weighted := 0.0
	for _, lvl := range levels {
		if consumed >= targetVolume {
			break
		}
		take := lvl.Size
		if remaining := targetVolume - consumed; take > remaining {
			take = remaining
		}
		if take > 0 {
			weighted += lvl.Price * take
			consumed += take
		}
	}
	if consumed <= 0 {
		return 0, false
	}
	return weighted / consumed, true
}

// bookSlope fits price against cumulative size over the top depth levels.
// 0 with fewer than two levels or degenerate cumulative volume.
func bookSlope(levels []OrderBookLevel, depth int) float64 {
	if depth > len(levels) {
		depth = len(levels)
	}
	if depth < 2 {
		return 0
	}
	prices := make([]float64, depth)
	cumVolumes := make([]float64, depth)
	cum := 0.0
	for i := 0; i < depth; i++ {
		cum += levels[i].Size
		prices[i] = levels[i].Price
		cumVolumes[i] = cum
	}
	return olsSlope(cumVolumes, prices)
}
