package analytics

import "sort"

const (
	// minTradesForThresholds gates adaptive recomputation; below this the
	// previous (or floor) thresholds stand.
	minTradesForThresholds = 10

	largeTradeFloor = 1.0
	priceMoveFloor  = 10.0

	largeTradePercentile = 0.90
	priceMovePercentile  = 0.95
)

// thresholdState holds the adaptive anomaly thresholds. Both values are
// recomputed from the rolling window after every accepted trade once the
// window holds enough history.
type thresholdState struct {
	largeTrade float64 // minimum size considered a large trade
	priceMove  float64 // minimum |Δprice| considered a large move
}

func newThresholdState() *thresholdState {
	return &thresholdState{
		largeTrade: largeTradeFloor,
		priceMove:  priceMoveFloor,
	}
}

// recompute updates both thresholds from the window. Cost is bounded by the
// fixed window capacity.
func (ts *thresholdState) recompute(w *tradeWindow) {
	if w.len() < minTradesForThresholds {
		return
	}
	if sizes := w.sizes(); len(sizes) > 0 {
		ts.largeTrade = maxFloat(largeTradeFloor, percentile(sizes, largeTradePercentile))
	}
	if deltas := w.absPriceDeltas(); len(deltas) > 0 {
		ts.priceMove = maxFloat(priceMoveFloor, percentile(deltas, priceMovePercentile))
	}
}

// percentile returns the value at index floor(p·n) of the ascending-sorted
// sample, clamped to the last element. The input slice is not modified.
func percentile(sample []float64, p float64) float64 {
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)) * p)
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
