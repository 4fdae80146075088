package analytics

// DefaultWindowCapacity bounds the rolling trade history.
const DefaultWindowCapacity = 10000

// tradeWindow is a bounded FIFO of trades backed by a ring buffer, so a push
// at capacity overwrites the oldest slot without shifting the store. The
// price-only view used by the risk and EWMA paths is derived from the same
// backing slice, so the trade history and price history can never diverge.
type tradeWindow struct {
	trades   []Trade
	head     int
	size     int
	capacity int
}

func newTradeWindow(capacity int) *tradeWindow {
	if capacity <= 0 {
		capacity = DefaultWindowCapacity
	}
	return &tradeWindow{
		trades:   make([]Trade, capacity),
		capacity: capacity,
	}
}

// push appends a trade, evicting the oldest entry when full.
func (w *tradeWindow) push(t Trade) {
	w.trades[(w.head+w.size)%w.capacity] = t
	if w.size == w.capacity {
		w.head = (w.head + 1) % w.capacity
	} else {
		w.size++
	}
}

func (w *tradeWindow) len() int { return w.size }

// at indexes the window oldest-first.
func (w *tradeWindow) at(i int) Trade { return w.trades[(w.head+i)%w.capacity] }

func (w *tradeWindow) last() (Trade, bool) {
	if w.size == 0 {
		return Trade{}, false
	}
	return w.at(w.size - 1), true
}

// prices returns the price view of the window, oldest first.
func (w *tradeWindow) prices() []float64 {
	out := make([]float64, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.at(i).Price
	}
	return out
}

// sizes returns the trade amounts, oldest first.
func (w *tradeWindow) sizes() []float64 {
	out := make([]float64, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.at(i).Amount
	}
	return out
}

// meanSize is the average trade amount over the window, 0 when empty.
func (w *tradeWindow) meanSize() float64 {
	if w.size == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < w.size; i++ {
		sum += w.at(i).Amount
	}
	return sum / float64(w.size)
}

// absPriceDeltas returns |Δprice| between consecutive trades, oldest first.
func (w *tradeWindow) absPriceDeltas() []float64 {
	if w.size < 2 {
		return nil
	}
	out := make([]float64, 0, w.size-1)
	for i := 1; i < w.size; i++ {
		d := w.at(i).Price - w.at(i-1).Price
		if d < 0 {
			d = -d
		}
		out = append(out, d)
	}
	return out
}

// meanAbsPriceDelta is the mean |Δprice| between consecutive trades,
// 0 with fewer than two trades.
func (w *tradeWindow) meanAbsPriceDelta() float64 {
	deltas := w.absPriceDeltas()
	if len(deltas) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range deltas {
		sum += d
	}
	return sum / float64(len(deltas))
}
