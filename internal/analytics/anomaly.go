package analytics

import "math"

const (
	// ewmaVolatilityAlarm flags a volatility anomaly when the EWMA estimate
	// exceeds 2% per trade.
	ewmaVolatilityAlarm = 0.02

	tradeSizeMultiplier      = 3.0
	priceDeviationMultiplier = 2.5
)

// AnomalyFlags classifies a single trade along three independent axes.
type AnomalyFlags struct {
	Price      bool `json:"price_anomaly"`
	Size       bool `json:"size_anomaly"`
	Volatility bool `json:"volatility_anomaly"`
}

// Any reports whether at least one flag is raised.
func (f AnomalyFlags) Any() bool {
	return f.Price || f.Size || f.Volatility
}

// classify evaluates the most recently ingested trade against the state it
// produced. Pure with respect to the window, thresholds, and EWMA estimator.
func classify(w *tradeWindow, ts *thresholdState, e *ewmaEstimator) AnomalyFlags {
	t, ok := w.last()
	if !ok {
		return AnomalyFlags{}
	}
	return AnomalyFlags{
		Price:      priceAnomaly(w, ts, t),
		Size:       sizeAnomaly(w, ts, t),
		Volatility: volatilityAnomaly(e),
	}
}

// priceAnomaly flags moves beyond the adaptive absolute threshold or 2.5×
// the mean consecutive deviation. Needs at least two trades.
func priceAnomaly(w *tradeWindow, ts *thresholdState, t Trade) bool {
	if w.len() < 2 {
		return false
	}
	avgDev := w.meanAbsPriceDelta()
	if avgDev <= 0 {
		return false
	}
	prev := w.at(w.len() - 2)
	change := math.Abs(t.Price - prev.Price)
	return change > ts.priceMove || change > avgDev*priceDeviationMultiplier
}

// sizeAnomaly uses the absolute threshold alone until the window holds
// enough trades for the relative (3× mean) check to be meaningful.
func sizeAnomaly(w *tradeWindow, ts *thresholdState, t Trade) bool {
	if w.len() < minTradesForThresholds {
		return t.Amount > ts.largeTrade
	}
	avgSize := w.meanSize()
	if avgSize <= 0 {
		return t.Amount > ts.largeTrade
	}
	return t.Amount > ts.largeTrade || t.Amount > avgSize*tradeSizeMultiplier
}

func volatilityAnomaly(e *ewmaEstimator) bool {
	if !e.initialized {
		return false
	}
	return e.volatility() > ewmaVolatilityAlarm
}
