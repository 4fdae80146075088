package analytics

import (
	"math"
	"sort"
)

const (
	// annualizationFactor converts per-trade variance to annual terms
	// assuming continuous 24h trading; fixed by convention, not measured
	// from elapsed time.
	annualizationFactor = 365 * 24

	// historicalVolReturns bounds the rolling historical volatility window.
	historicalVolReturns = 30
)

// RiskMetrics captures the price-history side of a snapshot. Values are in
// percent. HistoricalVolatility is nil with fewer than two recent returns.
type RiskMetrics struct {
	RealizedVolatility   float64  `json:"realized_volatility"`
	VaR95                float64  `json:"var_95"`
	ExpectedShortfall95  float64  `json:"expected_shortfall_95"`
	HistoricalVolatility *float64 `json:"historical_volatility,omitempty"`
}

// computeRisk derives volatility and tail-risk metrics from the stored price
// history. Returns the zero value when no usable returns exist.
func computeRisk(prices []float64) RiskMetrics {
	var m RiskMetrics

	returns := logReturns(prices)
	if len(returns) == 0 {
		return m
	}

	if v := sampleVariance(returns); v >= 0 && isFinite(v) {
		m.RealizedVolatility = annualizedVolPct(v)
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	varIdx := int(math.Ceil(float64(len(sorted)) * 0.05))
	if varIdx > len(sorted)-1 {
		varIdx = len(sorted) - 1
	}
	m.VaR95 = sorted[varIdx] * 100

	// Expected shortfall: mean of the returns at or below the VaR index.
	esSum := 0.0
	for i := 0; i <= varIdx; i++ {
		esSum += sorted[i]
	}
	m.ExpectedShortfall95 = esSum / float64(varIdx+1) * 100

	if len(returns) >= 2 {
		window := returns
		if len(window) > historicalVolReturns {
			window = window[len(window)-historicalVolReturns:]
		}
		if v := sampleVariance(window); v >= 0 && isFinite(v) {
			hv := annualizedVolPct(v)
			m.HistoricalVolatility = &hv
		}
	}
	return m
}

// logReturns computes the finite log returns between consecutive prices.
func logReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			continue
		}
		r := math.Log(prices[i] / prices[i-1])
		if isFinite(r) {
			out = append(out, r)
		}
	}
	return out
}

// sampleVariance uses the n-1 denominator, degenerating to 0 for n<2.
func sampleVariance(sample []float64) float64 {
	n := len(sample)
	if n == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range sample {
		mean += x
	}
	mean /= float64(n)

	variance := 0.0
	for _, x := range sample {
		variance += (x - mean) * (x - mean)
	}
	if n > 1 {
		variance /= float64(n - 1)
	}
	return variance
}

func annualizedVolPct(variance float64) float64 {
	return math.Sqrt(variance*annualizationFactor) * 100
}
