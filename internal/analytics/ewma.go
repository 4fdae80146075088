package analytics

import "math"

const (
	// DefaultEWMALambda is the decay factor; 0.92 suits high-frequency
	// crypto prints.
	DefaultEWMALambda = 0.92

	// ewmaSeedVariance seeds the estimator on the first observed price
	// (roughly 1% volatility squared).
	ewmaSeedVariance = 1e-4
)

// ewmaEstimator maintains an exponentially weighted moving variance of
// per-trade log returns: σ²(t) = λ·σ²(t-1) + (1-λ)·r²(t).
type ewmaEstimator struct {
	lambda      float64
	variance    float64
	prevPrice   float64
	initialized bool
}

func newEWMAEstimator(lambda float64) *ewmaEstimator {
	if lambda <= 0 || lambda >= 1 {
		lambda = DefaultEWMALambda
	}
	return &ewmaEstimator{lambda: lambda}
}

// update folds a new price into the variance estimate. Non-finite returns
// (bad prints, zero previous price) leave the prior state untouched.
func (e *ewmaEstimator) update(price float64) {
	if !e.initialized {
		e.prevPrice = price
		e.variance = ewmaSeedVariance
		e.initialized = true
		return
	}
	r := math.Log(price / e.prevPrice)
	if !isFinite(r) {
		return
	}
	e.variance = e.lambda*e.variance + (1.0-e.lambda)*r*r
	e.prevPrice = price
}

// volatility is the current per-trade (non-annualized) standard deviation,
// 0 before initialization.
func (e *ewmaEstimator) volatility() float64 {
	if !e.initialized {
		return 0
	}
	return math.Sqrt(e.variance)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
