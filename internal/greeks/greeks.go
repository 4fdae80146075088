// Package greeks prices European options and their sensitivities under
// Black-Scholes. Closed-form only; no market state.
package greeks

import (
	"fmt"
	"math"
)

// Option is the input to the Black-Scholes model.
type Option struct {
	Spot         float64 `json:"spot"`           // current underlying price
	Strike       float64 `json:"strike"`         // strike price
	TimeToExpiry float64 `json:"time_to_expiry"` // years
	RiskFreeRate float64 `json:"risk_free_rate"` // annualized, e.g. 0.05
	Volatility   float64 `json:"volatility"`     // implied, annualized
	IsCall       bool    `json:"is_call"`
}

// Greeks holds the option sensitivities. Theta is per day; vega and rho are
// per 1% change in volatility and rate respectively.
type Greeks struct {
	Price          float64 `json:"price"`
	Delta          float64 `json:"delta"`
	Gamma          float64 `json:"gamma"`
	Theta          float64 `json:"theta"`
	Vega           float64 `json:"vega"`
	Rho            float64 `json:"rho"`
	IntrinsicValue float64 `json:"intrinsic_value"`
}

// Compute prices the option and derives its Greeks.
func Compute(o Option) (Greeks, error) {
	if o.Spot <= 0 || o.Strike <= 0 {
		return Greeks{}, fmt.Errorf("spot and strike must be positive (spot=%.4f strike=%.4f)", o.Spot, o.Strike)
	}
	if o.TimeToExpiry <= 0 {
		return Greeks{}, fmt.Errorf("time to expiry must be positive, got %.6f", o.TimeToExpiry)
	}
	if o.Volatility <= 0 {
		return Greeks{}, fmt.Errorf("volatility must be positive, got %.6f", o.Volatility)
	}

	S, K, T, r, sigma := o.Spot, o.Strike, o.TimeToExpiry, o.RiskFreeRate, o.Volatility
	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	discount := math.Exp(-r * T)

	var g Greeks
	g.Gamma = normPDF(d1) / (S * sigma * sqrtT)
	g.Vega = S * normPDF(d1) * sqrtT

	if o.IsCall {
		g.Price = S*normCDF(d1) - K*discount*normCDF(d2)
		g.Delta = normCDF(d1)
		g.Theta = -(S*normPDF(d1)*sigma)/(2*sqrtT) - r*K*discount*normCDF(d2)
		g.Rho = K * T * discount * normCDF(d2)
		g.IntrinsicValue = math.Max(0, S-K)
	} else {
		g.Price = K*discount*normCDF(-d2) - S*normCDF(-d1)
		g.Delta = normCDF(d1) - 1.0
		g.Theta = -(S*normPDF(d1)*sigma)/(2*sqrtT) + r*K*discount*normCDF(-d2)
		g.Rho = -K * T * discount * normCDF(-d2)
		g.IntrinsicValue = math.Max(0, K-S)
	}

	// Per-day theta, per-1% vega and rho.
	g.Theta /= 365.0
	g.Vega /= 100.0
	g.Rho /= 100.0
	return g, nil
}

func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2.0*math.Pi)
}
