package analytics

import "time"

// MetricsSnapshot is one consistent, immutable view of every computed metric
// for a symbol. Optional metrics are nil when not computable, never zero
// sentinels.
type MetricsSnapshot struct {
	Symbol     string    `json:"symbol"`
	Taken      time.Time `json:"taken"`
	TradeCount int64     `json:"trade_count"`
	WindowSize int       `json:"window_size"`

	Liquidity LiquidityMetrics `json:"liquidity"`
	Risk      RiskMetrics      `json:"risk"`
	Impact    ImpactMetrics    `json:"impact"`

	// EWMAVolatility is the per-trade estimate, distinct from the
	// annualized realized volatility under Risk.
	EWMAVolatility float64 `json:"ewma_volatility"`

	Thresholds ThresholdSnapshot `json:"thresholds"`
}

// ThresholdSnapshot reports the adaptive thresholds in force when the
// snapshot was taken.
type ThresholdSnapshot struct {
	LargeTradeSize float64 `json:"large_trade_size"`
	PriceMovement  float64 `json:"price_movement"`
}
