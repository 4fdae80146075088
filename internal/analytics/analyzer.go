// Package analytics maintains online market-microstructure statistics for a
// single symbol: a bounded rolling trade window, the latest normalized order
// book, an EWMA volatility estimate, adaptive anomaly thresholds, and the
// liquidity/risk/market-impact metrics derived from them.
package analytics

import (
	"sync"
	"time"
)

// Config tunes one analyzer instance. Zero values fall back to defaults.
type Config struct {
	Symbol         string  `yaml:"symbol"`
	WindowCapacity int     `yaml:"window_capacity"`
	EWMALambda     float64 `yaml:"ewma_lambda"`
	DepthLevels    int     `yaml:"depth_levels"`
	SampleVolume   float64 `yaml:"sample_volume"`
}

// DefaultConfig returns production analyzer settings.
func DefaultConfig() Config {
	return Config{
		Symbol:         "BTCUSDT",
		WindowCapacity: DefaultWindowCapacity,
		EWMALambda:     DefaultEWMALambda,
		DepthLevels:    DefaultDepthLevels,
		SampleVolume:   1.0,
	}
}

// Analyzer owns all mutable state for one symbol. A single exclusive lock
// serializes every ingest and every metric read, so a snapshot always sees
// momentarily frozen state and ingest-then-classify is atomic with respect
// to concurrent producers. No I/O happens under the lock.
type Analyzer struct {
	mu sync.Mutex

	cfg        Config
	window     *tradeWindow
	book       bookView
	ewma       *ewmaEstimator
	thresholds *thresholdState
	tradeCount int64

	now func() time.Time
}

// New builds an analyzer for cfg.Symbol.
func New(cfg Config) *Analyzer {
	if cfg.DepthLevels <= 0 {
		cfg.DepthLevels = DefaultDepthLevels
	}
	if cfg.SampleVolume <= 0 {
		cfg.SampleVolume = 1.0
	}
	return &Analyzer{
		cfg:        cfg,
		window:     newTradeWindow(cfg.WindowCapacity),
		ewma:       newEWMAEstimator(cfg.EWMALambda),
		thresholds: newThresholdState(),
		now:        time.Now,
	}
}

// IngestTrade validates, stores, and classifies one trade print. The returned
// flags reflect exactly the state produced by this trade; a rejected trade
// mutates nothing.
func (a *Analyzer) IngestTrade(price, amount float64, timestampMs int64, side Side) (AnomalyFlags, error) {
	trade, err := NewTrade(price, amount, timestampMs, side)
	if err != nil {
		return AnomalyFlags{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.window.push(trade)
	a.tradeCount++
	a.ewma.update(trade.Price)
	a.thresholds.recompute(a.window)

	return classify(a.window, a.thresholds, a.ewma), nil
}

// IngestOrderBook replaces the book view wholesale. Invalid levels are
// silently dropped; the call never fails.
func (a *Analyzer) IngestOrderBook(bids, asks []OrderBookLevel) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.book.replace(bids, asks)
}

// Snapshot computes every metric against one consistent read of the guarded
// state. Taken and the impact lookback windows are anchored to the analyzer's
// clock, so two calls with no ingestion in between are identical only under
// the same clock reading; with the wall clock, trades can age across a window
// edge between calls.
func (a *Analyzer) Snapshot() MetricsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	return MetricsSnapshot{
		Symbol:         a.cfg.Symbol,
		Taken:          now,
		TradeCount:     a.tradeCount,
		WindowSize:     a.window.len(),
		Liquidity:      computeLiquidity(&a.book, a.cfg.DepthLevels, a.cfg.SampleVolume),
		Risk:           computeRisk(a.window.prices()),
		Impact:         computeImpact(a.window, now.UnixMilli()),
		EWMAVolatility: a.ewma.volatility(),
		Thresholds: ThresholdSnapshot{
			LargeTradeSize: a.thresholds.largeTrade,
			PriceMovement:  a.thresholds.priceMove,
		},
	}
}

// Symbol reports the symbol this analyzer tracks.
func (a *Analyzer) Symbol() string { return a.cfg.Symbol }

// TradeCount reports the total number of accepted trades.
func (a *Analyzer) TradeCount() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tradeCount
}
