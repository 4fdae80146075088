// Package report renders metric snapshots for the console consumer.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tapewatch/tapewatch/internal/analytics"
)

// JSON renders a snapshot as indented JSON. Absent metrics are omitted from
// the document rather than serialized as zeros.
func JSON(s analytics.MetricsSnapshot) (string, error) {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return string(raw), nil
}

// Log emits one structured statistics event for a snapshot.
func Log(log zerolog.Logger, s analytics.MetricsSnapshot) {
	ev := log.Info().
		Str("symbol", s.Symbol).
		Int64("trade_count", s.TradeCount).
		Int("window_size", s.WindowSize).
		Float64("spread", s.Liquidity.Spread).
		Float64("relative_spread_pct", s.Liquidity.RelativeSpread*100).
		Float64("bid_depth", s.Liquidity.BidDepth).
		Float64("ask_depth", s.Liquidity.AskDepth).
		Float64("realized_vol_pct", s.Risk.RealizedVolatility).
		Float64("var_95_pct", s.Risk.VaR95).
		Float64("expected_shortfall_95_pct", s.Risk.ExpectedShortfall95).
		Float64("ewma_vol_pct", s.EWMAVolatility*100).
		Float64("kyle_lambda_hourly", s.Impact.KylesLambda.Hourly).
		Float64("amihud_30d", s.Impact.Amihud.ThirtyDays).
		Float64("large_trade_threshold", s.Thresholds.LargeTradeSize).
		Float64("price_move_threshold", s.Thresholds.PriceMovement)

	addOptional(ev, "order_book_imbalance", s.Liquidity.Imbalance)
	addOptional(ev, "bid_vwap", s.Liquidity.BidVWAP)
	addOptional(ev, "ask_vwap", s.Liquidity.AskVWAP)
	addOptional(ev, "historical_vol_pct", s.Risk.HistoricalVolatility)

	ev.Msg("liquidity analysis")
}

// addOptional attaches a metric only when it was computable.
func addOptional(ev *zerolog.Event, key string, v *float64) {
	if v != nil {
		ev.Float64(key, *v)
	}
}
