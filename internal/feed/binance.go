package feed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/tapewatch/tapewatch/internal/analytics"
)

// BinanceFeed streams aggregated trades and partial book depth for one
// symbol over the Binance websocket SDK. Reconnects are paced by a rate
// limiter and guarded by a circuit breaker so a flapping venue cannot turn
// into a hot reconnect loop.
type BinanceFeed struct {
	symbol    string
	bookDepth int
	breaker   *gobreaker.CircuitBreaker
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewBinanceFeed builds a feed for symbol. bookDepth must be 5, 10, or 20
// (the partial-depth stream sizes Binance offers).
func NewBinanceFeed(symbol string, bookDepth int, reconnectEvery time.Duration, log zerolog.Logger) *BinanceFeed {
	if bookDepth != 5 && bookDepth != 10 && bookDepth != 20 {
		bookDepth = 20
	}
	if reconnectEvery <= 0 {
		reconnectEvery = 5 * time.Second
	}
	return &BinanceFeed{
		symbol:    symbol,
		bookDepth: bookDepth,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "binance-feed",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		limiter: rate.NewLimiter(rate.Every(reconnectEvery), 1),
		log:     log.With().Str("component", "binance_feed").Str("symbol", symbol).Logger(),
	}
}

// Run streams until ctx is cancelled, reconnecting on stream failures.
func (f *BinanceFeed) Run(ctx context.Context, h Handler) error {
	for {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}

		_, err := f.breaker.Execute(func() (interface{}, error) {
			return nil, f.streamOnce(ctx, h)
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			f.log.Warn().Err(err).Msg("stream ended, reconnecting")
		}
	}
}

// streamOnce holds both websocket streams open until one fails or ctx ends.
func (f *BinanceFeed) streamOnce(ctx context.Context, h Handler) error {
	errCh := make(chan error, 2)
	wsErr := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	tradeDone, tradeStop, err := binance.WsAggTradeServe(f.symbol, func(e *binance.WsAggTradeEvent) {
		f.handleTrade(e, h)
	}, wsErr)
	if err != nil {
		return fmt.Errorf("trade stream connect failed: %w", err)
	}

	depthDone, depthStop, err := binance.WsPartialDepthServe(f.symbol, strconv.Itoa(f.bookDepth), func(e *binance.WsPartialDepthEvent) {
		f.handleDepth(e, h)
	}, wsErr)
	if err != nil {
		close(tradeStop)
		return fmt.Errorf("depth stream connect failed: %w", err)
	}

	f.log.Info().Int("book_depth", f.bookDepth).Msg("streams connected")

	stopBoth := func() {
		close(tradeStop)
		close(depthStop)
	}

	select {
	case <-ctx.Done():
		stopBoth()
		return ctx.Err()
	case err := <-errCh:
		stopBoth()
		return fmt.Errorf("stream error: %w", err)
	case <-tradeDone:
		close(depthStop)
		return fmt.Errorf("trade stream closed")
	case <-depthDone:
		close(tradeStop)
		return fmt.Errorf("depth stream closed")
	}
}

func (f *BinanceFeed) handleTrade(e *binance.WsAggTradeEvent, h Handler) {
	price, err := strconv.ParseFloat(e.Price, 64)
	if err != nil {
		f.log.Debug().Str("price", e.Price).Msg("unparseable trade price, print dropped")
		return
	}
	amount, err := strconv.ParseFloat(e.Quantity, 64)
	if err != nil {
		f.log.Debug().Str("quantity", e.Quantity).Msg("unparseable trade quantity, print dropped")
		return
	}
	h.OnTrade(TradeEvent{
		Price:       price,
		Amount:      amount,
		TimestampMs: e.TradeTime,
		Side:        sideFromBuyerMaker(e.IsBuyerMaker),
	})
}

func (f *BinanceFeed) handleDepth(e *binance.WsPartialDepthEvent, h Handler) {
	bids := make([]analytics.OrderBookLevel, 0, len(e.Bids))
	for _, lvl := range e.Bids {
		if parsed, ok := parseLevel(lvl.Price, lvl.Quantity); ok {
			bids = append(bids, parsed)
		}
	}
	asks := make([]analytics.OrderBookLevel, 0, len(e.Asks))
	for _, lvl := range e.Asks {
		if parsed, ok := parseLevel(lvl.Price, lvl.Quantity); ok {
			asks = append(asks, parsed)
		}
	}
	h.OnBook(BookEvent{Bids: bids, Asks: asks})
}

// sideFromBuyerMaker maps the maker flag to the aggressor side: when the
// buyer was the maker, a seller crossed the spread.
func sideFromBuyerMaker(isBuyerMaker bool) analytics.Side {
	if isBuyerMaker {
		return analytics.SideSell
	}
	return analytics.SideBuy
}

// parseLevel converts one price/quantity string pair; unparseable levels are
// dropped (the engine drops non-positive ones itself).
func parseLevel(priceStr, qtyStr string) (analytics.OrderBookLevel, bool) {
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return analytics.OrderBookLevel{}, false
	}
	size, err := strconv.ParseFloat(qtyStr, 64)
	if err != nil {
		return analytics.OrderBookLevel{}, false
	}
	return analytics.OrderBookLevel{Price: price, Size: size}, true
}
