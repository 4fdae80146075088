// Package feed delivers parsed market-data events to the analytics engine.
// Exchange wire protocols are the venue SDK's problem, not ours.
package feed

import (
	"context"

	"github.com/tapewatch/tapewatch/internal/analytics"
)

// TradeEvent is one parsed trade print from a venue.
type TradeEvent struct {
	Price       float64
	Amount      float64
	TimestampMs int64
	Side        analytics.Side
}

// BookEvent is one full order-book ladder from a venue. Ladders replace the
// previous view wholesale downstream.
type BookEvent struct {
	Bids []analytics.OrderBookLevel
	Asks []analytics.OrderBookLevel
}

// Handler consumes feed events. Implementations must be safe for calls from
// the feed's internal goroutines.
type Handler interface {
	OnTrade(TradeEvent)
	OnBook(BookEvent)
}

// Feed streams market data until the context is cancelled.
type Feed interface {
	Run(ctx context.Context, h Handler) error
}
