package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidTrade rejects trades with non-positive price or amount.
var ErrInvalidTrade = errors.New("invalid trade: price and amount must be positive")

// Side identifies the aggressor side of a trade.
type Side string

const (
	SideBuy     Side = "buy"
	SideSell    Side = "sell"
	SideUnknown Side = "unknown"
)

// signMultiplier maps a side to the sign used for signed-volume calculations.
func (s Side) signMultiplier() float64 {
	switch s {
	case SideBuy:
		return 1.0
	case SideSell:
		return -1.0
	default:
		return 0.0
	}
}

// Trade is a single executed trade print. Cost is the notional value
// (price × amount) derived at construction.
type Trade struct {
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds
	Side      Side    `json:"side"`
	Cost      float64 `json:"cost"`
}

// NewTrade validates and builds a trade print.
func NewTrade(price, amount float64, timestampMs int64, side Side) (Trade, error) {
	if price <= 0 || amount <= 0 {
		return Trade{}, fmt.Errorf("%w (price=%.8f amount=%.8f)", ErrInvalidTrade, price, amount)
	}
	switch side {
	case SideBuy, SideSell:
	default:
		side = SideUnknown
	}
	return Trade{
		Price:     price,
		Amount:    amount,
		Timestamp: timestampMs,
		Side:      side,
		Cost:      price * amount,
	}, nil
}

// OrderBookLevel is one price tier of resting orders.
type OrderBookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}
