package app

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapewatch/tapewatch/internal/alert"
	"github.com/tapewatch/tapewatch/internal/analytics"
	"github.com/tapewatch/tapewatch/internal/config"
	"github.com/tapewatch/tapewatch/internal/feed"
	"github.com/tapewatch/tapewatch/internal/metrics"
)

// scriptedFeed replays a fixed sequence of events synchronously.
type scriptedFeed struct {
	trades []feed.TradeEvent
	books  []feed.BookEvent
}

func (f *scriptedFeed) Run(ctx context.Context, h feed.Handler) error {
	for _, b := range f.books {
		h.OnBook(b)
	}
	for _, t := range f.trades {
		h.OnTrade(t)
	}
	return ctx.Err()
}

// capturePublisher records every alert it receives.
type capturePublisher struct {
	alerts []alert.Alert
}

func (p *capturePublisher) Publish(_ context.Context, a alert.Alert) error {
	p.alerts = append(p.alerts, a)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func newTestMonitor(t *testing.T, snapshotEvery int) (*Monitor, *capturePublisher, *metrics.Registry) {
	t.Helper()
	cfg := analytics.DefaultConfig()
	cfg.WindowCapacity = 100
	reg := metrics.NewRegistry()
	pub := &capturePublisher{}
	m := NewMonitor(
		config.MonitorConfig{SnapshotEvery: snapshotEvery},
		analytics.New(cfg),
		pub,
		reg,
		zerolog.Nop(),
	)
	return m, pub, reg
}

func TestMonitor_CountsIngestedAndRejected(t *testing.T) {
	m, _, reg := newTestMonitor(t, 100)
	f := &scriptedFeed{
		trades: []feed.TradeEvent{
			{Price: 100, Amount: 1, TimestampMs: 1, Side: analytics.SideBuy},
			{Price: -5, Amount: 1, TimestampMs: 2, Side: analytics.SideBuy},
			{Price: 101, Amount: 1, TimestampMs: 3, Side: analytics.SideSell},
		},
		books: []feed.BookEvent{
			{Bids: []analytics.OrderBookLevel{{Price: 99, Size: 1}}},
		},
	}

	require.NoError(t, m.Run(context.Background(), f))

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.TradesIngested))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.TradesRejected))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.BookUpdates))
	assert.Equal(t, int64(2), m.Analyzer().TradeCount())
}

func TestMonitor_PublishesAlertOnAnomaly(t *testing.T) {
	m, pub, _ := newTestMonitor(t, 1000)

	// Stable tape, then one print far outside the adaptive bands.
	var trades []feed.TradeEvent
	for i := 0; i < 20; i++ {
		trades = append(trades, feed.TradeEvent{
			Price: 100, Amount: 1, TimestampMs: int64(i + 1), Side: analytics.SideBuy,
		})
	}
	trades = append(trades, feed.TradeEvent{
		Price: 100, Amount: 500, TimestampMs: 21, Side: analytics.SideSell,
	})

	require.NoError(t, m.Run(context.Background(), &scriptedFeed{trades: trades}))

	require.Len(t, pub.alerts, 1)
	a := pub.alerts[0]
	assert.Equal(t, "BTCUSDT", a.Symbol)
	assert.Equal(t, 500.0, a.Amount)
	assert.True(t, a.Flags.Size)
	assert.NotEmpty(t, a.ID)
}

func TestMonitor_SnapshotCadence(t *testing.T) {
	m, _, reg := newTestMonitor(t, 5)

	var trades []feed.TradeEvent
	for i := 0; i < 12; i++ {
		trades = append(trades, feed.TradeEvent{
			Price: 100, Amount: 1, TimestampMs: int64(i + 1), Side: analytics.SideBuy,
		})
	}

	require.NoError(t, m.Run(context.Background(), &scriptedFeed{trades: trades}))

	// 12 accepted trades at a cadence of 5 means snapshots at 5 and 10.
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.SnapshotsTaken))
	// The gauge holds the occupancy seen by the last snapshot.
	assert.Equal(t, 10.0, testutil.ToFloat64(reg.WindowSize))
}

func TestMonitor_NilPublisherDefaultsToNop(t *testing.T) {
	m := NewMonitor(config.MonitorConfig{SnapshotEvery: 10}, analytics.New(analytics.DefaultConfig()), nil, metrics.NewRegistry(), zerolog.Nop())
	assert.NotNil(t, m.publisher)
}
