// Package app wires the market-data feed to the analytics engine and fans
// results out to the alerting and reporting consumers.
package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tapewatch/tapewatch/internal/alert"
	"github.com/tapewatch/tapewatch/internal/analytics"
	"github.com/tapewatch/tapewatch/internal/config"
	"github.com/tapewatch/tapewatch/internal/feed"
	"github.com/tapewatch/tapewatch/internal/metrics"
	"github.com/tapewatch/tapewatch/internal/report"
)

// Monitor consumes feed events, classifies every trade the moment it is
// ingested, and emits a full metrics snapshot every N trades.
type Monitor struct {
	cfg       config.MonitorConfig
	analyzer  *analytics.Analyzer
	publisher alert.Publisher
	metrics   *metrics.Registry
	log       zerolog.Logger

	ctx    context.Context
	trades atomic.Int64
}

// NewMonitor assembles the monitor around an analyzer instance.
func NewMonitor(cfg config.MonitorConfig, analyzer *analytics.Analyzer, publisher alert.Publisher, reg *metrics.Registry, log zerolog.Logger) *Monitor {
	if publisher == nil {
		publisher = alert.NopPublisher{}
	}
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = 100
	}
	return &Monitor{
		cfg:       cfg,
		analyzer:  analyzer,
		publisher: publisher,
		metrics:   reg,
		log:       log.With().Str("component", "monitor").Logger(),
		ctx:       context.Background(),
	}
}

// Analyzer exposes the engine for on-demand consumers (the HTTP surface).
func (m *Monitor) Analyzer() *analytics.Analyzer { return m.analyzer }

// Run streams from f until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, f feed.Feed) error {
	m.ctx = ctx
	m.log.Info().Int("snapshot_every", m.cfg.SnapshotEvery).Msg("monitor starting")
	return f.Run(ctx, m)
}

// OnTrade ingests and classifies one print. Classification sees exactly the
// state this trade produced; the engine guarantees that atomically.
func (m *Monitor) OnTrade(e feed.TradeEvent) {
	start := time.Now()
	flags, err := m.analyzer.IngestTrade(e.Price, e.Amount, e.TimestampMs, e.Side)
	if err != nil {
		m.metrics.TradesRejected.Inc()
		m.log.Warn().Err(err).Float64("price", e.Price).Float64("amount", e.Amount).Msg("trade rejected")
		return
	}
	m.metrics.TradesIngested.Inc()
	m.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	m.metrics.RecordAnomalies(flags.Price, flags.Size, flags.Volatility)

	count := m.trades.Add(1)
	if m.cfg.LogTrades {
		m.log.Info().
			Int64("trade", count).
			Float64("price", e.Price).
			Float64("size", e.Amount).
			Str("side", string(e.Side)).
			Bool("price_anomaly", flags.Price).
			Bool("size_anomaly", flags.Size).
			Bool("volatility_anomaly", flags.Volatility).
			Msg("trade")
	}

	if flags.Any() {
		m.publishAlert(e, flags)
	}
	if count%int64(m.cfg.SnapshotEvery) == 0 {
		m.emitSnapshot()
	}
}

// OnBook replaces the book view; book ingestion never fails.
func (m *Monitor) OnBook(e feed.BookEvent) {
	m.analyzer.IngestOrderBook(e.Bids, e.Asks)
	m.metrics.BookUpdates.Inc()
}

func (m *Monitor) publishAlert(e feed.TradeEvent, flags analytics.AnomalyFlags) {
	trade, err := analytics.NewTrade(e.Price, e.Amount, e.TimestampMs, e.Side)
	if err != nil {
		return
	}
	a := alert.NewAlert(m.analyzer.Symbol(), trade, flags)
	if err := m.publisher.Publish(m.ctx, a); err != nil {
		m.log.Error().Err(err).Str("alert_id", a.ID).Msg("alert publish failed")
	}
}

func (m *Monitor) emitSnapshot() {
	s := m.analyzer.Snapshot()
	m.metrics.SnapshotsTaken.Inc()
	m.metrics.EWMAVolatility.Set(s.EWMAVolatility)
	m.metrics.WindowSize.Set(float64(s.WindowSize))
	report.Log(m.log, s)
}
