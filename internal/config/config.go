// Package config loads the tapewatch YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tapewatch/tapewatch/internal/analytics"
)

// Config is the full application configuration.
type Config struct {
	Analyzer analytics.Config `yaml:"analyzer"`
	Feed     FeedConfig       `yaml:"feed"`
	Monitor  MonitorConfig    `yaml:"monitor"`
	HTTP     HTTPConfig       `yaml:"http"`
	Alerts   AlertsConfig     `yaml:"alerts"`
}

// FeedConfig configures the market-data feed collaborator.
type FeedConfig struct {
	Venue              string `yaml:"venue"`                // only "binance" is implemented
	BookDepth          int    `yaml:"book_depth"`           // partial depth level count (5, 10, or 20)
	ReconnectEverySecs int    `yaml:"reconnect_every_secs"` // minimum seconds between reconnect attempts
	UseTestnet         bool   `yaml:"use_testnet"`
}

// GetReconnectEvery returns the reconnect pacing as a time.Duration.
func (f FeedConfig) GetReconnectEvery() time.Duration {
	return time.Duration(f.ReconnectEverySecs) * time.Second
}

// MonitorConfig tunes the monitor loop.
type MonitorConfig struct {
	SnapshotEvery int  `yaml:"snapshot_every"` // full snapshot every N trades
	LogTrades     bool `yaml:"log_trades"`     // per-trade log line with anomaly flags
}

// HTTPConfig configures the read-only HTTP surface.
type HTTPConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	ReadTimeoutSecs  int    `yaml:"read_timeout_secs"`
	WriteTimeoutSecs int    `yaml:"write_timeout_secs"`
	IdleTimeoutSecs  int    `yaml:"idle_timeout_secs"`
}

// GetReadTimeout returns the read timeout as a time.Duration.
func (h HTTPConfig) GetReadTimeout() time.Duration {
	return time.Duration(h.ReadTimeoutSecs) * time.Second
}

// GetWriteTimeout returns the write timeout as a time.Duration.
func (h HTTPConfig) GetWriteTimeout() time.Duration {
	return time.Duration(h.WriteTimeoutSecs) * time.Second
}

// GetIdleTimeout returns the idle timeout as a time.Duration.
func (h HTTPConfig) GetIdleTimeout() time.Duration {
	return time.Duration(h.IdleTimeoutSecs) * time.Second
}

// AlertsConfig configures anomaly alert publishing. An empty RedisAddr
// disables publishing.
type AlertsConfig struct {
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	Channel   string `yaml:"channel"`
}

// Default returns production defaults; Load applies the file on top of them.
func Default() Config {
	return Config{
		Analyzer: analytics.DefaultConfig(),
		Feed: FeedConfig{
			Venue:              "binance",
			BookDepth:          20,
			ReconnectEverySecs: 5,
		},
		Monitor: MonitorConfig{
			SnapshotEvery: 100,
			LogTrades:     true,
		},
		HTTP: HTTPConfig{
			Enabled:          true,
			Host:             "127.0.0.1",
			Port:             8080,
			ReadTimeoutSecs:  10,
			WriteTimeoutSecs: 10,
			IdleTimeoutSecs:  60,
		},
		Alerts: AlertsConfig{
			Channel: "tapewatch.alerts",
		},
	}
}

// Load reads and validates a YAML config file. A missing path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the engines cannot run with.
func (c Config) Validate() error {
	if c.Analyzer.Symbol == "" {
		return fmt.Errorf("analyzer.symbol must not be empty")
	}
	if c.Analyzer.WindowCapacity < 0 {
		return fmt.Errorf("analyzer.window_capacity must be non-negative, got %d", c.Analyzer.WindowCapacity)
	}
	if l := c.Analyzer.EWMALambda; l != 0 && (l <= 0 || l >= 1) {
		return fmt.Errorf("analyzer.ewma_lambda must be in (0,1), got %f", l)
	}
	switch c.Feed.BookDepth {
	case 0, 5, 10, 20:
	default:
		return fmt.Errorf("feed.book_depth must be 5, 10, or 20, got %d", c.Feed.BookDepth)
	}
	if c.Monitor.SnapshotEvery <= 0 {
		return fmt.Errorf("monitor.snapshot_every must be positive, got %d", c.Monitor.SnapshotEvery)
	}
	if c.HTTP.Enabled && (c.HTTP.Port <= 0 || c.HTTP.Port > 65535) {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	return nil
}
