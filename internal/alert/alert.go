// Package alert publishes anomaly alerts to downstream consumers.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tapewatch/tapewatch/internal/analytics"
)

// Alert describes one anomalous trade print.
type Alert struct {
	ID        string                 `json:"id"`
	Symbol    string                 `json:"symbol"`
	Price     float64                `json:"price"`
	Amount    float64                `json:"amount"`
	Side      analytics.Side         `json:"side"`
	Flags     analytics.AnomalyFlags `json:"flags"`
	Timestamp int64                  `json:"timestamp"` // trade time, epoch ms
	Emitted   time.Time              `json:"emitted"`
}

// NewAlert builds an alert for a flagged trade.
func NewAlert(symbol string, t analytics.Trade, flags analytics.AnomalyFlags) Alert {
	return Alert{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Price:     t.Price,
		Amount:    t.Amount,
		Side:      t.Side,
		Flags:     flags,
		Timestamp: t.Timestamp,
		Emitted:   time.Now().UTC(),
	}
}

// Publisher delivers alerts to an external consumer.
type Publisher interface {
	Publish(ctx context.Context, a Alert) error
	Close() error
}

// NopPublisher discards alerts; used when no alert sink is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Alert) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// RedisPublisher fans alerts out over a Redis pub/sub channel. Pub/sub only;
// nothing is persisted.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(ctx context.Context, addr string, db int, channel string, log zerolog.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	log.Info().Str("addr", addr).Str("channel", channel).Msg("alert publisher connected")
	return &RedisPublisher{client: client, channel: channel, log: log}, nil
}

// Publish sends one alert as JSON.
func (p *RedisPublisher) Publish(ctx context.Context, a Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	p.log.Debug().Str("alert_id", a.ID).Str("symbol", a.Symbol).Msg("alert published")
	return nil
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
