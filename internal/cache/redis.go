package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BaldrVivaldelli/thoth-trading/internal/book"
	"github.com/BaldrVivaldelli/thoth-trading/internal/config"
	"github.com/BaldrVivaldelli/thoth-trading/internal/metrics"
	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

// RedisCache caches the hot read paths of the engine in Redis.
//
// CACHING STRATEGY:
//   - Ticker (best bid/ask): 100ms TTL for fast price lookups
//   - Book snapshot: 500ms TTL
//   - Recent trades: capped list per symbol, 5s TTL
//
// Writers never wait on the cache; it only shortens the read path for
// market-data queries.
type RedisCache struct {
	client  *redis.Client
	metrics *metrics.Metrics
}

// Ticker is the cached top-of-book view for one symbol.
type Ticker struct {
	Symbol       string    `json:"symbol"`
	BestBid      float64   `json:"best_bid"`
	BestAsk      float64   `json:"best_ask"`
	LastPrice    float64   `json:"last_price"`
	LastQuantity int64     `json:"last_quantity"`
	Timestamp    time.Time `json:"timestamp"`
}

const (
	tickerTTL   = 100 * time.Millisecond
	snapshotTTL = 500 * time.Millisecond
	tradesTTL   = 5 * time.Second
	tradesCap   = 100
)

// NewRedisCache initializes a Redis connection. m may be nil.
func NewRedisCache(cfg *config.Config, m *metrics.Metrics) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client, metrics: m}, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// SetTicker caches the ticker for its symbol.
func (c *RedisCache) SetTicker(ctx context.Context, t *Ticker) error {
	body, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "ticker:"+t.Symbol, body, tickerTTL).Err()
}

// GetTicker returns the cached ticker, or nil on a miss.
func (c *RedisCache) GetTicker(ctx context.Context, symbol string) (*Ticker, error) {
	body, err := c.client.Get(ctx, "ticker:"+symbol).Bytes()
	if err == redis.Nil {
		c.miss()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var t Ticker
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, err
	}
	c.hit()
	return &t, nil
}

// SetSnapshot caches a book snapshot for its symbol.
func (c *RedisCache) SetSnapshot(ctx context.Context, snap *book.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "book:"+snap.Symbol, body, snapshotTTL).Err()
}

// GetSnapshot returns the cached snapshot, or nil on a miss.
func (c *RedisCache) GetSnapshot(ctx context.Context, symbol string) (*book.Snapshot, error) {
	body, err := c.client.Get(ctx, "book:"+symbol).Bytes()
	if err == redis.Nil {
		c.miss()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap book.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, err
	}
	c.hit()
	return &snap, nil
}

// PushTrade prepends a trade to the symbol's recent-trades feed.
func (c *RedisCache) PushTrade(ctx context.Context, t *models.Trade) error {
	body, err := json.Marshal(t)
	if err != nil {
		return err
	}
	key := "trades:" + t.Symbol
	pipe := c.client.Pipeline()
	pipe.LPush(ctx, key, body)
	pipe.LTrim(ctx, key, 0, tradesCap-1)
	pipe.Expire(ctx, key, tradesTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// RecentTrades returns up to limit recent trades for symbol, newest
// first.
func (c *RedisCache) RecentTrades(ctx context.Context, symbol string, limit int64) ([]*models.Trade, error) {
	items, err := c.client.LRange(ctx, "trades:"+symbol, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	trades := make([]*models.Trade, 0, len(items))
	for _, item := range items {
		var t models.Trade
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			continue
		}
		trades = append(trades, &t)
	}
	return trades, nil
}

func (c *RedisCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *RedisCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}
