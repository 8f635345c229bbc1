// Package ledger remembers which alerts were already delivered so repeated
// job runs do not notify twice.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Ledger records deliveries per subscription, date and channel
type Ledger interface {
	// Delivered reports whether the notification was already sent
	Delivered(ctx context.Context, subscriptionID, date, channel string) (bool, error)
	// Record marks the notification as sent
	Record(ctx context.Context, subscriptionID, date, channel string) error
}

// Noop never remembers anything
type Noop struct{}

func (Noop) Delivered(context.Context, string, string, string) (bool, error) { return false, nil }
func (Noop) Record(context.Context, string, string, string) error { return nil }

// RedisLedger stores deliveries as expiring keys
type RedisLedger struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Options configure the Redis ledger
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// NewRedisLedger connects to Redis and verifies the connection
func NewRedisLedger(ctx context.Context, opts Options) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return newRedisLedger(client, opts), nil
}

func newRedisLedger(client *redis.Client, opts Options) *RedisLedger {
	if opts.TTL <= 0 {
		opts.TTL = 48 * time.Hour
	}
	if opts.Prefix == "" {
		opts.Prefix = "sellwatch:delivered:"
	}
	return &RedisLedger{client: client, prefix: opts.Prefix, ttl: opts.TTL}
}

func (l *RedisLedger) key(subscriptionID, date, channel string) string {
	return fmt.Sprintf("%s%s:%s:%s", l.prefix, date, subscriptionID, channel)
}

// Delivered implements Ledger
func (l *RedisLedger) Delivered(ctx context.Context, subscriptionID, date, channel string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(subscriptionID, date, channel)).Result()
	if err != nil {
		return false, fmt.Errorf("ledger lookup failed: %w", err)
	}
	return n > 0, nil
}

// Record implements Ledger
func (l *RedisLedger) Record(ctx context.Context, subscriptionID, date, channel string) error {
	if err := l.client.SetNX(ctx, l.key(subscriptionID, date, channel), time.Now().UTC().Format(time.RFC3339), l.ttl).Err(); err != nil {
		return fmt.Errorf("ledger write failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (l *RedisLedger) Close() error {
	return l.client.Close()
}
