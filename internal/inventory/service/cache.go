package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportCache stores computed reports until the next inventory change.
// Callers read the version once before computing and pass it to both Get and
// Set, so a report built from data older than an Invalidate is never stored
// under the newer version.
type ReportCache interface {
	Version(ctx context.Context) (int64, error)
	Get(ctx context.Context, version int64, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, version int64, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// RedisReportCache namespaces entries by a version counter; Invalidate bumps
// the counter so stale entries are never read again and expire on their TTL.
type RedisReportCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisReportCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisReportCache {
	if prefix == "" {
		prefix = "inventory:report"
	}
	return &RedisReportCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisReportCache) versionKey() string {
	return c.prefix + ":version"
}

func (c *RedisReportCache) Version(ctx context.Context) (int64, error) {
	version, err := c.rdb.Get(ctx, c.versionKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return version, nil
}

func (c *RedisReportCache) key(version int64, name string) string {
	return fmt.Sprintf("%s:v%d:%s", c.prefix, version, name)
}

func (c *RedisReportCache) Get(ctx context.Context, version int64, name string, dst interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, c.key(version, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached report: %w", err)
	}
	return true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, version int64, name string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(version, name), data, c.ttl).Err()
}

func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.versionKey()).Err()
}

type noopCache struct{}

func (noopCache) Version(context.Context) (int64, error)                       { return 0, nil }
func (noopCache) Get(context.Context, int64, string, interface{}) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, int64, string, interface{}) error         { return nil }
func (noopCache) Invalidate(context.Context) error                              { return nil }
