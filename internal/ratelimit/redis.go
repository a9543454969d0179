// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// Key prefix for all rate-limit data.
const keyPrefix = "gatewarden:reg"

// RedisLimiter implements Limiter with a sorted set per origin. Members
// are subject IDs scored by record time, so the same subject retrying
// within the window counts once.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter creates a limiter backed by the given Redis client.
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// originKey returns the Redis key holding one origin's records.
func originKey(origin string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, origin)
}

// RecordAndCheck records subject for origin and reports whether the
// origin is within quota for the rolling window.
func (l *RedisLimiter) RecordAndCheck(ctx context.Context, origin string, quota int, window time.Duration, subject string) (bool, error) {
	key := originKey(origin)
	now := time.Now()
	cutoff := now.Add(-window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff.UnixMilli(), 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: subject})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, oops.Code("RATELIMIT_RECORD_FAILED").
			With("origin", origin).
			Wrap(err)
	}

	return card.Val() <= int64(quota), nil
}

var _ Limiter = (*RedisLimiter)(nil)
