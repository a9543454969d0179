// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package ratelimit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/ratelimit"
)

func newTestLimiter(t *testing.T) (*ratelimit.RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ratelimit.NewRedisLimiter(client), mr
}

func TestRedisLimiter_WithinQuota(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(t)

	for i := range 3 {
		allowed, err := limiter.RecordAndCheck(ctx, "203.0.113.7", 3, 30*24*time.Hour, fmt.Sprintf("subject-%d", i))
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be within quota", i+1)
	}
}

func TestRedisLimiter_QuotaExceeded(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(t)

	for i := range 3 {
		_, err := limiter.RecordAndCheck(ctx, "203.0.113.7", 3, time.Hour, fmt.Sprintf("subject-%d", i))
		require.NoError(t, err)
	}

	allowed, err := limiter.RecordAndCheck(ctx, "203.0.113.7", 3, time.Hour, "subject-3")
	require.NoError(t, err)
	assert.False(t, allowed, "fourth distinct subject must exceed the quota")
}

func TestRedisLimiter_SameSubjectCountsOnce(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(t)

	for range 5 {
		allowed, err := limiter.RecordAndCheck(ctx, "203.0.113.7", 3, time.Hour, "same-subject")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestRedisLimiter_OriginsAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(t)

	for i := range 3 {
		_, err := limiter.RecordAndCheck(ctx, "203.0.113.7", 3, time.Hour, fmt.Sprintf("subject-%d", i))
		require.NoError(t, err)
	}

	allowed, err := limiter.RecordAndCheck(ctx, "198.51.100.9", 3, time.Hour, "other-subject")
	require.NoError(t, err)
	assert.True(t, allowed, "a different origin has its own quota")
}

func TestRedisLimiter_ConnectionError(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	mr.Close()

	_, err := limiter.RecordAndCheck(context.Background(), "203.0.113.7", 3, time.Hour, "subject")
	require.Error(t, err)
}
