// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_QuotaBoundary(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter()

	for i := range 3 {
		allowed, err := limiter.RecordAndCheck(ctx, "origin", 3, time.Hour, fmt.Sprintf("s-%d", i))
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.RecordAndCheck(ctx, "origin", 3, time.Hour, "s-3")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestMemoryLimiter_WindowExpiry(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter()

	current := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	for i := range 3 {
		_, err := limiter.RecordAndCheck(ctx, "origin", 3, time.Hour, fmt.Sprintf("s-%d", i))
		require.NoError(t, err)
	}

	// Past the window, old records no longer count.
	current = current.Add(2 * time.Hour)
	allowed, err := limiter.RecordAndCheck(ctx, "origin", 3, time.Hour, "s-3")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiter_SameSubjectCountsOnce(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter()

	for range 5 {
		allowed, err := limiter.RecordAndCheck(ctx, "origin", 1, time.Hour, "same")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}
