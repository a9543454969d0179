// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package ratelimit

import (
	"context"
	"sync"
	"time"
)

type record struct {
	subject string
	at      time.Time
}

// MemoryLimiter implements Limiter with in-process state. Suitable for
// tests and single-node deployments without Redis.
type MemoryLimiter struct {
	mu      sync.Mutex
	origins map[string][]record
	now     func() time.Time
}

// NewMemoryLimiter creates an empty in-memory limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		origins: make(map[string][]record),
		now:     time.Now,
	}
}

// RecordAndCheck records subject for origin and reports whether the
// origin is within quota for the rolling window.
func (l *MemoryLimiter) RecordAndCheck(_ context.Context, origin string, quota int, window time.Duration, subject string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	kept := l.origins[origin][:0]
	seen := false
	for _, r := range l.origins[origin] {
		if r.at.Before(cutoff) {
			continue
		}
		if r.subject == subject {
			r.at = now
			seen = true
		}
		kept = append(kept, r)
	}
	if !seen {
		kept = append(kept, record{subject: subject, at: now})
	}
	l.origins[origin] = kept

	return len(kept) <= quota, nil
}

var _ Limiter = (*MemoryLimiter)(nil)
