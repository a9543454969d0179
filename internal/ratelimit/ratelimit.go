// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package ratelimit tracks new-account creation per network origin over
// a rolling window.
package ratelimit

import (
	"context"
	"time"
)

// Limiter records an account-creation attempt for an origin and reports
// whether the origin is still within its quota for the window. The
// recording always happens; denial handling is the caller's policy.
// Implementations must be safe for concurrent use.
type Limiter interface {
	RecordAndCheck(ctx context.Context, origin string, quota int, window time.Duration, subject string) (bool, error)
}
