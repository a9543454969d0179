// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package audit records authentication outcomes for after-the-fact
// review. Implementations must be safe for concurrent use.
package audit

import (
	"context"
	"log/slog"
)

// Logger records authentication audit entries. Audit writes are best
// effort; implementations log their own failures instead of returning
// errors, so guard transitions never stall on the audit trail.
type Logger interface {
	// LogLogin records a successful login and the method that satisfied it.
	LogLogin(ctx context.Context, name, origin, method string)

	// LogRegister records a completed registration.
	LogRegister(ctx context.Context, name, origin string)

	// LogInvalid records a failed password attempt.
	LogInvalid(ctx context.Context, name, origin string)

	// LogFactorMismatch records a multi-factor re-check failure.
	LogFactorMismatch(ctx context.Context, name, origin, factor string)
}

// SlogLogger writes audit entries as structured log records.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates an audit logger backed by the given slog logger.
// A nil logger discards all entries.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SlogLogger{logger: logger}
}

// LogLogin records a successful login.
func (l *SlogLogger) LogLogin(ctx context.Context, name, origin, method string) {
	l.logger.InfoContext(ctx, "login",
		"event", "audit_login",
		"account", name,
		"origin", origin,
		"method", method,
	)
}

// LogRegister records a completed registration.
func (l *SlogLogger) LogRegister(ctx context.Context, name, origin string) {
	l.logger.InfoContext(ctx, "registration completed",
		"event", "audit_register",
		"account", name,
		"origin", origin,
	)
}

// LogInvalid records a failed password attempt.
func (l *SlogLogger) LogInvalid(ctx context.Context, name, origin string) {
	l.logger.WarnContext(ctx, "invalid login attempt",
		"event", "audit_invalid",
		"account", name,
		"origin", origin,
	)
}

// LogFactorMismatch records a multi-factor re-check failure.
func (l *SlogLogger) LogFactorMismatch(ctx context.Context, name, origin, factor string) {
	l.logger.WarnContext(ctx, "authentication factor mismatch",
		"event", "audit_factor_mismatch",
		"account", name,
		"origin", origin,
		"factor", factor,
	)
}

var _ Logger = (*SlogLogger)(nil)
