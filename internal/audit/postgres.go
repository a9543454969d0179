// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"

	"github.com/gatewarden/gatewarden/pkg/errutil"
)

// execer abstracts statement execution so the writer works with
// *pgxpool.Pool, pgx.Tx, and pgxmock pools alike.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Audit entry actions.
const (
	actionLogin          = "login"
	actionRegister       = "register"
	actionInvalid        = "invalid"
	actionFactorMismatch = "factor_mismatch"
)

// PostgresLogger appends audit entries to the audit_log table. Write
// failures are logged, not returned; the audit trail must never block
// an authentication transition.
type PostgresLogger struct {
	pool   execer
	logger *slog.Logger
}

// NewPostgresLogger creates a PostgreSQL-backed audit logger.
// A nil logger discards write-failure diagnostics.
func NewPostgresLogger(pool execer, logger *slog.Logger) *PostgresLogger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PostgresLogger{pool: pool, logger: logger}
}

func (l *PostgresLogger) append(ctx context.Context, name, origin, action, detail string) {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO audit_log (id, account, origin, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		ulid.Make().String(),
		name,
		origin,
		action,
		detail,
		time.Now().UTC(),
	)
	if err != nil {
		errutil.LogError(l.logger, "audit entry write failed", err)
	}
}

// LogLogin records a successful login.
func (l *PostgresLogger) LogLogin(ctx context.Context, name, origin, method string) {
	l.append(ctx, name, origin, actionLogin, method)
}

// LogRegister records a completed registration.
func (l *PostgresLogger) LogRegister(ctx context.Context, name, origin string) {
	l.append(ctx, name, origin, actionRegister, "")
}

// LogInvalid records a failed password attempt.
func (l *PostgresLogger) LogInvalid(ctx context.Context, name, origin string) {
	l.append(ctx, name, origin, actionInvalid, "")
}

// LogFactorMismatch records a multi-factor re-check failure.
func (l *PostgresLogger) LogFactorMismatch(ctx context.Context, name, origin, factor string) {
	l.append(ctx, name, origin, actionFactorMismatch, factor)
}

var _ Logger = (*PostgresLogger)(nil)
