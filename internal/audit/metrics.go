// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package audit

import (
	"context"

	"github.com/gatewarden/gatewarden/internal/observability"
)

// MetricsLogger counts audit events as Prometheus metrics.
type MetricsLogger struct {
	metrics *observability.Metrics
}

// NewMetricsLogger creates an audit logger that records counters only.
func NewMetricsLogger(metrics *observability.Metrics) *MetricsLogger {
	return &MetricsLogger{metrics: metrics}
}

func (l *MetricsLogger) LogLogin(_ context.Context, _, _, method string) {
	l.metrics.AuthenticationsTotal.WithLabelValues(method).Inc()
}

func (l *MetricsLogger) LogRegister(_ context.Context, _, _ string) {
	l.metrics.RegistrationsTotal.Inc()
}

func (l *MetricsLogger) LogInvalid(_ context.Context, _, _ string) {
	l.metrics.LoginFailuresTotal.Inc()
}

func (l *MetricsLogger) LogFactorMismatch(_ context.Context, _, _, factor string) {
	l.metrics.DisconnectsTotal.WithLabelValues("factor_mismatch_" + factor).Inc()
}

// Tee fans audit entries out to several loggers.
type Tee []Logger

func (t Tee) LogLogin(ctx context.Context, name, origin, method string) {
	for _, l := range t {
		l.LogLogin(ctx, name, origin, method)
	}
}

func (t Tee) LogRegister(ctx context.Context, name, origin string) {
	for _, l := range t {
		l.LogRegister(ctx, name, origin)
	}
}

func (t Tee) LogInvalid(ctx context.Context, name, origin string) {
	for _, l := range t {
		l.LogInvalid(ctx, name, origin)
	}
}

func (t Tee) LogFactorMismatch(ctx context.Context, name, origin, factor string) {
	for _, l := range t {
		l.LogFactorMismatch(ctx, name, origin, factor)
	}
}
