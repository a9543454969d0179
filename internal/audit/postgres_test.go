// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresLogger_LogLogin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(
			pgxmock.AnyArg(), "steve", "203.0.113.7", actionLogin, "secret", pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	logger := NewPostgresLogger(mock, nil)
	logger.LogLogin(context.Background(), "steve", "203.0.113.7", "secret")

	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestPostgresLogger_LogFactorMismatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(
			pgxmock.AnyArg(), "steve", "203.0.113.7", actionFactorMismatch, "skin", pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	logger := NewPostgresLogger(mock, nil)
	logger.LogFactorMismatch(context.Background(), "steve", "203.0.113.7", "skin")

	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestPostgresLogger_WriteFailureIsLoggedNotReturned(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(errors.New("connection refused"))

	var buf bytes.Buffer
	logger := NewPostgresLogger(mock, slog.New(slog.NewJSONHandler(&buf, nil)))
	logger.LogInvalid(context.Background(), "steve", "203.0.113.7")

	assert.Contains(t, buf.String(), "audit entry write failed")
	assert.Contains(t, buf.String(), "connection refused")
}
