// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/audit"
)

func logEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestSlogLogger(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger := audit.NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	logger.LogLogin(ctx, "steve", "203.0.113.7", "password")
	logger.LogRegister(ctx, "steve", "203.0.113.7")
	logger.LogInvalid(ctx, "steve", "203.0.113.7")
	logger.LogFactorMismatch(ctx, "steve", "203.0.113.7", "ip")

	entries := logEntries(t, &buf)
	require.Len(t, entries, 4)

	assert.Equal(t, "audit_login", entries[0]["event"])
	assert.Equal(t, "password", entries[0]["method"])
	assert.Equal(t, "audit_register", entries[1]["event"])
	assert.Equal(t, "audit_invalid", entries[2]["event"])
	assert.Equal(t, "WARN", entries[2]["level"])
	assert.Equal(t, "audit_factor_mismatch", entries[3]["event"])
	assert.Equal(t, "ip", entries[3]["factor"])

	for _, entry := range entries {
		assert.Equal(t, "steve", entry["account"])
		assert.Equal(t, "203.0.113.7", entry["origin"])
	}
}

func TestSlogLogger_NilLogger(t *testing.T) {
	logger := audit.NewSlogLogger(nil)
	// Must not panic.
	logger.LogLogin(context.Background(), "steve", "203.0.113.7", "secret")
}
