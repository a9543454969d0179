// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package guard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/account"
	"github.com/gatewarden/gatewarden/internal/account/memory"
	"github.com/gatewarden/gatewarden/internal/events"
	"github.com/gatewarden/gatewarden/internal/guard"
	"github.com/gatewarden/gatewarden/internal/guard/guardtest"
	"github.com/gatewarden/gatewarden/internal/ratelimit"
)

func serviceDeps(repo *memory.Repository) guard.Deps {
	return guard.Deps{
		Accounts: repo,
		Hasher:   plainHasher{},
		Limiter:  ratelimit.NewMemoryLimiter(),
		Audit:    &guardtest.RecordingAudit{},
		Bus:      events.NewBus(),
	}
}

func TestNewService_ValidatesDeps(t *testing.T) {
	deps := serviceDeps(memory.NewRepository())
	deps.Bus = nil
	_, err := guard.NewService(deps, guard.DefaultConfig())
	require.Error(t, err)

	cfg := guard.DefaultConfig()
	cfg.MaxLoginAttempts = 0
	_, err = guard.NewService(serviceDeps(memory.NewRepository()), cfg)
	require.Error(t, err)
}

func TestService_AttachNewAccountStartsRegistration(t *testing.T) {
	svc, err := guard.NewService(serviceDeps(memory.NewRepository()), guard.DefaultConfig())
	require.NoError(t, err)

	player := guardtest.NewFakePlayer("Alex")
	g, err := svc.Attach(context.Background(), player)
	require.NoError(t, err)

	assert.True(t, g.IsRegistering())
	assert.Equal(t, "alex", g.Account().Name)
}

func TestService_AttachStoredAccountPromptsLogin(t *testing.T) {
	repo := memory.NewRepository()
	acct := account.Default("Alex", account.Options{})
	acct.PasswordHash = "hashed:hunter22"
	acct.RegisterTime = time.Now()
	require.NoError(t, repo.Save(context.Background(), acct))

	svc, err := guard.NewService(serviceDeps(repo), guard.DefaultConfig())
	require.NoError(t, err)

	player := guardtest.NewFakePlayer("Alex")
	g, err := svc.Attach(context.Background(), player)
	require.NoError(t, err)

	assert.True(t, g.IsPendingLogin())
	assert.True(t, g.HandleLine(context.Background(), "hunter22"))
	assert.True(t, g.IsPlaying())
}

func TestService_DefaultOptionsAppliedToNewAccounts(t *testing.T) {
	svc, err := guard.NewService(serviceDeps(memory.NewRepository()), guard.DefaultConfig())
	require.NoError(t, err)
	svc.SetDefaultOptions(account.Options{AutoLoginBySecret: true})

	player := guardtest.NewFakePlayer("Alex")
	g, err := svc.Attach(context.Background(), player)
	require.NoError(t, err)

	assert.True(t, g.Account().Options.AutoLoginBySecret)
}
