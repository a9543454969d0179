// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package guard

import (
	"context"

	"github.com/gatewarden/gatewarden/internal/account"
)

// Service creates a Guard per player connection against a shared
// collaborator stack. The transport layer calls Attach when a player
// connects and routes that session's input through the returned Guard.
type Service struct {
	deps     Deps
	cfg      Config
	defaults account.Options
}

// NewService validates the collaborator stack once up front so every
// later Attach can only fail on account resolution.
func NewService(deps Deps, cfg Config) (*Service, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{deps: deps, cfg: cfg}, nil
}

// SetDefaultOptions sets the per-account options given to accounts that
// have no stored record yet.
func (s *Service) SetDefaultOptions(opts account.Options) {
	s.defaults = opts
}

// Attach resolves the player's account record, creates their Guard, and
// runs the initial dispatch.
func (s *Service) Attach(ctx context.Context, player Player) (*Guard, error) {
	acct, err := account.Resolve(ctx, s.deps.Accounts, player.Name(), s.defaults)
	if err != nil {
		return nil, err
	}

	g, err := New(s.deps, s.cfg, player, acct)
	if err != nil {
		return nil, err
	}
	g.Begin(ctx)
	return g, nil
}
