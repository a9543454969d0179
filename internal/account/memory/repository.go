// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package memory provides an in-memory account repository for tests and
// local development.
package memory

import (
	"context"
	"sync"

	"github.com/gatewarden/gatewarden/internal/account"
)

// Repository implements account.Repository with a mutex-guarded map.
type Repository struct {
	mu       sync.RWMutex
	accounts map[string]account.Account
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		accounts: make(map[string]account.Account),
	}
}

// Load retrieves an account by its case-insensitive name.
func (r *Repository) Load(_ context.Context, name string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[account.NormalizeKey(name)]
	if !ok {
		return nil, account.ErrNotFound
	}
	copied := acct
	return &copied, nil
}

// Save stores a copy of the account, creating or replacing it.
func (r *Repository) Save(_ context.Context, acct *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := account.NormalizeKey(acct.Name)
	stored := *acct
	stored.Name = key
	r.accounts[key] = stored
	return nil
}

// Delete removes an account. Deleting a missing account is a no-op.
func (r *Repository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, account.NormalizeKey(name))
	return nil
}

var _ account.Repository = (*Repository)(nil)
