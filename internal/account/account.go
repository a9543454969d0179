// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// Account is the persisted record for one player account, keyed by the
// case-insensitive account name. An empty PasswordHash means the account
// has never completed registration. The fingerprint fields capture the
// identity signals observed on the most recent successful authentication
// and are refreshed only on success.
type Account struct {
	Name         string // normalized lower-case key
	PasswordHash string
	LastIP       string
	LastUUID     string
	LastSecret   string
	LastSkinHash string
	RegisterTime time.Time
	LastLogin    time.Time
	Options      Options
}

// Options holds per-account authentication policy flags.
type Options struct {
	AutoLoginBySecret bool `json:"auto_login_by_secret,omitempty"`
	AutoLoginByIP     bool `json:"auto_login_by_ip,omitempty"`
	AutoLoginByUUID   bool `json:"auto_login_by_uuid,omitempty"`
	RequireSameIP     bool `json:"require_same_ip,omitempty"`
	RequireSameSkin   bool `json:"require_same_skin,omitempty"`
}

// Registered reports whether the account has completed registration.
func (a *Account) Registered() bool {
	return a.PasswordHash != ""
}

// NormalizeKey lowercases and trims an account name into its storage key.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Default returns a fresh unregistered account for the given name with
// the supplied policy defaults.
func Default(name string, opts Options) *Account {
	return &Account{
		Name:    NormalizeKey(name),
		Options: opts,
	}
}

// Resolve loads the account for name, falling back to a fresh default
// record when none exists yet.
func Resolve(ctx context.Context, repo Repository, name string, defaults Options) (*Account, error) {
	acct, err := repo.Load(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Default(name, defaults), nil
		}
		return nil, err
	}
	return acct, nil
}

// SkinFingerprint derives a stable fingerprint from raw skin data and the
// skin name. The separator byte keeps (data, name) pairs unambiguous.
func SkinFingerprint(data []byte, name string) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(name))
	return hex.EncodeToString(h.Sum(nil))
}

// Repository manages account persistence. Implementations must be safe
// for concurrent use by many connection contexts.
type Repository interface {
	// Load retrieves an account by its case-insensitive name.
	// Returns ErrNotFound if no such account exists.
	Load(ctx context.Context, name string) (*Account, error)

	// Save stores an account, creating or replacing it.
	Save(ctx context.Context, acct *Account) error

	// Delete removes an account.
	Delete(ctx context.Context, name string) error
}
