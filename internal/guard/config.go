// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package guard

import (
	"strings"
	"time"

	"github.com/samber/oops"
)

// AttemptsPlaceholder is replaced in the wrong-password template with
// the number of attempts the player has left.
const AttemptsPlaceholder = "$ATTEMPTS"

// Config holds the policy and message surface of the session guard.
type Config struct {
	// ForceRegister requires unregistered accounts to complete
	// registration before playing.
	ForceRegister bool `koanf:"force_register"`

	// RegisterReminder is shown once to unregistered players when
	// forced registration is disabled. Empty disables the reminder.
	RegisterReminder string `koanf:"register_reminder"`

	// RateLimitAccounts is the number of new accounts allowed per
	// origin within RateLimitWindow.
	RateLimitAccounts int `koanf:"rate_limit_accounts"`

	// RateLimitWindow is the rolling window for account creation.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// MaxLoginAttempts is the number of consecutive password failures
	// before the connection is dropped.
	MaxLoginAttempts int `koanf:"max_login_attempts"`

	// BlockPasswordChat suppresses chat lines that match the account
	// password while playing.
	BlockPasswordChat bool `koanf:"block_password_chat"`

	// MinPasswordLength applies to new registrations.
	MinPasswordLength int `koanf:"min_password_length"`

	// Message templates.
	LoginPrompt         string `koanf:"login_prompt"`
	WrongPassword       string `koanf:"wrong_password"` // supports AttemptsPlaceholder
	ImplicitRegister    string `koanf:"implicit_register"`
	RegisterComplete    string `koanf:"register_complete"`
	AuthenticatedNotice string `koanf:"authenticated_notice"`
	ChatPasswordWarning string `koanf:"chat_password_warning"`
	LockedNotice        string `koanf:"locked_notice"`

	// Appearance masking while unauthenticated.
	MaskInvisible bool   `koanf:"mask_invisible"`
	NametagPrefix string `koanf:"nametag_prefix"`
	NametagSuffix string `koanf:"nametag_suffix"`
}

// DefaultConfig returns the stock guard configuration.
func DefaultConfig() Config {
	return Config{
		ForceRegister:       true,
		RegisterReminder:    "",
		RateLimitAccounts:   3,
		RateLimitWindow:     30 * 24 * time.Hour,
		MaxLoginAttempts:    5,
		BlockPasswordChat:   true,
		MinPasswordLength:   6,
		LoginPrompt:         "Please log in to your account.",
		WrongPassword:       "Wrong password. You have " + AttemptsPlaceholder + " attempts left.",
		ImplicitRegister:    "This server protects your account. Please register.",
		RegisterComplete:    "Your account has been registered.",
		AuthenticatedNotice: "You have been authenticated.",
		ChatPasswordWarning: "Do not say your password in chat!",
		LockedNotice:        "You have been locked out. Please log in again.",
		MaskInvisible:       false,
		NametagPrefix:       "[",
		NametagSuffix:       "]",
	}
}

// Validate checks that the configuration is usable.
func (cfg *Config) Validate() error {
	if cfg.MaxLoginAttempts < 1 {
		return oops.Code("GUARD_INVALID_CONFIG").Errorf("max login attempts must be at least 1, got %d", cfg.MaxLoginAttempts)
	}
	if cfg.RateLimitAccounts < 1 {
		return oops.Code("GUARD_INVALID_CONFIG").Errorf("rate limit accounts must be at least 1, got %d", cfg.RateLimitAccounts)
	}
	if cfg.RateLimitWindow <= 0 {
		return oops.Code("GUARD_INVALID_CONFIG").Errorf("rate limit window must be positive, got %s", cfg.RateLimitWindow)
	}
	if cfg.MinPasswordLength < 1 {
		return oops.Code("GUARD_INVALID_CONFIG").Errorf("min password length must be at least 1, got %d", cfg.MinPasswordLength)
	}
	if !strings.Contains(cfg.WrongPassword, AttemptsPlaceholder) {
		return oops.Code("GUARD_INVALID_CONFIG").Errorf("wrong-password template must contain %s", AttemptsPlaceholder)
	}
	return nil
}
