// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package guard

import (
	"context"
	"fmt"

	"github.com/gatewarden/gatewarden/pkg/errutil"
)

// RegistrationFlow collects whatever a registration variant needs from
// the player's input lines. The flow owns its own sub-state; when it is
// done it calls the guard's FinishRegistration exactly once.
type RegistrationFlow interface {
	// Init starts the flow, typically by prompting the player.
	Init(ctx context.Context)

	// Handle consumes one raw input line.
	Handle(ctx context.Context, line string)
}

// FlowFactory builds the registration flow for a guard entering the
// registering state.
type FlowFactory func(g *Guard) RegistrationFlow

// PasswordFlow is the stock registration variant: ask for a password,
// ask again to confirm, register on match.
type PasswordFlow struct {
	guard *Guard

	pendingHash string
	awaiting    passwordStep
}

type passwordStep int

const (
	stepPassword passwordStep = iota
	stepConfirm
)

// NewPasswordFlow creates the stock password registration flow.
func NewPasswordFlow(g *Guard) RegistrationFlow {
	return &PasswordFlow{guard: g}
}

// Init prompts for the initial password.
func (f *PasswordFlow) Init(_ context.Context) {
	f.awaiting = stepPassword
	f.guard.Player().SendMessage("Please enter a password to register.")
}

// Handle consumes one input line according to the current step.
func (f *PasswordFlow) Handle(ctx context.Context, line string) {
	switch f.awaiting {
	case stepPassword:
		if len(line) < f.guard.Config().MinPasswordLength {
			f.guard.Player().SendMessage(fmt.Sprintf(
				"Password must be at least %d characters. Please enter a password.",
				f.guard.Config().MinPasswordLength))
			return
		}
		hash, err := f.guard.Hasher().Hash(line)
		if err != nil {
			errutil.LogError(f.guard.logger, "password hash failed during registration", err)
			f.guard.Player().SendMessage("Something went wrong. Please enter a password.")
			return
		}
		f.pendingHash = hash
		f.awaiting = stepConfirm
		f.guard.Player().SendMessage("Please repeat your password to confirm.")

	case stepConfirm:
		match, err := f.guard.Hasher().Verify(line, f.pendingHash)
		if err != nil || !match {
			f.pendingHash = ""
			f.awaiting = stepPassword
			f.guard.Player().SendMessage("Passwords did not match. Please enter a password.")
			return
		}
		hash := f.pendingHash
		f.pendingHash = ""
		f.guard.FinishRegistration(ctx, hash)
	}
}
