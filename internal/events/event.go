// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package events carries the typed authentication events published by
// the session guard. Listeners observe events synchronously and may
// veto vetoable ones before the publisher commits the transition.
package events

// Kind identifies the type of event.
type Kind string

const (
	KindLoginAttempt          Kind = "login_attempt"
	KindRegistrationCreation  Kind = "registration_creation"
	KindRegistrationCompleted Kind = "registration_completed"
	KindAuthentication        Kind = "authentication"
)

// Method identifies how a login attempt was satisfied.
type Method string

const (
	MethodClientSecret Method = "secret"
	MethodIP           Method = "ip"
	MethodUUID         Method = "uuid"
	MethodPassword     Method = "password"
)

// Event is the common surface of all authentication events.
type Event interface {
	Kind() Kind
	// AccountName returns the normalized account key the event concerns.
	AccountName() string
	// Origin returns the network origin of the connection.
	Origin() string
}

// Vetoable is implemented by events that listeners may cancel. A vetoed
// event means the attempted transition must not apply any side effects.
type Vetoable interface {
	Event
	Veto()
	Vetoed() bool
}

type base struct {
	account string
	origin  string
}

func (b base) AccountName() string { return b.account }
func (b base) Origin() string      { return b.origin }

type veto struct {
	vetoed bool
}

// Veto marks the event as cancelled.
func (v *veto) Veto() { v.vetoed = true }

// Vetoed reports whether any listener cancelled the event.
func (v *veto) Vetoed() bool { return v.vetoed }

// LoginAttempt is published before any transition to the authenticated
// state. Listeners may veto it to deny the login.
type LoginAttempt struct {
	base
	veto
	Method Method
}

// NewLoginAttempt creates a LoginAttempt event.
func NewLoginAttempt(accountName, origin string, method Method) *LoginAttempt {
	return &LoginAttempt{base: base{account: accountName, origin: origin}, Method: method}
}

// Kind implements Event.
func (*LoginAttempt) Kind() Kind { return KindLoginAttempt }

// RegistrationCreation is published when a session enters the
// registering state and a registration flow is about to start.
type RegistrationCreation struct {
	base
}

// NewRegistrationCreation creates a RegistrationCreation event.
func NewRegistrationCreation(accountName, origin string) *RegistrationCreation {
	return &RegistrationCreation{base: base{account: accountName, origin: origin}}
}

// Kind implements Event.
func (*RegistrationCreation) Kind() Kind { return KindRegistrationCreation }

// RegistrationCompleted is published when a registration flow finishes
// and the account gains its first password hash.
type RegistrationCompleted struct {
	base
}

// NewRegistrationCompleted creates a RegistrationCompleted event.
func NewRegistrationCompleted(accountName, origin string) *RegistrationCompleted {
	return &RegistrationCompleted{base: base{account: accountName, origin: origin}}
}

// Kind implements Event.
func (*RegistrationCompleted) Kind() Kind { return KindRegistrationCompleted }

// Authentication is published at the start of every successful
// authentication transition.
type Authentication struct {
	base
}

// NewAuthentication creates an Authentication event.
func NewAuthentication(accountName, origin string) *Authentication {
	return &Authentication{base: base{account: accountName, origin: origin}}
}

// Kind implements Event.
func (*Authentication) Kind() Kind { return KindAuthentication }
