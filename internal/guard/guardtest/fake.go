// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package guardtest provides hand-written fakes for guard tests.
package guardtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/gatewarden/gatewarden/internal/guard"
)

// FakePlayer implements guard.Player and records every side effect the
// guard applies to it.
type FakePlayer struct {
	mu sync.Mutex

	PlayerName string
	Addr       string
	UUID       string
	Secret     string
	Skin       []byte
	SkinModel  string

	nametag string
	invis   *guard.Effect

	Messages     []string
	Disconnects  []string
	Teleports    []guard.Position
	Resyncs      int
	NametagSets  []string
	InvisApplied []guard.Effect
	InvisRemoved int
}

// NewFakePlayer creates a fake player with plausible identity signals.
func NewFakePlayer(name string) *FakePlayer {
	return &FakePlayer{
		PlayerName: name,
		Addr:       "203.0.113.7",
		UUID:       "019235c8-0000-7000-8000-aabbccddeeff",
		Secret:     "client-secret-" + name,
		Skin:       []byte("skin-bytes-" + name),
		SkinModel:  "steve",
		nametag:    name,
	}
}

func (p *FakePlayer) Name() string         { return p.PlayerName }
func (p *FakePlayer) Address() string      { return p.Addr }
func (p *FakePlayer) UniqueID() string     { return p.UUID }
func (p *FakePlayer) ClientSecret() string { return p.Secret }
func (p *FakePlayer) SkinData() []byte     { return p.Skin }
func (p *FakePlayer) SkinName() string     { return p.SkinModel }

func (p *FakePlayer) SendMessage(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = append(p.Messages, msg)
}

func (p *FakePlayer) Disconnect(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Disconnects = append(p.Disconnects, reason)
}

func (p *FakePlayer) Teleport(pos guard.Position) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Teleports = append(p.Teleports, pos)
}

func (p *FakePlayer) ResyncInventory() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Resyncs++
}

func (p *FakePlayer) Nametag() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nametag
}

func (p *FakePlayer) SetNametag(tag string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nametag = tag
	p.NametagSets = append(p.NametagSets, tag)
}

func (p *FakePlayer) InvisibilityEffect() (guard.Effect, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.invis == nil {
		return guard.Effect{}, false
	}
	return *p.invis, true
}

func (p *FakePlayer) ApplyInvisibility(eff guard.Effect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := eff
	p.invis = &e
	p.InvisApplied = append(p.InvisApplied, eff)
}

func (p *FakePlayer) RemoveInvisibility() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invis = nil
	p.InvisRemoved++
}

// LastMessage returns the most recent message, or "" if none.
func (p *FakePlayer) LastMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Messages) == 0 {
		return ""
	}
	return p.Messages[len(p.Messages)-1]
}

// Disconnected reports whether Disconnect was called at least once.
func (p *FakePlayer) Disconnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Disconnects) > 0
}

// RecordingAudit implements audit.Logger and records entries in order.
type RecordingAudit struct {
	mu      sync.Mutex
	Entries []string
}

func (a *RecordingAudit) record(entry string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, entry)
}

func (a *RecordingAudit) LogLogin(_ context.Context, name, origin, method string) {
	a.record(fmt.Sprintf("login:%s:%s:%s", name, origin, method))
}

func (a *RecordingAudit) LogRegister(_ context.Context, name, origin string) {
	a.record(fmt.Sprintf("register:%s:%s", name, origin))
}

func (a *RecordingAudit) LogInvalid(_ context.Context, name, origin string) {
	a.record(fmt.Sprintf("invalid:%s:%s", name, origin))
}

func (a *RecordingAudit) LogFactorMismatch(_ context.Context, name, origin, factor string) {
	a.record(fmt.Sprintf("factor_mismatch:%s:%s:%s", name, origin, factor))
}

// All returns a copy of the recorded entries.
func (a *RecordingAudit) All() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.Entries))
	copy(out, a.Entries)
	return out
}
