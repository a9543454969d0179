// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package guard owns the per-connection authentication state machine.
// One Guard mediates a player's session from connect until
// authentication completes: it decides whether the account must
// register, log in, or pass straight through, masks the player's
// appearance while unauthenticated, and intercepts chat input until the
// session reaches the playing state.
//
// A Guard is mutated only by its connection's processing context; it is
// not safe for concurrent use. Its collaborators (repository, limiter,
// audit log, event bus) are shared across sessions and must be.
package guard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/gatewarden/gatewarden/internal/account"
	"github.com/gatewarden/gatewarden/internal/audit"
	"github.com/gatewarden/gatewarden/internal/events"
	"github.com/gatewarden/gatewarden/internal/ratelimit"
	"github.com/gatewarden/gatewarden/pkg/errutil"
)

// State is the authentication state of a session.
type State int

const (
	// StatePlaying means the session is authenticated and input flows
	// through to normal gameplay.
	StatePlaying State = iota

	// StateRegistering means a registration flow owns all input.
	StateRegistering

	// StatePendingLogin means the session is waiting for the password.
	StatePendingLogin
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateRegistering:
		return "registering"
	case StatePendingLogin:
		return "pending_login"
	default:
		return "unknown"
	}
}

// maskEffectDuration is effectively permanent; the masking effect is
// removed explicitly on revert, never by expiry.
const maskEffectDuration = 10 * 365 * 24 * time.Hour

// Deps are the shared collaborators a Guard calls out to.
type Deps struct {
	Accounts account.Repository
	Hasher   account.Hasher
	Limiter  ratelimit.Limiter
	Audit    audit.Logger
	Bus      *events.Bus

	// Flows builds the registration flow variant at registering-entry
	// time. Defaults to NewPasswordFlow.
	Flows FlowFactory

	// Logger is optional; nil discards.
	Logger *slog.Logger
}

// Guard drives one session's authentication lifecycle.
type Guard struct {
	cfg     Config
	player  Player
	account *account.Account

	accounts account.Repository
	hasher   account.Hasher
	limiter  ratelimit.Limiter
	audit    audit.Logger
	bus      *events.Bus
	flows    FlowFactory
	logger   *slog.Logger

	state         State
	loginAttempts int
	createdAt     time.Time
	registration  RegistrationFlow

	// Appearance snapshot, taken once on mask and consumed once on revert.
	savedNametag *string
	savedInvis   *Effect
	invisMasked  bool

	returnPos *Position

	// pendingPasswordHash is the opaque token slot used by an external
	// password-change command; it never affects this state machine.
	pendingPasswordHash string
}

func (d Deps) validate() error {
	if d.Accounts == nil {
		return oops.Errorf("accounts repository is required")
	}
	if d.Hasher == nil {
		return oops.Errorf("password hasher is required")
	}
	if d.Limiter == nil {
		return oops.Errorf("rate limiter is required")
	}
	if d.Audit == nil {
		return oops.Errorf("audit logger is required")
	}
	if d.Bus == nil {
		return oops.Errorf("event bus is required")
	}
	return nil
}

// New creates a Guard for a connected player and its resolved account
// record. It validates collaborators but performs no transition; call
// Begin to run the initial dispatch.
func New(deps Deps, cfg Config, player Player, acct *account.Account) (*Guard, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if player == nil {
		return nil, oops.Errorf("player is required")
	}
	if acct == nil {
		return nil, oops.Errorf("account record is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	flows := deps.Flows
	if flows == nil {
		flows = NewPasswordFlow
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Guard{
		cfg:       cfg,
		player:    player,
		account:   acct,
		accounts:  deps.Accounts,
		hasher:    deps.Hasher,
		limiter:   deps.Limiter,
		audit:     deps.Audit,
		bus:       deps.Bus,
		flows:     flows,
		logger:    logger,
		createdAt: time.Now(),
	}, nil
}

// Begin runs the initial dispatch for the connection: straight to
// playing, into a registration flow, or to the password prompt.
func (g *Guard) Begin(ctx context.Context) {
	if !g.account.Registered() {
		// Bookkeeping only; quota denial policy lives outside the guard.
		if _, err := g.limiter.RecordAndCheck(ctx, g.player.Address(), g.cfg.RateLimitAccounts, g.cfg.RateLimitWindow, g.account.Name); err != nil {
			errutil.LogError(g.logger, "account creation rate-limit record failed", err)
		}

		if !g.cfg.ForceRegister {
			g.onAuth(ctx)
			if g.cfg.RegisterReminder != "" {
				g.player.SendMessage(g.cfg.RegisterReminder)
			}
			return
		}

		g.startRegistration(ctx)
		g.applyMask()
		return
	}

	if g.account.Options.AutoLoginBySecret &&
		g.player.ClientSecret() == g.account.LastSecret &&
		g.allowLogin(events.MethodClientSecret) {
		g.audit.LogLogin(ctx, g.account.Name, g.player.Address(), string(events.MethodClientSecret))
		g.onAuth(ctx)
		return
	}
	if g.account.Options.AutoLoginByIP &&
		g.player.Address() == g.account.LastIP &&
		g.allowLogin(events.MethodIP) {
		g.audit.LogLogin(ctx, g.account.Name, g.player.Address(), string(events.MethodIP))
		g.onAuth(ctx)
		return
	}
	if g.account.Options.AutoLoginByUUID &&
		g.player.UniqueID() == g.account.LastUUID &&
		g.allowLogin(events.MethodUUID) {
		g.audit.LogLogin(ctx, g.account.Name, g.player.Address(), string(events.MethodUUID))
		g.onAuth(ctx)
		return
	}

	g.state = StatePendingLogin
	g.player.SendMessage(g.cfg.LoginPrompt)
	g.applyMask()
}

func (g *Guard) startRegistration(ctx context.Context) {
	g.state = StateRegistering
	g.bus.Publish(events.NewRegistrationCreation(g.account.Name, g.player.Address()))
	g.registration = g.flows(g)
	g.player.SendMessage(g.cfg.ImplicitRegister)
	g.registration.Init(ctx)
}

// FinishRegistration is invoked by the registration flow, exactly once,
// when it has collected a password. The flow owns that guarantee.
func (g *Guard) FinishRegistration(ctx context.Context, passwordHash string) {
	g.account.PasswordHash = passwordHash
	g.bus.Publish(events.NewRegistrationCompleted(g.account.Name, g.player.Address()))
	g.audit.LogRegister(ctx, g.account.Name, g.player.Address())
	g.player.SendMessage(g.cfg.RegisterComplete)
	g.account.RegisterTime = time.Now()
	g.onAuth(ctx)
	g.logger.DebugContext(ctx, "account registered", "account", g.account.Name)
}

// CheckFactors re-validates the connection's identity signals against
// the trusted record. The first failing factor audit-logs, disconnects,
// and returns false.
func (g *Guard) CheckFactors(ctx context.Context) bool {
	if g.account.Options.RequireSameIP && g.player.Address() != g.account.LastIP {
		g.audit.LogFactorMismatch(ctx, g.account.Name, g.player.Address(), "ip")
		g.player.Disconnect("Incorrect IP address!")
		return false
	}
	if g.account.Options.RequireSameSkin {
		fingerprint := account.SkinFingerprint(g.player.SkinData(), g.player.SkinName())
		if fingerprint != g.account.LastSkinHash {
			g.audit.LogFactorMismatch(ctx, g.account.Name, g.player.Address(), "skin")
			g.player.Disconnect("Incorrect skin!")
			return false
		}
	}
	return true
}

// onAuth is the single successful-authentication transition. Order
// matters: persistence and appearance revert are unconditional tail
// steps even when no teleport was needed.
func (g *Guard) onAuth(ctx context.Context) {
	g.bus.Publish(events.NewAuthentication(g.account.Name, g.player.Address()))
	g.state = StatePlaying
	g.loginAttempts = 0

	g.account.LastUUID = g.player.UniqueID()
	g.account.LastLogin = time.Now()
	g.account.LastSecret = g.player.ClientSecret()
	g.account.LastSkinHash = account.SkinFingerprint(g.player.SkinData(), g.player.SkinName())
	g.account.LastIP = g.player.Address()

	if g.account.Registered() {
		g.player.SendMessage(g.cfg.AuthenticatedNotice)
	}
	g.player.ResyncInventory()

	if g.returnPos != nil {
		g.player.Teleport(*g.returnPos)
		g.returnPos = nil
	}

	if err := g.save(ctx); err != nil {
		errutil.LogError(g.logger, "account save failed on authentication", err)
	}
	g.revertMask()
}

// HandleLine routes one raw chat/command line through the current state.
// It returns true when the line must be suppressed from normal
// processing.
func (g *Guard) HandleLine(ctx context.Context, line string) bool {
	switch g.state {
	case StatePendingLogin:
		g.handleLogin(ctx, line)
		return true
	case StatePlaying:
		return g.blockPasswordChat(line)
	case StateRegistering:
		g.registration.Handle(ctx, line)
		return true
	default:
		return false
	}
}

func (g *Guard) handleLogin(ctx context.Context, line string) {
	match, err := g.hasher.Verify(line, g.account.PasswordHash)
	if err != nil {
		errutil.LogError(g.logger, "password verification failed", err)
	}
	if match && g.allowLogin(events.MethodPassword) {
		g.audit.LogLogin(ctx, g.account.Name, g.player.Address(), string(events.MethodPassword))
		g.onAuth(ctx)
		return
	}

	g.audit.LogInvalid(ctx, g.account.Name, g.player.Address())
	g.loginAttempts++
	left := g.cfg.MaxLoginAttempts - g.loginAttempts
	if left <= 0 {
		g.player.Disconnect(fmt.Sprintf("Failed to log in in %d attempts", g.cfg.MaxLoginAttempts))
		return
	}
	g.player.SendMessage(strings.ReplaceAll(g.cfg.WrongPassword, AttemptsPlaceholder, strconv.Itoa(left)))
}

// blockPasswordChat suppresses a playing player's chat line when it
// matches their own password.
func (g *Guard) blockPasswordChat(line string) bool {
	if !g.cfg.BlockPasswordChat || !g.account.Registered() {
		return false
	}
	match, err := g.hasher.Verify(line, g.account.PasswordHash)
	if err != nil || !match {
		return false
	}
	g.player.SendMessage(g.cfg.ChatPasswordWarning)
	return true
}

// Finalize runs at session end. A playing session persists its record;
// a session that never authenticated is returned to its saved position
// so the disconnect does not strand it at the holding location.
func (g *Guard) Finalize(ctx context.Context) error {
	if g.state == StatePlaying {
		if err := g.save(ctx); err != nil {
			return err
		}
	}
	if g.returnPos != nil {
		g.player.Teleport(*g.returnPos)
		g.returnPos = nil
	}
	return nil
}

// Lock forces a playing session back to the password prompt. It fails
// for unregistered accounts, which have no password to prompt for.
func (g *Guard) Lock() bool {
	if !g.account.Registered() {
		return false
	}
	g.state = StatePendingLogin
	g.loginAttempts = 0
	g.player.SendMessage(g.cfg.LockedNotice)
	return true
}

func (g *Guard) save(ctx context.Context) error {
	if err := g.accounts.Save(ctx, g.account); err != nil {
		return oops.Code("GUARD_SAVE_FAILED").
			With("account", g.account.Name).
			Wrap(err)
	}
	return nil
}

// allowLogin publishes a LoginAttempt and reports whether no listener
// vetoed it.
func (g *Guard) allowLogin(method events.Method) bool {
	return g.bus.Publish(events.NewLoginAttempt(g.account.Name, g.player.Address(), method))
}

func (g *Guard) applyMask() {
	if g.cfg.MaskInvisible {
		if eff, ok := g.player.InvisibilityEffect(); ok {
			saved := eff
			g.savedInvis = &saved
			g.player.RemoveInvisibility()
		}
		g.player.ApplyInvisibility(Effect{Duration: maskEffectDuration, Visible: false})
		g.invisMasked = true
	}

	tag := g.player.Nametag()
	g.savedNametag = &tag
	g.player.SetNametag(g.cfg.NametagPrefix + tag + g.cfg.NametagSuffix)
}

func (g *Guard) revertMask() {
	if g.invisMasked {
		g.player.RemoveInvisibility()
		if g.savedInvis != nil {
			g.player.ApplyInvisibility(*g.savedInvis)
			g.savedInvis = nil
		}
		g.invisMasked = false
	}
	if g.savedNametag != nil {
		g.player.SetNametag(*g.savedNametag)
		g.savedNametag = nil
	}
}

// State returns the current authentication state.
func (g *Guard) State() State { return g.state }

// IsPlaying reports whether the session is authenticated.
func (g *Guard) IsPlaying() bool { return g.state == StatePlaying }

// IsRegistering reports whether a registration flow owns input.
func (g *Guard) IsRegistering() bool { return g.state == StateRegistering }

// IsPendingLogin reports whether the session awaits its password.
func (g *Guard) IsPendingLogin() bool { return g.state == StatePendingLogin }

// HasRegistered reports whether the account has a password hash.
func (g *Guard) HasRegistered() bool { return g.account.Registered() }

// Account returns the session's account record.
func (g *Guard) Account() *account.Account { return g.account }

// Player returns the session's player.
func (g *Guard) Player() Player { return g.player }

// Config returns the guard configuration.
func (g *Guard) Config() Config { return g.cfg }

// Hasher returns the password hasher, for registration flows.
func (g *Guard) Hasher() account.Hasher { return g.hasher }

// Registration returns the active registration flow, if any.
func (g *Guard) Registration() RegistrationFlow { return g.registration }

// CreatedAt returns when the guard was constructed (record load time).
func (g *Guard) CreatedAt() time.Time { return g.createdAt }

// LoginAttempts returns the failed-attempt counter.
func (g *Guard) LoginAttempts() int { return g.loginAttempts }

// SetReturnPosition saves where the player should be teleported back to
// once authenticated, or on disconnect if authentication never finishes.
func (g *Guard) SetReturnPosition(pos Position) {
	p := pos
	g.returnPos = &p
}

// ReturnPosition returns the saved return position, if one is set.
func (g *Guard) ReturnPosition() (Position, bool) {
	if g.returnPos == nil {
		return Position{}, false
	}
	return *g.returnPos, true
}

// PendingPasswordHash returns the pending password-change token.
func (g *Guard) PendingPasswordHash() string { return g.pendingPasswordHash }

// SetPendingPasswordHash stores a pending password-change token. The
// password-change command consumes it; the guard only carries it.
func (g *Guard) SetPendingPasswordHash(hash string) { g.pendingPasswordHash = hash }
