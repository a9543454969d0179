// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package guard

import "time"

// Position is a world coordinate a player can be teleported to.
type Position struct {
	World string
	X     float64
	Y     float64
	Z     float64
}

// Effect is an invisibility-effect instance on a player. "No effect" is
// represented by absence, not a zero Effect, so reverting the mask can
// tell the two apart.
type Effect struct {
	Duration time.Duration
	// Visible controls whether other players see the effect particles.
	Visible bool
}

// Player is the game-session side of a connection: identity signals the
// guard fingerprints, plus the primitives it drives for messaging,
// teleportation, inventory resync, and appearance masking. The game
// server implements it; the guard never reaches past this surface.
type Player interface {
	// Name returns the account name the player connected with.
	Name() string

	// Address returns the network origin of the connection.
	Address() string

	// UniqueID returns the client's stable unique identifier.
	UniqueID() string

	// ClientSecret returns the client-secret token, if the client sent one.
	ClientSecret() string

	// SkinData returns the raw skin payload.
	SkinData() []byte

	// SkinName returns the skin's name.
	SkinName() string

	// SendMessage delivers a chat message to the player.
	SendMessage(msg string)

	// Disconnect drops the connection with a human-readable reason.
	Disconnect(reason string)

	// Teleport moves the player to a world position.
	Teleport(pos Position)

	// ResyncInventory pushes inventory and armor contents to the client.
	ResyncInventory()

	// Nametag returns the current display name.
	Nametag() string

	// SetNametag replaces the display name.
	SetNametag(tag string)

	// InvisibilityEffect returns the active invisibility effect, if any.
	InvisibilityEffect() (Effect, bool)

	// ApplyInvisibility adds or replaces the invisibility effect.
	ApplyInvisibility(e Effect)

	// RemoveInvisibility removes any invisibility effect.
	RemoveInvisibility()
}
