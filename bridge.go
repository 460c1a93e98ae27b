package pdata

import (
	"fmt"
	"math"

	"github.com/df-mc/dragonfly/server/entity"
	"github.com/df-mc/dragonfly/server/player"
)

// PlayerHolder is the data holder for a dragonfly player. It embeds the
// player, which provides most accessor interfaces, and adds the accessors
// the player lacks from fields stored in its Session.
//
// A PlayerHolder is only valid within the transaction the player was
// obtained from.
type PlayerHolder struct {
	*player.Player
	session *Session
}

// Compile-time checks for the accessors PlayerHolder adds.
var (
	_ HealthHolder      = (*PlayerHolder)(nil)
	_ HealthScaleHolder = (*PlayerHolder)(nil)
	_ GravityHolder     = (*PlayerHolder)(nil)
	_ GlowingHolder     = (*PlayerHolder)(nil)
)

// Session returns the player's session.
func (h *PlayerHolder) Session() *Session { return h.session }

// SetHealth heals or hurts the player until it has the given health. Healing
// and damage modifiers of the host may prevent reaching the exact value, in
// which case an error is returned.
func (h *PlayerHolder) SetHealth(health float64) error {
	cur := h.Health()
	h.session.apply(func() {
		switch {
		case health > cur:
			h.Heal(health-cur, entity.FoodHealingSource{})
		case health < cur:
			h.Hurt(cur-health, entity.VoidDamageSource{})
		}
	})
	if got := h.Health(); math.Abs(got-health) > 1e-6 {
		return fmt.Errorf("health is %v after setting %v", got, health)
	}
	return nil
}

// HealthScale returns the health scale, or false if health is not scaled.
func (h *PlayerHolder) HealthScale() (float64, bool) {
	return sessionValue(h.session, KeyHealthScale)
}

// SetHealthScale sets the health scale.
func (h *PlayerHolder) SetHealthScale(scale float64) {
	setSessionValue(h.session, KeyHealthScale, scale)
}

// ResetHealthScale turns health scaling off.
func (h *PlayerHolder) ResetHealthScale() {
	clearSessionValue(h.session, KeyHealthScale)
}

// Gravity reports whether gravity applies to the player. It does unless
// turned off.
func (h *PlayerHolder) Gravity() bool {
	v, ok := sessionValue(h.session, KeyGravity)
	return !ok || v
}

// SetGravity turns gravity on or off.
func (h *PlayerHolder) SetGravity(enabled bool) {
	if enabled {
		clearSessionValue(h.session, KeyGravity)
		return
	}
	setSessionValue(h.session, KeyGravity, false)
}

// Glowing reports whether the player glows.
func (h *PlayerHolder) Glowing() bool {
	v, _ := sessionValue(h.session, KeyGlowing)
	return v
}

// SetGlowing makes the player glow or stop glowing.
func (h *PlayerHolder) SetGlowing(glowing bool) {
	if !glowing {
		clearSessionValue(h.session, KeyGlowing)
		return
	}
	setSessionValue(h.session, KeyGlowing, true)
}

// The player reports sneaking and sprinting changes to its handler. These
// wrappers keep the Handler from treating them as changes made by the game.

// StartSneaking makes the player start sneaking.
func (h *PlayerHolder) StartSneaking() { h.session.apply(h.Player.StartSneaking) }

// StopSneaking makes the player stop sneaking.
func (h *PlayerHolder) StopSneaking() { h.session.apply(h.Player.StopSneaking) }

// StartSprinting makes the player start sprinting.
func (h *PlayerHolder) StartSprinting() { h.session.apply(h.Player.StartSprinting) }

// StopSprinting makes the player stop sprinting.
func (h *PlayerHolder) StopSprinting() { h.session.apply(h.Player.StopSprinting) }
