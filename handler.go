package pdata

import (
	"time"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
)

// Handler wraps a player.Handler and reports host-driven changes of trait
// values to the registry's pre-change listeners. A listener that cancels the
// offer cancels the host event as well, so the change never happens.
//
// Callbacks caused by the registry writing to the player are not reported
// again: the registry already ran the listeners for them.
//
// Concurrency:
// Handlers are executed synchronously by Dragonfly within the player's world
// transaction, so listeners may read and write the player freely.
type Handler struct {
	player.Handler
	session *Session
}

// NewHandler creates a new player.Handler for the given session. Events are
// passed on to next, or dropped if next is nil.
func NewHandler(s *Session, next player.Handler) *Handler {
	if next == nil {
		next = player.NopHandler{}
	}
	return &Handler{Handler: next, session: s}
}

// Compile-time check that Handler implements player.Handler.
var _ player.Handler = (*Handler)(nil)

// Session returns the session associated with this handler.
func (h *Handler) Session() *Session {
	return h.session
}

// propose runs the pre-change listeners of trait t for the change the host is
// about to make and cancels the host event if a listener vetoes it.
func (h *Handler) propose(ctx *player.Context, t *Trait, change func(original, proposed *Manipulator)) {
	if h.session.propose(h.session.Holder(ctx.Val()), t, change) {
		ctx.Cancel()
	}
}

// propose applies change to a copy of the holder's values of trait t and
// runs the pre-change listeners on the result. It reports whether a listener
// cancelled the change. Nothing runs for closed sessions or while the
// registry itself writes to the player.
func (s *Session) propose(holder any, t *Trait, change func(original, proposed *Manipulator)) bool {
	if s.manager == nil || s.closed.Load() || s.suppressed() {
		return false
	}
	r := s.manager.registry

	original, ok := r.Get(holder, t)
	if !ok {
		return false
	}
	proposed := original.Copy()
	change(original, proposed)
	return r.fireOffer(holder, original.AsImmutable(), proposed)
}

// changeTo returns a change setting key to v.
func changeTo[T any](key Key[T], v T) func(original, proposed *Manipulator) {
	return func(_, m *Manipulator) {
		_ = Set(m, key, v)
	}
}

// changeHealth returns a change adding delta to the current health.
func changeHealth(delta float64) func(original, proposed *Manipulator) {
	return func(orig, m *Manipulator) {
		_ = Set(m, KeyHealth, healed(must(orig, KeyHealth), must(orig, KeyMaxHealth), delta))
	}
}

// HandleToggleSneak handles the player toggling sneak.
func (h *Handler) HandleToggleSneak(ctx *player.Context, after bool) {
	h.propose(ctx, TraitSneaking, changeTo(KeySneaking, after))
	if !ctx.Cancelled() {
		h.Handler.HandleToggleSneak(ctx, after)
	}
}

// HandleToggleSprint handles the player toggling sprint.
func (h *Handler) HandleToggleSprint(ctx *player.Context, after bool) {
	h.propose(ctx, TraitSprinting, changeTo(KeySprinting, after))
	if !ctx.Cancelled() {
		h.Handler.HandleToggleSprint(ctx, after)
	}
}

// HandleHeal reports the health the player will have after healing.
func (h *Handler) HandleHeal(ctx *player.Context, health *float64, src world.HealingSource) {
	h.propose(ctx, TraitHealth, changeHealth(*health))
	if !ctx.Cancelled() {
		h.Handler.HandleHeal(ctx, health, src)
	}
}

// HandleHurt reports the health the player will have after taking the
// damage. Armour and effects may reduce the damage further.
func (h *Handler) HandleHurt(ctx *player.Context, damage *float64, immune bool, attackImmunity *time.Duration, src world.DamageSource) {
	if !immune {
		h.propose(ctx, TraitHealth, changeHealth(-*damage))
	}
	if !ctx.Cancelled() {
		h.Handler.HandleHurt(ctx, damage, immune, attackImmunity, src)
	}
}

// healed returns health changed by delta and clamped to [0, max].
func healed(health, maxHealth, delta float64) float64 {
	return min(maxHealth, max(0, health+delta))
}

// HandleFoodLoss handles the player losing food.
func (h *Handler) HandleFoodLoss(ctx *player.Context, from int, to *int) {
	h.propose(ctx, TraitFood, changeTo(KeyFoodLevel, *to))
	if !ctx.Cancelled() {
		h.Handler.HandleFoodLoss(ctx, from, to)
	}
}

// HandleChangeWorld handles the player changing worlds.
func (h *Handler) HandleChangeWorld(p *player.Player, before, after *world.World) {
	h.session.updateWorldCache(after)
	h.Handler.HandleChangeWorld(p, before, after)
}

// HandleQuit saves the player's data and closes the session.
func (h *Handler) HandleQuit(p *player.Player) {
	h.Handler.HandleQuit(p)

	s := h.session
	if m := s.manager; m != nil && !s.closed.Load() {
		if err := m.save(s, s.Holder(p)); err != nil {
			m.log.Error("pdata: saving on quit", "player", s.name, "error", err)
		}
	}
	s.close()
}
