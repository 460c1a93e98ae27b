package pdata

import (
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/player/form"
)

// getSessionFromPlayer extracts the session from a player's handler.
// Returns nil if the player doesn't have a pdata Handler.
func getSessionFromPlayer(p *player.Player) *Session {
	h, ok := p.Handler().(*Handler)
	if !ok {
		return nil
	}
	return h.session
}

// holderOf returns the data holder of p, or nil if p has no session.
func holderOf(p *player.Player) *PlayerHolder {
	s := getSessionFromPlayer(p)
	if s == nil {
		return nil
	}
	return s.Holder(p)
}

// Command extracts the data holder of the player running a command.
// Returns nil if the source is not a player or has no session.
//
// Usage:
//
//	func (c MyCommand) Run(src cmd.Source, out *cmd.Output, tx *world.Tx) {
//	    h := pdata.Command(src)
//	    if h == nil {
//	        out.Error("Player-only command")
//	        return
//	    }
//	    r := h.Session().Manager().Registry()
//	    r.Offer(h, ...)
//	}
//
// Concurrency:
// Commands are executed synchronously with the player, just like handlers.
// It is safe to read and offer data directly.
func Command(src cmd.Source) *PlayerHolder {
	p, ok := src.(*player.Player)
	if !ok {
		return nil
	}
	return holderOf(p)
}

// Form extracts the data holder of a form submitter.
// Returns nil if the submitter is not a player or has no session.
func Form(sub form.Submitter) *PlayerHolder {
	p, ok := sub.(*player.Player)
	if !ok {
		return nil
	}
	return holderOf(p)
}

// Item extracts the data holder of an item user.
// Returns nil if the user is not a player or has no session.
func Item(user item.User) *PlayerHolder {
	p, ok := user.(*player.Player)
	if !ok {
		return nil
	}
	return holderOf(p)
}
