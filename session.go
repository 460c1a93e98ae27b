package pdata

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// Session represents a player's session in pdata.
// It wraps the player's EntityHandle (which is persistent across transactions)
// and stores the values of keys the host does not keep itself, such as the
// health scale or whether the player glows.
//
// Sessions are created when players join and closed when they leave.
type Session struct {
	// handle is the persistent entity handle for the player
	handle *world.EntityHandle

	// uuid is cached for fast lookup
	uuid uuid.UUID

	// name is cached for fast lookup
	name string

	// xuid is cached for fast lookup
	xuid string

	// worldCache is the world the player was last seen in
	worldCache atomic.Pointer[world.World]

	// mask tracks which session-backed keys hold a value
	mask KeySet

	// fields stores session-backed values indexed by KeyID
	fields [MaxKeys]any

	// mu protects mask and fields
	mu sync.RWMutex

	// manager is the manager that owns this session
	manager *Manager

	// closed indicates if the session has been closed
	closed atomic.Bool

	// applying is non-zero while the registry writes to the player. Host
	// callbacks triggered by those writes are not reported as offers.
	applying atomic.Int32
}

// newSession returns a session that is not yet indexed by a manager.
func newSession(m *Manager, h *world.EntityHandle, id uuid.UUID, name, xuid string) *Session {
	return &Session{handle: h, uuid: id, name: name, xuid: xuid, manager: m}
}

// Handle returns the underlying EntityHandle.
func (s *Session) Handle() *world.EntityHandle {
	return s.handle
}

// UUID returns the player's UUID.
func (s *Session) UUID() uuid.UUID {
	return s.uuid
}

// Name returns the player's name.
func (s *Session) Name() string {
	return s.name
}

// XUID returns the player's XUID.
func (s *Session) XUID() string {
	return s.xuid
}

// ID returns the identifier the player's data is stored under: the XUID, or
// the UUID for players without one.
func (s *Session) ID() string {
	if s.xuid != "" {
		return s.xuid
	}
	return s.uuid.String()
}

// Player retrieves the *player.Player instance associated with this session within the given transaction.
// It returns (nil, false) if the player entity is not present in the transaction (e.g. offline or in another world).
func (s *Session) Player(tx *world.Tx) (*player.Player, bool) {
	if s.handle == nil {
		return nil, false
	}
	e, ok := s.handle.Entity(tx)
	if !ok {
		return nil, false
	}
	p, ok := e.(*player.Player)
	return p, ok
}

// Holder returns the data holder for p, which must be this session's player.
func (s *Session) Holder(p *player.Player) *PlayerHolder {
	return &PlayerHolder{Player: p, session: s}
}

// Exec runs a function within the session's world transaction.
// Returns false if the player is offline or the session is closed.
func (s *Session) Exec(fn func(tx *world.Tx, p *player.Player)) bool {
	if s.closed.Load() || s.handle == nil {
		return false
	}

	return s.handle.ExecWorld(func(tx *world.Tx, e world.Entity) {
		p, ok := e.(*player.Player)
		if !ok {
			return
		}
		fn(tx, p)
	})
}

// World returns the world the player is currently in.
// Returns the cached world (may be slightly stale).
func (s *Session) World() *world.World {
	return s.worldCache.Load()
}

// Manager returns the manager for this session.
func (s *Session) Manager() *Manager {
	return s.manager
}

// Closed returns true if the session has been closed.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Mask returns the set of session-backed keys holding a value.
func (s *Session) Mask() KeySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mask
}

// apply runs fn with host callback translation suppressed.
func (s *Session) apply(fn func()) {
	s.applying.Add(1)
	defer s.applying.Add(-1)
	fn()
}

// suppressed reports whether host callbacks are currently caused by the
// registry itself.
func (s *Session) suppressed() bool {
	return s.applying.Load() > 0
}

// updateWorldCache updates the cached world pointer atomically.
func (s *Session) updateWorldCache(w *world.World) {
	s.worldCache.Store(w)
}

// String returns a string representation of the session for debugging.
func (s *Session) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := make([]string, 0, s.mask.Len())
	for id := range KeyID(MaxKeys) {
		if len(fields) == cap(fields) {
			break
		}
		if !s.mask.Has(id) {
			continue
		}
		if k, ok := KeyByID(id); ok {
			fields = append(fields, fmt.Sprintf("%s=%v", k.Name(), s.fields[id]))
		}
	}
	return "Session{Name: " + s.name + ", XUID: " + s.xuid + ", UUID: " + s.uuid.String() + ", Fields: [" + strings.Join(fields, ", ") + "]}"
}

// close closes the session. It is called when the player quits or the
// manager shuts down.
func (s *Session) close() {
	if s.closed.Swap(true) {
		return
	}

	s.mu.Lock()
	s.fields = [MaxKeys]any{}
	s.mask = KeySet{}
	s.mu.Unlock()

	if s.manager != nil {
		s.manager.removeSession(s)
	}
}

// sessionValue returns the session-backed value of key, or false if the
// session holds none.
func sessionValue[T any](s *Session, key Key[T]) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.mask.Has(key.ID()) {
		var zero T
		return zero, false
	}
	v, ok := s.fields[key.ID()].(T)
	return v, ok
}

// setSessionValue stores v as the session-backed value of key.
func setSessionValue[T any](s *Session, key Key[T], v T) {
	s.mu.Lock()
	s.fields[key.ID()] = v
	s.mask.Add(key.ID())
	s.mu.Unlock()
}

// clearSessionValue removes the session-backed value of key.
func clearSessionValue[T any](s *Session, key Key[T]) {
	s.mu.Lock()
	s.fields[key.ID()] = nil
	s.mask.Delete(key.ID())
	s.mu.Unlock()
}
