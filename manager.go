package pdata

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// Manager is the central pdata coordinator.
// It owns the processor registry, the sessions of online players and the
// optional store their data is persisted in.
// Multiple Manager instances can coexist in the same process for running
// multiple isolated servers.
type Manager struct {
	// registry dispatches data access to processors
	registry *Registry

	// store persists player data between sessions, nil if disabled
	store     Store
	storeOpts StoreOptions

	// autosave periodically saves online players, nil if disabled
	autosave *autosaver

	// log is the logger used for store failures
	log *slog.Logger

	// sessions holds all active sessions
	sessions   map[*world.EntityHandle]*Session
	sessionsMu sync.RWMutex

	// sessionsByUUID provides UUID-based session lookup
	sessionsByUUID   map[uuid.UUID]*Session
	sessionsByUUIDMu sync.RWMutex

	// sessionsByName provides Name-based session lookup
	sessionsByName   map[string]*Session
	sessionsByNameMu sync.RWMutex

	// sessionsByXUID provides XUID-based session lookup
	sessionsByXUID   map[string]*Session
	sessionsByXUIDMu sync.RWMutex
}

// newManager creates a new manager.
func newManager(r *Registry, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		registry:       r,
		log:            log,
		storeOpts:      defaultStoreOptions(),
		sessions:       make(map[*world.EntityHandle]*Session),
		sessionsByUUID: make(map[uuid.UUID]*Session),
		sessionsByName: make(map[string]*Session),
		sessionsByXUID: make(map[string]*Session),
	}
}

// Registry returns the processor registry of the manager.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Store returns the store player data is persisted in, or nil.
func (m *Manager) Store() Store {
	return m.store
}

// setStore configures the store.
func (m *Manager) setStore(st Store, opts ...StoreOption) {
	options := defaultStoreOptions()
	for _, opt := range opts {
		opt(&options)
	}
	m.store = st
	m.storeOpts = options
}

// addSession registers a session with the manager.
func (m *Manager) addSession(s *Session) {
	m.sessionsMu.Lock()
	m.sessions[s.handle] = s
	m.sessionsMu.Unlock()

	m.sessionsByUUIDMu.Lock()
	m.sessionsByUUID[s.uuid] = s
	m.sessionsByUUIDMu.Unlock()

	m.sessionsByNameMu.Lock()
	m.sessionsByName[s.name] = s
	m.sessionsByNameMu.Unlock()

	if s.xuid != "" {
		m.sessionsByXUIDMu.Lock()
		m.sessionsByXUID[s.xuid] = s
		m.sessionsByXUIDMu.Unlock()
	}
}

// removeSession unregisters a session from the manager.
func (m *Manager) removeSession(s *Session) {
	m.sessionsMu.Lock()
	delete(m.sessions, s.handle)
	m.sessionsMu.Unlock()

	m.sessionsByUUIDMu.Lock()
	delete(m.sessionsByUUID, s.uuid)
	m.sessionsByUUIDMu.Unlock()

	m.sessionsByNameMu.Lock()
	delete(m.sessionsByName, s.name)
	m.sessionsByNameMu.Unlock()

	if s.xuid != "" {
		m.sessionsByXUIDMu.Lock()
		delete(m.sessionsByXUID, s.xuid)
		m.sessionsByXUIDMu.Unlock()
	}
}

// GetSession retrieves the session for a player.
func (m *Manager) GetSession(p *player.Player) *Session {
	return m.GetSessionByHandle(p.H())
}

// GetSessionByHandle retrieves a session by entity handle.
func (m *Manager) GetSessionByHandle(h *world.EntityHandle) *Session {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return m.sessions[h]
}

// GetSessionByUUID retrieves a session by UUID.
func (m *Manager) GetSessionByUUID(id uuid.UUID) *Session {
	m.sessionsByUUIDMu.RLock()
	defer m.sessionsByUUIDMu.RUnlock()
	return m.sessionsByUUID[id]
}

// GetSessionByName retrieves a session by player Name.
func (m *Manager) GetSessionByName(name string) *Session {
	m.sessionsByNameMu.RLock()
	defer m.sessionsByNameMu.RUnlock()
	return m.sessionsByName[name]
}

// GetSessionByXUID retrieves a session by player XUID.
func (m *Manager) GetSessionByXUID(xuid string) *Session {
	m.sessionsByXUIDMu.RLock()
	defer m.sessionsByXUIDMu.RUnlock()
	return m.sessionsByXUID[xuid]
}

// AllSessions returns a slice of all active sessions.
func (m *Manager) AllSessions() []*Session {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if !s.closed.Load() {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

// SessionCount returns the number of active sessions.
func (m *Manager) SessionCount() int {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return len(m.sessions)
}

// Holder returns the data holder of p, or nil if p has no session.
func (m *Manager) Holder(p *player.Player) *PlayerHolder {
	s := m.GetSession(p)
	if s == nil {
		return nil
	}
	return s.Holder(p)
}

// NewSession creates a new session for a player and restores the player's
// saved data from the store.
// This should be called when a player joins and the returned session
// should be passed to player.Handle() wrapped with NewHandler().
func (m *Manager) NewSession(p *player.Player) (*Session, error) {
	s := newSession(m, p.H(), p.UUID(), p.Name(), p.XUID())

	if err := m.restore(s, s.Holder(p)); err != nil {
		return nil, err
	}

	s.updateWorldCache(p.Tx().World())
	m.addSession(s)

	return s, nil
}

// restore loads the session's container from the store and offers it to h.
// Failures of an optional store are logged and ignored.
func (m *Manager) restore(s *Session, h any) error {
	if m.store == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.storeOpts.Timeout)
	defer cancel()

	c, err := m.store.Load(ctx, s.ID())
	if err != nil {
		if m.storeOpts.Required {
			return fmt.Errorf("required store %s failed: %w", m.store.Name(), err)
		}
		m.log.Warn("pdata: optional store failed",
			"store", m.store.Name(),
			"player", s.name,
			"error", err)
		return nil
	}
	if c == nil {
		return nil
	}

	var res TransactionResult
	s.apply(func() {
		res = m.registry.Restore(h, c, KeepReplacement)
	})
	if !res.IsSuccessful() || len(res.Rejected()) > 0 {
		m.log.Warn("pdata: saved data not fully restored",
			"player", s.name,
			"result", res.Type(),
			"rejected", len(res.Rejected()))
	}
	return nil
}

// Save writes the player's current data to the store. It must be called
// within the transaction the player is in.
func (m *Manager) Save(s *Session, tx *world.Tx) error {
	p, ok := s.Player(tx)
	if !ok {
		return fmt.Errorf("save %s: player not in transaction", s.name)
	}
	return m.save(s, s.Holder(p))
}

// save snapshots h and writes it to the store under the session's ID.
func (m *Manager) save(s *Session, h any) error {
	if m.store == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.storeOpts.Timeout)
	defer cancel()

	if err := m.store.Save(ctx, s.ID(), m.registry.Snapshot(h)); err != nil {
		return fmt.Errorf("save %s to %s: %w", s.name, m.store.Name(), err)
	}
	return nil
}

// startAutosave saves every online player each interval until Shutdown.
func (m *Manager) startAutosave(interval time.Duration) {
	if interval <= 0 || m.store == nil {
		return
	}
	m.autosave = newAutosaver(interval, func() {
		if n := m.SaveAll(); n > 0 {
			m.log.Debug("pdata: autosaved players", "count", n)
		}
	})
	m.autosave.Start()
}

// Shutdown saves the data of every online player and closes all sessions.
func (m *Manager) Shutdown() {
	if m.autosave != nil {
		m.autosave.Stop()
	}

	m.sessionsMu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessionsMu.Unlock()

	for _, s := range sessions {
		s.Exec(func(tx *world.Tx, p *player.Player) {
			if err := m.save(s, s.Holder(p)); err != nil {
				m.log.Error("pdata: saving on shutdown", "player", s.name, "error", err)
			}
		})
		s.close()
	}
}
