package pdata

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails every call with err.
type failingStore struct{ err error }

func (failingStore) Name() string                                      { return "failing" }
func (s failingStore) Load(context.Context, string) (Container, error) { return nil, s.err }
func (s failingStore) Save(context.Context, string, Container) error   { return s.err }
func (s failingStore) Delete(context.Context, string) error            { return s.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager() *Manager {
	return newManager(builtinRegistry(), discardLogger())
}

func addTestSession(m *Manager, name, xuid string) *Session {
	s := newSession(m, new(world.EntityHandle), uuid.New(), name, xuid)
	m.addSession(s)
	return s
}

func TestSessionValues(t *testing.T) {
	s := newSession(nil, nil, uuid.New(), "Steve", "")

	_, ok := sessionValue(s, KeyHealthScale)
	assert.False(t, ok)

	setSessionValue(s, KeyHealthScale, 40.0)
	v, ok := sessionValue(s, KeyHealthScale)
	require.True(t, ok)
	assert.Equal(t, 40.0, v)
	mask := s.Mask()
	assert.True(t, mask.Has(KeyHealthScale.ID()))
	assert.Contains(t, s.String(), "health_scale=40")

	clearSessionValue(s, KeyHealthScale)
	_, ok = sessionValue(s, KeyHealthScale)
	assert.False(t, ok)
	mask = s.Mask()
	assert.True(t, mask.IsZero())
}

func TestSessionIdentity(t *testing.T) {
	id := uuid.New()
	s := newSession(nil, nil, id, "Steve", "2535")
	assert.Equal(t, "2535", s.ID())
	assert.Equal(t, "Steve", s.Name())
	assert.Equal(t, id, s.UUID())

	s = newSession(nil, nil, id, "Alex", "")
	assert.Equal(t, id.String(), s.ID())

	assert.False(t, s.Exec(nil), "sessions without a handle cannot run")
	_, ok := s.Player(nil)
	assert.False(t, ok)
	assert.Nil(t, s.World())
}

func TestSessionApplySuppresses(t *testing.T) {
	s := newSession(nil, nil, uuid.New(), "Steve", "")
	assert.False(t, s.suppressed())
	s.apply(func() {
		assert.True(t, s.suppressed())
		s.apply(func() { assert.True(t, s.suppressed()) })
		assert.True(t, s.suppressed())
	})
	assert.False(t, s.suppressed())
}

func TestPlayerHolderSessionFields(t *testing.T) {
	s := newSession(nil, nil, uuid.New(), "Steve", "")
	h := s.Holder(nil)
	assert.Same(t, s, h.Session())

	_, ok := h.HealthScale()
	assert.False(t, ok)
	h.SetHealthScale(10)
	scale, ok := h.HealthScale()
	require.True(t, ok)
	assert.Equal(t, 10.0, scale)
	h.ResetHealthScale()
	_, ok = h.HealthScale()
	assert.False(t, ok)

	assert.True(t, h.Gravity())
	h.SetGravity(false)
	assert.False(t, h.Gravity())
	h.SetGravity(true)
	assert.True(t, h.Gravity())

	assert.False(t, h.Glowing())
	h.SetGlowing(true)
	assert.True(t, h.Glowing())
	h.SetGlowing(false)
	assert.False(t, h.Glowing())
	mask := s.Mask()
	assert.True(t, mask.IsZero(), "default values are not stored")
}

func TestPlayerHolderProcessors(t *testing.T) {
	s := newSession(nil, nil, uuid.New(), "Steve", "")
	h := s.Holder(nil)

	p := HealthScaleProcessor()
	require.True(t, p.Supports(h))
	m, _ := With(TraitHealthScale.New(), KeyHealthScale, 0.5)
	assert.Equal(t, Failure, p.Set(h, m, KeepReplacement).Type())
	_, ok := h.HealthScale()
	assert.False(t, ok)

	m, _ = With(TraitHealthScale.New(), KeyHealthScale, 40.0)
	require.Equal(t, Success, p.Set(h, m, KeepReplacement).Type())
	got, ok := p.From(h)
	require.True(t, ok)
	assert.True(t, got.Equal(m))

	assert.Equal(t, Failure, GlowingProcessor().RemoveFrom(h).Type())
}

func TestManagerSessionIndices(t *testing.T) {
	m := newTestManager()
	steve := addTestSession(m, "Steve", "2535")
	alex := addTestSession(m, "Alex", "")

	assert.Equal(t, 2, m.SessionCount())
	assert.Len(t, m.AllSessions(), 2)
	assert.Same(t, steve, m.GetSessionByHandle(steve.Handle()))
	assert.Same(t, steve, m.GetSessionByUUID(steve.UUID()))
	assert.Same(t, steve, m.GetSessionByName("Steve"))
	assert.Same(t, steve, m.GetSessionByXUID("2535"))
	assert.Same(t, alex, m.GetSessionByName("Alex"))
	assert.Nil(t, m.GetSessionByXUID(""))
	assert.Same(t, m, steve.Manager())

	steve.close()
	steve.close()
	assert.True(t, steve.Closed())
	assert.Equal(t, 1, m.SessionCount())
	assert.Nil(t, m.GetSessionByName("Steve"))
	assert.Nil(t, m.GetSessionByUUID(steve.UUID()))
	assert.Nil(t, m.GetSessionByXUID("2535"))
}

func TestManagerSaveAndRestore(t *testing.T) {
	m := newTestManager()
	store := NewMemoryStore()
	m.setStore(store)
	s := addTestSession(m, "Steve", "2535")

	h := newFakePlayer()
	h.food = 3
	h.nameTag = "Steve"
	require.NoError(t, m.save(s, h))
	assert.Equal(t, 1, store.Len())

	var suppressed []bool
	m.registry.OnOffer(nil, func(*OfferEvent) { suppressed = append(suppressed, s.suppressed()) })

	fresh := newFakePlayer()
	require.NoError(t, m.restore(s, fresh))
	assert.Equal(t, 3, fresh.food)
	assert.Equal(t, "Steve", fresh.nameTag)
	assert.NotEmpty(t, suppressed)
	for _, v := range suppressed {
		assert.True(t, v)
	}
	assert.False(t, s.suppressed())

	// Players without saved data keep their values.
	other := addTestSession(m, "Alex", "")
	untouched := newFakePlayer()
	require.NoError(t, m.restore(other, untouched))
	assert.Equal(t, MaxFoodLevel, untouched.food)
}

func TestManagerWithoutStore(t *testing.T) {
	m := newTestManager()
	s := addTestSession(m, "Steve", "")
	assert.Nil(t, m.Store())
	assert.NoError(t, m.save(s, newFakePlayer()))
	assert.NoError(t, m.restore(s, newFakePlayer()))
	assert.Zero(t, m.SaveAll())

	m.startAutosave(time.Millisecond)
	assert.Nil(t, m.autosave)

	assert.Error(t, m.Save(newSession(m, nil, uuid.New(), "Ghost", ""), nil))
}

func TestManagerStoreFailures(t *testing.T) {
	boom := errors.New("database is down")

	optional := newTestManager()
	optional.setStore(failingStore{boom})
	s := addTestSession(optional, "Steve", "")
	assert.NoError(t, optional.restore(s, newFakePlayer()))
	assert.ErrorIs(t, optional.save(s, newFakePlayer()), boom)

	required := newTestManager()
	required.setStore(failingStore{boom}, WithRequired(true), WithTimeout(time.Second))
	assert.Equal(t, time.Second, required.storeOpts.Timeout)
	err := required.restore(s, newFakePlayer())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
}

func TestManagerShutdownClosesSessions(t *testing.T) {
	m := newTestManager()
	m.setStore(NewMemoryStore())
	// Without a handle the player is offline, so nothing is saved.
	steve := newSession(m, nil, uuid.New(), "Steve", "")
	m.addSession(steve)

	m.startAutosave(time.Hour)
	require.NotNil(t, m.autosave)

	m.Shutdown()
	assert.Zero(t, m.SessionCount())
	assert.True(t, steve.Closed())
	assert.False(t, m.autosave.running.Load())
}

func TestAutosaver(t *testing.T) {
	var calls atomic.Int32
	a := newAutosaver(5*time.Millisecond, func() { calls.Add(1) })
	a.Start()
	a.Start()

	assert.Eventually(t, func() bool { return a.runs.Load() >= 2 }, time.Second, time.Millisecond)
	a.Stop()
	a.Stop()

	n := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, calls.Load())
}

func TestManagerWarnsOnPartialRestore(t *testing.T) {
	var logs bytes.Buffer
	m := newManager(builtinRegistry(), slog.New(slog.NewTextHandler(&logs, nil)))
	store := NewMemoryStore()
	m.setStore(store)
	s := addTestSession(m, "Steve", "")

	c := NewContainer()
	c.Set("food.food_level", int64(50))
	c.Set("absorption.absorption", 4.0)
	require.NoError(t, store.Save(context.Background(), s.ID(), c))

	h := newFakePlayer()
	require.NoError(t, m.restore(s, h))
	assert.Equal(t, 4.0, h.absorption)
	assert.Equal(t, MaxFoodLevel, h.food)
	assert.Contains(t, logs.String(), "saved data not fully restored")
	assert.Contains(t, logs.String(), "rejected=1")
}
