package pdata

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
)

// autosaver periodically saves the data of every online player so a crash
// loses at most one interval of changes.
type autosaver struct {
	interval time.Duration
	save     func()

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// runs counts completed saves
	runs atomic.Uint64
}

// newAutosaver creates an autosaver calling save every interval.
func newAutosaver(interval time.Duration, save func()) *autosaver {
	return &autosaver{
		interval: interval,
		save:     save,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the autosave loop.
func (a *autosaver) Start() {
	if a.running.Swap(true) {
		return // Already running
	}
	go a.loop()
}

// Stop stops the loop and waits for a running save to finish.
func (a *autosaver) Stop() {
	if !a.running.Swap(false) {
		return // Not running
	}
	close(a.stopCh)
	<-a.doneCh
}

func (a *autosaver) loop() {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.save()
			a.runs.Add(1)
		}
	}
}

// SaveAll saves the data of every online player and returns how many were
// saved. Players are saved in parallel, each within its own world
// transaction.
func (m *Manager) SaveAll() int {
	sessions := m.AllSessions()
	if m.store == nil || len(sessions) == 0 {
		return 0
	}

	var (
		wg    sync.WaitGroup
		saved atomic.Int64
		sem   = make(chan struct{}, max(1, runtime.GOMAXPROCS(0)))
	)
	for _, s := range sessions {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			s.Exec(func(tx *world.Tx, p *player.Player) {
				if err := m.save(s, s.Holder(p)); err != nil {
					m.log.Warn("pdata: autosave failed", "player", s.name, "error", err)
					return
				}
				saved.Add(1)
			})
		}()
	}
	wg.Wait()
	return int(saved.Load())
}
