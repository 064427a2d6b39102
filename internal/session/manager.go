package session

import (
	"context"
	"log"
	"sync"
	"time"

	"hotmess/internal/composer"
	"hotmess/internal/entitlement"
	"hotmess/internal/rightnow"
	"hotmess/internal/ws"
)

// Publisher receives composer updates for a user.
type Publisher interface {
	BroadcastToUser(userID uint, payload interface{})
}

type Options struct {
	Assistant   composer.DraftAssistant
	Submitter   composer.Submitter
	Boundaries  string
	Publisher   Publisher
	IdleTimeout time.Duration
}

type entry struct {
	c        *composer.Composer
	lastUsed time.Time
}

// Manager keeps one composer session per user.
type Manager struct {
	mu       sync.Mutex
	sessions map[uint]*entry
	opts     Options
	now      func() time.Time
}

func NewManager(opts Options) *Manager {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	return &Manager{
		sessions: make(map[uint]*entry),
		opts:     opts,
		now:      time.Now,
	}
}

// Open starts a fresh session for userID, closing any previous one.
func (m *Manager) Open(userID uint, ents entitlement.Entitlements, loc rightnow.Location, boundaries string) *composer.Composer {
	if boundaries == "" {
		boundaries = m.opts.Boundaries
	}
	c := composer.New(ents, composer.Options{
		Assistant:  m.opts.Assistant,
		Submitter:  m.opts.Submitter,
		Location:   loc,
		Boundaries: boundaries,
		OnChange: func(s composer.Snapshot) {
			m.publish(userID, ws.Message{Type: "composer", Data: s})
		},
	})
	m.mu.Lock()
	prev := m.sessions[userID]
	m.sessions[userID] = &entry{c: c, lastUsed: m.now()}
	m.mu.Unlock()
	if prev != nil {
		prev.c.Close()
	}
	log.Printf("[Session] opened user=%d membership=%s", userID, ents.Membership)
	m.publish(userID, ws.Message{Type: "composer", Data: c.Snapshot()})
	return c
}

// Get returns the user's session and marks it used.
func (m *Manager) Get(userID uint) (*composer.Composer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	e.lastUsed = m.now()
	return e.c, true
}

// Close tears down the user's session, canceling anything in flight.
func (m *Manager) Close(userID uint) bool {
	m.mu.Lock()
	e, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if !ok {
		return false
	}
	e.c.Close()
	m.publish(userID, ws.Message{Type: "closed"})
	return true
}

// Sweep closes sessions idle for longer than the idle timeout and returns how many.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.opts.IdleTimeout)
	var stale []uint
	m.mu.Lock()
	for id, e := range m.sessions {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()
	n := 0
	for _, id := range stale {
		if m.Close(id) {
			n++
		}
	}
	if n > 0 {
		log.Printf("[Session] closed %d idle sessions", n)
	}
	return n
}

// Run sweeps idle sessions until ctx is done, then closes the rest.
func (m *Manager) Run(ctx context.Context) {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case <-tick.C:
			m.Sweep()
		}
	}
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	ids := make([]uint, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.Close(id)
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) publish(userID uint, msg ws.Message) {
	if m.opts.Publisher != nil {
		m.opts.Publisher.BroadcastToUser(userID, msg)
	}
}
