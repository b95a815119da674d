package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/andresuchdata/workshop-dashboard/internal/view"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultSessionTTL = 30 * time.Minute

// SessionManager keeps one view controller per open dashboard. A session
// belongs to the bearer token that opened it.
type SessionManager struct {
	records  view.RecordSource
	queue    view.QueueSource
	notifier view.Notifier
	money    *view.CurrencyFormatter
	invalid  view.Invalidator
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	ctrl     *view.Controller
	lastSeen time.Time
}

type SessionOptions struct {
	Records  view.RecordSource
	Queue    view.QueueSource
	Notifier view.Notifier
	Money    *view.CurrencyFormatter
	TTL      time.Duration
	Now      func() time.Time
	// Invalidator drops cached records after an upload completes; usually
	// the RecordService passed as Records.
	Invalidator view.Invalidator
}

func NewSessionManager(opts SessionOptions) *SessionManager {
	if opts.TTL <= 0 {
		opts.TTL = defaultSessionTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionManager{
		records:  opts.Records,
		queue:    opts.Queue,
		notifier: opts.Notifier,
		money:    opts.Money,
		invalid:  opts.Invalidator,
		ttl:      opts.TTL,
		now:      opts.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Open creates a controller for the kind and mounts it.
func (m *SessionManager) Open(ctx context.Context, kind domain.Kind, sess domain.Session) (string, view.View, error) {
	desc, err := domain.Describe(kind)
	if err != nil {
		return "", view.View{}, err
	}

	ctrl := view.NewController(desc, view.Options{
		Session:     sess,
		Records:     m.records,
		Queue:       m.queue,
		Notifier:    m.notifier,
		Money:       m.money,
		Now:         m.now,
		Invalidator: m.invalid,
	})
	id := uuid.NewString()

	m.mu.Lock()
	m.sessions[id] = &sessionEntry{ctrl: ctrl, lastSeen: m.now()}
	m.mu.Unlock()

	log.Info().Str("session_id", id).Str("kind", string(kind)).Msg("view session opened")
	return id, ctrl.Mount(ctx), nil
}

// Get returns the controller of a session owned by sess and marks it used.
func (m *SessionManager) Get(id string, sess domain.Session) (*view.Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok || !sameToken(entry.ctrl.Session(), sess) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	entry.lastSeen = m.now()
	return entry.ctrl, nil
}

// Close discards a session.
func (m *SessionManager) Close(id string, sess domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok || !sameToken(entry.ctrl.Session(), sess) {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// Len is the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Info().Int("removed", n).Msg("expired view sessions swept")
			}
		}
	}
}

func sameToken(a, b domain.Session) bool {
	return subtle.ConstantTimeCompare([]byte(a.Token), []byte(b.Token)) == 1
}
