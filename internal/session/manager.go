// Package session hosts live duel and chat sessions. Each session is an
// isolated aggregate: the manager serializes every call against one session
// and leaves distinct sessions fully independent.
package session

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/duelhall/duel-server-go/internal/chat"
	"github.com/duelhall/duel-server-go/internal/duelerr"
	"github.com/duelhall/duel-server-go/internal/events"
	"github.com/duelhall/duel-server-go/internal/numberduel"
	"github.com/duelhall/duel-server-go/internal/secretword"
)

// Kind identifies what a session hosts.
type Kind string

const (
	KindChat       Kind = "chat"
	KindSecretWord Kind = "secretword"
	KindNumberDuel Kind = "numberduel"
)

// ParseKind accepts the kind names plus a few short aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chat", "room":
		return KindChat, nil
	case "secretword", "secret", "word":
		return KindSecretWord, nil
	case "numberduel", "duel", "number":
		return KindNumberDuel, nil
	}
	return "", fmt.Errorf("unknown session kind %q", s)
}

// Session is one hosted game or room.
type Session struct {
	ID        string
	Kind      Kind
	CreatedAt time.Time

	mu         sync.Mutex
	lastAccess atomic.Int64

	room   *chat.Room
	secret *secretword.Game
	duel   *numberduel.Game
}

// Info describes a session for listings.
type Info struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
	LastAccess time.Time `json:"last_access"`
}

func (s *Session) info() Info {
	return Info{
		ID:         s.ID,
		Kind:       s.Kind,
		CreatedAt:  s.CreatedAt,
		LastAccess: time.Unix(0, s.lastAccess.Load()),
	}
}

// Option customizes a Manager.
type Option func(*Manager)

// WithMaxMessages sets the log capacity of new sessions (0 for the default).
func WithMaxMessages(n uint32) Option {
	return func(m *Manager) { m.maxMessages = n }
}

// WithIdleTTL sets how long a session may go untouched before CleanupExpired
// removes it. Zero disables expiry.
func WithIdleTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.idleTTL = ttl }
}

// WithClock overrides the clock used for access tracking and timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager manages sessions
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	bus      *events.Bus
	logger   *zap.Logger

	maxMessages uint32
	idleTTL     time.Duration
	now         func() time.Time
}

// NewManager creates a session manager publishing session events on bus.
func NewManager(bus *events.Bus, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bus == nil {
		bus = events.NewBus()
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bus returns the bus session events are published on.
func (m *Manager) Bus() *events.Bus {
	return m.bus
}

// Create starts a new session of the given kind.
func (m *Manager) Create(kind Kind) (Info, error) {
	id := uuid.New().String()
	now := m.now()
	s := &Session{ID: id, Kind: kind, CreatedAt: now}
	s.lastAccess.Store(now.UnixNano())

	emitter := m.bus.ForSession(id)
	logger := m.logger.With(zap.String("session_id", id), zap.String("kind", string(kind)))
	switch kind {
	case KindChat:
		s.room = chat.NewRoom(m.maxMessages, emitter, logger, m.now)
	case KindSecretWord:
		s.secret = secretword.New(emitter, logger,
			secretword.WithMaxMessages(m.maxMessages),
			secretword.WithClock(m.now),
		)
	case KindNumberDuel:
		s.duel = numberduel.New(emitter, logger)
	default:
		return Info{}, fmt.Errorf("unknown session kind %q", kind)
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", id),
		zap.String("kind", string(kind)),
	)
	return s.info(), nil
}

// Get returns the description of a session.
func (m *Manager) Get(id string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return Info{}, notFound(id)
	}
	return s.info(), nil
}

// WithChat runs fn against a chat session while holding its lock.
func (m *Manager) WithChat(id string, fn func(*chat.Room) error) error {
	return m.with(id, KindChat, func(s *Session) error { return fn(s.room) })
}

// WithSecretWord runs fn against a secret-word session while holding its lock.
func (m *Manager) WithSecretWord(id string, fn func(*secretword.Game) error) error {
	return m.with(id, KindSecretWord, func(s *Session) error { return fn(s.secret) })
}

// WithNumberDuel runs fn against a number-duel session while holding its lock.
func (m *Manager) WithNumberDuel(id string, fn func(*numberduel.Game) error) error {
	return m.with(id, KindNumberDuel, func(s *Session) error { return fn(s.duel) })
}

func (m *Manager) with(id string, kind Kind, fn func(*Session) error) error {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return notFound(id)
	}
	if s.Kind != kind {
		return duelerr.WithMetadata(duelerr.KindSessionKindMismatch,
			fmt.Sprintf("session is a %s session", s.Kind),
			map[string]string{"session_id": id, "kind": string(s.Kind), "requested": string(kind)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess.Store(m.now().UnixNano())
	return fn(s)
}

// Remove deletes a session. It reports whether the session existed.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	m.logger.Info("session removed", zap.String("session_id", id))
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns all sessions, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	infos := lo.MapToSlice(m.sessions, func(_ string, s *Session) Info { return s.info() })
	m.mu.RUnlock()

	slices.SortFunc(infos, func(a, b Info) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return infos
}

// CleanupExpired removes sessions idle for longer than the configured TTL
// and returns how many were removed.
func (m *Manager) CleanupExpired() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()

	expired := 0
	for id, s := range m.sessions {
		if s.lastAccess.Load() < cutoff {
			delete(m.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		m.logger.Info("cleaned up idle sessions",
			zap.Int("expired", expired),
			zap.Int("remaining", len(m.sessions)),
		)
	}
	return expired
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		m.logger.Warn("session sweeper disabled", zap.Duration("interval", interval))
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Debug("session sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			m.CleanupExpired()
		}
	}
}

func notFound(id string) error {
	return duelerr.WithMetadata(duelerr.KindSessionNotFound, "session not found",
		map[string]string{"session_id": id})
}
