package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/duelhall/duel-server-go/internal/chat"
	"github.com/duelhall/duel-server-go/internal/duelerr"
	"github.com/duelhall/duel-server-go/internal/events"
	"github.com/duelhall/duel-server-go/internal/numberduel"
	"github.com/duelhall/duel-server-go/internal/secretword"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewManager(events.NewBus(), zaptest.NewLogger(t), opts...), clock
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"chat":       KindChat,
		" Secret ":   KindSecretWord,
		"secretword": KindSecretWord,
		"DUEL":       KindNumberDuel,
		"numberduel": KindNumberDuel,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("chess")
	assert.Error(t, err)
}

func TestCreateAndList(t *testing.T) {
	m, clock := newTestManager(t)

	first, err := m.Create(KindSecretWord)
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, err := m.Create(KindNumberDuel)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, m.Count())

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, KindNumberDuel, list[1].Kind)

	_, err = m.Create(Kind("chess"))
	assert.Error(t, err)
	assert.Equal(t, 2, m.Count())
}

func TestWithKindChecks(t *testing.T) {
	m, _ := newTestManager(t)
	info, err := m.Create(KindChat)
	require.NoError(t, err)

	err = m.WithSecretWord(info.ID, func(*secretword.Game) error { return nil })
	assert.True(t, duelerr.IsKind(err, duelerr.KindSessionKindMismatch))

	err = m.WithNumberDuel("missing", func(*numberduel.Game) error { return nil })
	assert.True(t, duelerr.IsKind(err, duelerr.KindSessionNotFound))

	_, err = m.Get("missing")
	assert.True(t, duelerr.IsKind(err, duelerr.KindSessionNotFound))

	called := false
	err = m.WithChat(info.ID, func(r *chat.Room) error {
		called = true
		_, err := r.SendMessage("alice", "user", "hi")
		return err
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestWithPropagatesDomainErrors(t *testing.T) {
	m, _ := newTestManager(t)
	info, err := m.Create(KindSecretWord)
	require.NoError(t, err)

	err = m.WithSecretWord(info.ID, func(g *secretword.Game) error {
		_, err := g.SetSecret("A", "banana")
		return err
	})
	assert.True(t, duelerr.IsKind(err, duelerr.KindGameSetupIncomplete))
}

func TestEventsAreTaggedPerSession(t *testing.T) {
	m, _ := newTestManager(t)
	var mu sync.Mutex
	var got []events.Envelope
	m.Bus().Subscribe(func(env events.Envelope) {
		mu.Lock()
		got = append(got, env)
		mu.Unlock()
	})

	a, err := m.Create(KindNumberDuel)
	require.NoError(t, err)
	b, err := m.Create(KindNumberDuel)
	require.NoError(t, err)

	require.NoError(t, m.WithNumberDuel(a.ID, func(g *numberduel.Game) error {
		_, err := g.SubmitNumber("alice", 5)
		return err
	}))
	require.NoError(t, m.WithNumberDuel(b.ID, func(g *numberduel.Game) error {
		_, err := g.RegisterPlayer("carol")
		return err
	}))

	require.Len(t, got, 3)
	assert.Equal(t, a.ID, got[0].SessionID)
	assert.Equal(t, uint64(1), got[0].Sequence)
	assert.Equal(t, a.ID, got[1].SessionID)
	assert.Equal(t, uint64(2), got[1].Sequence)
	assert.Equal(t, b.ID, got[2].SessionID)
	assert.Equal(t, uint64(1), got[2].Sequence, "sequences are per session")
	assert.Equal(t, events.PlayerRegistered{PlayerID: "carol"}, got[2].Event)
}

func TestSessionsAreIndependent(t *testing.T) {
	m, _ := newTestManager(t, WithMaxMessages(5))
	a, err := m.Create(KindChat)
	require.NoError(t, err)
	b, err := m.Create(KindChat)
	require.NoError(t, err)

	require.NoError(t, m.WithChat(a.ID, func(r *chat.Room) error {
		_, err := r.SendMessage("alice", "user", "only in a")
		return err
	}))
	require.NoError(t, m.WithChat(b.ID, func(r *chat.Room) error {
		assert.Equal(t, chat.Info{TotalMessages: 0, MaxMessages: 5}, r.Info())
		return nil
	}))
}

func TestConcurrentCallsAreSerialized(t *testing.T) {
	m, _ := newTestManager(t, WithMaxMessages(1000))
	info, err := m.Create(KindChat)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = m.WithChat(info.ID, func(r *chat.Room) error {
					_, err := r.SendMessage("bot", "user", "ping")
					return err
				})
			}
		}()
	}
	wg.Wait()

	require.NoError(t, m.WithChat(info.ID, func(r *chat.Room) error {
		assert.Equal(t, uint32(200), r.Info().TotalMessages)
		msgs := r.Messages(nil, nil)
		for i := 1; i < len(msgs); i++ {
			assert.Greater(t, msgs[i].ID, msgs[i-1].ID)
		}
		return nil
	}))
}

func TestRemove(t *testing.T) {
	m, _ := newTestManager(t)
	info, err := m.Create(KindChat)
	require.NoError(t, err)

	assert.True(t, m.Remove(info.ID))
	assert.False(t, m.Remove(info.ID))
	assert.Equal(t, 0, m.Count())
}

func TestCleanupExpired(t *testing.T) {
	m, clock := newTestManager(t, WithIdleTTL(time.Hour))
	stale, err := m.Create(KindChat)
	require.NoError(t, err)
	fresh, err := m.Create(KindSecretWord)
	require.NoError(t, err)

	clock.Advance(45 * time.Minute)
	require.NoError(t, m.WithSecretWord(fresh.ID, func(*secretword.Game) error { return nil }))
	clock.Advance(30 * time.Minute)

	assert.Equal(t, 1, m.CleanupExpired())
	_, err = m.Get(stale.ID)
	assert.True(t, duelerr.IsKind(err, duelerr.KindSessionNotFound))
	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestCleanupDisabledWithoutTTL(t *testing.T) {
	m, clock := newTestManager(t)
	_, err := m.Create(KindChat)
	require.NoError(t, err)
	clock.Advance(1000 * time.Hour)
	assert.Equal(t, 0, m.CleanupExpired())
}

func TestRunStopsOnCancel(t *testing.T) {
	m, _ := newTestManager(t, WithIdleTTL(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
