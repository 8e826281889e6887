package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/duelhall/duel-server-go/internal/duelerr"
	"github.com/duelhall/duel-server-go/internal/events"
)

func newTestRoom(t *testing.T, maxMessages uint32) (*Room, *events.Recorder) {
	t.Helper()
	rec := events.NewRecorder()
	return NewRoom(maxMessages, rec, zaptest.NewLogger(t), fixedClock()), rec
}

func TestRoomSendMessage(t *testing.T) {
	room, rec := newTestRoom(t, 0)

	entry, err := room.SendMessage("  alice ", " user ", "  hello there  ")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), entry.ID)
	assert.Equal(t, "alice", entry.Sender)
	assert.Equal(t, "user", entry.Role)
	assert.Equal(t, "hello there", entry.Content)

	require.Equal(t, 1, rec.Len())
	added, ok := rec.Events()[0].(events.MessageAdded)
	require.True(t, ok)
	assert.Equal(t, uint64(0), added.ID)
	assert.Equal(t, "alice", added.Sender)
	assert.Equal(t, "user", added.Role)
	assert.Nil(t, added.Content)
	assert.Equal(t, entry.Timestamp, added.Timestamp)
}

func TestRoomSendMessageValidation(t *testing.T) {
	room, rec := newTestRoom(t, 0)

	cases := []struct {
		sender, content string
		kind            duelerr.Kind
	}{
		{"", "hi", duelerr.KindEmptySender},
		{strings.Repeat("s", 129), "hi", duelerr.KindSenderTooLong},
		{"alice", "   ", duelerr.KindEmptyContent},
		{"alice", strings.Repeat("c", 16_385), duelerr.KindContentTooLong},
	}
	for _, tc := range cases {
		_, err := room.SendMessage(tc.sender, "user", tc.content)
		assert.True(t, duelerr.IsKind(err, tc.kind), "expected %s, got %v", tc.kind, err)
	}

	assert.Equal(t, uint32(0), room.Info().TotalMessages)
	assert.Equal(t, 0, rec.Len(), "failed calls emit nothing")
}

func TestRoomClearHistory(t *testing.T) {
	room, rec := newTestRoom(t, 0)

	room.ClearHistory()
	assert.Equal(t, 0, rec.Len(), "clearing an empty room emits nothing")

	_, err := room.SendMessage("alice", "user", "one")
	require.NoError(t, err)
	rec.Drain()

	room.ClearHistory()
	assert.Equal(t, []events.Type{events.TypeHistoryCleared}, rec.Types())
	assert.Equal(t, uint32(0), room.Info().TotalMessages)
}

func TestRoomSetMaxMessages(t *testing.T) {
	room, rec := newTestRoom(t, 10)
	for _, body := range []string{"a", "b", "c", "d"} {
		_, err := room.SendMessage("alice", "user", body)
		require.NoError(t, err)
	}
	rec.Drain()

	require.NoError(t, room.SetMaxMessages(2))
	assert.Equal(t, Info{TotalMessages: 2, MaxMessages: 2}, room.Info())
	assert.Equal(t, []events.Event{events.MaxMessagesUpdated{MaxMessages: 2}}, rec.Events())

	_, ok := room.MessageByID(1)
	assert.False(t, ok)
	msg, ok := room.MessageByID(3)
	require.True(t, ok)
	assert.Equal(t, "d", msg.Content)

	err := room.SetMaxMessages(0)
	assert.True(t, duelerr.IsKind(err, duelerr.KindInvalidMaxMessages))
	assert.Equal(t, 1, rec.Len())
}

func TestRoomMessagesPaging(t *testing.T) {
	room, _ := newTestRoom(t, 0)
	for i := 0; i < 5; i++ {
		_, err := room.SendMessage("alice", "user", "msg")
		require.NoError(t, err)
	}
	assert.Empty(t, room.Messages(u32(1000), u32(10)))
	assert.Len(t, room.Messages(u32(2), nil), 3)
}
