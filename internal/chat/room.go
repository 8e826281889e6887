package chat

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/duelhall/duel-server-go/internal/events"
	"github.com/duelhall/duel-server-go/internal/naming"
)

// Info summarizes a room's log.
type Info struct {
	TotalMessages uint32 `json:"total_messages"`
	MaxMessages   uint32 `json:"max_messages"`
}

// Room is a plain chat session: anyone may post, and the history is a
// bounded log. Calls on one room must be serialized by the caller.
type Room struct {
	log     *Log
	emitter events.Emitter
	logger  *zap.Logger
}

// NewRoom creates an empty room with the given capacity (0 for the default).
func NewRoom(maxMessages uint32, emitter events.Emitter, logger *zap.Logger, now func() time.Time) *Room {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Room{
		log:     NewLog(maxMessages, now),
		emitter: events.OrDiscard(emitter),
		logger:  logger,
	}
}

// SendMessage validates and appends a message.
func (r *Room) SendMessage(sender, role, content string) (Entry, error) {
	trimmedSender, err := naming.ValidateSender(sender)
	if err != nil {
		return Entry{}, err
	}
	trimmedContent, err := naming.ValidateContent(content)
	if err != nil {
		return Entry{}, err
	}

	entry := r.log.Append(trimmedSender, strings.TrimSpace(role), trimmedContent)

	r.logger.Debug("chat message added",
		zap.Uint64("message_id", entry.ID),
		zap.String("sender", entry.Sender),
		zap.String("role", entry.Role),
	)

	r.emitter.Emit(events.MessageAdded{
		ID:        entry.ID,
		Sender:    entry.Sender,
		Role:      entry.Role,
		Timestamp: entry.Timestamp,
	})
	return entry, nil
}

// Messages returns a page of the history.
func (r *Room) Messages(offset, limit *uint32) []Entry {
	return r.log.Page(offset, limit)
}

// MessageByID looks up a message still held by the log.
func (r *Room) MessageByID(id uint64) (Entry, bool) {
	return r.log.Get(id)
}

// ClearHistory drops every message. Clearing an empty room is a silent no-op.
func (r *Room) ClearHistory() {
	if !r.log.Clear() {
		return
	}
	r.logger.Debug("chat history cleared")
	r.emitter.Emit(events.HistoryCleared{})
}

// SetMaxMessages changes the capacity, evicting the oldest overflow at once.
func (r *Room) SetMaxMessages(n uint32) error {
	if err := r.log.SetMaxMessages(n); err != nil {
		return err
	}
	r.logger.Debug("chat capacity updated", zap.Uint32("max_messages", n))
	r.emitter.Emit(events.MaxMessagesUpdated{MaxMessages: n})
	return nil
}

// Info reports the message count and capacity.
func (r *Room) Info() Info {
	return Info{
		TotalMessages: uint32(r.log.Len()),
		MaxMessages:   r.log.MaxMessages(),
	}
}
