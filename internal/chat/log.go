// Package chat implements the capacity-bounded message log shared by every
// session type, and a plain chat room built directly on it.
package chat

import (
	"strconv"
	"time"

	"github.com/duelhall/duel-server-go/internal/duelerr"
)

const (
	// DefaultMaxMessages is the capacity of a new log.
	DefaultMaxMessages uint32 = 200
	// MaxAllowedMessages is the hard ceiling for any capacity.
	MaxAllowedMessages uint32 = 1000
	// DefaultPageSize is used when a page request carries no limit.
	DefaultPageSize uint32 = 50
)

// Entry is one timestamped message. IDs are assigned by the log.
type Entry struct {
	ID        uint64 `json:"id"`
	Sender    string `json:"sender"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp uint64 `json:"timestamp"`
}

// Log is an ordered, capacity-limited sequence of entries. Once the length
// exceeds the capacity the oldest entries are dropped in a single batch.
//
// Log does not validate sender or content; callers validate before appending.
type Log struct {
	entries     []Entry
	maxMessages uint32
	nextID      uint64
	now         func() time.Time
}

// NewLog creates an empty log. A capacity of 0 selects DefaultMaxMessages;
// a nil clock selects time.Now.
func NewLog(maxMessages uint32, now func() time.Time) *Log {
	if maxMessages == 0 {
		maxMessages = DefaultMaxMessages
	}
	if maxMessages > MaxAllowedMessages {
		maxMessages = MaxAllowedMessages
	}
	if now == nil {
		now = time.Now
	}
	return &Log{
		entries:     make([]Entry, 0),
		maxMessages: maxMessages,
		now:         now,
	}
}

// ValidateMaxMessages checks a capacity is within [1, MaxAllowedMessages].
func ValidateMaxMessages(n uint32) error {
	if n == 0 || n > MaxAllowedMessages {
		return duelerr.WithMetadata(duelerr.KindInvalidMaxMessages,
			"max messages must be between 1 and "+strconv.FormatUint(uint64(MaxAllowedMessages), 10),
			map[string]string{"requested": strconv.FormatUint(uint64(n), 10)})
	}
	return nil
}

// Append stores a new entry with the next id and the current timestamp,
// then enforces capacity.
func (l *Log) Append(sender, role, content string) Entry {
	entry := Entry{
		ID:        l.nextID,
		Sender:    sender,
		Role:      role,
		Content:   content,
		Timestamp: uint64(l.now().UnixMilli()),
	}
	l.nextID++
	l.entries = append(l.entries, entry)
	l.enforceCapacity()
	return entry
}

// Page returns up to limit entries starting at offset. A nil offset means 0
// and is clamped to the log length; a nil limit means DefaultPageSize and is
// clamped to [1, capacity].
func (l *Log) Page(offset, limit *uint32) []Entry {
	total := uint32(len(l.entries))
	start := uint32(0)
	if offset != nil {
		start = min(*offset, total)
	}
	size := DefaultPageSize
	if limit != nil {
		size = *limit
	}
	size = max(1, min(size, l.maxMessages))

	end := min(uint64(start)+uint64(size), uint64(total))
	out := make([]Entry, 0, end-uint64(start))
	return append(out, l.entries[start:end]...)
}

// Get finds an entry by id.
func (l *Log) Get(id uint64) (Entry, bool) {
	for _, entry := range l.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return Entry{}, false
}

// Clear removes all entries but keeps the id counter. It reports whether
// anything was removed.
func (l *Log) Clear() bool {
	if len(l.entries) == 0 {
		return false
	}
	l.entries = make([]Entry, 0)
	return true
}

// Reset removes all entries and restarts ids at 0.
func (l *Log) Reset() {
	l.entries = make([]Entry, 0)
	l.nextID = 0
}

// SetMaxMessages changes the capacity and evicts immediately if needed.
func (l *Log) SetMaxMessages(n uint32) error {
	if err := ValidateMaxMessages(n); err != nil {
		return err
	}
	l.maxMessages = n
	l.enforceCapacity()
	return nil
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// MaxMessages returns the current capacity.
func (l *Log) MaxMessages() uint32 {
	return l.maxMessages
}

// NextID returns the id the next appended entry will receive.
func (l *Log) NextID() uint64 {
	return l.nextID
}

func (l *Log) enforceCapacity() {
	limit := int(l.maxMessages)
	if len(l.entries) <= limit {
		return
	}
	overflow := len(l.entries) - limit
	kept := make([]Entry, limit)
	copy(kept, l.entries[overflow:])
	l.entries = kept
}
