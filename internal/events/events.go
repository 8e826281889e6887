package events

import "fmt"

// Type indicates the kind of a session event.
type Type string

const (
	// Log events
	TypeMessageAdded       Type = "MESSAGE_ADDED"
	TypeHistoryCleared     Type = "HISTORY_CLEARED"
	TypeMaxMessagesUpdated Type = "MAX_MESSAGES_UPDATED"

	// Secret-word duel events
	TypeGameCreated   Type = "GAME_CREATED"
	TypeSecretSet     Type = "SECRET_SET"
	TypeSecretGuessed Type = "SECRET_GUESSED"
	TypeStageChanged  Type = "STAGE_CHANGED"

	// Number duel events
	TypePlayerRegistered Type = "PLAYER_REGISTERED"
	TypeNumberSubmitted  Type = "NUMBER_SUBMITTED"
	TypeNumberDiscovered Type = "NUMBER_DISCOVERED"
	TypeTurnChanged      Type = "TURN_CHANGED"
	TypeGameFinished     Type = "GAME_FINISHED"
)

// Event is a state change notification. Each concrete payload below is one
// variant; switch on the dynamic type or on EventType().
type Event interface {
	EventType() Type
}

// MessageAdded is emitted after an entry is appended to a session log.
// Content is nil when the emitter chooses not to repeat the body.
type MessageAdded struct {
	ID        uint64
	Sender    string
	Role      string
	Content   *string
	Timestamp uint64
}

// HistoryCleared is emitted when a non-empty log is cleared.
type HistoryCleared struct{}

// MaxMessagesUpdated is emitted when a chat room's capacity changes.
type MaxMessagesUpdated struct {
	MaxMessages uint32
}

// GameCreated is emitted when a secret-word game is (re)created.
type GameCreated struct {
	Admin     string
	PlayerOne string
	PlayerTwo string
}

// SecretSet is emitted when the admin assigns the secret. The secret itself
// is never part of an event.
type SecretSet struct{}

// SecretGuessed is emitted when player two guesses the secret.
type SecretGuessed struct {
	Guesser string
}

// StageChanged is emitted after every secret-word stage transition.
type StageChanged struct {
	Stage string
}

// PlayerRegistered is emitted when a new duelist joins the roster.
type PlayerRegistered struct {
	PlayerID string
}

// NumberSubmitted is emitted when a duelist locks in a number.
type NumberSubmitted struct {
	PlayerID string
}

// NumberDiscovered is emitted when PlayerID reveals TargetID's number.
type NumberDiscovered struct {
	PlayerID string
	TargetID string
	Value    int64
}

// TurnChanged is emitted when the turn moves. PlayerID is nil once no one
// holds the turn.
type TurnChanged struct {
	PlayerID *string
}

// GameFinished is emitted when a duel ends. Winner is nil on a draw.
type GameFinished struct {
	Winner *string
}

func (MessageAdded) EventType() Type       { return TypeMessageAdded }
func (HistoryCleared) EventType() Type     { return TypeHistoryCleared }
func (MaxMessagesUpdated) EventType() Type { return TypeMaxMessagesUpdated }
func (GameCreated) EventType() Type        { return TypeGameCreated }
func (SecretSet) EventType() Type          { return TypeSecretSet }
func (SecretGuessed) EventType() Type      { return TypeSecretGuessed }
func (StageChanged) EventType() Type       { return TypeStageChanged }
func (PlayerRegistered) EventType() Type   { return TypePlayerRegistered }
func (NumberSubmitted) EventType() Type    { return TypeNumberSubmitted }
func (NumberDiscovered) EventType() Type   { return TypeNumberDiscovered }
func (TurnChanged) EventType() Type        { return TypeTurnChanged }
func (GameFinished) EventType() Type       { return TypeGameFinished }

// Describe renders an event as a single human-readable line.
func Describe(evt Event) string {
	switch e := evt.(type) {
	case MessageAdded:
		return fmt.Sprintf("%s id=%d sender=%s role=%s", e.EventType(), e.ID, e.Sender, e.Role)
	case MaxMessagesUpdated:
		return fmt.Sprintf("%s max_messages=%d", e.EventType(), e.MaxMessages)
	case GameCreated:
		return fmt.Sprintf("%s admin=%s player_one=%s player_two=%s", e.EventType(), e.Admin, e.PlayerOne, e.PlayerTwo)
	case SecretGuessed:
		return fmt.Sprintf("%s guesser=%s", e.EventType(), e.Guesser)
	case StageChanged:
		return fmt.Sprintf("%s stage=%s", e.EventType(), e.Stage)
	case PlayerRegistered:
		return fmt.Sprintf("%s player_id=%s", e.EventType(), e.PlayerID)
	case NumberSubmitted:
		return fmt.Sprintf("%s player_id=%s", e.EventType(), e.PlayerID)
	case NumberDiscovered:
		return fmt.Sprintf("%s player_id=%s target_id=%s value=%d", e.EventType(), e.PlayerID, e.TargetID, e.Value)
	case TurnChanged:
		return fmt.Sprintf("%s player_id=%s", e.EventType(), optional(e.PlayerID))
	case GameFinished:
		return fmt.Sprintf("%s winner=%s", e.EventType(), optional(e.Winner))
	case nil:
		return "<nil>"
	default:
		return string(evt.EventType())
	}
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
