// Package secretword implements the secret-word duel: an admin assigns a
// secret word, player one asks questions, player two answers and may guess
// the secret. Every call validates input, authorizes the caller, consults
// the stage machine and only then mutates and emits, so a failed call leaves
// the game untouched.
//
// A Game is not safe for concurrent use; the host serializes calls.
package secretword

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/duelhall/duel-server-go/internal/chat"
	"github.com/duelhall/duel-server-go/internal/duelerr"
	"github.com/duelhall/duel-server-go/internal/events"
	"github.com/duelhall/duel-server-go/internal/naming"
)

type secret struct {
	raw        string
	normalized string
}

// Game is one secret-word session.
type Game struct {
	admin          *string
	playerOne      *string
	playerTwo      *string
	secret         *secret
	stage          Stage
	lastQuestionID *uint64
	log            *chat.Log

	emitter events.Emitter
	logger  *zap.Logger
}

// Option customizes a new Game.
type Option func(*options)

type options struct {
	maxMessages uint32
	now         func() time.Time
}

// WithMaxMessages sets the initial log capacity.
func WithMaxMessages(n uint32) Option {
	return func(o *options) { o.maxMessages = n }
}

// WithClock overrides the clock used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a game in StageNotStarted.
func New(emitter events.Emitter, logger *zap.Logger, opts ...Option) *Game {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		stage:   StageNotStarted,
		log:     chat.NewLog(o.maxMessages, o.now),
		emitter: events.OrDiscard(emitter),
		logger:  logger,
	}
}

// Snapshot is a read view of the session. The secret itself is never part of it.
type Snapshot struct {
	Admin          *string `json:"admin"`
	PlayerOne      *string `json:"player_one"`
	PlayerTwo      *string `json:"player_two"`
	Stage          Stage   `json:"stage"`
	SecretSet      bool    `json:"secret_set"`
	TotalMessages  uint32  `json:"total_messages"`
	MaxMessages    uint32  `json:"max_messages"`
	NextMessageID  uint64  `json:"next_message_id"`
	LastQuestionID *uint64 `json:"last_question_id"`
	NextActor      Role    `json:"next_actor"`
}

// AnswerResult is returned by SubmitAnswer.
type AnswerResult struct {
	Entry   chat.Entry `json:"entry"`
	Correct bool       `json:"correct"`
}

// CreateGame (re)starts the game with the given cast. The admin identity
// survives re-creation: once set, only the same admin may create again.
func (g *Game) CreateGame(admin, playerOne, playerTwo string) (Snapshot, error) {
	a, err := naming.ValidateName(admin)
	if err != nil {
		return Snapshot{}, err
	}
	p1, err := naming.ValidateName(playerOne)
	if err != nil {
		return Snapshot{}, err
	}
	p2, err := naming.ValidateName(playerTwo)
	if err != nil {
		return Snapshot{}, err
	}
	if g.admin != nil && *g.admin != a {
		return Snapshot{}, duelerr.WithMetadata(duelerr.KindAdminMismatch,
			"game is administered by someone else", map[string]string{"requester": a})
	}
	next, err := transition(g.stage, actionCreate)
	if err != nil {
		return Snapshot{}, err
	}

	g.admin = &a
	g.playerOne = &p1
	g.playerTwo = &p2
	g.secret = nil
	g.lastQuestionID = nil
	g.log.Reset()

	g.logger.Info("secret-word game created",
		zap.String("admin", a),
		zap.String("player_one", p1),
		zap.String("player_two", p2),
	)

	g.emitter.Emit(events.GameCreated{Admin: a, PlayerOne: p1, PlayerTwo: p2})
	g.setStage(next)
	return g.Snapshot(), nil
}

// SetSecret stores the secret word. Only the admin may call it.
func (g *Game) SetSecret(requester, word string) (Snapshot, error) {
	r, err := naming.ValidateName(requester)
	if err != nil {
		return Snapshot{}, err
	}
	raw, err := naming.ValidateSecret(word)
	if err != nil {
		return Snapshot{}, err
	}
	if err := authorize(r, g.admin, RoleAdmin); err != nil {
		return Snapshot{}, err
	}
	next, err := transition(g.stage, actionSetSecret)
	if err != nil {
		return Snapshot{}, err
	}

	g.secret = &secret{raw: raw, normalized: naming.NormalizeWord(raw)}
	g.lastQuestionID = nil

	g.logger.Debug("secret assigned", zap.String("admin", r))
	g.emitter.Emit(events.SecretSet{})
	g.setStage(next)
	return g.Snapshot(), nil
}

// SubmitQuestion appends player one's question and hands the turn to player two.
func (g *Game) SubmitQuestion(player, content string) (chat.Entry, error) {
	p, err := naming.ValidateName(player)
	if err != nil {
		return chat.Entry{}, err
	}
	body, err := naming.ValidateContent(content)
	if err != nil {
		return chat.Entry{}, err
	}
	if g.secret == nil {
		return chat.Entry{}, secretNotSet()
	}
	if err := authorize(p, g.playerOne, RolePlayerOne); err != nil {
		return chat.Entry{}, err
	}
	next, err := transition(g.stage, actionAskQuestion)
	if err != nil {
		return chat.Entry{}, err
	}

	entry := g.log.Append(p, string(RolePlayerOne), body)
	id := entry.ID
	g.lastQuestionID = &id

	g.emitMessage(entry)
	g.setStage(next)
	return entry, nil
}

// SubmitAnswer appends player two's answer. A guess matching the secret
// completes the game; otherwise the turn returns to player one.
func (g *Game) SubmitAnswer(player, content string, guess *string) (AnswerResult, error) {
	p, err := naming.ValidateName(player)
	if err != nil {
		return AnswerResult{}, err
	}
	body, err := naming.ValidateContent(content)
	if err != nil {
		return AnswerResult{}, err
	}
	if g.secret == nil {
		return AnswerResult{}, secretNotSet()
	}
	if err := authorize(p, g.playerTwo, RolePlayerTwo); err != nil {
		return AnswerResult{}, err
	}

	correct := false
	if guess != nil {
		if normalized := naming.NormalizeWord(*guess); normalized != "" {
			correct = normalized == g.secret.normalized
		}
	}
	act := actionAnswerWrong
	if correct {
		act = actionAnswerCorrect
	}
	next, err := transition(g.stage, act)
	if err != nil {
		return AnswerResult{}, err
	}

	entry := g.log.Append(p, string(RolePlayerTwo), body)
	g.lastQuestionID = nil

	g.emitMessage(entry)
	if correct {
		g.logger.Info("secret guessed", zap.String("guesser", p))
		g.emitter.Emit(events.SecretGuessed{Guesser: p})
	}
	g.setStage(next)
	return AnswerResult{Entry: entry, Correct: correct}, nil
}

// CheckGuess reports whether guess matches the secret. It needs no
// authorization and changes nothing.
func (g *Game) CheckGuess(guess string) (bool, error) {
	if g.secret == nil {
		return false, secretNotSet()
	}
	return naming.NormalizeWord(guess) == g.secret.normalized, nil
}

// GetSecret returns the raw secret to the admin or player two. Anyone else,
// or any caller before a secret exists, gets ok == false and no error, so
// the response does not reveal who is allowed to look.
func (g *Game) GetSecret(requester string) (string, bool, error) {
	r, err := naming.ValidateName(requester)
	if err != nil {
		return "", false, err
	}
	if g.secret == nil {
		return "", false, nil
	}
	if seatedAs(r, g.admin) || seatedAs(r, g.playerTwo) {
		return g.secret.raw, true, nil
	}
	g.logger.Debug("secret withheld", zap.String("requester", r))
	return "", false, nil
}

// ClearHistory drops the log. Admin only; clearing an empty log emits nothing.
func (g *Game) ClearHistory(requester string) error {
	r, err := naming.ValidateName(requester)
	if err != nil {
		return err
	}
	if err := authorize(r, g.admin, RoleAdmin); err != nil {
		return err
	}
	if !g.log.Clear() {
		return nil
	}
	g.logger.Debug("history cleared", zap.String("admin", r))
	g.emitter.Emit(events.HistoryCleared{})
	return nil
}

// SetMaxMessages changes the log capacity. Admin only.
func (g *Game) SetMaxMessages(requester string, n uint32) error {
	r, err := naming.ValidateName(requester)
	if err != nil {
		return err
	}
	if err := chat.ValidateMaxMessages(n); err != nil {
		return err
	}
	if err := authorize(r, g.admin, RoleAdmin); err != nil {
		return err
	}
	if err := g.log.SetMaxMessages(n); err != nil {
		return err
	}
	g.logger.Debug("log capacity updated", zap.Uint32("max_messages", n))
	return nil
}

// Messages returns a page of the log.
func (g *Game) Messages(offset, limit *uint32) []chat.Entry {
	return g.log.Page(offset, limit)
}

// MessageByID returns a logged message.
func (g *Game) MessageByID(id uint64) (chat.Entry, error) {
	entry, ok := g.log.Get(id)
	if !ok {
		return chat.Entry{}, duelerr.WithMetadata(duelerr.KindMessageNotFound, "message not found",
			map[string]string{"id": strconv.FormatUint(id, 10)})
	}
	return entry, nil
}

// Stage returns the current stage.
func (g *Game) Stage() Stage {
	return g.stage
}

// Snapshot returns the current read view.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Admin:          cloneString(g.admin),
		PlayerOne:      cloneString(g.playerOne),
		PlayerTwo:      cloneString(g.playerTwo),
		Stage:          g.stage,
		SecretSet:      g.secret != nil,
		TotalMessages:  uint32(g.log.Len()),
		MaxMessages:    g.log.MaxMessages(),
		NextMessageID:  g.log.NextID(),
		LastQuestionID: cloneUint64(g.lastQuestionID),
		NextActor:      g.stage.NextActor(),
	}
}

func (g *Game) setStage(next Stage) {
	if next == g.stage {
		return
	}
	g.logger.Debug("stage changed",
		zap.Stringer("from", g.stage),
		zap.Stringer("to", next),
	)
	g.stage = next
	g.emitter.Emit(events.StageChanged{Stage: next.String()})
}

func (g *Game) emitMessage(entry chat.Entry) {
	content := entry.Content
	g.emitter.Emit(events.MessageAdded{
		ID:        entry.ID,
		Sender:    entry.Sender,
		Role:      entry.Role,
		Content:   &content,
		Timestamp: entry.Timestamp,
	})
}

func authorize(requester string, seat *string, role Role) error {
	if seat == nil {
		return setupIncomplete(string(role) + " has not been assigned")
	}
	if *seat != requester {
		return duelerr.WithMetadata(duelerr.KindUnauthorized, "caller is not the "+string(role),
			map[string]string{"requester": requester, "role": string(role)})
	}
	return nil
}

func seatedAs(requester string, seat *string) bool {
	return seat != nil && *seat == requester
}

func secretNotSet() error {
	return duelerr.New(duelerr.KindSecretNotSet, "secret has not been set")
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func cloneUint64(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
