// Package numberduel implements the two-player number-discovery duel. Each
// duelist locks in a number during setup, then they take turns revealing the
// opponent's number. Once both have discovered each other the larger number
// wins; equal numbers are a draw.
//
// A Game is not safe for concurrent use; the host serializes calls.
package numberduel

import (
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/duelhall/duel-server-go/internal/duelerr"
	"github.com/duelhall/duel-server-go/internal/events"
	"github.com/duelhall/duel-server-go/internal/naming"
)

// MaxPlayers is the roster size of a duel.
const MaxPlayers = 2

type playerEntry struct {
	id         string
	number     *int64
	discovered bool
}

// Game is one number-duel session.
type Game struct {
	players []*playerEntry
	phase   Phase
	turn    *int
	winner  *string

	emitter events.Emitter
	logger  *zap.Logger
}

// PlayerView is a roster entry as shown to callers. Number stays nil until
// the opponent discovers it or the game finishes.
type PlayerView struct {
	ID         string `json:"id"`
	Number     *int64 `json:"number"`
	Submitted  bool   `json:"submitted"`
	Discovered bool   `json:"discovered"`
}

// View is the public state of a duel.
type View struct {
	Players     []PlayerView `json:"players"`
	Phase       Phase        `json:"phase"`
	CurrentTurn *string      `json:"current_turn"`
	Winner      *string      `json:"winner"`
}

// Discovery is returned by DiscoverNumber.
type Discovery struct {
	Value int64 `json:"value"`
	View  View  `json:"view"`
}

// New creates an empty duel in PhaseSetup.
func New(emitter events.Emitter, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		phase:   PhaseSetup,
		emitter: events.OrDiscard(emitter),
		logger:  logger,
	}
}

// RegisterPlayer seats a duelist without a number. Registering a known
// player again is a no-op.
func (g *Game) RegisterPlayer(playerID string) (View, error) {
	id, err := naming.ValidateName(playerID)
	if err != nil {
		return View{}, err
	}
	if err := g.requireSetup(); err != nil {
		return View{}, err
	}
	if _, ok := g.find(id); ok {
		return g.View(), nil
	}
	if len(g.players) >= MaxPlayers {
		return View{}, gameFull(id)
	}

	g.players = append(g.players, &playerEntry{id: id})
	g.logger.Info("duelist registered", zap.String("player_id", id))
	g.emitter.Emit(events.PlayerRegistered{PlayerID: id})
	return g.View(), nil
}

// SubmitNumber locks in a player's number, registering the player first if
// needed. Numbers are write-once. The second submission starts the duel.
func (g *Game) SubmitNumber(playerID string, number int64) (View, error) {
	id, err := naming.ValidateName(playerID)
	if err != nil {
		return View{}, err
	}
	if err := g.requireSetup(); err != nil {
		return View{}, err
	}
	entry, known := g.find(id)
	if !known && len(g.players) >= MaxPlayers {
		return View{}, gameFull(id)
	}
	if known && entry.number != nil {
		return View{}, duelerr.WithMetadata(duelerr.KindNumberAlreadySubmitted,
			"number already submitted", map[string]string{"player_id": id})
	}

	if !known {
		entry = &playerEntry{id: id}
		g.players = append(g.players, entry)
		g.emitter.Emit(events.PlayerRegistered{PlayerID: id})
	}
	n := number
	entry.number = &n
	g.logger.Debug("number submitted", zap.String("player_id", id))
	g.emitter.Emit(events.NumberSubmitted{PlayerID: id})

	if g.ready() {
		g.phase = PhaseInProgress
		g.logger.Info("duel started",
			zap.String("first", g.players[0].id),
			zap.String("second", g.players[1].id),
		)
		if g.turn == nil {
			g.setTurn(0)
		}
	}
	return g.View(), nil
}

// DiscoverNumber reveals the opponent's number to the player holding the
// turn. When both players have discovered each other the duel finishes.
func (g *Game) DiscoverNumber(playerID string) (Discovery, error) {
	id, err := naming.ValidateName(playerID)
	if err != nil {
		return Discovery{}, err
	}
	switch g.phase {
	case PhaseSetup:
		return Discovery{}, duelerr.New(duelerr.KindNotEnoughPlayers, "both players must submit a number first")
	case PhaseFinished:
		return Discovery{}, duelerr.New(duelerr.KindGameFinished, "duel is already finished")
	}
	if !g.ready() || g.turn == nil {
		return Discovery{}, duelerr.New(duelerr.KindNotEnoughPlayers, "roster is not ready")
	}
	if _, ok := g.find(id); !ok {
		return Discovery{}, duelerr.WithMetadata(duelerr.KindPlayerUnknown, "player is not in this duel",
			map[string]string{"player_id": id})
	}
	current := *g.turn
	caller := g.players[current]
	if caller.id != id {
		return Discovery{}, duelerr.WithMetadata(duelerr.KindNotYourTurn, "it is "+caller.id+"'s turn",
			map[string]string{"player_id": id, "expected": caller.id})
	}
	if caller.discovered {
		return Discovery{}, duelerr.WithMetadata(duelerr.KindAlreadyDiscovered, "opponent already discovered",
			map[string]string{"player_id": id})
	}
	opponentIdx := 1 - current
	opponent := g.players[opponentIdx]
	value := *opponent.number

	caller.discovered = true
	g.logger.Debug("number discovered",
		zap.String("player_id", caller.id),
		zap.String("target_id", opponent.id),
	)
	g.emitter.Emit(events.NumberDiscovered{PlayerID: caller.id, TargetID: opponent.id, Value: value})

	if opponent.discovered {
		g.finish()
	} else {
		g.setTurn(opponentIdx)
	}
	return Discovery{Value: value, View: g.View()}, nil
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	return g.phase
}

// View returns the public state. Numbers are withheld until earned.
func (g *Game) View() View {
	finished := g.phase == PhaseFinished
	players := lo.Map(g.players, func(p *playerEntry, idx int) PlayerView {
		pv := PlayerView{
			ID:         p.id,
			Submitted:  p.number != nil,
			Discovered: p.discovered,
		}
		if p.number != nil && (finished || g.discoveredBy(1-idx)) {
			n := *p.number
			pv.Number = &n
		}
		return pv
	})

	var turn *string
	if g.turn != nil {
		turn = lo.ToPtr(g.players[*g.turn].id)
	}
	var winner *string
	if g.winner != nil {
		winner = lo.ToPtr(*g.winner)
	}
	return View{Players: players, Phase: g.phase, CurrentTurn: turn, Winner: winner}
}

func (g *Game) finish() {
	g.phase = PhaseFinished
	g.turn = nil
	g.winner = g.decideWinner()

	if g.winner != nil {
		g.logger.Info("duel finished", zap.String("winner", *g.winner))
	} else {
		g.logger.Info("duel finished in a draw")
	}
	var winner *string
	if g.winner != nil {
		winner = lo.ToPtr(*g.winner)
	}
	g.emitter.Emit(events.TurnChanged{PlayerID: nil})
	g.emitter.Emit(events.GameFinished{Winner: winner})
}

func (g *Game) decideWinner() *string {
	a, b := g.players[0], g.players[1]
	switch {
	case *a.number > *b.number:
		return lo.ToPtr(a.id)
	case *b.number > *a.number:
		return lo.ToPtr(b.id)
	default:
		return nil
	}
}

func (g *Game) setTurn(idx int) {
	g.turn = &idx
	g.emitter.Emit(events.TurnChanged{PlayerID: lo.ToPtr(g.players[idx].id)})
}

func (g *Game) requireSetup() error {
	if g.phase != PhaseSetup {
		return duelerr.WithMetadata(duelerr.KindInvalidPhase, "registration is closed",
			map[string]string{"phase": g.phase.String()})
	}
	return nil
}

func (g *Game) ready() bool {
	if len(g.players) != MaxPlayers {
		return false
	}
	return lo.EveryBy(g.players, func(p *playerEntry) bool { return p.number != nil })
}

func (g *Game) discoveredBy(idx int) bool {
	return idx >= 0 && idx < len(g.players) && g.players[idx].discovered
}

func (g *Game) find(id string) (*playerEntry, bool) {
	return lo.Find(g.players, func(p *playerEntry) bool { return p.id == id })
}

func gameFull(id string) error {
	return duelerr.WithMetadata(duelerr.KindGameFull, "duel already has two players",
		map[string]string{"player_id": id})
}
