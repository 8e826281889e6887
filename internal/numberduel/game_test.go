package numberduel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/duelhall/duel-server-go/internal/duelerr"
	"github.com/duelhall/duel-server-go/internal/events"
)

func newTestGame(t *testing.T) (*Game, *events.Recorder) {
	t.Helper()
	rec := events.NewRecorder()
	return New(rec, zaptest.NewLogger(t)), rec
}

// readyGame returns a duel where alice submitted a and bob submitted b.
func readyGame(t *testing.T, a, b int64) (*Game, *events.Recorder) {
	t.Helper()
	g, rec := newTestGame(t)
	_, err := g.SubmitNumber("alice", a)
	require.NoError(t, err)
	_, err = g.SubmitNumber("bob", b)
	require.NoError(t, err)
	rec.Drain()
	return g, rec
}

func name(s string) *string { return &s }

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "SETUP", PhaseSetup.String())
	assert.Equal(t, "IN_PROGRESS", PhaseInProgress.String())
	assert.Equal(t, "FINISHED", PhaseFinished.String())
	assert.Equal(t, "PHASE_9", Phase(9).String())
}

func TestSubmitNumberStartsDuel(t *testing.T) {
	g, rec := newTestGame(t)

	view, err := g.SubmitNumber("alice", 5)
	require.NoError(t, err)
	assert.Equal(t, PhaseSetup, view.Phase)
	assert.Nil(t, view.CurrentTurn)
	require.Len(t, view.Players, 1)
	assert.True(t, view.Players[0].Submitted)
	assert.Nil(t, view.Players[0].Number, "own number stays hidden")

	view, err = g.SubmitNumber(" bob ", 9)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, view.Phase)
	require.NotNil(t, view.CurrentTurn)
	assert.Equal(t, "alice", *view.CurrentTurn, "first-joined player acts first")

	assert.Equal(t, []events.Event{
		events.PlayerRegistered{PlayerID: "alice"},
		events.NumberSubmitted{PlayerID: "alice"},
		events.PlayerRegistered{PlayerID: "bob"},
		events.NumberSubmitted{PlayerID: "bob"},
		events.TurnChanged{PlayerID: name("alice")},
	}, rec.Events())
}

func TestSubmitNumberErrors(t *testing.T) {
	g, rec := newTestGame(t)
	_, err := g.SubmitNumber("alice", 1)
	require.NoError(t, err)
	rec.Drain()

	_, err = g.SubmitNumber("alice", 2)
	assert.True(t, duelerr.IsKind(err, duelerr.KindNumberAlreadySubmitted))

	_, err = g.SubmitNumber("", 2)
	assert.True(t, duelerr.IsKind(err, duelerr.KindEmptyName))

	_, err = g.SubmitNumber("bob", 2)
	require.NoError(t, err)
	rec.Drain()

	_, err = g.SubmitNumber("carol", 3)
	assert.True(t, duelerr.IsKind(err, duelerr.KindInvalidPhase), "setup is over")
	_, err = g.SubmitNumber("bob", 3)
	assert.True(t, duelerr.IsKind(err, duelerr.KindInvalidPhase))
	assert.Equal(t, 0, rec.Len())
}

func TestRegisterPlayer(t *testing.T) {
	g, rec := newTestGame(t)

	view, err := g.RegisterPlayer("alice")
	require.NoError(t, err)
	require.Len(t, view.Players, 1)
	assert.False(t, view.Players[0].Submitted)

	_, err = g.RegisterPlayer("alice")
	require.NoError(t, err)
	_, err = g.RegisterPlayer("bob")
	require.NoError(t, err)
	assert.Equal(t, []events.Type{events.TypePlayerRegistered, events.TypePlayerRegistered}, rec.Types())

	_, err = g.RegisterPlayer("carol")
	assert.True(t, duelerr.IsKind(err, duelerr.KindGameFull))
	_, err = g.SubmitNumber("carol", 4)
	assert.True(t, duelerr.IsKind(err, duelerr.KindGameFull))
	assert.Len(t, g.View().Players, 2)
	rec.Drain()

	// Registered players submit without a second registration event.
	_, err = g.SubmitNumber("bob", 4)
	require.NoError(t, err)
	view, err = g.SubmitNumber("alice", 8)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, view.Phase)
	assert.Equal(t, "alice", *view.CurrentTurn, "turn follows join order, not submit order")
	assert.Equal(t, []events.Type{
		events.TypeNumberSubmitted,
		events.TypeNumberSubmitted,
		events.TypeTurnChanged,
	}, rec.Types())

	_, err = g.RegisterPlayer("alice")
	assert.True(t, duelerr.IsKind(err, duelerr.KindInvalidPhase))
}

func TestDiscoverDuringSetup(t *testing.T) {
	g, rec := newTestGame(t)
	_, err := g.DiscoverNumber("alice")
	assert.True(t, duelerr.IsKind(err, duelerr.KindNotEnoughPlayers))

	_, err = g.SubmitNumber("alice", 3)
	require.NoError(t, err)
	rec.Drain()
	_, err = g.DiscoverNumber("alice")
	assert.True(t, duelerr.IsKind(err, duelerr.KindNotEnoughPlayers))
	assert.Equal(t, 0, rec.Len())
}

func TestTurnAlternation(t *testing.T) {
	g, rec := readyGame(t, 5, 9)

	_, err := g.DiscoverNumber("bob")
	require.True(t, duelerr.IsKind(err, duelerr.KindNotYourTurn))
	var de *duelerr.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "alice", de.Metadata["expected"])

	_, err = g.DiscoverNumber("mallory")
	assert.True(t, duelerr.IsKind(err, duelerr.KindPlayerUnknown))
	assert.Equal(t, 0, rec.Len())

	d, err := g.DiscoverNumber("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(9), d.Value)
	assert.Equal(t, PhaseInProgress, d.View.Phase)
	require.NotNil(t, d.View.CurrentTurn)
	assert.Equal(t, "bob", *d.View.CurrentTurn)
	assert.Equal(t, []events.Event{
		events.NumberDiscovered{PlayerID: "alice", TargetID: "bob", Value: 9},
		events.TurnChanged{PlayerID: name("bob")},
	}, rec.Drain())

	// Bob's number is now visible; alice's is not.
	assert.Nil(t, d.View.Players[0].Number)
	require.NotNil(t, d.View.Players[1].Number)
	assert.Equal(t, int64(9), *d.View.Players[1].Number)

	_, err = g.DiscoverNumber("alice")
	assert.True(t, duelerr.IsKind(err, duelerr.KindNotYourTurn))
}

func TestHigherNumberWins(t *testing.T) {
	g, rec := readyGame(t, 5, 9)

	_, err := g.DiscoverNumber("alice")
	require.NoError(t, err)
	rec.Drain()

	d, err := g.DiscoverNumber("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(5), d.Value)
	assert.Equal(t, PhaseFinished, d.View.Phase)
	assert.Nil(t, d.View.CurrentTurn)
	require.NotNil(t, d.View.Winner)
	assert.Equal(t, "bob", *d.View.Winner)

	for _, p := range d.View.Players {
		assert.NotNil(t, p.Number, "all numbers shown once finished")
		assert.True(t, p.Discovered)
	}

	assert.Equal(t, []events.Event{
		events.NumberDiscovered{PlayerID: "bob", TargetID: "alice", Value: 5},
		events.TurnChanged{PlayerID: nil},
		events.GameFinished{Winner: name("bob")},
	}, rec.Events())
}

func TestFirstPlayerCanWin(t *testing.T) {
	g, _ := readyGame(t, 12, -4)
	_, err := g.DiscoverNumber("alice")
	require.NoError(t, err)
	d, err := g.DiscoverNumber("bob")
	require.NoError(t, err)
	require.NotNil(t, d.View.Winner)
	assert.Equal(t, "alice", *d.View.Winner)
}

func TestEqualNumbersDraw(t *testing.T) {
	g, rec := readyGame(t, 7, 7)
	_, err := g.DiscoverNumber("alice")
	require.NoError(t, err)
	d, err := g.DiscoverNumber("bob")
	require.NoError(t, err)

	assert.Equal(t, PhaseFinished, d.View.Phase)
	assert.Nil(t, d.View.Winner)
	finished, ok := rec.Events()[len(rec.Events())-1].(events.GameFinished)
	require.True(t, ok)
	assert.Nil(t, finished.Winner)
}

func TestDiscoverAfterFinish(t *testing.T) {
	g, rec := readyGame(t, 1, 2)
	_, err := g.DiscoverNumber("alice")
	require.NoError(t, err)
	_, err = g.DiscoverNumber("bob")
	require.NoError(t, err)
	rec.Drain()

	for _, who := range []string{"alice", "bob", "mallory"} {
		_, err = g.DiscoverNumber(who)
		assert.True(t, duelerr.IsKind(err, duelerr.KindGameFinished), who)
	}
	_, err = g.SubmitNumber("alice", 3)
	assert.True(t, duelerr.IsKind(err, duelerr.KindInvalidPhase))
	assert.Equal(t, 0, rec.Len())
	assert.Equal(t, PhaseFinished, g.Phase())
}

func TestViewIsDetached(t *testing.T) {
	g, _ := readyGame(t, 1, 2)
	_, err := g.DiscoverNumber("alice")
	require.NoError(t, err)

	view := g.View()
	*view.Players[1].Number = 100
	*view.CurrentTurn = "alice"

	again := g.View()
	assert.Equal(t, int64(2), *again.Players[1].Number)
	assert.Equal(t, "bob", *again.CurrentTurn)
}
