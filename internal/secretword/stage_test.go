package secretword

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelhall/duel-server-go/internal/duelerr"
)

func TestStageString(t *testing.T) {
	assert.Equal(t, "NOT_STARTED", StageNotStarted.String())
	assert.Equal(t, "WAITING_FOR_ANSWER", StageWaitingForAnswer.String())
	assert.Equal(t, "COMPLETED", StageCompleted.String())
	assert.Equal(t, "STAGE_42", Stage(42).String())
}

func TestStageNextActor(t *testing.T) {
	assert.Equal(t, RoleAdmin, StageNotStarted.NextActor())
	assert.Equal(t, RoleAdmin, StageWaitingForSecret.NextActor())
	assert.Equal(t, RolePlayerOne, StageWaitingForQuestion.NextActor())
	assert.Equal(t, RolePlayerTwo, StageWaitingForAnswer.NextActor())
	assert.Equal(t, RoleAdmin, StageCompleted.NextActor())
	assert.Equal(t, RoleNone, Stage(99).NextActor())
}

func TestTransitionTable(t *testing.T) {
	allStages := []Stage{StageNotStarted, StageWaitingForSecret, StageWaitingForQuestion, StageWaitingForAnswer, StageCompleted}

	for _, from := range allStages {
		next, err := transition(from, actionCreate)
		require.NoError(t, err)
		assert.Equal(t, StageWaitingForSecret, next, "create from %s", from)
	}

	cases := []struct {
		from Stage
		act  action
		to   Stage
		kind duelerr.Kind
	}{
		{StageNotStarted, actionSetSecret, StageNotStarted, duelerr.KindGameSetupIncomplete},
		{StageWaitingForSecret, actionSetSecret, StageWaitingForQuestion, ""},
		{StageCompleted, actionSetSecret, StageWaitingForQuestion, ""},

		{StageNotStarted, actionAskQuestion, StageNotStarted, duelerr.KindGameSetupIncomplete},
		{StageWaitingForSecret, actionAskQuestion, StageWaitingForAnswer, ""},
		{StageWaitingForQuestion, actionAskQuestion, StageWaitingForAnswer, ""},
		{StageWaitingForAnswer, actionAskQuestion, StageWaitingForAnswer, duelerr.KindInvalidTurn},
		{StageCompleted, actionAskQuestion, StageCompleted, duelerr.KindInvalidTurn},

		{StageWaitingForAnswer, actionAnswerWrong, StageWaitingForQuestion, ""},
		{StageWaitingForAnswer, actionAnswerCorrect, StageCompleted, ""},
		{StageWaitingForQuestion, actionAnswerWrong, StageWaitingForQuestion, duelerr.KindInvalidTurn},
		{StageCompleted, actionAnswerCorrect, StageCompleted, duelerr.KindInvalidTurn},
	}
	for _, tc := range cases {
		next, err := transition(tc.from, tc.act)
		if tc.kind == "" {
			require.NoError(t, err, "%s via %s", tc.from, actionNames[tc.act])
		} else {
			assert.Equal(t, tc.kind, duelerr.KindOf(err), "%s via %s", tc.from, actionNames[tc.act])
		}
		assert.Equal(t, tc.to, next, "%s via %s", tc.from, actionNames[tc.act])
	}
}

func TestTransitionInvalidTurnReasons(t *testing.T) {
	_, err := transition(StageWaitingForAnswer, actionAskQuestion)
	assert.EqualError(t, err, "answer required first")

	_, err = transition(StageCompleted, actionAskQuestion)
	assert.EqualError(t, err, "restart required")

	var de *duelerr.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "COMPLETED", de.Metadata["stage"])
	assert.Equal(t, "submit_question", de.Metadata["action"])
}
