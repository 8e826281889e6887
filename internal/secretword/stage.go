package secretword

import (
	"fmt"

	"github.com/duelhall/duel-server-go/internal/duelerr"
)

// Stage is the current step of the secret-word protocol.
type Stage int

const (
	StageNotStarted Stage = iota
	StageWaitingForSecret
	StageWaitingForQuestion
	StageWaitingForAnswer
	StageCompleted
)

var stageNames = map[Stage]string{
	StageNotStarted:         "NOT_STARTED",
	StageWaitingForSecret:   "WAITING_FOR_SECRET",
	StageWaitingForQuestion: "WAITING_FOR_QUESTION",
	StageWaitingForAnswer:   "WAITING_FOR_ANSWER",
	StageCompleted:          "COMPLETED",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STAGE_%d", int(s))
}

// Role names a seat in the session. It also tags log entries.
type Role string

const (
	RoleNone      Role = ""
	RoleAdmin     Role = "admin"
	RolePlayerOne Role = "player_one"
	RolePlayerTwo Role = "player_two"
)

// NextActor reports who must act next. It depends only on the stage.
func (s Stage) NextActor() Role {
	switch s {
	case StageNotStarted, StageWaitingForSecret, StageCompleted:
		return RoleAdmin
	case StageWaitingForQuestion:
		return RolePlayerOne
	case StageWaitingForAnswer:
		return RolePlayerTwo
	default:
		return RoleNone
	}
}

type action int

const (
	actionCreate action = iota
	actionSetSecret
	actionAskQuestion
	actionAnswerWrong
	actionAnswerCorrect
)

var actionNames = map[action]string{
	actionCreate:        "create_game",
	actionSetSecret:     "set_secret",
	actionAskQuestion:   "submit_question",
	actionAnswerWrong:   "submit_answer",
	actionAnswerCorrect: "submit_answer",
}

// transition is the stage machine. Authorization has already been checked
// by the caller; this only decides whether the action is legal in stage.
func transition(stage Stage, act action) (Stage, error) {
	switch act {
	case actionCreate:
		return StageWaitingForSecret, nil

	case actionSetSecret:
		// The admin may (re)assign the secret at any point after creation.
		if stage == StageNotStarted {
			return stage, setupIncomplete("game has not been created")
		}
		return StageWaitingForQuestion, nil

	case actionAskQuestion:
		switch stage {
		case StageWaitingForQuestion, StageWaitingForSecret:
			return StageWaitingForAnswer, nil
		case StageWaitingForAnswer:
			return stage, invalidTurn(stage, act, "answer required first")
		case StageCompleted:
			return stage, invalidTurn(stage, act, "restart required")
		default:
			return stage, setupIncomplete("game has not been created")
		}

	case actionAnswerWrong, actionAnswerCorrect:
		if stage != StageWaitingForAnswer {
			return stage, invalidTurn(stage, act, "question required first")
		}
		if act == actionAnswerCorrect {
			return StageCompleted, nil
		}
		return StageWaitingForQuestion, nil
	}
	return stage, fmt.Errorf("unknown action %d", act)
}

func invalidTurn(stage Stage, act action, reason string) error {
	return duelerr.WithMetadata(duelerr.KindInvalidTurn, reason, map[string]string{
		"stage":  stage.String(),
		"action": actionNames[act],
	})
}

func setupIncomplete(reason string) error {
	return duelerr.New(duelerr.KindGameSetupIncomplete, reason)
}
