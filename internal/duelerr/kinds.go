package duelerr

import "google.golang.org/grpc/codes"

// Kind is a machine-readable error kind.
type Kind string

const (
	KindUnknown Kind = "UNKNOWN"

	// Validation
	KindEmptyName           Kind = "EMPTY_NAME"
	KindNameTooLong         Kind = "NAME_TOO_LONG"
	KindEmptySender         Kind = "EMPTY_SENDER"
	KindSenderTooLong       Kind = "SENDER_TOO_LONG"
	KindEmptyContent        Kind = "EMPTY_CONTENT"
	KindContentTooLong      Kind = "CONTENT_TOO_LONG"
	KindInvalidSecretFormat Kind = "INVALID_SECRET_FORMAT"
	KindInvalidMaxMessages  Kind = "INVALID_MAX_MESSAGES"

	// Authorization
	KindUnauthorized  Kind = "UNAUTHORIZED"
	KindAdminMismatch Kind = "ADMIN_MISMATCH"

	// Setup / state
	KindGameSetupIncomplete    Kind = "GAME_SETUP_INCOMPLETE"
	KindSecretNotSet           Kind = "SECRET_NOT_SET"
	KindNotEnoughPlayers       Kind = "NOT_ENOUGH_PLAYERS"
	KindGameFull               Kind = "GAME_FULL"
	KindNumberAlreadySubmitted Kind = "NUMBER_ALREADY_SUBMITTED"

	// Turn / phase
	KindInvalidTurn       Kind = "INVALID_TURN"
	KindInvalidPhase      Kind = "INVALID_PHASE"
	KindNotYourTurn       Kind = "NOT_YOUR_TURN"
	KindAlreadyDiscovered Kind = "ALREADY_DISCOVERED"
	KindGameFinished      Kind = "GAME_FINISHED"

	// Lookup
	KindMessageNotFound Kind = "MESSAGE_NOT_FOUND"
	KindPlayerUnknown   Kind = "PLAYER_UNKNOWN"

	// Session host
	KindSessionNotFound     Kind = "SESSION_NOT_FOUND"
	KindSessionKindMismatch Kind = "SESSION_KIND_MISMATCH"
)

// Group classifies kinds the way callers usually branch on them.
type Group string

const (
	GroupValidation    Group = "validation"
	GroupAuthorization Group = "authorization"
	GroupSetup         Group = "setup"
	GroupTurn          Group = "turn"
	GroupLookup        Group = "lookup"
	GroupUnknown       Group = "unknown"
)

// Group returns the category the kind belongs to.
func (k Kind) Group() Group {
	switch k {
	case KindEmptyName, KindNameTooLong, KindEmptySender, KindSenderTooLong,
		KindEmptyContent, KindContentTooLong, KindInvalidSecretFormat, KindInvalidMaxMessages:
		return GroupValidation
	case KindUnauthorized, KindAdminMismatch:
		return GroupAuthorization
	case KindGameSetupIncomplete, KindSecretNotSet, KindNotEnoughPlayers,
		KindGameFull, KindNumberAlreadySubmitted:
		return GroupSetup
	case KindInvalidTurn, KindInvalidPhase, KindNotYourTurn, KindAlreadyDiscovered, KindGameFinished:
		return GroupTurn
	case KindMessageNotFound, KindPlayerUnknown, KindSessionNotFound, KindSessionKindMismatch:
		return GroupLookup
	default:
		return GroupUnknown
	}
}

// GRPCCode maps the kind to the status code an RPC layer should return.
func (k Kind) GRPCCode() codes.Code {
	switch k.Group() {
	case GroupValidation:
		return codes.InvalidArgument
	case GroupAuthorization:
		return codes.PermissionDenied
	case GroupSetup, GroupTurn:
		if k == KindGameFull {
			return codes.ResourceExhausted
		}
		return codes.FailedPrecondition
	case GroupLookup:
		return codes.NotFound
	default:
		return codes.Unknown
	}
}
