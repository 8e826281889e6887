package numberduel

import "fmt"

// Phase is the lifecycle step of a number duel. It only moves forward.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseInProgress
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhaseSetup:      "SETUP",
	PhaseInProgress: "IN_PROGRESS",
	PhaseFinished:   "FINISHED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// MarshalText renders the phase by name in JSON views.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
