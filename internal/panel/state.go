package panel

// State is the controller's position in the generate or commit flow
type State int

const (
	StateIdle State = iota
	StateValidating
	StateCheckingPreconditions
	StateDiffing
	StateGenerating
	StateDisplayingResult
	StateCommitting
)

var stateNames = [...]string{
	StateIdle:                  "idle",
	StateValidating:            "validating",
	StateCheckingPreconditions: "checking-preconditions",
	StateDiffing:               "diffing",
	StateGenerating:            "generating",
	StateDisplayingResult:      "displaying-result",
	StateCommitting:            "committing",
}

// String returns the state name
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
