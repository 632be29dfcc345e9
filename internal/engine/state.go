package engine

// State is a phase of a run. A run moves Idle -> Scanning, then for every
// file Parsing -> Dispatching -> Writing, then Reporting -> Done.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateParsing
	StateDispatching
	StateWriting
	StateReporting
	StateDone
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateScanning:    "scanning",
	StateParsing:     "parsing",
	StateDispatching: "dispatching",
	StateWriting:     "writing",
	StateReporting:   "reporting",
	StateDone:        "done",
}

// String returns the lower-case state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}
