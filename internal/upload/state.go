package upload

// State is a step of the per-request ingestion state machine.
//
//	AwaitingPart -> StreamingChunks -> PartComplete -> AwaitingPart ...
//	AwaitingPart -> RequestComplete
//	any non-terminal state -> Failed
type State int

const (
	StateAwaitingPart State = iota
	StateStreamingChunks
	StatePartComplete
	StateRequestComplete
	StateFailed
)

var stateNames = [...]string{
	StateAwaitingPart:    "awaiting_part",
	StateStreamingChunks: "streaming_chunks",
	StatePartComplete:    "part_complete",
	StateRequestComplete: "request_complete",
	StateFailed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == StateRequestComplete || s == StateFailed
}
