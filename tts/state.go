package tts

// RunState identifies the phase a synthesis run is in. Runs move
// strictly forward through Validating, Detecting, Chunking,
// Dispatching and Assembling, ending in Done or Aborted.
type RunState int

const (
	// StateValidating checks the input ceilings and the voice hint.
	StateValidating RunState = iota
	// StateDetecting classifies the input language.
	StateDetecting
	// StateChunking partitions the input into segments.
	StateChunking
	// StateDispatching sends segments to the backend, in order.
	StateDispatching
	// StateAssembling concatenates the returned audio.
	StateAssembling
	// StateDone is the successful terminal state.
	StateDone
	// StateAborted is the failed terminal state.
	StateAborted
)

// String returns the state's log-friendly name.
func (s RunState) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateDetecting:
		return "detecting"
	case StateChunking:
		return "chunking"
	case StateDispatching:
		return "dispatching"
	case StateAssembling:
		return "assembling"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ProgressEvent describes one step of a run: a state transition, or
// one completed segment while dispatching.
type ProgressEvent struct {
	State    RunState
	Segment  int    // 1-based index of the segment just finished, 0 otherwise
	Total    int    // total segment count, 0 before chunking
	Failures int    // failures accumulated so far
	Reason   string // failure reason for the segment, "" on success
}

// ProgressFunc receives run progress. Callbacks run on the goroutine
// driving Synthesize; keep them fast and non-blocking.
type ProgressFunc func(ProgressEvent)
