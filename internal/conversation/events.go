package conversation

// Event is one callback from the streaming transport
type Event interface {
	isEvent()
}

// ProgressEvent updates the status label without changing the text
type ProgressEvent struct {
	Text string
}

// ChunkEvent carries a text fragment and its ordering offset
type ChunkEvent struct {
	Text   string
	Offset int64
}

// FinalEvent ends the turn with the given final text
type FinalEvent struct {
	Text string
}

// EndOfTurnEvent ends the turn without final text
type EndOfTurnEvent struct{}

// FailureEvent ends the turn because the stream failed
type FailureEvent struct {
	Err error
}

func (ProgressEvent) isEvent()  {}
func (ChunkEvent) isEvent()     {}
func (FinalEvent) isEvent()     {}
func (EndOfTurnEvent) isEvent() {}
func (FailureEvent) isEvent()   {}

// IsTerminal reports whether ev ends a turn
func IsTerminal(ev Event) bool {
	switch ev.(type) {
	case FinalEvent, EndOfTurnEvent, FailureEvent:
		return true
	default:
		return false
	}
}
