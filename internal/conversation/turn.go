package conversation

// TurnState is either Idle or *Streaming.
// A Streaming value owns the chunks of exactly one reply; leaving Streaming
// drops the value, so chunks never outlive their turn.
type TurnState interface {
	isTurnState()
}

// Idle means no reply is in progress
type Idle struct{}

func (Idle) isTurnState() {}

// Streaming holds the in-progress reply
type Streaming struct {
	id     int
	chunks Reassembler
	status string
}

func (*Streaming) isTurnState() {}

func newStreaming(id int) *Streaming {
	return &Streaming{id: id}
}

// ID returns the turn number this state belongs to
func (s *Streaming) ID() int {
	return s.id
}

// Text returns the reassembled reply so far
func (s *Streaming) Text() string {
	return s.chunks.Text()
}

// Status returns the current progress label
func (s *Streaming) Status() string {
	return s.status
}

// ChunkCount returns the number of fragments received
func (s *Streaming) ChunkCount() int {
	return s.chunks.Len()
}

func (s *Streaming) setStatus(label string) {
	s.status = label
}

// addChunk stores a fragment. A non-empty fragment always changes the
// reassembled text, which invalidates the progress label.
func (s *Streaming) addChunk(text string, offset int64) {
	s.chunks.Add(text, offset)
	if text != "" {
		s.status = ""
	}
}
