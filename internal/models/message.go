package models

// Role identifies who authored a message
type Role string

const (
	RoleAI   Role = "ai"
	RoleUser Role = "user"
)

// Kind distinguishes regular replies from failure notices
type Kind string

const (
	KindNormal Kind = "normal"
	KindError  Kind = "error"
)

// Message represents a chat message for display.
// Finalized messages are never mutated; the in-progress entry is rebuilt on every change.
type Message struct {
	Role        Role
	Text        string
	StatusLabel string // Only set on the in-progress entry
	InProgress  bool
	Kind        Kind
}

// IsError reports whether the message carries a failure notice
func (m Message) IsError() bool {
	return m.Kind == KindError
}

// TextChunk is a fragment of streamed assistant text.
// Offset is used only for ordering.
type TextChunk struct {
	Text   string
	Offset int64
}
