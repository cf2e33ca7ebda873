// Package models contains data types and wire constants for streamchat.
package models

// Server-sent event names emitted by the streaming endpoint
const (
	EventProgressIndicator = "progressIndicator"
	EventTextChunk         = "textChunk"
	EventInform            = "inform"
	EventEndOfTurn         = "endOfTurn"
	EventError             = "error"
)

// Request headers
const (
	HeaderSessionID = "X-Session-Id"
	HeaderSequence  = "X-Sequence-Id"
)

// EntryMessageParam is the query parameter carrying a pre-filled message in a chat link
const EntryMessageParam = "message"

// DefaultWelcomeMessage is shown when no welcome text is configured
const DefaultWelcomeMessage = "Hello! How can I help you today?"

// DefaultHeaders returns the default headers for streaming requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":    "application/json",
		"Accept":          "text/event-stream",
		"Cache-Control":   "no-cache",
		"Accept-Encoding": "identity",
		"User-Agent":      "streamchat/" + Version,
	}
}

// Version is the client version (set at build time)
var Version = "0.1.0"
