package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(502, "http://localhost/chat", "stream request failed")

	expected := "API error [502] at http://localhost/chat: stream request failed"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "http://localhost/chat", "bad")
	if noStatus.Error() != "API error at http://localhost/chat: bad" {
		t.Errorf("Error() = %s", noStatus.Error())
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("open stream", "http://localhost/chat", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected NetworkError to unwrap to its cause")
	}
	if !IsNetworkError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("Expected IsNetworkError to see through wrapping")
	}
	if IsNetworkError(errors.New("plain")) {
		t.Error("Expected plain error not to be a network error")
	}
}

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout error", NewTimeoutError("slow"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", NewNetworkError("read", "", context.DeadlineExceeded), true},
		{"other", errors.New("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeoutError(tt.err); got != tt.want {
				t.Errorf("IsTimeoutError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStreamError(t *testing.T) {
	err := NewStreamError("model overloaded")
	if err.Error() != "stream error: model overloaded" {
		t.Errorf("Error() = %s", err.Error())
	}

	closed := &StreamError{Err: ErrStreamClosed}
	if !errors.Is(closed, ErrStreamClosed) {
		t.Error("Expected StreamError to unwrap to ErrStreamClosed")
	}
	if closed.Error() != "stream error: stream closed before end of turn" {
		t.Errorf("Error() = %s", closed.Error())
	}
	if !IsStreamError(closed) {
		t.Error("Expected IsStreamError to be true")
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("invalid JSON", "textChunk")
	if err.Error() != "parse error in textChunk event: invalid JSON" {
		t.Errorf("Error() = %s", err.Error())
	}
	if NewParseError("x", "").Error() != "parse error: x" {
		t.Error("unexpected message without event")
	}
}

func TestGetters(t *testing.T) {
	apiErr := NewAPIErrorWithBody(429, "http://e/chat", "limited", `{"error":"slow down"}`)
	wrapped := fmt.Errorf("turn failed: %w", apiErr)

	if got := GetHTTPStatus(wrapped); got != 429 {
		t.Errorf("GetHTTPStatus() = %d, want 429", got)
	}
	if got := GetEndpoint(wrapped); got != "http://e/chat" {
		t.Errorf("GetEndpoint() = %s", got)
	}
	if got := GetResponseBody(wrapped); got != `{"error":"slow down"}` {
		t.Errorf("GetResponseBody() = %s", got)
	}

	netErr := NewNetworkError("open stream", "http://n/chat", errors.New("reset"))
	if got := GetEndpoint(netErr); got != "http://n/chat" {
		t.Errorf("GetEndpoint() = %s", got)
	}
	if GetHTTPStatus(netErr) != 0 {
		t.Error("Expected no status on network error")
	}
}
