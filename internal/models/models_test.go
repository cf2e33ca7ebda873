package models

import "testing"

func TestMessageIsError(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"normal", Message{Role: RoleAI, Text: "hi", Kind: KindNormal}, false},
		{"zero kind", Message{Role: RoleAI, Text: "hi"}, false},
		{"error", Message{Role: RoleAI, Text: "boom", Kind: KindError}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.IsError(); got != tt.want {
				t.Errorf("IsError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultHeaders(t *testing.T) {
	headers := DefaultHeaders()

	if headers["Accept"] != "text/event-stream" {
		t.Errorf("Accept = %q, want text/event-stream", headers["Accept"])
	}
	if headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", headers["Content-Type"])
	}
	if headers["User-Agent"] != "streamchat/"+Version {
		t.Errorf("User-Agent = %q", headers["User-Agent"])
	}
}
