package transport

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/streamchat/internal/conversation"
	apierrors "github.com/diogo/streamchat/internal/errors"
)

func collectFrames(t *testing.T, body string) []frame {
	t.Helper()
	var frames []frame
	err := readFrames(strings.NewReader(body), func(f frame) error {
		frames = append(frames, f)
		return nil
	})
	require.NoError(t, err)
	return frames
}

func TestReadFrames(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []frame
	}{
		{
			name: "single event",
			body: "event: textChunk\ndata: {\"chunk\":\"a\",\"offset\":0}\n\n",
			expected: []frame{
				{Event: "textChunk", Data: `{"chunk":"a","offset":0}`},
			},
		},
		{
			name: "crlf line endings",
			body: "event: endOfTurn\r\ndata: {}\r\n\r\n",
			expected: []frame{
				{Event: "endOfTurn", Data: "{}"},
			},
		},
		{
			name: "comments are skipped",
			body: ": heartbeat\n\n: another\nevent: inform\ndata: {\"message\":\"hi\"}\n\n",
			expected: []frame{
				{Event: "inform", Data: `{"message":"hi"}`},
			},
		},
		{
			name: "multi-line data is joined with newlines",
			body: "data: line one\ndata: line two\n\n",
			expected: []frame{
				{Event: "message", Data: "line one\nline two"},
			},
		},
		{
			name: "value without leading space",
			body: "event:endOfTurn\ndata:{}\n\n",
			expected: []frame{
				{Event: "endOfTurn", Data: "{}"},
			},
		},
		{
			name:     "trailing frame without blank line is dropped",
			body:     "event: inform\ndata: {\"message\":\"partial\"}\n",
			expected: nil,
		},
		{
			name: "id and retry are ignored",
			body: "id: 7\nretry: 1000\nevent: endOfTurn\ndata: {}\n\n",
			expected: []frame{
				{Event: "endOfTurn", Data: "{}"},
			},
		},
		{
			name: "event without data",
			body: "event: endOfTurn\n\n",
			expected: []frame{
				{Event: "endOfTurn", Data: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, collectFrames(t, tt.body))
		})
	}
}

func TestReadFrames_Stop(t *testing.T) {
	body := "event: a\ndata: 1\n\nevent: b\ndata: 2\n\n"

	var seen []string
	err := readFrames(strings.NewReader(body), func(f frame) error {
		seen = append(seen, f.Event)
		return errStop
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, seen)
}

func TestReadFrames_CallbackError(t *testing.T) {
	boom := errors.New("boom")
	err := readFrames(strings.NewReader("data: x\n\n"), func(frame) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name     string
		frame    frame
		expected conversation.Event
	}{
		{
			name:     "progress",
			frame:    frame{Event: "progressIndicator", Data: `{"message":"Searching"}`},
			expected: conversation.ProgressEvent{Text: "Searching"},
		},
		{
			name:     "text chunk",
			frame:    frame{Event: "textChunk", Data: `{"chunk":"Hel","offset":3}`},
			expected: conversation.ChunkEvent{Text: "Hel", Offset: 3},
		},
		{
			name:     "empty text chunk",
			frame:    frame{Event: "textChunk", Data: `{"chunk":"","offset":0}`},
			expected: conversation.ChunkEvent{Text: "", Offset: 0},
		},
		{
			name:     "inform",
			frame:    frame{Event: "inform", Data: `{"message":"Done."}`},
			expected: conversation.FinalEvent{Text: "Done."},
		},
		{
			name:     "end of turn",
			frame:    frame{Event: "endOfTurn", Data: `{}`},
			expected: conversation.EndOfTurnEvent{},
		},
		{
			name:     "end of turn without data",
			frame:    frame{Event: "endOfTurn"},
			expected: conversation.EndOfTurnEvent{},
		},
		{
			name:     "unknown event",
			frame:    frame{Event: "somethingElse", Data: `{}`},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeEvent(tt.frame)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ev)
		})
	}
}

func TestDecodeEvent_Error(t *testing.T) {
	ev, err := decodeEvent(frame{Event: "error", Data: `{"message":"quota exceeded"}`})
	require.NoError(t, err)

	failure, ok := ev.(conversation.FailureEvent)
	require.True(t, ok)
	assert.True(t, apierrors.IsStreamError(failure.Err))
	assert.Contains(t, failure.Err.Error(), "quota exceeded")
}

func TestDecodeEvent_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		frame frame
	}{
		{"invalid json", frame{Event: "textChunk", Data: `{"chunk":`}},
		{"missing chunk", frame{Event: "textChunk", Data: `{"offset":1}`}},
		{"missing offset", frame{Event: "textChunk", Data: `{"chunk":"a"}`}},
		{"invalid progress", frame{Event: "progressIndicator", Data: `not json`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeEvent(tt.frame)
			assert.Nil(t, ev)

			var parseErr *apierrors.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.frame.Event, parseErr.Event)
		})
	}
}
