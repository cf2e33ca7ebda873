package conversation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/diogo/streamchat/internal/errors"
	"github.com/diogo/streamchat/internal/models"
)

func ai(text string) models.Message {
	return models.Message{Role: models.RoleAI, Text: text, Kind: models.KindNormal}
}

func user(text string) models.Message {
	return models.Message{Role: models.RoleUser, Text: text, Kind: models.KindNormal}
}

func TestNewConversationIsIdle(t *testing.T) {
	c := New()

	assert.False(t, c.IsStreaming())
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Messages())
	assert.NotEmpty(t, c.SessionID())
	assert.IsType(t, Idle{}, c.Turn())
}

func TestResetWithoutEntryMessage(t *testing.T) {
	c := New()

	_, submitted := c.Reset("Hello", "")

	assert.False(t, submitted)
	assert.Equal(t, []models.Message{ai("Hello")}, c.Messages())
	assert.False(t, c.IsStreaming())
}

func TestResetAutoSubmitsEntryMessage(t *testing.T) {
	c := New(WithSessionID("sess-1"))

	req, submitted := c.Reset("Hello", "hi")

	require.True(t, submitted)
	assert.Equal(t, []models.Message{ai("Hello"), user("hi")}, c.Messages())
	assert.True(t, c.IsStreaming())
	assert.Equal(t, TurnRequest{SessionID: "sess-1", TurnID: 1, Text: "hi", SequenceID: 1}, req)
}

func TestResetClearsHistoryAndStreamingTurn(t *testing.T) {
	c := New()
	c.Reset("Hello", "first")
	c.Chunk("partial", 0)

	_, submitted := c.Reset("Welcome back", "")

	assert.False(t, submitted)
	assert.False(t, c.IsStreaming())
	assert.Equal(t, []models.Message{ai("Welcome back")}, c.Messages())
	assert.Equal(t, "", c.ReassembledText())
}

func TestSubmitSequenceIDCountsPriorMessages(t *testing.T) {
	c := New()
	c.Reset("Hello", "")

	req, err := c.Submit("one")
	require.NoError(t, err)
	assert.Equal(t, 1, req.SequenceID)
	c.Final("reply one")

	req, err = c.Submit("two")
	require.NoError(t, err)
	assert.Equal(t, 3, req.SequenceID)
	assert.Equal(t, 2, req.TurnID)
}

func TestSubmitRejectsEmptyMessage(t *testing.T) {
	c := New()

	_, err := c.Submit("   ")

	assert.ErrorIs(t, err, apierrors.ErrEmptyMessage)
	assert.Empty(t, c.Messages())
	assert.False(t, c.IsStreaming())
}

func TestSubmitWhileStreamingIsRejected(t *testing.T) {
	c := New()
	_, err := c.Submit("first")
	require.NoError(t, err)

	_, err = c.Submit("second")

	assert.ErrorIs(t, err, apierrors.ErrTurnInProgress)
	assert.Equal(t, []models.Message{user("first")}, c.Messages())
}

func TestNewTurnStartsWithEmptyChunks(t *testing.T) {
	c := New()
	_, err := c.Submit("first")
	require.NoError(t, err)
	c.Chunk("stale", 0)
	c.EndOfTurn()

	_, err = c.Submit("second")
	require.NoError(t, err)

	s, ok := c.Turn().(*Streaming)
	require.True(t, ok)
	assert.Equal(t, 0, s.ChunkCount())
	assert.Equal(t, "", c.ReassembledText())
	assert.Equal(t, "", c.StatusLabel())
}

func TestChunksReassembleWhileStreaming(t *testing.T) {
	c := New()
	_, err := c.Submit("hi")
	require.NoError(t, err)

	c.Chunk("b", 1)
	c.Chunk("a", 0)

	assert.Equal(t, "ab", c.ReassembledText())
	view := c.View()
	require.Len(t, view, 2)
	assert.True(t, view[1].InProgress)
	assert.Equal(t, "ab", view[1].Text)
}

func TestProgressThenChunkClearsStatus(t *testing.T) {
	c := New()
	_, err := c.Submit("hi")
	require.NoError(t, err)

	c.Progress("Looking things up")
	assert.Equal(t, "Looking things up", c.StatusLabel())
	assert.Equal(t, "", c.ReassembledText())

	c.Chunk("Found it", 0)

	assert.Equal(t, "", c.StatusLabel())
	assert.Equal(t, "Found it", c.ReassembledText())
}

func TestProgressAfterChunkKeepsText(t *testing.T) {
	c := New()
	_, err := c.Submit("hi")
	require.NoError(t, err)

	c.Chunk("partial", 0)
	c.Progress("Still thinking")

	assert.Equal(t, "Still thinking", c.StatusLabel())
	assert.Equal(t, "partial", c.ReassembledText())
}

func TestEmptyChunkKeepsStatus(t *testing.T) {
	c := New()
	_, err := c.Submit("hi")
	require.NoError(t, err)

	c.Progress("Working")
	c.Chunk("", 0)

	assert.Equal(t, "Working", c.StatusLabel())
}

func TestFinalAppendsGivenText(t *testing.T) {
	c := New()
	c.Reset("Hello", "hi")
	c.Chunk("streamed text", 0)

	c.Final("done")

	assert.False(t, c.IsStreaming())
	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, ai("done"), msgs[2])
	assert.Len(t, c.View(), 3)
}

func TestEndOfTurnAppendsNothingByDefault(t *testing.T) {
	c := New()
	c.Reset("Hello", "hi")
	c.Chunk("streamed text", 0)

	c.EndOfTurn()

	assert.False(t, c.IsStreaming())
	assert.Equal(t, []models.Message{ai("Hello"), user("hi")}, c.Messages())
}

func TestEndOfTurnKeepsPartialWhenEnabled(t *testing.T) {
	c := New(WithKeepPartialOnEnd(true))
	c.Reset("Hello", "hi")
	c.Chunk(" world", 5)
	c.Chunk("hello", 0)

	c.EndOfTurn()

	assert.Equal(t, []models.Message{ai("Hello"), user("hi"), ai("hello world")}, c.Messages())
}

func TestEndOfTurnKeepPartialSkipsEmptyText(t *testing.T) {
	c := New(WithKeepPartialOnEnd(true))
	c.Reset("Hello", "hi")

	c.EndOfTurn()

	assert.Len(t, c.Messages(), 2)
}

func TestFailureAppendsErrorMessage(t *testing.T) {
	c := New()
	c.Reset("Hello", "hi")
	c.Chunk("half an ans", 0)

	c.Failure(errors.New("connection reset"))

	assert.False(t, c.IsStreaming())
	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, models.RoleAI, msgs[2].Role)
	assert.Equal(t, "connection reset", msgs[2].Text)
	assert.True(t, msgs[2].IsError())
}

func TestFailureWithNilError(t *testing.T) {
	c := New()
	_, err := c.Submit("hi")
	require.NoError(t, err)

	c.Failure(nil)

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].IsError())
	assert.NotEmpty(t, msgs[1].Text)
}

func TestEventsWhileIdleAreIgnored(t *testing.T) {
	c := New()
	c.Reset("Hello", "")

	c.Progress("status")
	c.Chunk("stray", 0)
	c.Final("late final")
	c.EndOfTurn()
	c.Failure(errors.New("late failure"))

	assert.False(t, c.IsStreaming())
	assert.Equal(t, []models.Message{ai("Hello")}, c.Messages())
	assert.Equal(t, "", c.StatusLabel())
}

func TestApplyDispatchesEvents(t *testing.T) {
	c := New()
	c.Reset("Hello", "hi")

	c.Apply(ProgressEvent{Text: "Searching"})
	assert.Equal(t, "Searching", c.StatusLabel())

	c.Apply(ChunkEvent{Text: "world", Offset: 6})
	c.Apply(ChunkEvent{Text: "hello ", Offset: 0})
	assert.Equal(t, "hello world", c.ReassembledText())
	assert.Equal(t, "", c.StatusLabel())

	c.Apply(FinalEvent{Text: "hello world!"})
	assert.False(t, c.IsStreaming())

	last, ok := c.LastReply()
	require.True(t, ok)
	assert.Equal(t, "hello world!", last)
}

func TestApplyFailureEvent(t *testing.T) {
	c := New()
	_, err := c.Submit("hi")
	require.NoError(t, err)

	c.Apply(FailureEvent{Err: apierrors.NewStreamError("overloaded")})

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "stream error: overloaded", msgs[1].Text)
}

func TestLastReplySkipsErrors(t *testing.T) {
	c := New()
	c.Reset("Hello", "hi")
	c.Failure(errors.New("boom"))

	last, ok := c.LastReply()
	require.True(t, ok)
	assert.Equal(t, "Hello", last)

	empty := New()
	_, ok = empty.LastReply()
	assert.False(t, ok)
}

func TestCurrentTurnID(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.CurrentTurnID())

	req, err := c.Submit("hi")
	require.NoError(t, err)
	assert.Equal(t, req.TurnID, c.CurrentTurnID())

	c.EndOfTurn()
	assert.Equal(t, 0, c.CurrentTurnID())
}

func TestMessagesReturnsCopy(t *testing.T) {
	c := New()
	c.Reset("Hello", "")

	msgs := c.Messages()
	msgs[0].Text = "mutated"

	assert.Equal(t, "Hello", c.Messages()[0].Text)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(FinalEvent{}))
	assert.True(t, IsTerminal(EndOfTurnEvent{}))
	assert.True(t, IsTerminal(FailureEvent{}))
	assert.False(t, IsTerminal(ProgressEvent{}))
	assert.False(t, IsTerminal(ChunkEvent{}))
}
