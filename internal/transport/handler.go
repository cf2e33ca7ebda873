package transport

import (
	"context"
	"sync"

	"github.com/diogo/streamchat/internal/conversation"
)

// Handler receives the callbacks of one streaming turn.
//
// The transport invokes zero or more OnProgress/OnTextChunk calls followed by
// exactly one of OnFinal, OnEndOfTurn or OnFailure.
type Handler interface {
	OnProgress(text string)
	OnTextChunk(text string, offset int64)
	OnFinal(text string)
	OnEndOfTurn()
	OnFailure(err error)
}

// Dispatch routes a decoded event to the matching callback
func Dispatch(h Handler, ev conversation.Event) {
	switch e := ev.(type) {
	case conversation.ProgressEvent:
		h.OnProgress(e.Text)
	case conversation.ChunkEvent:
		h.OnTextChunk(e.Text, e.Offset)
	case conversation.FinalEvent:
		h.OnFinal(e.Text)
	case conversation.EndOfTurnEvent:
		h.OnEndOfTurn()
	case conversation.FailureEvent:
		h.OnFailure(e.Err)
	}
}

// TurnEvent tags an event with the turn it belongs to
type TurnEvent struct {
	TurnID int
	Event  conversation.Event
}

// ChannelHandler turns callbacks into TurnEvents on a channel, so that a
// single event loop can apply them in order.
type ChannelHandler struct {
	ctx    context.Context
	turnID int
	events chan TurnEvent

	closeOnce sync.Once
}

var _ Handler = (*ChannelHandler)(nil)

// NewChannelHandler creates a handler for turnID. Sends block until the
// event is received or ctx is done.
func NewChannelHandler(ctx context.Context, turnID, buffer int) *ChannelHandler {
	return &ChannelHandler{
		ctx:    ctx,
		turnID: turnID,
		events: make(chan TurnEvent, buffer),
	}
}

// Events returns the receive side; it is closed by Close
func (h *ChannelHandler) Events() <-chan TurnEvent {
	return h.events
}

// Close closes the event channel. Call it after the stream has returned.
func (h *ChannelHandler) Close() {
	h.closeOnce.Do(func() {
		close(h.events)
	})
}

func (h *ChannelHandler) send(ev conversation.Event) {
	select {
	case h.events <- TurnEvent{TurnID: h.turnID, Event: ev}:
	case <-h.ctx.Done():
	}
}

func (h *ChannelHandler) OnProgress(text string) {
	h.send(conversation.ProgressEvent{Text: text})
}

func (h *ChannelHandler) OnTextChunk(text string, offset int64) {
	h.send(conversation.ChunkEvent{Text: text, Offset: offset})
}

func (h *ChannelHandler) OnFinal(text string) {
	h.send(conversation.FinalEvent{Text: text})
}

func (h *ChannelHandler) OnEndOfTurn() {
	h.send(conversation.EndOfTurnEvent{})
}

func (h *ChannelHandler) OnFailure(err error) {
	h.send(conversation.FailureEvent{Err: err})
}

// ConversationHandler applies callbacks directly to a conversation.
// Use it only when the stream runs on the goroutine that owns the conversation.
type ConversationHandler struct {
	Conv *conversation.Conversation
	// OnEvent, when set, is called after each event is applied
	OnEvent func(ev conversation.Event)
}

var _ Handler = (*ConversationHandler)(nil)

func (h *ConversationHandler) apply(ev conversation.Event) {
	h.Conv.Apply(ev)
	if h.OnEvent != nil {
		h.OnEvent(ev)
	}
}

func (h *ConversationHandler) OnProgress(text string) {
	h.apply(conversation.ProgressEvent{Text: text})
}

func (h *ConversationHandler) OnTextChunk(text string, offset int64) {
	h.apply(conversation.ChunkEvent{Text: text, Offset: offset})
}

func (h *ConversationHandler) OnFinal(text string) {
	h.apply(conversation.FinalEvent{Text: text})
}

func (h *ConversationHandler) OnEndOfTurn() {
	h.apply(conversation.EndOfTurnEvent{})
}

func (h *ConversationHandler) OnFailure(err error) {
	h.apply(conversation.FailureEvent{Err: err})
}
