// Package conversation holds the state of one chat: the finalized messages,
// the reply currently streaming, and the transitions between them.
//
// A Conversation is not safe for concurrent use. All calls are expected to
// come from a single event loop, in the order the transport delivered them.
package conversation

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/qmuntal/stateless"
	"github.com/rs/zerolog"

	apierrors "github.com/diogo/streamchat/internal/errors"
	"github.com/diogo/streamchat/internal/models"
)

// Turn machine states
const (
	StateIdle      = "Idle"
	StateStreaming = "Streaming"
)

// Turn machine triggers
const (
	triggerSubmit    = "Submit"
	triggerProgress  = "Progress"
	triggerChunk     = "Chunk"
	triggerFinal     = "Final"
	triggerEndOfTurn = "EndOfTurn"
	triggerFailure   = "Failure"
	triggerReset     = "Reset"
)

// TurnRequest is what the transport needs to start streaming a reply
type TurnRequest struct {
	SessionID string
	TurnID    int
	Text      string
	// SequenceID is the number of finalized messages before the user message.
	SequenceID int
}

// Conversation is the message store plus the streaming turn machine
type Conversation struct {
	messages  []models.Message
	turn      TurnState
	turnCount int
	sessionID string

	fsm *stateless.StateMachine

	keepPartialOnEnd bool
	logger           zerolog.Logger
}

// Option configures a Conversation
type Option func(*Conversation)

// WithLogger sets the logger used for transition diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Conversation) {
		c.logger = logger
	}
}

// WithKeepPartialOnEnd makes an end of turn without final text keep the
// streamed text as a finalized assistant message.
func WithKeepPartialOnEnd(enabled bool) Option {
	return func(c *Conversation) {
		c.keepPartialOnEnd = enabled
	}
}

// WithSessionID fixes the session id instead of generating one
func WithSessionID(id string) Option {
	return func(c *Conversation) {
		c.sessionID = id
	}
}

// New creates an empty, idle conversation
func New(opts ...Option) *Conversation {
	c := &Conversation{
		turn:   Idle{},
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	c.logger = c.logger.With().Str("session_id", c.sessionID).Logger()
	c.fsm = c.newTurnMachine()

	return c
}

// newTurnMachine wires Idle -> Streaming -> Idle.
// Entering either state replaces c.turn, which is what clears the chunks.
func (c *Conversation) newTurnMachine() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(StateIdle)

	fsm.Configure(StateIdle).
		OnEntry(func(_ context.Context, _ ...any) error {
			c.turn = Idle{}
			return nil
		}).
		Permit(triggerSubmit, StateStreaming).
		Ignore(triggerReset)

	fsm.Configure(StateStreaming).
		OnEntry(func(_ context.Context, args ...any) error {
			id := 0
			if len(args) > 0 {
				id, _ = args[0].(int)
			}
			c.turn = newStreaming(id)
			return nil
		}).
		InternalTransition(triggerProgress, func(_ context.Context, args ...any) error {
			if s, ok := c.turn.(*Streaming); ok && len(args) > 0 {
				label, _ := args[0].(string)
				s.setStatus(label)
			}
			return nil
		}).
		InternalTransition(triggerChunk, func(_ context.Context, args ...any) error {
			if s, ok := c.turn.(*Streaming); ok && len(args) > 0 {
				chunk, _ := args[0].(models.TextChunk)
				s.addChunk(chunk.Text, chunk.Offset)
			}
			return nil
		}).
		Permit(triggerFinal, StateIdle).
		Permit(triggerEndOfTurn, StateIdle).
		Permit(triggerFailure, StateIdle).
		Permit(triggerReset, StateIdle)

	return fsm
}

// fire runs a trigger and reports whether it was accepted.
// Triggers that are not valid in the current state are dropped.
func (c *Conversation) fire(trigger string, args ...any) bool {
	if err := c.fsm.Fire(trigger, args...); err != nil {
		c.logger.Debug().
			Str("trigger", trigger).
			Str("state", c.State()).
			Err(err).
			Msg("Ignoring event outside of a streaming turn")
		return false
	}
	return true
}

// Reset clears the history, drops any streaming turn, and appends the welcome
// message. A non-empty entryMessage is then submitted once; the returned
// request must be handed to the transport.
func (c *Conversation) Reset(welcome, entryMessage string) (TurnRequest, bool) {
	c.fire(triggerReset)
	c.messages = nil
	c.append(models.RoleAI, welcome, models.KindNormal)

	c.logger.Debug().Bool("entry_message", entryMessage != "").Msg("Conversation reset")

	if strings.TrimSpace(entryMessage) == "" {
		return TurnRequest{}, false
	}

	req, err := c.Submit(entryMessage)
	if err != nil {
		return TurnRequest{}, false
	}
	return req, true
}

// Append adds a finalized message
func (c *Conversation) Append(role models.Role, text string) {
	c.append(role, text, models.KindNormal)
}

func (c *Conversation) append(role models.Role, text string, kind models.Kind) {
	c.messages = append(c.messages, models.Message{
		Role: role,
		Text: text,
		Kind: kind,
	})
}

// Submit appends a user message and starts streaming its reply.
// Only one reply may stream at a time; a second submission is rejected.
func (c *Conversation) Submit(text string) (TurnRequest, error) {
	if strings.TrimSpace(text) == "" {
		return TurnRequest{}, apierrors.ErrEmptyMessage
	}
	if c.IsStreaming() {
		return TurnRequest{}, apierrors.ErrTurnInProgress
	}

	sequenceID := len(c.messages)
	c.Append(models.RoleUser, text)

	c.turnCount++
	if !c.fire(triggerSubmit, c.turnCount) {
		return TurnRequest{}, apierrors.ErrTurnInProgress
	}

	c.logger.Debug().
		Int("turn_id", c.turnCount).
		Int("sequence_id", sequenceID).
		Msg("Turn started")

	return TurnRequest{
		SessionID:  c.sessionID,
		TurnID:     c.turnCount,
		Text:       text,
		SequenceID: sequenceID,
	}, nil
}

// Progress updates the status label of the streaming reply
func (c *Conversation) Progress(label string) {
	c.fire(triggerProgress, label)
}

// Chunk adds a fragment to the streaming reply
func (c *Conversation) Chunk(text string, offset int64) {
	c.fire(triggerChunk, models.TextChunk{Text: text, Offset: offset})
}

// Final ends the turn and appends text, not the streamed chunks, as the reply
func (c *Conversation) Final(text string) {
	if c.fire(triggerFinal) {
		c.append(models.RoleAI, text, models.KindNormal)
	}
}

// EndOfTurn ends the turn without final text. The streamed text is dropped
// unless the conversation was built WithKeepPartialOnEnd.
func (c *Conversation) EndOfTurn() {
	partial := c.ReassembledText()
	if !c.fire(triggerEndOfTurn) {
		return
	}
	if c.keepPartialOnEnd && partial != "" {
		c.append(models.RoleAI, partial, models.KindNormal)
	}
}

// Failure ends the turn and appends an error notice so the view never stays
// in the typing state. Streamed text is discarded.
func (c *Conversation) Failure(err error) {
	reason := "the reply could not be completed"
	if err != nil {
		reason = err.Error()
	}

	if c.fire(triggerFailure) {
		c.logger.Warn().Str("reason", reason).Msg("Turn failed")
		c.append(models.RoleAI, reason, models.KindError)
	}
}

// Apply dispatches a transport event
func (c *Conversation) Apply(ev Event) {
	switch e := ev.(type) {
	case ProgressEvent:
		c.Progress(e.Text)
	case ChunkEvent:
		c.Chunk(e.Text, e.Offset)
	case FinalEvent:
		c.Final(e.Text)
	case EndOfTurnEvent:
		c.EndOfTurn()
	case FailureEvent:
		c.Failure(e.Err)
	}
}

// View returns the messages to render
func (c *Conversation) View() []models.Message {
	return Project(c.messages, c.turn)
}

// Messages returns a copy of the finalized messages
func (c *Conversation) Messages() []models.Message {
	return slices.Clone(c.messages)
}

// LastReply returns the text of the last finalized, non-error assistant message
func (c *Conversation) LastReply() (string, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		m := c.messages[i]
		if m.Role == models.RoleAI && !m.IsError() {
			return m.Text, true
		}
	}
	return "", false
}

// Turn returns the current turn state
func (c *Conversation) Turn() TurnState {
	return c.turn
}

// State returns the name of the current machine state
func (c *Conversation) State() string {
	if c.IsStreaming() {
		return StateStreaming
	}
	return StateIdle
}

// IsStreaming reports whether a reply is in progress
func (c *Conversation) IsStreaming() bool {
	_, ok := c.turn.(*Streaming)
	return ok
}

// CurrentTurnID returns the id of the streaming turn, or 0 when idle
func (c *Conversation) CurrentTurnID() int {
	if s, ok := c.turn.(*Streaming); ok {
		return s.ID()
	}
	return 0
}

// ReassembledText returns the streamed text so far, or "" when idle
func (c *Conversation) ReassembledText() string {
	if s, ok := c.turn.(*Streaming); ok {
		return s.Text()
	}
	return ""
}

// StatusLabel returns the progress label, or "" when idle
func (c *Conversation) StatusLabel() string {
	if s, ok := c.turn.(*Streaming); ok {
		return s.Status()
	}
	return ""
}

// SessionID returns the id sent with every turn request
func (c *Conversation) SessionID() string {
	return c.sessionID
}
