package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/streamchat/internal/conversation"
	apierrors "github.com/diogo/streamchat/internal/errors"
	"github.com/diogo/streamchat/internal/models"
	"github.com/diogo/streamchat/internal/render"
	"github.com/diogo/streamchat/internal/transport"
)

// eventBuffer is how many transport events may queue before the stream
// goroutine waits for the UI
const eventBuffer = 64

// Streamer streams the reply to one turn. Implementations must make exactly
// one terminal callback on h.
type Streamer interface {
	StreamTurn(ctx context.Context, req conversation.TurnRequest, h transport.Handler) error
}

// Message types for the TUI
type (
	// turnEventMsg carries one transport event and the channel it came from
	turnEventMsg struct {
		event  transport.TurnEvent
		events <-chan transport.TurnEvent
	}
	// turnClosedMsg is sent once the stream goroutine has returned
	turnClosedMsg struct {
		turnID int
	}
)

// Options configures the chat model
type Options struct {
	Welcome      string
	EntryMessage string
	// Title is shown in the header, usually the endpoint host
	Title    string
	Markdown render.Options
	// AutoCopy copies every final reply to the clipboard
	AutoCopy bool
	Logger   zerolog.Logger
}

// Model represents the TUI state
type Model struct {
	conv     *conversation.Conversation
	streamer Streamer
	renderer *render.Renderer
	logger   zerolog.Logger
	title    string
	autoCopy bool

	ctx    context.Context
	cancel context.CancelFunc

	// pending is the entry message turn, started by Init
	pending *conversation.TurnRequest

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ready  bool
	notice string

	// rendered caches assistant markdown by message index
	rendered      map[int]string
	renderedWidth int

	copyFn func(string) error

	width  int
	height int
}

// NewModel creates the chat model and resets conv with the welcome message.
// A non-empty entry message is sent as soon as the program starts.
func NewModel(conv *conversation.Conversation, streamer Streamer, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorMuted)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	welcome := opts.Welcome
	if welcome == "" {
		welcome = models.DefaultWelcomeMessage
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		conv:     conv,
		streamer: streamer,
		renderer: render.New(opts.Markdown),
		logger:   opts.Logger,
		title:    opts.Title,
		autoCopy: opts.AutoCopy,
		ctx:      ctx,
		cancel:   cancel,
		textarea: ta,
		spinner:  s,
		rendered: make(map[int]string),
		copyFn:   clipboard.WriteAll,
	}

	if req, ok := conv.Reset(welcome, opts.EntryMessage); ok {
		m.pending = &req
	}

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.pending != nil {
		cmds = append(cmds, m.startTurn(*m.pending), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// startTurn runs the stream in its own goroutine and returns its first event.
// Every later event is read by waitForEvent, so the conversation is only
// touched from Update.
func (m Model) startTurn(req conversation.TurnRequest) tea.Cmd {
	ctx, streamer, logger := m.ctx, m.streamer, m.logger
	return func() tea.Msg {
		h := transport.NewChannelHandler(ctx, req.TurnID, eventBuffer)
		go func() {
			defer h.Close()
			if err := streamer.StreamTurn(ctx, req, h); err != nil {
				logger.Debug().Err(err).Int("turn_id", req.TurnID).Msg("Stream returned an error")
			}
		}()
		return waitForEvent(req.TurnID, h.Events())()
	}
}

// waitForEvent blocks until the next event of a turn, or its end
func waitForEvent(turnID int, events <-chan transport.TurnEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return turnClosedMsg{turnID: turnID}
		}
		return turnEventMsg{event: ev, events: events}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 2
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.viewport.KeyMap = scrollKeys()
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit

		case "ctrl+y":
			m.copyLastReply()
			return m, nil

		case "enter":
			return m.submit()
		}

	case turnEventMsg:
		return m.applyEvent(msg)

	case turnClosedMsg:
		// The stream ended without delivering a terminal event to us
		if m.conv.CurrentTurnID() == msg.turnID {
			m.conv.Failure(&apierrors.StreamError{Err: apierrors.ErrStreamClosed})
			m.updateViewport()
			m.viewport.GotoBottom()
		}
		return m, nil

	case spinner.TickMsg:
		if m.conv.IsStreaming() {
			m.spinner, cmd = m.spinner.Update(msg)
			m.updateViewport()
			cmds = append(cmds, cmd)
		}
	}

	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// scrollKeys limits viewport scrolling to keys that cannot be typed
func scrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
	}
}

// submit sends the textarea content as a new turn
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}

	if input == "/exit" || input == "/quit" {
		m.cancel()
		return m, tea.Quit
	}

	req, err := m.conv.Submit(input)
	if err != nil {
		if errors.Is(err, apierrors.ErrTurnInProgress) {
			m.notice = "Wait for the current reply to finish"
		}
		return m, nil
	}

	m.textarea.Reset()
	m.notice = ""
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.startTurn(req), m.spinner.Tick)
}

// applyEvent feeds one transport event to the conversation
func (m Model) applyEvent(msg turnEventMsg) (tea.Model, tea.Cmd) {
	next := waitForEvent(msg.event.TurnID, msg.events)

	if msg.event.TurnID != m.conv.CurrentTurnID() {
		m.logger.Debug().
			Int("turn_id", msg.event.TurnID).
			Int("current_turn_id", m.conv.CurrentTurnID()).
			Msg("Dropping event from a previous turn")
		return m, next
	}

	m.conv.Apply(msg.event.Event)

	if _, ok := msg.event.Event.(conversation.FinalEvent); ok && m.autoCopy {
		m.copyLastReply()
	}

	if conversation.IsTerminal(msg.event.Event) {
		m.notice = ""
	}

	atBottom := m.viewport.AtBottom()
	m.updateViewport()
	if atBottom || conversation.IsTerminal(msg.event.Event) {
		m.viewport.GotoBottom()
	}

	return m, next
}

// copyLastReply copies the last assistant reply to the clipboard
func (m *Model) copyLastReply() {
	reply, ok := m.conv.LastReply()
	if !ok {
		m.notice = "Nothing to copy yet"
		return
	}
	if err := m.copyFn(reply); err != nil {
		m.notice = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.notice = "Copied last reply to clipboard"
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	headerParts := []string{titleStyle.Render("✦ streamchat")}
	if m.title != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.title),
		)
	}
	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...),
	)
	sections = append(sections, header)

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View())
	sections = append(sections, messagesPanel)

	inputContent := lipgloss.JoinVertical(
		lipgloss.Left,
		inputLabelStyle.Render("You"),
		m.textarea.View(),
	)
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+Y", "Copy"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, statusDescStyle.Render("  │  "))
	if m.conv.IsStreaming() {
		bar = loadingStyle.Render("receiving reply") + statusDescStyle.Render("  │  ") + bar
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content from the projected view
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages(m.conv.View()))
}

// renderMessages draws every message of the projected view
func (m *Model) renderMessages(msgs []models.Message) string {
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}
	if bubbleWidth != m.renderedWidth {
		m.rendered = make(map[int]string)
		m.renderedWidth = bubbleWidth
	}

	var content strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			content.WriteString("\n")
		}

		switch {
		case msg.Role == models.RoleUser:
			content.WriteString(userLabelStyle.Render("● You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Text))

		case msg.IsError():
			content.WriteString(errorLabelStyle.Render("✗ Reply failed") + "\n")
			content.WriteString(errorBubbleStyle.Width(bubbleWidth).Render(msg.Text))

		case msg.InProgress:
			content.WriteString(m.renderTyping(msg, bubbleWidth))

		default:
			content.WriteString(assistantLabelStyle.Render("✦ Assistant") + "\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(m.markdown(i, msg.Text, bubbleWidth-4)))
		}
		content.WriteString("\n")
	}

	return content.String()
}

// renderTyping draws the synthetic entry of a reply that is still streaming
func (m *Model) renderTyping(msg models.Message, width int) string {
	label := assistantLabelStyle.Render("✦ Assistant") + " " + m.spinner.View()
	if msg.StatusLabel != "" {
		label += " " + statusLabelStyle.Render(msg.StatusLabel)
	}

	text := msg.Text
	if text == "" {
		text = hintStyle.Render("typing…")
	}

	return label + "\n" + typingBubbleStyle.Width(width).Render(text)
}

// markdown renders a finalized reply once per width
func (m *Model) markdown(index int, text string, width int) string {
	if out, ok := m.rendered[index]; ok {
		return out
	}

	out, err := m.renderer.Markdown(text, width)
	if err != nil {
		m.logger.Debug().Err(err).Msg("Markdown rendering failed")
		out = text
	}
	out = strings.TrimRight(out, "\n")

	m.rendered[index] = out
	return out
}

// Run starts the chat TUI and blocks until it exits
func Run(conv *conversation.Conversation, streamer Streamer, opts Options) error {
	m := NewModel(conv, streamer, opts)
	defer m.cancel()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
