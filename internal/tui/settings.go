package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/streamchat/internal/config"
	"github.com/diogo/streamchat/internal/render"
)

type settingsView int

const (
	viewMain settingsView = iota
	viewMarkdownStyle
	viewPalette
)

// Menu rows of the main view
const (
	menuKeepPartial = iota
	menuCopyToClipboard
	menuMarkdownStyle
	menuPalette
	menuExit
	menuItemCount
)

// feedbackClearMsg clears the feedback line
type feedbackClearMsg struct{}

// SettingsModel is an interactive editor for the persisted options.
// Every change is saved immediately.
type SettingsModel struct {
	config     config.Config
	configPath string
	save       func(config.Config) error

	view          settingsView
	cursor        int
	styleCursor   int
	paletteCursor int

	feedback        string
	feedbackTimeout time.Duration

	width  int
	height int
	ready  bool
}

// NewSettingsModel opens the editor on cfg. save persists each change.
func NewSettingsModel(cfg config.Config, configPath string, save func(config.Config) error) SettingsModel {
	if save == nil {
		save = config.SaveConfig
	}

	m := SettingsModel{
		config:          cfg,
		configPath:      configPath,
		save:            save,
		view:            viewMain,
		feedbackTimeout: 2 * time.Second,
	}
	m.styleCursor = indexOf(render.StyleNames(), m.markdownStyle())
	m.paletteCursor = indexOf(render.PaletteNames(), render.PaletteOrDefault(cfg.TUITheme).Name)

	ApplyPalette(render.PaletteOrDefault(cfg.TUITheme))
	return m
}

// Config returns the options as last edited
func (m SettingsModel) Config() config.Config {
	return m.config
}

func (m SettingsModel) markdownStyle() string {
	if m.config.Markdown.Style == "" {
		return render.StyleDark
	}
	return m.config.Markdown.Style
}

func indexOf(items []string, item string) int {
	for i, it := range items {
		if it == item {
			return i
		}
	}
	return 0
}

func (m SettingsModel) Init() tea.Cmd {
	return nil
}

func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.view != viewMain {
				m.view = viewMain
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

// move shifts the cursor of the current view, wrapping at both ends
func (m *SettingsModel) move(delta int) {
	wrap := func(v, n int) int {
		return ((v+delta)%n + n) % n
	}
	switch m.view {
	case viewMain:
		m.cursor = wrap(m.cursor, menuItemCount)
	case viewMarkdownStyle:
		m.styleCursor = wrap(m.styleCursor, len(render.StyleNames()))
	case viewPalette:
		m.paletteCursor = wrap(m.paletteCursor, len(render.PaletteNames()))
	}
}

func (m SettingsModel) handleSelect() (tea.Model, tea.Cmd) {
	switch m.view {
	case viewMarkdownStyle:
		m.config.Markdown.Style = render.StyleNames()[m.styleCursor]
		m.view = viewMain
		return m.persist(fmt.Sprintf("Markdown style set to %s", m.config.Markdown.Style))

	case viewPalette:
		p := render.PaletteOrDefault(render.PaletteNames()[m.paletteCursor])
		m.config.TUITheme = p.Name
		ApplyPalette(p)
		m.view = viewMain
		return m.persist(fmt.Sprintf("Theme set to %s", p.Name))
	}

	switch m.cursor {
	case menuKeepPartial:
		m.config.KeepPartialOnEnd = !m.config.KeepPartialOnEnd
		return m.persist("Keep partial replies " + enabledWord(m.config.KeepPartialOnEnd))
	case menuCopyToClipboard:
		m.config.CopyToClipboard = !m.config.CopyToClipboard
		return m.persist("Copy to clipboard " + enabledWord(m.config.CopyToClipboard))
	case menuMarkdownStyle:
		m.view = viewMarkdownStyle
	case menuPalette:
		m.view = viewPalette
	case menuExit:
		return m, tea.Quit
	}
	return m, nil
}

func (m SettingsModel) persist(done string) (tea.Model, tea.Cmd) {
	if err := m.save(m.config); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
	} else {
		m.feedback = done
	}
	return m, clearFeedback(m.feedbackTimeout)
}

func enabledWord(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

func (m SettingsModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string

	header := headerStyle.Width(contentWidth).Render(titleStyle.Render("✦ Settings"))
	sections = append(sections, header)

	endpoint := m.config.Endpoint
	if endpoint == "" {
		endpoint = errorStyle.Render("not set")
	}
	paths := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("   Config:   %s", subtitleStyle.Render(m.configPath)),
		fmt.Sprintf("   Endpoint: %s", endpoint),
	)
	sections = append(sections, panelStyle.Width(contentWidth).Render(paths))

	var body string
	switch m.view {
	case viewMain:
		body = m.renderMainMenu()
	case viewMarkdownStyle:
		body = m.renderChoices("Markdown style", render.StyleNames(), m.styleCursor, m.markdownStyle())
	case viewPalette:
		body = m.renderChoices("Theme", render.PaletteNames(), m.paletteCursor, render.PaletteOrDefault(m.config.TUITheme).Name)
	}
	sections = append(sections, panelStyle.Width(contentWidth).Render(body))

	if m.feedback != "" {
		sections = append(sections, noticeStyle.Render("✓ "+m.feedback))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SettingsModel) renderMainMenu() string {
	rows := []struct {
		label string
		value string
	}{
		{"Keep partial replies", boolValue(m.config.KeepPartialOnEnd)},
		{"Copy to clipboard", boolValue(m.config.CopyToClipboard)},
		{"Markdown style", valueStyle.Render(m.markdownStyle())},
		{"Theme", valueStyle.Render(render.PaletteOrDefault(m.config.TUITheme).Name)},
	}

	items := []string{titleStyle.Render("⚙ Options"), ""}
	for i, row := range rows {
		items = append(items, menuRow(i == m.cursor, fmt.Sprintf("%-22s%s", row.label, row.value)))
	}
	items = append(items, "", menuRow(m.cursor == menuExit, "Exit"))

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m SettingsModel) renderChoices(title string, choices []string, cursor int, current string) string {
	items := []string{titleStyle.Render("🎨 " + title), ""}
	for i, c := range choices {
		row := menuRow(i == cursor, c)
		if c == current {
			row += enabledStyle.Render(" (current)")
		}
		items = append(items, row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func menuRow(selected bool, text string) string {
	if selected {
		return cursorStyle.Render("▸ ") + selectedItemStyle.Render(text)
	}
	return "  " + itemStyle.Render(text)
}

func boolValue(v bool) string {
	if v {
		return enabledStyle.Render("enabled")
	}
	return disabledStyle.Render("disabled")
}

func (m SettingsModel) renderStatusBar(width int) string {
	back := "Exit"
	if m.view != viewMain {
		back = "Back"
	}
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"↑↓", "Navigate"},
		{"Enter", "Select"},
		{"Esc", back},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunSettings opens the settings editor on the alternate screen
func RunSettings(cfg config.Config, configPath string) error {
	p := tea.NewProgram(NewSettingsModel(cfg, configPath, nil), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
