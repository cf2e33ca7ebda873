// Package tui provides the terminal user interface for streamchat.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/streamchat/internal/errors"
	"github.com/diogo/streamchat/internal/render"
)

// Color variables (updated from palette)
var (
	colorBorder    lipgloss.Color
	colorUser      lipgloss.Color
	colorAssistant lipgloss.Color
	colorStatus    lipgloss.Color
	colorError     lipgloss.Color
	colorText      lipgloss.Color
	colorMuted     lipgloss.Color
)

// Style variables (rebuilt when the palette changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle lipgloss.Style

	userBubbleStyle lipgloss.Style
	userLabelStyle  lipgloss.Style

	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style

	// Failed turns
	errorBubbleStyle lipgloss.Style
	errorLabelStyle  lipgloss.Style

	// In-progress reply
	typingBubbleStyle lipgloss.Style
	statusLabelStyle  lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	noticeStyle lipgloss.Style
	errorStyle  lipgloss.Style

	// Settings menu
	panelStyle        lipgloss.Style
	itemStyle         lipgloss.Style
	selectedItemStyle lipgloss.Style
	cursorStyle       lipgloss.Style
	valueStyle        lipgloss.Style
	enabledStyle      lipgloss.Style
	disabledStyle     lipgloss.Style
)

func init() {
	ApplyPalette(render.DefaultPalette())
}

// ApplyPalette refreshes all styles from p
func ApplyPalette(p render.Palette) {
	colorBorder = p.Border
	colorUser = p.User
	colorAssistant = p.Assistant
	colorStatus = p.Status
	colorError = p.Error
	colorText = p.Text
	colorMuted = p.Muted

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2).
		MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorAssistant).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorMuted)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorUser).
		Padding(0, 1).
		MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true).
		MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorAssistant).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorAssistant).
		Bold(true)

	errorBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorError).
		Foreground(colorError).
		Padding(0, 1).
		MarginRight(4)

	errorLabelStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	typingBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorMuted).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	statusLabelStyle = lipgloss.NewStyle().
		Foreground(colorStatus).
		Italic(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		MarginTop(1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true).
		MarginRight(1)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAssistant).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		MarginTop(1)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorMuted)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorStatus)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		MarginBottom(1)

	itemStyle = lipgloss.NewStyle().
		Foreground(colorText)

	selectedItemStyle = lipgloss.NewStyle().
		Foreground(colorAssistant).
		Bold(true)

	cursorStyle = lipgloss.NewStyle().
		Foreground(colorAssistant).
		Bold(true)

	valueStyle = lipgloss.NewStyle().
		Foreground(colorStatus)

	enabledStyle = lipgloss.NewStyle().
		Foreground(colorUser)

	disabledStyle = lipgloss.NewStyle().
		Foreground(colorMuted)
}

// FormatError returns a styled error message with additional context
// taken from the typed transport errors.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorMuted)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
	} else if hint := errorHint(err); hint != "" {
		sb.WriteString(dimStyle.Render("\n  Hint: " + hint))
	}

	return sb.String()
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, apierrors.ErrNoEndpoint):
		return "Set an endpoint with --endpoint or 'streamchat config init'"
	case apierrors.IsTimeoutError(err):
		return "Request timed out. Try again or raise timeout_seconds"
	case apierrors.IsNetworkError(err):
		return "Check your connection and the endpoint URL"
	case errors.Is(err, apierrors.ErrStreamClosed):
		return "The server closed the stream early. Try again"
	default:
		return ""
	}
}
