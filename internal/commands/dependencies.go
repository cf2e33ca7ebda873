package commands

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/diogo/streamchat/internal/config"
	"github.com/diogo/streamchat/internal/conversation"
	"github.com/diogo/streamchat/internal/transport"
	"github.com/diogo/streamchat/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// LoadConfig reads the user configuration
	LoadConfig func() (config.Config, error)

	// NewStreamer builds the transport for cfg
	NewStreamer func(cfg config.Config, logger zerolog.Logger) (tui.Streamer, error)

	// RunTUI runs the interactive chat
	RunTUI func(conv *conversation.Conversation, streamer tui.Streamer, opts tui.Options) error

	// RunSettings runs the interactive settings editor
	RunSettings func(cfg config.Config, configPath string) error

	// CopyToClipboard writes text to the system clipboard
	CopyToClipboard func(text string) error

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinIsPiped reports whether a prompt can be read from stdin
	StdinIsPiped func() bool
	// StdoutIsTTY reports whether decorated output should be used
	StdoutIsTTY func() bool
	// TerminalWidth returns the width of stdout
	TerminalWidth func() int
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig:      config.LoadConfig,
		NewStreamer:     newTransportClient,
		RunTUI:          tui.Run,
		RunSettings:     tui.RunSettings,
		CopyToClipboard: clipboard.WriteAll,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		StdinIsPiped:    stdinIsPiped,
		StdoutIsTTY:     isStdoutTTY,
		TerminalWidth:   getTerminalWidth,
	}
}

// newTransportClient builds the SSE client from the configuration
func newTransportClient(cfg config.Config, logger zerolog.Logger) (tui.Streamer, error) {
	return transport.NewClient(cfg.Endpoint,
		transport.WithHeaders(cfg.Headers),
		transport.WithTimeout(cfg.Timeout()),
		transport.WithLogger(logger),
	)
}

func stdinIsPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
