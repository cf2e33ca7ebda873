package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/streamchat/internal/conversation"
	apierrors "github.com/diogo/streamchat/internal/errors"
	"github.com/diogo/streamchat/internal/render"
	"github.com/diogo/streamchat/internal/transport"
	"github.com/diogo/streamchat/internal/tui"
)

// errNoReply is returned when a turn ends without any reply text
var errNoReply = errors.New("the server ended the turn without a reply")

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

type askFlags struct {
	file   string
	output string
	copy   bool
	raw    bool
}

// NewAskCmd creates the one-shot ask command
func NewAskCmd(deps *Dependencies, global *globalFlags) *cobra.Command {
	flags := &askFlags{}

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a single message and print the reply",
		Long: `Send a single message and print the reply.

The prompt is taken from the argument, from a file with -f, or from stdin.
On a terminal the reply is rendered as markdown; otherwise it is printed raw.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(deps, flags, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runAsk(ctx, deps, global, flags, prompt)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Read prompt from file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Save reply to file")
	cmd.Flags().BoolVarP(&flags.copy, "copy", "c", false, "Copy reply to clipboard")
	cmd.Flags().BoolVar(&flags.raw, "raw", false, "Print the raw reply even on a terminal")

	return cmd
}

// readPrompt picks the prompt from a file, the argument, or stdin, in that order
func readPrompt(deps *Dependencies, flags *askFlags, args []string) (string, error) {
	if flags.file != "" {
		data, err := os.ReadFile(flags.file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}

	if len(args) > 0 {
		return args[0], nil
	}

	if deps.StdinIsPiped() {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	return "", errors.New("no prompt given: pass it as an argument, with -f, or on stdin")
}

// runAsk streams one turn and outputs the reply
func runAsk(ctx context.Context, deps *Dependencies, global *globalFlags, flags *askFlags, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return apierrors.ErrEmptyMessage
	}

	cfg, err := loadConfig(deps, global)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closer.Close()

	streamer, err := deps.NewStreamer(cfg, logger)
	if err != nil {
		return err
	}

	// A one-shot reply keeps streamed text even without a final message
	conv := conversation.New(
		conversation.WithLogger(logger),
		conversation.WithKeepPartialOnEnd(true),
	)
	conv.Reset(welcomeMessage("", cfg), "")

	req, err := conv.Submit(prompt)
	if err != nil {
		return err
	}
	before := len(conv.Messages())

	decorated := !flags.raw && deps.StdoutIsTTY()

	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Waiting for reply")
		spin.start()
	}

	h := &transport.ConversationHandler{
		Conv: conv,
		OnEvent: func(ev conversation.Event) {
			if spin == nil {
				return
			}
			switch e := ev.(type) {
			case conversation.ProgressEvent:
				if e.Text != "" {
					spin.setMessage(e.Text)
				}
			case conversation.ChunkEvent:
				spin.setMessage("Receiving reply")
			}
		},
	}

	if err := streamer.StreamTurn(ctx, req, h); err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return err
	}

	msgs := conv.Messages()
	if len(msgs) <= before {
		if spin != nil {
			spin.stopWithError()
		}
		return errNoReply
	}
	reply := msgs[len(msgs)-1]
	if reply.IsError() {
		if spin != nil {
			spin.stopWithError()
		}
		return errors.New(reply.Text)
	}
	text := reply.Text

	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	if flags.copy || cfg.CopyToClipboard {
		if err := deps.CopyToClipboard(text); err != nil {
			warn := lipgloss.NewStyle().Foreground(colorWarning).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(deps.Stderr, warn)
		} else if decorated {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if flags.output != "" {
		if err := os.WriteFile(flags.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorated {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Response saved to %s", flags.output),
			))
		}
		return nil
	}

	if !decorated {
		fmt.Fprint(deps.Stdout, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(deps.Stdout)
		}
		return nil
	}

	bubbleWidth := deps.TerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	rendered, err := render.Markdown(text, render.OptionsFromConfig(cfg.Markdown).WithWidth(contentWidth))
	if err != nil {
		logger.Debug().Err(err).Msg("Markdown rendering failed")
		rendered = text
	}
	rendered = strings.TrimRight(rendered, "\n")

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ Assistant"))
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))

	return nil
}

// formatErrorMessage formats an error for the terminal
func formatErrorMessage(err error) string {
	return tui.FormatError(err)
}
