package commands

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/streamchat/internal/config"
	"github.com/diogo/streamchat/internal/conversation"
	"github.com/diogo/streamchat/internal/models"
	"github.com/diogo/streamchat/internal/render"
	"github.com/diogo/streamchat/internal/tui"
)

// chatFlags configure the opening of a chat
type chatFlags struct {
	welcome string
	message string
	link    string
}

func newChatFlags() *chatFlags {
	return &chatFlags{}
}

func (f *chatFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.welcome, "welcome", "w", "", "Welcome message shown before the first turn")
	cmd.Flags().StringVarP(&f.message, "message", "m", "", "Message to send as soon as the chat opens")
	cmd.Flags().StringVar(&f.link, "link", "", "Chat link whose 'message' query parameter is sent on open")
}

// NewChatCmd creates the chat command
func NewChatCmd(deps *Dependencies, global *globalFlags) *cobra.Command {
	flags := newChatFlags()

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Replies are shown as they stream in. Press Enter to send, Ctrl+Y to copy
the last reply, and Esc or Ctrl+C to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps, global, flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func runChat(deps *Dependencies, global *globalFlags, flags *chatFlags) error {
	cfg, err := loadConfig(deps, global)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	entry, err := resolveEntryMessage(flags.message, flags.link)
	if err != nil {
		return err
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

	conv := conversation.New(
		conversation.WithLogger(logger),
		conversation.WithKeepPartialOnEnd(cfg.KeepPartialOnEnd),
	)

	logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("session_id", conv.SessionID()).
		Bool("entry_message", entry != "").
		Msg("Starting chat")

	tui.ApplyPalette(render.PaletteOrDefault(cfg.TUITheme))

	return deps.RunTUI(conv, streamer, tui.Options{
		Welcome:      welcomeMessage(flags.welcome, cfg),
		EntryMessage: entry,
		Title:        endpointTitle(cfg.Endpoint),
		Markdown:     render.OptionsFromConfig(cfg.Markdown),
		AutoCopy:     cfg.CopyToClipboard,
		Logger:       logger,
	})
}

// resolveEntryMessage returns the message to send on open. An explicit
// message wins over one carried by a link.
func resolveEntryMessage(message, link string) (string, error) {
	if strings.TrimSpace(message) != "" {
		return message, nil
	}
	if link == "" {
		return "", nil
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid chat link: %w", err)
	}
	return u.Query().Get(models.EntryMessageParam), nil
}

func welcomeMessage(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.WelcomeMessage != "" {
		return cfg.WelcomeMessage
	}
	return models.DefaultWelcomeMessage
}

// endpointTitle returns the host of the endpoint for the header
func endpointTitle(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}
