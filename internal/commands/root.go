// Package commands provides CLI commands for streamchat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/streamchat/internal/config"
	"github.com/diogo/streamchat/internal/logging"
	"github.com/diogo/streamchat/internal/models"
)

// BuildTime is set at build time
var BuildTime = "unknown"

// globalFlags are shared by every subcommand
type globalFlags struct {
	endpoint string
	logLevel string
}

// NewRootCmd creates the command tree. Without a subcommand it starts the chat.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	flags := &globalFlags{}
	chat := newChatFlags()

	rootCmd := &cobra.Command{
		Use:   "streamchat",
		Short: "Terminal chat client for streaming assistants",
		Long: `streamchat is a terminal chat client that shows assistant replies
as they stream in from a server-sent events endpoint.

Examples:
  streamchat --endpoint https://example.com/chat/stream
  streamchat chat --message "Where is my order?"
  streamchat chat --link "https://example.com/chat?message=Hello"
  streamchat ask "What are your opening hours?"
  cat question.md | streamchat ask
  streamchat config init --endpoint https://example.com/chat/stream`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "streamchat %s (built %s)\n", models.Version, BuildTime)
				return nil
			}
			return runChat(deps, flags, chat)
		},
	}

	rootCmd.SetIn(deps.Stdin)
	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	rootCmd.PersistentFlags().StringVarP(&flags.endpoint, "endpoint", "e", "", "Streaming endpoint URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")
	chat.register(rootCmd)

	rootCmd.AddCommand(NewChatCmd(deps, flags))
	rootCmd.AddCommand(NewAskCmd(deps, flags))
	rootCmd.AddCommand(NewConfigCmd(deps, flags))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	deps := NewDependencies()
	if err := NewRootCmd(deps).Execute(); err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err))
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies global flag overrides
func loadConfig(deps *Dependencies, flags *globalFlags) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if flags.endpoint != "" {
		cfg.Endpoint = flags.endpoint
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	return cfg, nil
}

// newLogger opens the log file configured in cfg
func newLogger(cfg config.Config) (zerolog.Logger, io.Closer, error) {
	opts := logging.DefaultOptions()
	opts.Level = cfg.Log.Level

	path, err := config.GetLogPath(cfg)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	opts.File = path

	logger, closer, err := logging.New(opts)
	if err != nil {
		return zerolog.Nop(), closer, err
	}
	return logger.With().Str("version", models.Version).Logger(), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
