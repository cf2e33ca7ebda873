// Package config handles configuration for streamchat.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/diogo/streamchat/internal/models"
)

const (
	configDirName  = ".streamchat"
	configFileName = "config.yaml"
	envPrefix      = "STREAMCHAT"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `mapstructure:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `mapstructure:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `mapstructure:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `mapstructure:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `mapstructure:"inline_table_links"` // Render links inline in tables
}

// LogConfig configures the log file
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File defaults to streamchat.log in the config directory
	File string `mapstructure:"file"`
}

// Config represents the user configuration
type Config struct {
	Endpoint       string `mapstructure:"endpoint"`
	WelcomeMessage string `mapstructure:"welcome_message"`
	// Headers are sent with every streaming request. Keys are case-insensitive.
	Headers        map[string]string `mapstructure:"headers"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
	// KeepPartialOnEnd keeps streamed text as the reply when a turn ends
	// without a final message.
	KeepPartialOnEnd bool           `mapstructure:"keep_partial_on_end"`
	CopyToClipboard  bool           `mapstructure:"copy_to_clipboard"`
	TUITheme         string         `mapstructure:"tui_theme"`
	Log              LogConfig      `mapstructure:"log"`
	Markdown         MarkdownConfig `mapstructure:"markdown"`
}

// Timeout returns the request timeout as a duration
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultConfig().Timeout()
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:         "",
		WelcomeMessage:   models.DefaultWelcomeMessage,
		Headers:          map[string]string{},
		TimeoutSeconds:   300,
		KeepPartialOnEnd: false,
		CopyToClipboard:  false,
		TUITheme:         "tokyonight",
		Log: LogConfig{
			Level: "info",
		},
		Markdown: DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, configDirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the config may carry API headers
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// GetLogPath returns the log file path, using the config directory by default
func GetLogPath(cfg Config) (string, error) {
	if cfg.Log.File != "" {
		return cfg.Log.File, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "streamchat.log"), nil
}

// newViper returns a viper instance with defaults and environment overrides
func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setValues(v, DefaultConfig())
	return v
}

// setValues registers every key of cfg as a default
func setValues(v *viper.Viper, cfg Config) {
	for key, value := range toMap(cfg) {
		v.SetDefault(key, value)
	}
}

func toMap(cfg Config) map[string]any {
	return map[string]any{
		"endpoint":                    cfg.Endpoint,
		"welcome_message":             cfg.WelcomeMessage,
		"headers":                     cfg.Headers,
		"timeout_seconds":             cfg.TimeoutSeconds,
		"keep_partial_on_end":         cfg.KeepPartialOnEnd,
		"copy_to_clipboard":           cfg.CopyToClipboard,
		"tui_theme":                   cfg.TUITheme,
		"log.level":                   cfg.Log.Level,
		"log.file":                    cfg.Log.File,
		"markdown.style":              cfg.Markdown.Style,
		"markdown.enable_emoji":       cfg.Markdown.EnableEmoji,
		"markdown.preserve_newlines":  cfg.Markdown.PreserveNewLines,
		"markdown.table_wrap":         cfg.Markdown.TableWrap,
		"markdown.inline_table_links": cfg.Markdown.InlineTableLinks,
	}
}

// LoadConfig loads the configuration from disk and the environment.
// A missing file yields the defaults.
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration from the given file
func LoadConfigFrom(configPath string) (Config, error) {
	v := newViper(configPath)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigTo(filepath.Join(configDir, configFileName), cfg)
}

// SaveConfigTo writes cfg to the given file
func SaveConfigTo(configPath string, cfg Config) error {
	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range toMap(cfg) {
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(configPath, 0o600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// Describe returns the settings as key/value pairs for display
func Describe(cfg Config) map[string]any {
	return toMap(cfg)
}
