// Package config handles configuration for concierge.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/diogo/concierge/internal/models"
)

// EnvPrefix is the prefix of every environment override (CONCIERGE_BASE_URL, ...)
const EnvPrefix = "CONCIERGE"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" yaml:"style"`                           // "dark", "light", "notty", ...
	EnableEmoji      bool   `json:"enable_emoji" yaml:"enable_emoji"`             // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines" yaml:"preserve_newlines"`   // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap" yaml:"table_wrap"`                 // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links" yaml:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	BaseURL   string `json:"base_url" yaml:"base_url" envconfig:"BASE_URL"`
	SessionID string `json:"session_id" yaml:"session_id" envconfig:"SESSION_ID"`
	// TimeoutSeconds bounds a single request. Zero disables the limit.
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds" envconfig:"TIMEOUT"`
	// ClientProfile selects the TLS fingerprint used by the transport
	ClientProfile string `json:"client_profile" yaml:"client_profile" envconfig:"CLIENT_PROFILE"`
	// IncludeFallbackInRequests keeps failed-turn fallback replies in the history sent to the service
	IncludeFallbackInRequests bool `json:"include_fallback_in_requests" yaml:"include_fallback_in_requests" envconfig:"INCLUDE_FALLBACK"`

	CopyToClipboard bool           `json:"copy_to_clipboard" yaml:"copy_to_clipboard" envconfig:"COPY_TO_CLIPBOARD"`
	TUITheme        string         `json:"tui_theme,omitempty" yaml:"tui_theme,omitempty" envconfig:"TUI_THEME"`
	LogLevel        string         `json:"log_level" yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFile         string         `json:"log_file,omitempty" yaml:"log_file,omitempty" envconfig:"LOG_FILE"`
	Markdown        MarkdownConfig `json:"markdown" yaml:"markdown" ignored:"true"`
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
		BaseURL:                   models.DefaultBaseURL,
		SessionID:                 models.DefaultSessionID,
		TimeoutSeconds:            120,
		ClientProfile:             "chrome_120",
		IncludeFallbackInRequests: true,
		CopyToClipboard:           false,
		TUITheme:                  "tokyonight",
		LogLevel:                  "warn",
		Markdown:                  DefaultMarkdownConfig(),
	}
}

// Timeout returns the request timeout as a duration
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the values that would make every request fail
func (c Config) Validate() error {
	if strings.TrimSpace(c.SessionID) == "" {
		return fmt.Errorf("session_id cannot be empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base_url %q: missing host", c.BaseURL)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}
	if !IsKnownProfile(c.ClientProfile) {
		return fmt.Errorf("unknown client_profile %q (see 'concierge config profiles')", c.ClientProfile)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".concierge"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

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
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk and applies environment overrides
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads a config file on top of the defaults. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays CONCIERGE_* environment variables onto cfg.
// Unset variables leave the current value untouched.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ToYAML renders cfg for display
func (c Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// EnvUsage writes the list of supported environment variables
func EnvUsage() error {
	return envconfig.Usage(EnvPrefix, &Config{})
}

// AvailableProfiles returns the TLS client profiles accepted in client_profile, sorted
func AvailableProfiles() []string {
	names := make([]string, 0, len(profiles.MappedTLSClients))
	for name := range profiles.MappedTLSClients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnownProfile reports whether name is a TLS client profile.
// An empty name selects the default profile.
func IsKnownProfile(name string) bool {
	if name == "" {
		return true
	}
	_, ok := profiles.MappedTLSClients[strings.ToLower(name)]
	return ok
}
