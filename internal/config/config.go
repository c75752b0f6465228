// Package config loads zhi settings from a YAML or TOML file, a .env file
// and ZHI_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/martinemde/zhi/internal/color"
	"github.com/martinemde/zhi/internal/popup"
	"gopkg.in/yaml.v3"
)

// Transport selects how popups reach the user
type Transport string

const (
	// TransportSocket sends popups to a running `zhi ui` host.
	TransportSocket Transport = "socket"
	// TransportExec runs a popup command for every request.
	TransportExec Transport = "exec"
)

// Config is the resolved configuration
type Config struct {
	Transport    Transport
	SocketPath   string
	PopupCommand []string // empty means "<this binary> popup"
	PopupTimeout time.Duration
	DialTimeout  time.Duration
	History      bool
	HistoryPath  string
	LogLevel     string
	Color        color.Mode
}

// fileConfig mirrors the config file. Pointers distinguish unset keys.
type fileConfig struct {
	Transport    string `yaml:"transport" toml:"transport"`
	SocketPath   string `yaml:"socket_path" toml:"socket_path"`
	PopupCommand string `yaml:"popup_command" toml:"popup_command"`
	PopupTimeout string `yaml:"popup_timeout" toml:"popup_timeout"`
	DialTimeout  string `yaml:"dial_timeout" toml:"dial_timeout"`
	History      *bool  `yaml:"history" toml:"history"`
	HistoryPath  string `yaml:"history_path" toml:"history_path"`
	LogLevel     string `yaml:"log_level" toml:"log_level"`
	Color        string `yaml:"color" toml:"color"`
}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// Path is an explicit config file; it must exist when set.
	Path string
	// EnvFile is a dotenv file loaded if present. Defaults to ".env".
	EnvFile string
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Transport:   TransportSocket,
		SocketPath:  popup.DefaultSocketPath(),
		DialTimeout: popup.DefaultDialTimeout,
		History:     true,
		HistoryPath: DefaultHistoryPath(),
		LogLevel:    "info",
		Color:       color.Auto,
	}
}

// DefaultPath returns the config file used when none is given
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(homeDir(), ".config")
	}
	return filepath.Join(dir, "zhi", "config.yaml")
}

// DefaultHistoryPath returns the default location of the history database
func DefaultHistoryPath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		dir = filepath.Join(homeDir(), ".local", "share")
	}
	return filepath.Join(dir, "zhi", "history.db")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.TempDir()
}

// Load resolves the configuration: defaults, then the config file, then the
// dotenv file and environment.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path := opts.Path
	required := path != ""
	if path == "" {
		path = DefaultPath()
	}

	fc, err := readFile(path, required)
	if err != nil {
		return nil, err
	}
	if fc != nil {
		if err := cfg.apply(*fc); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		// Variables already in the environment win over the file
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.apply(fromEnv()); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string, required bool) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	}
	return &fc, nil
}

func fromEnv() fileConfig {
	fc := fileConfig{
		Transport:    os.Getenv("ZHI_TRANSPORT"),
		SocketPath:   os.Getenv(popup.SocketEnvVar),
		PopupCommand: os.Getenv("ZHI_POPUP_COMMAND"),
		PopupTimeout: os.Getenv("ZHI_POPUP_TIMEOUT"),
		DialTimeout:  os.Getenv("ZHI_DIAL_TIMEOUT"),
		HistoryPath:  os.Getenv("ZHI_HISTORY_PATH"),
		LogLevel:     os.Getenv("ZHI_LOG_LEVEL"),
		Color:        os.Getenv("ZHI_COLOR"),
	}
	if v := os.Getenv("ZHI_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			fc.History = &b
		}
	}
	return fc
}

// apply overlays the non-empty values of fc
func (c *Config) apply(fc fileConfig) error {
	if fc.Transport != "" {
		c.Transport = Transport(strings.ToLower(fc.Transport))
	}
	if fc.SocketPath != "" {
		c.SocketPath = expandHome(fc.SocketPath)
	}
	if fc.PopupCommand != "" {
		c.PopupCommand = strings.Fields(fc.PopupCommand)
	}
	if fc.PopupTimeout != "" {
		d, err := time.ParseDuration(fc.PopupTimeout)
		if err != nil {
			return fmt.Errorf("popup_timeout: %w", err)
		}
		c.PopupTimeout = d
	}
	if fc.DialTimeout != "" {
		d, err := time.ParseDuration(fc.DialTimeout)
		if err != nil {
			return fmt.Errorf("dial_timeout: %w", err)
		}
		c.DialTimeout = d
	}
	if fc.History != nil {
		c.History = *fc.History
	}
	if fc.HistoryPath != "" {
		c.HistoryPath = expandHome(fc.HistoryPath)
	}
	if fc.LogLevel != "" {
		c.LogLevel = strings.ToLower(fc.LogLevel)
	}
	if fc.Color != "" {
		c.Color = color.Mode(strings.ToLower(fc.Color))
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportSocket:
		if c.SocketPath == "" {
			return fmt.Errorf("socket_path is required for the socket transport")
		}
	case TransportExec:
	default:
		return fmt.Errorf("invalid transport %q (expected socket or exec)", c.Transport)
	}

	if c.PopupTimeout < 0 {
		return fmt.Errorf("popup_timeout must not be negative")
	}
	if c.DialTimeout < 0 {
		return fmt.Errorf("dial_timeout must not be negative")
	}
	if c.History && c.HistoryPath == "" {
		return fmt.Errorf("history_path is required when history is enabled")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if _, err := color.ParseMode(string(c.Color)); err != nil {
		return err
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
