package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/danieljhkim/sphere/internal/logging"
)

// Settings is the user-level sphere configuration. It is read from
// $XDG_CONFIG_HOME/sphere/config.yaml (or ~/.config/sphere/config.yaml)
// and SPHERE_* environment variables.
type Settings struct {
	Identity IdentityConfig `mapstructure:"identity"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// IdentityConfig is who this caller claims to be when acquiring locks.
type IdentityConfig struct {
	// Project overrides the project resolved from the working directory.
	Project string `mapstructure:"project"`
	// Agent identifies the tool or person acting (default: "cli")
	Agent string `mapstructure:"agent"`
	// Protocol names the workflow the lock is taken under (default: "manual")
	Protocol string `mapstructure:"protocol"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: warn)
	Level string `mapstructure:"level"`
	// Format is text or json (default: text)
	Format string `mapstructure:"format"`
	// File, when set, receives JSON logs instead of stderr.
	File string `mapstructure:"file"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Identity: IdentityConfig{
			Agent:    "cli",
			Protocol: "manual",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: logging.FormatText,
		},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("identity.project", defaults.Identity.Project)
	v.SetDefault("identity.agent", defaults.Identity.Agent)
	v.SetDefault("identity.protocol", defaults.Identity.Protocol)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.file", defaults.Logging.File)
}

// NewViper returns a viper instance with defaults, environment binding and
// the config file (explicit path, or the user config dir) loaded.
// A missing config file is not an error; a malformed one is.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix("SPHERE")
	// SPHERE_IDENTITY_AGENT for identity.agent
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile == "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

// Load reads settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if errs := s.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return &s, nil
}

// ConfigDir returns the path to the user's sphere config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sphere")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sphere"
	}
	return filepath.Join(home, ".config", "sphere")
}

// ValidationError represents a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Validate checks the settings and returns every problem found.
func (s *Settings) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(s.Identity.Agent) == "" {
		errs = append(errs, ValidationError{Field: "identity.agent", Value: s.Identity.Agent, Message: "must not be empty"})
	}
	if strings.TrimSpace(s.Identity.Protocol) == "" {
		errs = append(errs, ValidationError{Field: "identity.protocol", Value: s.Identity.Protocol, Message: "must not be empty"})
	}
	if !logging.IsValidLevel(s.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   s.Logging.Level,
			Message: fmt.Sprintf("must be one of %s", strings.ToLower(strings.Join(logging.ValidLevels(), ", "))),
		})
	}
	switch s.Logging.Format {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, ValidationError{Field: "logging.format", Value: s.Logging.Format, Message: "must be text or json"})
	}

	return errs
}

// NewLogger builds the logger described by the logging settings. The
// returned logger must be closed when it owns a file.
func (s *Settings) NewLogger() (*logging.Logger, error) {
	if s.Logging.File != "" {
		return logging.NewFileLogger(s.Logging.File, s.Logging.Level)
	}
	return logging.New(os.Stderr, s.Logging.Level, s.Logging.Format), nil
}
