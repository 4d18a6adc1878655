// Package config loads folio settings using Viper from a .folio.yml file,
// FOLIO_ environment variables and command-line flags.
//
// Load applies defaults for anything left unset and then validates each
// section. Validation failures are returned as config errors naming the
// offending key.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/folio/internal/errors"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultHost           = "localhost"
	DefaultPort           = 8080
	DefaultContentPath    = "content/portfolio.yaml"
	DefaultContactTimeout = 10 * time.Second
	DefaultRevertDelay    = 5 * time.Second
	DefaultRateLimit      = 5
	DefaultThreshold      = 150
	DefaultScrolledOffset = 20
	DefaultInboxPath      = ".folio/inbox.db"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Content    ContentConfig    `mapstructure:"content"`
	Contact    ContactConfig    `mapstructure:"contact"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Inbox      InboxConfig      `mapstructure:"inbox"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Environment    string   `mapstructure:"environment"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ContentConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// ContactConfig controls where the contact form delivers. An empty Endpoint
// stores messages in the local inbox. RateLimit caps form posts per client
// per minute; 0 turns the limit off.
type ContactConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RevertDelay time.Duration `mapstructure:"revert_delay"`
	RateLimit   int           `mapstructure:"rate_limit"`
}

type NavigationConfig struct {
	Threshold      float64       `mapstructure:"threshold"`
	ScrolledOffset float64       `mapstructure:"scrolled_offset"`
	Throttle       time.Duration `mapstructure:"throttle"`
}

type InboxConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Keys lists every configuration key.
var Keys = []string{
	"server.host", "server.port", "server.allowed_origins", "server.environment",
	"content.path", "content.watch",
	"contact.endpoint", "contact.timeout", "contact.revert_delay", "contact.rate_limit",
	"navigation.threshold", "navigation.scrolled_offset", "navigation.throttle",
	"inbox.enabled", "inbox.path",
	"log.level", "log.format",
}

// BindEnv makes every key readable from FOLIO_<SECTION>_<KEY> variables.
// AutomaticEnv alone does not surface keys to Unmarshal that no file or flag
// has mentioned.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, errors.ErrCodeConfigInvalid,
			"failed to decode configuration")
	}

	applyDefaults(v, &config)

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyDefaults(v *viper.Viper, config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if !v.IsSet("server.port") {
		config.Server.Port = DefaultPort
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}

	if config.Content.Path == "" {
		config.Content.Path = DefaultContentPath
	}
	if !v.IsSet("content.watch") {
		config.Content.Watch = config.Server.Environment == "development"
	}

	if config.Contact.Timeout == 0 {
		config.Contact.Timeout = DefaultContactTimeout
	}
	if config.Contact.RevertDelay == 0 {
		config.Contact.RevertDelay = DefaultRevertDelay
	}
	if !v.IsSet("contact.rate_limit") {
		config.Contact.RateLimit = DefaultRateLimit
	}

	if !v.IsSet("navigation.threshold") {
		config.Navigation.Threshold = DefaultThreshold
	}
	if !v.IsSet("navigation.scrolled_offset") {
		config.Navigation.ScrolledOffset = DefaultScrolledOffset
	}

	if !v.IsSet("inbox.enabled") {
		config.Inbox.Enabled = true
	}
	if config.Inbox.Path == "" {
		config.Inbox.Path = DefaultInboxPath
	}

	if config.Log.Level == "" {
		config.Log.Level = DefaultLogLevel
	}
	if config.Log.Format == "" {
		config.Log.Format = DefaultLogFormat
	}
}

func validateConfig(config *Config) error {
	checks := []struct {
		section string
		check   func() error
	}{
		{"server", func() error { return validateServerConfig(&config.Server) }},
		{"content", func() error { return validateContentConfig(&config.Content) }},
		{"contact", func() error { return validateContactConfig(&config.Contact, config.Inbox) }},
		{"navigation", func() error { return validateNavigationConfig(&config.Navigation) }},
		{"inbox", func() error { return validateInboxConfig(&config.Inbox) }},
		{"log", func() error { return validateLogConfig(&config.Log) }},
	}

	for _, c := range checks {
		if err := c.check(); err != nil {
			return errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("%s config: %s", c.section, err.Error())).WithComponent("config")
		}
	}
	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// 0 lets the system pick a port, which tests rely on.
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", "/"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	switch config.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("environment %q must be development or production", config.Environment)
	}

	for _, origin := range config.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("allowed_origins contains an empty entry")
		}
	}
	return nil
}

func validateContentConfig(config *ContentConfig) error {
	switch strings.ToLower(filepath.Ext(config.Path)) {
	case ".yaml", ".yml", ".toml", ".json":
		return nil
	default:
		return fmt.Errorf("path %q must be a .yaml, .yml, .toml or .json file", config.Path)
	}
}

func validateContactConfig(config *ContactConfig, inbox InboxConfig) error {
	if config.Endpoint != "" {
		u, err := url.Parse(config.Endpoint)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("endpoint %q must be an http or https URL", config.Endpoint)
		}
		if u.Host == "" {
			return fmt.Errorf("endpoint %q has no host", config.Endpoint)
		}
	} else if !inbox.Enabled {
		return fmt.Errorf("endpoint is required when the inbox is disabled")
	}

	if config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if config.RevertDelay < 0 {
		return fmt.Errorf("revert_delay must not be negative")
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}

func validateNavigationConfig(config *NavigationConfig) error {
	if config.Threshold < 0 {
		return fmt.Errorf("threshold must not be negative")
	}
	if config.ScrolledOffset < 0 {
		return fmt.Errorf("scrolled_offset must not be negative")
	}
	if config.Throttle < 0 {
		return fmt.Errorf("throttle must not be negative")
	}
	return nil
}

func validateInboxConfig(config *InboxConfig) error {
	if !config.Enabled || config.Path == ":memory:" {
		return nil
	}
	cleanPath := filepath.Clean(config.Path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", config.Path)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("level %q must be debug, info, warn or error", config.Level)
	}
	switch config.Format {
	case "console", "json", "text":
	default:
		return fmt.Errorf("format %q must be console or json", config.Format)
	}
	return nil
}
