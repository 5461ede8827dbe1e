package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Mail dispatch methods.
const (
	MailMethodComposer = "composer"
	MailMethodGmail    = "gmail"
	MailMethodSMTP     = "smtp"
)

// BackendConfig points the client at the advising chat backend.
type BackendConfig struct {
	// BaseURL is the root URL of the agent server.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// AppName is the agent application the sessions belong to.
	AppName string `mapstructure:"app_name" yaml:"app_name"`

	// TimeoutSec bounds a single request, in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns TimeoutSec as a duration.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Markdown bool `mapstructure:"markdown" yaml:"markdown"`
	WordWrap int  `mapstructure:"word_wrap" yaml:"word_wrap"`
}

// MailConfig controls how "contact your advisor" actions are sent.
type MailConfig struct {
	// Method is one of composer, gmail or smtp.
	Method string `mapstructure:"method" yaml:"method"`

	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" yaml:"smtp_port"`
	StartTLS bool   `mapstructure:"starttls" yaml:"starttls"`
	Username string `mapstructure:"username" yaml:"username"`

	// DryRun builds the message but never connects.
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`

	// IMAPHost enables saving a copy of sent mail when set.
	IMAPHost    string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort    int    `mapstructure:"imap_port" yaml:"imap_port"`
	SentMailbox string `mapstructure:"sent_mailbox" yaml:"sent_mailbox"`
}

// LogConfig configures the file logger. An empty Path disables logging.
type LogConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Level string `mapstructure:"level" yaml:"level"`
}

// StorageConfig locates the local database.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Mail    MailConfig    `mapstructure:"mail" yaml:"mail"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// EnvPrefix prefixes environment overrides, e.g. ADVISORAI_BACKEND_BASE_URL.
const EnvPrefix = "ADVISORAI"

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/advisorai/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultDBPath returns ~/.config/advisorai/advisorai.db.
func DefaultDBPath() string {
	return filepath.Join(configDir(), "advisorai.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "advisorai")
}

var defaults = map[string]any{
	"backend.base_url":    "http://localhost:8000",
	"backend.app_name":    "cs_advisor",
	"backend.timeout_sec": 60,
	"display.markdown":    true,
	"display.word_wrap":   0,
	"mail.method":         MailMethodComposer,
	"mail.smtp_host":      "",
	"mail.smtp_port":      465,
	"mail.starttls":       false,
	"mail.username":       "",
	"mail.dry_run":        false,
	"mail.imap_host":      "",
	"mail.imap_port":      993,
	"mail.sent_mailbox":   "Sent",
	"log.path":            "",
	"log.level":           "info",
	"storage.db_path":     "",
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetConfigType("yaml")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults and environment overrides apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig returns the defaults with environment overrides applied.
func DefaultConfig() (*AppConfig, error) {
	return decode(newViper(""))
}

func decode(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}

	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = DefaultDBPath()
	}
	return cfg, nil
}

// Validate rejects settings the client cannot act on.
func (c *AppConfig) Validate() error {
	switch c.Mail.Method {
	case MailMethodComposer, MailMethodGmail:
	case MailMethodSMTP:
		if c.Mail.SMTPHost == "" {
			return errors.New("mail.smtp_host is required when mail.method is smtp")
		}
	default:
		return fmt.Errorf("unknown mail.method %q", c.Mail.Method)
	}

	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	if c.Backend.TimeoutSec <= 0 {
		return fmt.Errorf("backend.timeout_sec must be positive, got %d", c.Backend.TimeoutSec)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("display", cfg.Display)
	v.Set("mail", cfg.Mail)
	v.Set("log", cfg.Log)
	v.Set("storage", cfg.Storage)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
