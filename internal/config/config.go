// Package config loads the trustwatch YAML configuration.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/trustwatch/internal/alert"
	"github.com/ppiankov/trustwatch/internal/scoring"
	"github.com/ppiankov/trustwatch/internal/warnings"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Mail backends.
const (
	MailGmail = "gmail"
	MailSpool = "spool"
)

// Environment overrides, applied after the file is decoded.
const (
	EnvAdminEmail       = "TRUSTWATCH_ADMIN_EMAIL"
	EnvEmployee         = "TRUSTWATCH_EMPLOYEE"
	EnvGmailCredentials = "TRUSTWATCH_GMAIL_CREDENTIALS"
	EnvGmailToken       = "TRUSTWATCH_GMAIL_TOKEN"
	EnvLogLevel         = "TRUSTWATCH_LOG_LEVEL"
)

type OfficeHours struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type Presence struct {
	Command string `yaml:"command"`
}

type Spool struct {
	Inbox  string `yaml:"inbox"`
	Outbox string `yaml:"outbox"`
}

type Mail struct {
	Backend         string `yaml:"backend"`
	From            string `yaml:"from"`
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	Spool           Spool  `yaml:"spool"`
}

type Warnings struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type Alerts struct {
	FileAccessImmediate bool                  `yaml:"file_access_immediate"`
	Breaker             alert.BreakerConfig   `yaml:"breaker"`
	Webhooks            []alert.WebhookConfig `yaml:"webhooks"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full trustwatch configuration.
type Config struct {
	Employee       string        `yaml:"employee"`
	AdminEmail     string        `yaml:"admin_email"`
	TrustThreshold int           `yaml:"trust_threshold"`
	Keywords       []string      `yaml:"keywords"`
	OfficeHours    OfficeHours   `yaml:"office_hours"`
	SensitiveFiles []string      `yaml:"sensitive_files"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	MaxMessages    int           `yaml:"max_messages"`
	Presence       Presence      `yaml:"presence"`
	Mail           Mail          `yaml:"mail"`
	Warnings       Warnings      `yaml:"warnings"`
	AuditLog       string        `yaml:"audit_log"`
	Alerts         Alerts        `yaml:"alerts"`
	Log            Log           `yaml:"log"`
	MetricsAddr    string        `yaml:"metrics_addr"`
}

// DefaultDir returns ~/.trustwatch, or ./.trustwatch without a home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trustwatch"
	}
	return filepath.Join(home, ".trustwatch")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		TrustThreshold: scoring.DefaultThreshold,
		Keywords:       append([]string(nil), scoring.DefaultKeywords...),
		OfficeHours:    OfficeHours{Start: "09:00", End: "18:00"},
		PollInterval:   time.Second,
		MaxMessages:    5,
		Mail: Mail{
			Backend:         MailGmail,
			CredentialsFile: filepath.Join(dir, "credentials.json"),
			TokenFile:       filepath.Join(dir, "token.json"),
			Spool: Spool{
				Inbox:  filepath.Join(dir, "spool", "inbox"),
				Outbox: filepath.Join(dir, "spool", "outbox"),
			},
		},
		Warnings: Warnings{
			Backend: warnings.BackendCSV,
			Path:    filepath.Join(dir, "warnings.csv"),
		},
		AuditLog: filepath.Join(dir, "audit.csv"),
		Alerts: Alerts{
			FileAccessImmediate: true,
			Breaker:             alert.DefaultBreaker(),
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads the config at path, decoded over DefaultConfig. An empty path
// means DefaultPath. A missing file yields the defaults. Environment
// overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash is Load that also returns the SHA-256 of the file contents,
// used to skip reloads when nothing changed.
func LoadWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("config: read %s: %w", path, err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, "", fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, hash, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAdminEmail); v != "" {
		c.AdminEmail = v
	}
	if v := os.Getenv(EnvEmployee); v != "" {
		c.Employee = v
	}
	if v := os.Getenv(EnvGmailCredentials); v != "" {
		c.Mail.CredentialsFile = v
	}
	if v := os.Getenv(EnvGmailToken); v != "" {
		c.Mail.TokenFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// OfficeWindow parses the office-hours window.
func (c *Config) OfficeWindow() (scoring.Window, error) {
	w, err := scoring.ParseWindow(c.OfficeHours.Start, c.OfficeHours.End)
	if err != nil {
		return scoring.Window{}, fmt.Errorf("%w: office_hours: %v", ErrInvalid, err)
	}
	return w, nil
}

// Validate checks the fields a monitoring session depends on.
func (c *Config) Validate() error {
	if _, err := c.OfficeWindow(); err != nil {
		return err
	}
	if c.TrustThreshold < 0 || c.TrustThreshold > 100 {
		return fmt.Errorf("%w: trust_threshold %d outside [0, 100]", ErrInvalid, c.TrustThreshold)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalid)
	}
	if c.MaxMessages < 0 {
		return fmt.Errorf("%w: max_messages must not be negative", ErrInvalid)
	}
	switch c.Mail.Backend {
	case MailGmail, MailSpool:
	default:
		return fmt.Errorf("%w: mail.backend %q (want gmail or spool)", ErrInvalid, c.Mail.Backend)
	}
	switch c.Warnings.Backend {
	case warnings.BackendCSV, warnings.BackendSQLite:
	default:
		return fmt.Errorf("%w: warnings.backend %q (want csv or sqlite)", ErrInvalid, c.Warnings.Backend)
	}
	if c.Warnings.Path == "" {
		return fmt.Errorf("%w: warnings.path is required", ErrInvalid)
	}
	if c.AuditLog == "" {
		return fmt.Errorf("%w: audit_log is required", ErrInvalid)
	}
	for i, wh := range c.Alerts.Webhooks {
		if wh.URL == "" {
			return fmt.Errorf("%w: alerts.webhooks[%d].url is required", ErrInvalid, i)
		}
	}
	return nil
}

// Policy builds the immutable scoring policy.
func (c *Config) Policy() (scoring.Policy, error) {
	w, err := c.OfficeWindow()
	if err != nil {
		return scoring.Policy{}, err
	}
	return scoring.Policy{
		Keywords:    c.Keywords,
		OfficeHours: w,
		Threshold:   c.TrustThreshold,
	}, nil
}

// Scorer builds a scorer from the policy fields.
func (c *Config) Scorer() (*scoring.Scorer, error) {
	p, err := c.Policy()
	if err != nil {
		return nil, err
	}
	return scoring.NewScorer(p)
}
