package alert

import "time"

// WebhookConfig defines a webhook alert destination.
type WebhookConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"`  // "generic", "slack"
	Classes []string          `yaml:"classes" json:"classes"` // empty = every class
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// BreakerConfig bounds how long a failing mail sink keeps being tried.
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures" json:"max_failures"`
	Cooldown    time.Duration `yaml:"cooldown"     json:"cooldown"`
}

// DefaultBreaker trips after three consecutive send failures and probes
// again after a minute.
func DefaultBreaker() BreakerConfig {
	return BreakerConfig{MaxFailures: 3, Cooldown: time.Minute}
}
