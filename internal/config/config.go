package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultInterval        = 60 * time.Second
	DefaultCooldown        = 5 * time.Minute
	DefaultDispatchTimeout = 10 * time.Second
	DefaultHTTPPort        = 8080
)

// Config is the top-level configuration for hostpulsed.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Monitor  MonitorConfig   `yaml:"monitor"`
	Channels []ChannelConfig `yaml:"channels"`
	Server   ServerConfig    `yaml:"server"`
}

// MonitorConfig holds sampling and evaluation settings.
type MonitorConfig struct {
	// HostID identifies this host in alert keys and rendered messages.
	// Defaults to os.Hostname() when empty.
	HostID string `yaml:"host_id"`

	// Interval controls how often the metric source is sampled.
	Interval time.Duration `yaml:"interval"`

	// Cooldown suppresses repeat notifications for the same (metric, host)
	// condition for this duration after a notification is sent. Zero disables
	// debouncing entirely.
	Cooldown time.Duration `yaml:"cooldown"`

	// DispatchTimeout bounds each individual channel delivery call.
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`

	// DryRun renders alert messages without invoking channel adapters.
	DryRun bool `yaml:"dry_run"`

	// Source selects where metric snapshots come from.
	Source SourceConfig `yaml:"source"`

	// Rules is the ordered list of threshold rules. Evaluation order follows
	// declaration order.
	Rules []Rule `yaml:"rules"`
}

// SourceConfig describes the metric source to sample each tick.
type SourceConfig struct {
	// Type is one of: host | prometheus.
	Type string `yaml:"type"`

	// Endpoint is the metrics URL for the prometheus source type.
	Endpoint string `yaml:"endpoint"`

	// DiskPath is the mount point whose usage the host source reports.
	// Defaults to "/".
	DiskPath string `yaml:"disk_path"`

	// Auth configures how the sampler authenticates to the endpoint.
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS dial options.
	TLS TLSConfig `yaml:"tls"`
}

// Rule defines one threshold rule: fire when the named metric's value is
// greater than or equal to Limit.
type Rule struct {
	// Metric is the snapshot key this rule watches, e.g. "cpu_percent".
	Metric string `yaml:"metric"`

	// Limit is the inclusive threshold value.
	Limit float64 `yaml:"limit"`

	// Severity is one of: critical | warning | info. Defaults to warning.
	Severity string `yaml:"severity"`
}

// AuthConfig specifies the authentication mode for the metric source.
type AuthConfig struct {
	// Mode is one of: mtls | apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// mTLS fields — used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// API key fields — used when Mode == "apikey".
	// Header is the HTTP header name to send the key in.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// Bearer token fields — used when Mode == "bearer".
	TokenEnv string `yaml:"token_env"`

	// Basic auth fields — used when Mode == "basic".
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// TLSConfig holds TLS dial options for the metric source.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// ChannelConfig defines one notification delivery target.
type ChannelConfig struct {
	// Type is one of: slack | teams | webhook | email.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	// Used by slack, teams, and webhook channel types.
	URLEnv string `yaml:"url_env"`

	// SMTP fields — used when Type == "email".
	// SMTPAddr is the mail server address (host:port).
	SMTPAddr string `yaml:"smtp_addr"`
	// From is the sender address.
	From string `yaml:"from"`
	// To is the list of recipient addresses.
	To []string `yaml:"to"`
	// Username is the SMTP auth username; empty disables authentication.
	Username string `yaml:"username"`
	// PasswordEnv is the name of the environment variable holding the
	// SMTP password.
	PasswordEnv string `yaml:"password_env"`
}

// URL returns the webhook URL resolved from the environment.
func (c ChannelConfig) URL() string {
	if c.URLEnv == "" {
		return ""
	}
	return os.Getenv(c.URLEnv)
}

// SMTPPassword returns the SMTP password resolved from the environment.
func (c ChannelConfig) SMTPPassword() string {
	if c.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.PasswordEnv)
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket hub, and Prometheus
	// telemetry listen on.
	HTTPPort int `yaml:"http_port"`

	// Auth configures how the server authenticates incoming REST API requests.
	Auth ServerAuthConfig `yaml:"auth"`
}

// ServerAuthConfig configures REST API authentication.
type ServerAuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header carrying the key. Defaults to X-API-Key.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable holding the expected key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the server API key resolved from the environment.
func (a ServerAuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name or the default.
func (a ServerAuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return "X-API-Key"
	}
	return a.Header
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Interval:        DefaultInterval,
			Cooldown:        DefaultCooldown,
			DispatchTimeout: DefaultDispatchTimeout,
			Source:          SourceConfig{Type: "host"},
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	if cfg.Monitor.Cooldown < 0 {
		return fmt.Errorf("monitor.cooldown must not be negative")
	}
	if cfg.Monitor.DispatchTimeout <= 0 {
		return fmt.Errorf("monitor.dispatch_timeout must be positive")
	}

	switch cfg.Monitor.Source.Type {
	case "host":
	case "prometheus":
		if cfg.Monitor.Source.Endpoint == "" {
			return fmt.Errorf("monitor.source: endpoint is required for type prometheus")
		}
	default:
		return fmt.Errorf("monitor.source: unknown type %q", cfg.Monitor.Source.Type)
	}
	switch cfg.Monitor.Source.Auth.Mode {
	case "mtls", "apikey", "bearer", "basic", "none", "":
	default:
		return fmt.Errorf("monitor.source: unknown auth mode %q", cfg.Monitor.Source.Auth.Mode)
	}

	if len(cfg.Monitor.Rules) == 0 {
		return fmt.Errorf("monitor.rules: at least one rule is required")
	}
	for i, r := range cfg.Monitor.Rules {
		if r.Metric == "" {
			return fmt.Errorf("rules[%d]: metric is required", i)
		}
		switch r.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("rules[%d] %q: unknown severity %q", i, r.Metric, r.Severity)
		}
	}

	for i, ch := range cfg.Channels {
		switch ch.Type {
		case "slack", "teams", "webhook":
		case "email":
			if ch.SMTPAddr == "" {
				return fmt.Errorf("channels[%d]: smtp_addr is required for type email", i)
			}
			if ch.From == "" || len(ch.To) == 0 {
				return fmt.Errorf("channels[%d]: from and to are required for type email", i)
			}
		default:
			return fmt.Errorf("channels[%d]: unknown type %q", i, ch.Type)
		}
	}

	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth: unknown mode %q", cfg.Server.Auth.Mode)
	}

	return nil
}
