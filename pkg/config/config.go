package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultConfigPath is the YAML file read by Load when no path is given.
const DefaultConfigPath = "config.yaml"

// Config holds all configuration for ekaya-enrich.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (client secret, session secret, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	// CookieDomain is the domain for session cookies (optional).
	// If empty, it will be auto-derived from BaseURL.
	CookieDomain string `yaml:"cookie_domain" env:"COOKIE_DOMAIN" env-default:""`

	Session    SessionConfig    `yaml:"session"`
	Databricks DatabricksConfig `yaml:"databricks"`
	LLM        LLMConfig        `yaml:"llm"`
	Timeouts   TimeoutConfig    `yaml:"timeouts"`
	Preview    PreviewConfig    `yaml:"preview"`
	Console    ConsoleConfig    `yaml:"console"`
}

// SessionConfig holds login session settings.
type SessionConfig struct {
	// TTLMinutes is how long a login session stays valid.
	TTLMinutes int `yaml:"ttl_minutes" env:"SESSION_TTL_MINUTES" env-default:"480"`
	// Secret signs session cookies. Any passphrase; it is hashed to a 32-byte key.
	Secret string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML
}

// TTL returns the session lifetime as a duration.
func (s *SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// DatabricksConfig holds the workspace and SQL warehouse connection settings.
type DatabricksConfig struct {
	// ServerHostname is the workspace host, e.g. "dbc-1234.cloud.databricks.com".
	ServerHostname string `yaml:"server_hostname" env:"DATABRICKS_SERVER_HOSTNAME" env-default:""`
	// HTTPPath is the warehouse HTTP path, e.g. "/sql/1.0/warehouses/abc123".
	HTTPPath string `yaml:"http_path" env:"DATABRICKS_SQL_HTTP_PATH" env-default:""`
	// ClientID is the service principal used for M2M OAuth.
	ClientID     string `yaml:"client_id" env:"DATABRICKS_CLIENT_ID" env-default:""`
	ClientSecret string `yaml:"-" env:"DATABRICKS_CLIENT_SECRET"` // Secret - not in YAML
	// PollIntervalSeconds is the delay between statement status polls.
	PollIntervalSeconds int `yaml:"poll_interval_seconds" env:"DATABRICKS_POLL_INTERVAL_SECONDS" env-default:"2"`
	// MaxPolls bounds how many times a running statement is polled.
	MaxPolls int `yaml:"max_polls" env:"DATABRICKS_MAX_POLLS" env-default:"60"`
}

// WorkspaceURL returns the https base URL of the workspace.
func (d *DatabricksConfig) WorkspaceURL() string {
	host := strings.TrimSuffix(d.ServerHostname, "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}

// WarehouseID returns the last path segment of HTTPPath.
func (d *DatabricksConfig) WarehouseID() string {
	trimmed := strings.TrimRight(d.HTTPPath, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// PollInterval returns the statement poll interval as a duration.
func (d *DatabricksConfig) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalSeconds) * time.Second
}

// LLM providers.
const (
	ProviderDatabricks = "databricks"
	ProviderAnthropic  = "anthropic"
)

// LLMConfig selects the model used to draft descriptions.
type LLMConfig struct {
	// Provider is "databricks" (foundation model serving endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"databricks"`
	// Model is the serving endpoint name (databricks) or model id (anthropic).
	Model string `yaml:"model" env:"LLM_MODEL" env-default:"databricks-meta-llama-3-3-70b-instruct"`
	// BaseURL overrides the OpenAI-compatible base URL. Defaults to <workspace>/serving-endpoints.
	BaseURL     string  `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.3"`
	MaxTokens   int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"2048"`
	// AnthropicAPIKey is required when Provider is "anthropic".
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
}

// TimeoutConfig bounds each class of upstream call, in seconds.
type TimeoutConfig struct {
	MetadataSeconds int `yaml:"metadata_seconds" env:"TIMEOUT_METADATA_SECONDS" env-default:"60"`
	ReadSeconds     int `yaml:"read_seconds" env:"TIMEOUT_READ_SECONDS" env-default:"30"`
	GenerateSeconds int `yaml:"generate_seconds" env:"TIMEOUT_GENERATE_SECONDS" env-default:"120"`
	UpdateSeconds   int `yaml:"update_seconds" env:"TIMEOUT_UPDATE_SECONDS" env-default:"30"`
}

// Metadata is the timeout for catalog/schema/table listings and previews.
func (t *TimeoutConfig) Metadata() time.Duration { return seconds(t.MetadataSeconds) }

// Read is the timeout for description and column metadata reads.
func (t *TimeoutConfig) Read() time.Duration { return seconds(t.ReadSeconds) }

// Generate is the timeout for LLM generation requests.
func (t *TimeoutConfig) Generate() time.Duration { return seconds(t.GenerateSeconds) }

// Update is the timeout for comment updates.
func (t *TimeoutConfig) Update() time.Duration { return seconds(t.UpdateSeconds) }

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// PreviewConfig bounds table previews.
type PreviewConfig struct {
	DefaultLimit int `yaml:"default_limit" env:"PREVIEW_DEFAULT_LIMIT" env-default:"100"`
	MaxLimit     int `yaml:"max_limit" env:"PREVIEW_MAX_LIMIT" env-default:"1000"`
}

// ConsoleConfig holds settings for the terminal client.
type ConsoleConfig struct {
	// ServerURL is the ekaya-enrich API the console talks to.
	ServerURL string `yaml:"server_url" env:"CONSOLE_SERVER_URL" env-default:"http://localhost:8000"`
	// EnableColumnEnrichment shows the column description tab.
	EnableColumnEnrichment bool `yaml:"enable_column_enrichment" env:"CONSOLE_ENABLE_COLUMN_ENRICHMENT" env-default:"true"`
	// LogFile receives console logs. Empty discards them.
	LogFile string `yaml:"log_file" env:"CONSOLE_LOG_FILE" env-default:""`
}

// Load reads configuration from the given YAML path with environment variable overrides.
// A .env file in the working directory is loaded first when present.
// A missing YAML file is not an error: configuration then comes from the environment only.
// The version parameter is injected at build time and set on the returned Config.
func Load(path, version string) (*Config, error) {
	// .env is optional; existing environment variables win over its values
	_ = godotenv.Load()

	if path == "" {
		path = DefaultConfigPath
	}

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validateTLS(); err != nil {
		return nil, fmt.Errorf("invalid TLS configuration: %w", err)
	}

	if err := cfg.validateLLM(); err != nil {
		return nil, fmt.Errorf("invalid LLM configuration: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	// Use HTTPS scheme if TLS is configured
	if cfg.BaseURL == "" {
		scheme := "http"
		if cfg.TLSCertPath != "" {
			scheme = "https"
		}
		cfg.BaseURL = (&url.URL{
			Scheme: scheme,
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// ValidateServer checks the settings the API server cannot run without.
// The console and preview commands only need Console settings, so this is
// not part of Load.
func (c *Config) ValidateServer() error {
	var missing []string
	if c.Databricks.ServerHostname == "" {
		missing = append(missing, "DATABRICKS_SERVER_HOSTNAME")
	}
	if c.Databricks.HTTPPath == "" {
		missing = append(missing, "DATABRICKS_SQL_HTTP_PATH")
	}
	if c.Databricks.ClientID == "" {
		missing = append(missing, "DATABRICKS_CLIENT_ID")
	}
	if c.Databricks.ClientSecret == "" {
		missing = append(missing, "DATABRICKS_CLIENT_SECRET")
	}
	if c.Session.Secret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderDatabricks:
		return nil
	case ProviderAnthropic:
		if c.LLM.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", ProviderAnthropic)
		}
		return nil
	default:
		return fmt.Errorf("unknown provider %q", c.LLM.Provider)
	}
}

// LLMBaseURL returns the OpenAI-compatible base URL for the databricks provider.
func (c *Config) LLMBaseURL() string {
	if c.LLM.BaseURL != "" {
		return strings.TrimSuffix(c.LLM.BaseURL, "/")
	}
	return c.Databricks.WorkspaceURL() + "/serving-endpoints"
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return ResolveBindAddr(c.BindAddr) + ":" + c.Port
}
