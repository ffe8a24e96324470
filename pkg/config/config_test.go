package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves the test into an empty directory so no stray .env or config.yaml is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		_ = os.Chdir(originalDir)
	})
	return tmpDir
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := chdirTemp(t)
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
port: "9000"
env: "test"
databricks:
  server_hostname: "dbc-yaml.cloud.databricks.com"
  http_path: "/sql/1.0/warehouses/yaml123"
  client_id: "yaml-client"
preview:
  default_limit: 50
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	t.Setenv("BASE_URL", "")
	t.Setenv("LLM_PROVIDER", "databricks")
	t.Setenv("PORT", "9443")
	t.Setenv("DATABRICKS_SERVER_HOSTNAME", "dbc-env.cloud.databricks.com")
	t.Setenv("DATABRICKS_CLIENT_SECRET", "shh")

	cfg, err := Load(configPath, "test-version")
	require.NoError(t, err)

	assert.Equal(t, "9443", cfg.Port, "env should override YAML")
	assert.Equal(t, "dbc-env.cloud.databricks.com", cfg.Databricks.ServerHostname)
	assert.Equal(t, "yaml-client", cfg.Databricks.ClientID, "YAML value should survive without env")
	assert.Equal(t, "shh", cfg.Databricks.ClientSecret)
	assert.Equal(t, 50, cfg.Preview.DefaultLimit)
	assert.Equal(t, 1000, cfg.Preview.MaxLimit, "default applies")
	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "http://localhost:9443", cfg.BaseURL)
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	chdirTemp(t)

	t.Setenv("BASE_URL", "")
	t.Setenv("LLM_PROVIDER", "databricks")
	t.Setenv("PORT", "8123")
	t.Setenv("SESSION_TTL_MINUTES", "60")

	cfg, err := Load("", "dev")
	require.NoError(t, err)

	assert.Equal(t, "8123", cfg.Port)
	assert.Equal(t, time.Hour, cfg.Session.TTL())
	assert.Equal(t, "databricks-meta-llama-3-3-70b-instruct", cfg.LLM.Model)
	assert.Equal(t, 120*time.Second, cfg.Timeouts.Generate())
	assert.True(t, cfg.Console.EnableColumnEnrichment)
}

func TestLoad_DotEnvFile(t *testing.T) {
	tmpDir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("DATABRICKS_CLIENT_ID=from-dotenv\n"), 0o644))
	t.Setenv("LLM_PROVIDER", "databricks")
	// Registered with t.Setenv so the value godotenv sets is restored afterwards.
	t.Setenv("DATABRICKS_CLIENT_ID", "")
	require.NoError(t, os.Unsetenv("DATABRICKS_CLIENT_ID"))

	cfg, err := Load("", "dev")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Databricks.ClientID)
}

func TestLoad_AnthropicRequiresKey(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := Load("", "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestLoad_UnknownProvider(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LLM_PROVIDER", "mystery")

	_, err := Load("", "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestLoad_TLSRequiresBothFiles(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LLM_PROVIDER", "databricks")
	t.Setenv("TLS_CERT_PATH", "/tmp/cert.pem")
	t.Setenv("TLS_KEY_PATH", "")

	_, err := Load("", "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be provided together")
}

func TestDatabricksConfig_Derived(t *testing.T) {
	d := DatabricksConfig{
		ServerHostname: "dbc-1.cloud.databricks.com",
		HTTPPath:       "/sql/1.0/warehouses/abc123",
	}
	assert.Equal(t, "https://dbc-1.cloud.databricks.com", d.WorkspaceURL())
	assert.Equal(t, "abc123", d.WarehouseID())

	d.ServerHostname = "http://127.0.0.1:9999/"
	assert.Equal(t, "http://127.0.0.1:9999", d.WorkspaceURL(), "explicit scheme is kept for local fakes")

	d.HTTPPath = "/sql/1.0/warehouses/xyz/"
	assert.Equal(t, "xyz", d.WarehouseID())
}

func TestConfig_LLMBaseURL(t *testing.T) {
	cfg := &Config{Databricks: DatabricksConfig{ServerHostname: "dbc-1.cloud.databricks.com"}}
	assert.Equal(t, "https://dbc-1.cloud.databricks.com/serving-endpoints", cfg.LLMBaseURL())

	cfg.LLM.BaseURL = "http://localhost:11434/v1/"
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLMBaseURL())
}

func TestConfig_ValidateServer(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABRICKS_SERVER_HOSTNAME")
	assert.Contains(t, err.Error(), "SESSION_SECRET")

	cfg = &Config{
		Databricks: DatabricksConfig{
			ServerHostname: "h",
			HTTPPath:       "/sql/1.0/warehouses/w",
			ClientID:       "id",
			ClientSecret:   "secret",
		},
		Session: SessionConfig{Secret: "s"},
	}
	assert.NoError(t, cfg.ValidateServer())
}
