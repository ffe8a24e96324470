package llm

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/config"
	"github.com/ekaya-inc/ekaya-enrich/pkg/retry"
)

// NewClientFromConfig builds the configured provider's client wrapped with retries.
// databricksHTTP authorises Databricks serving calls and is ignored for other providers.
func NewClientFromConfig(cfg *config.Config, databricksHTTP *http.Client, logger *zap.Logger) (LLMClient, error) {
	var inner LLMClient
	var err error

	switch cfg.LLM.Provider {
	case config.ProviderDatabricks:
		inner, err = NewClient(&Config{
			Endpoint:   cfg.LLMBaseURL(),
			Model:      cfg.LLM.Model,
			MaxTokens:  cfg.LLM.MaxTokens,
			HTTPClient: databricksHTTP,
		}, logger)
	case config.ProviderAnthropic:
		inner, err = NewAnthropicClient(&AnthropicConfig{
			APIKey:    cfg.LLM.AnthropicAPIKey,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
			BaseURL:   cfg.LLM.BaseURL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.LLM.Provider, err)
	}

	return NewRetryingClient(inner, retry.DefaultConfig(), logger), nil
}
