package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/retry"
)

// RetryingClient wraps an LLMClient and retries transient failures
// (rate limits, connection errors, 5xx) with exponential backoff.
type RetryingClient struct {
	inner  LLMClient
	config *retry.Config
	logger *zap.Logger
}

// NewRetryingClient wraps inner. A nil config uses retry.DefaultConfig.
func NewRetryingClient(inner LLMClient, config *retry.Config, logger *zap.Logger) *RetryingClient {
	return &RetryingClient{
		inner:  inner,
		config: config,
		logger: logger.Named("llm-retry"),
	}
}

// GenerateResponse calls the inner client until it succeeds, fails permanently,
// or the retry budget or ctx runs out.
func (c *RetryingClient) GenerateResponse(
	ctx context.Context,
	prompt string,
	systemMessage string,
	temperature float64,
) (*GenerateResponseResult, error) {
	attempt := 0
	return retry.DoIfRetryableWithResult(ctx, c.config, func() (*GenerateResponseResult, error) {
		attempt++
		result, err := c.inner.GenerateResponse(ctx, prompt, systemMessage, temperature)
		if err != nil && retry.IsRetryable(err) {
			c.logger.Warn("Transient LLM failure",
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return result, err
	})
}

// GetModel returns the inner client's model.
func (c *RetryingClient) GetModel() string {
	return c.inner.GetModel()
}

// GetEndpoint returns the inner client's endpoint.
func (c *RetryingClient) GetEndpoint() string {
	return c.inner.GetEndpoint()
}
