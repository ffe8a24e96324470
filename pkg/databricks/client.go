// Package databricks talks to a Databricks workspace over REST: machine-to-machine
// OAuth, the SQL Statement Execution API and user credential checks.
package databricks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/logging"
	"github.com/ekaya-inc/ekaya-enrich/pkg/retry"
)

// DefaultRequestTimeout bounds a single REST call. Statement execution as a whole
// is bounded by the caller's context and MaxPolls.
const DefaultRequestTimeout = 60 * time.Second

// Config configures a Client.
type Config struct {
	// WorkspaceURL is the workspace base URL, e.g. "https://dbc-1.cloud.databricks.com".
	WorkspaceURL string
	// WarehouseID is the SQL warehouse statements run on.
	WarehouseID string
	// PollInterval is the delay between statement status polls.
	PollInterval time.Duration
	// MaxPolls bounds how many times a running statement is polled.
	MaxPolls int
	// HTTPClient sends authorised requests (see NewHTTPClient). Required.
	HTTPClient *http.Client
	// PlainClient sends unauthenticated requests for credential checks.
	// Defaults to a client with DefaultRequestTimeout.
	PlainClient *http.Client
	// Retry controls resubmission of statements on transient failures.
	Retry *retry.Config
}

// Client runs SQL statements against a warehouse and verifies user credentials.
type Client struct {
	workspaceURL string
	warehouseID  string
	pollInterval time.Duration
	maxPolls     int
	httpClient   *http.Client
	plainClient  *http.Client
	retryConfig  *retry.Config
	logger       *zap.Logger
}

// NewClient creates a Databricks client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.WorkspaceURL == "" {
		return nil, fmt.Errorf("workspace URL is required")
	}
	if cfg.WarehouseID == "" {
		return nil, fmt.Errorf("warehouse id is required")
	}
	if cfg.HTTPClient == nil {
		return nil, fmt.Errorf("authorised HTTP client is required")
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	maxPolls := cfg.MaxPolls
	if maxPolls <= 0 {
		maxPolls = 60
	}
	plain := cfg.PlainClient
	if plain == nil {
		plain = &http.Client{Timeout: DefaultRequestTimeout}
	}

	return &Client{
		workspaceURL: cfg.WorkspaceURL,
		warehouseID:  cfg.WarehouseID,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
		httpClient:   cfg.HTTPClient,
		plainClient:  plain,
		retryConfig:  cfg.Retry,
		logger:       logger.Named("databricks"),
	}, nil
}

// doJSON sends a JSON request with the authorised client and decodes a JSON response into out.
// Non-2xx responses become *APIError.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call databricks: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, respBody)
		c.logger.Error("Databricks returned error",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("error", logging.SanitizeError(apiErr)))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// endpoint builds a workspace URL by joining path segments onto the base.
func (c *Client) endpoint(pathSegments ...string) (string, error) {
	u, err := url.Parse(c.workspaceURL)
	if err != nil {
		return "", fmt.Errorf("invalid workspace URL: %w", err)
	}
	segments := append([]string{u.Path}, pathSegments...)
	u.Path = path.Join(segments...)
	return u.String(), nil
}
