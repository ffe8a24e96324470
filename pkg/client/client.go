// Package client provides a typed client for the ekaya-enrich HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/logging"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

// DefaultTimeout bounds every API call. Generation requests may use the
// server's full two minute budget.
const DefaultTimeout = 150 * time.Second

// ErrUnreachable wraps transport failures such as refused connections.
var ErrUnreachable = errors.New("unable to reach the server")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Status     string
	// Code is the machine-readable "error" field of the body.
	Code string
	// Detail is the human-readable "detail" field of the body.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed: %s", e.Status)
}

// Client calls the ekaya-enrich API and keeps the session cookie between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the API served at baseURL.
func NewClient(baseURL string, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		logger: logger.Named("api-client"),
	}, nil
}

type userResponse struct {
	User models.User `json:"user"`
}

// Login signs in and keeps the session cookie for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	body := map[string]string{"username": username, "password": password}
	var resp userResponse
	if err := c.do(ctx, http.MethodPost, nil, body, &resp, "api", "login"); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, nil, nil, nil, "api", "logout")
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, nil, nil, &resp, "api", "me"); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) ListCatalogs(ctx context.Context) ([]string, error) {
	var resp struct {
		Catalogs []string `json:"catalogs"`
	}
	if err := c.do(ctx, http.MethodGet, nil, nil, &resp, "api", "catalogs"); err != nil {
		return nil, err
	}
	return resp.Catalogs, nil
}

func (c *Client) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	var resp struct {
		Schemas []string `json:"schemas"`
	}
	query := url.Values{"catalog": {catalog}}
	if err := c.do(ctx, http.MethodGet, query, nil, &resp, "api", "schemas"); err != nil {
		return nil, err
	}
	return resp.Schemas, nil
}

func (c *Client) ListTables(ctx context.Context, catalog, schema string) ([]models.TableInfo, error) {
	var resp struct {
		Tables []models.TableInfo `json:"tables"`
	}
	query := url.Values{"catalog": {catalog}, "schema": {schema}}
	if err := c.do(ctx, http.MethodGet, query, nil, &resp, "api", "tables"); err != nil {
		return nil, err
	}
	return resp.Tables, nil
}

// PreviewTable returns up to limit rows of the table.
func (c *Client) PreviewTable(ctx context.Context, ref models.TableRef, limit int) (*models.TablePreview, error) {
	query := refQuery(ref)
	query.Set("limit", strconv.Itoa(limit))
	var preview models.TablePreview
	if err := c.do(ctx, http.MethodGet, query, nil, &preview, "api", "table-preview"); err != nil {
		return nil, err
	}
	return &preview, nil
}

func (c *Client) GetTableDescription(ctx context.Context, ref models.TableRef) (*models.TableDescription, error) {
	var desc models.TableDescription
	if err := c.do(ctx, http.MethodGet, refQuery(ref), nil, &desc, "api", "table-description"); err != nil {
		return nil, err
	}
	return &desc, nil
}

func (c *Client) GetColumnMetadata(ctx context.Context, ref models.TableRef) ([]models.ColumnMetadata, error) {
	var resp struct {
		Columns []models.ColumnMetadata `json:"columns"`
	}
	if err := c.do(ctx, http.MethodGet, refQuery(ref), nil, &resp, "api", "column-metadata"); err != nil {
		return nil, err
	}
	return resp.Columns, nil
}

// GenerateTableDescription asks the server to draft a table description.
func (c *Client) GenerateTableDescription(ctx context.Context, ref models.TableRef) (string, error) {
	var resp struct {
		GeneratedDescription string `json:"generated_description"`
	}
	if err := c.do(ctx, http.MethodPost, refQuery(ref), nil, &resp, "api", "generate-description"); err != nil {
		return "", err
	}
	return resp.GeneratedDescription, nil
}

// GenerateColumnDescriptions asks the server to draft descriptions for undocumented columns.
func (c *Client) GenerateColumnDescriptions(ctx context.Context, ref models.TableRef) ([]models.GeneratedColumnDescription, error) {
	var resp struct {
		Columns []models.GeneratedColumnDescription `json:"columns"`
	}
	if err := c.do(ctx, http.MethodPost, refQuery(ref), nil, &resp, "api", "generate-column-descriptions"); err != nil {
		return nil, err
	}
	return resp.Columns, nil
}

// UpdateTableDescription stores an approved table description.
func (c *Client) UpdateTableDescription(ctx context.Context, ref models.TableRef, description string) error {
	body := map[string]string{"description": description}
	return c.do(ctx, http.MethodPost, refQuery(ref), body, nil, "api", "update-description")
}

// UpdateColumnDescriptions stores approved column descriptions keyed by column name.
func (c *Client) UpdateColumnDescriptions(ctx context.Context, ref models.TableRef, descriptions map[string]string) error {
	body := map[string]map[string]string{"column_descriptions": descriptions}
	return c.do(ctx, http.MethodPost, refQuery(ref), body, nil, "api", "update-column-descriptions")
}

// do sends a JSON request to the path built from segments and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method string, query url.Values, in, out any, segments ...string) error {
	endpoint, err := buildURL(c.baseURL, query, segments...)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("API request failed",
			zap.String("method", method),
			zap.String("path", req.URL.Path),
			zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp, body)
		c.logger.Debug("API returned error",
			zap.String("method", method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code))
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	var parsed struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		apiErr.Code = parsed.Error
		apiErr.Detail = parsed.Detail
	}
	return apiErr
}

func refQuery(ref models.TableRef) url.Values {
	return url.Values{
		"catalog": {ref.Catalog},
		"schema":  {ref.Schema},
		"table":   {ref.Table},
	}
}

// buildURL joins path segments onto base and appends the encoded query.
func buildURL(base string, query url.Values, segments ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = path.Join(append([]string{"/", u.Path}, segments...)...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}
