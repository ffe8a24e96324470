package databricks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-enrich/pkg/logging"
)

// Identity describes a workspace user.
type Identity struct {
	Username string
	Name     string
	Email    string
}

// VerifyCredentials checks username/password against the workspace with basic auth.
// A 401 or 403 returns apperrors.ErrInvalidCredentials. Display name and email are
// read from SCIM on a best-effort basis; the username is used when SCIM is unavailable.
func (c *Client) VerifyCredentials(ctx context.Context, username, password string) (*Identity, error) {
	endpoint, err := c.endpoint("api", "2.0", "clusters", "list")
	if err != nil {
		return nil, err
	}

	status, _, err := c.basicAuthGet(ctx, endpoint, username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		c.logger.Info("Credential check rejected", zap.String("username", username), zap.Int("status", status))
		return nil, apperrors.ErrInvalidCredentials
	case status != http.StatusOK:
		return nil, &APIError{StatusCode: status, Message: "authentication failed"}
	}

	identity := &Identity{
		Username: username,
		Name:     strings.SplitN(username, "@", 2)[0],
		Email:    username,
	}

	scimURL, err := c.endpoint("api", "2.0", "preview", "scim", "v2", "Me")
	if err != nil {
		return identity, nil
	}
	status, body, err := c.basicAuthGet(ctx, scimURL, username, password)
	if err != nil || status != http.StatusOK {
		c.logger.Debug("SCIM lookup unavailable, using username",
			zap.Int("status", status),
			zap.String("error", logging.SanitizeError(err)))
		return identity, nil
	}

	var me struct {
		DisplayName string `json:"displayName"`
		Emails      []struct {
			Value string `json:"value"`
		} `json:"emails"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return identity, nil
	}
	if me.DisplayName != "" {
		identity.Name = me.DisplayName
	}
	if len(me.Emails) > 0 && me.Emails[0].Value != "" {
		identity.Email = me.Emails[0].Value
	}
	return identity, nil
}

func (c *Client) basicAuthGet(ctx context.Context, endpoint, username, password string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(username, password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.plainClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
