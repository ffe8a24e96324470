package databricks

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenPath is the workspace OIDC token endpoint used for M2M OAuth.
const TokenPath = "/oidc/v1/token"

// NewTokenSource returns a cached, auto-refreshing token source for a service principal.
// Tokens are requested with the client_credentials grant and the "all-apis" scope.
// ctx is used for token fetches; an *http.Client stored under oauth2.HTTPClient is honoured.
func NewTokenSource(ctx context.Context, workspaceURL, clientID, clientSecret string) oauth2.TokenSource {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     strings.TrimSuffix(workspaceURL, "/") + TokenPath,
		Scopes:       []string{"all-apis"},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return cfg.TokenSource(ctx)
}

// NewHTTPClient returns an HTTP client that adds a bearer token from ts to every request.
// The same client authorises SQL statements and model serving calls.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)
	client.Timeout = DefaultRequestTimeout
	return client
}

// CheckToken fetches a token from ts, failing when ctx ends first. Cached
// tokens are returned without a network call.
func CheckToken(ctx context.Context, ts oauth2.TokenSource) error {
	errc := make(chan error, 1)
	go func() {
		_, err := ts.Token()
		errc <- err
	}()
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("fetch workspace token: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
