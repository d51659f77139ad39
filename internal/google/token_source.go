package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ServiceAccountToken mints an access token from a service account key file.
func ServiceAccountToken(ctx context.Context, keyFile string, scopes ...string) (*oauth2.Token, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key %s: %w", keyFile, err)
	}

	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	conf, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}

	token, err := conf.TokenSource(ctx).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain service account token: %w", err)
	}
	return token, nil
}

// RefreshCredentials identify an OAuth client and one of its refresh tokens.
type RefreshCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Validate checks that every field is present.
func (c RefreshCredentials) Validate() error {
	switch {
	case c.ClientID == "":
		return fmt.Errorf("client ID is required (GOOGLE_CLIENT_ID)")
	case c.ClientSecret == "":
		return fmt.Errorf("client secret is required (GOOGLE_CLIENT_SECRET)")
	case c.RefreshToken == "":
		return fmt.Errorf("refresh token is required (GOOGLE_REFRESH_TOKEN)")
	}
	return nil
}

// OAuthConfig returns the OAuth2 configuration for the client.
func (c RefreshCredentials) OAuthConfig(scopes ...string) *oauth2.Config {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}
}

// RefreshedToken exchanges the refresh token for a new access token.
func RefreshedToken(ctx context.Context, creds RefreshCredentials) (*oauth2.Token, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	ts := creds.OAuthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}
	return token, nil
}
