package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/jjwjr94/google-drive-mcp/internal/drive"
	"github.com/jjwjr94/google-drive-mcp/internal/sheets"
)

// Client bundles the Drive and Sheets APIs authenticated with one access token.
type Client struct {
	Drive  drive.API
	Sheets sheets.API
}

// ClientFactory builds a Client for an access token.
type ClientFactory func(ctx context.Context, token string) (*Client, error)

// NewClient is the default ClientFactory. Every request it makes carries
// token as a bearer credential; the token is never refreshed.
func NewClient(ctx context.Context, token string) (*Client, error) {
	if token == "" {
		return nil, ErrCredentialsUnavailable
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	})
	hc := oauth2.NewClient(ctx, ts)

	driveClient, err := drive.NewClient(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, err
	}

	sheetsClient, err := sheets.NewClient(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, err
	}

	return &Client{Drive: driveClient, Sheets: sheetsClient}, nil
}

// build wraps factory errors so they stay distinct from missing credentials.
func build(ctx context.Context, factory ClientFactory, token string) (*Client, error) {
	client, err := factory(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}
	return client, nil
}
