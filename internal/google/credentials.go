package google

import (
	"context"
	"errors"
	"sync"

	"github.com/jjwjr94/google-drive-mcp/internal/drive"
)

var (
	// ErrCredentialsUnavailable is returned when no access token can be resolved.
	ErrCredentialsUnavailable = errors.New("no access token available; set one with POST /set-token or the x-access-token header")

	// ErrEmptyToken is returned when an empty token is stored.
	ErrEmptyToken = errors.New("access token must not be empty")
)

// Holder keeps the process-wide access token and the client bound to it.
//
// The server is single-tenant: every request shares the slot and the last
// write wins. Token and client are swapped together so readers never pair
// one token with another token's client.
type Holder struct {
	factory  ClientFactory
	fallback string

	mu             sync.RWMutex
	token          string
	client         *Client
	fallbackClient *Client
}

// NewHolder creates a Holder. fallbackToken is used when no token has been
// set at runtime, usually GOOGLE_DRIVE_ACCESS_TOKEN. A nil factory means NewClient.
func NewHolder(factory ClientFactory, fallbackToken string) *Holder {
	if factory == nil {
		factory = NewClient
	}
	return &Holder{
		factory:  factory,
		fallback: fallbackToken,
	}
}

// SetToken replaces the current token. Storing the current token again
// keeps the existing client.
func (h *Holder) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	h.mu.RLock()
	same := h.token == token && h.client != nil
	h.mu.RUnlock()
	if same {
		return nil
	}

	// The client outlives the request that supplied the token.
	client, err := build(context.WithoutCancel(ctx), h.factory, token)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.token = token
	h.client = client
	h.mu.Unlock()

	return nil
}

// Token returns the token requests currently run with, or "".
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.token != "" {
		return h.token
	}
	return h.fallback
}

// HasToken reports whether Resolve("") can succeed.
func (h *Holder) HasToken() bool {
	return h.Token() != ""
}

// Resolve returns an authenticated client. Precedence: explicit token,
// then the token set at runtime, then the fallback token. A client for an
// explicit token is built per call and not stored.
func (h *Holder) Resolve(ctx context.Context, explicit string) (*Client, error) {
	if explicit != "" {
		return build(ctx, h.factory, explicit)
	}

	h.mu.RLock()
	client := h.client
	h.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	if h.fallback == "" {
		return nil, ErrCredentialsUnavailable
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client != nil {
		return h.client, nil
	}
	if h.fallbackClient == nil {
		client, err := build(context.WithoutCancel(ctx), h.factory, h.fallback)
		if err != nil {
			return nil, err
		}
		h.fallbackClient = client
	}
	return h.fallbackClient, nil
}

// Validate reports whether token can list files. Every failure, including
// a missing token, yields false.
func (h *Holder) Validate(ctx context.Context, token string) bool {
	client, err := h.Resolve(ctx, token)
	if err != nil {
		return false
	}

	_, err = client.Drive.ListFiles(ctx, &drive.ListOptions{PageSize: 1})
	return err == nil
}
