package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// InitURL is where the browser goes to start the provider login.
func (c *Client) InitURL() string {
	return c.url("/auth/init")
}

// Callback trades the provider code and state for a token pair.
func (c *Client) Callback(ctx context.Context, code, state string) (*oauth2.Token, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("state", state)

	var tok oauth2.Token
	if err := c.do(ctx, http.MethodGet, c.url("/auth/callback?"+q.Encode()), "", nil, &tok); err != nil {
		return nil, fmt.Errorf("auth callback: %w", err)
	}
	return validToken(&tok)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var tok oauth2.Token
	if err := c.do(ctx, http.MethodPost, c.url("/auth/refresh"), "", body, &tok); err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return validToken(&tok)
}

func (c *Client) Revoke(ctx context.Context, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, c.url("/auth/revoke"), accessToken, nil, nil); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func validToken(tok *oauth2.Token) (*oauth2.Token, error) {
	if tok.AccessToken == "" || tok.RefreshToken == "" || tok.ExpiresIn <= 0 {
		return nil, fmt.Errorf("incomplete token response")
	}
	return tok, nil
}

// Lifetime returns the token's expires_in as a duration.
func Lifetime(tok *oauth2.Token) time.Duration {
	return time.Duration(tok.ExpiresIn) * time.Second
}
