package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
)

// Profile fetches the provider profile. Unlike every other call this one
// sends "Bearer <token>".
func (c *Client) Profile(ctx context.Context, accessToken string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var user domain.User
	if err := c.send(req, &user); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &user, nil
}

func (c *Client) Guilds(ctx context.Context, accessToken string) ([]domain.Guild, error) {
	var guilds []domain.Guild
	if err := c.do(ctx, http.MethodGet, c.url("/user/guilds"), accessToken, nil, &guilds); err != nil {
		return nil, fmt.Errorf("fetch guilds: %w", err)
	}
	return guilds, nil
}

func (c *Client) Files(ctx context.Context, accessToken string) ([]domain.File, error) {
	var files []domain.File
	if err := c.do(ctx, http.MethodGet, c.url("/user/files"), accessToken, nil, &files); err != nil {
		return nil, fmt.Errorf("fetch files: %w", err)
	}
	return files, nil
}

// EnabledFiles lists the ids of the user's files enabled in guildID.
func (c *Client) EnabledFiles(ctx context.Context, accessToken, guildID string) ([]string, error) {
	var ids []string
	path := "/user/" + url.PathEscape(guildID)
	if err := c.do(ctx, http.MethodGet, c.url(path), accessToken, nil, &ids); err != nil {
		return nil, fmt.Errorf("fetch enabled files: %w", err)
	}
	return ids, nil
}
