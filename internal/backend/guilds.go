package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
)

type soundRequest struct {
	FileID string `json:"file_id"`
}

func guildPath(guildID string) string {
	return "/guilds/" + url.PathEscape(guildID)
}

func (c *Client) GuildSounds(ctx context.Context, accessToken, guildID string) ([]domain.File, error) {
	var files []domain.File
	if err := c.do(ctx, http.MethodGet, c.url(guildPath(guildID)), accessToken, nil, &files); err != nil {
		return nil, fmt.Errorf("fetch guild sounds: %w", err)
	}
	return files, nil
}

func (c *Client) AddSound(ctx context.Context, accessToken, guildID, fileID string) error {
	if err := c.do(ctx, http.MethodPost, c.url(guildPath(guildID)), accessToken, soundRequest{fileID}, nil); err != nil {
		return fmt.Errorf("add sound: %w", err)
	}
	return nil
}

func (c *Client) RemoveSound(ctx context.Context, accessToken, guildID, fileID string) error {
	if err := c.do(ctx, http.MethodDelete, c.url(guildPath(guildID)), accessToken, soundRequest{fileID}, nil); err != nil {
		return fmt.Errorf("remove sound: %w", err)
	}
	return nil
}
