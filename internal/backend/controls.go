package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
)

type Action string

const (
	ActionPlay  Action = "play"
	ActionStop  Action = "stop"
	ActionSkip  Action = "skip"
	ActionQueue Action = "queue"
)

// ParseAction validates a path segment.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionPlay, ActionStop, ActionSkip, ActionQueue:
		return a, true
	}
	return "", false
}

// NeedsFile reports whether the action targets a specific clip.
func (a Action) NeedsFile() bool {
	return a == ActionPlay || a == ActionQueue
}

type controlRequest struct {
	GuildID string `json:"guild_id"`
	FileID  string `json:"file_id,omitempty"`
}

type controlResponse struct {
	ClientError *string `json:"client_error"`
}

// Control sends a playback command. A 2xx carrying client_error comes back
// as *domain.ClientError.
func (c *Client) Control(ctx context.Context, accessToken string, action Action, guildID, fileID string) error {
	if action.NeedsFile() && fileID == "" {
		return fmt.Errorf("%s requires a file", action)
	}

	var resp controlResponse
	body := controlRequest{GuildID: guildID, FileID: fileID}
	if err := c.do(ctx, http.MethodPost, c.url("/controls/"+string(action)), accessToken, body, &resp); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if resp.ClientError != nil {
		return &domain.ClientError{Code: *resp.ClientError}
	}
	return nil
}

func (c *Client) Play(ctx context.Context, accessToken, guildID, fileID string) error {
	return c.Control(ctx, accessToken, ActionPlay, guildID, fileID)
}

func (c *Client) Queue(ctx context.Context, accessToken, guildID, fileID string) error {
	return c.Control(ctx, accessToken, ActionQueue, guildID, fileID)
}

func (c *Client) Stop(ctx context.Context, accessToken, guildID string) error {
	return c.Control(ctx, accessToken, ActionStop, guildID, "")
}

func (c *Client) Skip(ctx context.Context, accessToken, guildID string) error {
	return c.Control(ctx, accessToken, ActionSkip, guildID, "")
}
