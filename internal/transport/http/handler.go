package http

import (
	"context"
	"io"

	"golang.org/x/oauth2"

	"github.com/iamasit07/soundboard-dashboard/internal/backend"
	"github.com/iamasit07/soundboard-dashboard/internal/domain"
)

// API is the part of the backend REST client the handlers call.
type API interface {
	InitURL() string
	Callback(ctx context.Context, code, state string) (*oauth2.Token, error)
	Files(ctx context.Context, accessToken string) ([]domain.File, error)
	EnabledFiles(ctx context.Context, accessToken, guildID string) ([]string, error)
	GuildSounds(ctx context.Context, accessToken, guildID string) ([]domain.File, error)
	AddSound(ctx context.Context, accessToken, guildID, fileID string) error
	RemoveSound(ctx context.Context, accessToken, guildID, fileID string) error
	Control(ctx context.Context, accessToken string, action backend.Action, guildID, fileID string) error
	Upload(ctx context.Context, accessToken, filename string, content io.Reader) (*domain.File, error)
}

// LoginStore keeps the dashboard login history. Handlers accept nil.
type LoginStore interface {
	RecordLogin(ctx context.Context, userID, sessionID, deviceInfo, ipAddress string) error
	DeactivateLogin(ctx context.Context, sessionID string) error
	History(ctx context.Context, userID string, limit int) ([]domain.LoginRecord, error)
}

var _ API = (*backend.Client)(nil)
