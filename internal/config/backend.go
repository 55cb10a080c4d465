package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const defaultProfileURL = "https://discord.com/api/v10/users/@me"

// BackendConfig points the dashboard at the soundboard backend.
type BackendConfig struct {
	// BaseURL is the REST root including the /v1 prefix.
	BaseURL        string
	WebSocketURL   string
	ProfileURL     string
	RequestTimeout time.Duration
}

func LoadBackendConfig() (*BackendConfig, error) {
	raw := GetEnv("BACKEND_URL", "http://localhost:8000")
	base, err := url.Parse(raw)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid BACKEND_URL %q", raw)
	}
	baseURL := strings.TrimRight(base.String(), "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}

	wsURL := GetEnv("BACKEND_WS_URL", "")
	if wsURL == "" {
		wsBase := *base
		switch wsBase.Scheme {
		case "https":
			wsBase.Scheme = "wss"
		default:
			wsBase.Scheme = "ws"
		}
		wsBase.Path = strings.TrimRight(wsBase.Path, "/") + "/ws"
		wsURL = wsBase.String()
	}

	return &BackendConfig{
		BaseURL:        baseURL,
		WebSocketURL:   wsURL,
		ProfileURL:     GetEnv("PROFILE_URL", defaultProfileURL),
		RequestTimeout: GetEnvAsDuration("BACKEND_TIMEOUT", 15*time.Second),
	}, nil
}
