package domain

import "time"

// Session is the token triple held for an authenticated browser.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Complete reports whether all three parts are present.
func (s Session) Complete() bool {
	return s.AccessToken != "" && s.RefreshToken != "" && !s.ExpiresAt.IsZero()
}

// NeedsRefresh reports whether the session expires within lookahead of now.
func (s Session) NeedsRefresh(now time.Time, lookahead time.Duration) bool {
	return now.Add(lookahead).After(s.ExpiresAt)
}

type SessionState string

const (
	StateUnknown         SessionState = "unknown"
	StateUnauthenticated SessionState = "unauthenticated"
	StateAuthenticated   SessionState = "authenticated"
	StateRefreshing      SessionState = "refreshing"
)

// LoginRecord is one dashboard login kept for the login history page.
type LoginRecord struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	SessionID    string    `json:"session_id"`
	DeviceInfo   string    `json:"device_info"`
	IPAddress    string    `json:"ip_address"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	IsActive     bool      `json:"is_active"`
}
