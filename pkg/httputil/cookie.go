package httputil

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	ExpiresCookie      = "expires"
	LoginStateCookie   = "login_state"
)

// CookieStore keeps the session triple in three cookies. Writes are also
// remembered so a Load later in the same request sees them.
type CookieStore struct {
	w          http.ResponseWriter
	r          *http.Request
	production bool

	mu      sync.Mutex
	written *domain.Session
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, production bool) *CookieStore {
	return &CookieStore{w: w, r: r, production: production}
}

// Load returns whatever parts of the session are present.
func (s *CookieStore) Load() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.written != nil {
		return *s.written
	}

	var sess domain.Session
	sess.AccessToken = cookieValue(s.r, AccessTokenCookie)
	sess.RefreshToken = cookieValue(s.r, RefreshTokenCookie)
	if raw := cookieValue(s.r, ExpiresCookie); raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			sess.ExpiresAt = time.UnixMilli(ms)
		}
	}
	return sess
}

// Save writes all three cookies with maxAge equal to the token lifetime.
func (s *CookieStore) Save(sess domain.Session, maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seconds := int(maxAge / time.Second)
	s.set(AccessTokenCookie, sess.AccessToken, seconds)
	s.set(RefreshTokenCookie, sess.RefreshToken, seconds)
	s.set(ExpiresCookie, strconv.FormatInt(sess.ExpiresAt.UnixMilli(), 10), seconds)
	s.written = &sess
}

func (s *CookieStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie, ExpiresCookie} {
		s.set(name, "", -1)
	}
	s.written = &domain.Session{}
}

func (s *CookieStore) set(name, value string, maxAge int) {
	http.SetCookie(s.w, NewCookie(name, value, maxAge, s.production))
}

// NewCookie builds an HttpOnly cookie on path "/". SameSite=None requires
// Secure, so development falls back to Lax.
func NewCookie(name, value string, maxAge int, production bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	}
	if production {
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
