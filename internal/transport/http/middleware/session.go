package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/soundboard-dashboard/internal/logging"
	"github.com/iamasit07/soundboard-dashboard/internal/session"
	"github.com/iamasit07/soundboard-dashboard/pkg/httputil"
)

const (
	sessionKey = "session"
	// LoginIDCookie ties the browser to its row in the login history.
	LoginIDCookie = "login_id"
)

const defaultCacheTTL = 5 * time.Minute

// SessionFactory builds a request-scoped session.Manager over the request's
// cookies.
type SessionFactory struct {
	Backend session.Backend
	// Cache falls back to an in-process cache when nil, so restoring a
	// session does not fetch the profile on every request.
	Cache      *session.ProfileCache
	CacheTTL   time.Duration
	Lookahead  time.Duration
	Production bool
	Logger     *slog.Logger
	Now        func() time.Time

	once sync.Once
}

func (f *SessionFactory) cache() *session.ProfileCache {
	f.once.Do(func() {
		if f.Cache != nil {
			return
		}
		ttl := f.CacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		f.Cache = session.NewProfileCache(session.NewMemoryCache(), ttl, f.Logger)
	})
	return f.Cache
}

func (f *SessionFactory) New(w http.ResponseWriter, r *http.Request) *session.Manager {
	return session.NewManager(session.Options{
		Store:     httputil.NewCookieStore(w, r, f.Production),
		Backend:   f.Backend,
		Cache:     f.cache(),
		Logger:    f.Logger,
		Lookahead: f.Lookahead,
		Now:       f.Now,
	})
}

// Session restores the browser's session, refreshing it when it is close to
// expiry, and stores the manager on the gin context.
func Session(f *SessionFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := f.New(c.Writer, c.Request)
		m.Load(c.Request.Context())
		c.Set(sessionKey, m)
		c.Next()
	}
}

// SessionNoLoad stores a manager over the request's cookies without restoring
// it. Routes that only tear the session down use it so they never refresh.
func SessionNoLoad(f *SessionFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionKey, f.New(c.Writer, c.Request))
		c.Next()
	}
}

// CurrentSession returns the manager stored by Session.
func CurrentSession(c *gin.Context) *session.Manager {
	if v, ok := c.Get(sessionKey); ok {
		if m, ok := v.(*session.Manager); ok {
			return m
		}
	}
	return nil
}

// RequireAuth rejects requests without an authenticated session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		m := CurrentSession(c)
		if m == nil || !m.IsAuthenticated() {
			Unauthorized(c)
			return
		}
		c.Next()
	}
}

// Unauthorized aborts with 401 and tells the browser where to log in again.
func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    "not authenticated",
		"redirect": "/login",
	})
}

type ActivityTracker interface {
	TouchActivity(ctx context.Context, sessionID string) error
}

// TrackActivity bumps the login history row of authenticated requests in the
// background. A nil tracker disables it.
func TrackActivity(tracker ActivityTracker, logger *slog.Logger) gin.HandlerFunc {
	logger = logging.Component(logger, "activity")
	return func(c *gin.Context) {
		c.Next()

		if tracker == nil {
			return
		}
		m := CurrentSession(c)
		if m == nil || !m.IsAuthenticated() {
			return
		}
		loginID, err := c.Cookie(LoginIDCookie)
		if err != nil || loginID == "" {
			return
		}

		ctx := context.WithoutCancel(c.Request.Context())
		go func() {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := tracker.TouchActivity(ctx, loginID); err != nil {
				logger.Warn("failed to update login activity", "error", err)
			}
		}()
	}
}
