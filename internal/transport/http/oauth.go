package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iamasit07/soundboard-dashboard/internal/backend"
	"github.com/iamasit07/soundboard-dashboard/internal/logging"
	"github.com/iamasit07/soundboard-dashboard/internal/transport/http/middleware"
	"github.com/iamasit07/soundboard-dashboard/pkg/auth"
	"github.com/iamasit07/soundboard-dashboard/pkg/httputil"
	"github.com/iamasit07/soundboard-dashboard/pkg/useragent"
)

const loginStateMaxAge = int(auth.StateTTL / time.Second)

type OAuthHandler struct {
	API         API
	Sessions    *middleware.SessionFactory
	Signer      *auth.StateSigner
	Logins      LoginStore
	FrontendURL string
	Production  bool
	Logger      *slog.Logger
}

func NewOAuthHandler(api API, sessions *middleware.SessionFactory, signer *auth.StateSigner, logins LoginStore, frontendURL string, production bool, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		API:         api,
		Sessions:    sessions,
		Signer:      signer,
		Logins:      logins,
		FrontendURL: frontendURL,
		Production:  production,
		Logger:      logging.Component(logger, "oauth"),
	}
}

// Login remembers where to come back to and hands the browser to the
// backend's OAuth entry point.
func (h *OAuthHandler) Login(c *gin.Context) {
	returnTo := auth.SafeReturnPath(c.Query("return_to"))
	state, err := h.Signer.Issue(returnTo)
	if err != nil {
		h.Logger.Error("failed to sign login state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start login"})
		return
	}

	http.SetCookie(c.Writer, httputil.NewCookie(httputil.LoginStateCookie, state, loginStateMaxAge, h.Production))
	c.Redirect(http.StatusTemporaryRedirect, h.API.InitURL())
}

// Callback exchanges the provider's code for a token pair and starts the
// session.
func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login?error=missing_code")
		return
	}

	ctx := c.Request.Context()
	tok, err := h.API.Callback(ctx, code, c.Query("state"))
	if err != nil {
		h.Logger.Warn("code exchange failed", "error", err)
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login?error=auth_failed")
		return
	}

	m := h.Sessions.New(c.Writer, c.Request)
	if err := m.Login(ctx, tok); err != nil {
		h.Logger.Warn("backend returned unusable tokens", "error", err)
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login?error=auth_failed")
		return
	}

	if user := m.User(); user != nil && h.Logins != nil {
		loginID := uuid.NewString()
		err := h.Logins.RecordLogin(ctx, user.ID, loginID,
			useragent.ExtractDeviceInfo(c.Request), useragent.ExtractIPAddress(c.Request))
		if err != nil {
			h.Logger.Warn("failed to record login", "error", err)
		} else {
			maxAge := int(backend.Lifetime(tok) / time.Second)
			http.SetCookie(c.Writer, httputil.NewCookie(middleware.LoginIDCookie, loginID, maxAge, h.Production))
		}
	}

	c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+h.returnPath(c))
}

// returnPath reads and clears the signed login state. A missing or forged
// state falls back to "/".
func (h *OAuthHandler) returnPath(c *gin.Context) string {
	raw, err := c.Cookie(httputil.LoginStateCookie)
	if err != nil || raw == "" {
		return "/"
	}
	http.SetCookie(c.Writer, httputil.NewCookie(httputil.LoginStateCookie, "", -1, h.Production))

	returnTo, err := h.Signer.Verify(raw)
	if err != nil {
		h.Logger.Debug("ignoring login state", "error", err)
		return "/"
	}
	return returnTo
}

type AuthHandler struct {
	Logins     LoginStore
	Production bool
	Logger     *slog.Logger
}

func NewAuthHandler(logins LoginStore, production bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{Logins: logins, Production: production, Logger: logging.Component(logger, "auth")}
}

// Logout clears the cookies before responding; the token revoke and the
// login history update finish in the background.
func (h *AuthHandler) Logout(c *gin.Context) {
	if m := middleware.CurrentSession(c); m != nil {
		m.Logout(c.Request.Context())
	}

	if loginID, err := c.Cookie(middleware.LoginIDCookie); err == nil && loginID != "" {
		http.SetCookie(c.Writer, httputil.NewCookie(middleware.LoginIDCookie, "", -1, h.Production))
		if h.Logins != nil {
			ctx := context.WithoutCancel(c.Request.Context())
			go func() {
				ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				if err := h.Logins.DeactivateLogin(ctx, loginID); err != nil {
					h.Logger.Warn("failed to close login record", "error", err)
				}
			}()
		}
	}

	c.JSON(http.StatusOK, gin.H{"redirect": "/"})
}

// Me reports the session state and, once fetched, the user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	m := middleware.CurrentSession(c)
	if m == nil || !m.IsAuthenticated() {
		middleware.Unauthorized(c)
		return
	}
	body := gin.H{"state": m.State(), "user": nil}
	if user := m.User(); user != nil {
		body["user"] = user
		body["display_name"] = user.DisplayName()
	}
	c.JSON(http.StatusOK, body)
}
