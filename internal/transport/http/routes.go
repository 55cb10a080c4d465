package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/soundboard-dashboard/internal/transport/http/middleware"
)

// Routes wires the handlers onto a gin engine.
type Routes struct {
	OAuth     *OAuthHandler
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	History   *HistoryHandler
	Live      gin.HandlerFunc
	Sessions  *middleware.SessionFactory
	Activity  middleware.ActivityTracker
	Logger    *slog.Logger
}

func (r Routes) Register(router *gin.Engine) {
	router.GET("/login", r.OAuth.Login)
	router.GET("/auth/callback", r.OAuth.Callback)

	// Logout tears the session down as stored; restoring it first could
	// spend a refresh on a token that is about to be revoked.
	router.POST("/api/auth/logout", middleware.RequireRequestedWith(), middleware.SessionNoLoad(r.Sessions), r.Auth.Logout)

	withSession := router.Group("/")
	withSession.Use(middleware.Session(r.Sessions), middleware.RequireRequestedWith())
	withSession.GET("/api/auth/me", r.Auth.Me)

	protected := withSession.Group("/")
	protected.Use(middleware.RequireAuth(), middleware.TrackActivity(r.Activity, r.Logger))
	{
		protected.GET("/api/guilds", r.Dashboard.Guilds)
		protected.GET("/api/files", r.Dashboard.Files)
		protected.POST("/api/files", r.Dashboard.Upload)
		protected.GET("/api/guilds/:id/enabled", r.Dashboard.EnabledFiles)
		protected.GET("/api/guilds/:id/sounds", r.Dashboard.GuildSounds)
		protected.POST("/api/guilds/:id/sounds", r.Dashboard.AddSound)
		protected.DELETE("/api/guilds/:id/sounds", r.Dashboard.RemoveSound)
		protected.POST("/api/controls/:action", r.Dashboard.Control)
		protected.GET("/api/sessions", r.History.Sessions)

		if r.Live != nil {
			protected.GET("/ws", r.Live)
		}
	}
}
