package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/soundboard-dashboard/internal/backend"
	"github.com/iamasit07/soundboard-dashboard/internal/domain"
	"github.com/iamasit07/soundboard-dashboard/internal/session"
	"github.com/iamasit07/soundboard-dashboard/internal/transport/http/middleware"
)

// respondError maps a backend or session error onto the response.
//
// A rejected token triggers one refresh. The original call is not retried:
// on success the browser gets 401 with retry=true and the new cookies, on
// failure it is sent to /login.
func respondError(c *gin.Context, m *session.Manager, logger *slog.Logger, err error) {
	var clientErr *domain.ClientError
	var apiErr *backend.APIError

	switch {
	case backend.IsCanceled(err):
		c.Abort()

	case errors.Is(err, backend.ErrUnauthorized):
		if m != nil {
			if _, refreshErr := m.Refresh(c.Request.Context()); refreshErr == nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "session refreshed",
					"retry": true,
				})
				return
			}
		}
		middleware.Unauthorized(c)

	case errors.Is(err, session.ErrNotAuthenticated):
		middleware.Unauthorized(c)

	case errors.As(err, &clientErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error": clientErr.Message(),
			"code":  clientErr.Code,
		})

	case errors.As(err, &apiErr):
		logger.Warn("backend rejected request", "status", apiErr.Status, "path", c.FullPath())
		c.AbortWithStatusJSON(passthroughStatus(apiErr.Status), gin.H{"error": "request failed"})

	default:
		logger.Error("backend request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "failed to reach backend"})
	}
}

// passthroughStatus keeps client-caused statuses and hides the rest behind 502.
func passthroughStatus(status int) int {
	switch status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict,
		http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return status
	}
	return http.StatusBadGateway
}
