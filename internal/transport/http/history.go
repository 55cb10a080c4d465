package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/soundboard-dashboard/internal/logging"
	"github.com/iamasit07/soundboard-dashboard/internal/transport/http/middleware"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type HistoryHandler struct {
	Logins LoginStore
	Logger *slog.Logger
}

func NewHistoryHandler(logins LoginStore, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{Logins: logins, Logger: logging.Component(logger, "history")}
}

type loginItem struct {
	DeviceInfo   string    `json:"deviceInfo"`
	IPAddress    string    `json:"ipAddress"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	IsActive     bool      `json:"isActive"`
	Current      bool      `json:"current"`
}

// Sessions lists the user's recent dashboard logins, marking the one this
// browser is using.
func (h *HistoryHandler) Sessions(c *gin.Context) {
	m := middleware.CurrentSession(c)
	user := m.User()
	if h.Logins == nil || user == nil {
		c.JSON(http.StatusOK, []loginItem{})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := h.Logins.History(c.Request.Context(), user.ID, limit)
	if err != nil {
		h.Logger.Error("failed to fetch login history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch login history"})
		return
	}

	current, _ := c.Cookie(middleware.LoginIDCookie)
	items := make([]loginItem, 0, len(records))
	for _, r := range records {
		items = append(items, loginItem{
			DeviceInfo:   r.DeviceInfo,
			IPAddress:    r.IPAddress,
			CreatedAt:    r.CreatedAt,
			LastActivity: r.LastActivity,
			IsActive:     r.IsActive,
			Current:      current != "" && r.SessionID == current,
		})
	}
	c.JSON(http.StatusOK, items)
}
