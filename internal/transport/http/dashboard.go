package http

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/soundboard-dashboard/internal/backend"
	"github.com/iamasit07/soundboard-dashboard/internal/logging"
	"github.com/iamasit07/soundboard-dashboard/internal/transport/http/middleware"
)

const maxUploadBytes = 25 << 20

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".opus": true,
	".flac": true, ".m4a": true, ".webm": true,
}

// DashboardHandler proxies the guild, file and control routes to the backend
// with the session's access token.
type DashboardHandler struct {
	API    API
	Logger *slog.Logger
}

func NewDashboardHandler(api API, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{API: api, Logger: logging.Component(logger, "dashboard")}
}

func (h *DashboardHandler) Guilds(c *gin.Context) {
	m := middleware.CurrentSession(c)
	guilds, err := m.Guilds(c.Request.Context())
	if err != nil {
		respondError(c, m, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, guilds)
}

func (h *DashboardHandler) Files(c *gin.Context) {
	m := middleware.CurrentSession(c)
	files, err := h.API.Files(c.Request.Context(), m.AccessToken())
	if err != nil {
		respondError(c, m, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// Upload forwards one multipart "file" field to the backend.
func (h *DashboardHandler) Upload(c *gin.Context) {
	m := middleware.CurrentSession(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if !audioExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported file type"})
		return
	}

	content, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer content.Close()

	file, err := h.API.Upload(c.Request.Context(), m.AccessToken(), filepath.Base(header.Filename), content)
	if err != nil {
		respondError(c, m, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (h *DashboardHandler) EnabledFiles(c *gin.Context) {
	m := middleware.CurrentSession(c)
	ids, err := h.API.EnabledFiles(c.Request.Context(), m.AccessToken(), c.Param("id"))
	if err != nil {
		respondError(c, m, h.Logger, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"guild_id": c.Param("id"), "files": ids})
}

func (h *DashboardHandler) GuildSounds(c *gin.Context) {
	m := middleware.CurrentSession(c)
	sounds, err := h.API.GuildSounds(c.Request.Context(), m.AccessToken(), c.Param("id"))
	if err != nil {
		respondError(c, m, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, sounds)
}

type soundRequest struct {
	FileID string `json:"file_id" binding:"required"`
}

func (h *DashboardHandler) AddSound(c *gin.Context) {
	var req soundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id is required"})
		return
	}

	m := middleware.CurrentSession(c)
	if err := h.API.AddSound(c.Request.Context(), m.AccessToken(), c.Param("id"), req.FileID); err != nil {
		respondError(c, m, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveSound takes the file id from the query string.
func (h *DashboardHandler) RemoveSound(c *gin.Context) {
	fileID := c.Query("file_id")
	if fileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id is required"})
		return
	}

	m := middleware.CurrentSession(c)
	if err := h.API.RemoveSound(c.Request.Context(), m.AccessToken(), c.Param("id"), fileID); err != nil {
		respondError(c, m, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type controlRequest struct {
	GuildID string `json:"guild_id" binding:"required"`
	FileID  string `json:"file_id"`
}

// Control sends play, queue, stop or skip. Refusals such as "not in a voice
// channel" come back as 422 with a readable message.
func (h *DashboardHandler) Control(c *gin.Context) {
	action, ok := backend.ParseAction(c.Param("action"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown action"})
		return
	}

	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guild_id is required"})
		return
	}
	if action.NeedsFile() && req.FileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id is required"})
		return
	}

	m := middleware.CurrentSession(c)
	if err := h.API.Control(c.Request.Context(), m.AccessToken(), action, req.GuildID, req.FileID); err != nil {
		respondError(c, m, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
