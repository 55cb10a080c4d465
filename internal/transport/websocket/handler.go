// Package websocket relays one upstream live client per browser socket.
//
// Browser -> dashboard: {"op":"select_guild","guild_id"} and
// {"op":"select_channel","channel_id"}. Dashboard -> browser: state,
// channels, selection_cleared, enabled_files and error events.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
	"github.com/iamasit07/soundboard-dashboard/internal/live"
	"github.com/iamasit07/soundboard-dashboard/internal/logging"
	"github.com/iamasit07/soundboard-dashboard/internal/service/guildfiles"
	"github.com/iamasit07/soundboard-dashboard/internal/transport/http/middleware"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

type EnabledFilesAPI interface {
	EnabledFiles(ctx context.Context, accessToken, guildID string) ([]string, error)
}

// Handler manages WebSocket dependencies
type Handler struct {
	Conns    *ConnectionManager
	Dial     live.Dialer
	Files    EnabledFilesAPI
	Upgrader websocket.Upgrader
	Logger   *slog.Logger
}

// NewHandler accepts same-host origins plus allowedOrigins.
func NewHandler(cm *ConnectionManager, dial live.Dialer, files EnabledFilesAPI, allowedOrigins []string, logger *slog.Logger) *Handler {
	return &Handler{
		Conns: cm,
		Dial:  dial,
		Files: files,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Logger: logging.Component(logger, "relay"),
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// HandleWebSocket upgrades an authenticated request and serves it until
// either side closes.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	m := middleware.CurrentSession(c)
	if m == nil || !m.IsAuthenticated() {
		middleware.Unauthorized(c)
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("upgrade failed", "error", err)
		return
	}
	h.serve(c.Request.Context(), conn, m.AccessToken)
}

func (h *Handler) serve(parent context.Context, conn *websocket.Conn, token live.TokenSource) {
	id := h.Conns.Add(conn)
	logger := h.Logger.With("conn_id", id)
	logger.Debug("browser connected")

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	defer h.Conns.Remove(id)

	upstream := live.NewClient(h.Dial, token, &relay{conns: h.Conns, id: id, logger: logger}, logger)
	defer func() {
		if err := upstream.Close(); err != nil {
			logger.Debug("closing live connection", "error", err)
		}
	}()
	loader := guildfiles.NewLoader(func(ctx context.Context, guildID string) ([]string, error) {
		return h.Files.EnabledFiles(ctx, token(), guildID)
	}, logger)
	defer loader.Stop()

	go func() {
		if err := upstream.Run(ctx); err != nil {
			logger.Warn("live connection ended", "error", err)
			h.send(id, logger, domain.RelayEvent{Op: domain.OpError, Message: "live connection lost"})
		}
		// A closed upstream is terminal, so the browser socket goes with it.
		h.Conns.Remove(id)
	}()

	go h.pinger(ctx, id)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("browser disconnected unexpectedly", "error", err)
			}
			return
		}

		var req domain.RelayRequest
		if err := json.Unmarshal(data, &req); err != nil {
			h.send(id, logger, domain.RelayEvent{Op: domain.OpError, Message: "invalid message"})
			continue
		}
		h.dispatch(ctx, id, logger, req, upstream, loader)
	}
}

func (h *Handler) dispatch(ctx context.Context, id string, logger *slog.Logger, req domain.RelayRequest, upstream *live.Client, loader *guildfiles.Loader) {
	switch req.Op {
	case domain.OpSelectGuild:
		if req.GuildID == "" {
			h.send(id, logger, domain.RelayEvent{Op: domain.OpError, Message: "guild_id is required"})
			return
		}
		if err := upstream.SetGuild(req.GuildID); err != nil {
			logger.Warn("subscribe failed", "guild_id", req.GuildID, "error", err)
			h.send(id, logger, domain.RelayEvent{Op: domain.OpError, Message: "failed to subscribe"})
		}
		// Started here, not in the goroutine, so switches supersede each
		// other in the order the browser sent them.
		load := loader.Start(ctx, req.GuildID, func(guildID string, files []string) {
			h.send(id, logger, domain.RelayEvent{Op: domain.OpEnabledFiles, GuildID: guildID, Files: files})
		})
		go func() {
			if _, err := load(); err != nil {
				h.send(id, logger, domain.RelayEvent{Op: domain.OpError, Message: "failed to load enabled files"})
			}
		}()

	case domain.OpSelectChannel:
		upstream.Select(req.ChannelID)

	default:
		h.send(id, logger, domain.RelayEvent{Op: domain.OpError, Message: "unknown op"})
	}
}

func (h *Handler) send(id string, logger *slog.Logger, event domain.RelayEvent) {
	if err := h.Conns.Send(id, event); err != nil {
		logger.Debug("write to browser failed", "op", event.Op, "error", err)
	}
}

func (h *Handler) pinger(ctx context.Context, id string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.Conns.Ping(id); err != nil {
				return
			}
		}
	}
}

// relay forwards live client notifications to one browser socket.
type relay struct {
	conns  *ConnectionManager
	id     string
	logger *slog.Logger
}

func (r *relay) push(event domain.RelayEvent) {
	if err := r.conns.Send(r.id, event); err != nil {
		r.logger.Debug("write to browser failed", "op", event.Op, "error", err)
	}
}

func (r *relay) StateChanged(state live.State) {
	r.push(domain.RelayEvent{Op: domain.OpState, State: string(state)})
}

func (r *relay) ChannelsChanged(channels []domain.Channel) {
	r.push(domain.RelayEvent{Op: domain.OpChannels, Channels: channels})
}

func (r *relay) SelectionCleared() {
	r.push(domain.RelayEvent{Op: domain.OpSelectionCleared})
}
