// Package live keeps one upstream socket to the soundboard backend and turns
// its channel snapshots into a sorted, non-empty channel list.
//
// Lifecycle per socket: open -> Identify -> "Identified" -> Subscribe{guild}
// -> snapshots. "Reidentify" restarts the handshake on the same socket. A
// closed socket is terminal; there is no reconnect.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
	"github.com/iamasit07/soundboard-dashboard/internal/logging"
)

type State string

const (
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosed     State = "closed"
)

// Conn is the subset of *websocket.Conn the client uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Dialer func(ctx context.Context) (Conn, error)

// TokenSource returns the access token currently held by the session.
type TokenSource func() string

// Listener receives state changes. Calls come from the client's read loop
// and must not block for long.
type Listener interface {
	StateChanged(State)
	ChannelsChanged([]domain.Channel)
	SelectionCleared()
}

var ErrAlreadyStarted = errors.New("live client already started")

type Client struct {
	dial     Dialer
	token    TokenSource
	listener Listener
	logger   *slog.Logger

	// writeMu is always taken before mu.
	writeMu sync.Mutex

	mu         sync.Mutex
	started    bool
	conn       Conn
	state      State
	identified bool
	guildID    string
	subscribed string
	channels   []domain.Channel
	selected   string
}

func NewClient(dial Dialer, token TokenSource, listener Listener, logger *slog.Logger) *Client {
	return &Client{
		dial:     dial,
		token:    token,
		listener: listener,
		logger:   logging.Component(logger, "live"),
		state:    StateConnecting,
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) Identified() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identified
}

// Channels returns the latest normalized snapshot.
func (c *Client) Channels() []domain.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels
}

func (c *Client) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Select records the channel the consumer is looking at. It is cleared
// automatically when a snapshot no longer contains it.
func (c *Client) Select(channelID string) {
	c.mu.Lock()
	c.selected = channelID
	c.mu.Unlock()
}

// SetGuild changes the target guild. Before identification the change is
// remembered and sent once "Identified" arrives.
func (c *Client) SetGuild(guildID string) error {
	c.mu.Lock()
	c.guildID = guildID
	c.mu.Unlock()
	return c.maybeSubscribe()
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.listener.StateChanged(state)
}

// Run dials, identifies and processes frames until the socket closes or ctx
// is done. It returns nil on a clean shutdown.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	c.setState(StateConnecting)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateClosed)
		return fmt.Errorf("dial backend socket: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	c.setState(StateOpen)

	if err := c.identify(); err != nil {
		c.setState(StateClosed)
		return err
	}

	err = c.readLoop(conn)
	c.setState(StateClosed)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Close terminates the socket; Run returns shortly after.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Client) readLoop(conn Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("backend socket closed unexpectedly", "error", err)
			}
			return err
		}

		msg, err := domain.ParseServerMessage(data)
		if err != nil {
			c.logger.Warn("ignoring socket frame", "error", err)
			continue
		}
		if err := c.handle(msg); err != nil {
			return err
		}
	}
}

func (c *Client) handle(msg domain.ServerMessage) error {
	switch m := msg.(type) {
	case domain.Identified:
		c.mu.Lock()
		c.identified = true
		c.mu.Unlock()
		return c.maybeSubscribe()

	case domain.Reidentify:
		c.logger.Info("backend requested re-identification")
		return c.identify()

	case domain.Snapshot:
		c.applySnapshot(m.ChannelSnapshot)
		return nil

	default:
		return fmt.Errorf("unhandled socket message %T", msg)
	}
}

// identify drops the current identification and sends a fresh Identify.
func (c *Client) identify() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.identified = false
	c.subscribed = ""
	conn := c.conn
	c.mu.Unlock()

	return write(conn, domain.Identify{AccessToken: c.token()})
}

// maybeSubscribe holds writeMu across the decision and the write so two
// guild changes can never reach the socket out of order.
func (c *Client) maybeSubscribe() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if !c.identified || c.conn == nil || c.guildID == "" || c.guildID == c.subscribed {
		c.mu.Unlock()
		return nil
	}
	guildID := c.guildID
	c.subscribed = guildID
	conn := c.conn
	c.mu.Unlock()

	return write(conn, domain.Subscribe{GuildID: guildID})
}

// applySnapshot replaces the channel list wholesale.
func (c *Client) applySnapshot(snap domain.ChannelSnapshot) {
	channels := snap.Normalize()

	c.mu.Lock()
	c.channels = channels
	cleared := false
	if c.selected != "" {
		ch, ok := domain.FindChannel(channels, c.selected)
		if !ok || len(ch.Members) == 0 {
			c.selected = ""
			cleared = true
		}
	}
	c.mu.Unlock()

	c.listener.ChannelsChanged(channels)
	if cleared {
		c.listener.SelectionCleared()
	}
}

// write must be called with writeMu held.
func write(conn Conn, msg domain.ClientMessage) error {
	if conn == nil {
		return nil
	}
	data, err := domain.EncodeClientMessage(msg)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %T: %w", msg, err)
	}
	return nil
}
