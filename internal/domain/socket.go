package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Upstream socket protocol spoken with the soundboard backend.

const (
	OpIdentify  = "Identify"
	OpSubscribe = "Subscribe"

	frameIdentified = "Identified"
	frameReidentify = "Reidentify"
)

// ClientMessage is a frame the dashboard sends upstream.
type ClientMessage interface {
	clientMessage()
}

type Identify struct {
	AccessToken string `json:"access_token"`
}

type Subscribe struct {
	GuildID string `json:"guild_id"`
}

func (Identify) clientMessage()  {}
func (Subscribe) clientMessage() {}

// EncodeClientMessage adds the op discriminator.
func EncodeClientMessage(msg ClientMessage) ([]byte, error) {
	switch m := msg.(type) {
	case Identify:
		return json.Marshal(struct {
			Op string `json:"op"`
			Identify
		}{OpIdentify, m})
	case Subscribe:
		return json.Marshal(struct {
			Op string `json:"op"`
			Subscribe
		}{OpSubscribe, m})
	default:
		return nil, fmt.Errorf("unsupported client message %T", msg)
	}
}

// ServerMessage is a frame received from upstream.
type ServerMessage interface {
	serverMessage()
}

type Identified struct{}

type Reidentify struct{}

type Snapshot struct {
	ChannelSnapshot
}

func (Identified) serverMessage() {}
func (Reidentify) serverMessage() {}
func (Snapshot) serverMessage()   {}

var ErrUnknownFrame = errors.New("unknown socket frame")

// ParseServerMessage accepts the two control words either as JSON strings or
// as bare text, and channel snapshots as JSON objects.
func ParseServerMessage(data []byte) (ServerMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrUnknownFrame
	}

	word := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &word); err != nil {
			return nil, fmt.Errorf("decode control frame: %w", err)
		}
	}
	switch strings.TrimSpace(word) {
	case frameIdentified:
		return Identified{}, nil
	case frameReidentify:
		return Reidentify{}, nil
	}

	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, word)
	}

	var raw struct {
		Channels map[string]Channel `json:"channels"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if raw.Channels == nil {
		return nil, fmt.Errorf("%w: object without channels", ErrUnknownFrame)
	}
	return Snapshot{ChannelSnapshot{Channels: raw.Channels}}, nil
}

// Browser-facing relay protocol.

const (
	OpSelectGuild   = "select_guild"
	OpSelectChannel = "select_channel"

	OpState            = "state"
	OpChannels         = "channels"
	OpSelectionCleared = "selection_cleared"
	OpEnabledFiles     = "enabled_files"
	OpError            = "error"
)

// RelayRequest is what the browser sends to the dashboard socket.
type RelayRequest struct {
	Op        string `json:"op"`
	GuildID   string `json:"guild_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

// RelayEvent is what the dashboard pushes to the browser. Empty lists are
// omitted, so a channels event without "channels" means no occupied channel.
type RelayEvent struct {
	Op       string    `json:"op"`
	State    string    `json:"state,omitempty"`
	Channels []Channel `json:"channels,omitempty"`
	GuildID  string    `json:"guild_id,omitempty"`
	Files    []string  `json:"files,omitempty"`
	Message  string    `json:"message,omitempty"`
}
