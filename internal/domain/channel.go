package domain

import (
	"slices"
	"strings"
)

// Member is a user sitting in a voice channel.
type Member struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Nickname *string `json:"nickname,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// DisplayName is nickname ?? username.
func (m Member) DisplayName() string {
	if m.Nickname != nil {
		return *m.Nickname
	}
	return m.Username
}

type Channel struct {
	ID      string   `json:"id"`
	Name    string   `json:"channel_name"`
	Members []Member `json:"users"`
}

// ChannelSnapshot is the wire form pushed by the backend: every channel of
// the subscribed guild keyed by id.
type ChannelSnapshot struct {
	Channels map[string]Channel `json:"channels"`
}

// Normalize drops empty channels and orders channels by name and members by
// display name, both byte-wise. The result shares no slices with s.
func (s ChannelSnapshot) Normalize() []Channel {
	out := make([]Channel, 0, len(s.Channels))
	for _, ch := range s.Channels {
		if len(ch.Members) == 0 {
			continue
		}
		members := slices.Clone(ch.Members)
		slices.SortStableFunc(members, func(a, b Member) int {
			return strings.Compare(a.DisplayName(), b.DisplayName())
		})
		out = append(out, Channel{ID: ch.ID, Name: ch.Name, Members: members})
	}
	// Map iteration is random, so break name ties on id to stay deterministic.
	slices.SortFunc(out, func(a, b Channel) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// FindChannel returns the channel with id, if present.
func FindChannel(channels []Channel, id string) (Channel, bool) {
	for _, ch := range channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return Channel{}, false
}
