package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeClientMessage(t *testing.T) {
	data, err := EncodeClientMessage(Identify{AccessToken: "tok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"Identify","access_token":"tok"}`, string(data))

	data, err = EncodeClientMessage(Subscribe{GuildID: "g1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"Subscribe","guild_id":"g1"}`, string(data))
}

func TestParseServerMessage_ControlWords(t *testing.T) {
	tests := []struct {
		in   string
		want ServerMessage
	}{
		{`"Identified"`, Identified{}},
		{`Identified`, Identified{}},
		{` "Reidentify" `, Reidentify{}},
		{`Reidentify`, Reidentify{}},
	}
	for _, tc := range tests {
		got, err := ParseServerMessage([]byte(tc.in))
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseServerMessage_Snapshot(t *testing.T) {
	msg, err := ParseServerMessage([]byte(`{"channels":{"c1":{"id":"c1","channel_name":"General","users":[{"id":"u1","username":"amy","nickname":null}]}}}`))
	require.NoError(t, err)

	snap, ok := msg.(Snapshot)
	require.True(t, ok)
	require.Contains(t, snap.Channels, "c1")
	assert.Equal(t, "General", snap.Channels["c1"].Name)
	assert.Equal(t, "amy", snap.Channels["c1"].Members[0].DisplayName())
}

func TestParseServerMessage_Unknown(t *testing.T) {
	for _, in := range []string{``, `"Hello"`, `{"foo":1}`, `[1,2]`} {
		_, err := ParseServerMessage([]byte(in))
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrUnknownFrame), in)
	}
}

func TestSession_NeedsRefresh(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	soon := Session{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, soon.NeedsRefresh(now, 24*time.Hour))

	later := Session{ExpiresAt: now.Add(48 * time.Hour)}
	assert.False(t, later.NeedsRefresh(now, 24*time.Hour))
}

func TestClientError_Message(t *testing.T) {
	err := &ClientError{Code: "NotInVoiceChannel"}
	assert.Equal(t, "Join a voice channel first.", err.Message())
	assert.Contains(t, err.Error(), "NotInVoiceChannel")

	unknown := &ClientError{Code: "Mystery"}
	assert.Equal(t, "Something went wrong, please try again.", unknown.Message())
}
