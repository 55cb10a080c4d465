package domain

import "fmt"

// ClientError is a domain failure the backend reports inside a successful
// HTTP response, e.g. playing a clip while the bot is not in voice.
type ClientError struct {
	Code string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error: %s", e.Code)
}

// Message returns the text shown to the user.
func (e *ClientError) Message() string {
	if msg, ok := clientErrorMessages[e.Code]; ok {
		return msg
	}
	return "Something went wrong, please try again."
}

var clientErrorMessages = map[string]string{
	"NotInVoiceChannel": "Join a voice channel first.",
	"BotNotInGuild":     "The soundboard bot is not in this server.",
	"FileNotFound":      "That sound no longer exists.",
	"FileNotEnabled":    "That sound is not enabled for this server.",
	"NothingPlaying":    "Nothing is playing right now.",
	"QueueEmpty":        "The queue is empty.",
	"QueueFull":         "The queue is full, try again later.",
	"MissingPermission": "You are not allowed to do that here.",
}
