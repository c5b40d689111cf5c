package slack

import "github.com/cloo-solutions/fingertips/internal/domain"

// Events API envelope types. Slack delivers either a url_verification
// handshake or an event_callback wrapping the inner event.

const (
	EnvelopeTypeURLVerification = "url_verification"
	EnvelopeTypeEventCallback   = "event_callback"

	EventTypeAppMention = "app_mention"
	EventTypeMessage    = "message"
)

// EventEnvelope is the top-level Events API request payload.
type EventEnvelope struct {
	Type      string     `json:"type"`
	Challenge string     `json:"challenge,omitempty"`
	TeamID    string     `json:"team_id,omitempty"`
	EventID   string     `json:"event_id,omitempty"`
	Event     InnerEvent `json:"event,omitempty"`
}

// InnerEvent is the event body inside an event_callback envelope.
type InnerEvent struct {
	Type        string `json:"type"`
	Subtype     string `json:"subtype,omitempty"`
	User        string `json:"user,omitempty"`
	BotID       string `json:"bot_id,omitempty"`
	Text        string `json:"text,omitempty"`
	Channel     string `json:"channel,omitempty"`
	ChannelType string `json:"channel_type,omitempty"`
	TS          string `json:"ts,omitempty"`
	ThreadTS    string `json:"thread_ts,omitempty"`
	EventTS     string `json:"event_ts,omitempty"`
}

// Message converts the inner event to the transport-neutral domain message.
func (e InnerEvent) Message() domain.Message {
	return domain.Message{
		User:        e.User,
		Text:        e.Text,
		Channel:     e.Channel,
		ChannelType: e.ChannelType,
		ThreadTS:    e.ThreadTS,
		BotID:       e.BotID,
		Subtype:     e.Subtype,
	}
}

// IsAppMention reports whether the inner event is an app_mention.
func (e InnerEvent) IsAppMention() bool {
	return e.Type == EventTypeAppMention
}
