package domain

// Message is an inbound chat message as delivered by the Slack Events API.
// All fields are supplied by the platform; nothing here is owned state.
type Message struct {
	User        string
	Text        string
	Channel     string
	ChannelType string
	ThreadTS    string
	BotID       string
	Subtype     string
}

// IsIM reports whether the message arrived over a direct message channel.
func (m Message) IsIM() bool {
	return m.ChannelType == "im"
}

// FromBot reports whether the message was authored by a bot integration.
func (m Message) FromBot() bool {
	return m.BotID != "" || m.Subtype == "bot_message"
}

// Reply is an outbound chat message. An empty Text means no reply is sent.
type Reply struct {
	Channel  string
	Text     string
	ThreadTS string
}

// Empty reports whether the reply is a no-op.
func (r Reply) Empty() bool {
	return r.Text == ""
}
