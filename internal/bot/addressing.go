package bot

import (
	"context"
	"strings"

	"github.com/cloo-solutions/fingertips/internal/slack"
)

// ThreadAPI is the Slack surface the addressing check needs.
type ThreadAPI interface {
	Me(ctx context.Context) (slack.Identity, error)
	ConversationReplies(ctx context.Context, channel, ts string) ([]slack.ThreadMessage, error)
}

// SpeakingToMe reports whether the bot should treat the event as addressed
// to it: an app_mention, a direct message, or a thread the bot already
// participates in. A thread counts when the bot authored an earlier message
// in it (but not the most recent one, so it never answers itself) or when
// the bot's mention appears anywhere in the thread.
func SpeakingToMe(ctx context.Context, api ThreadAPI, ev slack.InnerEvent) (bool, error) {
	if ev.IsAppMention() {
		return true, nil
	}
	if ev.ChannelType == "im" {
		return true, nil
	}
	if ev.ThreadTS == "" {
		return false, nil
	}

	me, err := api.Me(ctx)
	if err != nil {
		return false, err
	}

	history, err := api.ConversationReplies(ctx, ev.Channel, ev.ThreadTS)
	if err != nil {
		return false, err
	}

	myThread := false
	for i, msg := range history {
		if me.BotID != "" && msg.BotID == me.BotID {
			if i < len(history)-1 {
				myThread = true
			} else {
				// The bot sent the most recent message and should not
				// respond to itself.
				myThread = false
			}
		}
		if containsFold(msg.Text, me.Mention()) {
			myThread = true
		}
	}
	return myThread, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
