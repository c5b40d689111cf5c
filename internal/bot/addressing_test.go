package bot

import (
	"context"
	"testing"

	"github.com/cloo-solutions/fingertips/internal/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockThreadAPI struct {
	mock.Mock
}

func (m *MockThreadAPI) Me(ctx context.Context) (slack.Identity, error) {
	args := m.Called(ctx)
	return args.Get(0).(slack.Identity), args.Error(1)
}

func (m *MockThreadAPI) ConversationReplies(ctx context.Context, channel, ts string) ([]slack.ThreadMessage, error) {
	args := m.Called(ctx, channel, ts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]slack.ThreadMessage), args.Error(1)
}

func TestSpeakingToMe_AppMention(t *testing.T) {
	ok, err := SpeakingToMe(context.Background(), new(MockThreadAPI), slack.InnerEvent{
		Type: slack.EventTypeAppMention,
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSpeakingToMe_DirectMessage(t *testing.T) {
	ok, err := SpeakingToMe(context.Background(), new(MockThreadAPI), slack.InnerEvent{
		Type:        slack.EventTypeMessage,
		ChannelType: "im",
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSpeakingToMe_PlainChannelMessage(t *testing.T) {
	ok, err := SpeakingToMe(context.Background(), new(MockThreadAPI), slack.InnerEvent{
		Type:        slack.EventTypeMessage,
		ChannelType: "channel",
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSpeakingToMe_ThreadTheBotIsIn(t *testing.T) {
	api := new(MockThreadAPI)
	api.On("Me", mock.Anything).Return(slack.Identity{UserID: "U0BOT", BotID: "B042"}, nil)
	api.On("ConversationReplies", mock.Anything, "C123", "1712.0001").Return([]slack.ThreadMessage{
		{User: "U456", Text: "question", TS: "1712.0001"},
		{BotID: "B042", Text: "an earlier bot answer", TS: "1712.0002"},
		{User: "U456", Text: "follow-up", TS: "1712.0003"},
	}, nil)

	ok, err := SpeakingToMe(context.Background(), api, slack.InnerEvent{
		Type:        slack.EventTypeMessage,
		ChannelType: "channel",
		Channel:     "C123",
		ThreadTS:    "1712.0001",
	})

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSpeakingToMe_BotSentLastThreadMessage(t *testing.T) {
	api := new(MockThreadAPI)
	api.On("Me", mock.Anything).Return(slack.Identity{UserID: "U0BOT", BotID: "B042"}, nil)
	api.On("ConversationReplies", mock.Anything, "C123", "1712.0001").Return([]slack.ThreadMessage{
		{User: "U456", Text: "question", TS: "1712.0001"},
		{BotID: "B042", Text: "the bot's own answer", TS: "1712.0002"},
	}, nil)

	ok, err := SpeakingToMe(context.Background(), api, slack.InnerEvent{
		Type:        slack.EventTypeMessage,
		ChannelType: "channel",
		Channel:     "C123",
		ThreadTS:    "1712.0001",
	})

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSpeakingToMe_MentionedInThread(t *testing.T) {
	api := new(MockThreadAPI)
	api.On("Me", mock.Anything).Return(slack.Identity{UserID: "U0BOT", BotID: "B042"}, nil)
	api.On("ConversationReplies", mock.Anything, "C123", "1712.0001").Return([]slack.ThreadMessage{
		{User: "U456", Text: "ask <@U0BOT> about it", TS: "1712.0001"},
		{User: "U789", Text: "good idea", TS: "1712.0002"},
	}, nil)

	ok, err := SpeakingToMe(context.Background(), api, slack.InnerEvent{
		Type:        slack.EventTypeMessage,
		ChannelType: "channel",
		Channel:     "C123",
		ThreadTS:    "1712.0001",
	})

	require.NoError(t, err)
	assert.True(t, ok)
}
