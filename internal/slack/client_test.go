package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cloo-solutions/fingertips/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClientWithHTTP("xoxb-test", srv.URL, srv.Client())
	require.NoError(t, err)
	return client, srv
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestMe_CachesIdentity(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/auth.test", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":      true,
			"user_id": "U0BOT",
			"bot_id":  "B042",
			"user":    "fingertips",
		})
	})

	first, err := client.Me(context.Background())
	require.NoError(t, err)
	second, err := client.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "U0BOT", first.UserID)
	assert.Equal(t, "B042", first.BotID)
	assert.Equal(t, "<@U0BOT>", first.Mention())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostMessage(t *testing.T) {
	var got map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
	})

	err := client.PostMessage(context.Background(), domain.Reply{
		Channel:  "C123",
		Text:     "Hello <@U456>!",
		ThreadTS: "1712.0001",
	})
	require.NoError(t, err)

	assert.Equal(t, "C123", got["channel"])
	assert.Equal(t, "Hello <@U456>!", got["text"])
	assert.Equal(t, "1712.0001", got["thread_ts"])
}

func TestPostMessage_EmptyReplyIsNoOp(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty reply")
	})

	err := client.PostMessage(context.Background(), domain.Reply{Channel: "C123"})
	assert.NoError(t, err)
}

func TestPostMessage_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":    false,
			"error": "channel_not_found",
		})
	})

	err := client.PostMessage(context.Background(), domain.Reply{Channel: "C404", Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeUpstream, domainErr.Code)
}

func TestConversationReplies(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations.replies", r.URL.Path)
		assert.Equal(t, "C123", r.URL.Query().Get("channel"))
		assert.Equal(t, "1712.0001", r.URL.Query().Get("ts"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"messages": []map[string]string{
				{"user": "U456", "text": "what is the buddy system?", "ts": "1712.0001"},
				{"bot_id": "B042", "text": "Let me check.", "ts": "1712.0002"},
			},
		})
	})

	msgs, err := client.ConversationReplies(context.Background(), "C123", "1712.0001")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "U456", msgs[0].User)
	assert.Equal(t, "B042", msgs[1].BotID)
}

func TestInnerEventMessage(t *testing.T) {
	ev := InnerEvent{
		Type:        EventTypeMessage,
		User:        "U456",
		Text:        "hello",
		Channel:     "D789",
		ChannelType: "im",
		ThreadTS:    "1712.0001",
	}

	msg := ev.Message()
	assert.Equal(t, "U456", msg.User)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "D789", msg.Channel)
	assert.True(t, msg.IsIM())
	assert.Equal(t, "1712.0001", msg.ThreadTS)
}
