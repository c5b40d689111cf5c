package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/fingertips/internal/domain"
)

const defaultEndpoint = "https://slack.com/api"

// ErrNoToken is returned when the bot token is not set
var ErrNoToken = errors.New("SLACK_BOT_TOKEN not set")

// HTTPClient represents the functionality we need from an *http.Client, or similar.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Identity is the bot's own identity as reported by auth.test.
type Identity struct {
	UserID string `json:"user_id"`
	BotID  string `json:"bot_id"`
	User   string `json:"user"`
	Team   string `json:"team"`
}

// Mention returns the <@USERID> token used to address the bot in messages.
func (i Identity) Mention() string {
	return "<@" + i.UserID + ">"
}

// ThreadMessage is a single message in a conversations.replies page.
type ThreadMessage struct {
	User  string `json:"user"`
	BotID string `json:"bot_id"`
	Text  string `json:"text"`
	TS    string `json:"ts"`
}

// Client talks to the Slack Web API. It resolves and caches its own
// identity on first use; Slack owns all state behind these calls.
type Client struct {
	token    string
	endpoint string
	c        HTTPClient

	identityOnce sync.Once
	identity     Identity
	identityErr  error
}

// NewClient returns a Client for the given bot token.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	return &Client{
		token:    token,
		endpoint: defaultEndpoint,
		c:        &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// NewClientWithHTTP returns a Client using the supplied HTTP client and
// endpoint, for tests and proxied deployments.
func NewClientWithHTTP(token, endpoint string, c HTTPClient) (*Client, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	return &Client{
		token:    token,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		c:        c,
	}, nil
}

// apiEnvelope is the common ok/error wrapper on every Web API response.
type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Me returns the bot's own identity, fetching it via auth.test once and
// caching it for the process lifetime.
func (c *Client) Me(ctx context.Context) (Identity, error) {
	c.identityOnce.Do(func() {
		var resp struct {
			apiEnvelope
			Identity
		}
		if err := c.postJSON(ctx, "auth.test", nil, &resp); err != nil {
			c.identityErr = err
			return
		}
		c.identity = resp.Identity
	})
	return c.identity, c.identityErr
}

// PostMessage posts a reply via chat.postMessage. An empty reply is a no-op.
func (c *Client) PostMessage(ctx context.Context, reply domain.Reply) error {
	if reply.Empty() {
		return nil
	}

	body := map[string]string{
		"channel": reply.Channel,
		"text":    reply.Text,
	}
	if reply.ThreadTS != "" {
		body["thread_ts"] = reply.ThreadTS
	}

	var resp apiEnvelope
	return c.postJSON(ctx, "chat.postMessage", body, &resp)
}

// ConversationReplies fetches the messages of a thread via conversations.replies.
func (c *Client) ConversationReplies(ctx context.Context, channel, ts string) ([]ThreadMessage, error) {
	vals := url.Values{}
	vals.Set("channel", channel)
	vals.Set("ts", ts)

	var resp struct {
		apiEnvelope
		Messages []ThreadMessage `json:"messages"`
	}
	if err := c.get(ctx, "conversations.replies", vals, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) postJSON(ctx context.Context, method string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", method, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/"+method, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	return c.do(req, method, out)
}

func (c *Client) get(ctx context.Context, method string, vals url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+method+"?"+vals.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}

	return c.do(req, method, out)
}

func (c *Client) do(req *http.Request, method string, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.c.Do(req)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, method+" request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", method, err)
	}

	// Every Web API payload carries the ok flag; re-decode just the envelope.
	var env apiEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to parse %s envelope: %w", method, err)
	}
	if !env.OK {
		return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			method+" returned an error", errors.New(env.Error))
	}

	return nil
}
