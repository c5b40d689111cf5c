// Package calendar fetches the upcoming agenda from the Google Calendar API
// using a pre-issued OAuth bearer token.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cloo-solutions/fingertips/internal/domain"
)

// DefaultEndpoint is the Google Calendar v3 events feed for the primary calendar.
const DefaultEndpoint = "https://www.googleapis.com/calendar/v3/calendars/primary/events"

// TokenEnvVar names the environment variable holding the OAuth bearer token.
const TokenEnvVar = "GOOGLE_OAUTH_TOKEN"

const defaultMaxResults = 10

// ErrNoToken indicates the OAuth token environment variable is unset.
var ErrNoToken = domain.NewDomainError(domain.ErrCodeUnauthorized,
	fmt.Sprintf("%s is not set", TokenEnvVar))

// HTTPClient abstracts the HTTP transport for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Event is a single calendar entry.
type Event struct {
	Summary string
	Start   string
}

// Client fetches events from the Google Calendar API.
type Client struct {
	token      string
	endpoint   string
	httpClient HTTPClient
	now        func() time.Time
}

// NewClient creates a calendar client with the given bearer token.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

// NewClientWithHTTP creates a calendar client with a custom endpoint and
// transport, primarily for testing.
func NewClientWithHTTP(token, endpoint string, httpClient HTTPClient) *Client {
	c := NewClient(token)
	c.endpoint = endpoint
	c.httpClient = httpClient
	return c
}

// NewClientFromEnv creates a calendar client from GOOGLE_OAUTH_TOKEN.
func NewClientFromEnv() (*Client, error) {
	token := os.Getenv(TokenEnvVar)
	if token == "" {
		return nil, ErrNoToken
	}
	return NewClient(token), nil
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

type eventItem struct {
	Summary string    `json:"summary"`
	Status  string    `json:"status"`
	Start   eventTime `json:"start"`
}

type eventsResponse struct {
	Items []eventItem `json:"items"`
}

// Upcoming returns the next events on the primary calendar, ordered by
// start time, skipping cancelled entries.
func (c *Client) Upcoming(ctx context.Context) ([]Event, error) {
	query := url.Values{
		"timeMin":      {c.now().Format(time.RFC3339)},
		"maxResults":   {fmt.Sprintf("%d", defaultMaxResults)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			"calendar request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.NewDomainError(domain.ErrCodeUnauthorized,
			fmt.Sprintf("calendar API rejected the token (status %d)", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return nil, domain.NewDomainError(domain.ErrCodeUpstream,
			fmt.Sprintf("calendar API returned status %d", resp.StatusCode))
	}

	var body eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			"failed to decode calendar response", err)
	}

	events := make([]Event, 0, len(body.Items))
	for _, item := range body.Items {
		if item.Status == "cancelled" {
			continue
		}
		start := item.Start.DateTime
		if start == "" {
			start = item.Start.Date
		}
		events = append(events, Event{Summary: item.Summary, Start: start})
	}
	return events, nil
}
