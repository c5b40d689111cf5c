package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloo-solutions/fingertips/internal/domain"
)

const (
	// DefaultSearchLimit caps CQL search results, matching what the bot
	// feeds back to the assistant per query.
	DefaultSearchLimit = 5
	// DefaultListLimit caps a single space page listing request.
	DefaultListLimit = 50
)

var (
	// ErrNoCredentials is returned when the Confluence credentials are not set
	ErrNoCredentials = errors.New("confluence url, username and api token must be set")
)

// tagPattern strips HTML markup from rendered page bodies.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// HTTPClient represents the functionality we need from an *http.Client, or similar.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Config holds Confluence connection settings.
type Config struct {
	BaseURL  string
	Username string
	APIToken string
}

// Client talks to the Confluence Cloud REST API using basic auth.
type Client struct {
	baseURL  string
	username string
	apiToken string
	c        HTTPClient
}

// NewClient creates a Client for the given site.
func NewClient(cfg Config) (*Client, error) {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: 30 * time.Second})
}

// NewClientWithHTTP creates a Client using the supplied HTTP client, for tests.
func NewClientWithHTTP(cfg Config, c HTTPClient) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Username == "" || cfg.APIToken == "" {
		return nil, ErrNoCredentials
	}
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		username: cfg.Username,
		apiToken: cfg.APIToken,
		c:        c,
	}, nil
}

type contentLinks struct {
	WebUI string `json:"webui"`
}

type contentResult struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Links contentLinks `json:"_links"`
}

// ListPages returns the pages of a space, in the order the API returns them.
func (c *Client) ListPages(ctx context.Context, spaceKey string) ([]domain.Page, error) {
	if spaceKey == "" {
		return nil, domain.ErrMissingSpaceKey
	}

	vals := url.Values{}
	vals.Set("spaceKey", spaceKey)
	vals.Set("type", "page")
	vals.Set("limit", strconv.Itoa(DefaultListLimit))

	var resp struct {
		Results []contentResult `json:"results"`
	}
	if err := c.get(ctx, "/rest/api/content", vals, &resp); err != nil {
		return nil, err
	}

	pages := make([]domain.Page, 0, len(resp.Results))
	for _, r := range resp.Results {
		pages = append(pages, domain.Page{
			ID:    r.ID,
			Title: r.Title,
			WebUI: r.Links.WebUI,
		})
	}
	return pages, nil
}

// Search runs a CQL query and returns up to limit hits. A limit of zero or
// less falls back to DefaultSearchLimit.
func (c *Client) Search(ctx context.Context, cql string, limit int) ([]domain.SearchResult, error) {
	if cql == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "cql query cannot be empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	vals := url.Values{}
	vals.Set("cql", cql)
	vals.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Results []struct {
			Content contentResult `json:"content"`
			Excerpt string        `json:"excerpt"`
			URL     string        `json:"url"`
		} `json:"results"`
	}
	if err := c.get(ctx, "/rest/api/search", vals, &resp); err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, domain.SearchResult{
			ContentID: r.Content.ID,
			Title:     r.Content.Title,
			Excerpt:   StripTags(r.Excerpt),
			WebUI:     r.URL,
		})
	}
	return results, nil
}

// PageBody loads a page with the rendered body.view expansion and returns
// its text with HTML markup stripped.
func (c *Client) PageBody(ctx context.Context, pageID string) (string, error) {
	if pageID == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "page id cannot be empty")
	}

	vals := url.Values{}
	vals.Set("expand", "body.view")

	var resp struct {
		ID   string `json:"id"`
		Body struct {
			View struct {
				Value string `json:"value"`
			} `json:"view"`
		} `json:"body"`
	}
	if err := c.get(ctx, "/rest/api/content/"+url.PathEscape(pageID), vals, &resp); err != nil {
		return "", err
	}

	return StripTags(resp.Body.View.Value), nil
}

// StripTags removes HTML markup, leaving the text content.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

func (c *Client) get(ctx context.Context, path string, vals url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+vals.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.c.Do(req)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "confluence request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrPageNotFound
	case resp.StatusCode >= 400:
		return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			fmt.Sprintf("confluence returned %d for %s", resp.StatusCode, path),
			errors.New(strings.TrimSpace(string(data))))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response for %s: %w", path, err)
	}
	return nil
}
