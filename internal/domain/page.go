package domain

// Page is a wiki page reference returned by the Confluence REST API.
type Page struct {
	ID    string
	Title string
	// WebUI is the relative link to the page in the Confluence web UI.
	WebUI string
}

// SearchResult is a single CQL search hit.
type SearchResult struct {
	ContentID string
	Title     string
	Excerpt   string
	WebUI     string
}
