package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/fingertips/internal/api"
	"github.com/cloo-solutions/fingertips/internal/domain"
)

// PageLister is the Confluence surface the operator listing endpoint needs.
type PageLister interface {
	ListPages(ctx context.Context, spaceKey string) ([]domain.Page, error)
}

// PagesHandler serves the operator page-listing endpoint.
type PagesHandler struct {
	lister       PageLister
	defaultSpace string
}

// NewPagesHandler creates a PagesHandler.
func NewPagesHandler(lister PageLister, defaultSpace string) *PagesHandler {
	return &PagesHandler{lister: lister, defaultSpace: defaultSpace}
}

type PageResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	WebUI string `json:"webui,omitempty"`
}

type ListPagesResponse struct {
	Space string         `json:"space"`
	Pages []PageResponse `json:"pages"`
}

// List handles GET /pages?space=KEY.
func (h *PagesHandler) List(w http.ResponseWriter, r *http.Request) {
	space := r.URL.Query().Get("space")
	if space == "" {
		space = h.defaultSpace
	}
	if space == "" {
		api.HandleError(w, domain.ErrMissingSpaceKey)
		return
	}

	pages, err := h.lister.ListPages(r.Context(), space)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ListPagesResponse{Space: space, Pages: make([]PageResponse, 0, len(pages))}
	for _, p := range pages {
		resp.Pages = append(resp.Pages, PageResponse{ID: p.ID, Title: p.Title, WebUI: p.WebUI})
	}

	api.Success(w, http.StatusOK, resp)
}
