// internal/api/handler/api/videos.go
package api

import (
	"net/http"

	"github.com/newthinker/trendpulse/internal/api/response"
	"github.com/newthinker/trendpulse/internal/youtube"
)

// VideoCatalog lists scraped videos by UI category.
type VideoCatalog interface {
	List(category string) []youtube.CatalogVideo
}

// VideosHandler serves the scraped video catalog.
type VideosHandler struct {
	catalog VideoCatalog
}

// NewVideosHandler creates a new videos handler.
func NewVideosHandler(catalog VideoCatalog) *VideosHandler {
	return &VideosHandler{catalog: catalog}
}

// List handles GET /api/videos and /api/youtube/list with ?category=.
func (h *VideosHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.catalog.List(r.URL.Query().Get("category")))
}
