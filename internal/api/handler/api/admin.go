// internal/api/handler/api/admin.go
package api

import (
	"context"
	"net/http"

	"github.com/newthinker/trendpulse/internal/api/response"
	"github.com/newthinker/trendpulse/internal/app"
)

// AdminApp defines the interface needed from app.App.
type AdminApp interface {
	Reload(ctx context.Context) app.ReloadResult
}

// ReportCache is the analysis cache as seen by operators.
type ReportCache interface {
	Invalidate(keyword string)
	Flush()
	Len() int
}

// AdminHandler handles operator requests.
type AdminHandler struct {
	app   AdminApp
	cache ReportCache
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(app AdminApp, cache ReportCache) *AdminHandler {
	return &AdminHandler{app: app, cache: cache}
}

// Reload handles POST /api/admin/reload.
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.app.Reload(r.Context()))
}

// Cache handles DELETE /api/admin/cache?keyword=. Without a keyword every
// report is dropped.
func (h *AdminHandler) Cache(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		h.cache.Flush()
	} else {
		h.cache.Invalidate(keyword)
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"invalidated": keywordOrAll(keyword),
		"remaining":   h.cache.Len(),
	})
}

func keywordOrAll(keyword string) string {
	if keyword == "" {
		return "*"
	}
	return keyword
}
