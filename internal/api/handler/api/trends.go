// internal/api/handler/api/trends.go
package api

import (
	"errors"
	"net/http"

	"github.com/newthinker/trendpulse/internal/api/response"
	"github.com/newthinker/trendpulse/internal/core"
	"github.com/newthinker/trendpulse/internal/dashboard"
	"github.com/newthinker/trendpulse/internal/trend"
)

// TrendStore is the part of trend.Store the trend handlers read.
type TrendStore interface {
	dashboard.Source
	Platform(key string) ([]trend.Entry, error)
}

// TrendsHandler serves the home page trend lists.
type TrendsHandler struct {
	store   TrendStore
	aliases *trend.AliasTable
}

// NewTrendsHandler creates a new trends handler. A nil alias table means
// the default aliases.
func NewTrendsHandler(store TrendStore, aliases *trend.AliasTable) *TrendsHandler {
	if aliases == nil {
		aliases = trend.NewAliasTable(nil)
	}
	return &TrendsHandler{store: store, aliases: aliases}
}

// Rising handles GET /api/trends/rising.
func (h *TrendsHandler) Rising(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, dashboard.Rising(h.store, dashboard.DefaultLimit))
}

// Platform handles GET /api/trends/platform?platform=<name>.
func (h *TrendsHandler) Platform(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("platform")
	if name == "" {
		response.Fail(w, core.WrapError(core.ErrInvalidInput, errors.New("platform is required")))
		return
	}

	entries, err := h.store.Platform(h.aliases.Resolve(name))
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dashboard.PlatformTop(entries, name, dashboard.DefaultLimit))
}

// List handles GET /api/trends?keyword=&date=.
func (h *TrendsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	response.JSON(w, http.StatusOK, dashboard.Rows(h.store, q.Get("keyword"), q.Get("date")))
}

// Contents handles GET /api/contents/rising?platform=youtube|community.
func (h *TrendsHandler) Contents(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("platform")
	response.JSON(w, http.StatusOK, dashboard.RisingContents(h.store, filter, dashboard.DefaultLimit))
}
