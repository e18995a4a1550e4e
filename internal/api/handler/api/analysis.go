// internal/api/handler/api/analysis.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/newthinker/trendpulse/internal/analysis"
	"github.com/newthinker/trendpulse/internal/api/response"
	"github.com/newthinker/trendpulse/internal/core"
	"github.com/newthinker/trendpulse/internal/news"
	"go.uber.org/zap"
)

// Analyzer defines the interface needed from analysis.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, keyword string, r core.DateRange) (*analysis.Report, error)
	Summarize(ctx context.Context, keyword string, r core.DateRange) (*analysis.Summary, error)
	Generate(ctx context.Context, req analysis.GenerateRequest) (string, error)
}

// AnalysisHandler serves keyword analysis, news, summaries and content
// generation.
type AnalysisHandler struct {
	analyzer Analyzer
	news     news.Provider
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(analyzer Analyzer, provider news.Provider, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{analyzer: analyzer, news: provider, logger: logger}
}

// notFoundResponse keeps the found flag the UI branches on.
type notFoundResponse struct {
	Found   bool                 `json:"found"`
	Keyword string               `json:"keyword"`
	Error   response.ErrorDetail `json:"error"`
}

// Analysis handles GET /api/analysis?keyword=&startDate=&endDate=.
func (h *AnalysisHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	keyword, dates, ok := keywordQuery(w, r)
	if !ok {
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), keyword, dates)
	if errors.Is(err, core.ErrKeywordNotFound) {
		response.JSON(w, http.StatusNotFound, notFoundResponse{
			Found:   false,
			Keyword: keyword,
			Error:   response.Detail(err),
		})
		return
	}
	if err != nil {
		h.logger.Error("analysis failed", zap.String("keyword", keyword), zap.Error(err))
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, report)
}

// News handles GET /api/news?keyword=&startDate=&endDate=.
func (h *AnalysisHandler) News(w http.ResponseWriter, r *http.Request) {
	keyword, dates, ok := keywordQuery(w, r)
	if !ok {
		return
	}

	items, err := h.news.Search(r.Context(), news.Query{Keyword: keyword, Range: dates})
	if err != nil {
		h.logger.Warn("news search failed", zap.String("keyword", keyword), zap.Error(err))
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, items)
}

// Summary handles GET /api/summary?keyword=&startDate=&endDate=.
func (h *AnalysisHandler) Summary(w http.ResponseWriter, r *http.Request) {
	keyword, dates, ok := keywordQuery(w, r)
	if !ok {
		return
	}

	summary, err := h.analyzer.Summarize(r.Context(), keyword, dates)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// GenerateResponse is the /api/generate success body.
type GenerateResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
}

// GenerateError is the /api/generate failure body. The creation page
// renders error as text, so it carries the message rather than the
// nested error object.
type GenerateError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Cause   string `json:"cause,omitempty"`
}

// Generate handles POST /api/generate.
func (h *AnalysisHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req analysis.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.generateFailed(w, core.WrapError(core.ErrInvalidInput, err))
		return
	}

	result, err := h.analyzer.Generate(r.Context(), req)
	if err != nil {
		h.generateFailed(w, err)
		return
	}

	response.JSON(w, http.StatusOK, GenerateResponse{Success: true, Result: result})
}

func (h *AnalysisHandler) generateFailed(w http.ResponseWriter, err error) {
	status := response.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("generate failed", zap.Error(err))
	}
	detail := response.Detail(err)
	response.JSON(w, status, GenerateError{
		Success: false,
		Error:   detail.Message,
		Code:    detail.Code,
		Cause:   detail.Cause,
	})
}

// keywordQuery reads the keyword and optional date range shared by the
// keyword endpoints, writing a 400 when they are unusable.
func keywordQuery(w http.ResponseWriter, r *http.Request) (string, core.DateRange, bool) {
	q := r.URL.Query()

	keyword := strings.TrimSpace(q.Get("keyword"))
	if keyword == "" {
		response.Fail(w, core.WrapError(core.ErrInvalidInput, errors.New("keyword is required")))
		return "", core.DateRange{}, false
	}

	dates, err := core.ParseDateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		response.Fail(w, err)
		return "", core.DateRange{}, false
	}
	return keyword, dates, true
}
