package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/newthinker/trendpulse/internal/analysis"
	"github.com/newthinker/trendpulse/internal/config"
	"github.com/newthinker/trendpulse/internal/llm"
	"github.com/newthinker/trendpulse/internal/llm/factory"
	"github.com/newthinker/trendpulse/internal/metrics"
	"github.com/newthinker/trendpulse/internal/news"
	"github.com/newthinker/trendpulse/internal/resolver"
	"github.com/newthinker/trendpulse/internal/storage/archive"
	"github.com/newthinker/trendpulse/internal/trend"
	"github.com/newthinker/trendpulse/internal/youtube"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for a burst of file
// events to settle before reloading.
const DefaultDebounce = 500 * time.Millisecond

// ReloadResult reports what a snapshot reload found.
type ReloadResult struct {
	LatestDate   string   `json:"latestDate"`
	Snapshots    int      `json:"snapshots"`
	CatalogFile  string   `json:"catalogFile,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	CacheFlushed bool     `json:"cacheFlushed"`
}

// Status is the /api/health payload.
type Status struct {
	Status        string   `json:"status"`
	LatestDate    string   `json:"latestDate"`
	Snapshots     int      `json:"snapshots"`
	Platforms     []string `json:"platforms"`
	CatalogFile   string   `json:"catalogFile,omitempty"`
	LLM           string   `json:"llm"`
	CachedReports int      `json:"cachedReports"`
	Source        string   `json:"source"`
}

// App wires the snapshot store and every service built on it. It is
// built once at startup and shared by all requests.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Registry

	source   archive.Storage
	store    *trend.Store
	resolver *resolver.Resolver
	aliases  *trend.AliasTable
	catalog  *youtube.Catalog
	videos   *youtube.Client
	news     *news.CachedProvider
	llm      llm.Provider
	analyzer *analysis.Analyzer

	debounce time.Duration
	reloadMu sync.Mutex

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates the application from configuration. A nil registry gets a
// private one.
func New(cfg *config.Config, reg *metrics.Registry, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	source, err := archive.Open(archive.Options{
		Type: cfg.Data.Source,
		Path: cfg.Data.Path,
		S3: archive.S3Config{
			Bucket:    cfg.Data.S3.Bucket,
			Endpoint:  cfg.Data.S3.Endpoint,
			Region:    cfg.Data.S3.Region,
			AccessKey: cfg.Data.S3.AccessKey,
			SecretKey: cfg.Data.S3.SecretKey,
			Prefix:    cfg.Data.S3.Prefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening snapshot source: %w", err)
	}

	provider, err := factory.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	provider = llm.WithObserver(provider, reg)

	store := trend.NewStore(source, logger)
	res := resolver.New(store)

	videos := youtube.New(youtube.Options{
		APIKey:            cfg.YouTube.APIKey,
		BaseURL:           cfg.YouTube.BaseURL,
		Region:            cfg.YouTube.Region,
		MaxResults:        cfg.YouTube.MaxResults,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
		Timeout:           cfg.YouTube.Timeout,
		Observer:          reg,
		Logger:            logger,
	})

	headlines := news.NewCachedProvider(newsProvider(cfg.News, reg, logger), cfg.News.CacheTTL, reg)

	a := &App{
		cfg:      cfg,
		logger:   logger,
		metrics:  reg,
		source:   source,
		store:    store,
		resolver: res,
		aliases:  trend.NewAliasTable(cfg.Platforms.Aliases),
		catalog:  youtube.NewCatalog(source, cfg.YouTube.CatalogPrefix, logger),
		videos:   videos,
		news:     headlines,
		llm:      provider,
		debounce: DefaultDebounce,
	}
	a.analyzer = analysis.New(analysis.Deps{
		Keywords: res,
		Videos:   videos,
		News:     headlines,
		LLM:      provider,
		Cache:    analysis.NewCache(reg),
		Recorder: reg,
		Logger:   logger,
	})

	if provider == nil {
		logger.Info("no LLM provider configured; summary and generate are disabled")
	}
	if !videos.Enabled() {
		logger.Info("no YouTube API key; related videos are disabled")
	}
	return a, nil
}

// Reload re-reads every snapshot and the video catalog, then drops every
// cached report. Degraded loads are logged and reported as warnings; the
// previous data is replaced either way.
func (a *App) Reload(ctx context.Context) ReloadResult {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	var res ReloadResult
	status := "ok"

	if err := a.store.Load(ctx); err != nil {
		var loadErr *trend.LoadError
		if errors.As(err, &loadErr) {
			status = loadErr.Kind.String()
			a.logger.Warn("snapshot load degraded", zap.Error(err))
		} else {
			status = "error"
			a.logger.Error("snapshot load failed", zap.Error(err))
		}
		res.Warnings = append(res.Warnings, err.Error())
	}

	if err := a.catalog.Load(ctx); err != nil {
		a.logger.Warn("video catalog load failed", zap.Error(err))
		res.Warnings = append(res.Warnings, err.Error())
	}

	if keys := a.store.PlatformKeys(); len(keys) > 0 {
		if err := a.aliases.Validate(keys); err != nil {
			a.logger.Warn("platform aliases out of date", zap.Error(err))
			res.Warnings = append(res.Warnings, err.Error())
		}
	}

	a.analyzer.Cache().Flush()
	a.news.Flush()
	res.CacheFlushed = true

	res.LatestDate = a.store.LatestDate()
	res.Snapshots = len(a.store.Dates())
	res.CatalogFile = a.catalog.File()
	a.metrics.RecordReload(status, res.Snapshots)

	a.logger.Info("reload complete",
		zap.String("status", status),
		zap.String("latest", res.LatestDate),
		zap.Int("snapshots", res.Snapshots),
	)
	return res
}

// Start keeps the data fresh until ctx is done: a local source with
// watching enabled is watched for file changes, anything else is reloaded
// on the configured interval.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	if local, ok := a.source.(*archive.LocalFS); ok && a.cfg.Data.Watch {
		err := a.watch(ctx, local.Root())
		if err == nil || ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn("file watch unavailable, falling back to polling", zap.Error(err))
	}
	return a.poll(ctx)
}

// Stop stops the refresh loop.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) poll(ctx context.Context) error {
	interval := a.cfg.Data.ReloadInterval
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	a.logger.Info("polling snapshot source",
		zap.String("source", a.source.Describe()),
		zap.Duration("interval", interval),
	)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.Reload(ctx)
		}
	}
}

// watch reloads after JSON files under dir change. It returns nil when
// ctx ends and an error when watching cannot start or breaks.
func (a *App) watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	a.logger.Info("watching snapshot directory", zap.String("dir", dir))

	timer := time.NewTimer(a.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if !relevant(ev) {
				continue
			}
			a.logger.Debug("snapshot file changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(a.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			a.logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			a.Reload(ctx)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(ev.Name), ".json") {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// Status summarises the loaded data for health checks.
func (a *App) Status() Status {
	llmName := "disabled"
	if a.llm != nil {
		llmName = a.llm.Name()
	}
	platforms := a.store.PlatformKeys()
	if platforms == nil {
		platforms = []string{}
	}

	status := "ok"
	if a.store.LatestDate() == "" {
		status = "degraded"
	}
	return Status{
		Status:        status,
		LatestDate:    a.store.LatestDate(),
		Snapshots:     len(a.store.Dates()),
		Platforms:     platforms,
		CatalogFile:   a.catalog.File(),
		LLM:           llmName,
		CachedReports: a.analyzer.Cache().Len(),
		Source:        a.source.Describe(),
	}
}

// Store returns the snapshot store.
func (a *App) Store() *trend.Store { return a.store }

// Resolver returns the keyword resolver.
func (a *App) Resolver() *resolver.Resolver { return a.resolver }

// Aliases returns the platform alias table.
func (a *App) Aliases() *trend.AliasTable { return a.aliases }

// Catalog returns the scraped video catalog.
func (a *App) Catalog() *youtube.Catalog { return a.catalog }

// News returns the cached news provider.
func (a *App) News() news.Provider { return a.news }

// Analyzer returns the analysis service.
func (a *App) Analyzer() *analysis.Analyzer { return a.analyzer }

// Metrics returns the metrics registry.
func (a *App) Metrics() *metrics.Registry { return a.metrics }

// Source returns the snapshot source.
func (a *App) Source() archive.Storage { return a.source }

func newsProvider(cfg config.NewsConfig, reg *metrics.Registry, logger *zap.Logger) news.Provider {
	if cfg.Provider == "static" {
		items := make([]news.Item, 0, len(cfg.Items))
		for _, it := range cfg.Items {
			items = append(items, news.Item{Title: it.Title, Link: it.Link, PubDate: it.PubDate, Source: it.Source})
		}
		logger.Info("serving static headlines", zap.Int("items", len(items)))
		return news.NewStaticProvider(items)
	}

	google := news.NewGoogleProvider(cfg.Limit, cfg.Timeout, reg, logger)
	if cfg.BaseURL != "" {
		google.SetBaseURL(cfg.BaseURL)
	}
	return google
}
