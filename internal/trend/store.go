package trend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/newthinker/trendpulse/internal/core"
	"github.com/newthinker/trendpulse/internal/storage/archive"
	"go.uber.org/zap"
)

// snapshotFile matches trend_keywords_final_<YYYYMMDD>.json.
var snapshotFile = regexp.MustCompile(`^trend_keywords_final_(\d{8})\.json$`)

// SnapshotFileName returns the canonical file name for a date.
func SnapshotFileName(date string) string {
	return "trend_keywords_final_" + date + ".json"
}

// SnapshotDate extracts the date key from a snapshot file name.
func SnapshotDate(name string) (string, bool) {
	m := snapshotFile.FindStringSubmatch(path.Base(name))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Store owns every loaded snapshot. Readers always see a complete set:
// Load builds a new map and swaps it in.
type Store struct {
	source archive.Storage
	logger *zap.Logger

	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	dates     []string // ascending
}

// NewStore creates an empty store reading from source.
func NewStore(source archive.Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		source:    source,
		logger:    logger.Named("trend"),
		snapshots: make(map[string]*Snapshot),
	}
}

// Load replaces the store contents with every snapshot in the source.
// The store stays usable whatever happens: files that fail to parse are
// skipped and reported in the returned *LoadError.
func (s *Store) Load(ctx context.Context) error {
	paths, err := s.source.List(ctx, "")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.replace(map[string]*Snapshot{})
			s.logger.Warn("snapshot source missing", zap.String("source", s.source.Describe()))
			return &LoadError{Kind: DirMissing, Source: s.source.Describe(), Err: err}
		}
		return fmt.Errorf("listing snapshots: %w", err)
	}

	loaded := make(map[string]*Snapshot)
	var malformed []FileError

	for _, p := range paths {
		// Only the top level of the source holds live snapshots.
		if strings.Contains(p, "/") {
			continue
		}
		date, ok := SnapshotDate(p)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		data, err := s.source.Read(ctx, p)
		if err != nil {
			malformed = append(malformed, FileError{Path: p, Err: err})
			continue
		}
		snap, err := DecodeSnapshot(date, data)
		if err != nil {
			malformed = append(malformed, FileError{Path: p, Err: err})
			continue
		}
		loaded[date] = snap
	}

	s.replace(loaded)

	switch {
	case len(malformed) > 0:
		for _, fe := range malformed {
			s.logger.Error("skipping malformed snapshot", zap.String("file", fe.Path), zap.Error(fe.Err))
		}
		return &LoadError{Kind: Malformed, Source: s.source.Describe(), Files: malformed}
	case len(loaded) == 0:
		s.logger.Warn("no snapshot files found", zap.String("source", s.source.Describe()))
		return &LoadError{Kind: NoFiles, Source: s.source.Describe()}
	}

	s.logger.Info("snapshots loaded",
		zap.Int("count", len(loaded)),
		zap.String("latest", s.LatestDate()),
	)
	return nil
}

func (s *Store) replace(snapshots map[string]*Snapshot) {
	dates := make([]string, 0, len(snapshots))
	for d := range snapshots {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	s.mu.Lock()
	s.snapshots = snapshots
	s.dates = dates
	s.mu.Unlock()
}

// Replace swaps in an in-memory snapshot set; used by tests and imports.
func (s *Store) Replace(snapshots ...*Snapshot) {
	m := make(map[string]*Snapshot, len(snapshots))
	for _, snap := range snapshots {
		m[snap.Date] = snap
	}
	s.replace(m)
}

// LatestDate returns the greatest loaded date key, or "".
func (s *Store) LatestDate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.dates) == 0 {
		return ""
	}
	return s.dates[len(s.dates)-1]
}

// LatestSnapshot returns the snapshot of LatestDate, or nil.
func (s *Store) LatestSnapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.dates) == 0 {
		return nil
	}
	return s.snapshots[s.dates[len(s.dates)-1]]
}

// Latest returns the integrated list of the latest snapshot. It is empty,
// never nil, when nothing is loaded.
func (s *Store) Latest() []Entry {
	snap := s.LatestSnapshot()
	if snap == nil {
		return []Entry{}
	}
	return snap.Integrated
}

// History returns every snapshot keyed by date.
func (s *Store) History() map[string]*Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Snapshot, len(s.snapshots))
	for d, snap := range s.snapshots {
		out[d] = snap
	}
	return out
}

// Snapshots returns every snapshot in ascending date order.
func (s *Store) Snapshots() []*Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Snapshot, len(s.dates))
	for i, d := range s.dates {
		out[i] = s.snapshots[d]
	}
	return out
}

// Dates returns the loaded date keys in ascending order.
func (s *Store) Dates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.dates))
	copy(out, s.dates)
	return out
}

// PlatformKeys returns the platform keys of the latest snapshot.
func (s *Store) PlatformKeys() []string {
	snap := s.LatestSnapshot()
	if snap == nil {
		return nil
	}
	return snap.PlatformKeys()
}

// Platform returns the latest list stored under key. Without an exact
// key it concatenates, in file order, every list whose key contains key,
// so "dc" merges "dc_lol" and "dc_comic". Nothing matching is an
// ErrUnknownPlatform.
func (s *Store) Platform(key string) ([]Entry, error) {
	snap := s.LatestSnapshot()
	if snap == nil {
		return []Entry{}, nil
	}

	if entries, ok := snap.Platform(key); ok {
		return entries, nil
	}

	merged := []Entry{}
	matched := false
	for _, p := range snap.Platforms {
		if strings.Contains(p.Key, key) {
			matched = true
			merged = append(merged, p.Entries...)
		}
	}
	if !matched {
		return nil, core.WrapError(core.ErrUnknownPlatform, fmt.Errorf("%q", key))
	}
	return merged, nil
}
