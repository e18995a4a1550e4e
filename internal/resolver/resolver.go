// Package resolver looks keywords up across the loaded trend snapshots.
package resolver

import (
	"fmt"

	"github.com/newthinker/trendpulse/internal/core"
	"github.com/newthinker/trendpulse/internal/trend"
)

// SourceIntegrated is the SourceType of matches from the integrated list.
const SourceIntegrated = "Integrated"

// Match is a resolved entry tagged with the list it came from.
type Match struct {
	trend.Entry
	SourceType string `json:"sourceType"`
}

// HistoryPoint is a keyword's mention count on one date.
type HistoryPoint struct {
	Date     string `json:"date"`
	Mentions int    `json:"mentions"`
}

// SnapshotSource is the part of the trend store the resolver reads.
type SnapshotSource interface {
	LatestSnapshot() *trend.Snapshot
	Snapshots() []*trend.Snapshot
}

// Resolver searches the integrated list first, then every platform list
// in file order.
type Resolver struct {
	store SnapshotSource
}

// New creates a Resolver over store.
func New(store SnapshotSource) *Resolver {
	return &Resolver{store: store}
}

// Resolve finds keyword in the latest snapshot. Matching is exact and
// case-sensitive.
func (r *Resolver) Resolve(keyword string) (*Match, error) {
	snap := r.store.LatestSnapshot()
	if snap != nil {
		if m := find(snap, keyword); m != nil {
			return m, nil
		}
	}
	return nil, core.WrapError(core.ErrKeywordNotFound, fmt.Errorf("%q", keyword))
}

// History returns the keyword's mentions on every loaded date, ascending.
// Dates where the keyword is absent report zero.
func (r *Resolver) History(keyword string) []HistoryPoint {
	snaps := r.store.Snapshots()
	points := make([]HistoryPoint, 0, len(snaps))
	for _, snap := range snaps {
		p := HistoryPoint{Date: snap.Date}
		if m := find(snap, keyword); m != nil {
			p.Mentions = m.Mentions
		}
		points = append(points, p)
	}
	return points
}

// Comments collects every example quote for keyword across all dates:
// integrated examples first, then each platform's, oldest date first.
// Duplicates keep their first position.
func (r *Resolver) Comments(keyword string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(examples []string) {
		for _, ex := range examples {
			if _, ok := seen[ex]; ok {
				continue
			}
			seen[ex] = struct{}{}
			out = append(out, ex)
		}
	}

	for _, snap := range r.store.Snapshots() {
		for _, e := range snap.Integrated {
			if e.Keyword == keyword {
				add(e.Examples)
			}
		}
		for _, p := range snap.Platforms {
			for _, e := range p.Entries {
				if e.Keyword == keyword {
					add(e.Examples)
				}
			}
		}
	}
	return out
}

func find(snap *trend.Snapshot, keyword string) *Match {
	for _, e := range snap.Integrated {
		if e.Keyword == keyword {
			return &Match{Entry: e, SourceType: SourceIntegrated}
		}
	}
	for _, p := range snap.Platforms {
		for _, e := range p.Entries {
			if e.Keyword == keyword {
				return &Match{Entry: e, SourceType: p.Key}
			}
		}
	}
	return nil
}
