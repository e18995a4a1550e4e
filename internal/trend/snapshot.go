package trend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// SourceIntegrated is the Entry.Source of integrated list entries.
const SourceIntegrated = "integrated"

// Entry is the canonical trend row every producer schema is normalised into.
type Entry struct {
	Rank     int      `json:"rank"`
	Keyword  string   `json:"keyword"`
	Score    float64  `json:"score"`
	Mentions int      `json:"mentions"`
	Examples []string `json:"examples,omitempty"`
	Date     string   `json:"date"`
	Source   string   `json:"source"`
}

// PlatformTrend is one platform's ranking inside a snapshot.
type PlatformTrend struct {
	Key     string
	Entries []Entry
}

// Snapshot holds every list captured for one date. It is never mutated
// after decoding.
type Snapshot struct {
	Date       string
	Integrated []Entry
	Platforms  []PlatformTrend
}

// Platform returns the list stored under exactly key.
func (s *Snapshot) Platform(key string) ([]Entry, bool) {
	for _, p := range s.Platforms {
		if p.Key == key {
			return p.Entries, true
		}
	}
	return nil, false
}

// PlatformKeys returns platform keys in file order.
func (s *Snapshot) PlatformKeys() []string {
	keys := make([]string, len(s.Platforms))
	for i, p := range s.Platforms {
		keys[i] = p.Key
	}
	return keys
}

// rawEntry accepts every field spelling seen from the scrapers. JSON keys
// match case-insensitively, so "Keyword" also covers "keyword".
type rawEntry struct {
	Rank          float64  `json:"Rank"`
	Keyword       string   `json:"Keyword"`
	Score         float64  `json:"Score"`
	TotalMentions float64  `json:"Total_Mentions"`
	Count         float64  `json:"Count"`
	Mentions      float64  `json:"Mentions"`
	Examples      []string `json:"Examples"`
	Comments      []string `json:"Comments"`
}

type rawSnapshot struct {
	Integrated json.RawMessage `json:"Integrated_Trends"`
	Platform   json.RawMessage `json:"Platform_Trends"`
}

// DecodeSnapshot parses one trend_keywords_final file.
func DecodeSnapshot(date string, data []byte) (*Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", date, err)
	}

	snap := &Snapshot{Date: date, Integrated: []Entry{}}

	if isPresent(raw.Integrated) {
		var rows []rawEntry
		if err := json.Unmarshal(raw.Integrated, &rows); err != nil {
			return nil, fmt.Errorf("decoding Integrated_Trends of %s: %w", date, err)
		}
		snap.Integrated = normalize(rows, date, SourceIntegrated)
	}

	if isPresent(raw.Platform) {
		platforms, err := decodePlatforms(raw.Platform, date)
		if err != nil {
			return nil, err
		}
		snap.Platforms = platforms
	}

	return snap, nil
}

// decodePlatforms walks Platform_Trends token by token to keep the key
// order of the file. Values that are not lists are skipped; a list with
// a bad row fails the whole snapshot.
func decodePlatforms(data json.RawMessage, date string) ([]PlatformTrend, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding Platform_Trends of %s: %w", date, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil
	}

	var platforms []PlatformTrend
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding Platform_Trends of %s: %w", date, err)
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decoding platform %q of %s: %w", key, date, err)
		}

		if trimmed := bytes.TrimSpace(value); len(trimmed) == 0 || trimmed[0] != '[' {
			continue
		}
		var rows []rawEntry
		if err := json.Unmarshal(value, &rows); err != nil {
			return nil, fmt.Errorf("decoding platform %q of %s: %w", key, date, err)
		}
		platforms = append(platforms, PlatformTrend{
			Key:     key,
			Entries: normalize(rows, date, key),
		})
	}
	return platforms, nil
}

func normalize(rows []rawEntry, date, source string) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		examples := r.Examples
		if len(examples) == 0 {
			examples = r.Comments
		}
		if source != SourceIntegrated {
			examples = tagExamples(examples, source)
		}
		entries = append(entries, Entry{
			Rank:     int(math.Round(r.Rank)),
			Keyword:  r.Keyword,
			Score:    r.Score,
			Mentions: int(math.Round(firstNonZero(r.TotalMentions, r.Count, r.Mentions))),
			Examples: examples,
			Date:     date,
			Source:   source,
		})
	}
	return entries
}

// tagExamples prefixes untagged platform examples with "[key] " so that
// every stored example carries its source.
func tagExamples(examples []string, key string) []string {
	if len(examples) == 0 {
		return examples
	}
	tagged := make([]string, len(examples))
	for i, ex := range examples {
		if strings.HasPrefix(strings.TrimSpace(ex), "[") {
			tagged[i] = ex
		} else {
			tagged[i] = "[" + key + "] " + ex
		}
	}
	return tagged
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
