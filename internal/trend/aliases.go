package trend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newthinker/trendpulse/internal/core"
)

// DefaultAliases maps the platform names the UI sends to store keys.
var DefaultAliases = map[string]string{
	"dcinside": "dc",
	"natepan":  "nate",
	"x":        "x_trends",
}

// AliasTable translates UI platform names into store keys.
type AliasTable struct {
	aliases map[string]string
}

// NewAliasTable copies aliases; nil means DefaultAliases.
func NewAliasTable(aliases map[string]string) *AliasTable {
	if aliases == nil {
		aliases = DefaultAliases
	}
	m := make(map[string]string, len(aliases))
	for k, v := range aliases {
		m[strings.ToLower(k)] = v
	}
	return &AliasTable{aliases: m}
}

// Resolve returns the store key for name. Names without an alias pass
// through unchanged.
func (t *AliasTable) Resolve(name string) string {
	if key, ok := t.aliases[strings.ToLower(name)]; ok {
		return key
	}
	return name
}

// Validate returns an error naming every alias that matches none of the
// given store keys, either exactly or as a substring.
func (t *AliasTable) Validate(keys []string) error {
	var dangling []string
	for alias, target := range t.aliases {
		found := false
		for _, k := range keys {
			if k == target || strings.Contains(k, target) {
				found = true
				break
			}
		}
		if !found {
			dangling = append(dangling, alias+"->"+target)
		}
	}
	if len(dangling) == 0 {
		return nil
	}
	sort.Strings(dangling)
	return core.WrapError(core.ErrUnknownPlatform,
		fmt.Errorf("aliases match no loaded platform: %s", strings.Join(dangling, ", ")))
}
