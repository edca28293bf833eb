package plancache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"wayfare/internal/plangen"
)

const keyPrefix = "plancache"

// Key derives the cache key for a scope and a set of preferences.
// Preferences are normalized first so that cosmetic differences (case,
// surrounding whitespace, interest order) hash to the same key. Two
// users never share a key: the scope is part of the key, not the hash.
func Key(scope string, prefs plangen.Preferences) string {
	canonical, _ := json.Marshal(normalize(prefs))
	sum := sha256.Sum256(canonical)
	return keyPrefix + ":" + scope + ":" + hex.EncodeToString(sum[:])
}

// ScopePrefix is the common prefix of every key in a scope, used for
// scope-wide clears.
func ScopePrefix(scope string) string {
	return keyPrefix + ":" + scope + ":"
}

func normalize(p plangen.Preferences) plangen.Preferences {
	p.Destination = strings.ToLower(strings.TrimSpace(p.Destination))
	p.Origin = strings.ToLower(strings.TrimSpace(p.Origin))
	p.Style = strings.ToLower(strings.TrimSpace(p.Style))
	p.StartDate = strings.TrimSpace(p.StartDate)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	p.Interests = normalizeInterests(p.Interests)
	return p
}

func normalizeInterests(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
