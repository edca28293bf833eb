package plancache

import (
	"context"

	"wayfare/internal/plangen"
)

// Store is the plan cache contract. Lookup and Save satisfy
// plangen.Cache, so any Store plugs straight into the generation client;
// the remaining methods serve maintenance paths.
type Store interface {
	// Lookup returns the cached result for the preferences, if a fresh
	// entry exists. Expired entries count as misses.
	Lookup(ctx context.Context, scope string, prefs plangen.Preferences) (*plangen.Result, bool)

	// Save stores a result, evicting the oldest entry in the scope when
	// at capacity. Storage errors are absorbed, never returned.
	Save(ctx context.Context, scope string, prefs plangen.Preferences, res *plangen.Result)

	// EvictExpired removes entries past their TTL and reports how many
	// were dropped.
	EvictExpired(ctx context.Context, scope string) (int, error)

	// Clear removes every entry in the scope.
	Clear(ctx context.Context, scope string) error
}
