// README: Cached trip-plan entries and their identity rules.
package plancache

import (
	"time"

	"wayfare/internal/plangen"
)

// Entry is one cached plan. StoredAt drives both TTL expiry and
// oldest-first eviction when a scope is at capacity.
type Entry struct {
	Key         string              `json:"key"`
	Preferences plangen.Preferences `json:"preferences"`
	Result      *plangen.Result     `json:"result"`
	StoredAt    time.Time           `json:"stored_at"`
}

const (
	// DefaultTTL is how long a cached plan stays servable.
	DefaultTTL = 30 * time.Minute
	// DefaultCapacity bounds the number of entries per scope.
	DefaultCapacity = 20
)
