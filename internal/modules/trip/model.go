// README: Saved trip aggregate.
package trip

import (
	"time"

	"wayfare/internal/types"
)

// Trip is a persisted plan a user chose to keep. Plan holds the
// normalized generation output as raw JSON; the flat columns exist so
// lists and filters never have to open the document.
type Trip struct {
	ID           types.ID
	UserID       types.ID
	Title        string
	Destination  string
	StartDate    string
	DurationDays int
	Travelers    int
	Plan         []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
