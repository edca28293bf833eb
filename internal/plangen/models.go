package plangen

// Preferences is the semantically meaningful subset of trip-generation
// inputs. It is immutable once submitted: the client hashes it for cache
// lookups and sends it verbatim as the request body.
type Preferences struct {
	// Destination is the target city or region (e.g. "Paris").
	Destination string `json:"destination"`

	// StartDate is the first day of the trip, ISO date (YYYY-MM-DD).
	StartDate string `json:"start_date,omitempty"`

	// Duration is the trip length in days.
	Duration int `json:"duration"`

	// Travelers is the number of people travelling.
	Travelers int `json:"travelers"`

	// Budget is the total budget in Currency units. Zero means unspecified.
	Budget float64 `json:"budget,omitempty"`

	// Interests bias the generated itinerary (e.g. "food", "museums").
	Interests []string `json:"interests,omitempty"`

	// Origin is where the trip starts from, if relevant to routing.
	Origin string `json:"origin,omitempty"`

	// Currency is the ISO 4217 code used for budget figures.
	Currency string `json:"currency,omitempty"`

	// Style describes the travel style (e.g. "relaxed", "packed").
	Style string `json:"style,omitempty"`
}

// Result is the canonical plan representation after normalization. Plan
// holds the unwrapped backend payload (itinerary days, costs, notes);
// the summary fields are optional rendered fragments lifted out of it.
type Result struct {
	Plan             map[string]any `json:"plan"`
	ItinerarySummary string         `json:"itinerary_summary,omitempty"`
	BudgetSummary    string         `json:"budget_summary,omitempty"`
}

// Frame is one decoded server-sent event: the event name plus the
// newline-joined data payload, raw and JSON-decoded.
type Frame struct {
	Event   string
	Data    string
	Payload any
}

// Progress describes one generation step reported by the backend.
type Progress struct {
	Step    string `json:"step"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Hooks receive notifications while a generation runs. Callbacks fire in
// frame order, never concurrently; panics inside them are swallowed so
// they cannot corrupt the parsing state machine.
type Hooks struct {
	// OnProgress fires for every well-formed "progress" frame.
	OnProgress func(Progress)
	// OnEvent fires for every decoded frame, of any name.
	OnEvent func(Frame)
}
