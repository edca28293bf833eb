package service

import (
	"context"

	"go.uber.org/zap"

	"wayfare/internal/modules/plancache"
	"wayfare/internal/plangen"
	"wayfare/internal/types"
)

// maxGeocodeLookups caps enrichment fan-out per generated plan.
const maxGeocodeLookups = 20

// Geocoder resolves itinerary place names to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address, region string) (lat, lng float64, err error)
}

// Generator produces a normalized trip plan for a set of preferences.
type Generator interface {
	Generate(ctx context.Context, req plangen.GenerateRequest) plangen.Outcome[*plangen.Result]
}

// TripPlanner orchestrates plan generation, itinerary enrichment, and the
// per-user plan cache.
type TripPlanner struct {
	gen      Generator
	cache    plancache.Store
	geocoder Geocoder
	logger   *zap.Logger
}

// NewTripPlanner creates a TripPlanner. The geocoder is optional; without
// one, plans are returned as generated.
func NewTripPlanner(gen Generator, cache plancache.Store, geocoder Geocoder, logger *zap.Logger) *TripPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripPlanner{gen: gen, cache: cache, geocoder: geocoder, logger: logger}
}

// Generate runs one generation for the user and enriches the itinerary
// with coordinates before returning.
func (p *TripPlanner) Generate(ctx context.Context, userID types.ID, token string, prefs plangen.Preferences) plangen.Outcome[*plangen.Result] {
	return p.generate(ctx, userID, token, prefs, plangen.Hooks{})
}

func (p *TripPlanner) generate(ctx context.Context, userID types.ID, token string, prefs plangen.Preferences, hooks plangen.Hooks) plangen.Outcome[*plangen.Result] {
	out := p.gen.Generate(ctx, plangen.GenerateRequest{
		Scope:       string(userID),
		Token:       token,
		Preferences: prefs,
		Hooks:       hooks,
	})
	if !out.Success {
		p.logger.Info("generation failed",
			zap.String("user_id", string(userID)),
			zap.String("code", out.Code),
			zap.String("message", out.Message))
		return out
	}
	p.enrichItinerary(ctx, out.Data, prefs.Destination)
	return out
}

// PlanEvent is one unit of the streamed generation feed. Backend frames
// pass through under their own names; the stream always ends with a
// "result" or "error" event carrying the final outcome.
type PlanEvent struct {
	Name string
	Data any
}

// GenerateStream runs a generation and emits its events on the returned
// channel, in arrival order. The channel closes after the terminal event.
// Abandoning the consumer is safe once ctx is cancelled.
func (p *TripPlanner) GenerateStream(ctx context.Context, userID types.ID, token string, prefs plangen.Preferences) <-chan PlanEvent {
	events := make(chan PlanEvent, 16)
	emit := func(e PlanEvent) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}
	go func() {
		defer close(events)
		hooks := plangen.Hooks{
			OnEvent: func(f plangen.Frame) {
				emit(PlanEvent{Name: f.Event, Data: f.Payload})
			},
		}
		out := p.generate(ctx, userID, token, prefs, hooks)
		if out.Success {
			emit(PlanEvent{Name: "result", Data: out})
		} else {
			emit(PlanEvent{Name: "error", Data: out})
		}
	}()
	return events
}

// ClearCache drops every cached plan for the user.
func (p *TripPlanner) ClearCache(ctx context.Context, userID types.ID) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Clear(ctx, string(userID))
}

// enrichItinerary walks the generated itinerary and fills in coordinates
// for activities that name a location but carry none. Lookup failures
// leave the activity as generated.
func (p *TripPlanner) enrichItinerary(ctx context.Context, res *plangen.Result, region string) {
	if p.geocoder == nil || res == nil {
		return
	}
	days, ok := res.Plan["itinerary"].([]any)
	if !ok {
		return
	}
	lookups := 0
	for _, d := range days {
		day, ok := d.(map[string]any)
		if !ok {
			continue
		}
		activities, ok := day["activities"].([]any)
		if !ok {
			continue
		}
		for _, a := range activities {
			if lookups >= maxGeocodeLookups {
				return
			}
			activity, ok := a.(map[string]any)
			if !ok {
				continue
			}
			location, ok := activity["location"].(string)
			if !ok || location == "" {
				continue
			}
			if _, has := activity["lat"]; has {
				continue
			}
			lookups++
			lat, lng, err := p.geocoder.Geocode(ctx, location, region)
			if err != nil {
				p.logger.Debug("geocode skipped", zap.String("location", location), zap.Error(err))
				continue
			}
			activity["lat"] = lat
			activity["lng"] = lng
		}
	}
}
