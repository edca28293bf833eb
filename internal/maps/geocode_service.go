package maps

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"
)

// GeocodeService resolves place names from generated itineraries to
// coordinates via the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
	// Geocoding is billed per call; itinerary enrichment can fan out to
	// dozens of lookups, so calls are rate limited client-side.
	limiter *rate.Limiter
}

// NewGeocodeService creates a GeocodeService with the given API key.
func NewGeocodeService(apiKey string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}, nil
}

// Geocode resolves an address or place name to coordinates. The region
// hint biases ambiguous names toward the trip's destination.
func (s *GeocodeService) Geocode(ctx context.Context, address, region string) (lat, lng float64, err error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}
	query := address
	if region != "" {
		query = fmt.Sprintf("%s, %s", address, region)
	}
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no geocoding result for %q", address)
	}
	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}
