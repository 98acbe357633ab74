package geocode

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"vendibook/internal/domain/shared/geo"
)

// ErrAddressNotFound is returned when the geocoder resolves zero results.
var ErrAddressNotFound = errors.New("geocode: address not found")

// Service resolves free-text addresses through the Google Maps geocoding API.
type Service struct {
	client *maps.Client
}

// NewService creates a geocoding service with the given API key.
func NewService(apiKey string) (*Service, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("geocode: create maps client: %w", err)
	}
	return &Service{client: client}, nil
}

func (s *Service) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("geocode: maps api error: %w", err)
	}
	if len(results) == 0 {
		return geo.Coordinate{}, ErrAddressNotFound
	}
	loc := results[0].Geometry.Location
	return geo.Coordinate{Lat: loc.Lat, Lon: loc.Lng}, nil
}
