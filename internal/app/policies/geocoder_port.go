package policies

import (
	"context"

	"vendibook/internal/domain/shared/geo"
)

// GeocoderPort resolves free-text addresses to coordinates. Implementations
// must return ErrAddressNotFound-style errors verbatim so the UI can show
// them.
type GeocoderPort interface {
	Geocode(ctx context.Context, address string) (geo.Coordinate, error)
}
