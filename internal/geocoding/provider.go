package geocoding

import (
	"context"
	"errors"
)

// ErrProviderUnavailable is returned when the external provider cannot be
// reached, times out, or answers with a non-OK status.
var ErrProviderUnavailable = errors.New("geocoding provider unavailable")

// ErrZeroResults is returned when the provider answered but found nothing.
var ErrZeroResults = errors.New("geocoding provider returned no results")

// AddressComponent is one piece of a provider-decomposed address.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// GeocodeResult is a resolved place from the provider.
type GeocodeResult struct {
	Latitude          float64
	Longitude         float64
	FormattedAddress  string
	PlaceID           string
	AddressComponents []AddressComponent
}

// City extracts the locality component, falling back to the
// administrative area when the provider omits it.
func (r *GeocodeResult) City() string {
	if c := r.component("locality"); c != "" {
		return c
	}
	return r.component("administrative_area_level_2")
}

// State extracts the first-level administrative area component.
func (r *GeocodeResult) State() string {
	return r.component("administrative_area_level_1")
}

func (r *GeocodeResult) component(typ string) string {
	for _, c := range r.AddressComponents {
		for _, t := range c.Types {
			if t == typ {
				return c.LongName
			}
		}
	}
	return ""
}

// PolylineStep is one provider-produced leg of a directions result.
type PolylineStep struct {
	Instructions   string
	DistanceMeters int
	DurationSecs   int
	StartLatitude  float64
	StartLongitude float64
	EndLatitude    float64
	EndLongitude   float64
	TravelMode     string
}

// DirectionsResult is the provider's answer for an origin/destination pair.
type DirectionsResult struct {
	DistanceMeters int
	DurationSecs   int
	Steps          []PolylineStep
}

// Provider is the external geocoding and directions collaborator. It must
// be treated as unreliable: every call can fail or time out.
type Provider interface {
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResult, error)
	Directions(ctx context.Context, originLat, originLng, destLat, destLng float64, mode string) (*DirectionsResult, error)
}
