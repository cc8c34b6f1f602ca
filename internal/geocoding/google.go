package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// GoogleClient talks to the Google Maps web service APIs.
type GoogleClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGoogleClient creates a provider client. baseURL is normally
// https://maps.googleapis.com/maps/api and is overridable for tests.
func NewGoogleClient(apiKey, baseURL string, timeout time.Duration) *GoogleClient {
	return &GoogleClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string             `json:"formatted_address"`
		PlaceID           string             `json:"place_id"`
		AddressComponents []AddressComponent `json:"address_components"`
		Geometry          struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type googleDirectionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
			Steps []struct {
				HTMLInstructions string `json:"html_instructions"`
				TravelMode       string `json:"travel_mode"`
				Distance         struct {
					Value int `json:"value"`
				} `json:"distance"`
				Duration struct {
					Value int `json:"value"`
				} `json:"duration"`
				StartLocation struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"start_location"`
				EndLocation struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"end_location"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Geocode resolves a free-text address to coordinates.
func (g *GoogleClient) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("address", address)
	return g.geocodeCall(ctx, params)
}

// ReverseGeocode resolves coordinates to the nearest address.
func (g *GoogleClient) ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	return g.geocodeCall(ctx, params)
}

func (g *GoogleClient) geocodeCall(ctx context.Context, params url.Values) (*GeocodeResult, error) {
	params.Set("key", g.apiKey)

	var resp googleGeocodeResponse
	if err := g.get(ctx, "/geocode/json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status == "ZERO_RESULTS" || len(resp.Results) == 0 {
		return nil, ErrZeroResults
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("%w: status %s", ErrProviderUnavailable, resp.Status)
	}

	r := resp.Results[0]
	return &GeocodeResult{
		Latitude:          r.Geometry.Location.Lat,
		Longitude:         r.Geometry.Location.Lng,
		FormattedAddress:  r.FormattedAddress,
		PlaceID:           r.PlaceID,
		AddressComponents: r.AddressComponents,
	}, nil
}

// Directions fetches a route between two coordinate pairs. mode is a
// Google travel mode (driving, walking, transit).
func (g *GoogleClient) Directions(ctx context.Context, originLat, originLng, destLat, destLng float64, mode string) (*DirectionsResult, error) {
	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", originLat, originLng))
	params.Set("destination", fmt.Sprintf("%f,%f", destLat, destLng))
	if mode != "" {
		params.Set("mode", mode)
	}
	params.Set("key", g.apiKey)

	var resp googleDirectionsResponse
	if err := g.get(ctx, "/directions/json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status == "ZERO_RESULTS" || len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return nil, ErrZeroResults
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("%w: status %s", ErrProviderUnavailable, resp.Status)
	}

	leg := resp.Routes[0].Legs[0]
	result := &DirectionsResult{
		DistanceMeters: leg.Distance.Value,
		DurationSecs:   leg.Duration.Value,
	}
	for _, s := range leg.Steps {
		result.Steps = append(result.Steps, PolylineStep{
			Instructions:   s.HTMLInstructions,
			DistanceMeters: s.Distance.Value,
			DurationSecs:   s.Duration.Value,
			StartLatitude:  s.StartLocation.Lat,
			StartLongitude: s.StartLocation.Lng,
			EndLatitude:    s.EndLocation.Lat,
			EndLongitude:   s.EndLocation.Lng,
			TravelMode:     s.TravelMode,
		})
	}

	return result, nil
}

func (g *GoogleClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http %d", ErrProviderUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrProviderUnavailable, err)
	}

	return nil
}
