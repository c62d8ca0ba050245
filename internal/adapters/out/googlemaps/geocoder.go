// Package googlemaps resolves job addresses with the Google Geocoding API.
package googlemaps

import (
	"context"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"googlemaps.github.io/maps"
)

// GeocodeClient is the part of *maps.Client the geocoder uses.
type GeocodeClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Geocoder implements ports.Geocoder. The first result wins.
type Geocoder struct {
	client GeocodeClient
	region string
}

// NewClient creates a Maps client authenticated with apiKey.
func NewClient(apiKey string) (*maps.Client, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// NewGeocoder biases lookups to region (a ccTLD such as "sn"); empty means no bias.
func NewGeocoder(client GeocodeClient, region string) *Geocoder {
	return &Geocoder{client: client, region: region}
}

// Geocode returns the coordinates of address. An address with no match is
// reported as errs.ErrValueIsInvalid so callers can reject the request.
func (g *Geocoder) Geocode(ctx context.Context, address string) (kernel.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return kernel.Location{}, errs.NewValueIsRequiredError("address")
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  g.region,
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return kernel.Location{}, notFound(address)
		}
		return kernel.Location{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return kernel.Location{}, notFound(address)
	}

	loc := results[0].Geometry.Location
	return kernel.NewLocation(loc.Lat, loc.Lng)
}

func notFound(address string) error {
	return errs.NewValueIsInvalidErrorWithCause("address", fmt.Errorf("%q has no match", address))
}
