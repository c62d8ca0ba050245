package googlemaps_test

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/adapters/out/googlemaps"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type MockGeocodeClient struct {
	mock.Mock
}

func (m *MockGeocodeClient) Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	args := m.Called(ctx, r)
	if res := args.Get(0); res != nil {
		return res.([]maps.GeocodingResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func result(lat, lng float64) maps.GeocodingResult {
	var r maps.GeocodingResult
	r.Geometry.Location = maps.LatLng{Lat: lat, Lng: lng}
	return r
}

func TestGeocoder_Geocode(t *testing.T) {
	t.Run("should take the first result", func(t *testing.T) {
		client := &MockGeocodeClient{}
		client.On("Geocode", mock.Anything, mock.MatchedBy(func(r *maps.GeocodingRequest) bool {
			return r.Address == "Place de l'Indépendance, Dakar" && r.Region == "sn"
		})).Return([]maps.GeocodingResult{result(14.6697, -17.4322), result(0, 0)}, nil).Once()

		loc, err := googlemaps.NewGeocoder(client, "sn").Geocode(context.Background(), "  Place de l'Indépendance, Dakar ")

		require.NoError(t, err)
		assert.InDelta(t, 14.6697, loc.Lat(), 1e-9)
		assert.InDelta(t, -17.4322, loc.Lng(), 1e-9)
		client.AssertExpectations(t)
	})

	t.Run("should reject addresses without a match", func(t *testing.T) {
		client := &MockGeocodeClient{}
		client.On("Geocode", mock.Anything, mock.Anything).Return([]maps.GeocodingResult{}, nil).Once()

		_, err := googlemaps.NewGeocoder(client, "").Geocode(context.Background(), "nowhere")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should map the ZERO_RESULTS status to an invalid address", func(t *testing.T) {
		client := &MockGeocodeClient{}
		client.On("Geocode", mock.Anything, mock.Anything).
			Return(nil, errors.New("maps: ZERO_RESULTS - ")).Once()

		_, err := googlemaps.NewGeocoder(client, "").Geocode(context.Background(), "nowhere")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should wrap other API errors", func(t *testing.T) {
		client := &MockGeocodeClient{}
		apiErr := errors.New("maps: REQUEST_DENIED - invalid key")
		client.On("Geocode", mock.Anything, mock.Anything).Return(nil, apiErr).Once()

		_, err := googlemaps.NewGeocoder(client, "").Geocode(context.Background(), "Dakar")

		require.ErrorIs(t, err, apiErr)
	})

	t.Run("should require an address without calling the API", func(t *testing.T) {
		client := &MockGeocodeClient{}

		_, err := googlemaps.NewGeocoder(client, "").Geocode(context.Background(), "   ")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		client.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	})

	t.Run("should reject out of range coordinates from the API", func(t *testing.T) {
		client := &MockGeocodeClient{}
		client.On("Geocode", mock.Anything, mock.Anything).Return([]maps.GeocodingResult{result(123, 0)}, nil).Once()

		_, err := googlemaps.NewGeocoder(client, "").Geocode(context.Background(), "Dakar")

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}
