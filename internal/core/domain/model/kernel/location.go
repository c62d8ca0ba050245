package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is an immutable WGS84 point. The zero value is invalid.
//
// Example:
//
//	pickup, err := kernel.NewLocation(14.6928, -17.4467)
//	if err != nil {
//	    // latitude or longitude out of range
//	}
//	fmt.Println(pickup) // Location(14.692800,-17.446700)
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewLocation creates a Location after checking that latitude is within
// [MinLatitude..MaxLatitude] and longitude within [MinLongitude..MaxLongitude].
//
// Parameters:
//   - lat: latitude in decimal degrees
//   - lng: longitude in decimal degrees
//
// Returns:
//   - Location: a valid location
//   - error: joined range errors for every invalid coordinate
func NewLocation(lat, lng float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLng(lng)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate returns ErrLocationIsNotConstructed for the zero value.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in decimal degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lng returns the longitude in decimal degrees.
func (l Location) Lng() float64 {
	return l.lng
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.lat, l.lng)
}

// IsEqual reports whether both locations hold the same coordinates.
// Both locations must be constructed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.lat == other.lat && l.lng == other.lng, nil
}

// DistanceKm returns the great-circle distance to other in kilometres.
//
// Returns:
//   - float64: haversine distance, symmetric and 0 for identical points
//   - error: validation error if either location is a zero value
//
// Example:
//
//	d, _ := courierPosition.DistanceKm(pickup)
//	if d <= radiusKm {
//	    // courier is within the search radius
//	}
func (l Location) DistanceKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return DistanceKm(l.lat, l.lng, other.lat, other.lng), nil
}

// BoundingBox returns the latitude/longitude window that contains every point
// within radiusKm of l. Storage adapters use it as an index-friendly pre-filter
// before the exact haversine check.
func (l Location) BoundingBox(radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	latDelta := radiusKm / EarthRadiusKm * (180 / math.Pi)

	cosLat := math.Cos(l.lat * math.Pi / 180)
	lngDelta := MaxLongitude
	if cosLat > 1e-9 {
		lngDelta = math.Min(MaxLongitude, latDelta/cosLat)
	}

	return math.Max(MinLatitude, l.lat-latDelta), math.Min(MaxLatitude, l.lat+latDelta),
		math.Max(MinLongitude, l.lng-lngDelta), math.Min(MaxLongitude, l.lng+lngDelta)
}

func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}

	l.lat = lat
	return nil
}

func (l *Location) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("lng", lng, MinLongitude, MaxLongitude)
	}

	l.lng = lng
	return nil
}
