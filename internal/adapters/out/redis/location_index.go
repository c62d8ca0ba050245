// Package redis keeps a geospatial index of courier positions in a Redis
// sorted set. The courier store stays authoritative; the index only narrows
// the candidate pool before the exact eligibility filter runs.
package redis

import (
	"context"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the sorted set holding courier positions.
const DefaultKey = "dispatch:couriers:locations"

// LocationIndex implements ports.LocationIndex with GEOADD, GEOSEARCH and ZREM.
type LocationIndex struct {
	client redis.Cmdable
	key    string
}

// NewClient connects to addr and checks the connection with PING.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// NewLocationIndex stores positions under key, or DefaultKey when key is empty.
func NewLocationIndex(client redis.Cmdable, key string) *LocationIndex {
	if key == "" {
		key = DefaultKey
	}
	return &LocationIndex{client: client, key: key}
}

// Upsert records the courier's latest position.
func (i *LocationIndex) Upsert(ctx context.Context, courierID kernel.UUID, location kernel.Location) error {
	return i.client.GeoAdd(ctx, i.key, &redis.GeoLocation{
		Name:      courierID.String(),
		Longitude: location.Lng(),
		Latitude:  location.Lat(),
	}).Err()
}

// Remove drops the courier from the index. Removing an unknown courier is not an error.
func (i *LocationIndex) Remove(ctx context.Context, courierID kernel.UUID) error {
	return i.client.ZRem(ctx, i.key, courierID.String()).Err()
}

// Nearby returns up to limit courier ids within radiusKm of center, closest
// first. Members that are not valid ids are skipped.
func (i *LocationIndex) Nearby(ctx context.Context, center kernel.Location, radiusKm float64, limit int) ([]kernel.UUID, error) {
	members, err := i.client.GeoSearch(ctx, i.key, &redis.GeoSearchQuery{
		Longitude:  center.Lng(),
		Latitude:   center.Lat(),
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
		Count:      limit,
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(members))
	for _, m := range members {
		id, parseErr := kernel.UUIDFromString(m)
		if parseErr != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
