// Package store is the persisted preference store: a small key-value layer
// holding per-device state (liked tracks, recently played history) and the
// resolution cache. Values are whole-value JSON replacements with a single
// writer per device.
package store

import (
	"context"
	"fmt"
	"time"
)

// Store is the preference store contract. Load reports absence through the
// ok flag so missing keys are not errors.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	// SaveTTL persists a value that may expire; ttl <= 0 behaves like Save.
	SaveTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Logical key builders. Per-device state is namespaced by device ID.

// LikedTracksKey returns the key holding a device's liked-track key set.
func LikedTracksKey(deviceID string) string {
	return fmt.Sprintf("likedTracks:%s", deviceID)
}

// RecentlyPlayedKey returns the key holding a device's play history.
func RecentlyPlayedKey(deviceID string) string {
	return fmt.Sprintf("recentlyPlayed:%s", deviceID)
}
