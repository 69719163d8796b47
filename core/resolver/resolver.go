// Package resolver is the track resolution collaborator: it maps a
// (title, artist) pair to a playable video ID via the YouTube scraper and to
// enriched metadata via the Spotify catalog, caching both in the store.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"plyst/core/player"
	"plyst/core/youtube"
	"plyst/logger"
	"plyst/model"
	"plyst/store"
)

// cacheTTL bounds how long resolutions are reused.
const cacheTTL = 24 * time.Hour

// VideoFinder locates a playable video ID for a track.
type VideoFinder interface {
	FindVideoID(ctx context.Context, title, artist string) (string, error)
}

// Catalog looks up enriched track metadata.
type Catalog interface {
	TrackInfo(ctx context.Context, title, artist string) (*model.TrackInfo, error)
}

// Resolver implements the playback engine's resolution contract.
type Resolver struct {
	videos  VideoFinder
	catalog Catalog
	st      store.Store
}

// New builds a resolver over a video finder, a catalog and a cache store.
func New(videos VideoFinder, catalog Catalog, st store.Store) *Resolver {
	return &Resolver{videos: videos, catalog: catalog, st: st}
}

func videoCacheKey(key string) string {
	return fmt.Sprintf("resolve:video:%s", key)
}

func infoCacheKey(key string) string {
	return fmt.Sprintf("resolve:info:%s", key)
}

// ResolvePlayableID returns the playable video ID for a track, or empty when
// no match exists. Only transport failures surface as errors.
func (r *Resolver) ResolvePlayableID(ctx context.Context, title, artist string) (string, error) {
	key := player.Key(title, artist)

	if cached, ok, err := r.st.Load(ctx, videoCacheKey(key)); err == nil && ok {
		return string(cached), nil
	}

	id, err := r.videos.FindVideoID(ctx, title, artist)
	if errors.Is(err, youtube.ErrNoMatch) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("video resolution for %q failed: %w", key, err)
	}

	if err := r.st.SaveTTL(ctx, videoCacheKey(key), []byte(id), cacheTTL); err != nil {
		logger.Warn("Failed to cache resolved video ID",
			logger.String("key", key), logger.ErrorField(err))
	}
	return id, nil
}

// ResolveMetadata returns enriched catalog metadata for a track, or nil when
// the catalog has no match. Best effort: callers fall back to placeholder
// artwork on absence.
func (r *Resolver) ResolveMetadata(ctx context.Context, title, artist string) (*model.TrackInfo, error) {
	key := player.Key(title, artist)

	if cached, ok, err := r.st.Load(ctx, infoCacheKey(key)); err == nil && ok {
		var info model.TrackInfo
		if err := json.Unmarshal(cached, &info); err == nil {
			return &info, nil
		}
		// Corrupt cache entry: fall through and re-resolve.
	}

	info, err := r.catalog.TrackInfo(ctx, title, artist)
	if err != nil {
		return nil, fmt.Errorf("metadata resolution for %q failed: %w", key, err)
	}
	if info == nil {
		return nil, nil
	}

	if raw, err := json.Marshal(info); err == nil {
		if err := r.st.SaveTTL(ctx, infoCacheKey(key), raw, cacheTTL); err != nil {
			logger.Warn("Failed to cache track metadata",
				logger.String("key", key), logger.ErrorField(err))
		}
	}
	return info, nil
}
