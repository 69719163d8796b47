package player

import (
	"context"
	"sync"

	"plyst/model"
	"plyst/store"
)

// Manager hands out one playback engine per device. Engines are created
// lazily; their recorder and liked set load persisted state on first use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Engine
	st       store.Store
	resolver Resolver
}

// NewManager creates a session manager over a preference store and resolver.
func NewManager(st store.Store, resolver Resolver) *Manager {
	return &Manager{
		sessions: make(map[string]*Engine),
		st:       st,
		resolver: resolver,
	}
}

// Session returns the engine for a device, creating it on first use.
func (m *Manager) Session(ctx context.Context, deviceID string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[deviceID]; ok {
		return e
	}
	e := NewEngine(
		m.resolver,
		NewRecorder(ctx, m.st, deviceID),
		NewLikedSet(ctx, m.st, deviceID),
	)
	m.sessions[deviceID] = e
	return e
}

// LikedSongs reconciles the engine's liked keys against its play history:
// the set stores keys only, so album art and duration come from the newest
// matching history entry when one exists.
func (e *Engine) LikedSongs() []model.LikedSong {
	keys := e.likes.Keys()
	out := make([]model.LikedSong, 0, len(keys))
	for _, key := range keys {
		song := model.LikedSong{Key: key}
		if entry, ok := e.recorder.Lookup(key); ok {
			song.Title = entry.Title
			song.Artist = entry.Artist
			song.AlbumImage = entry.AlbumImage
			song.Duration = entry.Duration
		}
		out = append(out, song)
	}
	return out
}
