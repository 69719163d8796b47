package player

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"plyst/logger"
	"plyst/model"
	"plyst/store"
)

// historyLimit caps the recently-played history.
const historyLimit = 50

// Recorder appends play events to the recently-played history with
// de-duplication by composite key and a bounded size. Every mutation is
// persisted to the preference store before returning.
type Recorder struct {
	mu      sync.Mutex
	st      store.Store
	key     string
	entries []model.RecentlyPlayedEntry
	now     func() time.Time
}

// NewRecorder loads a device's history from the store. Missing or corrupt
// stored data is treated as an empty history, never as a failure.
func NewRecorder(ctx context.Context, st store.Store, deviceID string) *Recorder {
	r := &Recorder{
		st:  st,
		key: store.RecentlyPlayedKey(deviceID),
		now: time.Now,
	}

	raw, ok, err := st.Load(ctx, r.key)
	if err != nil {
		logger.Warn("Failed to load recently played history, starting empty",
			logger.String("device", deviceID), logger.ErrorField(err))
		return r
	}
	if !ok {
		return r
	}
	if err := json.Unmarshal(raw, &r.entries); err != nil {
		logger.Warn("Corrupt recently played history, starting empty",
			logger.String("device", deviceID), logger.ErrorField(err))
		r.entries = nil
	}
	return r
}

// Record logs a play of track. An older entry for the same title+artist is
// removed before the new one is prepended, and the history is truncated to
// the most recent entries.
func (r *Recorder) Record(ctx context.Context, t model.Track) (model.RecentlyPlayedEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	duration := t.Duration
	if duration == "" {
		duration = "0:00"
	}
	entry := model.RecentlyPlayedEntry{
		ID:         fmt.Sprintf("%s-%s-%d", t.Title, t.Artist, now.UnixMilli()),
		Title:      t.Title,
		Artist:     t.Artist,
		AlbumImage: t.AlbumImage,
		Duration:   duration,
		PlayedAt:   now,
	}

	r.entries = prependCapped(r.withoutKey(Key(t.Title, t.Artist)), entry)
	return entry, r.persist(ctx)
}

// ToggleLike flips the liked flag on the history entry with the given
// identity. Unknown identities are a no-op.
func (r *Recorder) ToggleLike(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].Liked = !r.entries[i].Liked
			return r.entries[i].Liked, r.persist(ctx)
		}
	}
	return false, nil
}

// ToggleLikeForTrack flips the liked flag on the newest entry matching the
// track's composite key. A track liked before it was ever played gets a
// synthesized entry, liked from the start.
func (r *Recorder) ToggleLikeForTrack(ctx context.Context, t model.Track) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key(t.Title, t.Artist)
	for i := range r.entries {
		if Key(r.entries[i].Title, r.entries[i].Artist) == key {
			r.entries[i].Liked = !r.entries[i].Liked
			return r.entries[i].Liked, r.persist(ctx)
		}
	}

	now := r.now()
	duration := t.Duration
	if duration == "" {
		duration = "0:00"
	}
	entry := model.RecentlyPlayedEntry{
		ID:         fmt.Sprintf("%s-%s-%d", t.Title, t.Artist, now.UnixMilli()),
		Title:      t.Title,
		Artist:     t.Artist,
		AlbumImage: t.AlbumImage,
		Duration:   duration,
		PlayedAt:   now,
		Liked:      true,
	}
	r.entries = prependCapped(r.entries, entry)
	return true, r.persist(ctx)
}

// Entries returns up to limit history entries, most recent first. A limit of
// 0 or less returns the full history.
func (r *Recorder) Entries(limit int) []model.RecentlyPlayedEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.RecentlyPlayedEntry, n)
	copy(out, r.entries[:n])
	return out
}

// Lookup returns the newest entry for a composite key, if any.
func (r *Recorder) Lookup(key string) (model.RecentlyPlayedEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if Key(e.Title, e.Artist) == key {
			return e, true
		}
	}
	return model.RecentlyPlayedEntry{}, false
}

func (r *Recorder) withoutKey(key string) []model.RecentlyPlayedEntry {
	filtered := r.entries[:0:0]
	for _, e := range r.entries {
		if Key(e.Title, e.Artist) != key {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func prependCapped(entries []model.RecentlyPlayedEntry, e model.RecentlyPlayedEntry) []model.RecentlyPlayedEntry {
	out := append([]model.RecentlyPlayedEntry{e}, entries...)
	if len(out) > historyLimit {
		out = out[:historyLimit]
	}
	return out
}

func (r *Recorder) persist(ctx context.Context) error {
	raw, err := json.Marshal(r.entries)
	if err != nil {
		return fmt.Errorf("failed to marshal recently played history: %w", err)
	}
	if err := r.st.Save(ctx, r.key, raw); err != nil {
		return fmt.Errorf("failed to save recently played history: %w", err)
	}
	return nil
}
