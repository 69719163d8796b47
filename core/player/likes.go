package player

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"plyst/logger"
	"plyst/model"
	"plyst/store"
)

// LikedSet is the set of liked composite keys for one device, persisted
// independently of the play history. It stores keys only; display metadata
// is reconciled from the recently-played history.
type LikedSet struct {
	mu   sync.Mutex
	st   store.Store
	key  string
	keys map[string]struct{}
}

// NewLikedSet loads a device's liked keys. Missing or corrupt stored data is
// treated as an empty set.
func NewLikedSet(ctx context.Context, st store.Store, deviceID string) *LikedSet {
	l := &LikedSet{
		st:   st,
		key:  store.LikedTracksKey(deviceID),
		keys: make(map[string]struct{}),
	}

	raw, ok, err := st.Load(ctx, l.key)
	if err != nil {
		logger.Warn("Failed to load liked tracks, starting empty",
			logger.String("device", deviceID), logger.ErrorField(err))
		return l
	}
	if !ok {
		return l
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		logger.Warn("Corrupt liked tracks data, starting empty",
			logger.String("device", deviceID), logger.ErrorField(err))
		return l
	}
	for _, k := range list {
		l.keys[k] = struct{}{}
	}
	return l
}

// Toggle flips membership of the track's composite key and persists the
// updated set immediately. It reports the resulting liked state.
func (l *LikedSet) Toggle(ctx context.Context, t model.Track) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := Key(t.Title, t.Artist)
	_, liked := l.keys[key]
	if liked {
		delete(l.keys, key)
	} else {
		l.keys[key] = struct{}{}
	}
	return !liked, l.persist(ctx)
}

// Contains reports whether the track is liked.
func (l *LikedSet) Contains(t model.Track) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.keys[Key(t.Title, t.Artist)]
	return ok
}

// Keys returns the liked composite keys in stable order.
func (l *LikedSet) Keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.keys))
	for k := range l.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (l *LikedSet) persist(ctx context.Context) error {
	list := make([]string, 0, len(l.keys))
	for k := range l.keys {
		list = append(list, k)
	}
	sort.Strings(list)

	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal liked tracks: %w", err)
	}
	if err := l.st.Save(ctx, l.key, raw); err != nil {
		return fmt.Errorf("failed to save liked tracks: %w", err)
	}
	return nil
}
