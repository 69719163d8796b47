package player

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"plyst/logger"
	"plyst/model"
)

// ErrTrackNotFound is returned when no playable video could be resolved for
// a track. Transport failures to the resolution collaborator are folded into
// it at this boundary; callers surface one "track not found" notice either way.
var ErrTrackNotFound = errors.New("track not found")

// RepeatMode controls what happens when the queue reaches its last track.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// Resolver maps a (title, artist) pair to a playable video ID or to enriched
// catalog metadata. Both operations are network-bound and fallible.
type Resolver interface {
	ResolvePlayableID(ctx context.Context, title, artist string) (string, error)
	ResolveMetadata(ctx context.Context, title, artist string) (*model.TrackInfo, error)
}

// Engine owns the playback session state for one device: current track,
// ordered queue, shuffle and repeat modes. All transitions funnel through
// playAt, so its guarantees (in-flight guard, stale-response guard, no
// mutation on failed resolution) hold for direct play, previous/next and
// auto-advance alike.
type Engine struct {
	mu sync.Mutex

	resolver Resolver
	recorder *Recorder
	likes    *LikedSet

	current *model.NowPlaying
	queue   *Queue
	shuffle bool
	repeat  RepeatMode

	// loading suppresses duplicate concurrent resolutions for one key.
	loading map[string]struct{}
	// seq/applied implement the stale-response guard: a resolution result is
	// applied only if no newer request was issued after it.
	seq     uint64
	applied uint64

	rand *rand.Rand
}

// NewEngine builds an engine around a resolver and the per-device recorder
// and liked set.
func NewEngine(resolver Resolver, recorder *Recorder, likes *LikedSet) *Engine {
	return &Engine{
		resolver: resolver,
		recorder: recorder,
		likes:    likes,
		repeat:   RepeatOff,
		loading:  make(map[string]struct{}),
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Recorder exposes the engine's recently-played recorder.
func (e *Engine) Recorder() *Recorder { return e.recorder }

// Likes exposes the engine's liked-track set.
func (e *Engine) Likes() *LikedSet { return e.likes }

// State is an immutable snapshot of the playback session.
type State struct {
	Current       *model.NowPlaying `json:"current,omitempty"`
	Queue         []model.Track     `json:"queue,omitempty"`
	QueueIndex    int               `json:"queueIndex"`
	OriginalOrder []model.Track     `json:"-"`
	HasPrevious   bool              `json:"hasPrevious"`
	HasNext       bool              `json:"hasNext"`
	Shuffle       bool              `json:"shuffle"`
	Repeat        RepeatMode        `json:"repeatMode"`
	Liked         bool              `json:"liked"`
}

// State returns a snapshot of the current session.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	s := State{
		Shuffle: e.shuffle,
		Repeat:  e.repeat,
	}
	if e.current != nil {
		cp := *e.current
		s.Current = &cp
		s.Liked = e.likes.Contains(cp.Track)
	}
	if e.queue != nil {
		s.Queue = make([]model.Track, len(e.queue.Tracks))
		copy(s.Queue, e.queue.Tracks)
		s.QueueIndex = e.queue.Index
		s.OriginalOrder = e.queue.OriginalOrder()
		s.HasPrevious = e.queue.Index > 0
		s.HasNext = e.queue.Index < e.queue.Len()-1
	}
	return s
}

// PlayFromQueue plays tracks[index] inside a playlist context: on success the
// whole sibling list becomes the play queue. Any prior shuffle restoration
// order is dropped.
func (e *Engine) PlayFromQueue(ctx context.Context, index int, tracks []model.Track) error {
	if index < 0 || index >= len(tracks) {
		return fmt.Errorf("queue index %d out of range [0,%d)", index, len(tracks))
	}
	return e.playAt(ctx, index, tracks)
}

// PlayStandalone plays a track outside any playlist context; a prior queue
// is explicitly cleared so previous/next stay disabled.
func (e *Engine) PlayStandalone(ctx context.Context, track model.Track) error {
	key := Key(track.Title, track.Artist)
	seq, ok := e.beginResolve(key)
	if !ok {
		return nil
	}

	videoID, err := e.resolve(ctx, key, track)
	if err != nil {
		e.endResolve(key)
		return err
	}

	e.mu.Lock()
	delete(e.loading, key)
	if seq < e.applied {
		e.mu.Unlock()
		return nil
	}
	e.applied = seq
	e.current = &model.NowPlaying{Track: track, VideoID: videoID}
	e.queue = nil
	e.mu.Unlock()

	e.recordPlay(ctx, track)
	return nil
}

// Previous steps back one position in the queue. It is a no-op without a
// queue or at the first track.
func (e *Engine) Previous(ctx context.Context) error {
	e.mu.Lock()
	if e.queue == nil || e.queue.Index <= 0 {
		e.mu.Unlock()
		return nil
	}
	index := e.queue.Index - 1
	tracks := e.queue.Tracks
	e.mu.Unlock()

	return e.playAt(ctx, index, tracks)
}

// Next steps forward one position in the queue. It is a no-op without a
// queue or at the last track.
func (e *Engine) Next(ctx context.Context) error {
	e.mu.Lock()
	if e.queue == nil || e.queue.Index >= e.queue.Len()-1 {
		e.mu.Unlock()
		return nil
	}
	index := e.queue.Index + 1
	tracks := e.queue.Tracks
	e.mu.Unlock()

	return e.playAt(ctx, index, tracks)
}

// OnTrackEnd advances the queue after a natural end-of-media event. At the
// last track it wraps to the first only in repeat-all mode; repeat-one does
// not restart the last track, mirroring the player surface this engine was
// extracted from.
func (e *Engine) OnTrackEnd(ctx context.Context) error {
	e.mu.Lock()
	if e.queue == nil {
		e.mu.Unlock()
		return nil
	}

	if e.queue.Index >= e.queue.Len()-1 {
		if e.repeat != RepeatAll {
			e.mu.Unlock()
			return nil
		}
		tracks := e.queue.Tracks
		e.mu.Unlock()
		return e.playAt(ctx, 0, tracks)
	}

	index := e.queue.Index + 1
	tracks := e.queue.Tracks
	e.mu.Unlock()

	return e.playAt(ctx, index, tracks)
}

// ToggleShuffle flips shuffle mode. With an active queue, turning shuffle on
// keeps the current track first and permutes the rest; turning it off
// restores the pre-shuffle order and repositions at the playing track.
func (e *Engine) ToggleShuffle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.queue != nil {
		if !e.shuffle {
			e.queue.Shuffle(e.rand)
		} else {
			e.queue.Unshuffle()
		}
	}
	e.shuffle = !e.shuffle
	return e.shuffle
}

// ToggleRepeat cycles off, all, one and returns the new mode.
func (e *Engine) ToggleRepeat() RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.repeat {
	case RepeatOff:
		e.repeat = RepeatAll
	case RepeatAll:
		e.repeat = RepeatOne
	default:
		e.repeat = RepeatOff
	}
	return e.repeat
}

// ToggleLike toggles the current track's membership in the liked set and
// persists it immediately. Without a current track it is a no-op.
func (e *Engine) ToggleLike(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return false, nil
	}
	track := e.current.Track
	e.mu.Unlock()

	return e.likes.Toggle(ctx, track)
}

// ClosePlayer clears the current track when the playback surface is closed.
// The queue is kept so reopening a playlist resumes where it pointed.
func (e *Engine) ClosePlayer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = nil
}

// playAt is the single mutation point for every queue-positioned play.
func (e *Engine) playAt(ctx context.Context, index int, tracks []model.Track) error {
	track := tracks[index]
	key := Key(track.Title, track.Artist)

	seq, ok := e.beginResolve(key)
	if !ok {
		// A resolution for this key is already in flight.
		return nil
	}

	videoID, err := e.resolve(ctx, key, track)
	if err != nil {
		e.endResolve(key)
		return err
	}

	e.mu.Lock()
	delete(e.loading, key)
	if seq < e.applied {
		// A newer request finished first; this result is stale.
		e.mu.Unlock()
		return nil
	}
	e.applied = seq
	e.current = &model.NowPlaying{Track: track, VideoID: videoID}
	e.queue = NewQueue(tracks, index)
	e.mu.Unlock()

	e.recordPlay(ctx, track)
	return nil
}

// beginResolve registers an in-flight resolution for key and hands out its
// sequence number. It reports false when the key is already loading.
func (e *Engine) beginResolve(key string) (uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, inflight := e.loading[key]; inflight {
		return 0, false
	}
	e.loading[key] = struct{}{}
	e.seq++
	return e.seq, true
}

func (e *Engine) endResolve(key string) {
	e.mu.Lock()
	delete(e.loading, key)
	e.mu.Unlock()
}

// resolve turns a track into a playable video ID. Empty results and
// transport errors both come back as ErrTrackNotFound; transport errors are
// additionally logged for diagnostics.
func (e *Engine) resolve(ctx context.Context, key string, track model.Track) (string, error) {
	videoID, err := e.resolver.ResolvePlayableID(ctx, track.Title, track.Artist)
	if err != nil {
		logger.Warn("Track resolution failed",
			logger.String("key", key), logger.ErrorField(err))
		return "", ErrTrackNotFound
	}
	if videoID == "" {
		return "", ErrTrackNotFound
	}
	return videoID, nil
}

// recordPlay logs the play. Persistence problems are logged, not surfaced;
// playback already succeeded.
func (e *Engine) recordPlay(ctx context.Context, track model.Track) {
	if _, err := e.recorder.Record(ctx, track); err != nil {
		logger.Error("Failed to record play",
			logger.String("title", track.Title),
			logger.String("artist", track.Artist),
			logger.ErrorField(err))
	}
}
