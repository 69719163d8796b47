package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plyst/model"
	"plyst/store"
)

type fakeResolver struct {
	mu      sync.Mutex
	calls   int
	missing map[string]bool
	fail    map[string]error
	gates   map[string]chan struct{}
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		missing: make(map[string]bool),
		fail:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
	}
}

func (f *fakeResolver) ResolvePlayableID(ctx context.Context, title, artist string) (string, error) {
	key := Key(title, artist)

	f.mu.Lock()
	f.calls++
	gate := f.gates[key]
	err := f.fail[key]
	miss := f.missing[key]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", err
	}
	if miss {
		return "", nil
	}
	return "vid-" + key, nil
}

func (f *fakeResolver) ResolveMetadata(ctx context.Context, title, artist string) (*model.TrackInfo, error) {
	return nil, nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestEngine(t *testing.T) (*Engine, *fakeResolver) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	res := newFakeResolver()
	e := NewEngine(res, NewRecorder(ctx, st, "dev"), NewLikedSet(ctx, st, "dev"))
	return e, res
}

func tracks(names ...string) []model.Track {
	out := make([]model.Track, len(names))
	for i, n := range names {
		out[i] = model.Track{Title: n, Artist: "Artist"}
	}
	return out
}

func TestPlayFromQueueSetsQueueAndCurrent(t *testing.T) {
	e, _ := newTestEngine(t)
	q := tracks("A", "B", "C")

	require.NoError(t, e.PlayFromQueue(context.Background(), 1, q))

	s := e.State()
	require.NotNil(t, s.Current)
	assert.Equal(t, "B", s.Current.Track.Title)
	assert.Equal(t, "vid-"+Key("B", "Artist"), s.Current.VideoID)
	assert.Equal(t, 1, s.QueueIndex)
	assert.Equal(t, q, s.Queue)
	assert.True(t, s.HasPrevious)
	assert.True(t, s.HasNext)
}

func TestPlayFromQueueIndexOutOfRange(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.Error(t, e.PlayFromQueue(context.Background(), 3, tracks("A", "B", "C")))
	assert.Error(t, e.PlayFromQueue(context.Background(), -1, tracks("A")))
}

func TestPreviousLandsOnPriorIndex(t *testing.T) {
	e, _ := newTestEngine(t)
	q := tracks("A", "B", "C")
	ctx := context.Background()

	require.NoError(t, e.PlayFromQueue(ctx, 2, q))
	require.NoError(t, e.Previous(ctx))

	s := e.State()
	assert.Equal(t, 1, s.QueueIndex)
	assert.Equal(t, "B", s.Current.Track.Title)
	assert.Equal(t, q, s.Queue)
}

func TestPreviousAtFirstTrackIsNoop(t *testing.T) {
	e, res := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.PlayFromQueue(ctx, 0, tracks("A", "B")))
	calls := res.callCount()

	require.NoError(t, e.Previous(ctx))
	assert.Equal(t, 0, e.State().QueueIndex)
	assert.Equal(t, calls, res.callCount())
}

func TestNextWalksQueueAndStopsAtEnd(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	q := tracks("A", "B", "C")

	require.NoError(t, e.PlayFromQueue(ctx, 0, q))
	require.NoError(t, e.Next(ctx))
	require.NoError(t, e.Next(ctx))

	s := e.State()
	assert.Equal(t, 2, s.QueueIndex)
	assert.Equal(t, "C", s.Current.Track.Title)

	// Past the last track next is a no-op.
	require.NoError(t, e.Next(ctx))
	assert.Equal(t, 2, e.State().QueueIndex)

	// A natural end with repeat-all wraps to the first track.
	e.ToggleRepeat() // all
	require.NoError(t, e.OnTrackEnd(ctx))
	s = e.State()
	assert.Equal(t, 0, s.QueueIndex)
	assert.Equal(t, "A", s.Current.Track.Title)
	assert.Equal(t, q, s.Queue)
}

func TestTrackEndMidQueueAdvances(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.PlayFromQueue(ctx, 0, tracks("A", "B")))
	require.NoError(t, e.OnTrackEnd(ctx))

	s := e.State()
	assert.Equal(t, 1, s.QueueIndex)
	assert.Equal(t, "B", s.Current.Track.Title)
}

func TestTrackEndAtLastTrackStopsUnlessRepeatAll(t *testing.T) {
	for _, mode := range []RepeatMode{RepeatOff, RepeatOne} {
		t.Run(string(mode), func(t *testing.T) {
			e, res := newTestEngine(t)
			ctx := context.Background()

			require.NoError(t, e.PlayFromQueue(ctx, 1, tracks("A", "B")))
			for e.State().Repeat != mode {
				e.ToggleRepeat()
			}
			calls := res.callCount()

			require.NoError(t, e.OnTrackEnd(ctx))

			s := e.State()
			assert.Equal(t, 1, s.QueueIndex)
			assert.Equal(t, "B", s.Current.Track.Title)
			assert.Equal(t, calls, res.callCount(), "no resolution should be issued")
		})
	}
}

func TestTrackEndWithoutQueueIsNoop(t *testing.T) {
	e, res := newTestEngine(t)
	require.NoError(t, e.OnTrackEnd(context.Background()))
	assert.Zero(t, res.callCount())
}

func TestPlayStandaloneClearsQueue(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.PlayFromQueue(ctx, 0, tracks("A", "B")))
	require.NoError(t, e.PlayStandalone(ctx, model.Track{Title: "Solo", Artist: "Artist"}))

	s := e.State()
	assert.Equal(t, "Solo", s.Current.Track.Title)
	assert.Nil(t, s.Queue)
	assert.False(t, s.HasPrevious)
	assert.False(t, s.HasNext)
}

func TestResolutionNotFoundLeavesStateUntouched(t *testing.T) {
	e, res := newTestEngine(t)
	ctx := context.Background()
	q := tracks("A", "B")

	require.NoError(t, e.PlayFromQueue(ctx, 0, q))

	res.missing[Key("B", "Artist")] = true
	err := e.Next(ctx)
	require.ErrorIs(t, err, ErrTrackNotFound)

	s := e.State()
	assert.Equal(t, 0, s.QueueIndex)
	assert.Equal(t, "A", s.Current.Track.Title)
	assert.Len(t, e.Recorder().Entries(0), 1, "failed play must not be recorded")
}

func TestTransportFailureTreatedAsNotFound(t *testing.T) {
	e, res := newTestEngine(t)
	res.fail[Key("A", "Artist")] = errors.New("connection refused")

	err := e.PlayFromQueue(context.Background(), 0, tracks("A"))
	require.ErrorIs(t, err, ErrTrackNotFound)
	assert.Nil(t, e.State().Current)
}

func TestDuplicateResolutionSuppressed(t *testing.T) {
	e, res := newTestEngine(t)
	ctx := context.Background()
	track := model.Track{Title: "A", Artist: "Artist"}
	gate := make(chan struct{})
	res.gates[Key("A", "Artist")] = gate

	done := make(chan error, 1)
	go func() { done <- e.PlayStandalone(ctx, track) }()

	require.Eventually(t, func() bool { return res.callCount() == 1 }, time.Second, time.Millisecond)

	// Same key while in flight: suppressed without a second resolver call.
	require.NoError(t, e.PlayStandalone(ctx, track))
	assert.Equal(t, 1, res.callCount())

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, "A", e.State().Current.Track.Title)
}

func TestStaleResolutionDiscarded(t *testing.T) {
	e, res := newTestEngine(t)
	ctx := context.Background()
	gate := make(chan struct{})
	res.gates[Key("Slow", "Artist")] = gate

	done := make(chan error, 1)
	go func() {
		done <- e.PlayStandalone(ctx, model.Track{Title: "Slow", Artist: "Artist"})
	}()
	require.Eventually(t, func() bool { return res.callCount() == 1 }, time.Second, time.Millisecond)

	// A newer request for a different key completes first.
	require.NoError(t, e.PlayStandalone(ctx, model.Track{Title: "Fast", Artist: "Artist"}))

	close(gate)
	require.NoError(t, <-done)

	s := e.State()
	assert.Equal(t, "Fast", s.Current.Track.Title, "stale result must not win")

	entries := e.Recorder().Entries(0)
	require.Len(t, entries, 1, "stale play must not be recorded")
	assert.Equal(t, "Fast", entries[0].Title)
}

func TestToggleRepeatCycles(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.Equal(t, RepeatAll, e.ToggleRepeat())
	assert.Equal(t, RepeatOne, e.ToggleRepeat())
	assert.Equal(t, RepeatOff, e.ToggleRepeat())
}

func TestToggleLikeWithoutCurrentTrackIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)

	liked, err := e.ToggleLike(context.Background())
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, e.Likes().Keys())
}

func TestToggleLikeCurrentTrack(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.PlayFromQueue(ctx, 0, tracks("A")))

	liked, err := e.ToggleLike(ctx)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, e.State().Liked)

	liked, err = e.ToggleLike(ctx)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestClosePlayerClearsCurrent(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.PlayFromQueue(context.Background(), 0, tracks("A", "B")))

	e.ClosePlayer()
	assert.Nil(t, e.State().Current)
}
