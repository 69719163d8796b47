package player

import (
	"math/rand"

	"plyst/model"
)

// Queue is the ordered list currently being played through. It exists only
// while a track was started from within a playlist context; standalone plays
// carry no queue. Not persisted across restarts.
type Queue struct {
	Tracks []model.Track `json:"tracks"`
	Index  int           `json:"currentIndex"`

	// original holds the pre-shuffle order while shuffle is active.
	original []model.Track
}

// NewQueue builds a queue positioned at index.
func NewQueue(tracks []model.Track, index int) *Queue {
	cp := make([]model.Track, len(tracks))
	copy(cp, tracks)
	return &Queue{Tracks: cp, Index: index}
}

// Current returns the track at the play position, or nil for an empty queue.
func (q *Queue) Current() *model.Track {
	if q == nil || len(q.Tracks) == 0 || q.Index < 0 || q.Index >= len(q.Tracks) {
		return nil
	}
	return &q.Tracks[q.Index]
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.Tracks)
}

// Shuffle moves the current track to the front and applies a Fisher-Yates
// permutation to the rest. The pre-shuffle order is kept for Unshuffle, but
// only if one is not already held, so the true original survives repeated
// toggles.
func (q *Queue) Shuffle(r *rand.Rand) {
	if q == nil || len(q.Tracks) == 0 {
		return
	}

	current := q.Tracks[q.Index]
	others := make([]model.Track, 0, len(q.Tracks)-1)
	for i, t := range q.Tracks {
		if i != q.Index {
			others = append(others, t)
		}
	}

	r.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	if q.original == nil {
		q.original = q.Tracks
	}
	q.Tracks = append([]model.Track{current}, others...)
	q.Index = 0
}

// Unshuffle restores the pre-shuffle order and repositions the play index at
// the currently playing track, falling back to 0 when it is no longer found.
func (q *Queue) Unshuffle() {
	if q == nil || q.original == nil {
		return
	}

	current := q.Current()
	q.Tracks = q.original
	q.original = nil
	q.Index = 0
	if current == nil {
		return
	}

	key := Key(current.Title, current.Artist)
	for i, t := range q.Tracks {
		if Key(t.Title, t.Artist) == key {
			q.Index = i
			return
		}
	}
}

// OriginalOrder returns the pre-shuffle order, or nil when shuffle is off.
func (q *Queue) OriginalOrder() []model.Track {
	if q == nil {
		return nil
	}
	return q.original
}
