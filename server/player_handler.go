package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"plyst/core/player"
	"plyst/model"
)

// deviceHeader carries the per-device identity. Login is simulated: a device
// without an ID gets a fresh one minted and echoed back.
const deviceHeader = "X-Device-ID"

// session resolves the playback engine for the calling device.
func (h *APIHandler) session(w http.ResponseWriter, r *http.Request) *player.Engine {
	deviceID := r.Header.Get(deviceHeader)
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	w.Header().Set(deviceHeader, deviceID)
	return h.players.Session(r.Context(), deviceID)
}

type playRequest struct {
	Track model.Track   `json:"track"`
	Queue []model.Track `json:"queue,omitempty"`
	Index int           `json:"index"`
}

// PlayHandler starts playback. With a queue the play carries the full
// sibling track list as playlist context; without one it is a standalone
// play and any prior queue is cleared.
// POST /api/player/play
func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	engine := h.session(w, r)

	var err error
	if len(req.Queue) > 0 {
		if req.Index < 0 || req.Index >= len(req.Queue) {
			writeError(w, http.StatusBadRequest, "index out of range")
			return
		}
		err = engine.PlayFromQueue(r.Context(), req.Index, req.Queue)
	} else {
		if req.Track.Title == "" || req.Track.Artist == "" {
			writeError(w, http.StatusBadRequest, "track title and artist are required")
			return
		}
		err = engine.PlayStandalone(r.Context(), req.Track)
	}

	if errors.Is(err, player.ErrTrackNotFound) {
		writeError(w, http.StatusNotFound, "track not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "playback failed")
		return
	}
	writeJSON(w, http.StatusOK, engine.State())
}

// PreviousHandler steps to the previous queued track.
// POST /api/player/previous
func (h *APIHandler) PreviousHandler(w http.ResponseWriter, r *http.Request) {
	engine := h.session(w, r)
	if err := engine.Previous(r.Context()); errors.Is(err, player.ErrTrackNotFound) {
		writeError(w, http.StatusNotFound, "track not found")
		return
	}
	writeJSON(w, http.StatusOK, engine.State())
}

// NextHandler steps to the next queued track.
// POST /api/player/next
func (h *APIHandler) NextHandler(w http.ResponseWriter, r *http.Request) {
	engine := h.session(w, r)
	if err := engine.Next(r.Context()); errors.Is(err, player.ErrTrackNotFound) {
		writeError(w, http.StatusNotFound, "track not found")
		return
	}
	writeJSON(w, http.StatusOK, engine.State())
}

// TrackEndHandler reports a natural end-of-media event. The playback surface
// must call it exactly once per natural end, never on manual skip or stop.
// POST /api/player/ended
func (h *APIHandler) TrackEndHandler(w http.ResponseWriter, r *http.Request) {
	engine := h.session(w, r)
	if err := engine.OnTrackEnd(r.Context()); errors.Is(err, player.ErrTrackNotFound) {
		writeError(w, http.StatusNotFound, "track not found")
		return
	}
	writeJSON(w, http.StatusOK, engine.State())
}

// ShuffleHandler toggles shuffle mode.
// POST /api/player/shuffle
func (h *APIHandler) ShuffleHandler(w http.ResponseWriter, r *http.Request) {
	engine := h.session(w, r)
	engine.ToggleShuffle()
	writeJSON(w, http.StatusOK, engine.State())
}

// RepeatHandler cycles the repeat mode (off, all, one).
// POST /api/player/repeat
func (h *APIHandler) RepeatHandler(w http.ResponseWriter, r *http.Request) {
	engine := h.session(w, r)
	engine.ToggleRepeat()
	writeJSON(w, http.StatusOK, engine.State())
}

// LikeHandler toggles the current track in the liked set.
// POST /api/player/like
func (h *APIHandler) LikeHandler(w http.ResponseWriter, r *http.Request) {
	engine := h.session(w, r)
	if _, err := engine.ToggleLike(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist like")
		return
	}
	writeJSON(w, http.StatusOK, engine.State())
}

// StateHandler returns the playback session snapshot.
// GET /api/player/state
func (h *APIHandler) StateHandler(w http.ResponseWriter, r *http.Request) {
	engine := h.session(w, r)
	writeJSON(w, http.StatusOK, engine.State())
}

// RecentHandler returns the recently-played history, newest first.
// GET /api/player/recent?limit=N
func (h *APIHandler) RecentHandler(w http.ResponseWriter, r *http.Request) {
	engine := h.session(w, r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, engine.Recorder().Entries(limit))
}

type recentLikeRequest struct {
	ID    string       `json:"id,omitempty"`
	Track *model.Track `json:"track,omitempty"`
}

// RecentLikeHandler toggles the liked flag on a history entry, either by
// entry identity or by track. Liking a track that was never played
// synthesizes a history entry for it.
// POST /api/player/recent/like
func (h *APIHandler) RecentLikeHandler(w http.ResponseWriter, r *http.Request) {
	var req recentLikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	engine := h.session(w, r)

	var (
		liked bool
		err   error
	)
	switch {
	case req.ID != "":
		liked, err = engine.Recorder().ToggleLike(r.Context(), req.ID)
	case req.Track != nil:
		liked, err = engine.Recorder().ToggleLikeForTrack(r.Context(), *req.Track)
	default:
		writeError(w, http.StatusBadRequest, "id or track is required")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist like")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isLiked": liked})
}

// LikedHandler returns liked songs reconciled with history metadata.
// GET /api/player/liked
func (h *APIHandler) LikedHandler(w http.ResponseWriter, r *http.Request) {
	engine := h.session(w, r)
	writeJSON(w, http.StatusOK, engine.LikedSongs())
}

// ClosePlayerHandler clears the current track when the player is dismissed.
// DELETE /api/player
func (h *APIHandler) ClosePlayerHandler(w http.ResponseWriter, r *http.Request) {
	engine := h.session(w, r)
	engine.ClosePlayer()
	writeJSON(w, http.StatusOK, engine.State())
}
