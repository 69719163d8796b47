package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"plyst/logger"
	"plyst/model"
)

// SearchPlaylistsHandler proxies catalog playlist search.
// GET /search/playlist/{keyword}?offset=N (pages of 50)
func (h *APIHandler) SearchPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	keyword := mux.Vars(r)["keyword"]
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	playlists, err := h.spotify.SearchPlaylists(r.Context(), keyword, offset)
	if err != nil {
		logger.Error("Playlist search failed",
			logger.String("keyword", keyword), logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "playlist search failed")
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

// PlaylistTracksHandler proxies the full track list of a playlist.
// GET /search/tracks/{id}
func (h *APIHandler) PlaylistTracksHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tracks, err := h.spotify.PlaylistTracks(r.Context(), id)
	if err != nil {
		logger.Error("Playlist tracks fetch failed",
			logger.String("playlist", id), logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "failed to fetch playlist tracks")
		return
	}
	if tracks == nil {
		tracks = []model.Track{}
	}
	writeJSON(w, http.StatusOK, tracks)
}

// FindTrackHandler resolves a (title, artist) pair to a playable video ID,
// returned as a bare string. No match yields an empty body, matching the
// frontend's "empty means not found" contract.
// GET /search/track?title=...&artist=...
func (h *APIHandler) FindTrackHandler(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	artist := r.URL.Query().Get("artist")
	if title == "" || artist == "" {
		writeError(w, http.StatusBadRequest, "title and artist are required")
		return
	}

	id, err := h.resolver.ResolvePlayableID(r.Context(), title, artist)
	if err != nil {
		logger.Error("Track resolution failed",
			logger.String("title", title), logger.String("artist", artist),
			logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "track resolution failed")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(id))
}

// TrackInfoHandler looks up enriched metadata for a track. Failures and
// misses both degrade to an empty albumImage so the frontend can fall back
// to placeholder artwork.
// GET /search/track/info?title=...&artist=...
func (h *APIHandler) TrackInfoHandler(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	artist := r.URL.Query().Get("artist")

	info, err := h.resolver.ResolveMetadata(r.Context(), title, artist)
	if err != nil {
		logger.Warn("Track info lookup failed",
			logger.String("title", title), logger.String("artist", artist),
			logger.ErrorField(err))
	}
	if info == nil {
		writeJSON(w, http.StatusOK, map[string]string{"albumImage": ""})
		return
	}
	writeJSON(w, http.StatusOK, info)
}
