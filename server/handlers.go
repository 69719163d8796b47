package server

import (
	"encoding/json"
	"net/http"

	"plyst/core/player"
	"plyst/core/resolver"
	"plyst/core/spotify"
	"plyst/logger"
)

// APIHandler bundles the handlers' dependencies.
type APIHandler struct {
	spotify  *spotify.Client
	resolver *resolver.Resolver
	players  *player.Manager
}

// NewAPIHandler creates an APIHandler.
func NewAPIHandler(sp *spotify.Client, res *resolver.Resolver, players *player.Manager) *APIHandler {
	return &APIHandler{
		spotify:  sp,
		resolver: res,
		players:  players,
	}
}

// RootHandler reports liveness.
func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("PLYST Backend Server Running"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
