package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"plyst/config"
	"plyst/core/player"
	"plyst/core/resolver"
	"plyst/core/spotify"
	"plyst/core/youtube"
	"plyst/logger"
	"plyst/store"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Connect to the preference store
	st, err := store.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer st.Close()
	log.Println("Successfully connected to Redis")

	spotifyClient := spotify.NewClient(cfg)
	scraper := youtube.NewScraper(cfg.YouTubeBaseURL)
	trackResolver := resolver.New(scraper, spotifyClient, st)
	players := player.NewManager(st, trackResolver)

	apiHandler := NewAPIHandler(spotifyClient, trackResolver, players)
	server.Handler = newRouter(apiHandler)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("PLYST backend running on :%s", cfg.ServerPort)
		log.Println("Search playlists via GET /search/playlist/{keyword}")
		log.Println("Resolve tracks via GET /search/track?title=...&artist=...")
		log.Println("Drive playback via the /api/player endpoints")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func newRouter(apiHandler *APIHandler) *mux.Router {
	router := mux.NewRouter()

	// CORS middleware so the frontend can call from any origin
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Device-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Device-ID")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/", apiHandler.RootHandler).Methods(http.MethodGet)

	// Catalog proxy endpoints
	router.HandleFunc("/search/playlist/{keyword}", apiHandler.SearchPlaylistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/search/tracks/{id}", apiHandler.PlaylistTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/search/track", apiHandler.FindTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/search/track/info", apiHandler.TrackInfoHandler).Methods(http.MethodGet)

	// Playback session endpoints
	router.HandleFunc("/api/player/play", apiHandler.PlayHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/previous", apiHandler.PreviousHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/next", apiHandler.NextHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/ended", apiHandler.TrackEndHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/shuffle", apiHandler.ShuffleHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/repeat", apiHandler.RepeatHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/like", apiHandler.LikeHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/state", apiHandler.StateHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/player/recent", apiHandler.RecentHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/player/recent/like", apiHandler.RecentLikeHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/liked", apiHandler.LikedHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/player", apiHandler.ClosePlayerHandler).Methods(http.MethodDelete)

	return router
}
