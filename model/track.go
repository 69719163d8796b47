package model

import "time"

// Track identifies a song for queueing and resolution. The (title, artist)
// pair is the natural key; no numeric ID is stable across sources.
type Track struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	AlbumImage string `json:"albumImage,omitempty"` // URL
	Duration   string `json:"duration,omitempty"`   // display-formatted, e.g. "3:42"
}

// TrackInfo is enriched catalog metadata for a track, best-effort.
type TrackInfo struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	AlbumImage string `json:"albumImage"`
	DurationMs int    `json:"duration"`
}

// NowPlaying is the track actively loaded into the player together with its
// resolved playable video ID.
type NowPlaying struct {
	Track   Track  `json:"track"`
	VideoID string `json:"videoId"`
}

// RecentlyPlayedEntry is a historical play record. ID is unique even for
// repeated plays of the same track.
type RecentlyPlayedEntry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	AlbumImage string    `json:"albumImage,omitempty"`
	Duration   string    `json:"duration"`
	PlayedAt   time.Time `json:"playedAt"`
	Liked      bool      `json:"isLiked"`
}

// LikedSong is a liked composite key joined with whatever display metadata
// the play history still holds for it.
type LikedSong struct {
	Key        string `json:"key"`
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
	AlbumImage string `json:"albumImage,omitempty"`
	Duration   string `json:"duration,omitempty"`
}
