package model

// Playlist is a catalog playlist summary returned by the search proxy.
type Playlist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Owner string `json:"owner"`
}
