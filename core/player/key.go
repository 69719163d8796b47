// Package player holds the playback session core: the queue engine, the
// recently-played recorder and the liked-track set.
package player

import "strings"

// Key builds the composite de-duplication key for a track. All lookups that
// compare tracks (history, likes, in-flight guard, queue position) go through
// this one normalization so trimming and casing never diverge.
func Key(title, artist string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "-" + strings.ToLower(strings.TrimSpace(artist))
}
