// Package spotify is a thin Spotify Web API client for the catalog proxy:
// playlist search, playlist tracks and track info lookup over the client
// credentials flow.
package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"plyst/config"
	"plyst/logger"
	"plyst/model"
)

const pageSize = 50

// Client talks to the Spotify Web API.
type Client struct {
	apiURL       string
	accountsURL  string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient builds a client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiURL:       strings.TrimRight(cfg.SpotifyAPIURL, "/"),
		accountsURL:  cfg.SpotifyAccountsURL,
		clientID:     cfg.SpotifyClientID,
		clientSecret: cfg.SpotifyClientSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// accessToken returns a cached client-credentials token, refreshing it when
// it is within 30 seconds of expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-30*time.Second)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	c.token = body.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return c.token, nil
}

// get performs an authorized GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, rawURL string, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type apiTrack struct {
	Name     string `json:"name"`
	Duration int    `json:"duration_ms"`
	Album    struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

// SearchPlaylists searches catalog playlists by keyword. Pages are 50 wide;
// entries the API nulls out are dropped.
func (c *Client) SearchPlaylists(ctx context.Context, keyword string, page int) ([]model.Playlist, error) {
	u := fmt.Sprintf("%s/search?q=%s&type=playlist&limit=%d&offset=%d",
		c.apiURL, url.QueryEscape(keyword), pageSize, page*pageSize)

	var body struct {
		Playlists struct {
			Items []*struct {
				ID     string `json:"id"`
				Name   string `json:"name"`
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
				Owner struct {
					DisplayName string `json:"display_name"`
				} `json:"owner"`
			} `json:"items"`
		} `json:"playlists"`
	}
	if err := c.get(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("playlist search failed: %w", err)
	}

	result := make([]model.Playlist, 0, len(body.Playlists.Items))
	for _, item := range body.Playlists.Items {
		if item == nil {
			continue
		}
		p := model.Playlist{
			ID:    item.ID,
			Name:  item.Name,
			Owner: item.Owner.DisplayName,
		}
		if len(item.Images) > 0 {
			p.Image = item.Images[0].URL
		}
		result = append(result, p)
	}
	return result, nil
}

// PlaylistTracks fetches every track of a playlist, walking the API's
// 100-item pages. Tracks without album images are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]model.Track, error) {
	const trackPage = 100

	var head struct {
		Total int `json:"total"`
	}
	base := fmt.Sprintf("%s/playlists/%s/tracks", c.apiURL, url.PathEscape(playlistID))
	if err := c.get(ctx, base+"?limit="+strconv.Itoa(trackPage), &head); err != nil {
		return nil, fmt.Errorf("failed to fetch playlist %s: %w", playlistID, err)
	}

	var tracks []model.Track
	for offset := 0; offset < head.Total; offset += trackPage {
		var body struct {
			Items []struct {
				Track *apiTrack `json:"track"`
			} `json:"items"`
		}
		u := fmt.Sprintf("%s?limit=%d&offset=%d", base, trackPage, offset)
		if err := c.get(ctx, u, &body); err != nil {
			return nil, fmt.Errorf("failed to fetch playlist %s page at %d: %w", playlistID, offset, err)
		}

		for _, item := range body.Items {
			t := item.Track
			if t == nil || len(t.Album.Images) == 0 {
				continue
			}
			artist := ""
			if len(t.Artists) > 0 {
				artist = t.Artists[0].Name
			}
			tracks = append(tracks, model.Track{
				Title:      t.Name,
				Artist:     artist,
				AlbumImage: t.Album.Images[0].URL,
				Duration:   FormatDuration(t.Duration),
			})
		}
	}

	logger.Debug("Fetched playlist tracks",
		logger.String("playlist", playlistID), logger.Int("count", len(tracks)))
	return tracks, nil
}

// TrackInfo looks up the best catalog match for a (title, artist) pair.
// No match returns (nil, nil); absence degrades to placeholder artwork
// upstream.
func (c *Client) TrackInfo(ctx context.Context, title, artist string) (*model.TrackInfo, error) {
	query := strings.Join(strings.Fields(title+" "+artist), " ")
	u := fmt.Sprintf("%s/search?q=%s&type=track&limit=1", c.apiURL, url.QueryEscape(query))

	var body struct {
		Tracks struct {
			Items []apiTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := c.get(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("track info search failed: %w", err)
	}
	if len(body.Tracks.Items) == 0 {
		return nil, nil
	}

	t := body.Tracks.Items[0]
	info := &model.TrackInfo{
		Title:      t.Name,
		Album:      t.Album.Name,
		DurationMs: t.Duration,
	}
	if len(t.Artists) > 0 {
		info.Artist = t.Artists[0].Name
	}
	if len(t.Album.Images) > 0 {
		info.AlbumImage = t.Album.Images[0].URL
	}
	return info, nil
}

// FormatDuration renders milliseconds as m:ss for display.
func FormatDuration(ms int) string {
	if ms <= 0 {
		return "0:00"
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
