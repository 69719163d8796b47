// Package youtube resolves playable video IDs by scraping the public search
// results page. There is no API key; the first videoRenderer in the page
// markup is taken as the match.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"plyst/logger"
)

// ErrNoMatch is returned when the results page contains no video.
var ErrNoMatch = errors.New("no video found")

// videoMarker precedes the first video ID in the results page markup.
const videoMarker = `{"videoRenderer":{"videoId":"`

// specialChars are stripped from titles and artists before searching; they
// confuse the results ranking more than they help.
const specialChars = `[](){}'"<>`

// Scraper fetches YouTube search result pages.
type Scraper struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewScraper builds a scraper against baseURL. Requests are rate limited to
// stay under the radar of the results endpoint.
func NewScraper(baseURL string) *Scraper {
	return &Scraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// FindVideoID resolves (title, artist) to the first video ID on the search
// results page for "<artist> <title> audio".
func (s *Scraper) FindVideoID(ctx context.Context, title, artist string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	query := cleanTerm(artist) + " " + cleanTerm(title) + " audio"
	u := s.baseURL + "/results?search_query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read search results: %w", err)
	}

	id := extractVideoID(string(body))
	if id == "" {
		logger.Debug("No video match", logger.String("query", query))
		return "", ErrNoMatch
	}
	return id, nil
}

// extractVideoID pulls the first video ID out of the results page markup.
func extractVideoID(page string) string {
	_, rest, found := strings.Cut(page, videoMarker)
	if !found {
		return ""
	}
	id, _, found := strings.Cut(rest, `"`)
	if !found {
		return ""
	}
	return id
}

// cleanTerm drops bracketing and quoting characters and collapses whitespace.
func cleanTerm(term string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(specialChars, r) {
			return ' '
		}
		return r
	}, term)
	return strings.Join(strings.Fields(cleaned), " ")
}
