package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><script>var ytInitialData = {"contents":[` +
	`{"videoRenderer":{"videoId":"dQw4w9WgXcQ","title":"first"}},` +
	`{"videoRenderer":{"videoId":"zzzzzzzzzzz","title":"second"}}]}</script></html>`

func TestFindVideoIDReturnsFirstMatch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	s := NewScraper(srv.URL)
	id, err := s.FindVideoID(context.Background(), "Never Gonna Give You Up", "Rick Astley")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", id)
	assert.Equal(t, "Rick Astley Never Gonna Give You Up audio", gotQuery)
}

func TestFindVideoIDCleansSpecialCharacters(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	s := NewScraper(srv.URL)
	_, err := s.FindVideoID(context.Background(), `Song (feat. "Someone") [Remix]`, "Artist")
	require.NoError(t, err)
	assert.Equal(t, "Artist Song feat. Someone Remix audio", gotQuery)
}

func TestFindVideoIDNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>no results here</html>"))
	}))
	defer srv.Close()

	s := NewScraper(srv.URL)
	_, err := s.FindVideoID(context.Background(), "Title", "Artist")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestFindVideoIDServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewScraper(srv.URL)
	_, err := s.FindVideoID(context.Background(), "Title", "Artist")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatch)
}

func TestExtractVideoID(t *testing.T) {
	assert.Equal(t, "abc123", extractVideoID(`junk{"videoRenderer":{"videoId":"abc123"}more`))
	assert.Empty(t, extractVideoID("no marker"))
	assert.Empty(t, extractVideoID(`{"videoRenderer":{"videoId":"unterminated`))
}
