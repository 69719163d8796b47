package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plyst/core/youtube"
	"plyst/model"
	"plyst/store"
)

type fakeVideos struct {
	calls int
	id    string
	err   error
}

func (f *fakeVideos) FindVideoID(ctx context.Context, title, artist string) (string, error) {
	f.calls++
	return f.id, f.err
}

type fakeCatalog struct {
	calls int
	info  *model.TrackInfo
	err   error
}

func (f *fakeCatalog) TrackInfo(ctx context.Context, title, artist string) (*model.TrackInfo, error) {
	f.calls++
	return f.info, f.err
}

func TestResolvePlayableIDCachesResult(t *testing.T) {
	videos := &fakeVideos{id: "abc123"}
	r := New(videos, &fakeCatalog{}, store.NewMemory())

	id, err := r.ResolvePlayableID(context.Background(), "Ditto", "NewJeans")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	// Casing and padding fold into the same cache key.
	id, err = r.ResolvePlayableID(context.Background(), "  DITTO ", "newjeans")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, 1, videos.calls)
}

func TestResolvePlayableIDNoMatch(t *testing.T) {
	videos := &fakeVideos{err: youtube.ErrNoMatch}
	r := New(videos, &fakeCatalog{}, store.NewMemory())

	id, err := r.ResolvePlayableID(context.Background(), "Unknown", "Nobody")
	require.NoError(t, err)
	assert.Empty(t, id)

	// A miss is not cached; the next call scrapes again.
	_, err = r.ResolvePlayableID(context.Background(), "Unknown", "Nobody")
	require.NoError(t, err)
	assert.Equal(t, 2, videos.calls)
}

func TestResolvePlayableIDTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	r := New(&fakeVideos{err: boom}, &fakeCatalog{}, store.NewMemory())

	_, err := r.ResolvePlayableID(context.Background(), "Ditto", "NewJeans")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestResolveMetadataCachesResult(t *testing.T) {
	catalog := &fakeCatalog{info: &model.TrackInfo{
		Title:      "Ditto",
		Artist:     "NewJeans",
		Album:      "OMG",
		AlbumImage: "http://cover",
		DurationMs: 185000,
	}}
	r := New(&fakeVideos{}, catalog, store.NewMemory())

	info, err := r.ResolveMetadata(context.Background(), "Ditto", "NewJeans")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "http://cover", info.AlbumImage)

	info, err = r.ResolveMetadata(context.Background(), "ditto", "NEWJEANS")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "OMG", info.Album)
	assert.Equal(t, 1, catalog.calls)
}

func TestResolveMetadataAbsentCatalogMatch(t *testing.T) {
	r := New(&fakeVideos{}, &fakeCatalog{}, store.NewMemory())

	info, err := r.ResolveMetadata(context.Background(), "Unknown", "Nobody")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestResolveMetadataCorruptCacheEntryReResolves(t *testing.T) {
	st := store.NewMemory()
	catalog := &fakeCatalog{info: &model.TrackInfo{Title: "Ditto", Artist: "NewJeans"}}
	r := New(&fakeVideos{}, catalog, st)

	require.NoError(t, st.Save(context.Background(), infoCacheKey("ditto-newjeans"), []byte("{not json")))

	info, err := r.ResolveMetadata(context.Background(), "Ditto", "NewJeans")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Ditto", info.Title)
	assert.Equal(t, 1, catalog.calls)
}
