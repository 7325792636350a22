package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/viettran1502/vidscribe/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result := models.ExtractionResult{
		Success:    true,
		Title:      "Some Video",
		Transcript: "hello from the transcript",
		Source:     "yt-dlp_subs_en",
		Language:   "en",
		Platform:   "youtube",
	}
	require.NoError(t, store.Put(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", result))

	got, ok, err := store.Get(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, got.Success)
	require.Equal(t, result.Transcript, got.Transcript)
	require.Equal(t, result.Source, got.Source)
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Get(context.Background(), "https://example.com/nothing", time.Hour)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	result := models.ExtractionResult{Success: true, Transcript: "old text", Platform: "tiktok"}
	require.NoError(t, store.Put(ctx, "https://www.tiktok.com/@user/video/123", result))

	store.SetClock(func() time.Time { return now.Add(2 * time.Hour) })

	_, ok, err := store.Get(ctx, "https://www.tiktok.com/@user/video/123", time.Hour)
	require.NoError(t, err)
	require.False(t, ok)

	// The expired row is gone even when read again with a long TTL.
	_, ok, err = store.Get(ctx, "https://www.tiktok.com/@user/video/123", 24*time.Hour)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutRefusesFailures(t *testing.T) {
	store := newTestStore(t)

	err := store.Put(context.Background(), "https://example.com/bad", models.Failure("nope"))
	require.Error(t, err)

	_, ok, getErr := store.Get(context.Background(), "https://example.com/bad", time.Hour)
	require.NoError(t, getErr)
	require.False(t, ok)
}

func TestPutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := models.ExtractionResult{Success: true, Transcript: "first"}
	second := models.ExtractionResult{Success: true, Transcript: "second"}
	require.NoError(t, store.Put(ctx, "https://example.com/v", first))
	require.NoError(t, store.Put(ctx, "https://example.com/v", second))

	got, ok, err := store.Get(ctx, "https://example.com/v", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", got.Transcript)
}
