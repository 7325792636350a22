package transcription

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/viettran1502/vidscribe/extract"
	"github.com/viettran1502/vidscribe/models"
	"github.com/viettran1502/vidscribe/platform"
)

// stubPipeline counts invocations and watches for overlapping calls so
// tests can verify both coalescing and the global lock.
type stubPipeline struct {
	plat    platform.Platform
	result  models.ExtractionResult
	delay   time.Duration
	calls   atomic.Int64
	running atomic.Int64
	overlap atomic.Bool
}

func (p *stubPipeline) Platform() platform.Platform { return p.plat }

func (p *stubPipeline) Extract(ctx context.Context, url, language string) models.ExtractionResult {
	p.calls.Add(1)
	if p.running.Add(1) > 1 {
		p.overlap.Store(true)
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.running.Add(-1)
	return p.result
}

func newTestCoordinator(pipelines map[platform.Platform]extract.Pipeline) *Coordinator {
	return NewCoordinator(Config{ModelName: "small", CacheTTL: time.Hour}, pipelines, nil)
}

func successResult(text string) models.ExtractionResult {
	return models.ExtractionResult{Success: true, Transcript: text, Source: "yt-dlp_subs_en"}
}

func TestSyncCachesSuccess(t *testing.T) {
	pipe := &stubPipeline{plat: platform.YouTube, result: successResult("hello")}
	c := newTestCoordinator(map[platform.Platform]extract.Pipeline{platform.YouTube: pipe})

	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	first := c.TranscribeSync(context.Background(), url, "")
	require.True(t, first.Success)
	require.False(t, first.Cached)
	require.Equal(t, "youtube", first.Platform)

	second := c.TranscribeSync(context.Background(), url, "")
	require.True(t, second.Success)
	require.True(t, second.Cached)
	require.Equal(t, "hello", second.Transcript)
	require.Equal(t, int64(1), pipe.calls.Load())
}

func TestSyncDoesNotCacheFailures(t *testing.T) {
	pipe := &stubPipeline{plat: platform.YouTube, result: models.Failure("Could not extract subtitles or transcribe audio")}
	c := newTestCoordinator(map[platform.Platform]extract.Pipeline{platform.YouTube: pipe})

	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	first := c.TranscribeSync(context.Background(), url, "")
	require.False(t, first.Success)

	second := c.TranscribeSync(context.Background(), url, "")
	require.False(t, second.Cached)
	require.Equal(t, int64(2), pipe.calls.Load())
}

func TestSyncUnsupportedPlatform(t *testing.T) {
	pipe := &stubPipeline{plat: platform.YouTube, result: successResult("x")}
	c := newTestCoordinator(map[platform.Platform]extract.Pipeline{platform.YouTube: pipe})

	result := c.TranscribeSync(context.Background(), "https://vimeo.com/12345", "")
	require.False(t, result.Success)
	require.Equal(t, "Unsupported platform: unknown", result.Error)
	require.Equal(t, int64(0), pipe.calls.Load())
}

func TestSyncCoalescesConcurrentRequests(t *testing.T) {
	pipe := &stubPipeline{
		plat:   platform.YouTube,
		result: successResult("coalesced"),
		delay:  50 * time.Millisecond,
	}
	c := newTestCoordinator(map[platform.Platform]extract.Pipeline{platform.YouTube: pipe})

	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	var wg sync.WaitGroup
	results := make([]models.ExtractionResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.TranscribeSync(context.Background(), url, "")
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(1), pipe.calls.Load())
	for _, r := range results {
		require.True(t, r.Success)
		require.Equal(t, "coalesced", r.Transcript)
	}
}

func TestSyncSerializesDistinctURLs(t *testing.T) {
	pipe := &stubPipeline{
		plat:   platform.YouTube,
		result: successResult("serial"),
		delay:  20 * time.Millisecond,
	}
	c := newTestCoordinator(map[platform.Platform]extract.Pipeline{platform.YouTube: pipe})

	urls := []string{
		"https://www.youtube.com/watch?v=aaaaaaaaaaa",
		"https://www.youtube.com/watch?v=bbbbbbbbbbb",
		"https://www.youtube.com/watch?v=ccccccccccc",
	}

	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			c.TranscribeSync(context.Background(), url, "")
		}(url)
	}
	wg.Wait()

	require.False(t, pipe.overlap.Load(), "extractions must not run concurrently")
	require.Equal(t, int64(len(urls)), pipe.calls.Load())
}

func TestSyncLanguageHintWins(t *testing.T) {
	pipe := &stubPipeline{plat: platform.YouTube, result: models.ExtractionResult{
		Success:    true,
		Transcript: "bonjour",
		Language:   "en",
	}}
	c := newTestCoordinator(map[platform.Platform]extract.Pipeline{platform.YouTube: pipe})

	result := c.TranscribeSync(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "fr")
	require.Equal(t, "fr", result.Language)
	require.Greater(t, result.ProcessingSeconds, 0.0)
}

func TestSyncNormalizesBeforeCaching(t *testing.T) {
	pipe := &stubPipeline{plat: platform.YouTube, result: successResult("once")}
	c := newTestCoordinator(map[platform.Platform]extract.Pipeline{platform.YouTube: pipe})

	first := c.TranscribeSync(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "")
	require.False(t, first.Cached)

	// Same video, trailing slash and fragment.
	second := c.TranscribeSync(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ/#t=1", "")
	require.True(t, second.Cached)
	require.Equal(t, int64(1), pipe.calls.Load())
}

func TestAsyncJobLifecycle(t *testing.T) {
	pipe := &stubPipeline{plat: platform.YouTube, result: successResult("async done")}
	c := newTestCoordinator(map[platform.Platform]extract.Pipeline{platform.YouTube: pipe})

	id := c.TranscribeAsync("https://www.youtube.com/watch?v=dQw4w9WgXcQ", "")
	require.Len(t, id, 12)

	require.Eventually(t, func() bool {
		job, ok := c.Job(id)
		return ok && job.Status == models.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	job, ok := c.Job(id)
	require.True(t, ok)
	require.NotNil(t, job.Result)
	require.Equal(t, "async done", job.Result.Transcript)
}

func TestJobNotFound(t *testing.T) {
	c := newTestCoordinator(map[platform.Platform]extract.Pipeline{})

	_, ok := c.Job("missing")
	require.False(t, ok)
}

func TestHealth(t *testing.T) {
	pipe := &stubPipeline{plat: platform.YouTube, result: successResult("h")}
	c := newTestCoordinator(map[platform.Platform]extract.Pipeline{platform.YouTube: pipe})

	health := c.Health()
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, "small", health.Model)
	require.Equal(t, 0, health.CacheSize)

	c.TranscribeSync(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "")
	require.Equal(t, 1, c.Health().CacheSize)
}
