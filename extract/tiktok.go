package extract

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/models"
	"github.com/viettran1502/vidscribe/platform"
	"github.com/viettran1502/vidscribe/subtitle"
	"golang.org/x/time/rate"
)

// TikTokPipeline: auto-captions first, then audio+model, and finally a
// metadata-only result. TikTok metadata (title, creator, post date) is
// cheap to get and is appended to every transcript because short-form
// clips are often meaningless without it.
type TikTokPipeline struct {
	deps    Deps
	limiter *rate.Limiter
}

func NewTikTokPipeline(deps Deps) *TikTokPipeline {
	return &TikTokPipeline{
		deps:    deps,
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

func (p *TikTokPipeline) Platform() platform.Platform { return platform.TikTok }

func (p *TikTokPipeline) Extract(ctx context.Context, url, language string) models.ExtractionResult {
	if err := p.limiter.Wait(ctx); err != nil {
		return models.Failure(err.Error())
	}

	if _, ok := platform.TikTokID(url); !ok {
		return models.Failure("Could not find TikTok video ID")
	}

	meta, err := p.deps.Meta.Metadata(ctx, url)
	if err != nil {
		logrus.WithError(err).WithField("url", url).Error("TikTok metadata fetch failed")
		return models.Failure("TikTok extraction failed")
	}
	metadata := fmt.Sprintf("%s. Creator: @%s. Posted: %s", meta.Title, meta.Uploader, meta.UploadDate)

	dir, cleanup, err := p.deps.scratchDir()
	if err != nil {
		return models.Failure(err.Error())
	}
	defer cleanup()

	caps, err := p.deps.Captions.FetchCaptions(ctx, url, []string{"vi", "en"}, dir)
	if err != nil {
		logrus.WithError(err).WithField("url", url).Debug("TikTok caption check failed")
	}
	if caps.Found && subtitle.LongEnough(caps.Text) {
		return models.ExtractionResult{
			Success:    true,
			Title:      meta.Title,
			Transcript: withMetadata(caps.Text, metadata),
			Source:     "yt-dlp_auto_subs+metadata",
			Language:   "auto",
		}
	}

	logrus.WithField("url", url).Info("No auto-captions, extracting audio for transcription")

	audio, err := p.deps.Audio.Fetch(ctx, url, dir)
	if err == nil {
		text, terr := p.deps.transcribe(ctx, audio, pickLanguage(language, "vi"))
		os.Remove(audio)
		if terr == nil && subtitle.LongEnough(text) {
			return models.ExtractionResult{
				Success:    true,
				Title:      meta.Title,
				Transcript: withMetadata(text, metadata),
				Source:     "whisper_audio+metadata",
				Language:   "auto",
			}
		}
	}

	// Partial success beats failure: the metadata alone still tells the
	// caller what the clip is.
	return models.ExtractionResult{
		Success:    true,
		Title:      meta.Title,
		Transcript: metadata,
		Source:     "yt-dlp_metadata",
		Language:   "auto",
	}
}

func withMetadata(transcript, metadata string) string {
	return transcript + "\n\n--- Metadata ---\n" + metadata
}
