package extract

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/models"
	"github.com/viettran1502/vidscribe/platform"
	"github.com/viettran1502/vidscribe/subtitle"
	"golang.org/x/time/rate"
)

// YouTubePipeline: subtitle fast path, then audio+model directly from
// the page URL. YouTube needs no locator, yt-dlp resolves the page
// itself.
type YouTubePipeline struct {
	deps    Deps
	limiter *rate.Limiter
}

func NewYouTubePipeline(deps Deps) *YouTubePipeline {
	return &YouTubePipeline{
		deps:    deps,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (p *YouTubePipeline) Platform() platform.Platform { return platform.YouTube }

func (p *YouTubePipeline) Extract(ctx context.Context, url, language string) models.ExtractionResult {
	if err := p.limiter.Wait(ctx); err != nil {
		return models.Failure(err.Error())
	}

	videoID, ok := platform.YouTubeID(url)
	if !ok {
		return models.Failure("Invalid YouTube URL")
	}

	dir, cleanup, err := p.deps.scratchDir()
	if err != nil {
		return models.Failure(err.Error())
	}
	defer cleanup()

	caps, err := p.deps.Captions.FetchCaptions(ctx, url, []string{"vi", "en"}, dir)
	if err != nil {
		logrus.WithError(err).WithField("url", url).Debug("Subtitle check failed")
	}
	if caps.Found && subtitle.LongEnough(caps.Text) {
		title := caps.Title
		if title == "" {
			title = videoID
		}
		return models.ExtractionResult{
			Success:    true,
			Title:      title,
			Transcript: caps.Text,
			Source:     "yt-dlp_subs_" + caps.Language,
			Language:   caps.Language,
		}
	}

	logrus.WithField("url", url).Info("No subtitles found, trying audio transcription")

	audio, err := p.deps.Audio.Fetch(ctx, url, dir)
	if err == nil {
		text, terr := p.deps.transcribe(ctx, audio, pickLanguage(language, "vi"))
		os.Remove(audio)
		if terr == nil && subtitle.LongEnough(text) {
			return models.ExtractionResult{
				Success:    true,
				Title:      "YouTube Video (Audio Transcript)",
				Transcript: text,
				Source:     "whisper_audio",
				Language:   "auto",
			}
		}
		if terr != nil {
			logrus.WithError(terr).WithField("url", url).Error("Audio transcription failed")
		}
	}

	return models.Failure("Could not extract subtitles or transcribe audio")
}
