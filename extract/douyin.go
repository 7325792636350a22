package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/locate"
	"github.com/viettran1502/vidscribe/models"
	"github.com/viettran1502/vidscribe/platform"
	"github.com/viettran1502/vidscribe/subtitle"
	"golang.org/x/time/rate"
)

// PageTitler fetches a bare page title, the lowest-value fallback when
// every locate strategy has been exhausted.
type PageTitler interface {
	PageTitle(ctx context.Context, url string) (string, bool)
}

// DouyinPipeline: subtitle fast path, then the locator's strategy
// chain, then a title-only fallback.
type DouyinPipeline struct {
	deps    Deps
	locator locate.Locator
	titler  PageTitler
	limiter *rate.Limiter
}

func NewDouyinPipeline(deps Deps, locator locate.Locator, titler PageTitler) *DouyinPipeline {
	return &DouyinPipeline{
		deps:    deps,
		locator: locator,
		titler:  titler,
		limiter: rate.NewLimiter(rate.Every(4*time.Second), 1),
	}
}

func (p *DouyinPipeline) Platform() platform.Platform { return platform.Douyin }

func (p *DouyinPipeline) Extract(ctx context.Context, url, language string) models.ExtractionResult {
	if err := p.limiter.Wait(ctx); err != nil {
		return models.Failure(err.Error())
	}

	dir, cleanup, err := p.deps.scratchDir()
	if err != nil {
		return models.Failure(err.Error())
	}
	defer cleanup()

	caps, err := p.deps.Captions.FetchCaptions(ctx, url, []string{"zh", "en"}, dir)
	if err != nil {
		logrus.WithError(err).WithField("url", url).Debug("Douyin caption check failed")
	}
	if caps.Found && subtitle.LongEnough(caps.Text) {
		title := caps.Title
		if title == "" {
			title = "Douyin Video"
		}
		return models.ExtractionResult{
			Success:    true,
			Title:      title,
			Transcript: caps.Text,
			Source:     "douyin_yt-dlp_subs",
			Language:   "zh",
		}
	}

	located := p.locator.Locate(ctx, url)
	if !located.Success {
		if p.titler != nil {
			if title, ok := p.titler.PageTitle(ctx, url); ok {
				return models.ExtractionResult{
					Success:    true,
					Title:      title,
					Transcript: fmt.Sprintf("Douyin Video: %s (video extraction blocked - title only)", title),
					Source:     "douyin_fallback_title",
					Language:   "zh",
				}
			}
		}
		return models.Failure("All Douyin extraction strategies failed")
	}

	title := located.Title
	if title == "" {
		title = "Douyin Video"
	}

	if text, ok := p.deps.transcribeCandidates(ctx, dir, located.Candidates, pickLanguage(language, "zh")); ok {
		return models.ExtractionResult{
			Success:    true,
			Title:      title,
			Transcript: text,
			Source:     "douyin_whisper",
			Language:   "zh",
		}
	}

	transcript := fmt.Sprintf("Douyin Video: %s", title)
	if located.Author != "" {
		transcript += " by " + located.Author
	}
	transcript += fmt.Sprintf(" (found %d media URLs but transcription failed)", len(located.Candidates))

	return models.ExtractionResult{
		Success:    true,
		Title:      title,
		Transcript: transcript,
		Source:     "douyin_metadata",
		Language:   "zh",
	}
}
