// Package extract orchestrates the per-platform extraction pipelines:
// subtitle fast path first, then locate → fetch audio → transcribe,
// with metadata-only partial results preferred over hard failure.
package extract

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/models"
	"github.com/viettran1502/vidscribe/platform"
	"github.com/viettran1502/vidscribe/subtitle"
	"github.com/viettran1502/vidscribe/whisper"
	"github.com/viettran1502/vidscribe/ytdlp"
)

// Pipeline is one platform's extraction strategy. Extract never returns
// a Go error: failures are result values.
type Pipeline interface {
	Platform() platform.Platform
	Extract(ctx context.Context, url, language string) models.ExtractionResult
}

// CaptionSource fetches platform-provided captions without downloading
// media. Satisfied by *ytdlp.Runner.
type CaptionSource interface {
	FetchCaptions(ctx context.Context, url string, langs []string, dir string) (ytdlp.Captions, error)
}

// MetadataSource prints title/uploader/date without downloading.
type MetadataSource interface {
	Metadata(ctx context.Context, url string) (ytdlp.Meta, error)
}

// AudioFetcher obtains a mono 16kHz audio file for a media URL.
type AudioFetcher interface {
	Fetch(ctx context.Context, mediaURL, dir string) (string, error)
}

// ModelProvider hands out the shared speech-to-text model.
type ModelProvider interface {
	Require(ctx context.Context, name string) (whisper.Model, error)
}

// Deps are the collaborators shared by every pipeline.
type Deps struct {
	Captions  CaptionSource
	Meta      MetadataSource
	Audio     AudioFetcher
	Models    ModelProvider
	ModelName string
	TempRoot  string
}

// scratchDir creates an isolated temp directory for one pipeline
// invocation. The cleanup func removes it on every exit path so temp
// storage never accumulates across attempts.
func (d Deps) scratchDir() (string, func(), error) {
	dir, err := os.MkdirTemp(d.TempRoot, "extract_")
	if err != nil {
		return "", nil, errors.Wrap(err, "creating scratch dir")
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

func (d Deps) transcribe(ctx context.Context, audioPath, language string) (string, error) {
	model, err := d.Models.Require(ctx, d.ModelName)
	if err != nil {
		return "", errors.Wrap(err, "model unavailable")
	}
	return model.Transcribe(ctx, audioPath, language)
}

// transcribeCandidates walks located candidates in order and returns
// the first transcript clearing the minimal-length gate. Each
// candidate's audio lives in its own subdirectory and is discarded
// before the next candidate is tried; a candidate is never retried.
func (d Deps) transcribeCandidates(ctx context.Context, dir string, cands []models.VideoCandidate, language string) (string, bool) {
	for i, cand := range cands {
		logger := logrus.WithFields(logrus.Fields{
			"candidate": i + 1,
			"of":        len(cands),
		})

		candDir, err := os.MkdirTemp(dir, "cand")
		if err != nil {
			logger.WithError(err).Error("Failed to create candidate dir")
			return "", false
		}

		audio, err := d.Audio.Fetch(ctx, cand.MediaURL, candDir)
		if err != nil {
			logger.WithError(err).Info("No audio obtained for candidate")
			os.RemoveAll(candDir)
			continue
		}

		text, err := d.transcribe(ctx, audio, language)
		os.RemoveAll(candDir)
		if err != nil {
			logger.WithError(err).Info("Candidate transcription failed")
			continue
		}
		if !subtitle.LongEnough(text) {
			logger.Info("Candidate transcript too short")
			continue
		}
		return text, true
	}
	return "", false
}

func pickLanguage(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}
