// Package media turns a located media URL into a mono 16kHz audio file
// the speech model can consume.
package media

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/ytdlp"
)

type Config struct {
	FFmpegBin       string
	DownloadTimeout time.Duration
}

// Fetcher downloads media and extracts audio. The primary path is
// yt-dlp with the pinned audio profile; when that fails the candidate
// URL is streamed over plain HTTP into a temp file and ffmpeg extracts
// the same profile. Either path failing means "no audio obtained" and
// callers move on to the next candidate.
type Fetcher struct {
	runner *ytdlp.Runner
	client *http.Client
	config Config
}

func NewFetcher(runner *ytdlp.Runner, client *http.Client, cfg Config) *Fetcher {
	if cfg.FFmpegBin == "" {
		cfg.FFmpegBin = "ffmpeg"
	}
	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = 2 * time.Minute
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.DownloadTimeout}
	}
	return &Fetcher{runner: runner, client: client, config: cfg}
}

// Fetch returns the path to a mono 16kHz audio file for mediaURL,
// written under dir.
func (f *Fetcher) Fetch(ctx context.Context, mediaURL, dir string) (string, error) {
	path, err := f.runner.FetchAudio(ctx, mediaURL, dir)
	if err == nil {
		return path, nil
	}
	logrus.WithError(err).WithField("url", mediaURL).Info("yt-dlp audio path failed, trying direct download")

	return f.directDownload(ctx, mediaURL, dir)
}

func (f *Fetcher) directDownload(ctx context.Context, mediaURL, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.DownloadTimeout)
	defer cancel()

	videoPath := filepath.Join(dir, "direct.mp4")
	if err := f.streamToFile(ctx, mediaURL, videoPath); err != nil {
		return "", err
	}
	defer os.Remove(videoPath)

	audioPath := filepath.Join(dir, "direct.wav")
	cmd := exec.CommandContext(ctx, f.config.FFmpegBin,
		"-i", videoPath,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", "-y",
		audioPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", errors.Wrapf(err, "ffmpeg failed: %s", string(out))
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", errors.New("ffmpeg produced no output file")
	}
	return audioPath, nil
}

func (f *Fetcher) streamToFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "building download request")
	}
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "downloading media")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return errors.Errorf("download returned status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, "creating media file")
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return errors.Wrap(err, "writing media file")
	}
	return nil
}
