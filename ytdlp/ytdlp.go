// Package ytdlp wraps the external yt-dlp binary: caption fetching,
// audio extraction and metadata printing. Every invocation is bounded
// by its own timeout so a hung download cannot wedge the caller.
package ytdlp

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/subtitle"
)

type Config struct {
	Bin             string        // yt-dlp binary path
	CaptionTimeout  time.Duration // subtitle-check calls
	DownloadTimeout time.Duration // audio extraction calls
}

type Runner struct {
	config Config
}

func NewRunner(cfg Config) *Runner {
	if cfg.Bin == "" {
		cfg.Bin = "yt-dlp"
	}
	if cfg.CaptionTimeout == 0 {
		cfg.CaptionTimeout = 30 * time.Second
	}
	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = 2 * time.Minute
	}
	return &Runner{config: cfg}
}

// Captions is the outcome of a subtitle check. Found is false when
// yt-dlp wrote no usable subtitle file.
type Captions struct {
	Found    bool
	Text     string // cleaned plain text
	Title    string
	Language string
}

// Meta is the lightweight metadata print (no download).
type Meta struct {
	Title      string
	Uploader   string
	UploadDate string
}

var subtitleExts = []string{".vtt", ".srt", ".ass"}

// FetchCaptions asks yt-dlp for platform-provided subtitles without
// downloading media. The title is captured in the same call via
// --print-to-file, so the fast path costs a single invocation.
func (r *Runner) FetchCaptions(ctx context.Context, url string, langs []string, dir string) (Captions, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.CaptionTimeout)
	defer cancel()

	titleFile := filepath.Join(dir, ".title.txt")
	args := captionArgs(url, langs, dir, titleFile)

	// yt-dlp exits non-zero for many benign reasons (geo blocks on some
	// formats, no subs); what matters is whether a subtitle file landed.
	_, runErr := r.run(ctx, args)
	if runErr != nil {
		logrus.WithError(runErr).WithField("url", url).Debug("Caption fetch exited non-zero")
	}

	title := readTitleFile(titleFile)

	for _, name := range sortedDir(dir) {
		if !hasExt(name, subtitleExts) {
			continue
		}
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		os.Remove(path)
		if err != nil {
			continue
		}
		text := subtitle.Parse(string(raw))
		if !subtitle.LongEnough(text) {
			continue
		}
		return Captions{
			Found:    true,
			Text:     text,
			Title:    title,
			Language: languageFromFilename(name, langs),
		}, nil
	}

	if runErr != nil {
		return Captions{Title: title}, errors.Wrap(runErr, "caption fetch failed")
	}
	return Captions{Title: title}, nil
}

// FetchAudio downloads url and extracts mono 16kHz WAV into dir. The
// sample rate matches the speech model's training assumption; getting
// it wrong degrades accuracy silently, so the profile is pinned here.
func (r *Runner) FetchAudio(ctx context.Context, url, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.DownloadTimeout)
	defer cancel()

	outBase := filepath.Join(dir, "audio")
	args := audioArgs(url, outBase)

	if _, err := r.run(ctx, args); err != nil {
		return "", errors.Wrap(err, "audio extraction failed")
	}

	// yt-dlp may pick a different container than requested.
	for _, ext := range []string{".wav", ".mp3", ".m4a", ".webm"} {
		candidate := outBase + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	for _, name := range sortedDir(dir) {
		if strings.HasPrefix(name, "audio") && hasExt(name, []string{".wav", ".mp3", ".m4a", ".webm"}) {
			return filepath.Join(dir, name), nil
		}
	}
	return "", errors.New("audio extraction completed but no file found")
}

// Metadata prints title/uploader/upload date without downloading.
func (r *Runner) Metadata(ctx context.Context, url string) (Meta, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.CaptionTimeout)
	defer cancel()

	out, err := r.run(ctx, []string{"--print", "title,uploader,upload_date", url})
	if err != nil {
		return Meta{}, errors.Wrap(err, "metadata fetch failed")
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	meta := Meta{}
	if len(lines) > 0 {
		meta.Title = strings.TrimSpace(lines[0])
	}
	if len(lines) > 1 {
		meta.Uploader = strings.TrimSpace(lines[1])
	}
	if len(lines) > 2 {
		meta.UploadDate = strings.TrimSpace(lines[2])
	}
	return meta, nil
}

func (r *Runner) run(ctx context.Context, args []string) ([]byte, error) {
	logrus.WithField("args", strings.Join(args, " ")).Debug("Running yt-dlp")

	cmd := exec.CommandContext(ctx, r.config.Bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), errors.Wrapf(err, "yt-dlp: %s", strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func captionArgs(url string, langs []string, dir, titleFile string) []string {
	return []string{
		"--write-subs", "--write-auto-subs",
		"--sub-lang", strings.Join(langs, ","),
		"--skip-download",
		"--print-to-file", "title", titleFile,
		"--paths", dir,
		"-o", "%(id)s.%(ext)s",
		url,
	}
}

func audioArgs(url, outBase string) []string {
	return []string{
		"--extract-audio",
		"--audio-format", "wav",
		"--postprocessor-args", "ffmpeg:-ar 16000 -ac 1",
		"--no-check-certificate",
		"--output", outBase + ".%(ext)s",
		url,
	}
}

func readTitleFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	os.Remove(path)
	return strings.TrimSpace(string(data))
}

func languageFromFilename(name string, langs []string) string {
	for _, l := range langs {
		if strings.Contains(name, "."+l+".") {
			return l
		}
	}
	return "auto"
}

func sortedDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func hasExt(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
