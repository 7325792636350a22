package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/utils"
)

// Config for the script-backed model.
type Config struct {
	PythonPath  string        // python executable
	ScriptsPath string        // directory containing transcribe.py
	Timeout     time.Duration // per-invocation bound
}

// ScriptLoader returns a LoadFunc backed by the python whisper helper.
// Loading runs the helper once with --warmup, which downloads and loads
// the model weights so later transcriptions start instantly.
func ScriptLoader(cfg Config) LoadFunc {
	return func(ctx context.Context, name string) (Model, error) {
		ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		script := filepath.Join(cfg.ScriptsPath, "transcribe.py")
		cmd := exec.CommandContext(ctx, cfg.PythonPath, script, "--model", name, "--warmup")
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			return nil, errors.Wrapf(err, "model warmup failed (stderr: %s)", stderr.String())
		}
		return &scriptModel{cfg: cfg, name: name}, nil
	}
}

type scriptModel struct {
	cfg  Config
	name string
}

type scriptResult struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (m *scriptModel) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	script := filepath.Join(m.cfg.ScriptsPath, "transcribe.py")
	args := []string{script, "--audio", audioPath, "--model", m.name}
	if language != "" {
		args = append(args, "--language", language)
	}

	logrus.WithFields(logrus.Fields{
		"audio": audioPath,
		"model": m.name,
	}).Info("Transcribing audio")

	cmd := exec.CommandContext(ctx, m.cfg.PythonPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "transcription script failed (stderr: %s)", stderr.String())
	}

	var result scriptResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return "", errors.Wrap(err, "failed to parse transcription output")
	}
	if result.Error != "" {
		return "", errors.New(result.Error)
	}

	return utils.FormatText(result.Text), nil
}
