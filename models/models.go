package models

import "time"

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// ExtractionRequest is the client-facing input: a video URL plus an
// optional language hint passed through to speech recognition.
type ExtractionRequest struct {
	URL      string `json:"url"`
	Language string `json:"language,omitempty"`
}

// ExtractionResult is the outcome of one extraction attempt. It is
// immutable once produced; failures are carried as values (Success=false
// plus Error), never as Go errors, so callers always get a result.
type ExtractionResult struct {
	Success           bool    `json:"success"`
	Title             string  `json:"title,omitempty"`
	Transcript        string  `json:"transcript,omitempty"`
	Source            string  `json:"source,omitempty"`
	Language          string  `json:"language,omitempty"`
	Platform          string  `json:"platform,omitempty"`
	Error             string  `json:"error,omitempty"`
	Cached            bool    `json:"cached"`
	ProcessingSeconds float64 `json:"processing_time_seconds"`
}

// Failure builds a failed result with the given error message.
func Failure(err string) ExtractionResult {
	return ExtractionResult{Success: false, Error: err}
}

// Job tracks one asynchronous extraction. Created in processing state,
// it transitions exactly once to completed with a result attached.
type Job struct {
	ID        string            `json:"job_id"`
	Status    Status            `json:"status"`
	Result    *ExtractionResult `json:"result,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// VideoCandidate is a located media URL plus whatever metadata the
// locator strategy could scrape alongside it. Candidates are ephemeral:
// produced by a locator, consumed immediately by the audio fetcher.
type VideoCandidate struct {
	MediaURL string
	Title    string
	Author   string
}
