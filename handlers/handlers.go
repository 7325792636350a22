package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/config"
	apperrors "github.com/viettran1502/vidscribe/errors"
	"github.com/viettran1502/vidscribe/models"
	"github.com/viettran1502/vidscribe/transcription"
	"github.com/viettran1502/vidscribe/utils"
	"github.com/viettran1502/vidscribe/validation"
	"golang.org/x/time/rate"
)

// Service is what the HTTP layer needs from the transcription
// coordinator.
type Service interface {
	TranscribeSync(ctx context.Context, url, language string) models.ExtractionResult
	TranscribeAsync(url, language string) string
	Job(id string) (models.Job, bool)
	Health() transcription.HealthStatus
}

type Handler struct {
	service     Service
	rateLimiter *rate.Limiter
	timeout     time.Duration
}

func New(service Service, cfg *config.Config) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rate.NewLimiter(rate.Every(cfg.RateLimitInterval), cfg.RateLimit),
		timeout:     cfg.TranscribeTimeout,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /transcribe", h.Transcribe)
	mux.HandleFunc("POST /transcribe/async", h.TranscribeAsync)
	mux.HandleFunc("GET /jobs/{id}", h.Job)
}

type transcribeRequest struct {
	URL      string `json:"url"`
	Language string `json:"language"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Health())
}

func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result := h.service.TranscribeSync(ctx, req.URL, req.Language)
	if !result.Success {
		respondJSON(w, http.StatusBadGateway, result)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) TranscribeAsync(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	id := h.service.TranscribeAsync(req.URL, req.Language)
	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": id,
		"status": string(models.StatusProcessing),
	})
}

func (h *Handler) Job(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, ok := h.service.Job(id)
	if !ok {
		respondError(w, apperrors.NotFound("Job", nil, "Job not found"))
		return
	}

	// Result fields sit at the top level of the response, next to the
	// job id and status.
	resp := map[string]any{}
	if job.Result != nil {
		raw, err := json.Marshal(job.Result)
		if err == nil {
			if err := json.Unmarshal(raw, &resp); err != nil {
				logrus.WithError(err).Error("Failed to flatten job result")
			}
		}
	}
	resp["job_id"] = job.ID
	resp["status"] = job.Status

	respondJSON(w, http.StatusOK, resp)
}

// parseRequest decodes the JSON body and applies validation and rate
// limiting. It writes the error response itself and reports whether
// the caller should proceed.
func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request) (transcribeRequest, bool) {
	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		respondError(w, apperrors.InvalidInput("parseRequest", err, "Missing 'url' field"))
		return req, false
	}

	if err := validation.ValidateURL(req.URL); err != nil {
		respondError(w, apperrors.InvalidInput("parseRequest", err, err.Error()))
		return req, false
	}

	if !h.rateLimiter.Allow() {
		logrus.WithField("url", req.URL).Warn("Rate limit exceeded")
		respondError(w, &apperrors.AppError{
			Code:    http.StatusTooManyRequests,
			Message: "Rate limit exceeded",
			Op:      "parseRequest",
		})
		return req, false
	}

	return req, true
}

func respondError(w http.ResponseWriter, err *apperrors.AppError) {
	utils.HandleError(w, err.Message, err.Code)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}
