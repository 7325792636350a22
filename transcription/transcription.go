// Package transcription coordinates the per-platform extraction
// pipelines behind the caching and concurrency rules: an in-memory TTL
// cache backed by SQLite, and a single global transcription slot so
// only one extraction runs at a time.
package transcription

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viettran1502/vidscribe/cache"
	"github.com/viettran1502/vidscribe/db"
	"github.com/viettran1502/vidscribe/extract"
	"github.com/viettran1502/vidscribe/jobs"
	"github.com/viettran1502/vidscribe/models"
	"github.com/viettran1502/vidscribe/platform"
	"golang.org/x/sync/semaphore"
)

type Config struct {
	ModelName string
	CacheTTL  time.Duration
}

type Coordinator struct {
	cfg       Config
	pipelines map[platform.Platform]extract.Pipeline
	cache     *cache.Cache
	store     *db.Store
	jobs      *jobs.Store
	expander  *platform.Expander
	sem       *semaphore.Weighted
	started   time.Time
}

// NewCoordinator wires the pipelines behind the shared cache, job map,
// and global lock. store may be nil when durable storage is disabled.
func NewCoordinator(cfg Config, pipelines map[platform.Platform]extract.Pipeline, store *db.Store) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		pipelines: pipelines,
		cache:     cache.New(cfg.CacheTTL),
		store:     store,
		jobs:      jobs.NewStore(),
		expander:  platform.NewExpander(nil),
		sem:       semaphore.NewWeighted(1),
		started:   time.Now(),
	}
}

// TranscribeSync resolves a request end to end: normalize, check the
// caches, then run the platform pipeline while holding the global
// transcription slot. The cache is checked again after acquiring the
// slot so concurrent requests for the same URL coalesce onto one run.
func (c *Coordinator) TranscribeSync(ctx context.Context, rawURL, language string) models.ExtractionResult {
	start := time.Now()

	url := platform.Normalize(c.expander.Expand(ctx, rawURL))
	log := logrus.WithField("url", url)

	if result, ok := c.cache.Get(url); ok {
		log.Info("Cache hit")
		return c.finish(result, language, start, true)
	}

	plat := platform.Identify(url)
	pipeline, ok := c.pipelines[plat]
	if !ok {
		log.WithField("platform", plat).Warn("Unsupported platform")
		result := models.Failure("Unsupported platform: " + string(plat))
		result.Platform = string(plat)
		return c.finish(result, language, start, false)
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		log.WithError(err).Error("Cancelled while waiting for transcription slot")
		return c.finish(models.Failure("Request cancelled"), language, start, false)
	}
	defer c.sem.Release(1)

	// A request that was queued behind an identical one finds the
	// finished result here instead of repeating the work.
	if result, ok := c.cache.Get(url); ok {
		log.Info("Cache hit after waiting for transcription slot")
		return c.finish(result, language, start, true)
	}

	if c.store != nil {
		stored, ok, err := c.store.Get(ctx, url, c.cfg.CacheTTL)
		if err != nil {
			log.WithError(err).Warn("Result store read failed")
		} else if ok {
			log.Info("Result found in store")
			c.cache.Put(url, stored)
			return c.finish(stored, language, start, true)
		}
	}

	log.WithField("platform", plat).Info("Starting extraction")
	result := pipeline.Extract(ctx, url, language)
	result.Platform = string(plat)

	if result.Success {
		c.cache.Put(url, result)
		if c.store != nil {
			if err := c.store.Put(ctx, url, result); err != nil {
				log.WithError(err).Warn("Failed to persist result")
			}
		}
		log.WithField("source", result.Source).Info("Extraction completed")
	} else {
		log.WithField("error", result.Error).Error("Extraction failed")
	}

	return c.finish(result, language, start, false)
}

// TranscribeAsync registers a job and runs the extraction in the
// background. The job is marked completed whether extraction succeeded
// or failed; the result carries the outcome.
func (c *Coordinator) TranscribeAsync(rawURL, language string) string {
	id := c.jobs.Create()
	logrus.WithFields(logrus.Fields{"job_id": id, "url": rawURL}).Info("Job created")

	go func() {
		result := c.TranscribeSync(context.Background(), rawURL, language)
		c.jobs.Complete(id, result)
		logrus.WithField("job_id", id).Info("Job completed")
	}()

	return id
}

func (c *Coordinator) Job(id string) (models.Job, bool) {
	return c.jobs.Get(id)
}

type HealthStatus struct {
	Status        string `json:"status"`
	Model         string `json:"model"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	CacheSize     int    `json:"cache_size"`
	ActiveJobs    int    `json:"active_jobs"`
}

func (c *Coordinator) Health() HealthStatus {
	return HealthStatus{
		Status:        "healthy",
		Model:         c.cfg.ModelName,
		UptimeSeconds: int64(time.Since(c.started).Seconds()),
		CacheSize:     c.cache.Len(),
		ActiveJobs:    c.jobs.Active(),
	}
}

// finish stamps the response-only fields: elapsed time, cached flag,
// and the caller's language hint, which wins over whatever the
// pipeline detected.
func (c *Coordinator) finish(result models.ExtractionResult, language string, start time.Time, cached bool) models.ExtractionResult {
	result.Cached = cached
	result.ProcessingSeconds = time.Since(start).Seconds()
	if language != "" {
		result.Language = language
	}
	return result
}
