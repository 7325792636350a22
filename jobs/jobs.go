// Package jobs tracks asynchronous transcription jobs. Each job has one
// writer (the worker running it) and many readers (status pollers).
package jobs

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viettran1502/vidscribe/models"
)

type Store struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*models.Job)}
}

// Create registers a new job in processing state and returns its ID.
// IDs are opaque and unguessable.
func (s *Store) Create() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = &models.Job{
		ID:        id,
		Status:    models.StatusProcessing,
		CreatedAt: time.Now(),
	}
	return id
}

// Complete transitions the job to completed with its result attached.
// A job transitions at most once; completing an already-completed or
// unknown job is a no-op.
func (s *Store) Complete(id string, result models.ExtractionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status == models.StatusCompleted {
		return
	}
	job.Status = models.StatusCompleted
	job.Result = &result
}

// Get returns a copy of the job so callers never share the store's
// internal pointer with the completing worker.
func (s *Store) Get(id string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	cp := *job
	if job.Result != nil {
		r := *job.Result
		cp.Result = &r
	}
	return cp, true
}

// Active counts jobs still in processing state.
func (s *Store) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, job := range s.jobs {
		if job.Status == models.StatusProcessing {
			n++
		}
	}
	return n
}
