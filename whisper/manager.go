// Package whisper owns the lifecycle of the shared speech-to-text
// model. Loading is seconds-to-minutes and memory-heavy, so every
// extraction pipeline shares one instance through a Manager rather
// than loading its own.
package whisper

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Model is a ready speech-to-text model. Transcribe is slow and
// CPU/GPU-bound; callers must not invoke it concurrently. The
// coordinator's global lock guarantees that.
type Model interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// LoadFunc loads a model by name. Injectable so tests can substitute
// doubles for the real (expensive) loader.
type LoadFunc func(ctx context.Context, name string) (Model, error)

type loadJob struct {
	name  string
	done  chan struct{}
	model Model
	err   error
}

// Manager keeps at most one model resident, keyed by name. Preloading a
// different name while a load is in flight retargets the manager; the
// stale load still completes but its result is discarded.
type Manager struct {
	mu      sync.Mutex
	load    LoadFunc
	slot    chan struct{} // only one load runs at a time
	name    string        // tracked target
	model   Model         // ready model for name, nil while loading
	pending *loadJob      // in-flight load for name, nil otherwise
}

func NewManager(load LoadFunc) *Manager {
	return &Manager{
		load: load,
		slot: make(chan struct{}, 1),
	}
}

// Preload starts loading name in the background. Fire-and-forget: if
// name is already resident or loading, this is a no-op.
func (m *Manager) Preload(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.name == name && (m.model != nil || m.pending != nil) {
		return
	}
	m.startLoadLocked(name)
}

// Require returns the ready model for name, blocking the caller (not
// the process) until loading completes. If no load for name is in
// progress one is started. Load failure is returned to the caller and
// the manager resets so a later Require can retry.
func (m *Manager) Require(ctx context.Context, name string) (Model, error) {
	m.mu.Lock()
	if m.model != nil && m.name == name {
		model := m.model
		m.mu.Unlock()
		return model, nil
	}

	var job *loadJob
	if m.pending != nil && m.name == name {
		job = m.pending
	} else {
		job = m.startLoadLocked(name)
	}
	m.mu.Unlock()

	select {
	case <-job.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if job.err != nil {
		return nil, job.err
	}
	return job.model, nil
}

func (m *Manager) startLoadLocked(name string) *loadJob {
	job := &loadJob{name: name, done: make(chan struct{})}
	m.name = name
	m.model = nil
	m.pending = job
	go m.run(job)
	return job
}

func (m *Manager) run(job *loadJob) {
	m.slot <- struct{}{}
	defer func() { <-m.slot }()

	logrus.WithField("model", job.name).Info("Loading speech-to-text model")
	model, err := m.load(context.Background(), job.name)
	job.model, job.err = model, err
	close(job.done)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending != job || m.name != job.name {
		// A later Preload retargeted the manager while this load ran;
		// only the most recently requested model stays resident.
		logrus.WithField("model", job.name).Info("Discarding stale model load")
		return
	}
	m.pending = nil
	if err != nil {
		// Leave model nil so the next Require retries the load.
		logrus.WithError(err).WithField("model", job.name).Error("Model load failed")
		return
	}
	m.model = model
	logrus.WithField("model", job.name).Info("Model loaded")
}
