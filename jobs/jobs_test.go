package jobs

import (
	"testing"

	"github.com/viettran1502/vidscribe/models"
)

func TestCreate(t *testing.T) {
	s := NewStore()

	id := s.Create()
	if len(id) != 12 {
		t.Errorf("id length = %d, want 12", len(id))
	}

	job, ok := s.Get(id)
	if !ok {
		t.Fatal("job not found after Create")
	}
	if job.Status != models.StatusProcessing {
		t.Errorf("status = %q, want processing", job.Status)
	}
	if job.Result != nil {
		t.Error("new job should have no result")
	}
	if s.Active() != 1 {
		t.Errorf("Active = %d, want 1", s.Active())
	}
}

func TestCreateUniqueIDs(t *testing.T) {
	s := NewStore()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := s.Create()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestComplete(t *testing.T) {
	s := NewStore()
	id := s.Create()

	s.Complete(id, models.ExtractionResult{Success: true, Transcript: "done"})

	job, ok := s.Get(id)
	if !ok {
		t.Fatal("job not found")
	}
	if job.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", job.Status)
	}
	if job.Result == nil || job.Result.Transcript != "done" {
		t.Errorf("result = %+v", job.Result)
	}
	if s.Active() != 0 {
		t.Errorf("Active = %d, want 0", s.Active())
	}
}

func TestCompleteOnlyOnce(t *testing.T) {
	s := NewStore()
	id := s.Create()

	s.Complete(id, models.ExtractionResult{Success: true, Transcript: "first"})
	s.Complete(id, models.ExtractionResult{Success: true, Transcript: "second"})

	job, _ := s.Get(id)
	if job.Result.Transcript != "first" {
		t.Errorf("transcript = %q, want first (second completion must be a no-op)", job.Result.Transcript)
	}
}

func TestCompleteUnknownIsNoop(t *testing.T) {
	s := NewStore()
	s.Complete("missing", models.ExtractionResult{Success: true})

	if _, ok := s.Get("missing"); ok {
		t.Error("Complete must not create jobs")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore()
	id := s.Create()
	s.Complete(id, models.ExtractionResult{Success: true, Transcript: "original"})

	job, _ := s.Get(id)
	job.Result.Transcript = "mutated"

	again, _ := s.Get(id)
	if again.Result.Transcript != "original" {
		t.Error("Get must return a copy, not the stored pointer")
	}
}
