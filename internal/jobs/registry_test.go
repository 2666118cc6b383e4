package jobs

import (
	"errors"
	"testing"
	"time"
)

func TestCreateAssignsUniqueIDs(t *testing.T) {
	r := NewRegistry(100, time.Hour)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		job, err := r.Create(KindVideo)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[job.ID] {
			t.Fatalf("duplicate job id: %s", job.ID)
		}
		seen[job.ID] = true

		if job.Status != StatusQueued {
			t.Errorf("new job status = %q, want %q", job.Status, StatusQueued)
		}
		if !job.KeepUntil.After(job.CreatedAt) {
			t.Errorf("KeepUntil %v not after CreatedAt %v", job.KeepUntil, job.CreatedAt)
		}
	}
}

func TestCreateAtCapacity(t *testing.T) {
	r := NewRegistry(2, time.Hour)

	first, err := r.Create(KindVideo)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := r.Create(KindVideo); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := r.Create(KindVideo); !errors.Is(err, ErrRegistryFull) {
		t.Fatalf("Create at capacity = %v, want ErrRegistryFull", err)
	}

	// Once one record expires, Create should prune it and succeed.
	r.now = func() time.Time { return time.Now().Add(30 * time.Minute) }
	if _, err := r.Update(first.ID, StatusFailed, "boom", ""); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := r.Create(KindVideo); err != nil {
		t.Fatalf("Create after expiry = %v, want success", err)
	}
}

func TestUpdateAdvancesUpdatedAt(t *testing.T) {
	r := NewRegistry(10, time.Hour)

	job, err := r.Create(KindVideo)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	prev := job.UpdatedAt
	for _, status := range []string{StatusRunning, StatusCompleted} {
		job, err = r.Update(job.ID, status, "", "")
		if err != nil {
			t.Fatalf("Update(%s) failed: %v", status, err)
		}
		if !job.UpdatedAt.After(prev) {
			t.Errorf("UpdatedAt %v did not advance past %v after %s", job.UpdatedAt, prev, status)
		}
		prev = job.UpdatedAt
	}
}

func TestUpdateStoresResultPath(t *testing.T) {
	r := NewRegistry(10, time.Hour)

	job, _ := r.Create(KindVideo)
	job, err := r.Update(job.ID, StatusCompleted, "done", "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if job.ResultPath != "/tmp/out.mp4" {
		t.Errorf("ResultPath = %q, want /tmp/out.mp4", job.ResultPath)
	}

	// An empty resultPath must not clear a stored one.
	job, _ = r.Update(job.ID, StatusCompleted, "still done", "")
	if job.ResultPath != "/tmp/out.mp4" {
		t.Errorf("ResultPath cleared by empty update: %q", job.ResultPath)
	}
}

func TestUpdateUnknownJob(t *testing.T) {
	r := NewRegistry(10, time.Hour)
	if _, err := r.Update("nope", StatusRunning, "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update unknown id = %v, want ErrNotFound", err)
	}
}

func TestTerminalStateRefreshesKeepUntil(t *testing.T) {
	r := NewRegistry(10, time.Hour)

	job, _ := r.Create(KindVideo)
	created := job.KeepUntil

	r.now = func() time.Time { return time.Now().Add(30 * time.Minute) }
	job, err := r.Update(job.ID, StatusCompleted, "done", "/tmp/out.mp4")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !job.KeepUntil.After(created) {
		t.Errorf("terminal KeepUntil %v not refreshed past %v", job.KeepUntil, created)
	}
}

func TestPruneExpired(t *testing.T) {
	r := NewRegistry(10, time.Hour)

	expired, _ := r.Create(KindVideo)
	kept, _ := r.Create(KindVideo)

	// Push only the first record past its KeepUntil.
	r.mu.Lock()
	r.jobs[expired.ID].KeepUntil = time.Now().Add(-time.Minute)
	r.mu.Unlock()

	removed := r.PruneExpired()
	if len(removed) != 1 || removed[0] != expired.ID {
		t.Fatalf("PruneExpired = %v, want [%s]", removed, expired.ID)
	}
	if _, err := r.Get(expired.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired job still present: %v", err)
	}
	if _, err := r.Get(kept.ID); err != nil {
		t.Errorf("live job was pruned: %v", err)
	}
}

func TestRunningCountAndAdmit(t *testing.T) {
	r := NewRegistry(10, time.Hour)

	if err := r.Admit(1); err != nil {
		t.Fatalf("Admit on empty registry = %v", err)
	}

	job, _ := r.Create(KindVideo)
	if got := r.RunningCount(); got != 0 {
		t.Errorf("RunningCount with queued job = %d, want 0", got)
	}

	r.Update(job.ID, StatusRunning, "processing", "")
	if got := r.RunningCount(); got != 1 {
		t.Errorf("RunningCount = %d, want 1", got)
	}
	if err := r.Admit(1); !errors.Is(err, ErrBusy) {
		t.Errorf("Admit at budget = %v, want ErrBusy", err)
	}
	if err := r.Admit(2); err != nil {
		t.Errorf("Admit under budget = %v, want nil", err)
	}

	r.Update(job.ID, StatusCompleted, "done", "/tmp/out.mp4")
	if got := r.RunningCount(); got != 0 {
		t.Errorf("RunningCount after completion = %d, want 0", got)
	}
}

func TestSummarize(t *testing.T) {
	r := NewRegistry(10, time.Hour)

	a, _ := r.Create(KindVideo)
	b, _ := r.Create(KindVideo)
	r.Update(a.ID, StatusRunning, "processing", "")
	r.Update(b.ID, StatusFailed, "boom", "")

	s := r.Summarize()
	if s.Total != 2 {
		t.Fatalf("Total = %d, want 2", s.Total)
	}
	if s.Counts[StatusRunning] != 1 || s.Counts[StatusFailed] != 1 {
		t.Errorf("Counts = %v", s.Counts)
	}
	// Most recently updated first.
	if len(s.Jobs) != 2 || s.Jobs[0].ID != b.ID {
		t.Errorf("Jobs not in recency order: %+v", s.Jobs)
	}
}

func TestToResponseTimestamps(t *testing.T) {
	r := NewRegistry(10, time.Hour)

	job, _ := r.Create(KindVideo)
	resp := job.ToResponse()

	for name, value := range map[string]string{
		"created_at": resp.CreatedAt,
		"updated_at": resp.UpdatedAt,
		"expires_at": resp.ExpiresAt,
	} {
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			t.Errorf("%s = %q is not RFC3339: %v", name, value, err)
		}
	}
}
