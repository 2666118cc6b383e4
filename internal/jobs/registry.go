package jobs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the in-memory job store. It lives for the whole process;
// there is no durable backing. One mutex guards the map: the registry is
// bounded by maxJobs and every operation is cheap, so coarse locking is
// enough.
type Registry struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	maxJobs int
	ttl     time.Duration
	now     func() time.Time
}

// NewRegistry creates a registry that tracks at most maxJobs records,
// each kept for ttl (refreshed once more on reaching a terminal state).
func NewRegistry(maxJobs int, ttl time.Duration) *Registry {
	return &Registry{
		jobs:    make(map[string]*Job),
		maxJobs: maxJobs,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create allocates a new queued job. Expired records are pruned first; if
// the registry is still full, ErrRegistryFull is returned and nothing is
// allocated.
func (r *Registry) Create(kind string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(r.now())

	if len(r.jobs) >= r.maxJobs {
		return Job{}, ErrRegistryFull
	}

	now := r.now()
	job := &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    StatusQueued,
		Message:   "queued",
		CreatedAt: now,
		UpdatedAt: now,
		KeepUntil: now.Add(r.ttl),
	}
	r.jobs[job.ID] = job
	return *job, nil
}

// Update mutates the named job in place. resultPath is stored only when
// non-empty. Entering a terminal state resets KeepUntil to now+TTL so the
// result stays retrievable for one more grace window.
func (r *Registry) Update(id, status, message, resultPath string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}

	now := r.now()
	if !now.After(job.UpdatedAt) {
		// Coarse clocks can repeat; UpdatedAt must still move forward.
		now = job.UpdatedAt.Add(time.Nanosecond)
	}

	job.Status = status
	job.Message = message
	job.UpdatedAt = now
	if resultPath != "" {
		job.ResultPath = resultPath
	}
	if Terminal(status) {
		job.KeepUntil = now.Add(r.ttl)
	}
	return *job, nil
}

// Get returns a copy of the named job.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *job, nil
}

// RunningCount returns how many jobs are currently running.
func (r *Registry) RunningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, job := range r.jobs {
		if job.Status == StatusRunning {
			count++
		}
	}
	return count
}

// Admit checks the concurrent pipeline budget before a new submission.
// It returns ErrBusy when maxConcurrent pipelines are already running.
// This is independent of the total-capacity check inside Create.
func (r *Registry) Admit(maxConcurrent int) error {
	if r.RunningCount() >= maxConcurrent {
		return ErrBusy
	}
	return nil
}

// PruneExpired removes every record whose KeepUntil has passed and returns
// the removed ids so the caller can reconcile on-disk state.
func (r *Registry) PruneExpired() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked(r.now())
}

func (r *Registry) pruneLocked(now time.Time) []string {
	var removed []string
	for id, job := range r.jobs {
		if now.After(job.KeepUntil) {
			delete(r.jobs, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Summary is an observability snapshot of the registry.
type Summary struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
	Jobs   []Response     `json:"jobs"`
}

// Summarize returns per-status counts plus the tracked jobs ordered most
// recently updated first.
func (r *Registry) Summarize() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Total:  len(r.jobs),
		Counts: make(map[string]int),
		Jobs:   make([]Response, 0, len(r.jobs)),
	}

	sorted := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		s.Counts[job.Status]++
		sorted = append(sorted, job)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	for _, job := range sorted {
		s.Jobs = append(s.Jobs, job.ToResponse())
	}
	return s
}
