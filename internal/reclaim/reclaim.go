// Package reclaim runs the background loop that evicts expired job
// records and deletes staging directories nothing tracks anymore.
package reclaim

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lucidframe/internal/jobs"
)

// Reclaimer periodically reconciles the job registry with the temp root.
type Reclaimer struct {
	registry *jobs.Registry
	tempRoot string
	interval time.Duration
	maxAge   time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewReclaimer creates a reclaimer that wakes every interval and treats
// untracked directories older than maxAge as orphans.
func NewReclaimer(registry *jobs.Registry, tempRoot string, interval, maxAge time.Duration) *Reclaimer {
	return &Reclaimer{
		registry: registry,
		tempRoot: tempRoot,
		interval: interval,
		maxAge:   maxAge,
		stop:     make(chan struct{}),
	}
}

// Start begins the reclamation loop.
func (r *Reclaimer) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.run(ctx)
	log.Println("Reclaimer started")
}

// Stop gracefully stops the loop.
func (r *Reclaimer) Stop() {
	close(r.stop)
	r.wg.Wait()
	log.Println("Reclaimer stopped")
}

func (r *Reclaimer) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			r.runCycle()
		}
	}
}

// runCycle performs one reclamation pass. Errors are logged and the next
// tick proceeds regardless; a bad cycle never terminates the loop.
func (r *Reclaimer) runCycle() {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Reclaim cycle panicked: %v", rec)
		}
	}()

	// Expired records first; their directories belong to us now. The
	// orchestrator's failure path may already have deleted some of these,
	// which RemoveAll treats as success.
	for _, id := range r.registry.PruneExpired() {
		dir := filepath.Join(r.tempRoot, id)
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("Failed to remove expired job dir %s: %v", dir, err)
		} else {
			log.Printf("Removed expired job %s", id)
		}
	}

	r.sweepOrphans()
}

// sweepOrphans deletes directories under the temp root that the registry
// no longer tracks and whose last modification is older than maxAge.
// These are leftovers from crashes or missed cleanups.
func (r *Reclaimer) sweepOrphans() {
	entries, err := os.ReadDir(r.tempRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to scan temp root %s: %v", r.tempRoot, err)
		}
		return
	}

	cutoff := time.Now().Add(-r.maxAge)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Printf("Failed to stat %s: %v", entry.Name(), err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if _, err := r.registry.Get(entry.Name()); !errors.Is(err, jobs.ErrNotFound) {
			continue
		}

		dir := filepath.Join(r.tempRoot, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("Failed to remove orphaned dir %s: %v", dir, err)
		} else {
			log.Printf("Removed orphaned dir %s (age %s)", dir, time.Since(info.ModTime()).Round(time.Second))
		}
	}
}
