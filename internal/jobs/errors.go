package jobs

import "errors"

var (
	// ErrNotFound is returned when no job exists for an id.
	ErrNotFound = errors.New("job not found")

	// ErrRegistryFull is returned by Create when the registry is at
	// capacity even after pruning expired records. Retryable.
	ErrRegistryFull = errors.New("job registry is full")

	// ErrBusy is returned by Admit when the concurrent pipeline budget is
	// exhausted. Retryable.
	ErrBusy = errors.New("too many jobs running")
)
