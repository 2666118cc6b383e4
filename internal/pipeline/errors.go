package pipeline

import "fmt"

// Pipeline stage names, used in job failure messages.
const (
	StageExtract     = "extract"
	StageEnhance     = "enhance"
	StageInterpolate = "interpolate"
	StageAssemble    = "assemble"
)

// StageError records which pipeline stage failed together with the
// underlying tool's diagnostic output. A stage failure is terminal for the
// job; stages are never retried.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
