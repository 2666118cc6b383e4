// Package pipeline orchestrates the multi-stage video enhancement flow:
// frame extraction, per-frame upscaling, optional interpolation, and
// reassembly. Each job owns one staging directory under the temp root for
// its entire lifetime.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"lucidframe/internal/jobs"
)

// Transcoder is the external tool that decodes a video into numbered
// still frames and muxes a frame sequence back into a container.
type Transcoder interface {
	ExtractFrames(ctx context.Context, inputPath, framesDir string) error
	Assemble(ctx context.Context, framesDir, inputPath, outputPath string, framerate int) error
	Probe(ctx context.Context, inputPath string) (float64, error)
}

// Enhancer is the external inference tool mapping one image to an
// enhanced image at an integer scale factor, using the model family
// selected by mode.
type Enhancer interface {
	EnhanceFrame(ctx context.Context, inputPath, outputPath string, scale int, mode string) error
}

// Output frame rates. The interpolated path doubles the rate so playback
// speed is preserved after the frame count doubles.
const (
	baseFramerate   = 25
	interpFramerate = 50
)

// Options are the caller-supplied parameters for one video job.
type Options struct {
	Scale       int // 2 or 4
	Interpolate bool
}

// Upload is an incoming file to process.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// Processor runs video jobs against the registry and the external
// collaborators. One Processor is shared by all request handlers.
type Processor struct {
	registry      *jobs.Registry
	transcoder    Transcoder
	enhancer      Enhancer
	tempRoot      string
	maxConcurrent int
}

// NewProcessor creates a Processor.
func NewProcessor(registry *jobs.Registry, transcoder Transcoder, enhancer Enhancer, tempRoot string, maxConcurrent int) *Processor {
	return &Processor{
		registry:      registry,
		transcoder:    transcoder,
		enhancer:      enhancer,
		tempRoot:      tempRoot,
		maxConcurrent: maxConcurrent,
	}
}

// TempRoot returns the directory under which all staging directories live.
func (p *Processor) TempRoot() string {
	return p.tempRoot
}

// Submit runs the whole pipeline for one upload and returns the job in its
// terminal state. Admission and capacity failures are returned to the
// caller before anything touches the filesystem; every later failure is
// recorded on the job instead of being returned.
func (p *Processor) Submit(ctx context.Context, upload Upload, opts Options) (jobs.Job, error) {
	if opts.Scale != 2 && opts.Scale != 4 {
		return jobs.Job{}, fmt.Errorf("scale must be 2 or 4")
	}

	if err := p.registry.Admit(p.maxConcurrent); err != nil {
		return jobs.Job{}, err
	}

	job, err := p.registry.Create(jobs.KindVideo)
	if err != nil {
		return jobs.Job{}, err
	}

	p.run(ctx, job.ID, upload, opts)
	return p.registry.Get(job.ID)
}

// run executes the pipeline for an allocated job. Nothing escapes this
// boundary: stage failures and panics alike end up as a failed job with
// its staging directory removed.
func (p *Processor) run(ctx context.Context, jobID string, upload Upload, opts Options) {
	started := time.Now()
	jobDir := filepath.Join(p.tempRoot, jobID)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Video job %s panicked: %v", jobID, r)
			p.fail(jobID, jobDir, fmt.Sprintf("internal error: %v", r))
		}
	}()

	resultPath, err := p.process(ctx, jobID, jobDir, upload, opts)
	if err != nil {
		log.Printf("Video job %s failed: %v", jobID, err)
		p.fail(jobID, jobDir, err.Error())
		return
	}

	elapsed := time.Since(started)
	if _, err := p.registry.Update(jobID, jobs.StatusCompleted, fmt.Sprintf("done in %.1fs", elapsed.Seconds()), resultPath); err != nil {
		log.Printf("Error completing job %s: %v", jobID, err)
	}
	log.Printf("Video job %s completed in %.2fs", jobID, elapsed.Seconds())
}

func (p *Processor) process(ctx context.Context, jobID, jobDir string, upload Upload, opts Options) (string, error) {
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	ext := filepath.Ext(upload.Filename)
	if ext == "" {
		ext = ".mp4"
	}
	inputPath := filepath.Join(jobDir, "input"+ext)
	if err := saveUpload(upload.Reader, inputPath); err != nil {
		return "", err
	}

	message := "processing"
	if duration, err := p.transcoder.Probe(ctx, inputPath); err == nil {
		message = fmt.Sprintf("processing %.1fs of video", duration)
	}
	if _, err := p.registry.Update(jobID, jobs.StatusRunning, message, ""); err != nil {
		return "", err
	}

	framesDir := filepath.Join(jobDir, "frames")
	upscaledDir := filepath.Join(jobDir, "frames_up")
	interpDir := filepath.Join(jobDir, "frames_interp")
	outputPath := filepath.Join(jobDir, "output.mp4")

	if err := p.transcoder.ExtractFrames(ctx, inputPath, framesDir); err != nil {
		return "", &StageError{Stage: StageExtract, Err: err}
	}

	if err := p.enhanceFrames(ctx, framesDir, upscaledDir, opts.Scale); err != nil {
		return "", &StageError{Stage: StageEnhance, Err: err}
	}

	assembleDir := upscaledDir
	framerate := baseFramerate
	if opts.Interpolate {
		if err := interpolateFrames(upscaledDir, interpDir); err != nil {
			return "", &StageError{Stage: StageInterpolate, Err: err}
		}
		assembleDir = interpDir
		framerate = interpFramerate
	}

	if err := p.transcoder.Assemble(ctx, assembleDir, inputPath, outputPath, framerate); err != nil {
		return "", &StageError{Stage: StageAssemble, Err: err}
	}

	// Intermediate frames can dwarf the output; reclaim the space now.
	// Failures here are logged, never fatal.
	removeQuiet(jobID, framesDir)
	removeQuiet(jobID, upscaledDir)
	if opts.Interpolate {
		removeQuiet(jobID, interpDir)
	}

	return outputPath, nil
}

// enhanceFrames runs the external upscaler over every extracted frame in
// ascending numeric order. The first frame that cannot be processed fails
// the stage.
func (p *Processor) enhanceFrames(ctx context.Context, framesDir, outDir string, scale int) error {
	framePaths, err := listFrames(framesDir)
	if err != nil {
		return err
	}
	if len(framePaths) == 0 {
		return fmt.Errorf("no frames extracted from input")
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create upscaled frames directory: %w", err)
	}

	// Video frames always use the general-purpose photo models.
	for _, framePath := range framePaths {
		outPath := filepath.Join(outDir, filepath.Base(framePath))
		if err := p.enhancer.EnhanceFrame(ctx, framePath, outPath, scale, ModePhoto); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) fail(jobID, jobDir, message string) {
	if _, err := p.registry.Update(jobID, jobs.StatusFailed, message, ""); err != nil {
		log.Printf("Error failing job %s: %v", jobID, err)
	}
	// A failed job's staging directory is removed immediately; the
	// reclamation loop may race us here, so absence is fine.
	if err := os.RemoveAll(jobDir); err != nil {
		log.Printf("Failed to cleanup job dir %s: %v", jobDir, err)
	}
}

// listFrames returns the numbered frame files in dir in ascending order.
func listFrames(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "frame_*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	// Fixed-width ordinals sort correctly as strings.
	sort.Strings(paths)
	return paths, nil
}

func saveUpload(r io.Reader, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create input file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return nil
}

func removeQuiet(jobID, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Printf("Job %s: failed to remove %s: %v", jobID, dir, err)
	}
}
