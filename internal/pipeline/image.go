package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	_ "image/jpeg"
	_ "image/png"
)

// Enhancement modes. Photo is the general-purpose model; anime favors
// line art; clean trades detail recovery for fewer artifacts.
const (
	ModePhoto = "photo"
	ModeAnime = "anime"
	ModeClean = "clean"
)

// ImageOptions are the parameters for a single-image enhancement.
type ImageOptions struct {
	Mode  string // photo, anime, or clean
	Scale int    // 2 or 4
}

// ProcessImage upscales one image synchronously and returns the PNG bytes
// plus the elapsed processing time. No job record is allocated and the
// concurrency budget for video pipelines does not apply; the work directory
// is transient and removed before returning.
func (p *Processor) ProcessImage(ctx context.Context, upload Upload, opts ImageOptions) ([]byte, time.Duration, error) {
	if opts.Scale != 2 && opts.Scale != 4 {
		return nil, 0, fmt.Errorf("scale must be 2 or 4")
	}
	switch opts.Mode {
	case ModePhoto, ModeAnime, ModeClean:
	default:
		return nil, 0, fmt.Errorf("mode must be 'photo', 'anime', or 'clean'")
	}

	started := time.Now()

	if err := os.MkdirAll(p.tempRoot, 0755); err != nil {
		return nil, 0, fmt.Errorf("failed to create temp root: %w", err)
	}
	workDir, err := os.MkdirTemp(p.tempRoot, "image-")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	ext := filepath.Ext(upload.Filename)
	if ext == "" {
		ext = ".png"
	}
	inputPath := filepath.Join(workDir, "input"+ext)
	if err := saveUpload(upload.Reader, inputPath); err != nil {
		return nil, 0, err
	}

	// Reject undecodable uploads before handing them to the external tool.
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open upload: %w", err)
	}
	_, _, err = image.Decode(f)
	f.Close()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	outputPath := filepath.Join(workDir, "output.png")
	if err := p.enhancer.EnhanceFrame(ctx, inputPath, outputPath, opts.Scale, opts.Mode); err != nil {
		return nil, 0, err
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read enhanced image: %w", err)
	}

	return data, time.Since(started), nil
}
