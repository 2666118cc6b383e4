// Package ffmpeg wraps the external transcoder used to decode a video into
// numbered still frames and to mux an enhanced frame sequence back into a
// single output container.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// FramePattern is the printf pattern for numbered frame files. The same
// fixed-width zero-padded ordinal is used on extraction and assembly so the
// two ffmpeg invocations agree on the sequence.
const FramePattern = "frame_%06d.png"

// Command invokes ffmpeg/ffprobe binaries. Bare names resolve via PATH.
type Command struct {
	ffmpegPath  string
	ffprobePath string
}

// New creates a Command using the given binary locations.
func New(ffmpegPath, ffprobePath string) *Command {
	return &Command{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

func (c *Command) lookup() (string, error) {
	path, err := exec.LookPath(c.ffmpegPath)
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found: please install ffmpeg or set LUCIDFRAME_FFMPEG")
	}
	return path, nil
}

// ExtractFrames decodes the input video into numbered PNG frames under
// framesDir.
func (c *Command) ExtractFrames(ctx context.Context, inputPath, framesDir string) error {
	bin, err := c.lookup()
	if err != nil {
		return err
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return fmt.Errorf("failed to create frames directory: %w", err)
	}

	// -qscale:v 2 keeps near-lossless stills for the enhancement pass
	cmd := exec.CommandContext(ctx, bin,
		"-y",
		"-i", inputPath,
		"-qscale:v", "2",
		filepath.Join(framesDir, FramePattern),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg frame extraction failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// Assemble muxes the numbered frame sequence in framesDir at the given
// frame rate together with the original upload's audio track (mapped if
// present, omitted if absent) into outputPath. The video stream is encoded
// with a widely compatible codec and pixel format.
func (c *Command) Assemble(ctx context.Context, framesDir, inputPath, outputPath string, framerate int) error {
	bin, err := c.lookup()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, bin,
		"-y",
		"-framerate", strconv.Itoa(framerate),
		"-i", filepath.Join(framesDir, FramePattern),
		"-i", inputPath,
		"-map", "0:v:0",
		"-map", "1:a?",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "copy",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg assembly failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// Probe returns the duration of the input in seconds. Used for log and
// status diagnostics only; failures here never fail a pipeline.
func (c *Command) Probe(ctx context.Context, inputPath string) (float64, error) {
	bin, err := exec.LookPath(c.ffprobePath)
	if err != nil {
		return 0, fmt.Errorf("ffprobe not found: please install ffmpeg")
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		inputPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to probe duration: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}
