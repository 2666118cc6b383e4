// Package enhance wraps the external super-resolution tool. The neural
// inference itself is opaque to this service: one frame in, one enhanced
// frame out at the requested scale.
package enhance

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// RealESRGAN runs the realesrgan-ncnn-vulkan binary once per frame.
type RealESRGAN struct {
	binPath   string
	modelsDir string
}

// NewRealESRGAN creates an enhancer using the given binary and model
// directory. An empty modelsDir uses the binary's bundled models.
func NewRealESRGAN(binPath, modelsDir string) *RealESRGAN {
	return &RealESRGAN{binPath: binPath, modelsDir: modelsDir}
}

// modelName selects the model weights for a mode and scale factor. The
// anime and clean models only ship at 4x; the binary downsamples their
// output for 2x requests.
func modelName(scale int, mode string) string {
	switch mode {
	case "anime":
		return "realesrgan-x4plus-anime"
	case "clean":
		return "realesrnet-x4plus"
	}
	if scale == 2 {
		return "realesrgan-x2plus"
	}
	return "realesrgan-x4plus"
}

// EnhanceFrame upscales a single image by the given integer scale factor
// with the model family selected by mode.
func (r *RealESRGAN) EnhanceFrame(ctx context.Context, inputPath, outputPath string, scale int, mode string) error {
	bin, err := exec.LookPath(r.binPath)
	if err != nil {
		return fmt.Errorf("realesrgan binary not found: set LUCIDFRAME_REALESRGAN or place realesrgan-ncnn-vulkan on PATH")
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("frame not found: %s", inputPath)
	}

	args := []string{
		"-i", inputPath,
		"-o", outputPath,
		"-s", fmt.Sprintf("%d", scale),
		"-n", modelName(scale, mode),
	}
	if r.modelsDir != "" {
		args = append(args, "-m", r.modelsDir)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("realesrgan failed on %s: %w\nOutput: %s", inputPath, err, string(output))
	}
	return nil
}
