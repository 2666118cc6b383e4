package pipeline

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
)

// interpolateFrames doubles the effective frame rate by inserting one
// synthetic frame between each consecutive pair: the per-pixel rounded
// average of the two neighbors. N input frames become exactly 2N-1 output
// frames. This is a deterministic blend, not motion interpolation; it is
// the safe fallback until a real flow-based interpolator is wired in.
//
// Fewer than two input frames are copied through unchanged.
func interpolateFrames(srcDir, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create interpolation directory: %w", err)
	}

	framePaths, err := listFrames(srcDir)
	if err != nil {
		return err
	}

	if len(framePaths) < 2 {
		for _, path := range framePaths {
			if err := copyFile(path, filepath.Join(outDir, filepath.Base(path))); err != nil {
				return err
			}
		}
		return nil
	}

	idx := 1
	for i, framePath := range framePaths {
		img, err := readFrame(framePath)
		if err != nil {
			return err
		}

		if err := writeFrame(outDir, idx, img); err != nil {
			return err
		}
		idx++

		if i+1 < len(framePaths) {
			next, err := readFrame(framePaths[i+1])
			if err != nil {
				return err
			}
			mid, err := blendFrames(img, next)
			if err != nil {
				return err
			}
			if err := writeFrame(outDir, idx, mid); err != nil {
				return err
			}
			idx++
		}
	}
	return nil
}

// blendFrames returns the pixelwise rounded average of two equally sized
// frames.
func blendFrames(a, b *image.NRGBA) (*image.NRGBA, error) {
	if a.Bounds() != b.Bounds() {
		return nil, fmt.Errorf("frame size mismatch: %v vs %v", a.Bounds(), b.Bounds())
	}

	mid := image.NewNRGBA(a.Bounds())
	for i := range mid.Pix {
		mid.Pix[i] = uint8((uint16(a.Pix[i]) + uint16(b.Pix[i]) + 1) / 2)
	}
	return mid, nil
}

func readFrame(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %s: %w", path, err)
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba, nil
	}
	nrgba := image.NewNRGBA(img.Bounds())
	draw.Draw(nrgba, img.Bounds(), img, img.Bounds().Min, draw.Src)
	return nrgba, nil
}

func writeFrame(dir string, idx int, img *image.NRGBA) error {
	path := filepath.Join(dir, fmt.Sprintf("frame_%06d.png", idx))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write frame %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to write frame %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to copy frame: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to copy frame: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy frame: %w", err)
	}
	return nil
}
