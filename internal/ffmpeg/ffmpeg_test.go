package ffmpeg

import (
	"context"
	"strings"
	"testing"
)

// A binary name that cannot resolve via PATH keeps these tests independent
// of whether ffmpeg is installed.
const missingBinary = "lucidframe-test-no-such-binary"

func TestExtractFramesMissingBinary(t *testing.T) {
	c := New(missingBinary, missingBinary)
	err := c.ExtractFrames(context.Background(), "in.mp4", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "ffmpeg not found") {
		t.Errorf("err = %v, want ffmpeg preflight failure", err)
	}
}

func TestAssembleMissingBinary(t *testing.T) {
	c := New(missingBinary, missingBinary)
	err := c.Assemble(context.Background(), t.TempDir(), "in.mp4", "out.mp4", 25)
	if err == nil || !strings.Contains(err.Error(), "ffmpeg not found") {
		t.Errorf("err = %v, want ffmpeg preflight failure", err)
	}
}

func TestProbeMissingBinary(t *testing.T) {
	c := New(missingBinary, missingBinary)
	if _, err := c.Probe(context.Background(), "in.mp4"); err == nil || !strings.Contains(err.Error(), "ffprobe not found") {
		t.Errorf("err = %v, want ffprobe preflight failure", err)
	}
}
