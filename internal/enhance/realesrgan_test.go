package enhance

import (
	"context"
	"strings"
	"testing"
)

func TestModelName(t *testing.T) {
	tests := []struct {
		scale int
		mode  string
		want  string
	}{
		{2, "photo", "realesrgan-x2plus"},
		{4, "photo", "realesrgan-x4plus"},
		{4, "anime", "realesrgan-x4plus-anime"},
		{2, "anime", "realesrgan-x4plus-anime"},
		{4, "clean", "realesrnet-x4plus"},
	}
	for _, tt := range tests {
		if got := modelName(tt.scale, tt.mode); got != tt.want {
			t.Errorf("modelName(%d, %q) = %q, want %q", tt.scale, tt.mode, got, tt.want)
		}
	}
}

func TestEnhanceFrameMissingBinary(t *testing.T) {
	r := NewRealESRGAN("lucidframe-test-no-such-binary", "")
	err := r.EnhanceFrame(context.Background(), "in.png", "out.png", 2, "photo")
	if err == nil || !strings.Contains(err.Error(), "realesrgan binary not found") {
		t.Errorf("err = %v, want preflight failure", err)
	}
}
