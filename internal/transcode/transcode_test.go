package transcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDownscaleCopiesSmallFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.mp4")
	output := filepath.Join(dir, "out", "output.mp4")
	if err := os.WriteFile(input, []byte("small video"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	f := NewFFmpeg()
	if err := f.Downscale(context.Background(), input, output); err != nil {
		t.Fatalf("Downscale: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "small video" {
		t.Fatalf("output = %q", data)
	}
}

func TestDownscaleMissingInput(t *testing.T) {
	f := NewFFmpeg()
	if err := f.Downscale(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"), "out.mp4"); err == nil {
		t.Fatal("missing input should fail")
	}
}

func TestDownscaleInvokesFFmpegOverLimit(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.mp4")
	if err := os.WriteFile(input, []byte("definitely more than one byte"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	// A 0-byte cap is the zero value, so use a tiny cap via a fake binary
	// that records its invocation by failing.
	f := &FFmpeg{MaxSizeMB: -1, Binary: "false"}
	if err := f.Downscale(context.Background(), input, filepath.Join(dir, "out.mp4")); err == nil {
		t.Fatal("oversized input should reach the transcoder")
	}
}
