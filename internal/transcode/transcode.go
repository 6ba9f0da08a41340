// Package transcode bounds deliverable size so videos fit WhatsApp's media
// limit before delivery.
package transcode

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// defaultMaxSizeMB is WhatsApp's media size cap.
const defaultMaxSizeMB = 16

// Transcoder produces a size-bounded copy of a video file.
type Transcoder interface {
	Downscale(ctx context.Context, inputPath, outputPath string) error
}

// FFmpeg shells out to ffmpeg to scale and bitrate-cap a video. Files
// already under the size limit are copied verbatim.
type FFmpeg struct {
	// MaxSizeMB overrides the WhatsApp cap when non-zero.
	MaxSizeMB int64
	// Binary overrides the ffmpeg executable name for tests.
	Binary string
}

// NewFFmpeg creates a transcoder using the default binary and size cap.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{}
}

func (f *FFmpeg) Downscale(ctx context.Context, inputPath, outputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("transcode: input: %w", err)
	}

	maxMB := f.MaxSizeMB
	if maxMB == 0 {
		maxMB = defaultMaxSizeMB
	}
	if info.Size() <= maxMB*1024*1024 {
		return copyFile(inputPath, outputPath)
	}

	binary := f.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-y",
		"-i", inputPath,
		"-vf", "scale=-2:480",
		"-b:v", "800k",
		"-bufsize", "800k",
		"-maxrate", "800k",
		"-c:a", "aac",
		"-b:a", "96k",
		outputPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("transcode: ffmpeg: %w: %s", err, out)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("transcode: open input: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("transcode: ensure output dir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("transcode: create output: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("transcode: copy: %w", err)
	}
	return nil
}

// Noop copies the input without size bounding. Used in tests.
type Noop struct{}

func (Noop) Downscale(ctx context.Context, inputPath, outputPath string) error {
	return copyFile(inputPath, outputPath)
}

var (
	_ Transcoder = (*FFmpeg)(nil)
	_ Transcoder = Noop{}
)
