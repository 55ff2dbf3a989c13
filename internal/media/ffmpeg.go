package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegSource decodes single frames with the system ffmpeg/ffprobe binaries.
// Spawning one short-lived process per sampled frame keeps the scanner free
// of cgo decoder bindings; seek cost dominates either way.
type FFmpegSource struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegSource creates a frame source backed by the ffmpeg binaries on
// PATH, or at the given paths when non-empty.
func NewFFmpegSource(ffmpegPath, ffprobePath string) *FFmpegSource {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegSource{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Duration returns the container duration in seconds via ffprobe.
func (f *FFmpegSource) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned unparseable duration %q: %w", out, err)
	}
	return dur, nil
}

// SeekFrame extracts the frame nearest to ts as a decoded image. Fast seek
// (-ss before -i) lands on the closest keyframe, which is accurate enough at
// one-second sampling granularity.
func (f *FFmpegSource) SeekFrame(ctx context.Context, path string, ts float64) (image.Image, error) {
	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-ss", strconv.FormatFloat(ts, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"-v", "error",
		"pipe:1",
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg seek %s@%.2fs: %v", ErrFrameUnavailable, path, ts, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: no frame at %s@%.2fs", ErrFrameUnavailable, path, ts)
	}
	img, err := jpeg.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s@%.2fs: %v", ErrFrameUnavailable, path, ts, err)
	}
	return img, nil
}
