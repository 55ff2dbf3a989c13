// Package mediatest provides in-memory fakes of the media collaborators for
// tests: a scripted frame source, face detector, and expression classifier.
package mediatest

import (
	"context"
	"image"
	"image/color"
	"sync"

	"facereel/internal/media"
)

// SyntheticFrame builds a small deterministic test frame. The seed varies the
// pixel pattern so motion between consecutive frames is non-zero.
func SyntheticFrame(seed int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			v := uint8((x*7 + y*13 + seed*31) % 256)
			img.Set(x, y, color.RGBA{R: v, G: 255 - v, B: v / 2, A: 255})
		}
	}
	return img
}

// ScriptedVision plays both the frame source and the face detector. The
// analyzer always seeks a frame immediately before detecting faces in it, so
// the fake remembers the last seek position and answers the detector call
// from the script. Use a single scan worker when testing with it.
type ScriptedVision struct {
	mu       sync.Mutex
	lastPath string
	lastTS   float64

	// Durations maps video path to duration in seconds.
	Durations map[string]float64
	// FacesAt returns the faces visible at a given sample position.
	FacesAt func(path string, ts float64) []media.Face
	// FailOpen lists paths whose duration probe fails, simulating an
	// unreadable video.
	FailOpen map[string]bool

	// SeekCount tracks how many frames were decoded, for assertions.
	SeekCount int
}

func (v *ScriptedVision) Duration(ctx context.Context, path string) (float64, error) {
	if v.FailOpen[path] {
		return 0, media.ErrFrameUnavailable
	}
	d, ok := v.Durations[path]
	if !ok {
		return 0, media.ErrFrameUnavailable
	}
	return d, nil
}

func (v *ScriptedVision) SeekFrame(ctx context.Context, path string, ts float64) (image.Image, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.FailOpen[path] {
		return nil, media.ErrFrameUnavailable
	}
	v.lastPath, v.lastTS = path, ts
	v.SeekCount++
	return SyntheticFrame(int(ts * 10)), nil
}

func (v *ScriptedVision) DetectFaces(ctx context.Context, jpegData []byte) ([]media.Face, error) {
	v.mu.Lock()
	path, ts := v.lastPath, v.lastTS
	v.mu.Unlock()
	if v.FacesAt == nil {
		return nil, nil
	}
	return v.FacesAt(path, ts), nil
}

// StaticClassifier returns a fixed emotion map, or an error when Err is set.
type StaticClassifier struct {
	Emotions map[string]float64
	Err      error
	Calls    int
	mu       sync.Mutex
}

func (c *StaticClassifier) ClassifyExpression(ctx context.Context, jpegData []byte) (map[string]float64, error) {
	c.mu.Lock()
	c.Calls++
	c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Emotions, nil
}

// Face builds a detector face with the given box corners and embedding.
func Face(top, right, bottom, left float64, embedding []float32) media.Face {
	return media.Face{
		Box:       media.Box{Top: top, Right: right, Bottom: bottom, Left: left},
		Embedding: embedding,
		DetScore:  0.99,
	}
}
