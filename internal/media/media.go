// Package media defines the external collaborators the analysis pipeline
// consumes: a frame source, a face detector+embedder, and an expression
// classifier. Implementations talk to ffmpeg and the vision sidecar; tests
// substitute in-memory fakes.
package media

import (
	"context"
	"errors"
	"image"
)

// ErrFrameUnavailable is returned when a frame cannot be decoded at the
// requested timestamp (missing file, corrupt stream, seek past the end).
var ErrFrameUnavailable = errors.New("frame unavailable")

// Box is a face bounding box in source-frame pixel coordinates.
type Box struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Width returns the box width in pixels.
func (b Box) Width() float64 { return b.Right - b.Left }

// Height returns the box height in pixels.
func (b Box) Height() float64 { return b.Bottom - b.Top }

// Area returns the box area in pixels.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Face is one detected face: its location, embedding and detector confidence.
type Face struct {
	Box       Box
	Embedding []float32
	DetScore  float64
}

// FrameSource decodes single frames out of video files.
type FrameSource interface {
	// SeekFrame returns the frame nearest to ts seconds, or ErrFrameUnavailable.
	SeekFrame(ctx context.Context, path string, ts float64) (image.Image, error)
	// Duration returns the video length in seconds.
	Duration(ctx context.Context, path string) (float64, error)
}

// FaceDetector locates faces and computes their embeddings.
type FaceDetector interface {
	DetectFaces(ctx context.Context, jpegData []byte) ([]Face, error)
}

// ExpressionClassifier scores facial expressions for a cropped face image.
// Scores are percentages (0-100) keyed by emotion name (happy, sad, angry,
// fear, surprise, disgust, neutral).
type ExpressionClassifier interface {
	ClassifyExpression(ctx context.Context, jpegData []byte) (map[string]float64, error)
}
