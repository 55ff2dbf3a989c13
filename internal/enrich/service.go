// Package enrich computes the per-event extras once an appearance has been
// confirmed: expression scores, a visual quality score, a derived scene
// description and vibe tag, and a face thumbnail.
package enrich

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"facereel/internal/media"
)

// thumbnailSize is the edge length of event thumbnails in pixels.
const thumbnailSize = 80

// Enrichment is the computed payload for one confirmed appearance.
type Enrichment struct {
	Happy       float64 // 0-1
	Drama       float64 // surprise+sad+angry+fear combined, 0-1
	Description string
	Vibe        string
	VisualScore float64
	Thumb       string // thumbnail path, empty if it could not be written
}

// Service enriches confirmed appearances. The frame source and classifier
// are injected collaborator handles, initialized lazily by their own
// implementations rather than by package-level state here.
type Service struct {
	frames     media.FrameSource
	classifier media.ExpressionClassifier
	thumbDir   string
	logger     *slog.Logger
}

func NewService(frames media.FrameSource, classifier media.ExpressionClassifier, thumbDir string, logger *slog.Logger) *Service {
	return &Service{
		frames:     frames,
		classifier: classifier,
		thumbDir:   thumbDir,
		logger:     logger,
	}
}

// ThumbPath returns the deterministic thumbnail location for a scene. The
// key is a hash of video path and timestamp, so re-enrichment is a no-op.
func (s *Service) ThumbPath(videoPath string, ts float64) string {
	h := md5.Sum([]byte(videoPath + "_" + strconv.FormatFloat(ts, 'f', -1, 64)))
	return filepath.Join(s.thumbDir, "thumb_"+hex.EncodeToString(h[:])+".jpg")
}

// Enrich computes the full enrichment for one confirmed appearance. It never
// fails outright: a classifier error degrades to neutral scores and an
// unavailable frame degrades to a default visual score, both logged.
func (s *Service) Enrich(ctx context.Context, videoPath string, ts float64, box media.Box, motion, faceRatio float64) Enrichment {
	e := Enrichment{
		Description: NeutralDescription,
		Vibe:        VibeCalm,
		VisualScore: 5.0,
	}

	frame, err := s.frames.SeekFrame(ctx, videoPath, ts)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("enrichment frame unavailable", "video", videoPath, "t", ts, "error", err)
		}
		return e
	}

	e.VisualScore = VisualScore(frame)

	signals := Signals{
		Emotions:  map[string]float64{},
		Motion:    motion,
		FaceRatio: faceRatio,
		Visual:    e.VisualScore,
	}

	classified := false
	if faceJPEG, encErr := EncodeFaceJPEG(frame, box); encErr == nil {
		emotions, cerr := s.classifier.ClassifyExpression(ctx, faceJPEG)
		if cerr != nil {
			// Keep the event; a failed classifier must not abort it.
			if s.logger != nil {
				s.logger.Warn("expression classifier failed", "video", videoPath, "t", ts, "error", cerr)
			}
		} else {
			signals.Emotions = emotions
			classified = true
		}
	}

	// Without expression scores the event stays fully neutral: motion or
	// visual signals alone must not invent a mood.
	if classified {
		e.Happy = signals.HappyNorm()
		e.Drama = signals.DramaSum() / 100.0
		e.Description, e.Vibe = Describe(signals)
	}

	thumb := s.ThumbPath(videoPath, ts)
	if _, statErr := os.Stat(thumb); statErr == nil {
		e.Thumb = thumb
		return e
	}
	if err := SaveFaceCrop(thumb, frame, box, 0.3, thumbnailSize); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to write thumbnail", "video", videoPath, "t", ts, "error", err)
		}
	} else {
		e.Thumb = thumb
	}
	return e
}

// PruneThumbnails removes thumbnails that no longer belong to any known
// scene key, used after cascading deletions.
func (s *Service) PruneThumbnails(valid map[string]bool) error {
	entries, err := os.ReadDir(s.thumbDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list thumbnails: %w", err)
	}
	for _, entry := range entries {
		path := filepath.Join(s.thumbDir, entry.Name())
		if !valid[path] {
			os.Remove(path)
		}
	}
	return nil
}
