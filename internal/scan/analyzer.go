// Package scan runs the per-video analysis loop and fans a video library out
// across a bounded worker pool.
package scan

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"log/slog"
	"math"
	"os"

	"facereel/internal/enrich"
	"facereel/internal/identity"
	"facereel/internal/media"
	"facereel/internal/store"
)

// Analyzer scans one video at a time: it samples frames at a fixed interval,
// matches detected faces against the registry, debounces the matches into
// confirmed appearances, and enriches each confirmed one.
type Analyzer struct {
	frames   media.FrameSource
	detector media.FaceDetector
	matcher  *identity.Matcher
	enricher *enrich.Service
	interval float64 // sampling interval in seconds
	margin   float64 // seconds skipped at both ends of the video
	logger   *slog.Logger
}

func NewAnalyzer(frames media.FrameSource, detector media.FaceDetector, matcher *identity.Matcher,
	enricher *enrich.Service, interval, margin float64, logger *slog.Logger) *Analyzer {
	if interval <= 0 {
		interval = 1.0
	}
	return &Analyzer{
		frames:   frames,
		detector: detector,
		matcher:  matcher,
		enricher: enricher,
		interval: interval,
		margin:   margin,
		logger:   logger,
	}
}

// VideoResult is the immutable outcome of scanning one video.
type VideoResult struct {
	Path   string
	Meta   store.VideoMeta
	Events map[string][]store.Event
}

// ScanVideo analyzes a single video and returns the confirmed events per
// identity. An unopenable video returns an error; mid-stream decode failures
// end the sampling loop with whatever was confirmed so far.
func (a *Analyzer) ScanVideo(ctx context.Context, path string) (*VideoResult, error) {
	duration, err := a.frames.Duration(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("cannot open video %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat video %s: %w", path, err)
	}
	mtime := info.ModTime()
	meta := store.VideoMeta{
		Month: mtime.Format("2006-01"),
		Date:  mtime.Format("2006-01-02 15:04:05"),
	}

	result := &VideoResult{
		Path:   path,
		Meta:   meta,
		Events: make(map[string][]store.Event),
	}

	debouncer := NewDebouncer()
	motion := &motionTracker{}

	for ts := a.margin; ts <= duration-a.margin; ts += a.interval {
		frame, err := a.frames.SeekFrame(ctx, path, ts)
		if err != nil {
			if a.logger != nil {
				a.logger.Debug("sampling stopped early", "video", path, "t", ts, "error", err)
			}
			break
		}

		motionScore := motion.score(frame)

		bounds := frame.Bounds()
		frameArea := float64(bounds.Dx() * bounds.Dy())
		if frameArea == 0 {
			continue
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: 85}); err != nil {
			continue
		}
		faces, err := a.detector.DetectFaces(ctx, buf.Bytes())
		if err != nil {
			if a.logger != nil {
				a.logger.Warn("face detection failed", "video", path, "t", ts, "error", err)
			}
			continue
		}

		// Best observation per identity for this frame; when two faces match
		// the same person, the closer one wins.
		matched := make(map[string]Observation)
		for _, face := range faces {
			ratio := face.Box.Area() / frameArea * 100.0
			m, ok := a.matcher.Match(face.Embedding, ratio)
			if !ok {
				continue
			}
			obs := Observation{
				Time:      ts,
				Box:       face.Box,
				FaceRatio: ratio,
				Distance:  m.Distance,
				Motion:    motionScore,
			}
			if cur, dup := matched[m.Name]; !dup || obs.Distance < cur.Distance {
				matched[m.Name] = obs
			}
		}

		for name, confirmed := range debouncer.Observe(matched) {
			for _, obs := range confirmed {
				result.Events[name] = append(result.Events[name], a.buildEvent(ctx, path, meta, obs))
			}
		}
	}

	return result, nil
}

func (a *Analyzer) buildEvent(ctx context.Context, path string, meta store.VideoMeta, obs Observation) store.Event {
	e := a.enricher.Enrich(ctx, path, obs.Time, obs.Box, obs.Motion, obs.FaceRatio)
	return store.Event{
		Time:        round(obs.Time, 2),
		Happy:       round(e.Happy, 3),
		Drama:       round(e.Drama, 3),
		Motion:      round(obs.Motion, 2),
		FaceRatio:   round(obs.FaceRatio, 2),
		Distance:    round(obs.Distance, 3),
		Box:         [4]float64{obs.Box.Top, obs.Box.Right, obs.Box.Bottom, obs.Box.Left},
		Description: e.Description,
		Vibe:        e.Vibe,
		VisualScore: e.VisualScore,
		Timestamp:   meta.Date,
		Thumb:       e.Thumb,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
