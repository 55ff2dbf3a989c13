package enrich

import (
	"context"
	"errors"
	"os"
	"testing"

	"facereel/internal/media"
	"facereel/internal/media/mediatest"
)

var testBox = media.Box{Top: 8, Right: 48, Bottom: 40, Left: 8}

func TestEnrichProducesFullPayload(t *testing.T) {
	vision := &mediatest.ScriptedVision{}
	classifier := &mediatest.StaticClassifier{Emotions: map[string]float64{"happy": 60}}
	svc := NewService(vision, classifier, t.TempDir(), nil)

	e := svc.Enrich(context.Background(), "clip.mp4", 3.5, testBox, 1.0, 5.0)

	if e.Happy != 0.6 {
		t.Errorf("expected happy 0.6, got %v", e.Happy)
	}
	if e.Description == "" || e.Vibe == "" {
		t.Error("description and vibe must always be set")
	}
	if e.VisualScore < 1 || e.VisualScore > 10 {
		t.Errorf("visual score out of range: %v", e.VisualScore)
	}
	if e.Thumb == "" {
		t.Fatal("expected a thumbnail path")
	}
	if _, err := os.Stat(e.Thumb); err != nil {
		t.Errorf("thumbnail file missing: %v", err)
	}
}

func TestEnrichClassifierFailureDegradesToNeutral(t *testing.T) {
	// Neutral must hold regardless of the other signals; a lively frame
	// without expression scores is still a neutral event.
	cases := []struct {
		name      string
		motion    float64
		faceRatio float64
	}{
		{"quiet frame", 1.0, 5.0},
		{"high motion", 8.0, 5.0},
		{"big face", 1.0, 20.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vision := &mediatest.ScriptedVision{}
			classifier := &mediatest.StaticClassifier{Err: errors.New("model unavailable")}
			svc := NewService(vision, classifier, t.TempDir(), nil)

			e := svc.Enrich(context.Background(), "clip.mp4", 3.5, testBox, tc.motion, tc.faceRatio)

			if e.Happy != 0 || e.Drama != 0 {
				t.Errorf("expected zero emotion scores, got happy=%v drama=%v", e.Happy, e.Drama)
			}
			if e.Description != NeutralDescription {
				t.Errorf("expected neutral description, got %q", e.Description)
			}
			if e.Vibe != VibeCalm {
				t.Errorf("expected calm vibe, got %q", e.Vibe)
			}
			// The event still carries a real visual score and thumbnail.
			if e.VisualScore < 1 || e.Thumb == "" {
				t.Errorf("visual signals should survive classifier failure: %+v", e)
			}
		})
	}
}

func TestEnrichFrameUnavailableUsesDefaults(t *testing.T) {
	vision := &mediatest.ScriptedVision{FailOpen: map[string]bool{"gone.mp4": true}}
	classifier := &mediatest.StaticClassifier{Emotions: map[string]float64{"happy": 60}}
	svc := NewService(vision, classifier, t.TempDir(), nil)

	e := svc.Enrich(context.Background(), "gone.mp4", 3.5, testBox, 1.0, 5.0)

	if e.VisualScore != 5.0 || e.Vibe != VibeCalm || e.Description != NeutralDescription {
		t.Errorf("expected default enrichment, got %+v", e)
	}
	if classifier.Calls != 0 {
		t.Error("classifier must not run without a frame")
	}
}

func TestEnrichThumbnailIsIdempotent(t *testing.T) {
	vision := &mediatest.ScriptedVision{}
	classifier := &mediatest.StaticClassifier{Emotions: map[string]float64{"happy": 60}}
	svc := NewService(vision, classifier, t.TempDir(), nil)

	first := svc.Enrich(context.Background(), "clip.mp4", 3.5, testBox, 1.0, 5.0)
	info1, err := os.Stat(first.Thumb)
	if err != nil {
		t.Fatalf("thumbnail missing: %v", err)
	}

	second := svc.Enrich(context.Background(), "clip.mp4", 3.5, testBox, 1.0, 5.0)
	if second.Thumb != first.Thumb {
		t.Fatalf("thumbnail key changed: %q vs %q", first.Thumb, second.Thumb)
	}
	info2, err := os.Stat(second.Thumb)
	if err != nil {
		t.Fatalf("thumbnail missing after re-enrichment: %v", err)
	}
	if !info2.ModTime().Equal(info1.ModTime()) {
		t.Error("existing thumbnail should not be rewritten")
	}
}

func TestThumbPathVariesByScene(t *testing.T) {
	svc := NewService(nil, nil, "/thumbs", nil)

	a := svc.ThumbPath("a.mp4", 1.0)
	b := svc.ThumbPath("a.mp4", 2.0)
	c := svc.ThumbPath("b.mp4", 1.0)
	if a == b || a == c || b == c {
		t.Errorf("thumbnail keys must differ per scene: %q %q %q", a, b, c)
	}
}

func TestVisualScoreRange(t *testing.T) {
	for seed := 0; seed < 5; seed++ {
		score := VisualScore(mediatest.SyntheticFrame(seed))
		if score < 1 || score > 10 {
			t.Errorf("seed %d: score %v out of range", seed, score)
		}
	}
}

func TestVisualScoreDeterministic(t *testing.T) {
	frame := mediatest.SyntheticFrame(3)
	if VisualScore(frame) != VisualScore(frame) {
		t.Error("visual score must be deterministic for the same frame")
	}
}
