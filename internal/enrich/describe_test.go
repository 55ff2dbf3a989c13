package enrich

import "testing"

func emotions(happy, surprise, sad, angry, fear float64) map[string]float64 {
	return map[string]float64{
		"happy":    happy,
		"surprise": surprise,
		"sad":      sad,
		"angry":    angry,
		"fear":     fear,
	}
}

func TestDescribeTableOrder(t *testing.T) {
	tests := []struct {
		name    string
		signals Signals
		want    string
	}{
		{
			name:    "close-up smile wins over everything",
			signals: Signals{Emotions: emotions(90, 40, 30, 0, 0), Motion: 9, FaceRatio: 15, Visual: 9},
			want:    "best shot: a big close-up smile",
		},
		{
			name:    "playful motion needs a smile and movement",
			signals: Signals{Emotions: emotions(50, 0, 0, 0, 0), Motion: 6, FaceRatio: 5, Visual: 5},
			want:    "a playful scene full of motion",
		},
		{
			name:    "combined drama",
			signals: Signals{Emotions: emotions(10, 20, 20, 15, 0), Motion: 2, FaceRatio: 5, Visual: 5},
			want:    "a dramatic, expressive moment",
		},
		{
			name:    "fast scene without a smile",
			signals: Signals{Emotions: emotions(10, 0, 0, 0, 0), Motion: 8, FaceRatio: 5, Visual: 5},
			want:    "a dynamic scene",
		},
		{
			name:    "small face reads as landscape",
			signals: Signals{Emotions: emotions(10, 0, 0, 0, 0), Motion: 1, FaceRatio: 1.5, Visual: 5},
			want:    "an ambient landscape scene",
		},
		{
			name:    "high quality ordinary scene",
			signals: Signals{Emotions: emotions(25, 0, 0, 0, 0), Motion: 1, FaceRatio: 5, Visual: 8.5},
			want:    "an everyday scene with a cinematic look",
		},
		{
			name:    "moderate smile",
			signals: Signals{Emotions: emotions(45, 0, 0, 0, 0), Motion: 1, FaceRatio: 5, Visual: 5},
			want:    "a happy scene",
		},
		{
			name:    "surprise spike",
			signals: Signals{Emotions: emotions(10, 35, 0, 0, 0), Motion: 1, FaceRatio: 5, Visual: 5},
			want:    "a striking, surprising moment",
		},
		{
			name:    "anger dominates",
			signals: Signals{Emotions: emotions(5, 0, 0, 30, 0), Motion: 1, FaceRatio: 5, Visual: 5},
			want:    "a strongly expressive scene",
		},
		{
			name:    "nothing stands out",
			signals: Signals{Emotions: emotions(10, 5, 5, 0, 0), Motion: 1, FaceRatio: 5, Visual: 5},
			want:    NeutralDescription,
		},
		{
			name:    "empty classifier output",
			signals: Signals{Emotions: map[string]float64{}, Motion: 1, FaceRatio: 5, Visual: 5},
			want:    NeutralDescription,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := Describe(tc.signals)
			if got != tc.want {
				t.Errorf("Describe() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDescribeVibe(t *testing.T) {
	tests := []struct {
		name    string
		signals Signals
		want    string
	}{
		{"motion first", Signals{Emotions: emotions(90, 0, 0, 0, 0), Motion: 7, Visual: 9}, VibeEnergetic},
		{"cinematic quality", Signals{Emotions: emotions(90, 0, 0, 0, 0), Motion: 1, Visual: 9}, VibeCinematic},
		{"happy face", Signals{Emotions: emotions(60, 0, 0, 0, 0), Motion: 1, Visual: 5}, VibeHappy},
		{"heavy drama", Signals{Emotions: emotions(10, 20, 15, 10, 0), Motion: 1, Visual: 5}, VibeEmotional},
		{"quiet default", Signals{Emotions: emotions(10, 0, 0, 0, 0), Motion: 1, Visual: 5}, VibeCalm},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, vibe := Describe(tc.signals)
			if vibe != tc.want {
				t.Errorf("vibe = %q, want %q", vibe, tc.want)
			}
		})
	}
}

func TestSignalsDramaSum(t *testing.T) {
	s := Signals{Emotions: emotions(10, 5, 10, 15, 20)}
	if got := s.DramaSum(); got != 50 {
		t.Errorf("DramaSum() = %v, want 50", got)
	}
}

func TestSignalsHappyNorm(t *testing.T) {
	s := Signals{Emotions: emotions(80, 0, 0, 0, 0)}
	if got := s.HappyNorm(); got != 0.8 {
		t.Errorf("HappyNorm() = %v, want 0.8", got)
	}
}
