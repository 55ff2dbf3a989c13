package enrich

// Vibe tags attached to events and tallied by the story engine.
const (
	VibeCalm      = "calm"
	VibeHappy     = "happy"
	VibeEnergetic = "energetic"
	VibeCinematic = "cinematic"
	VibeEmotional = "emotional"
)

// NeutralDescription is used when the classifier fails or nothing stronger
// applies.
const NeutralDescription = "a natural everyday scene"

// Signals bundles everything the description table looks at for one event.
type Signals struct {
	Emotions  map[string]float64 // classifier percentages, 0-100 per emotion
	Motion    float64            // 0-10
	FaceRatio float64            // % of frame area
	Visual    float64            // 1-10
}

// HappyNorm returns the happy score normalized to 0-1, as stored on events.
func (s Signals) HappyNorm() float64 {
	return s.Emotions["happy"] / 100.0
}

// DramaSum returns the combined surprise+sad+angry+fear percentage.
func (s Signals) DramaSum() float64 {
	return s.Emotions["surprise"] + s.Emotions["sad"] + s.Emotions["angry"] + s.Emotions["fear"]
}

// dominant returns the emotion with the highest score.
func (s Signals) dominant() string {
	best, bestScore := "", -1.0
	for name, score := range s.Emotions {
		if score > bestScore {
			best, bestScore = name, score
		}
	}
	return best
}

// Describe derives the scene description and the vibe tag from the combined
// signals. The description table is ordered; the first matching row wins.
func Describe(s Signals) (description, vibe string) {
	happy := s.Emotions["happy"] // percent
	drama := s.DramaSum()

	switch {
	case s.HappyNorm() > 0.70 && s.FaceRatio > 10:
		description = "best shot: a big close-up smile"
	case s.HappyNorm() > 0.40 && s.Motion > 5:
		description = "a playful scene full of motion"
	case drama > 50:
		description = "a dramatic, expressive moment"
	case s.Motion > 7:
		description = "a dynamic scene"
	case s.FaceRatio < 2:
		description = "an ambient landscape scene"
	case s.Visual > 8 && happy > 20:
		description = "an everyday scene with a cinematic look"
	case happy > 40:
		description = "a happy scene"
	case s.Emotions["surprise"] > 30:
		description = "a striking, surprising moment"
	case s.dominant() == "angry" || s.dominant() == "fear":
		description = "a strongly expressive scene"
	default:
		description = NeutralDescription
	}

	// The vibe tag is derived independently of the description.
	switch {
	case s.Motion > 6:
		vibe = VibeEnergetic
	case s.Visual > 8.5:
		vibe = VibeCinematic
	case happy > 50:
		vibe = VibeHappy
	case drama > 40:
		vibe = VibeEmotional
	default:
		vibe = VibeCalm
	}

	return description, vibe
}
