package identity

// Match is the winning identity for one observed face.
type Match struct {
	Name     string
	Distance float64
}

// Matcher classifies a face embedding against the registry by nearest
// reference embedding. It is a pure function of its inputs; the registry is
// only read.
type Matcher struct {
	registry     *Registry
	maxDistance  float64
	minFaceRatio float64
}

// NewMatcher creates a matcher with the confidence threshold (maximum
// accepted distance) and the minimum face-area ratio in percent of the frame.
func NewMatcher(registry *Registry, maxDistance, minFaceRatio float64) *Matcher {
	return &Matcher{
		registry:     registry,
		maxDistance:  maxDistance,
		minFaceRatio: minFaceRatio,
	}
}

// Match returns the identity with the minimum distance across all of its
// reference embeddings. It rejects when the best distance exceeds the
// threshold, or when the face is too small a share of the frame — tiny
// background faces are excluded even if nominally closest.
func (m *Matcher) Match(embedding []float32, faceRatio float64) (Match, bool) {
	if faceRatio < m.minFaceRatio {
		return Match{}, false
	}

	m.registry.mu.RLock()
	defer m.registry.mu.RUnlock()

	best := Match{Distance: -1}
	for name, refs := range m.registry.references() {
		for _, ref := range refs {
			d := CosineDistance(embedding, ref)
			if best.Distance < 0 || d < best.Distance {
				best = Match{Name: name, Distance: d}
			}
		}
	}

	if best.Distance < 0 || best.Distance > m.maxDistance {
		return Match{}, false
	}
	return best, true
}
