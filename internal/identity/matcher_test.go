package identity

import (
	"math"
	"testing"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 0.0},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 1.0},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, 2.0},
		{"scaled is identical", []float32{1, 2, 3}, []float32{2, 4, 6}, 0.0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 2.0},
		{"empty", []float32{}, []float32{}, 2.0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineDistance(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CosineDistance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadRegistry(t.TempDir() + "/faces.json")
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestMatchNearestIdentity(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Register("Alice", []float32{1, 0, 0})
	reg.Register("Bob", []float32{0, 1, 0})

	m := NewMatcher(reg, 0.42, 1.2)

	// Close to Alice's reference.
	match, ok := m.Match([]float32{0.95, 0.05, 0}, 5.0)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Name != "Alice" {
		t.Errorf("matched %q, want Alice", match.Name)
	}
	if match.Distance < 0 || match.Distance > 0.42 {
		t.Errorf("distance = %v", match.Distance)
	}
}

func TestMatchMinOverMultipleReferences(t *testing.T) {
	reg := newTestRegistry(t)
	// Alice's first reference is far from the probe, but her second one is a
	// near-exact match. The min over references must win, not the average.
	reg.Register("Alice", []float32{0, 1, 0})
	reg.Register("Alice", []float32{1, 0, 0})
	reg.Register("Bob", []float32{0.5, 0.5, 0.70710678})

	m := NewMatcher(reg, 0.42, 1.2)

	match, ok := m.Match([]float32{1, 0.01, 0}, 5.0)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Name != "Alice" {
		t.Errorf("matched %q, want Alice via her second reference", match.Name)
	}
}

func TestMatchRejectsAboveThreshold(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Register("Alice", []float32{1, 0, 0})

	m := NewMatcher(reg, 0.42, 1.2)

	// Orthogonal probe: distance 1.0 > 0.42.
	if _, ok := m.Match([]float32{0, 1, 0}, 5.0); ok {
		t.Error("expected rejection above the distance threshold")
	}
}

func TestMatchRejectsSmallFaces(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Register("Alice", []float32{1, 0, 0})

	m := NewMatcher(reg, 0.42, 1.2)

	// Perfect embedding match but a tiny background face.
	if _, ok := m.Match([]float32{1, 0, 0}, 0.5); ok {
		t.Error("expected rejection below the face-area floor")
	}
	if _, ok := m.Match([]float32{1, 0, 0}, 1.2); !ok {
		t.Error("faces at exactly the floor should pass")
	}
}

func TestMatchEmptyRegistry(t *testing.T) {
	m := NewMatcher(newTestRegistry(t), 0.42, 1.2)
	if _, ok := m.Match([]float32{1, 0, 0}, 5.0); ok {
		t.Error("empty registry must never match")
	}
}
