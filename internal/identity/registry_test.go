package identity

import (
	"path/filepath"
	"testing"
)

func TestRegistryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faces.json")

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	reg.Register("Alice", []float32{1, 0, 0})
	reg.Register("Alice", []float32{0.9, 0.1, 0})
	reg.Register("Bob", []float32{0, 1, 0})
	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}
	if got := reloaded.References("Alice"); got != 2 {
		t.Errorf("Alice references = %d, want 2", got)
	}
	names := reloaded.Names()
	if len(names) != 2 || names[0] != "Alice" || names[1] != "Bob" {
		t.Errorf("Names() = %v", names)
	}
}

func TestRegistryMissingFile(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(reg.Names()) != 0 {
		t.Errorf("expected empty registry, got %v", reg.Names())
	}
}

func TestRegistryDelete(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Register("Alice", []float32{1, 0, 0})

	if !reg.Delete("Alice") {
		t.Error("Delete should report true for an existing identity")
	}
	if reg.Delete("Alice") {
		t.Error("Delete should report false for a missing identity")
	}
	if reg.References("Alice") != 0 {
		t.Error("references should be gone after delete")
	}
}

func TestRegisterCopiesEmbedding(t *testing.T) {
	reg := newTestRegistry(t)
	emb := []float32{1, 0, 0}
	reg.Register("Alice", emb)
	emb[0] = 99 // caller mutation must not leak into the registry

	m := NewMatcher(reg, 0.42, 1.2)
	match, ok := m.Match([]float32{1, 0, 0}, 5.0)
	if !ok || match.Distance > 1e-9 {
		t.Errorf("stored reference was mutated: match=%+v ok=%v", match, ok)
	}
}
