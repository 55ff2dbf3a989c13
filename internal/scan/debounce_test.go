package scan

import (
	"testing"

	"facereel/internal/media"
)

func obsAt(ts float64) Observation {
	return Observation{
		Time:      ts,
		Box:       media.Box{Top: 10, Right: 50, Bottom: 50, Left: 10},
		FaceRatio: 2.5,
		Distance:  0.3,
		Motion:    1.0,
	}
}

func TestDebouncerSingleFrameDoesNotConfirm(t *testing.T) {
	d := NewDebouncer()

	confirmed := d.Observe(map[string]Observation{"alice": obsAt(1.0)})
	if len(confirmed) != 0 {
		t.Fatalf("expected no confirmation after one frame, got %v", confirmed)
	}

	// Alice disappears; the pending observation is discarded.
	confirmed = d.Observe(map[string]Observation{})
	if len(confirmed) != 0 {
		t.Fatalf("expected nothing on empty frame, got %v", confirmed)
	}

	// A later isolated match must start over, not pair with the stale one.
	confirmed = d.Observe(map[string]Observation{"alice": obsAt(5.0)})
	if len(confirmed) != 0 {
		t.Fatalf("expected no confirmation after gap, got %v", confirmed)
	}
}

func TestDebouncerSecondFrameEmitsBoth(t *testing.T) {
	d := NewDebouncer()

	d.Observe(map[string]Observation{"alice": obsAt(1.0)})
	confirmed := d.Observe(map[string]Observation{"alice": obsAt(2.0)})

	got := confirmed["alice"]
	if len(got) != 2 {
		t.Fatalf("expected pending + current, got %d observations", len(got))
	}
	if got[0].Time != 1.0 || got[1].Time != 2.0 {
		t.Errorf("expected onset then current, got %v then %v", got[0].Time, got[1].Time)
	}
}

func TestDebouncerContinuousRunEmitsEachFrameOnce(t *testing.T) {
	d := NewDebouncer()

	var emitted []float64
	for ts := 1.0; ts <= 6.0; ts += 1.0 {
		for _, obs := range d.Observe(map[string]Observation{"alice": obsAt(ts)})["alice"] {
			emitted = append(emitted, obs.Time)
		}
	}

	want := []float64{1.0, 2.0, 3.0, 4.0, 5.0, 6.0}
	if len(emitted) != len(want) {
		t.Fatalf("expected %d emissions, got %d: %v", len(want), len(emitted), emitted)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Errorf("emission %d: expected t=%v, got t=%v", i, want[i], emitted[i])
		}
	}
}

func TestDebouncerGapRestartsConfirmation(t *testing.T) {
	d := NewDebouncer()

	d.Observe(map[string]Observation{"alice": obsAt(1.0)})
	d.Observe(map[string]Observation{"alice": obsAt(2.0)})

	// Gap: alice leaves the frame.
	d.Observe(map[string]Observation{})

	if got := d.Observe(map[string]Observation{"alice": obsAt(4.0)}); len(got) != 0 {
		t.Fatalf("first frame after gap must not confirm, got %v", got)
	}
	got := d.Observe(map[string]Observation{"alice": obsAt(5.0)})["alice"]
	if len(got) != 2 || got[0].Time != 4.0 || got[1].Time != 5.0 {
		t.Fatalf("expected new onset pair 4.0,5.0 after gap, got %v", got)
	}
}

func TestDebouncerTracksIdentitiesIndependently(t *testing.T) {
	d := NewDebouncer()

	d.Observe(map[string]Observation{"alice": obsAt(1.0)})
	confirmed := d.Observe(map[string]Observation{
		"alice": obsAt(2.0),
		"bob":   obsAt(2.0),
	})

	if len(confirmed["alice"]) != 2 {
		t.Errorf("alice should be confirmed, got %v", confirmed["alice"])
	}
	if len(confirmed["bob"]) != 0 {
		t.Errorf("bob has only one frame, got %v", confirmed["bob"])
	}

	confirmed = d.Observe(map[string]Observation{"bob": obsAt(3.0)})
	if len(confirmed["bob"]) != 2 {
		t.Errorf("bob should now be confirmed, got %v", confirmed["bob"])
	}
	if len(confirmed["alice"]) != 0 {
		t.Errorf("alice is absent and must not emit, got %v", confirmed["alice"])
	}
}
