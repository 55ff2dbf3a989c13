package store

import (
	"os"
	"path/filepath"
	"testing"
)

func testEvent(t float64) Event {
	return Event{
		Time:        t,
		Happy:       0.5,
		Motion:      2.0,
		FaceRatio:   5.0,
		Description: "a natural everyday scene",
		Vibe:        "calm",
		VisualScore: 6.5,
		Timestamp:   "2024-03-10 14:00:00",
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan_results.json")

	s := Load(path, nil)
	s.MergeVideo("/videos/a.mp4", VideoMeta{Month: "2024-03", Date: "2024-03-10 14:00:00"},
		map[string][]Event{"Alice": {testEvent(10.0), testEvent(12.0)}})
	if err := s.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded := Load(path, nil)
	events, ok := reloaded.EventsFor("Alice")
	if !ok {
		t.Fatal("Alice missing after reload")
	}
	if len(events["/videos/a.mp4"]) != 2 {
		t.Errorf("got %d events, want 2", len(events["/videos/a.mp4"]))
	}
	if !reloaded.Scanned("/videos/a.mp4") {
		t.Error("video should be marked scanned")
	}
}

func TestLoadMissingFileGivesEmptyStore(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
	if len(s.People()) != 0 {
		t.Errorf("expected empty store, got people %v", s.People())
	}
}

func TestBackupRecovery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan_results.json")

	s := Load(path, nil)
	s.MergeVideo("/videos/a.mp4", VideoMeta{Month: "2024-03", Date: "2024-03-10 14:00:00"},
		map[string][]Event{"Alice": {testEvent(10.0)}})
	if err := s.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// Corrupt the primary; load must recover from the backup copy.
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	recovered := Load(path, nil)
	if _, ok := recovered.EventsFor("Alice"); !ok {
		t.Fatal("expected recovery from backup")
	}
}

func TestBothCorruptGivesEmptyStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan_results.json")

	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(BackupPath(path), []byte("also broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(path, nil)
	if len(s.People()) != 0 || len(s.Videos()) != 0 {
		t.Error("expected empty default store when both files are corrupt")
	}
}

func TestMergeVideoReplacesAcrossIdentities(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "scan_results.json"), nil)

	meta := VideoMeta{Month: "2024-03", Date: "2024-03-10 14:00:00"}
	s.MergeVideo("/videos/a.mp4", meta, map[string][]Event{
		"Alice": {testEvent(10.0), testEvent(11.0)},
	})
	s.MergeVideo("/videos/b.mp4", meta, map[string][]Event{
		"Alice": {testEvent(3.0)},
	})

	// Forced re-scan of a.mp4: Alice replaced, Carol (newly registered)
	// populated, b.mp4 untouched.
	s.MergeVideo("/videos/a.mp4", meta, map[string][]Event{
		"Alice": {testEvent(20.0)},
		"Carol": {testEvent(21.0)},
	})

	alice, _ := s.EventsFor("Alice")
	if len(alice["/videos/a.mp4"]) != 1 || alice["/videos/a.mp4"][0].Time != 20.0 {
		t.Errorf("Alice a.mp4 events = %+v, want single event at t=20", alice["/videos/a.mp4"])
	}
	if len(alice["/videos/b.mp4"]) != 1 {
		t.Errorf("Alice b.mp4 should be untouched, got %+v", alice["/videos/b.mp4"])
	}
	carol, ok := s.EventsFor("Carol")
	if !ok || len(carol["/videos/a.mp4"]) != 1 {
		t.Errorf("Carol a.mp4 events missing: %+v", carol)
	}
}

func TestMergeVideoClearsStaleEntries(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "scan_results.json"), nil)
	meta := VideoMeta{Month: "2024-03", Date: "2024-03-10 14:00:00"}

	s.MergeVideo("/videos/a.mp4", meta, map[string][]Event{"Alice": {testEvent(10.0)}})
	// Re-scan finds nothing for Alice this time.
	s.MergeVideo("/videos/a.mp4", meta, map[string][]Event{})

	alice, _ := s.EventsFor("Alice")
	if len(alice["/videos/a.mp4"]) != 0 {
		t.Errorf("stale events survived a re-scan: %+v", alice["/videos/a.mp4"])
	}
}

func TestPurgePerson(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "scan_results.json"), nil)
	s.MergeVideo("/videos/a.mp4", VideoMeta{Month: "2024-03"}, map[string][]Event{
		"Alice": {testEvent(10.0)},
		"Bob":   {testEvent(11.0)},
	})

	s.PurgePerson("Alice")

	if _, ok := s.EventsFor("Alice"); ok {
		t.Error("Alice should be purged")
	}
	if _, ok := s.EventsFor("Bob"); !ok {
		t.Error("Bob should survive Alice's purge")
	}
}

func TestDeleteEvent(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "scan_results.json"), nil)
	s.MergeVideo("/videos/a.mp4", VideoMeta{Month: "2024-03"}, map[string][]Event{
		"Alice": {testEvent(10.0), testEvent(12.0)},
	})

	if !s.DeleteEvent("Alice", "/videos/a.mp4", 10.0) {
		t.Fatal("expected deletion to succeed")
	}
	if s.DeleteEvent("Alice", "/videos/a.mp4", 99.0) {
		t.Error("deleting a missing event should report false")
	}

	alice, _ := s.EventsFor("Alice")
	if len(alice["/videos/a.mp4"]) != 1 || alice["/videos/a.mp4"][0].Time != 12.0 {
		t.Errorf("remaining events = %+v", alice["/videos/a.mp4"])
	}

	// Deleting the last event drops the video bucket entirely.
	s.DeleteEvent("Alice", "/videos/a.mp4", 12.0)
	alice, _ = s.EventsFor("Alice")
	if _, ok := alice["/videos/a.mp4"]; ok {
		t.Error("empty video bucket should be removed")
	}
}

func TestEnsurePeople(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "scan_results.json"), nil)
	s.EnsurePeople([]string{"Alice", "Bob"})

	people := s.People()
	if len(people) != 2 || people[0] != "Alice" || people[1] != "Bob" {
		t.Errorf("People() = %v", people)
	}
}

func TestEventDay(t *testing.T) {
	ev := Event{Timestamp: "2024-03-10 14:00:00"}
	if ev.Day() != "2024-03-10" {
		t.Errorf("Day() = %q", ev.Day())
	}
	short := Event{Timestamp: "2024"}
	if short.Day() != "2024" {
		t.Errorf("Day() on short timestamp = %q", short.Day())
	}
}
