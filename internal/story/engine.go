package story

import (
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"facereel/internal/config"
	"facereel/internal/enrich"
	"facereel/internal/store"
)

// ErrNoData is returned when the requested person has no appearance events,
// or the period filter removes all of them.
var ErrNoData = errors.New("no appearance data for this person")

// Engine selects clips for one person from the scan store. It is stateless
// across calls except for its RNG; every generation starts a fresh
// used-scenes set.
type Engine struct {
	store  *store.Store
	tuning config.Tuning
	rng    *rand.Rand
	logger *slog.Logger
}

// NewEngine builds a selection engine. A zero seed picks a time-based one, so
// repeated generations vary; tests inject a fixed seed for reproducibility.
func NewEngine(st *store.Store, tuning config.Tuning, seed int64, logger *slog.Logger) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		store:  st,
		tuning: tuning,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// candidate is one event flattened out of the store, with its capture time
// pre-parsed for sorting.
type candidate struct {
	video string
	event store.Event
	when  time.Time
}

func (c candidate) scene() sceneKey {
	return sceneKey{video: c.video, t: c.event.Time}
}

type sceneKey struct {
	video string
	t     float64
}

// Generate builds the playlist for one person. period is "All Time" (or
// empty) for everything, "2006-01" for one month, or "2006" for a year.
func (e *Engine) Generate(person, period string, focus Focus) (*Playlist, error) {
	videoEvents, ok := e.store.EventsFor(person)
	if !ok {
		return nil, ErrNoData
	}

	candidates := e.flatten(videoEvents, period)
	if len(candidates) == 0 {
		return nil, ErrNoData
	}

	sortChronologically(candidates)

	quotas := e.tuning.Story.ActQuotas
	target := 0
	for _, q := range quotas {
		target += q
	}

	filtered := filterByFocus(candidates, focus)
	if len(filtered) < target {
		if e.logger != nil {
			e.logger.Info("style filter too strict, using all events",
				"person", person, "focus", string(focus),
				"filtered", len(filtered), "total", len(candidates))
		}
		filtered = candidates
	}

	segments := e.partition(filtered)
	phases := []Phase{PhaseIntro, PhaseDevelopment, PhaseClimax, PhaseResolution}

	picker := newPicker(e.rng, e.tuning.Story.MinSeparationSec)
	var picked []Clip
	for i, segment := range segments {
		pool := e.rankedPool(segment, phases[i], focus, quotas[i])
		for _, c := range picker.pick(pool, quotas[i]) {
			picked = append(picked, Clip{VideoPath: c.video, Event: c.event, Phase: phases[i]})
		}
	}

	if len(picked) == 0 {
		return nil, ErrNoData
	}

	sortClipsChronologically(picked)
	annotate(picked, person)

	dominant := dominantVibe(picked, focus)
	return &Playlist{
		Person:       person,
		Period:       period,
		Focus:        focus,
		Clips:        picked,
		DominantVibe: dominant,
		SuggestedBGM: SuggestBGM(dominant),
	}, nil
}

// flatten pulls the period-matching events out of the per-video map. Videos
// are walked in sorted order so a fixed seed reproduces the same playlist.
func (e *Engine) flatten(videoEvents map[string][]store.Event, period string) []candidate {
	videos := make([]string, 0, len(videoEvents))
	for video := range videoEvents {
		videos = append(videos, video)
	}
	sort.Strings(videos)

	var out []candidate
	for _, video := range videos {
		if !e.periodMatches(video, period) {
			continue
		}
		for _, ev := range videoEvents[video] {
			when, err := time.Parse("2006-01-02 15:04:05", ev.Timestamp)
			if err != nil {
				when = time.Time{}
			}
			out = append(out, candidate{video: video, event: ev, when: when})
		}
	}
	return out
}

func (e *Engine) periodMatches(video, period string) bool {
	if period == "" || period == "All Time" {
		return true
	}
	meta, ok := e.store.Meta(video)
	if !ok {
		return false
	}
	if strings.Count(period, "-") == 1 {
		return meta.Month == period
	}
	year, _, found := strings.Cut(meta.Month, "-")
	return found && year == period
}

func sortChronologically(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if !cands[i].when.Equal(cands[j].when) {
			return cands[i].when.Before(cands[j].when)
		}
		if cands[i].video != cands[j].video {
			return cands[i].video < cands[j].video
		}
		return cands[i].event.Time < cands[j].event.Time
	})
}

// filterByFocus applies the style pre-filter. Balance keeps the ordinary
// moments that none of the specialized focuses would claim.
func filterByFocus(cands []candidate, focus Focus) []candidate {
	matches := func(c candidate) bool {
		smile := c.event.Happy >= 0.5
		emotional := c.event.Drama >= 0.5
		active := c.event.Motion >= 3.0
		switch focus {
		case FocusSmile:
			return smile
		case FocusActive:
			return active
		case FocusEmotional:
			return emotional
		default:
			return !smile && !emotional && !active
		}
	}

	var out []candidate
	for _, c := range cands {
		if matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// partition splits the chronological candidate list into the four acts. Each
// boundary index is forced past the previous one so every earlier act gets at
// least one candidate when material allows.
func (e *Engine) partition(cands []candidate) [4][]candidate {
	n := len(cands)
	b := e.tuning.Story.ActBoundaries

	i1 := max(1, int(float64(n)*b[0]))
	i2 := max(i1+1, int(float64(n)*b[1]))
	i3 := max(i2+1, int(float64(n)*b[2]))
	i1, i2, i3 = min(i1, n), min(i2, n), min(i3, n)

	return [4][]candidate{cands[:i1], cands[i1:i2], cands[i2:i3], cands[i3:]}
}

// score is the deterministic part of a candidate's rank within an act.
func score(c candidate, phase Phase, focus Focus) float64 {
	base := c.event.VisualScore / 10.0

	weight := 1.0
	switch phase {
	case PhaseIntro:
		// Open quietly.
		if c.event.Vibe != enrich.VibeCalm {
			weight = 0.3
		}
	case PhaseResolution:
		// Close on calm close-ups.
		if c.event.Vibe != enrich.VibeCalm {
			weight = 0.5
		}
		if c.event.FaceRatio > 3 {
			weight *= 1.5
		}
	}

	var bonus float64
	switch focus {
	case FocusSmile:
		bonus = 2 * c.event.Happy
	case FocusActive:
		bonus = c.event.Motion / 5.0
	case FocusEmotional:
		bonus = c.event.Drama + c.event.FaceRatio/10.0
	default:
		// A flat bonus leaves ordering to quality and jitter.
		bonus = 0.5
	}

	return base*weight + bonus
}

// rankedPool jitters scores and keeps the top slice of the segment as the
// selection pool for one act.
func (e *Engine) rankedPool(segment []candidate, phase Phase, focus Focus, quota int) []candidate {
	if len(segment) == 0 {
		return nil
	}

	type ranked struct {
		candidate
		jittered float64
	}
	j := e.tuning.Story.Jitter
	rankedCands := make([]ranked, len(segment))
	for i, c := range segment {
		mult := (1 - j) + 2*j*e.rng.Float64()
		rankedCands[i] = ranked{candidate: c, jittered: score(c, phase, focus) * mult}
	}
	sort.SliceStable(rankedCands, func(a, b int) bool {
		return rankedCands[a].jittered > rankedCands[b].jittered
	})

	size := max(quota*e.tuning.Story.PoolFactor, len(segment)/2)
	size = min(size, len(segment))

	pool := make([]candidate, size)
	for i := 0; i < size; i++ {
		pool[i] = rankedCands[i].candidate
	}
	return pool
}

// picker carries the cross-act uniqueness state of one generation run.
type picker struct {
	rng         *rand.Rand
	minSep      float64
	usedScenes  map[sceneKey]bool
	usedVideos  map[string]bool
	usedDates   map[string]bool
	pickedTimes map[string][]float64
}

func newPicker(rng *rand.Rand, minSep float64) *picker {
	return &picker{
		rng:         rng,
		minSep:      minSep,
		usedScenes:  map[sceneKey]bool{},
		usedVideos:  map[string]bool{},
		usedDates:   map[string]bool{},
		pickedTimes: map[string][]float64{},
	}
}

func (p *picker) separated(c candidate) bool {
	for _, t := range p.pickedTimes[c.video] {
		d := c.event.Time - t
		if d < 0 {
			d = -d
		}
		if d < p.minSep {
			return false
		}
	}
	return true
}

func (p *picker) take(c candidate) {
	p.usedScenes[c.scene()] = true
	p.usedVideos[c.video] = true
	p.usedDates[c.event.Day()] = true
	p.pickedTimes[c.video] = append(p.pickedTimes[c.video], c.event.Time)
}

// pick fills one act's quota from its pool in three relaxation phases. Scene
// uniqueness is the only constraint that never relaxes.
func (p *picker) pick(pool []candidate, quota int) []candidate {
	var picked []candidate

	phases := []func(c candidate) bool{
		// Fresh video, fresh calendar date, far from other picks.
		func(c candidate) bool {
			return !p.usedVideos[c.video] && !p.usedDates[c.event.Day()] && p.separated(c)
		},
		// Allow a repeated date.
		func(c candidate) bool {
			return !p.usedVideos[c.video] && p.separated(c)
		},
		// Anything still unused.
		func(c candidate) bool { return true },
	}

	for _, eligible := range phases {
		if len(picked) >= quota {
			break
		}
		var phasePool []candidate
		for _, c := range pool {
			if !p.usedScenes[c.scene()] && eligible(c) {
				phasePool = append(phasePool, c)
			}
		}
		p.rng.Shuffle(len(phasePool), func(i, j int) {
			phasePool[i], phasePool[j] = phasePool[j], phasePool[i]
		})
		for _, c := range phasePool {
			if len(picked) >= quota {
				break
			}
			picked = append(picked, c)
			p.take(c)
		}
	}
	return picked
}

func sortClipsChronologically(clips []Clip) {
	parse := func(c Clip) time.Time {
		t, err := time.Parse("2006-01-02 15:04:05", c.Event.Timestamp)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	sort.SliceStable(clips, func(i, j int) bool {
		ti, tj := parse(clips[i]), parse(clips[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return clips[i].Event.Time < clips[j].Event.Time
	})
}

// annotate writes the chapter captions onto the chronological playlist.
func annotate(clips []Clip, person string) {
	for i := range clips {
		if i == 0 {
			clips[i].Overlay = "The Story of " + person
			continue
		}
		prev := clips[i-1].Phase
		switch {
		case clips[i].Phase == PhaseDevelopment && prev == PhaseIntro:
			clips[i].Overlay = "quiet everyday life"
		case clips[i].Phase == PhaseClimax && prev == PhaseDevelopment:
			clips[i].Overlay = "the best smiles"
		case clips[i].Phase == PhaseResolution && prev == PhaseClimax:
			clips[i].Overlay = "moments to keep forever"
		}
	}
}

// dominantVibe tallies the clip vibes, then lets the requested focus
// override the raw majority for rendering consistency.
func dominantVibe(clips []Clip, focus Focus) string {
	switch focus {
	case FocusSmile:
		return "cute"
	case FocusActive:
		return enrich.VibeEnergetic
	case FocusEmotional:
		return enrich.VibeEmotional
	case FocusBalance:
		return enrich.VibeCalm
	}

	counts := map[string]int{}
	for _, c := range clips {
		counts[c.Event.Vibe]++
	}
	dominant, best := enrich.VibeCalm, 0
	for vibe, n := range counts {
		if n > best || (n == best && vibe < dominant) {
			dominant, best = vibe, n
		}
	}
	return dominant
}

// SuggestBGM maps a dominant vibe to a background music direction for the
// renderer.
func SuggestBGM(vibe string) string {
	switch vibe {
	case enrich.VibeCalm:
		return "Lo-fi / Acoustic (Soft and warm)"
	case enrich.VibeEnergetic:
		return "Upbeat / Pop (High energy and bright)"
	case enrich.VibeEmotional:
		return "Cinematic / Piano (Dramatic and emotional)"
	case "cute":
		return "Gentle Lofi / Nostalgic (Cute and relaxing)"
	}
	return "Lo-fi / Cinematic MIX"
}
