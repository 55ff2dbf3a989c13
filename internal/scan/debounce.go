package scan

import "facereel/internal/media"

// Observation is one raw face match at a sampled frame. Observations are
// ephemeral; only confirmed ones become events.
type Observation struct {
	Time      float64 // sample timestamp in seconds
	Box       media.Box
	FaceRatio float64 // % of frame area
	Distance  float64 // match distance
	Motion    float64 // frame motion score at this sample
}

// Debouncer gates raw per-frame matches into confirmed appearances, one gate
// per identity within a single video. A single-frame match is usually a
// transient pose change, so confirmation requires two consecutive samples;
// the held first observation is then emitted retroactively so the true onset
// frame is not lost.
type Debouncer struct {
	pending     map[string]Observation
	lastEmitted map[string]float64
}

func NewDebouncer() *Debouncer {
	return &Debouncer{
		pending:     make(map[string]Observation),
		lastEmitted: make(map[string]float64),
	}
}

// Observe advances every identity's gate by one sampled frame. matched holds
// the identities present in this frame with their best observation. The
// returned map contains newly confirmed observations per identity, in
// chronological order; during a continuous run each sample is confirmed
// exactly once.
func (d *Debouncer) Observe(matched map[string]Observation) map[string][]Observation {
	// Identities absent from this frame lose their pending observation
	// unconditionally.
	for name := range d.pending {
		if _, ok := matched[name]; !ok {
			delete(d.pending, name)
		}
	}

	var confirmed map[string][]Observation
	for name, obs := range matched {
		prev, wasPending := d.pending[name]
		d.pending[name] = obs
		if !wasPending {
			continue
		}

		if confirmed == nil {
			confirmed = make(map[string][]Observation)
		}
		// The held observation was already emitted if this is the third or
		// later sample of an unbroken run.
		if last, seen := d.lastEmitted[name]; !seen || last != prev.Time {
			confirmed[name] = append(confirmed[name], prev)
		}
		confirmed[name] = append(confirmed[name], obs)
		d.lastEmitted[name] = obs.Time
	}
	return confirmed
}
