package store

// Event is one confirmed appearance of a registered person in a video.
// Field names mirror the on-disk JSON document.
type Event struct {
	Time        float64    `json:"t"`           // sample timestamp in seconds
	Happy       float64    `json:"happy"`       // 0-1
	Drama       float64    `json:"drama"`       // surprise+sad+angry+fear, 0-1
	Motion      float64    `json:"motion"`      // 0-10
	FaceRatio   float64    `json:"face_ratio"`  // face area as % of frame
	Distance    float64    `json:"distance"`    // embedding match distance, lower = closer
	Box         [4]float64 `json:"box"`         // top, right, bottom, left in source pixels
	Description string     `json:"description"`
	Vibe        string     `json:"vibe"`
	VisualScore float64    `json:"visual_score"` // 1-10
	Timestamp   string     `json:"timestamp"`    // capture date, "2006-01-02 15:04:05"
	Thumb       string     `json:"thumb,omitempty"`
}

// Day returns the date part of the capture timestamp.
func (e Event) Day() string {
	if len(e.Timestamp) < 10 {
		return e.Timestamp
	}
	return e.Timestamp[:10]
}

// VideoMeta records that a video has been fully scanned and when it was shot.
type VideoMeta struct {
	Month string `json:"month"` // "2006-01"
	Date  string `json:"date"`  // "2006-01-02 15:04:05"
}

// document is the persisted shape of the store: two top-level maps,
// people keyed by name -> video path -> events, and per-video metadata.
type document struct {
	People   map[string]map[string][]Event `json:"people"`
	Metadata map[string]VideoMeta          `json:"metadata"`
}

func newDocument() document {
	return document{
		People:   make(map[string]map[string][]Event),
		Metadata: make(map[string]VideoMeta),
	}
}
