package scan

import "image"

// Motion is sampled on a coarse fixed grid; full-resolution differencing
// buys nothing at one-second intervals.
const (
	motionGridW = 64
	motionGridH = 36
)

// motionTracker scores inter-sample motion as the mean absolute grayscale
// difference between consecutive sampled frames, scaled to roughly 0-10.
type motionTracker struct {
	prev []float64
}

func (m *motionTracker) score(img image.Image) float64 {
	grid := grayGrid(img)
	if m.prev == nil {
		m.prev = grid
		return 0
	}

	var sum float64
	for i := range grid {
		d := grid[i] - m.prev[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	m.prev = grid
	return sum / float64(len(grid)) / 25.5
}

// grayGrid samples the image down to the motion grid as luma values (0-255).
func grayGrid(img image.Image) []float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	grid := make([]float64, motionGridW*motionGridH)
	if w == 0 || h == 0 {
		return grid
	}

	for gy := 0; gy < motionGridH; gy++ {
		for gx := 0; gx < motionGridW; gx++ {
			x := bounds.Min.X + gx*w/motionGridW
			y := bounds.Min.Y + gy*h/motionGridH
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma formula.
			grid[gy*motionGridW+gx] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return grid
}
