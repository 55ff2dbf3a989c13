package enrich

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// visualSampleSize bounds the working resolution for the visual score so the
// cost stays flat regardless of source resolution.
const visualSampleSize = 320

// VisualScore rates frame quality on a [1,10] scale from three cheap signals:
// sharpness (gradient-magnitude variance), color saturation, and contrast.
// Sharpness contributes up to 7 points, saturation up to 2, contrast up to 1.
func VisualScore(img image.Image) float64 {
	small := downscale(img, visualSampleSize)
	gray, sat := grayAndSaturation(small)

	sharpness := math.Min(7.0, gradientVariance(gray)/70.0)
	saturation := sat * 2.0
	contrast := stddev(gray) / 128.0

	score := 1.0 + sharpness + saturation + contrast
	if score > 10.0 {
		score = 10.0
	}
	return math.Round(score*10) / 10
}

// downscale resizes so the longer edge is at most maxDim, keeping aspect.
func downscale(img image.Image, maxDim int) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}

	var nw, nh int
	if w > h {
		nw = maxDim
		nh = h * maxDim / w
	} else {
		nh = maxDim
		nw = w * maxDim / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// grayAndSaturation converts to a grayscale grid (0-255) and computes the
// mean HSV saturation (0-1) in one pass.
func grayAndSaturation(img *image.RGBA) ([][]float64, float64) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	gray := make([][]float64, w)
	var satSum float64
	for x := 0; x < w; x++ {
		gray[x] = make([]float64, h)
		for y := 0; y < h; y++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rf, gf, bf := float64(r>>8), float64(g>>8), float64(b>>8)

			// ITU-R BT.601 luma formula.
			gray[x][y] = 0.299*rf + 0.587*gf + 0.114*bf

			cMax := math.Max(rf, math.Max(gf, bf))
			cMin := math.Min(rf, math.Min(gf, bf))
			if cMax > 0 {
				satSum += (cMax - cMin) / cMax
			}
		}
	}
	return gray, satSum / float64(w*h)
}

// gradientVariance returns the variance of the gradient magnitude over the
// interior pixels — a blur detector in the same spirit as Laplacian variance.
func gradientVariance(gray [][]float64) float64 {
	w := len(gray)
	if w < 3 {
		return 0
	}
	h := len(gray[0])
	if h < 3 {
		return 0
	}

	mags := make([]float64, 0, (w-2)*(h-2))
	for x := 1; x < w-1; x++ {
		for y := 1; y < h-1; y++ {
			gx := gray[x+1][y] - gray[x-1][y]
			gy := gray[x][y+1] - gray[x][y-1]
			mags = append(mags, math.Sqrt(gx*gx+gy*gy))
		}
	}

	var mean float64
	for _, m := range mags {
		mean += m
	}
	mean /= float64(len(mags))

	var variance float64
	for _, m := range mags {
		variance += (m - mean) * (m - mean)
	}
	return variance / float64(len(mags))
}

// stddev returns the standard deviation of a grayscale grid.
func stddev(gray [][]float64) float64 {
	w := len(gray)
	if w == 0 {
		return 0
	}
	h := len(gray[0])
	n := float64(w * h)

	var mean float64
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			mean += gray[x][y]
		}
	}
	mean /= n

	var variance float64
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			d := gray[x][y] - mean
			variance += d * d
		}
	}
	return math.Sqrt(variance / n)
}
