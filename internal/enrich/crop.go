package enrich

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"facereel/internal/media"
)

// cropPadded extracts the face region with proportional padding, clamped to
// the frame bounds.
func cropPadded(img image.Image, box media.Box, pad float64) image.Image {
	bounds := img.Bounds()

	padH := int(box.Height() * pad)
	padW := int(box.Width() * pad)

	top := max(bounds.Min.Y, int(box.Top)-padH)
	bottom := min(bounds.Max.Y, int(box.Bottom)+padH)
	left := max(bounds.Min.X, int(box.Left)-padW)
	right := min(bounds.Max.X, int(box.Right)+padW)

	if right <= left || bottom <= top {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	dst := image.NewRGBA(image.Rect(0, 0, right-left, bottom-top))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(left, top), draw.Src)
	return dst
}

// resizeSquare scales an image to a size x size square.
func resizeSquare(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// SaveFaceCrop writes a padded, square-resized face crop as JPEG. Used for
// both event thumbnails and profile icons.
func SaveFaceCrop(path string, img image.Image, box media.Box, pad float64, size int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	crop := resizeSquare(cropPadded(img, box, pad), size)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, crop, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// EncodeFaceJPEG encodes the unpadded face crop as JPEG bytes for the
// expression classifier.
func EncodeFaceJPEG(img image.Image, box media.Box) ([]byte, error) {
	crop := cropPadded(img, box, 0)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, crop, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode face crop: %w", err)
	}
	return buf.Bytes(), nil
}
