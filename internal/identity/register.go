package identity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"facereel/internal/enrich"
	"facereel/internal/media"
)

var (
	// ErrNoFace means the registration photo contains no detectable face.
	ErrNoFace = errors.New("no face detected")
	// ErrMultipleFaces means the registration photo is ambiguous.
	ErrMultipleFaces = errors.New("multiple faces detected")
)

// profileIconSize is the edge length of saved profile icons in pixels.
const profileIconSize = 160

// RegisterFromImage extracts a single face from a photo, appends its
// embedding as a new reference for name, persists the registry, and saves a
// padded face crop as the profile icon. The photo must contain exactly one
// face.
func RegisterFromImage(ctx context.Context, reg *Registry, detector media.FaceDetector, imagePath, name, profileDir string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	faces, err := detector.DetectFaces(ctx, data)
	if err != nil {
		return fmt.Errorf("face detection failed: %w", err)
	}
	switch {
	case len(faces) == 0:
		return ErrNoFace
	case len(faces) > 1:
		return fmt.Errorf("%w (%d faces)", ErrMultipleFaces, len(faces))
	}

	reg.Register(name, faces[0].Embedding)
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to persist registry: %w", err)
	}

	// Icon failures are not fatal; the reference is already stored.
	if err := saveProfileIcon(profileDir, name, data, faces[0].Box); err != nil {
		return nil
	}
	return nil
}

// DeleteProfileIcon removes the saved icon for name, if any.
func DeleteProfileIcon(profileDir, name string) {
	os.Remove(filepath.Join(profileDir, name+".jpg"))
}

func saveProfileIcon(profileDir, name string, imageData []byte, box media.Box) error {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("failed to decode registration photo: %w", err)
	}
	iconPath := filepath.Join(profileDir, name+".jpg")
	return enrich.SaveFaceCrop(iconPath, img, box, 0.2, profileIconSize)
}
