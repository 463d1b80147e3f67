// Package avatar stores profile pictures. Uploaded images are normalized to
// small JPEG thumbnails under random names so the original file name never
// reaches the filesystem.
package avatar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/user/innate-go/apperror"
)

// DefaultImage is the sentinel avatar assigned at registration. It is never
// deleted.
const DefaultImage = "default.jpg"

// thumbnailSize is the square edge, in pixels, every avatar is resized to.
const thumbnailSize = 125

// Store writes avatars into a single directory.
type Store struct {
	dir string
}

// NewStore creates the storage directory if needed and returns a Store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory avatars are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Save decodes the uploaded image, resizes it to a thumbnail, and writes it
// under a fresh random name. The returned name is what the user record should
// reference.
func (s *Store) Save(r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", apperror.NewValidationError("uploaded file is not a supported image", err)
	}

	thumb := imaging.Thumbnail(img, thumbnailSize, thumbnailSize, imaging.Lanczos)

	name := uuid.NewString() + ".jpg"
	if err := imaging.Save(thumb, filepath.Join(s.dir, name)); err != nil {
		return "", apperror.NewInternalError("failed to store profile picture", err)
	}
	return name, nil
}

// Remove deletes a previously stored avatar. The default sentinel is kept,
// and a file that is already gone is not an error.
func (s *Store) Remove(name string) error {
	if name == "" || name == DefaultImage {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove avatar %s: %w", name, err)
	}
	return nil
}
