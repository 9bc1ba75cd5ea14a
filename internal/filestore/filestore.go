// Package filestore validates and persists uploaded media files.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned when a file extension is not in the
// allow-list for its kind.
var ErrUnsupportedType = errors.New("unsupported media type")

// Kind restricts which extensions a saved file may have.
type Kind int

// Supported media kinds.
const (
	Image Kind = iota
	Video
)

// nolint:gochecknoglobals
var allowedExts = map[Kind]map[string]struct{}{
	Image: {".png": {}, ".jpg": {}, ".jpeg": {}},
	Video: {".mp4": {}, ".webp": {}},
}

// Store persists uploads into a single directory under generated names.
type Store struct {
	dir string
}

// New creates the upload directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the directory files are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Save validates the upload against the allow-list for kind and persists it
// under a generated unique name. Nothing is written for rejected files.
func (s *Store) Save(fh *multipart.FileHeader, kind Kind) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))

	if _, ok := allowedExts[kind][ext]; !ok {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext

	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())

		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return name, nil
}

// Remove deletes a previously saved file, callers use it to roll back an
// upload whose owning record was never created.
func (s *Store) Remove(name string) error {
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}
