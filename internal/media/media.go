// Package media stores uploaded images on disk and hands back the URLs
// the catalog records carry. Files are renamed to UUIDs on save so
// uploads never collide or leak original filenames.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadBytes caps a single upload at 8 MiB.
const MaxUploadBytes = 8 << 20

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file exceeds upload limit")
	ErrNotFound        = errors.New("media file not found")
)

// allowedExtensions lists the image types accepted for upload.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Upload describes one stored file.
type Upload struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Store persists uploads under a single directory.
type Store struct {
	dir     string
	baseURL string
}

// NewStore creates the media directory if needed. baseURL is the public
// address uploads are served from, without the /media suffix.
func NewStore(dir, baseURL string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("media dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes the upload to disk under a fresh UUID name, preserving the
// original extension. The write is atomic: temp file, fsync, rename.
func (s *Store) Save(filename string, r io.Reader) (Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return Upload{}, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*.tmp")
	if err != nil {
		return Upload{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	size, err := io.Copy(tmp, io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Upload{}, fmt.Errorf("writing upload: %w", err)
	}
	if size > MaxUploadBytes {
		tmp.Close()
		os.Remove(tmpName)
		return Upload{}, ErrTooLarge
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Upload{}, fmt.Errorf("syncing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Upload{}, fmt.Errorf("closing upload: %w", err)
	}

	name := uuid.New().String() + ext
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return Upload{}, fmt.Errorf("renaming upload: %w", err)
	}

	return Upload{Name: name, URL: s.URL(name), Size: size}, nil
}

// Open returns the stored file for serving. Only flat names produced by
// Save are valid; anything path-like is rejected.
func (s *Store) Open(name string) (*os.File, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening media %s: %w", name, err)
	}
	return f, nil
}

// URL returns the public address for a stored file name.
func (s *Store) URL(name string) string {
	return s.baseURL + "/media/" + name
}
