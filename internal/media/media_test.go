package media

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "http://localhost:5000/")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestSaveStoresUnderFreshName(t *testing.T) {
	s := newTestStore(t)
	content := []byte("fake png bytes")

	up, err := s.Save("product photo.PNG", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !strings.HasSuffix(up.Name, ".png") {
		t.Errorf("Name = %q, want lowercased .png suffix", up.Name)
	}
	if _, err := uuid.Parse(strings.TrimSuffix(up.Name, ".png")); err != nil {
		t.Errorf("Name %q is not uuid-based: %v", up.Name, err)
	}
	if up.URL != "http://localhost:5000/media/"+up.Name {
		t.Errorf("URL = %q", up.URL)
	}
	if up.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", up.Size, len(content))
	}

	f, err := s.Open(up.Name)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	stored, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Error("stored bytes differ from upload")
	}
}

func TestSaveRejectsUnsupportedExtension(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"malware.exe", "notes.txt", "noext", "archive.tar.gz"} {
		if _, err := s.Save(name, strings.NewReader("x")); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Save(%q) = %v, want ErrUnsupportedType", name, err)
		}
	}
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	s := newTestStore(t)

	big := bytes.NewReader(make([]byte, MaxUploadBytes+1))
	if _, err := s.Save("huge.png", big); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Save(oversized) = %v, want ErrTooLarge", err)
	}

	// Rejected uploads must not leave temp files behind.
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("media dir has %d leftover entries", len(entries))
	}
}

func TestOpenRejectsPathTraversal(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", "../../etc/passwd", "sub/dir.png", ".."} {
		if _, err := s.Open(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open(%q) = %v, want ErrNotFound", name, err)
		}
	}
	if _, err := s.Open(uuid.New().String() + ".png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open(missing) = %v, want ErrNotFound", err)
	}
}

func TestURLTrimsTrailingSlash(t *testing.T) {
	for _, base := range []string{"http://shop.example.com", "http://shop.example.com/"} {
		s, err := NewStore(filepath.Join(t.TempDir(), "m"), base)
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}
		if got := s.URL("a.png"); got != "http://shop.example.com/media/a.png" {
			t.Errorf("URL() = %q", got)
		}
	}
}
