// Package storage persists serialized vault containers to a durable medium
// with a crash-safe write protocol. The Medium interface is the only contact
// with the underlying filesystem; the device build implements it over flash,
// the host build over a directory.
package storage

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Medium abstracts the storage device. Paths are slash-separated and relative
// to the medium root.
type Medium interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Rename(oldPath, newPath string) error
	Remove(path string) error
	// List returns the base names of the regular files in dir.
	List(dir string) ([]string, error)
	// FreeBytes reports the space currently available for new data.
	FreeBytes() (uint64, error)
}

// OSMedium implements Medium over a directory on the host filesystem.
type OSMedium struct {
	root string
}

// NewOSMedium creates the root directory if needed and returns a medium
// rooted at it.
func NewOSMedium(root string) (*OSMedium, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, errors.Wrap(err, "storage: create medium root")
	}
	return &OSMedium{root: root}, nil
}

func (m *OSMedium) abs(p string) string {
	return filepath.Join(m.root, filepath.FromSlash(p))
}

func (m *OSMedium) Exists(path string) bool {
	_, err := os.Stat(m.abs(path))
	return err == nil
}

func (m *OSMedium) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(m.abs(path))
}

// WriteFile writes data and syncs it to the device before returning, so a
// later rename never promotes a half-written file.
func (m *OSMedium) WriteFile(path string, data []byte) error {
	target := m.abs(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (m *OSMedium) Rename(oldPath, newPath string) error {
	return os.Rename(m.abs(oldPath), m.abs(newPath))
}

func (m *OSMedium) Remove(path string) error {
	return os.Remove(m.abs(path))
}

func (m *OSMedium) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(m.abs(dir))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (m *OSMedium) FreeBytes() (uint64, error) {
	return freeBytes(m.root)
}
