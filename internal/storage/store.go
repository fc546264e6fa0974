package storage

import (
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	vaultSuffix = ".vault"
	tmpSuffix   = ".tmp"
	bakSuffix   = ".bak"
)

var (
	// ErrInsufficientSpace rejects a write before any byte is consumed.
	ErrInsufficientSpace = errors.New("storage: insufficient free space")
	// ErrNotFound is returned when no live file exists under the given name.
	ErrNotFound = errors.New("storage: vault not found")
)

// Store persists vault containers under logical names inside one directory of
// a Medium. A write is atomic at rename granularity: at every point before
// the final rename, the previous valid file is still live or recoverable at
// its .bak path.
type Store struct {
	medium Medium
	dir    string
}

// NewStore returns a store writing <dir>/<name>.vault files on medium.
func NewStore(medium Medium, dir string) *Store {
	return &Store{medium: medium, dir: dir}
}

func (s *Store) livePath(name string) string {
	return path.Join(s.dir, name+vaultSuffix)
}

// Save runs the crash-safe sequence: admission check, full write to the .tmp
// path, demotion of the current live file to .bak, and the final rename that
// makes the new content visible. A failed final rename removes the temp file
// and leaves the previous version recoverable.
func (s *Store) Save(name string, data []byte) error {
	free, err := s.medium.FreeBytes()
	if err != nil {
		return errors.Wrap(err, "storage: query free space")
	}
	if uint64(len(data)) > free {
		return ErrInsufficientSpace
	}

	live := s.livePath(name)
	tmp := live + tmpSuffix
	bak := live + bakSuffix

	if err := s.medium.WriteFile(tmp, data); err != nil {
		return errors.Wrap(err, "storage: write temp file")
	}
	if s.medium.Exists(bak) {
		if err := s.medium.Remove(bak); err != nil {
			_ = s.medium.Remove(tmp)
			return errors.Wrap(err, "storage: drop old backup")
		}
	}
	if s.medium.Exists(live) {
		if err := s.medium.Rename(live, bak); err != nil {
			_ = s.medium.Remove(tmp)
			return errors.Wrap(err, "storage: demote live file")
		}
	}
	if err := s.medium.Rename(tmp, live); err != nil {
		_ = s.medium.Remove(tmp)
		return errors.Wrap(err, "storage: promote temp file")
	}
	return nil
}

// Load returns the serialized bytes of the live vault file.
func (s *Store) Load(name string) ([]byte, error) {
	live := s.livePath(name)
	if !s.medium.Exists(live) {
		return nil, ErrNotFound
	}
	data, err := s.medium.ReadFile(live)
	if err != nil {
		return nil, errors.Wrap(err, "storage: read vault")
	}
	return data, nil
}

// Exists reports whether a live vault file is present under name.
func (s *Store) Exists(name string) bool {
	return s.medium.Exists(s.livePath(name))
}

// Delete removes the live vault file. The backup, if any, is kept.
func (s *Store) Delete(name string) error {
	live := s.livePath(name)
	if !s.medium.Exists(live) {
		return ErrNotFound
	}
	return errors.Wrap(s.medium.Remove(live), "storage: delete vault")
}

// ListBackups enumerates the live vault files in the store directory and
// returns their logical names, suffix stripped and sorted.
func (s *Store) ListBackups() ([]string, error) {
	files, err := s.medium.List(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "storage: list store directory")
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		base := path.Base(f)
		if strings.HasSuffix(base, vaultSuffix) {
			names = append(names, strings.TrimSuffix(base, vaultSuffix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// RestoreBackup promotes <name>.vault.bak back to the live slot through the
// same tmp/rename discipline as Save, so the current live file (if any)
// becomes the new backup and is never destroyed before the promoted copy is
// fully in place.
func (s *Store) RestoreBackup(name string) error {
	bak := s.livePath(name) + bakSuffix
	if !s.medium.Exists(bak) {
		return ErrNotFound
	}
	data, err := s.medium.ReadFile(bak)
	if err != nil {
		return errors.Wrap(err, "storage: read backup")
	}
	return s.Save(name, data)
}
