package kv

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
)

// MaxValueLen bounds a single stored value, mirroring the size limits of
// browser origin storage.
const MaxValueLen = 5 << 20

// FileStore keeps the whole key space in one JSON document on disk. Every
// Set or Delete rewrites the file through an atomic rename, so a crash
// leaves either the old or the new content, never a torn write. There is no
// cross-process locking: concurrent writers race and the last one wins.
type FileStore struct {
	path string

	mu sync.Mutex
	m  map[string]string
}

// OpenFile loads the store at path, creating parent directories as needed.
// A missing file starts empty. Unreadable content also starts empty: the
// store recovers best-effort rather than refusing to run, and the caller
// may inspect the returned bool to log the discarded state.
func OpenFile(path string) (*FileStore, bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, false, errors.Wrap(err, "create store directory")
	}

	s := &FileStore{path: path, m: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read store file")
	}

	if err := json.Unmarshal(data, &s.m); err != nil {
		s.m = make(map[string]string)
		return s, true, nil
	}
	return s, false, nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	if len(value) > MaxValueLen {
		return ErrValueTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.m[key]
	s.m[key] = value
	if err := s.flushLocked(); err != nil {
		// Keep memory and disk consistent on failure.
		if had {
			s.m[key] = prev
		} else {
			delete(s.m, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.m[key]
	if !had {
		return nil
	}
	delete(s.m, key)
	if err := s.flushLocked(); err != nil {
		s.m[key] = prev
		return err
	}
	return nil
}

// flushLocked writes the current map to disk via a temp file and rename.
// Caller must hold s.mu.
func (s *FileStore) flushLocked() error {
	data, err := json.Marshal(s.m)
	if err != nil {
		return errors.Wrap(err, "encode store")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write store file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replace store file")
	}
	return nil
}
