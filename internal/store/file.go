package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileStore persists every entry in a single JSON object keyed by cache key.
// The file is re-read on each call so several processes may share it; writes
// replace the whole file, and the last writer wins.
type FileStore struct {
	path   string
	logger *zap.SugaredLogger
	now    func() time.Time

	// mu serialises read-modify-write cycles inside this process.
	mu sync.Mutex
}

// NewFileStore creates a FileStore backed by path. The file need not exist.
func NewFileStore(path string, logger *zap.SugaredLogger, opts ...Option) *FileStore {
	o := applyOptions(opts)
	return &FileStore{
		path:   path,
		logger: logger,
		now:    o.now,
	}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the entry stored under key, fresh or not.
func (s *FileStore) Get(key string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.load()[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Put stores data under key with the current time, keeping every other key.
func (s *FileStore) Put(key string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries[key] = NewEntry(data, s.now())

	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := writeFileAtomic(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", s.path, err)
	}
	return nil
}

// load reads the whole mapping. A missing, unreadable or corrupt file is an
// empty cache.
func (s *FileStore) load() map[string]Entry {
	entries := make(map[string]Entry)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warnw("cache file unreadable; treating as empty", "path", s.path, "error", err)
		}
		return entries
	}

	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.Warnw("cache file corrupt; treating as empty", "path", s.path, "error", err)
		return make(map[string]Entry)
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}
	return entries
}

// writeFileAtomic writes to a temporary file in the target directory and
// renames it over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
