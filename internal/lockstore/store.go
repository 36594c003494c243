// Package lockstore persists advisory lock records, one file per locked
// resource, in a shared directory.
//
// Each record lives at <dir>/<EncodeKey(file)>. Creation uses exclusive
// file creation, so exactly one of any number of concurrent creators wins,
// whether they run in this process, another process, or another machine
// sharing the directory.
package lockstore

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danieljhkim/sphere/internal/fsops"
	"github.com/danieljhkim/sphere/internal/logging"
)

// Store persists lock records.
type Store interface {
	// Create persists l if no record exists for l.File.
	Create(l *Lock) error

	// Get returns the record for file.
	Get(file string) (*Lock, error)

	// Remove deletes the record for file. It reports whether one existed.
	Remove(file string) (bool, error)

	// List returns every readable record.
	List() (*ListResult, error)
}

// SkippedRecord is a record file List could not use.
type SkippedRecord struct {
	Key string `json:"key"`

	// File is the resource the key encodes, when the key is well formed
	File   string `json:"file,omitempty"`
	Reason string `json:"reason"`
}

// ListResult holds the outcome of a best-effort enumeration.
type ListResult struct {
	Locks   []Lock          `json:"locks"`
	Skipped []SkippedRecord `json:"skipped,omitempty"`
}

// FileStore implements Store over a directory of YAML documents.
type FileStore struct {
	fs     fsops.FS
	dir    string
	logger *logging.Logger
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// on first write.
func NewFileStore(fs fsops.FS, dir string, logger *logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &FileStore{
		fs:     fs,
		dir:    dir,
		logger: logger.WithComponent("lockstore"),
	}
}

// Dir returns the directory records are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) pathFor(file string) (string, error) {
	key, err := EncodeKey(file)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key), nil
}

// Create persists l. It fails with ErrLockExists when a record for the
// same canonical file is already present; it never overwrites.
func (s *FileStore) Create(l *Lock) error {
	path, err := s.pathFor(l.File)
	if err != nil {
		return err
	}

	data, err := MarshalLock(l)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create locks directory: %w", err)
	}

	if err := s.fs.CreateExclusive(path, data, 0644); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w for %q", ErrLockExists, l.File)
		}
		return fmt.Errorf("failed to write lock record for %q: %w", l.File, err)
	}

	return nil
}

// Get reads the record for file. A missing record yields ErrNotFound and a
// corrupt one ErrParse.
func (s *FileStore) Get(file string) (*Lock, error) {
	path, err := s.pathFor(file)
	if err != nil {
		return nil, err
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, file)
		}
		return nil, fmt.Errorf("failed to read lock record for %q: %w", file, err)
	}

	l, err := UnmarshalLock(data)
	if err != nil {
		return nil, fmt.Errorf("lock record for %q: %w", file, err)
	}
	return l, nil
}

// Remove deletes the record for file. Removing an absent record returns
// false and no error.
func (s *FileStore) Remove(file string) (bool, error) {
	path, err := s.pathFor(file)
	if err != nil {
		return false, err
	}

	if err := s.fs.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove lock record for %q: %w", file, err)
	}
	return true, nil
}

// List reads every record in the store. Records that cannot be read or
// decoded are reported in Skipped rather than failing the call. Locks are
// sorted by file.
func (s *FileStore) List() (*ListResult, error) {
	result := &ListResult{Locks: []Lock{}}

	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read locks directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isRecordName(name) {
			continue
		}

		data, err := s.fs.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			// Released between ReadDir and ReadFile.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			s.skip(result, name, err)
			continue
		}

		l, err := UnmarshalLock(data)
		if err != nil {
			s.skip(result, name, err)
			continue
		}
		result.Locks = append(result.Locks, *l)
	}

	sort.Slice(result.Locks, func(i, j int) bool {
		return result.Locks[i].File < result.Locks[j].File
	})

	return result, nil
}

func (s *FileStore) skip(result *ListResult, key string, err error) {
	s.logger.Warn("skipping unreadable lock record", "key", key, "error", err)
	rec := SkippedRecord{Key: key, Reason: err.Error()}
	if file, decErr := DecodeKey(strings.TrimSuffix(key, ".yml")); decErr == nil {
		rec.File = file
	}
	result.Skipped = append(result.Skipped, rec)
}

func isRecordName(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
