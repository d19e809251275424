package logstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/idelchi/sizer/internal/sizer"
)

// Store reads and writes the ranked list at a single log path.
// It holds no open file between calls.
type Store struct {
	path string
	log  *zap.SugaredLogger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// New returns a Store backed by the log file at path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		log:  zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Path returns the location of the log file.
func (s *Store) Path() string {
	return s.path
}

// withFile opens the log for reading and writing, creating it and its parent
// directory if absent, and hands it to fn. The file is always closed.
func (s *Store) withFile(fn func(*os.File) error) (err error) {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return sizer.NewPathError("create", dir, err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return sizer.NewPathError("open", s.path, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, sizer.NewPathError("close", s.path, cerr))
		}
	}()

	return fn(f)
}

// Save replaces the log with list, one line per entry in rank order.
// Paths are made absolute and symlink-free first; if any path cannot be
// resolved the log is left untouched. The write is synced before returning.
func (s *Store) Save(list sizer.Ranked) error {
	canonical := make(sizer.Ranked, 0, len(list))

	for _, e := range list {
		path, err := canonicalize(e.Path)
		if err != nil {
			return err
		}

		canonical = append(canonical, sizer.FileEntry{Path: path, Size: e.Size})
	}

	err := s.withFile(func(f *os.File) error {
		if err := f.Truncate(0); err != nil {
			return sizer.NewPathError("truncate", s.path, err)
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return sizer.NewPathError("seek", s.path, err)
		}

		w := bufio.NewWriter(f)
		if _, err := w.WriteString(Encode(canonical)); err != nil {
			return sizer.NewPathError("write", s.path, err)
		}

		if err := w.Flush(); err != nil {
			return sizer.NewPathError("write", s.path, err)
		}

		if err := f.Sync(); err != nil {
			return sizer.NewPathError("sync", s.path, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debugw("log saved", "path", s.path, "entries", len(canonical))

	return nil
}

// Render returns the raw contents of the log, exactly as Load would read them.
func (s *Store) Render() (string, error) {
	var data []byte

	err := s.withFile(func(f *os.File) error {
		var err error

		data, err = io.ReadAll(f)
		if err != nil {
			return sizer.NewPathError("read", s.path, err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Load reads the ranked list back from the log. An empty or new log yields
// an empty list. Any malformed line fails the whole load.
func (s *Store) Load() (sizer.Ranked, error) {
	data, err := s.Render()
	if err != nil {
		return nil, err
	}

	list, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", s.path, err)
	}

	s.log.Debugw("log loaded", "path", s.path, "entries", len(list))

	return list, nil
}

// Delete removes the file behind the entry at the 1-based rank index.
//
// An index of zero or beyond the end of list is a no-op and reports false.
// The log itself is not rewritten; a later scan and Save drops the entry.
func (s *Store) Delete(list sizer.Ranked, index int) (sizer.FileEntry, bool, error) {
	if index < 1 || index > len(list) {
		s.log.Debugw("delete index out of range", "index", index, "entries", len(list))

		return sizer.FileEntry{}, false, nil
	}

	entry := list[index-1]

	if err := os.Remove(entry.Path); err != nil {
		return sizer.FileEntry{}, false, sizer.NewPathError("remove", entry.Path, err)
	}

	s.log.Debugw("file removed", "index", index, "path", entry.Path, "size", entry.Size)

	return entry, true, nil
}

// canonicalize returns the absolute, symlink-resolved form of path.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", sizer.NewPathError("resolve", path, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", sizer.NewPathError("resolve", abs, err)
	}

	return resolved, nil
}
