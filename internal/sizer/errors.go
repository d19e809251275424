package sizer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is matched by every filesystem failure: an unreadable
	// directory, a missing file, a failed stat, open, write or remove.
	ErrInvalidPath = errors.New("invalid path")
	// ErrInvalidSize is matched when a persisted size field cannot be parsed.
	ErrInvalidSize = errors.New("invalid size")
)

// PathError records a filesystem failure and the path that caused it.
type PathError struct {
	Op   string
	Path string
	Err  error
}

// NewPathError wraps err as a PathError for op on path.
func NewPathError(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Err: err}
}

func (e *PathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Path, ErrInvalidPath)
	}

	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalidPath.
func (e *PathError) Is(target error) bool { return target == ErrInvalidPath }
