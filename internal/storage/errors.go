// Package storage persists job postings, evaluation records and resume files
// under the data directory.
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage is matched by every *Error.
	ErrStorage = errors.New("storage error")
	// ErrNotFound is returned when a posting or evaluation does not exist.
	ErrNotFound = errors.New("not found")
)

// Error describes a failed storage operation.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Path: path, Err: err}
}
