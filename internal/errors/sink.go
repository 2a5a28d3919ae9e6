package errors

import (
	"errors"
	"fmt"
)

// DependencyMissingError is returned when a sink backend is not compiled in or disabled.
type DependencyMissingError struct {
	Backend string
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("%s backend is not available", e.Backend)
}

// NewDependencyMissingError creates a DependencyMissingError for the named backend.
func NewDependencyMissingError(backend string) *DependencyMissingError {
	return &DependencyMissingError{Backend: backend}
}

// IsDependencyMissingError reports whether err is a DependencyMissingError (even when wrapped).
func IsDependencyMissingError(err error) bool {
	var depErr *DependencyMissingError
	return errors.As(err, &depErr)
}

// SinkWriteError wraps a failure while applying assignments to a sink.
type SinkWriteError struct {
	Sink string
	Err  error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("%s write: %v", e.Sink, e.Err)
}

func (e *SinkWriteError) Unwrap() error {
	return e.Err
}

// NewSinkWriteError creates a SinkWriteError for the named sink.
func NewSinkWriteError(sink string, err error) *SinkWriteError {
	return &SinkWriteError{Sink: sink, Err: err}
}

// IsSinkWriteError reports whether err is a SinkWriteError (even when wrapped).
func IsSinkWriteError(err error) bool {
	var writeErr *SinkWriteError
	return errors.As(err, &writeErr)
}

// RowStoreError describes a failed row store operation.
type RowStoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *RowStoreError) Error() string {
	return fmt.Sprintf("row store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RowStoreError) Unwrap() error {
	return e.Err
}

// NewRowStoreError creates a RowStoreError for the given operation and store path.
func NewRowStoreError(op, path string, err error) *RowStoreError {
	return &RowStoreError{Op: op, Path: path, Err: err}
}

// IsRowStoreError reports whether err is a RowStoreError (even when wrapped).
func IsRowStoreError(err error) bool {
	var storeErr *RowStoreError
	return errors.As(err, &storeErr)
}
