// SPDX-License-Identifier: MPL-2.0

package scanner

import (
	"errors"
	"fmt"
	"io/fs"
)

const (
	// KindNotExist means the path does not exist.
	KindNotExist FilesystemErrorKind = "not-exist"
	// KindPermission means the path could not be read due to permissions.
	KindPermission FilesystemErrorKind = "permission-denied"
	// KindOther is any other I/O failure.
	KindOther FilesystemErrorKind = "other"
)

var (
	// ErrServiceNotFound is the sentinel wrapped by ServiceNotFoundError.
	ErrServiceNotFound = errors.New("service not found")
	// ErrFilesystem is the sentinel wrapped by FilesystemError.
	ErrFilesystem = errors.New("filesystem error")
)

type (
	// FilesystemErrorKind classifies a FilesystemError.
	FilesystemErrorKind string

	// ServiceNotFoundError is returned when no directory under Root matches Service.
	ServiceNotFoundError struct {
		Service string
		Root    string
	}

	// FilesystemError is returned when a directory cannot be listed.
	FilesystemError struct {
		Path string
		Kind FilesystemErrorKind
		Err  error
	}
)

// Error implements the error interface.
func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("no directory for service %q under %s", e.Service, e.Root)
}

// Unwrap returns ErrServiceNotFound.
func (e *ServiceNotFoundError) Unwrap() error { return ErrServiceNotFound }

// Error implements the error interface.
func (e *FilesystemError) Error() string {
	return fmt.Sprintf("cannot list %s (%s): %v", e.Path, e.Kind, e.Err)
}

// Unwrap returns ErrFilesystem and the underlying cause.
func (e *FilesystemError) Unwrap() []error { return []error{ErrFilesystem, e.Err} }

// NewFilesystemError classifies err for path.
func NewFilesystemError(path string, err error) *FilesystemError {
	kind := KindOther
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotExist
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermission
	}
	return &FilesystemError{Path: path, Kind: kind, Err: err}
}
