// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// Process exit codes reported by the topomap CLI. Each analysis failure class
// has its own code so scripts can branch on the cause without parsing stderr.
const (
	// ExitOK means the analysis completed and every output was written.
	ExitOK ExitCode = 0
	// ExitFailure is the catch-all for errors without a dedicated code.
	ExitFailure ExitCode = 1
	// ExitUsage covers invalid flags and invalid configuration.
	ExitUsage ExitCode = 2
	// ExitRegistryAccess means the channel naming source could not be read.
	ExitRegistryAccess ExitCode = 3
	// ExitServiceNotFound means a configured service had no source subtree.
	ExitServiceNotFound ExitCode = 4
	// ExitFilesystem means a directory under the analysed root could not be listed.
	ExitFilesystem ExitCode = 5
	// ExitClassResolution means a discovered class could not be resolved (strict mode).
	ExitClassResolution ExitCode = 6
	// ExitOutputWrite means the graph, report or metrics file could not be written.
	ExitOutputWrite ExitCode = 7
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates a completed run.
func (c ExitCode) IsSuccess() bool { return c == ExitOK }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
