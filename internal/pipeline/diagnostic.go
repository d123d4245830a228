// SPDX-License-Identifier: MPL-2.0

package pipeline

import "github.com/charmbracelet/log"

const (
	// SeverityWarning is a recoverable problem; the run result is still usable.
	SeverityWarning Severity = "warning"
	// SeverityError is a problem that dropped part of the input.
	SeverityError Severity = "error"
)

// Diagnostic codes.
const (
	CodeRegistryMemberSkipped  = "registry_member_skipped"
	CodeSourceProblem          = "source_problem"
	CodeServiceNotFound        = "service_not_found"
	CodeFilesystem             = "filesystem_error"
	CodeClassResolution        = "class_resolution_failed"
	CodeDegenerateName         = "degenerate_name"
	CodeUnknownChannel         = "unknown_channel"
	CodeOverrideUnknownChannel = "override_unknown_channel"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic is a non-fatal problem found during a run. Diagnostics are
	// returned to the caller rather than printed so the CLI owns rendering.
	Diagnostic struct {
		Severity Severity
		// Code is a machine-readable identifier such as "service_not_found".
		Code    string
		Message string
		// Service is the service being processed, if any.
		Service string
		// Path is the file or directory involved, if any.
		Path string
		// Cause is the underlying error, if any.
		Cause error
	}
)

func (d Diagnostic) log(l *log.Logger) {
	kv := []any{"code", d.Code}
	if d.Service != "" {
		kv = append(kv, "service", d.Service)
	}
	if d.Path != "" {
		kv = append(kv, "path", d.Path)
	}
	if d.Cause != nil {
		kv = append(kv, "err", d.Cause)
	}
	if d.Severity == SeverityError {
		l.Error(d.Message, kv...)
		return
	}
	l.Warn(d.Message, kv...)
}
