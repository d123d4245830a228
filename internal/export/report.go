// SPDX-License-Identifier: MPL-2.0

package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/topomap/topomap/internal/graph"
)

const (
	// FormatDOT is the Graphviz digraph.
	FormatDOT Format = "dot"
	// FormatJSON is the JSON report.
	FormatJSON Format = "json"
	// FormatYAML is the YAML report.
	FormatYAML Format = "yaml"
)

var (
	// ErrInvalidFormat is returned by ParseFormat.
	ErrInvalidFormat = errors.New("invalid output format")
	// ErrOutputWrite is the sentinel wrapped by OutputWriteError.
	ErrOutputWrite = errors.New("output write failed")

	jsonAPI = sonic.ConfigStd
)

type (
	// Format selects the serialization of the analysis result.
	Format string

	// Report is the machine-readable analysis result.
	Report struct {
		RunID       string           `json:"run_id" yaml:"run_id"`
		Root        string           `json:"root" yaml:"root"`
		Incomplete  bool             `json:"incomplete" yaml:"incomplete"`
		Relations   []graph.Snapshot `json:"relations" yaml:"relations"`
		Services    []ServiceReport  `json:"services" yaml:"services"`
		Diagnostics []Diagnostic     `json:"diagnostics" yaml:"diagnostics"`
	}

	// ServiceReport lists the role-bearing classes of one service.
	ServiceReport struct {
		Name    string        `json:"name" yaml:"name"`
		Root    string        `json:"root,omitempty" yaml:"root,omitempty"`
		Skipped bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
		Classes []ClassReport `json:"classes" yaml:"classes"`
	}

	// ClassReport is one classified class and the channels it attached to.
	ClassReport struct {
		ID       string   `json:"id" yaml:"id"`
		Role     string   `json:"role" yaml:"role"`
		Channels []string `json:"channels" yaml:"channels"`
	}

	// Diagnostic is the serialized form of a pipeline diagnostic.
	Diagnostic struct {
		Severity string `json:"severity" yaml:"severity"`
		Code     string `json:"code" yaml:"code"`
		Message  string `json:"message" yaml:"message"`
		Service  string `json:"service,omitempty" yaml:"service,omitempty"`
		Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	}

	// OutputWriteError reports an output that could not be written.
	OutputWriteError struct {
		Path string
		Err  error
	}
)

// ParseFormat accepts dot, json and yaml (or yml).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatDOT, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q (want dot, json or yaml)", ErrInvalidFormat, s)
}

// Error implements the error interface.
func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrOutputWrite and the cause.
func (e *OutputWriteError) Unwrap() []error { return []error{ErrOutputWrite, e.Err} }

// EncodeJSON writes r as indented JSON.
func EncodeJSON(w io.Writer, r *Report) error {
	data, err := jsonAPI.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// EncodeYAML writes r as YAML with two-space indentation.
func EncodeYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// Render serializes the result in format. DOT output only uses set.
func Render(format Format, set *graph.Set, r *Report, opts DOTOptions) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatDOT, "":
		err = WriteDOT(&buf, set, opts)
	case FormatJSON:
		err = EncodeJSON(&buf, r)
	case FormatYAML:
		err = EncodeYAML(&buf, r)
	default:
		err = fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes data to path through a temporary file in the same
// directory, so readers never observe a partial graph.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &OutputWriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &OutputWriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &OutputWriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return &OutputWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return &OutputWriteError{Path: path, Err: err}
	}
	return nil
}
