// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "test.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		originalErr := errors.New("some error")
		err := FormatError(originalErr, "test.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "test.cue") || !strings.Contains(err.Error(), "some error") {
			t.Errorf("unexpected message: %v", err)
		}
		if !errors.Is(err, originalErr) {
			t.Error("wrapped error should unwrap to the original")
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{name: "empty path", path: nil, expected: ""},
		{name: "single field", path: []string{"root"}, expected: "root"},
		{name: "nested path", path: []string{"output", "format"}, expected: "output.format"},
		{name: "list index", path: []string{"services", "0", "name"}, expected: "services[0].name"},
		{
			name:     "multiple indices",
			path:     []string{"services", "1", "classes", "12", "role"},
			expected: "services[1].classes[12].role",
		},
		{name: "leading number is a field", path: []string{"0", "x"}, expected: "0.x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize([]byte("hello"), 100, "a.cue"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := CheckFileSize([]byte("hello world"), 5, "a.cue")
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("expected size error, got %v", err)
	}
}
