// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFilesystemPath_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path FilesystemPath
		want bool
	}{
		{"absolute path", FilesystemPath("/srv/sitewhere"), true},
		{"relative path", FilesystemPath("service-device-management"), true},
		{"dot path", FilesystemPath("."), true},
		{"empty is invalid", FilesystemPath(""), false},
		{"whitespace only is invalid", FilesystemPath("   "), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.path.Validate()
			if (err == nil) != tt.want {
				t.Errorf("FilesystemPath(%q).Validate() error = %v, wantValid %v", tt.path, err, tt.want)
			}
			if !tt.want && !errors.Is(err, ErrInvalidFilesystemPath) {
				t.Errorf("error does not wrap ErrInvalidFilesystemPath: %v", err)
			}
		})
	}
}

func TestFilesystemPath_Join(t *testing.T) {
	t.Parallel()

	got := FilesystemPath("root").Join("src", "main", "java")
	want := FilesystemPath(filepath.Join("root", "src", "main", "java"))
	if got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
	if base := got.Base(); base != "java" {
		t.Errorf("Base() = %q, want %q", base, "java")
	}
}
