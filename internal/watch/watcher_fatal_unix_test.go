// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestFatalWatchErrors(t *testing.T) {
	t.Parallel()

	serviceDir := "service-inbound-processing/src/main/java/com/sitewhere/inbound/kafka"
	addWatch := func(errno syscall.Errno) error {
		return &os.SyscallError{Syscall: "inotify_add_watch", Err: errno}
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"watch limit while adding a service tree", fmt.Errorf("watch %s: %w", serviceDir, addWatch(syscall.ENOSPC)), true},
		{"watch limit while registering the root", fmt.Errorf("register watch root: %w", fmt.Errorf("watch .: %w", syscall.ENOSPC)), true},
		{"process descriptor limit", addWatch(syscall.EMFILE), true},
		{"system descriptor limit", addWatch(syscall.ENFILE), true},
		{"joined with a benign error", errors.Join(errors.New("rename topomap.cue"), syscall.ENOSPC), true},
		{"unreadable service directory", fmt.Errorf("watch %s: %w", serviceDir, addWatch(syscall.EACCES)), false},
		{"removed service directory", fmt.Errorf("watch %s: %w", serviceDir, syscall.ENOENT), false},
		{"event queue overflow", fsnotify.ErrEventOverflow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isFatalFsnotifyError(tt.err); got != tt.want {
				t.Errorf("isFatalFsnotifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
