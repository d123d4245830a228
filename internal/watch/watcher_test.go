// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.fired <- struct{}{}
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func startWatcher(t *testing.T, cfg Config) (cancel func() error) {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	return func() error {
		stop()
		return <-errCh
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("class A {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitFired(t *testing.T, r *recorder) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
	}
}

func TestWatcherCoalescesEvents(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pkg := filepath.Join(root, "svc", "kafka")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}

	rec := newRecorder()
	stop := startWatcher(t, Config{Root: root, Debounce: 100 * time.Millisecond, OnChange: rec.onChange})

	for _, name := range []string{"BProducer.java", "AConsumer.java"} {
		writeFile(t, filepath.Join(pkg, name))
		time.Sleep(10 * time.Millisecond)
	}
	waitFired(t, rec)
	time.Sleep(200 * time.Millisecond)

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("OnChange called %d times, want 1: %v", len(calls), calls)
	}
	want := []string{"svc/kafka/AConsumer.java", "svc/kafka/BProducer.java"}
	if !slices.Equal(calls[0], want) {
		t.Errorf("changed = %v, want %v", calls[0], want)
	}
}

func TestWatcherFiltersByPattern(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	rec := newRecorder()
	stop := startWatcher(t, Config{Root: root, Debounce: 50 * time.Millisecond, OnChange: rec.onChange})

	writeFile(t, filepath.Join(root, "README.md"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(root, "Topics.java"))
	waitFired(t, rec)

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	calls := rec.snapshot()
	if len(calls) != 1 || !slices.Equal(calls[0], []string{"Topics.java"}) {
		t.Errorf("calls = %v, want only Topics.java", calls)
	}
}

func TestWatcherIgnoresBuildOutput(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "svc", "target", "generated"), 0o755); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	stop := startWatcher(t, Config{
		Root:     root,
		Ignore:   []string{"**/generated-sources/**"},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})

	writeFile(t, filepath.Join(root, "svc", "target", "generated", "Stale.java"))
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(root, "svc", "Fresh.java"))
	waitFired(t, rec)

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, call := range rec.snapshot() {
		if slices.Contains(call, "svc/target/generated/Stale.java") {
			t.Errorf("ignored path reported: %v", call)
		}
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	rec := newRecorder()
	stop := startWatcher(t, Config{Root: root, Debounce: 50 * time.Millisecond, OnChange: rec.onChange})

	dir := filepath.Join(root, "service-new", "kafka")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "NewEventsProducer.java"))
	waitFired(t, rec)

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var all []string
	for _, call := range rec.snapshot() {
		all = append(all, call...)
	}
	if !slices.Contains(all, "service-new/kafka/NewEventsProducer.java") {
		t.Errorf("changed = %v", all)
	}
}

func TestWatcherRunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for !w.started.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"valid patterns", Config{Patterns: []string{"**/*.java"}, Ignore: []string{"**/test/**"}}, false},
		{"empty pattern", Config{Patterns: []string{""}}, true},
		{"unclosed class", Config{Ignore: []string{"**/[abc"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPattern) {
				t.Errorf("error %v does not wrap ErrInvalidPattern", err)
			}
		})
	}
}

func TestNewMissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Root: filepath.Join(t.TempDir(), "absent")}); err == nil {
		t.Fatal("New() error = nil for missing root")
	}
}

func TestIgnored(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: defaultIgnores}
	tests := []struct {
		rel  string
		want bool
	}{
		{".git/HEAD", true},
		{"svc/target/classes/A.java", true},
		{"svc/build/Gen.java", true},
		{"svc/src/main/java/A.java", false},
		{"svc/src/main/java/A.java~", true},
	}
	for _, tt := range tests {
		if got := w.ignored(tt.rel); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}
