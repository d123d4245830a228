// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/topomap/topomap/internal/issue"
	"github.com/topomap/topomap/internal/testutil"
	"github.com/topomap/topomap/pkg/types"
)

func TestAnalyzeSiteWhere(t *testing.T) {
	t.Parallel()

	cfg := siteWhereConfig(t)
	res := runCLI(t, &stubProvider{cfg: cfg}, "analyze")
	if res.err != nil {
		t.Fatalf("analyze error = %v\nstderr:\n%s", res.err, res.stderr)
	}

	if got := testutil.MustReadFile(t, cfg.Output.Path); got != siteWhereDOT {
		t.Errorf("graph mismatch\ngot:\n%s\nwant:\n%s", got, siteWhereDOT)
	}

	wantLines := []string{
		"Consumers:  inbound processing ---  Topic: event-source-decoded-events --- Producers: event sources",
		"Consumers:  outbound connectors ---  Topic: inbound-persisted-events --- Producers: inbound processing",
		"Consumers:  device registration ---  Topic: device-registration-events --- Producers: event sources",
		"Consumers:  command delivery ---  Topic: command-invocations --- Producers: ",
	}
	for _, line := range wantLines {
		if !strings.Contains(res.stdout, line) {
			t.Errorf("stdout missing summary line %q\nstdout:\n%s", line, res.stdout)
		}
	}
	if !strings.Contains(res.stdout, "Wrote") {
		t.Errorf("stdout missing write confirmation:\n%s", res.stdout)
	}
}

func TestAnalyzeFlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	cfg := siteWhereConfig(t)
	out := filepath.Join(t.TempDir(), "only.dot")
	res := runCLI(t, &stubProvider{cfg: cfg},
		"analyze", "--service", "command delivery", "--output", out, "--no-summary", "--quiet")
	if res.err != nil {
		t.Fatalf("analyze error = %v\nstderr:\n%s", res.err, res.stderr)
	}

	want := "digraph {\ncommanddelivery;\n}\n"
	if got := testutil.MustReadFile(t, out); got != want {
		t.Errorf("graph = %q, want %q", got, want)
	}
	if _, err := os.Stat(cfg.Output.Path); !os.IsNotExist(err) {
		t.Errorf("configured output %s was written, want only --output", cfg.Output.Path)
	}
	if res.stdout != "" {
		t.Errorf("stdout = %q, want empty with --no-summary --quiet", res.stdout)
	}
}

func TestAnalyzeJSONToStdout(t *testing.T) {
	t.Parallel()

	cfg := siteWhereConfig(t)
	res := runCLI(t, &stubProvider{cfg: cfg}, "analyze", "--output", "-", "--format", "json")
	if res.err != nil {
		t.Fatalf("analyze error = %v\nstderr:\n%s", res.err, res.stderr)
	}

	var report struct {
		RunID     string `json:"run_id"`
		Relations []struct {
			Channel string `json:"channel"`
		} `json:"relations"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &report); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, res.stdout)
	}
	if report.RunID == "" {
		t.Error("run_id is empty")
	}
	if len(report.Relations) != 4 {
		t.Errorf("len(relations) = %d, want 4", len(report.Relations))
	}
	// The summary moves to stderr so stdout stays machine-readable.
	if !strings.Contains(res.stderr, "Topic: command-invocations") {
		t.Errorf("stderr missing summary:\n%s", res.stderr)
	}
}

func TestAnalyzeDedupeAndMetrics(t *testing.T) {
	t.Parallel()

	cfg := siteWhereConfig(t)
	metricsFile := filepath.Join(t.TempDir(), "topomap.prom")
	res := runCLI(t, &stubProvider{cfg: cfg}, "analyze", "--dedupe", "--metrics-file", metricsFile)
	if res.err != nil {
		t.Fatalf("analyze error = %v\nstderr:\n%s", res.err, res.stderr)
	}

	metrics := testutil.MustReadFile(t, metricsFile)
	for _, want := range []string{"topomap_channels 4", "topomap_classes_classified_total"} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics missing %q:\n%s", want, metrics)
		}
	}
	if got := testutil.MustReadFile(t, cfg.Output.Path); got != siteWhereDOT {
		t.Errorf("deduped graph mismatch\ngot:\n%s", got)
	}
}

func TestAnalyzeIncomplete(t *testing.T) {
	t.Parallel()

	cfg := siteWhereConfig(t)
	cfg.Services = append(cfg.Services, "ghost service")
	res := runCLI(t, &stubProvider{cfg: cfg}, "analyze")
	if res.err != nil {
		t.Fatalf("analyze error = %v, want lenient success", res.err)
	}
	if !strings.Contains(res.stderr, "Analysis incomplete: 1 service(s) skipped") {
		t.Errorf("stderr missing incomplete notice:\n%s", res.stderr)
	}
	if got := testutil.MustReadFile(t, cfg.Output.Path); got != siteWhereDOT {
		t.Errorf("graph mismatch\ngot:\n%s", got)
	}
}

func TestAnalyzeExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(t *testing.T, cfg *configUnderTest)
		args   []string
		want   types.ExitCode
	}{
		{
			name: "missing service in strict mode",
			mutate: func(_ *testing.T, c *configUnderTest) {
				c.Services = []string{"ghost service"}
			},
			args: []string{"--strict"},
			want: types.ExitServiceNotFound,
		},
		{
			name: "naming class not found",
			mutate: func(_ *testing.T, c *configUnderTest) {
				c.Registry.Class = "com.example.kafka.NoSuchNaming"
			},
			want: types.ExitRegistryAccess,
		},
		{
			name: "unknown format",
			args: []string{"--format", "svg"},
			want: types.ExitUsage,
		},
		{
			name: "unwritable output",
			mutate: func(t *testing.T, c *configUnderTest) {
				c.Output.Path = filepath.Join(t.TempDir(), "missing", "g.dot")
			},
			want: types.ExitOutputWrite,
		},
		{
			name: "jobs out of range",
			args: []string{"--jobs", "1000"},
			want: types.ExitUsage,
		},
		{
			name: "missing manifest",
			mutate: func(t *testing.T, c *configUnderTest) {
				c.manifest = filepath.Join(t.TempDir(), "none.cue")
			},
			want: types.ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &configUnderTest{Config: siteWhereConfig(t)}
			if tt.mutate != nil {
				tt.mutate(t, c)
			}
			args := append([]string{"analyze", "--quiet"}, tt.args...)
			if c.manifest != "" {
				args = append(args, "--manifest", c.manifest)
			}
			res := runCLI(t, &stubProvider{cfg: c.Config}, args...)

			var exitErr *ExitError
			if !errors.As(res.err, &exitErr) {
				t.Fatalf("error = %v, want *ExitError", res.err)
			}
			if exitErr.Code != tt.want {
				t.Errorf("exit code = %d, want %d (err: %v)", exitErr.Code, tt.want, res.err)
			}
		})
	}
}

func TestAnalyzeConfigLoadFailure(t *testing.T) {
	t.Parallel()

	loadErr := issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource("topomap.cue").
		WithIssue(issue.ConfigLoadFailedId).
		WithSuggestion("Check the file").
		Wrap(errors.New("boom")).
		BuildError()

	res := runCLI(t, &stubProvider{err: loadErr}, "analyze")
	if got := exitCodeFor(res.err); got != types.ExitUsage {
		t.Errorf("exit code = %d, want %d", got, types.ExitUsage)
	}
	if !strings.Contains(res.stderr, "Check the file") {
		t.Errorf("stderr missing suggestion:\n%s", res.stderr)
	}
}

// brokenWriter fails every write.
type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestAnalyzeSummaryWriteFailure(t *testing.T) {
	t.Parallel()

	cfg := siteWhereConfig(t)
	var stderr bytes.Buffer
	app := NewApp(Dependencies{Config: &stubProvider{cfg: cfg}, Stdout: brokenWriter{}, Stderr: &stderr})
	root := NewRootCommand(app)
	root.SetArgs([]string{"analyze", "--quiet"})
	root.SetOut(&stderr)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())

	if got := exitCodeFor(err); got != types.ExitOutputWrite {
		t.Errorf("exit code = %d, want %d (err: %v)", got, types.ExitOutputWrite, err)
	}
	if _, statErr := os.Stat(cfg.Output.Path); statErr != nil {
		t.Errorf("graph must be written before the summary: %v", statErr)
	}
}
