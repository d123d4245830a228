// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/topomap/topomap/internal/config"
	"github.com/topomap/topomap/internal/testutil"
)

func TestAnalyzeWithProjectConfig(t *testing.T) {
	// Not parallel: changes the working directory and XDG_CONFIG_HOME.
	root := testutil.SiteWhereTree(t)
	project := t.TempDir()
	userDir := t.TempDir()
	t.Cleanup(testutil.SetConfigHome(t, userDir))
	t.Cleanup(testutil.MustChdir(t, project))

	cfg := config.DefaultConfig()
	cfg.Root = root
	cfg.Services = append([]string(nil), testutil.SiteWhereServices...)
	cfg.Output.Path = "graph.dot"
	if err := config.Save(filepath.Join(project, config.LocalConfigFile), cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	res := runCLI(t, config.NewProvider(), "analyze")
	if res.err != nil {
		t.Fatalf("analyze error = %v\nstderr:\n%s", res.err, res.stderr)
	}
	if got := testutil.MustReadFile(t, filepath.Join(project, "graph.dot")); got != siteWhereDOT {
		t.Errorf("graph mismatch\ngot:\n%s\nwant:\n%s", got, siteWhereDOT)
	}

	show := runCLI(t, config.NewProvider(), "config", "show")
	if !strings.Contains(show.stdout, config.LocalConfigFile) {
		t.Errorf("config show does not name %s:\n%s", config.LocalConfigFile, show.stdout)
	}

	if runtime.GOOS != "linux" {
		return
	}
	paths := runCLI(t, config.NewProvider(), "config", "path")
	if !strings.Contains(paths.stdout, filepath.Join(userDir, config.AppName)) {
		t.Errorf("config path = %q, want it under %s", paths.stdout, userDir)
	}
}
