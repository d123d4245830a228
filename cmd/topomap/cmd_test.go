// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/topomap/topomap/internal/config"
	"github.com/topomap/topomap/internal/testutil"
)

const siteWhereDOT = `digraph {
eventsources -> inboundprocessing[ label="event-source-decoded-events "];
inboundprocessing -> outboundconnectors[ label="inbound-persisted-events "];
eventsources -> deviceregistration[ label="device-registration-events "];
commanddelivery;
}
`

// stubProvider hands out a fresh copy of cfg on every Load.
type stubProvider struct {
	cfg  *config.Config
	path string
	err  error
}

func (p *stubProvider) Load(_ context.Context, _ config.LoadOptions) (*config.Loaded, error) {
	if p.err != nil {
		return nil, p.err
	}
	cfg := *p.cfg
	return &config.Loaded{Config: &cfg, Path: p.path}, nil
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// siteWhereConfig points the default configuration at a fresh fixture tree
// and writes the graph into a temporary directory.
func siteWhereConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Root = testutil.SiteWhereTree(t)
	cfg.Services = append([]string(nil), testutil.SiteWhereServices...)
	cfg.Output.Path = filepath.Join(t.TempDir(), "g.dot")
	return cfg
}

func runCLI(t *testing.T, provider config.Provider, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{Config: provider, Stdout: &stdout, Stderr: &stderr})
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// configUnderTest carries per-case CLI inputs next to the configuration.
type configUnderTest struct {
	*config.Config
	manifest string
}
