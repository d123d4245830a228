// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/topomap/topomap/internal/config"
	"github.com/topomap/topomap/internal/issue"
	"github.com/topomap/topomap/internal/manifest"
	"github.com/topomap/topomap/internal/pipeline"
	"github.com/topomap/topomap/pkg/types"
)

// sourceFlags select the tree and services to analyse. They override the
// corresponding configuration keys only when given on the command line.
type sourceFlags struct {
	root     string
	services []string
	strict   bool
	jobs     int
	manifest string
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags, withManifest bool) {
	cmd.Flags().StringVarP(&f.root, "root", "r", "", "directory holding one directory per service (default is the working directory)")
	cmd.Flags().StringArrayVarP(&f.services, "service", "s", nil, "service to analyse, in order (repeatable; default from config)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on missing services, unreadable directories and unresolvable classes")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "concurrent service scans (0 means sequential)")
	if withManifest {
		cmd.Flags().StringVarP(&f.manifest, "manifest", "m", "", "take class roles from a capability manifest instead of parsing sources")
	}
}

// pipelineOptions loads configuration, applies the source flags and the
// optional mutate hook, validates the result and maps it onto a run.
func (a *App) pipelineOptions(ctx context.Context, cmd *cobra.Command, rootFlags *rootFlagValues, f *sourceFlags, mutate func(*config.Config)) (*config.Config, pipeline.Options, error) {
	loaded, err := a.loadConfig(ctx, rootFlags)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	cfg := loaded.Config

	flags := cmd.Flags()
	if flags.Changed("root") {
		root, err := flagPath("root", f.root)
		if err != nil {
			return nil, pipeline.Options{}, err
		}
		cfg.Root = root
	}
	if flags.Changed("service") {
		cfg.Services = f.services
	}
	if flags.Changed("strict") {
		cfg.Strict = f.strict
	}
	if flags.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, pipeline.Options{}, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, pipeline.Options{}, fmt.Errorf("determine working directory: %w", err)
	}
	opts, err := cfg.PipelineOptions(cwd)
	if err != nil {
		return nil, pipeline.Options{}, err
	}

	if f.manifest != "" {
		m, err := manifest.Load(f.manifest)
		if err != nil {
			return nil, pipeline.Options{}, issue.NewErrorContext().
				WithOperation("load manifest").
				WithResource(f.manifest).
				WithIssue(issue.ManifestInvalidId).
				WithSuggestion(fmt.Sprintf("Run 'topomap manifest validate %s' for details", f.manifest)).
				WithSuggestion("Regenerate it with 'topomap manifest generate'").
				Wrap(err).
				BuildError()
		}
		opts.Manifest = m
		// Without --service the manifest decides which services exist.
		if !flags.Changed("service") {
			opts.Services = nil
		}
	}

	opts.Logger = a.logger(rootFlags)
	return cfg, opts, nil
}

// flagPath rejects blank path flags and resolves the rest against the
// working directory.
func flagPath(name, value string) (string, error) {
	p := types.FilesystemPath(value)
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("%w: --%s: %w", config.ErrInvalidConfig, name, err)
	}
	abs, err := p.Abs()
	if err != nil {
		return "", err
	}
	return abs.String(), nil
}
