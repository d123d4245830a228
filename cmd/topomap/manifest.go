// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topomap/topomap/internal/export"
	"github.com/topomap/topomap/internal/issue"
	"github.com/topomap/topomap/internal/manifest"
	"github.com/topomap/topomap/internal/pipeline"
)

// DefaultManifestPath is where `manifest generate` writes by default.
const DefaultManifestPath = "topology.cue"

func newManifestCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Generate and validate capability manifests",
		Long: `A capability manifest records the role of every producer and consumer
class, and optionally the channels each one serves. 'topomap analyze
--manifest' uses it in place of source parsing, so the topology can be
edited by hand or rebuilt without the sources.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	manifestCmd.AddCommand(newManifestGenerateCommand(app, rootFlags))
	manifestCmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check a manifest against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(rootFlags, validateManifest(app, args[0]))
		},
	})

	return manifestCmd
}

func newManifestGenerateCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &sourceFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a manifest from a source analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, opts, err := app.pipelineOptions(cmd.Context(), cmd, rootFlags, flags, nil)
			if err != nil {
				return app.fail(rootFlags, err)
			}
			res, err := pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return app.fail(rootFlags, err)
			}
			return app.fail(rootFlags, writeManifest(app, rootFlags, res.Manifest(), output))
		},
	}

	addSourceFlags(cmd, flags, false)
	cmd.Flags().StringVarP(&output, "output", "o", DefaultManifestPath, `manifest file, "-" for standard output`)
	return cmd
}

func writeManifest(app *App, rootFlags *rootFlagValues, m *manifest.Manifest, path string) error {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if path == "-" {
		if _, err := app.stdout.Write(buf.Bytes()); err != nil {
			return outputError(path, &export.OutputWriteError{Path: path, Err: err})
		}
		return nil
	}
	if err := export.WriteFile(path, buf.Bytes()); err != nil {
		return outputError(path, err)
	}

	classes := 0
	for _, svc := range m.Services {
		classes += len(svc.Classes)
	}
	if !rootFlags.quiet {
		_, _ = fmt.Fprintf(app.stdout, "%s Wrote %s (%d services, %d classes)\n",
			SuccessStyle.Render("✓"), CmdStyle.Render(path), len(m.Services), classes)
	}
	return nil
}

func validateManifest(app *App, path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("validate manifest").
			WithResource(path).
			WithIssue(issue.ManifestInvalidId).
			WithSuggestion("Compare the file with the output of 'topomap manifest generate -o -'").
			Wrap(err).
			BuildError()
	}
	classes := 0
	for _, svc := range m.Services {
		classes += len(svc.Classes)
	}
	_, _ = fmt.Fprintf(app.stdout, "%s %s is valid (version %s, %d channels, %d services, %d classes)\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(path), m.Version, len(m.Channels), len(m.Services), classes)
	return nil
}
