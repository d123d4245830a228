// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topomap/topomap/internal/config"
	"github.com/topomap/topomap/internal/watch"
)

// runAnalyzeWatch analyses once, then re-runs the whole analysis from scratch
// whenever a source or local config file under the root changes. It blocks
// until the command context is cancelled (e.g., Ctrl+C).
func runAnalyzeWatch(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *analyzeFlagValues) error {
	ctx := cmd.Context()

	// Configuration errors are fatal up front; later runs only log failures.
	_, opts, err := app.pipelineOptions(ctx, cmd, rootFlags, &flags.sourceFlags, flags.applyOutputFlags(cmd))
	if err != nil {
		return err
	}

	rerun := func(ctx context.Context) {
		if _, err := runAnalyze(ctx, cmd, app, rootFlags, flags); err != nil {
			_, _ = fmt.Fprintf(app.stderr, "%s Analysis failed: %s\n", WarningStyle.Render("!"), formatErrorForDisplay(err, rootFlags.verbose))
		}
	}

	_, _ = fmt.Fprintf(app.stdout, "%s Watch mode: initial analysis of %s\n", CmdStyle.Render("→"), opts.Root)
	rerun(ctx)

	w, err := watch.New(watch.Config{
		Root: opts.Root,
		Patterns: []string{
			"**/*" + opts.Layout.WithDefaults().SourceExt,
			"**/" + config.LocalConfigFile,
		},
		Logger: opts.Logger,
		OnChange: func(ctx context.Context, changed []string) error {
			_, _ = fmt.Fprintf(app.stdout, "%s Detected %d change(s). Re-running analysis...\n", CmdStyle.Render("→"), len(changed))
			rerun(ctx)
			_, _ = fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n\n", CmdStyle.Render("→"))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	_, _ = fmt.Fprintf(app.stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n\n", CmdStyle.Render("→"))
	return w.Run(ctx)
}
