// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/topomap/topomap/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "topomap",
		Short: "Map the Kafka topology of a multi-service Java tree",
		Long: TitleStyle.Render("topomap") + SubtitleStyle.Render(" - Map the Kafka topology of a multi-service Java tree") + `

topomap reads the channel naming class of a microservice platform, finds the
Kafka producer and consumer classes of every service, infers which channel each
one serves from its name, and writes the resulting topology as a Graphviz
digraph.

` + SubtitleStyle.Render("Examples:") + `
  topomap analyze --root ./sitewhere          Write g.dot for the default services
  topomap analyze -s "event sources" -o -     Print the digraph for one service
  topomap channels                            List the channel registry
  topomap classes                             List classified classes per service
  topomap manifest generate -o topology.cue   Snapshot roles into a manifest
  topomap config show                         Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is ./topomap.cue, then the user config directory)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "only report warnings and errors")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(newAnalyzeCommand(app, flags))
	rootCmd.AddCommand(newChannelsCommand(app, flags))
	rootCmd.AddCommand(newClassesCommand(app, flags))
	rootCmd.AddCommand(newManifestCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(int(exitCodeFor(err)))
	}
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors use their Format method; verbose mode adds the error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	if ae := asActionable(err); ae != nil {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

func asActionable(err error) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
