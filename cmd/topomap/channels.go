// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topomap/topomap/internal/pipeline"
)

func newChannelsCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &sourceFlags{}

	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List the channel registry",
		Long: `List the channels of the registry, one per line, in registry order.

With the declaration source the naming class is located under the root and
its marker members are evaluated; members that cannot be evaluated are
reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, opts, err := app.pipelineOptions(cmd.Context(), cmd, rootFlags, flags, nil)
			if err != nil {
				return app.fail(rootFlags, err)
			}
			channels, _, err := pipeline.Channels(cmd.Context(), opts)
			if err != nil {
				return app.fail(rootFlags, err)
			}
			for _, ch := range channels {
				_, _ = fmt.Fprintln(app.stdout, ch)
			}
			return nil
		},
	}

	addSourceFlags(cmd, flags, true)
	return cmd
}
