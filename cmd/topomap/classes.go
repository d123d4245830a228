// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/topomap/topomap/internal/classify"
	"github.com/topomap/topomap/internal/pipeline"
)

func newClassesCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &sourceFlags{}

	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List the producer and consumer classes of each service",
		Long: `Run the analysis and list, per service, every class classified as a
producer or consumer together with the channels it was attached to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, opts, err := app.pipelineOptions(cmd.Context(), cmd, rootFlags, flags, nil)
			if err != nil {
				return app.fail(rootFlags, err)
			}
			res, err := pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return app.fail(rootFlags, err)
			}
			renderClasses(app.stdout, res)
			return nil
		},
	}

	addSourceFlags(cmd, flags, true)
	return cmd
}

func renderClasses(w io.Writer, res *pipeline.Result) {
	for i, svc := range res.Services {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		header := TitleStyle.Render(svc.Name)
		if svc.Skipped {
			header += " " + WarningStyle.Render("(skipped)")
		}
		_, _ = fmt.Fprintln(w, header)
		if len(svc.Classes) == 0 {
			_, _ = fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(no producers or consumers)"))
			continue
		}
		for _, c := range svc.Classes {
			channels := SubtitleStyle.Render("(no channel)")
			if len(c.Channels) > 0 {
				channels = CmdStyle.Render(strings.Join(c.Channels, ", "))
			}
			_, _ = fmt.Fprintf(w, "  %s %s -> %s\n", roleLabel(c.Role), c.ID, channels)
		}
	}
}

func roleLabel(r classify.Role) string {
	switch r {
	case classify.RoleProducer:
		return producerStyle.Render("producer")
	case classify.RoleConsumer:
		return consumerStyle.Render("consumer")
	}
	return VerboseStyle.Render(r.String())
}
