// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topomap/topomap/internal/config"
	"github.com/topomap/topomap/internal/export"
	"github.com/topomap/topomap/internal/issue"
	"github.com/topomap/topomap/internal/metrics"
	"github.com/topomap/topomap/internal/pipeline"
)

// analyzeFlagValues holds the flags of `topomap analyze`.
type analyzeFlagValues struct {
	sourceFlags
	output      string
	format      string
	metricsFile string
	dedupe      bool
	noSummary   bool
	watch       bool
}

func newAnalyzeCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &analyzeFlagValues{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Infer the topology and write the graph",
		Long: `Infer the producer/consumer topology of the configured services.

The channel set is read from the naming class (or a configured list), every
Kafka producer and consumer class is located below the services' marker
directories, and each class is attached to the channels its name implies.
The graph is written to the output path and a one-line summary per channel
is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.watch {
				return app.fail(rootFlags, runAnalyzeWatch(cmd, app, rootFlags, flags))
			}
			_, err := runAnalyze(cmd.Context(), cmd, app, rootFlags, flags)
			return app.fail(rootFlags, err)
		},
	}

	addSourceFlags(cmd, &flags.sourceFlags, true)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", `graph file, "-" for standard output (default "g.dot")`)
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: dot, json or yaml (default \"dot\")")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	cmd.Flags().BoolVar(&flags.dedupe, "dedupe", false, "drop repeated lines from the digraph body")
	cmd.Flags().BoolVar(&flags.noSummary, "no-summary", false, "do not print the per-channel summary")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-run the analysis when sources change")

	return cmd
}

// applyOutputFlags overrides the output section with the flags that were set.
func (f *analyzeFlagValues) applyOutputFlags(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("output") {
			cfg.Output.Path = f.output
		}
		if flags.Changed("format") {
			cfg.Output.Format = f.format
		}
		if flags.Changed("metrics-file") {
			cfg.Output.MetricsFile = f.metricsFile
		}
		if flags.Changed("dedupe") {
			cfg.Output.Dedupe = f.dedupe
		}
		if f.noSummary {
			cfg.Output.Summary = false
		}
	}
}

// runAnalyze performs one full analysis and writes every configured output.
func runAnalyze(ctx context.Context, cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *analyzeFlagValues) (*pipeline.Result, error) {
	cfg, opts, err := app.pipelineOptions(ctx, cmd, rootFlags, &flags.sourceFlags, flags.applyOutputFlags(cmd))
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	if cfg.Output.MetricsFile != "" {
		opts.Metrics = metrics.New()
	}

	res, err := pipeline.Run(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := writeOutputs(app, rootFlags, cfg.Output, format, res, opts.Metrics); err != nil {
		return res, err
	}
	return res, nil
}

func writeOutputs(app *App, rootFlags *rootFlagValues, out config.OutputConfig, format export.Format, res *pipeline.Result, rec *metrics.Recorder) error {
	data, err := export.Render(format, res.Relations, res.Report(), export.DOTOptions{Dedupe: out.Dedupe})
	if err != nil {
		return err
	}

	toStdout := out.Path == "-"
	if toStdout {
		if _, err := app.stdout.Write(data); err != nil {
			return outputError("-", &export.OutputWriteError{Path: "-", Err: err})
		}
	} else if err := export.WriteFile(out.Path, data); err != nil {
		return outputError(out.Path, err)
	}

	if out.Summary {
		w, dest := app.stdout, "-"
		if toStdout {
			w, dest = app.stderr, "stderr"
		}
		if err := export.WriteSummary(w, res.Relations); err != nil {
			return outputError(dest, &export.OutputWriteError{Path: dest, Err: err})
		}
	}

	if out.MetricsFile != "" {
		if err := rec.WriteTextfile(out.MetricsFile); err != nil {
			return outputError(out.MetricsFile, &export.OutputWriteError{Path: out.MetricsFile, Err: err})
		}
	}

	if res.Incomplete {
		skipped := 0
		for _, svc := range res.Services {
			if svc.Skipped {
				skipped++
			}
		}
		_, _ = fmt.Fprintf(app.stderr, "%s Analysis incomplete: %d service(s) skipped\n", WarningStyle.Render("!"), skipped)
	}
	if !rootFlags.quiet && !toStdout {
		_, _ = fmt.Fprintf(app.stdout, "%s Wrote %s (%d channels, %d services)\n",
			SuccessStyle.Render("✓"), CmdStyle.Render(out.Path), res.Relations.Len(), len(res.Services))
	}
	return nil
}

func outputError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("write output").
		WithResource(path).
		WithIssue(issue.OutputWriteFailedId).
		WithSuggestion("Check that the parent directory exists and is writable").
		WithSuggestion(`Use "--output -" to print the graph instead`).
		Wrap(err).
		BuildError()
}
