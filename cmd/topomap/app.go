// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/topomap/topomap/internal/config"
	"github.com/topomap/topomap/internal/issue"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra handler receives an App and reads
	// configuration and writes output through it.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}

	// rootFlagValues holds the persistent flags shared by every command.
	rootFlagValues struct {
		configPath string
		verbose    bool
		quiet      bool
	}
)

// NewApp creates an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// loadConfig loads configuration honoring --config and folds the UI section
// into the persistent flags. Flags set on the command line win.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) (*config.Loaded, error) {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}
	if !flags.verbose && !flags.quiet {
		flags.verbose = loaded.Config.UI.Verbose
		flags.quiet = loaded.Config.UI.Quiet
	}
	return loaded, nil
}

// logger returns the structured stderr logger for the verbosity flags.
func (a *App) logger(flags *rootFlagValues) *log.Logger {
	l := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})
	switch {
	case flags.verbose:
		l.SetLevel(log.DebugLevel)
	case flags.quiet:
		l.SetLevel(log.WarnLevel)
	default:
		l.SetLevel(log.InfoLevel)
	}
	return l
}

// fail renders err for the user and returns the ExitError that carries its
// exit status. Suggestions and catalog guidance go to stderr; the error line
// itself is printed by fang.
func (a *App) fail(flags *rootFlagValues, err error) error {
	if err == nil {
		return nil
	}
	code, id := classifyError(err)
	if !flags.quiet {
		renderFailure(a.stderr, err, id, flags.verbose)
	}
	return &ExitError{Code: code, Err: err}
}

func renderFailure(w io.Writer, err error, id issue.Id, verbose bool) {
	if ae := asActionable(err); ae != nil && (ae.HasSuggestions() || verbose) {
		_, _ = fmt.Fprintln(w, WarningStyle.Render("Hint: ")+formatErrorForDisplay(ae, verbose))
	}
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render("dark")
	if renderErr != nil {
		log.Warn("failed to render issue catalog entry", "issue", id, "err", renderErr)
		return
	}
	_, _ = fmt.Fprint(w, rendered)
}
