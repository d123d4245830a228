// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/topomap/topomap/internal/config"
)

// newConfigCommand creates the `topomap config` command tree.
// Subcommands that read configuration use the App's config.Provider.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage topomap configuration",
		Long: `Manage topomap configuration.

Configuration is read from the --config file, else ./topomap.cue, else the
user configuration file:
  - Linux: ~/.config/topomap/config.cue
  - macOS: ~/Library/Application Support/topomap/config.cue
  - Windows: %APPDATA%\topomap\config.cue

TOPOMAP_* environment variables override file values (e.g. TOPOMAP_OUTPUT_PATH).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(rootFlags, showConfig(cmd.Context(), app, rootFlags))
		},
	})

	var (
		initPath  string
		initForce bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(rootFlags, initConfig(app, initPath, initForce))
		},
	}
	initCmd.Flags().StringVar(&initPath, "path", "", "file to create (default is the user config file)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(rootFlags, showConfigPath(app))
		},
	})

	var dumpFormat string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE or TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.loadConfig(cmd.Context(), rootFlags)
			if err != nil {
				return app.fail(rootFlags, err)
			}
			return app.fail(rootFlags, dumpConfig(app.stdout, loaded.Config, dumpFormat))
		},
	}
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "cue", "output format: cue or toml")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, rootFlags *rootFlagValues) error {
	loaded, err := app.loadConfig(ctx, rootFlags)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	w := app.stdout

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	kv := func(indent, key string, value any) {
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", indent, keyStyle.Render(key), valueStyle.Render(fmt.Sprint(value)))
	}

	_, _ = fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	_, _ = fmt.Fprintln(w)
	if loaded.Path != "" {
		_, _ = fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), loaded.Path)
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	_, _ = fmt.Fprintln(w)

	root := cfg.Root
	if root == "" {
		root = "(working directory)"
	}
	kv("", "root", root)
	kv("", "strict", cfg.Strict)
	kv("", "jobs", cfg.Jobs)
	_, _ = fmt.Fprintf(w, "%s:\n", keyStyle.Render("services"))
	for _, s := range cfg.Services {
		_, _ = fmt.Fprintf(w, "  - %s\n", valueStyle.Render(s))
	}

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("registry"))
	kv("  ", "source", cfg.Registry.Source)
	kv("  ", "class", cfg.Registry.Class)
	kv("  ", "marker", cfg.Registry.Marker)
	if len(cfg.Registry.List) > 0 {
		kv("  ", "list", strings.Join(cfg.Registry.List, ", "))
	}

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("roles"))
	kv("  ", "producer_types", strings.Join(cfg.Roles.ProducerTypes, ", "))
	kv("  ", "consumer_types", strings.Join(cfg.Roles.ConsumerTypes, ", "))

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("output"))
	kv("  ", "path", cfg.Output.Path)
	kv("  ", "format", cfg.Output.Format)
	kv("  ", "summary", cfg.Output.Summary)
	kv("  ", "dedupe", cfg.Output.Dedupe)

	_, _ = fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("overrides"))
	if len(cfg.Overrides) == 0 {
		_, _ = fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, o := range cfg.Overrides {
		action := o.Action
		if action == "" {
			action = "add"
		}
		_, _ = fmt.Fprintf(w, "  - %s %s %s of %s\n", action, valueStyle.Render(o.Service), o.Role, CmdStyle.Render(o.Channel))
	}
	return nil
}

func initConfig(app *App, path string, force bool) error {
	written, err := config.Init(path, force)
	if errors.Is(err, config.ErrConfigExists) {
		_, _ = fmt.Fprintf(app.stderr, "%s %s already exists (use --force to overwrite)\n", WarningStyle.Render("!"), written)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	_, _ = fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), written)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	userFile, err := config.UserConfigPath("")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	_, _ = fmt.Fprintf(app.stdout, "Config file: %s\n", userFile)
	_, _ = fmt.Fprintf(app.stdout, "Project file: %s\n", config.LocalConfigFile)
	return nil
}

func dumpConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "cue", "":
		_, err := io.WriteString(w, config.GenerateCUE(cfg))
		return err
	case "toml":
		data, err := config.DumpTOML(cfg)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("%w: unknown dump format %q (want cue or toml)", config.ErrInvalidConfig, format)
}
