// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/topomap/topomap/internal/issue"
	"github.com/topomap/topomap/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "topomap"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFile is looked up in the working directory.
	LocalConfigFile = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "TOPOMAP"
)

// ErrConfigExists is returned by Init when the file is already there.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the topomap configuration directory using platform
// conventions: %APPDATA% on Windows, ~/Library/Application Support on macOS
// and $XDG_CONFIG_HOME (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, "Library", "Application Support")
	default:
		dir = os.Getenv("XDG_CONFIG_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			dir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(dir, AppName), nil
}

// UserConfigPath returns the path of the user configuration file.
func UserConfigPath(configDirPath string) (string, error) {
	dir, err := configDirWithOverride(configDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load is NewProvider().Load returning only the configuration.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	return cfg, err
}

func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	if !opts.SkipEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	path, err := resolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", loadError(path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", loadError(path, fmt.Errorf("failed to parse config: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Run 'topomap config show' to see the effective values").
			WithSuggestion("Check TOPOMAP_* environment variables").
			Wrap(err).
			BuildError()
	}
	return &cfg, path, nil
}

// resolvePath picks the file to load: the explicit path, ./topomap.cue, then
// the user configuration file. Empty means defaults only.
func resolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'topomap config init' to create a default file").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}
	if fileExists(LocalConfigFile) {
		return LocalConfigFile, nil
	}
	user, err := UserConfigPath(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if fileExists(user) {
		return user, nil
	}
	return "", nil
}

func loadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithIssue(issue.ConfigLoadFailedId).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		Wrap(err).
		BuildError()
}

// setDefaults registers every leaf key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("root", d.Root)
	v.SetDefault("services", d.Services)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("layout.root_marker", d.Layout.RootMarker)
	v.SetDefault("layout.source_subpath", d.Layout.SourceSubpath)
	v.SetDefault("layout.marker_dir", d.Layout.MarkerDir)
	v.SetDefault("layout.package_root", d.Layout.PackageRoot)
	v.SetDefault("layout.contract_segment", d.Layout.ContractSegment)
	v.SetDefault("layout.source_ext", d.Layout.SourceExt)
	v.SetDefault("registry.source", d.Registry.Source)
	v.SetDefault("registry.class", d.Registry.Class)
	v.SetDefault("registry.marker", d.Registry.Marker)
	v.SetDefault("registry.list", d.Registry.List)
	v.SetDefault("roles.producer_types", d.Roles.ProducerTypes)
	v.SetDefault("roles.consumer_types", d.Roles.ConsumerTypes)
	v.SetDefault("inference.qualifier", d.Inference.Qualifier)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.dedupe", d.Output.Dedupe)
	v.SetDefault("output.summary", d.Output.Summary)
	v.SetDefault("output.metrics_file", d.Output.MetricsFile)
	v.SetDefault("overrides", []map[string]any{})
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.quiet", d.UI.Quiet)
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper unifies the file at path with #Config and merges the result
// into v. It decodes to a map rather than using cueutil.ParseAndDecode because
// every field is optional and viper needs the raw map to keep its defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}
	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var m map[string]any
	if err := unified.Decode(&m); err != nil {
		return cueutil.FormatError(err, path)
	}
	if err := v.MergeConfigMap(m); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Init writes the default configuration to path, or to the user config file
// when path is empty, and returns the path written. An existing file is kept
// unless force is set.
func Init(path string, force bool) (string, error) {
	if path == "" {
		p, err := UserConfigPath("")
		if err != nil {
			return "", err
		}
		path = p
	}
	if !force && fileExists(path) {
		return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := Save(path, DefaultConfig()); err != nil {
		return "", err
	}
	return path, nil
}

// Save writes cfg as CUE to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a CUE document accepted by the schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// topomap configuration\n\n")
	if cfg.Root != "" {
		fmt.Fprintf(&sb, "root: %q\n", cfg.Root)
	}
	sb.WriteString("services: [\n")
	for _, s := range cfg.Services {
		fmt.Fprintf(&sb, "\t%q,\n", s)
	}
	sb.WriteString("]\n")
	fmt.Fprintf(&sb, "strict: %v\n", cfg.Strict)
	fmt.Fprintf(&sb, "jobs:   %d\n", cfg.Jobs)

	sb.WriteString("\nlayout: {\n")
	fmt.Fprintf(&sb, "\troot_marker:      %q\n", cfg.Layout.RootMarker)
	fmt.Fprintf(&sb, "\tsource_subpath:   %q\n", cfg.Layout.SourceSubpath)
	fmt.Fprintf(&sb, "\tmarker_dir:       %q\n", cfg.Layout.MarkerDir)
	fmt.Fprintf(&sb, "\tpackage_root:     %q\n", cfg.Layout.PackageRoot)
	fmt.Fprintf(&sb, "\tcontract_segment: %q\n", cfg.Layout.ContractSegment)
	fmt.Fprintf(&sb, "\tsource_ext:       %q\n", cfg.Layout.SourceExt)
	sb.WriteString("}\n")

	sb.WriteString("\nregistry: {\n")
	fmt.Fprintf(&sb, "\tsource: %q\n", cfg.Registry.Source)
	fmt.Fprintf(&sb, "\tclass:  %q\n", cfg.Registry.Class)
	fmt.Fprintf(&sb, "\tmarker: %q\n", cfg.Registry.Marker)
	if len(cfg.Registry.List) > 0 {
		writeList(&sb, "\t", "list", cfg.Registry.List)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nroles: {\n")
	writeList(&sb, "\t", "producer_types", cfg.Roles.ProducerTypes)
	writeList(&sb, "\t", "consumer_types", cfg.Roles.ConsumerTypes)
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\ninference: qualifier: %q\n", cfg.Inference.Qualifier)

	sb.WriteString("\noutput: {\n")
	fmt.Fprintf(&sb, "\tpath:    %q\n", cfg.Output.Path)
	fmt.Fprintf(&sb, "\tformat:  %q\n", cfg.Output.Format)
	fmt.Fprintf(&sb, "\tdedupe:  %v\n", cfg.Output.Dedupe)
	fmt.Fprintf(&sb, "\tsummary: %v\n", cfg.Output.Summary)
	if cfg.Output.MetricsFile != "" {
		fmt.Fprintf(&sb, "\tmetrics_file: %q\n", cfg.Output.MetricsFile)
	}
	sb.WriteString("}\n")

	if len(cfg.Overrides) > 0 {
		sb.WriteString("\noverrides: [\n")
		for _, o := range cfg.Overrides {
			fmt.Fprintf(&sb, "\t{channel: %q, service: %q, role: %q", o.Channel, o.Service, o.Role)
			if o.Action != "" {
				fmt.Fprintf(&sb, ", action: %q", o.Action)
			}
			sb.WriteString("},\n")
		}
		sb.WriteString("]\n")
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tquiet:   %v\n", cfg.UI.Quiet)
	sb.WriteString("}\n")

	return sb.String()
}

func writeList(sb *strings.Builder, indent, key string, items []string) {
	fmt.Fprintf(sb, "%s%s: [", indent, key)
	for i, it := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%q", it)
	}
	sb.WriteString("]\n")
}

// DumpTOML renders cfg as TOML.
func DumpTOML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config as TOML: %w", err)
	}
	return buf.Bytes(), nil
}
