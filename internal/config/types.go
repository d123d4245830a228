// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/topomap/topomap/internal/classify"
	"github.com/topomap/topomap/internal/export"
	"github.com/topomap/topomap/internal/graph"
	"github.com/topomap/topomap/internal/infer"
	"github.com/topomap/topomap/internal/pipeline"
	"github.com/topomap/topomap/internal/registry"
	"github.com/topomap/topomap/internal/scanner"
)

// DefaultOutputPath is where the graph is written when nothing else is set.
const DefaultOutputPath = "g.dot"

var (
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	// DefaultServices are the SiteWhere microservices, in analysis order.
	DefaultServices = []string{
		"command delivery",
		"batch operations",
		"asset management",
		"device management",
		"device registration",
		"device state",
		"event management",
		"event search",
		"event sources",
		"inbound processing",
		"instance management",
		"label generation",
		"outbound connectors",
		"schedule management",
		"streaming media",
	}

	validate = validator.New(validator.WithRequiredStructEnabled())
)

type (
	// Config holds the application configuration.
	Config struct {
		// Root holds one directory per service. Empty means the working directory.
		Root      string           `json:"root" mapstructure:"root" toml:"root"`
		Services  []string         `json:"services" mapstructure:"services" toml:"services" validate:"dive,required"`
		Strict    bool             `json:"strict" mapstructure:"strict" toml:"strict"`
		Jobs      int              `json:"jobs" mapstructure:"jobs" toml:"jobs" validate:"gte=0,lte=256"`
		Layout    LayoutConfig     `json:"layout" mapstructure:"layout" toml:"layout"`
		Registry  RegistryConfig   `json:"registry" mapstructure:"registry" toml:"registry"`
		Roles     RolesConfig      `json:"roles" mapstructure:"roles" toml:"roles"`
		Inference InferenceConfig  `json:"inference" mapstructure:"inference" toml:"inference"`
		Output    OutputConfig     `json:"output" mapstructure:"output" toml:"output"`
		Overrides []OverrideConfig `json:"overrides" mapstructure:"overrides" toml:"overrides" validate:"dive"`
		UI        UIConfig         `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// LayoutConfig mirrors scanner.Layout.
	LayoutConfig struct {
		RootMarker      string `json:"root_marker" mapstructure:"root_marker" toml:"root_marker"`
		SourceSubpath   string `json:"source_subpath" mapstructure:"source_subpath" toml:"source_subpath" validate:"required"`
		MarkerDir       string `json:"marker_dir" mapstructure:"marker_dir" toml:"marker_dir" validate:"required"`
		PackageRoot     string `json:"package_root" mapstructure:"package_root" toml:"package_root" validate:"required"`
		ContractSegment string `json:"contract_segment" mapstructure:"contract_segment" toml:"contract_segment"`
		SourceExt       string `json:"source_ext" mapstructure:"source_ext" toml:"source_ext" validate:"required,startswith=."`
	}

	// RegistryConfig selects the channel registry.
	RegistryConfig struct {
		Source string   `json:"source" mapstructure:"source" toml:"source" validate:"oneof=declaration list manifest"`
		Class  string   `json:"class" mapstructure:"class" toml:"class" validate:"required_if=Source declaration"`
		Marker string   `json:"marker" mapstructure:"marker" toml:"marker" validate:"required_if=Source declaration"`
		List   []string `json:"list" mapstructure:"list" toml:"list" validate:"dive,required"`
	}

	// RolesConfig names the messaging client types.
	RolesConfig struct {
		ProducerTypes []string `json:"producer_types" mapstructure:"producer_types" toml:"producer_types" validate:"min=1,dive,required"`
		ConsumerTypes []string `json:"consumer_types" mapstructure:"consumer_types" toml:"consumer_types" validate:"min=1,dive,required"`
	}

	// InferenceConfig tunes name inference.
	InferenceConfig struct {
		Qualifier string `json:"qualifier" mapstructure:"qualifier" toml:"qualifier" validate:"required,lowercase"`
	}

	// OutputConfig configures what is written after a run.
	OutputConfig struct {
		// Path is the graph file; "-" writes to standard output.
		Path        string `json:"path" mapstructure:"path" toml:"path" validate:"required"`
		Format      string `json:"format" mapstructure:"format" toml:"format" validate:"oneof=dot json yaml"`
		Dedupe      bool   `json:"dedupe" mapstructure:"dedupe" toml:"dedupe"`
		Summary     bool   `json:"summary" mapstructure:"summary" toml:"summary"`
		MetricsFile string `json:"metrics_file" mapstructure:"metrics_file" toml:"metrics_file"`
	}

	// OverrideConfig is a manual relation correction.
	OverrideConfig struct {
		Channel string `json:"channel" mapstructure:"channel" toml:"channel" validate:"required"`
		Service string `json:"service" mapstructure:"service" toml:"service" validate:"required"`
		Role    string `json:"role" mapstructure:"role" toml:"role" validate:"oneof=producer consumer"`
		Action  string `json:"action,omitempty" mapstructure:"action" toml:"action,omitempty" validate:"omitempty,oneof=add remove"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
		Quiet   bool `json:"quiet" mapstructure:"quiet" toml:"quiet" validate:"excluded_if=Verbose true"`
	}

	// InvalidConfigError collects field-level validation failures.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	l := scanner.DefaultLayout()
	return &Config{
		Services: append([]string(nil), DefaultServices...),
		Layout: LayoutConfig{
			RootMarker:      l.RootMarker,
			SourceSubpath:   l.SourceSubpath,
			MarkerDir:       l.MarkerDir,
			PackageRoot:     l.PackageRoot,
			ContractSegment: l.ContractSegment,
			SourceExt:       l.SourceExt,
		},
		Registry: RegistryConfig{
			Source: string(pipeline.SourceDeclaration),
			Class:  registry.DefaultNamingClass,
			Marker: registry.DefaultMarker,
			List:   []string{},
		},
		Roles: RolesConfig{
			ProducerTypes: []string{classify.DefaultProducerType},
			ConsumerTypes: []string{classify.DefaultConsumerType},
		},
		Inference: InferenceConfig{Qualifier: infer.DefaultQualifier},
		Output: OutputConfig{
			Path:    DefaultOutputPath,
			Format:  string(export.FormatDOT),
			Summary: true,
		},
		Overrides: []OverrideConfig{},
	}
}

// Validate checks struct constraints: the schema guards file input, but
// environment variables and flags bypass it.
func (c *Config) Validate() error {
	var fieldErrs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, fieldError(fe))
		}
	}
	if c.Registry.Source == string(pipeline.SourceList) && len(c.Registry.List) == 0 {
		fieldErrs = append(fieldErrs, fmt.Errorf("%s is required for the list source", "Registry.List"))
	}
	if len(fieldErrs) > 0 {
		return &InvalidConfigError{FieldErrors: fieldErrs}
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Errorf("%s is required", field)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "min":
		return fmt.Errorf("%s needs at least %s entries", field, fe.Param())
	case "gte", "lte":
		return fmt.Errorf("%s must be %s %s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	case "excluded_if":
		return fmt.Errorf("%s cannot be combined with %s", field, fe.Param())
	default:
		return fmt.Errorf("%s fails %s", field, fe.Tag())
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		msgs[i] = fe.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// ScannerLayout converts the layout section.
func (l LayoutConfig) ScannerLayout() scanner.Layout {
	return scanner.Layout{
		RootMarker:      l.RootMarker,
		SourceSubpath:   l.SourceSubpath,
		MarkerDir:       l.MarkerDir,
		PackageRoot:     l.PackageRoot,
		ContractSegment: l.ContractSegment,
		SourceExt:       l.SourceExt,
	}.WithDefaults()
}

// ParsedOverrides converts the overrides section.
func (c *Config) ParsedOverrides() ([]graph.Override, error) {
	out := make([]graph.Override, 0, len(c.Overrides))
	var errs []error
	for i, o := range c.Overrides {
		role, err := classify.ParseRole(o.Role)
		if err != nil {
			errs = append(errs, fmt.Errorf("overrides[%d]: %w", i, err))
			continue
		}
		action, err := graph.ParseAction(o.Action)
		if err != nil {
			errs = append(errs, fmt.Errorf("overrides[%d]: %w", i, err))
			continue
		}
		ov := graph.Override{Channel: o.Channel, Service: o.Service, Role: role, Action: action}
		if err := ov.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("overrides[%d]: %w", i, err))
			continue
		}
		out = append(out, ov)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// PipelineOptions maps the configuration onto a pipeline run. Root defaults to
// the working directory given as cwd.
func (c *Config) PipelineOptions(cwd string) (pipeline.Options, error) {
	overrides, err := c.ParsedOverrides()
	if err != nil {
		return pipeline.Options{}, err
	}
	src, err := pipeline.ParseChannelSource(c.Registry.Source)
	if err != nil {
		return pipeline.Options{}, err
	}
	root := c.Root
	if root == "" {
		root = cwd
	}
	return pipeline.Options{
		Root:     root,
		Services: append([]string(nil), c.Services...),
		Layout:   c.Layout.ScannerLayout(),
		Registry: pipeline.RegistryOptions{
			Source: src,
			Class:  c.Registry.Class,
			Marker: c.Registry.Marker,
			List:   append([]string(nil), c.Registry.List...),
		},
		Roles: classify.Options{
			ProducerTypes: append([]string(nil), c.Roles.ProducerTypes...),
			ConsumerTypes: append([]string(nil), c.Roles.ConsumerTypes...),
		},
		Qualifier: c.Inference.Qualifier,
		Strict:    c.Strict,
		Jobs:      c.Jobs,
		Overrides: overrides,
	}, nil
}
