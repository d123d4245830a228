// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/topomap/topomap/internal/classify"
	"github.com/topomap/topomap/internal/graph"
	"github.com/topomap/topomap/internal/manifest"
	"github.com/topomap/topomap/internal/metrics"
	"github.com/topomap/topomap/internal/scanner"
)

// Channel sources.
const (
	SourceDeclaration ChannelSource = "declaration"
	SourceList        ChannelSource = "list"
	SourceManifest    ChannelSource = "manifest"
)

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid pipeline options")

type (
	// ChannelSource selects where the channel set comes from.
	ChannelSource string

	// RegistryOptions configures the channel registry.
	RegistryOptions struct {
		Source ChannelSource
		// Class is the qualified naming class for SourceDeclaration.
		Class string
		// Marker selects naming members for SourceDeclaration.
		Marker string
		// List is the channel list for SourceList.
		List []string
	}

	// Options configures a run.
	Options struct {
		// Root is the directory holding one directory per service.
		Root string
		// Services are processed in this order. In manifest mode an empty list
		// selects the manifest's services.
		Services []string
		Layout   scanner.Layout
		Registry RegistryOptions
		Roles    classify.Options
		// Qualifier is the package segment used by name inference.
		Qualifier string
		// Strict turns missing services, unreadable directories and
		// unresolvable classes into errors.
		Strict bool
		// Jobs bounds concurrent service scans and source parsing.
		Jobs int
		// Manifest, when set, supplies roles (and optionally channels) instead
		// of source analysis.
		Manifest  *manifest.Manifest
		Overrides []graph.Override
		Logger    *log.Logger
		Metrics   *metrics.Recorder
	}
)

// ParseChannelSource accepts declaration, list and manifest.
func ParseChannelSource(s string) (ChannelSource, error) {
	switch src := ChannelSource(s); src {
	case SourceDeclaration, SourceList, SourceManifest:
		return src, nil
	case "":
		return SourceDeclaration, nil
	}
	return "", fmt.Errorf("%w: unknown channel source %q", ErrInvalidOptions, s)
}

// Validate reports option combinations that cannot run.
func (o *Options) Validate() error {
	var errs []error
	src, err := ParseChannelSource(string(o.Registry.Source))
	if err != nil {
		errs = append(errs, err)
	}
	if o.Root == "" && (o.Manifest == nil || src == SourceDeclaration) {
		errs = append(errs, errors.New("root is required"))
	}
	if src == SourceManifest && o.Manifest == nil {
		errs = append(errs, errors.New("channel source manifest requires a manifest"))
	}
	if o.Manifest == nil && len(o.Services) == 0 {
		errs = append(errs, errors.New("at least one service is required"))
	}
	for _, ov := range o.Overrides {
		if err := ov.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(errs...))
	}
	return nil
}

func (o *Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}
