// SPDX-License-Identifier: MPL-2.0

package scanner

import "errors"

// Default layout values for SiteWhere-style trees.
const (
	DefaultSourceSubpath   = "src/main/java"
	DefaultMarkerDir       = "kafka"
	DefaultPackageRoot     = "com"
	DefaultContractSegment = "spi"
	DefaultSourceExt       = ".java"

	// NoContractFilter as ContractSegment keeps contract identifiers.
	NoContractFilter = "-"
)

// ErrInvalidLayout is returned by Layout.Validate.
var ErrInvalidLayout = errors.New("invalid source layout")

// Layout describes where things live in the analysed tree.
type Layout struct {
	// RootMarker is the path segment after which a service directory path is
	// compared with the service name. Empty compares the directory base name.
	RootMarker string `json:"root_marker" mapstructure:"root_marker"`
	// SourceSubpath is the source root relative to a service directory.
	SourceSubpath string `json:"source_subpath" mapstructure:"source_subpath"`
	// MarkerDir is the directory name whose subtrees hold messaging classes.
	MarkerDir string `json:"marker_dir" mapstructure:"marker_dir"`
	// PackageRoot is the first package segment of class identifiers.
	PackageRoot string `json:"package_root" mapstructure:"package_root"`
	// ContractSegment excludes identifiers with this qualifier segment.
	// NoContractFilter disables the filter.
	ContractSegment string `json:"contract_segment" mapstructure:"contract_segment"`
	// SourceExt is the extension of source files, including the dot.
	SourceExt string `json:"source_ext" mapstructure:"source_ext"`
}

// DefaultLayout returns the SiteWhere layout.
func DefaultLayout() Layout {
	return Layout{
		SourceSubpath:   DefaultSourceSubpath,
		MarkerDir:       DefaultMarkerDir,
		PackageRoot:     DefaultPackageRoot,
		ContractSegment: DefaultContractSegment,
		SourceExt:       DefaultSourceExt,
	}
}

// WithDefaults fills empty fields from DefaultLayout. RootMarker is kept as
// given since empty compares the directory base name.
func (l Layout) WithDefaults() Layout {
	d := DefaultLayout()
	if l.SourceSubpath == "" {
		l.SourceSubpath = d.SourceSubpath
	}
	if l.MarkerDir == "" {
		l.MarkerDir = d.MarkerDir
	}
	if l.PackageRoot == "" {
		l.PackageRoot = d.PackageRoot
	}
	if l.ContractSegment == "" {
		l.ContractSegment = d.ContractSegment
	}
	if l.SourceExt == "" {
		l.SourceExt = d.SourceExt
	}
	return l
}

// Validate reports layouts that cannot select anything.
func (l Layout) Validate() error {
	switch {
	case l.MarkerDir == "":
		return errors.Join(ErrInvalidLayout, errors.New("marker_dir must not be empty"))
	case l.SourceExt == "" || l.SourceExt[0] != '.':
		return errors.Join(ErrInvalidLayout, errors.New(`source_ext must start with "."`))
	}
	return nil
}
